package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ativus/ativus/application/port/inbound"
	"github.com/ativus/ativus/infrastructure/http/response"
)

type contextKey string

const authClaimsKey contextKey = "auth_claims"

type AuthMiddleware struct {
	tokenService inbound.TokenService
}

func NewAuthMiddleware(tokenService inbound.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// RequireAuth validates the bearer token and injects its claims into the
// request context. The claims carry the tenant scope; handlers never trust
// a company id coming from the request body.
func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "invalid authorization header format")
			return
		}

		token := parts[1]
		if token == "" {
			response.Unauthorized(w, "token cannot be empty")
			return
		}

		claims, err := m.tokenService.ValidateToken(token)
		if err != nil {
			response.Unauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetClaims retrieves the authenticated actor's claims from context.
func GetClaims(ctx context.Context) *inbound.TokenClaims {
	if claims, ok := ctx.Value(authClaimsKey).(*inbound.TokenClaims); ok {
		return claims
	}
	return nil
}
