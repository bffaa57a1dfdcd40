package inbound

import (
	"context"
	"time"
)

// TokenService defines the JWT token operations consumed by the HTTP layer.
// Identity itself is an external collaborator; the core only validates
// access tokens and reads claims.
type TokenService interface {
	GenerateAccessToken(actorID, companyID, role string) (string, error)
	ValidateToken(token string) (*TokenClaims, error)
}

// TokenClaims carries actor attribution and tenant scope. Every core
// operation receives both explicitly; there is no implicit selected-company
// state anywhere.
type TokenClaims struct {
	ActorID   string
	CompanyID string
	Role      string
}

// RateLimitService defines rate limiting behavior used by middleware.
// Implemented by infrastructure/service/ratelimit.
type RateLimitService interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Increment(ctx context.Context, key string, window time.Duration) error
	IsEnabled() bool
}
