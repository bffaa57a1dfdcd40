package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ativus/ativus/application/port/inbound"
	"github.com/ativus/ativus/infrastructure/config"
)

// JWTService validates the access tokens issued by the external identity
// service and, for development tooling, can mint compatible ones. HS256
// with a shared secret matches what the identity service signs with.
type JWTService struct {
	secret []byte
	ttl    time.Duration
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

func NewJWTService(cfg *config.Config) (*JWTService, error) {
	if cfg.JWTSecret == "" {
		return nil, config.ErrMissingJWTSecret
	}
	return &JWTService{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.AccessTokenTTL,
	}, nil
}

func (s *JWTService) GenerateAccessToken(actorID, companyID, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":        actorID,
		"company_id": companyID,
		"role":       role,
		"iat":        now.Unix(),
		"exp":        now.Add(s.ttl).Unix(),
		"type":       "access",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*inbound.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	actorID, _ := claims["sub"].(string)
	companyID, _ := claims["company_id"].(string)
	role, _ := claims["role"].(string)
	if actorID == "" || companyID == "" {
		return nil, fmt.Errorf("%w: missing sub or company_id claim", ErrInvalidToken)
	}

	return &inbound.TokenClaims{
		ActorID:   actorID,
		CompanyID: companyID,
		Role:      role,
	}, nil
}
