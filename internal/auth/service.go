package auth

import (
	"context"
	"errors"

	"github.com/fwber/matchengine/internal/common/utils"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Service validates platform-issued access tokens. Token issuance lives
// in the platform's auth service; the engine only verifies.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
}

type service struct {
	jwtSecret string
}

func NewService(jwtSecret string) Service {
	return &service{jwtSecret: jwtSecret}
}

func (s *service) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	claims, err := utils.ValidateJWT(token, s.jwtSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
