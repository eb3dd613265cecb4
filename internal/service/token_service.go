package service

import (
	"context"

	"byod/internal/domain"
	"byod/internal/dto"
)

type AccessClaims struct {
	UserID   domain.UserID
	Username string
	Role     domain.Role
}

type TokenService interface {
	Issue(ctx context.Context, user *domain.User) (*dto.TokenResponse, error)
	Verify(ctx context.Context, token string) (*AccessClaims, error)
	JWKS() map[string]any
}
