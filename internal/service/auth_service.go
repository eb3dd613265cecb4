package service

import (
	"context"

	"byod/internal/domain"
	"byod/internal/dto"
)

type AuthService interface {
	Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.TokenResponse, error)
	CreateUser(ctx context.Context, actor *domain.Actor, r dto.CreateUserRequest) (*domain.User, error)
	ListUsers(ctx context.Context, actor domain.Actor, role string, page dto.PageRequest) (*dto.UserListResponse, error)
	// Authenticate resolves a bearer token to an enabled user.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
