package dto

import (
	"time"

	"byod/internal/domain"
)

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
}

type UserResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	FullName   string    `json:"fullName,omitempty"`
	Email      string    `json:"email,omitempty"`
	Role       string    `json:"role"`
	IsDisabled bool      `json:"isDisabled"`
	CreatedAt  time.Time `json:"createdAt"`
}

func FromUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID.String(),
		Username:   u.Username,
		FullName:   u.FullName,
		Email:      u.Email,
		Role:       string(u.Role),
		IsDisabled: u.IsDisabled,
		CreatedAt:  u.CreatedAt,
	}
}

type UserListResponse struct {
	Items []UserResponse `json:"items"`
	PageInfo
}
