package service

import (
	"context"

	"byod/internal/domain"
	"byod/internal/dto"
)

type NotificationService interface {
	NotifyAccessRequest(ctx context.Context, req *domain.AccessRequest) ([]domain.UserID, error)
	NotifyRequestApproved(ctx context.Context, req *domain.AccessRequest) error
	NotifyRequestRejected(ctx context.Context, req *domain.AccessRequest, reason string) error
	UnreadCount(ctx context.Context, userID domain.UserID) (int64, error)
	List(ctx context.Context, userID domain.UserID, page dto.PageRequest) (*dto.NotificationListResponse, error)
	MarkRead(ctx context.Context, userID domain.UserID, id domain.NotificationID) error
	MarkAllRead(ctx context.Context, userID domain.UserID) (int64, error)
}
