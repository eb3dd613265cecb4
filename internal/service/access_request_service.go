package service

import (
	"context"

	"byod/internal/domain"
	"byod/internal/dto"
)

type AccessRequestService interface {
	Approve(ctx context.Context, actor domain.Actor, id domain.AccessRequestID, notes string) (*dto.AccessRequestResponse, error)
	Reject(ctx context.Context, actor domain.Actor, id domain.AccessRequestID, reason string) (*dto.AccessRequestResponse, error)
	Get(ctx context.Context, actor domain.Actor, id domain.AccessRequestID) (*dto.AccessRequestResponse, error)
	Queue(ctx context.Context, actor domain.Actor, page dto.PageRequest) (*dto.AccessRequestListResponse, error)
	Mine(ctx context.Context, actor domain.Actor, page dto.PageRequest) (*dto.MyRequestsResponse, error)
}
