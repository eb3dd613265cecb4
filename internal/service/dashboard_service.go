package service

import (
	"context"

	"byod/internal/domain"
	"byod/internal/dto"
)

type DashboardService interface {
	Summary(ctx context.Context, actor domain.Actor) (*dto.DashboardResponse, error)
}
