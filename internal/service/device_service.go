package service

import (
	"context"

	"byod/internal/domain"
	"byod/internal/dto"
)

type DeviceService interface {
	Register(ctx context.Context, actor domain.Actor, r dto.DeviceRegisterRequest) (*dto.DeviceRegisterResponse, error)
	List(ctx context.Context, actor domain.Actor, f dto.DeviceFilter) (*dto.DeviceListResponse, error)
	Get(ctx context.Context, actor domain.Actor, id domain.DeviceID) (*dto.DeviceResponse, error)
	Suspend(ctx context.Context, actor domain.Actor, id domain.DeviceID) (*dto.DeviceResponse, error)
	Reactivate(ctx context.Context, actor domain.Actor, id domain.DeviceID) (*dto.DeviceResponse, error)
	SetCompliance(ctx context.Context, actor domain.Actor, id domain.DeviceID, compliant bool) (*dto.DeviceResponse, error)
}
