package service

import (
	"context"

	"byod/internal/domain"
	"byod/internal/dto"
)

type AuditService interface {
	List(ctx context.Context, actor domain.Actor, f dto.AuditFilter) (*dto.AuditListResponse, error)
}
