package impl

import (
	"context"
	"strings"

	"byod/internal/domain"
	"byod/internal/dto"
	"byod/internal/store"

	"github.com/google/uuid"
)

type AuditServiceImpl struct {
	store *store.Store
}

func NewAuditServiceImpl(st *store.Store) *AuditServiceImpl { return &AuditServiceImpl{store: st} }

func (s *AuditServiceImpl) List(ctx context.Context, actor domain.Actor, f dto.AuditFilter) (*dto.AuditListResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrAdminOnly
	}
	var actorID *uuid.UUID
	if v := strings.TrimSpace(f.ActorID); v != "" {
		id, err := domain.ParseID(v)
		if err != nil {
			return nil, err
		}
		actorID = &id
	}
	page := f.PageRequest.Normalize(50)
	logs, total, err := s.store.Audit().List(ctx, actorID, strings.TrimSpace(f.Action), page.Offset(), page.PageSize)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		items = append(items, dto.FromAuditLog(l))
	}
	return &dto.AuditListResponse{Items: items, PageInfo: dto.NewPageInfo(page, total)}, nil
}
