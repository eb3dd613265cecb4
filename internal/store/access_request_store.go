package store

import (
	"context"

	"byod/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccessRequestStore struct{ db *gorm.DB }

func (s *Store) AccessRequests() *AccessRequestStore { return &AccessRequestStore{db: s.DB} }

func (a *AccessRequestStore) Create(ctx context.Context, r *domain.AccessRequest) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return translate(a.db.WithContext(ctx).Create(r).Error)
}

func (a *AccessRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.AccessRequest, error) {
	var r domain.AccessRequest
	if err := a.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

// Resolve writes the terminal state of r, but only while the stored row is
// still pending. It reports false when another writer resolved it first.
func (a *AccessRequestStore) Resolve(ctx context.Context, r *domain.AccessRequest) (bool, error) {
	res := a.db.WithContext(ctx).Model(&domain.AccessRequest{}).
		Where("id = ? AND status = ?", r.ID, domain.RequestPending).
		Updates(map[string]any{
			"status":           r.Status,
			"notes":            r.Notes,
			"resolved_by_id":   r.ResolvedByID,
			"resolved_at":      r.ResolvedAt,
			"rejection_reason": r.RejectionReason,
		})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (a *AccessRequestStore) pendingFor(ctx context.Context, roles []domain.Role) *gorm.DB {
	return a.db.WithContext(ctx).Model(&domain.AccessRequest{}).
		Joins("JOIN users ON users.id = access_requests.requester_id").
		Where("access_requests.status = ? AND users.role IN ?", domain.RequestPending, roles)
}

// Pending lists pending requests raised by users holding one of roles,
// newest first.
func (a *AccessRequestStore) Pending(ctx context.Context, roles []domain.Role, offset, limit int) ([]*domain.AccessRequest, int64, error) {
	if len(roles) == 0 {
		return nil, 0, nil
	}
	var total int64
	if err := a.pendingFor(ctx, roles).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var out []*domain.AccessRequest
	err := a.pendingFor(ctx, roles).
		Select("access_requests.*").
		Order("access_requests.requested_at desc").
		Offset(offset).Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return out, total, nil
}

func (a *AccessRequestStore) ByRequester(ctx context.Context, requester uuid.UUID, offset, limit int) ([]*domain.AccessRequest, int64, error) {
	q := a.db.WithContext(ctx).Model(&domain.AccessRequest{}).Where("requester_id = ?", requester).Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var out []*domain.AccessRequest
	if err := q.Order("requested_at desc").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, translate(err)
	}
	return out, total, nil
}

func (a *AccessRequestStore) CountByRequesterStatus(ctx context.Context, requester uuid.UUID) (map[string]int64, error) {
	var rows []statusCount
	err := a.db.WithContext(ctx).Model(&domain.AccessRequest{}).
		Select("status AS status, COUNT(*) AS n").
		Where("requester_id = ?", requester).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return toCountMap(rows), nil
}

func (a *AccessRequestStore) LatestForDevice(ctx context.Context, deviceID uuid.UUID) (*domain.AccessRequest, error) {
	var r domain.AccessRequest
	err := a.db.WithContext(ctx).Where("device_id = ?", deviceID).Order("requested_at desc").First(&r).Error
	if err != nil {
		return nil, translate(err)
	}
	return &r, nil
}
