package store

import (
	"context"
	"encoding/json"
	"time"

	"byod/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditStore struct{ db *gorm.DB }

func (s *Store) Audit() *AuditStore { return &AuditStore{db: s.DB} }

// Record appends one audit row. meta is stored as JSON text.
func (a *AuditStore) Record(ctx context.Context, entry *domain.AuditLog, meta any) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if meta != nil {
		b, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		entry.Metadata = string(b)
	}
	if entry.Metadata == "" {
		entry.Metadata = "{}"
	}
	return translate(a.db.WithContext(ctx).Create(entry).Error)
}

func (a *AuditStore) List(ctx context.Context, actorID *uuid.UUID, action string, offset, limit int) ([]*domain.AuditLog, int64, error) {
	q := a.db.WithContext(ctx).Model(&domain.AuditLog{})
	if actorID != nil {
		q = q.Where("actor_id = ?", *actorID)
	}
	if action != "" {
		q = q.Where("action = ?", action)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var out []*domain.AuditLog
	if err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, translate(err)
	}
	return out, total, nil
}
