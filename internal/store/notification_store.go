package store

import (
	"context"
	"time"

	"byod/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationStore struct{ db *gorm.DB }

func (s *Store) Notifications() *NotificationStore { return &NotificationStore{db: s.DB} }

func (n *NotificationStore) CreateBatch(ctx context.Context, ns []*domain.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	for _, x := range ns {
		if x.ID == uuid.Nil {
			x.ID = uuid.New()
		}
	}
	return translate(n.db.WithContext(ctx).Create(&ns).Error)
}

// CountUnread is served by idx_notifications_recipient_read.
func (n *NotificationStore) CountUnread(ctx context.Context, recipient uuid.UUID) (int64, error) {
	var c int64
	err := n.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipient, false).
		Count(&c).Error
	return c, translate(err)
}

func (n *NotificationStore) List(ctx context.Context, recipient uuid.UUID, offset, limit int) ([]*domain.Notification, int64, error) {
	q := n.db.WithContext(ctx).Model(&domain.Notification{}).Where("recipient_id = ?", recipient).Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var out []*domain.Notification
	if err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, translate(err)
	}
	return out, total, nil
}

func (n *NotificationStore) Get(ctx context.Context, recipient, id uuid.UUID) (*domain.Notification, error) {
	var out domain.Notification
	if err := n.db.WithContext(ctx).First(&out, "id = ? AND recipient_id = ?", id, recipient).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// MarkRead flips one unread notification; already read rows are left alone.
func (n *NotificationStore) MarkRead(ctx context.Context, recipient, id uuid.UUID, at time.Time) (int64, error) {
	res := n.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", id, recipient, false).
		Updates(map[string]any{"is_read": true, "read_at": at})
	return res.RowsAffected, translate(res.Error)
}

func (n *NotificationStore) MarkAllRead(ctx context.Context, recipient uuid.UUID, at time.Time) (int64, error) {
	res := n.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipient, false).
		Updates(map[string]any{"is_read": true, "read_at": at})
	return res.RowsAffected, translate(res.Error)
}
