package store

import (
	"context"
	"strings"

	"byod/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	return translate(u.db.WithContext(ctx).Create(usr).Error)
}

func (u *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (u *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "LOWER(username) = ?", strings.ToLower(username)).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetByIDs returns the users keyed by id; unknown ids are skipped.
func (u *UserStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	out := make(map[uuid.UUID]*domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []*domain.User
	if err := u.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, translate(err)
	}
	for _, usr := range users {
		out[usr.ID] = usr
	}
	return out, nil
}

// ActiveByRoles lists enabled users holding one of roles, oldest first.
func (u *UserStore) ActiveByRoles(ctx context.Context, roles []domain.Role, exclude uuid.UUID) ([]*domain.User, error) {
	var users []*domain.User
	if len(roles) == 0 {
		return users, nil
	}
	err := u.db.WithContext(ctx).
		Where("role IN ? AND is_disabled = ? AND id <> ?", roles, false, exclude).
		Order("created_at asc").
		Find(&users).Error
	return users, translate(err)
}

func (u *UserStore) List(ctx context.Context, role domain.Role, offset, limit int) ([]*domain.User, int64, error) {
	q := u.db.WithContext(ctx).Model(&domain.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var users []*domain.User
	if err := q.Order("username asc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, translate(err)
	}
	return users, total, nil
}

func (u *UserStore) CountByRole(ctx context.Context) (map[string]int64, error) {
	var rows []statusCount
	err := u.db.WithContext(ctx).Model(&domain.User{}).
		Select("role AS status, COUNT(*) AS n").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return toCountMap(rows), nil
}

func (u *UserStore) SetDisabled(ctx context.Context, userID uuid.UUID, disabled bool) error {
	return translate(u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("is_disabled", disabled).Error)
}
