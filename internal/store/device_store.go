package store

import (
	"context"
	"strings"
	"time"

	"byod/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeviceStore struct{ db *gorm.DB }

func (s *Store) Devices() *DeviceStore { return &DeviceStore{db: s.DB} }

// DeviceQuery narrows device listings. Zero fields are ignored.
type DeviceQuery struct {
	OwnerID         *uuid.UUID
	OwnerRoles      []domain.Role
	Search          string
	DeviceType      domain.DeviceType
	OperatingSystem domain.OperatingSystem
	AccessStatus    domain.AccessStatus
	Compliant       *bool
}

func (d *DeviceStore) Create(ctx context.Context, device *domain.Device) error {
	if device.ID == uuid.Nil {
		device.ID = uuid.New()
	}
	device.NameKey = strings.ToLower(device.Name)
	return translate(d.db.WithContext(ctx).Create(device).Error)
}

func (d *DeviceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Device, error) {
	var dev domain.Device
	if err := d.db.WithContext(ctx).First(&dev, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &dev, nil
}

func (d *DeviceStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Device, error) {
	out := make(map[uuid.UUID]*domain.Device, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var devs []*domain.Device
	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&devs).Error; err != nil {
		return nil, translate(err)
	}
	for _, dev := range devs {
		out[dev.ID] = dev
	}
	return out, nil
}

func (d *DeviceStore) MACExists(ctx context.Context, mac string) (bool, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&domain.Device{}).Where("mac_address = ?", mac).Count(&n).Error
	return n > 0, translate(err)
}

// NameExists compares names case-insensitively within one owner.
func (d *DeviceStore) NameExists(ctx context.Context, ownerID uuid.UUID, name string) (bool, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&domain.Device{}).
		Where("owner_id = ? AND name_key = ?", ownerID, strings.ToLower(name)).
		Count(&n).Error
	return n > 0, translate(err)
}

// UpdateStatus moves a device from one access status to another. It reports
// false when the device was no longer in from.
func (d *DeviceStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.AccessStatus, at time.Time) (bool, error) {
	res := d.db.WithContext(ctx).Model(&domain.Device{}).
		Where("id = ? AND access_status = ?", id, from).
		Updates(map[string]any{"access_status": to, "updated_at": at})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (d *DeviceStore) SetCompliance(ctx context.Context, id uuid.UUID, compliant bool, at time.Time) error {
	return translate(d.db.WithContext(ctx).Model(&domain.Device{}).
		Where("id = ?", id).
		Updates(map[string]any{"compliance_status": compliant, "updated_at": at}).Error)
}

func (d *DeviceStore) scoped(ctx context.Context, q DeviceQuery) *gorm.DB {
	tx := d.db.WithContext(ctx).Model(&domain.Device{})
	if q.OwnerID != nil {
		tx = tx.Where("devices.owner_id = ?", *q.OwnerID)
	}
	if len(q.OwnerRoles) > 0 {
		tx = tx.Joins("JOIN users ON users.id = devices.owner_id").Where("users.role IN ?", q.OwnerRoles)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		tx = tx.Where("(LOWER(devices.name) LIKE ? OR LOWER(devices.mac_address) LIKE ?)", like, like)
	}
	if q.DeviceType != "" {
		tx = tx.Where("devices.device_type = ?", q.DeviceType)
	}
	if q.OperatingSystem != "" {
		tx = tx.Where("devices.operating_system = ?", q.OperatingSystem)
	}
	if q.AccessStatus != "" {
		tx = tx.Where("devices.access_status = ?", q.AccessStatus)
	}
	if q.Compliant != nil {
		tx = tx.Where("devices.compliance_status = ?", *q.Compliant)
	}
	return tx
}

// List returns one page of matching devices, newest registration first.
func (d *DeviceStore) List(ctx context.Context, q DeviceQuery, offset, limit int) ([]*domain.Device, int64, error) {
	var total int64
	if err := d.scoped(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var devs []*domain.Device
	err := d.scoped(ctx, q).
		Select("devices.*").
		Order("devices.registered_at desc").
		Offset(offset).Limit(limit).
		Find(&devs).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return devs, total, nil
}

func (d *DeviceStore) Count(ctx context.Context, q DeviceQuery) (int64, error) {
	var n int64
	err := d.scoped(ctx, q).Count(&n).Error
	return n, translate(err)
}

func (d *DeviceStore) CountByStatus(ctx context.Context, q DeviceQuery) (map[string]int64, error) {
	var rows []statusCount
	err := d.scoped(ctx, q).
		Select("devices.access_status AS status, COUNT(*) AS n").
		Group("devices.access_status").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	counts := toCountMap(rows)
	for _, s := range domain.AccessStatuses {
		if _, ok := counts[string(s)]; !ok {
			counts[string(s)] = 0
		}
	}
	return counts, nil
}
