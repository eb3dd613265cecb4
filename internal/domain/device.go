package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"byod/internal/netutil"
)

type DeviceType string

const (
	DeviceLaptop     DeviceType = "laptop"
	DeviceTablet     DeviceType = "tablet"
	DeviceSmartphone DeviceType = "smartphone"
	DeviceDesktop    DeviceType = "desktop"
	DeviceOther      DeviceType = "other"
)

func (t DeviceType) Valid() bool {
	switch t {
	case DeviceLaptop, DeviceTablet, DeviceSmartphone, DeviceDesktop, DeviceOther:
		return true
	}
	return false
}

type OperatingSystem string

const (
	OSWindows OperatingSystem = "windows"
	OSMacOS   OperatingSystem = "macos"
	OSLinux   OperatingSystem = "linux"
	OSIOS     OperatingSystem = "ios"
	OSAndroid OperatingSystem = "android"
	OSOther   OperatingSystem = "other"
)

func (o OperatingSystem) Valid() bool {
	switch o {
	case OSWindows, OSMacOS, OSLinux, OSIOS, OSAndroid, OSOther:
		return true
	}
	return false
}

func (o OperatingSystem) desktop() bool { return o == OSWindows || o == OSMacOS || o == OSLinux }
func (o OperatingSystem) mobile() bool  { return o == OSIOS || o == OSAndroid }

type AccessStatus string

const (
	AccessPending   AccessStatus = "pending"
	AccessActive    AccessStatus = "active"
	AccessRejected  AccessStatus = "rejected"
	AccessSuspended AccessStatus = "suspended"
)

var AccessStatuses = []AccessStatus{AccessPending, AccessActive, AccessRejected, AccessSuspended}

func (s AccessStatus) Valid() bool {
	switch s {
	case AccessPending, AccessActive, AccessRejected, AccessSuspended:
		return true
	}
	return false
}

// accessTransitions lists every legal device status change.
var accessTransitions = map[AccessStatus][]AccessStatus{
	AccessPending:   {AccessActive, AccessRejected},
	AccessActive:    {AccessSuspended},
	AccessSuspended: {AccessActive},
}

func (s AccessStatus) CanTransitionTo(next AccessStatus) bool {
	for _, allowed := range accessTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Device names are unique per owner regardless of case; NameKey holds the
// lowercased name the unique index is built on.
type Device struct {
	ID               DeviceID        `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string          `gorm:"type:varchar(100);not null" json:"name"`
	NameKey          string          `gorm:"type:varchar(100);not null;uniqueIndex:ux_devices_owner_name,priority:2" json:"-"`
	DeviceType       DeviceType      `gorm:"type:varchar(20);not null" json:"deviceType"`
	MACAddress       string          `gorm:"column:mac_address;type:varchar(17);not null;uniqueIndex:ux_devices_mac" json:"macAddress"`
	OperatingSystem  OperatingSystem `gorm:"type:varchar(20);not null" json:"operatingSystem"`
	AccessStatus     AccessStatus    `gorm:"type:varchar(20);not null;default:pending;index:idx_devices_status" json:"accessStatus"`
	ComplianceStatus bool            `gorm:"not null;default:false" json:"complianceStatus"`
	OwnerID          UserID          `gorm:"type:uuid;not null;uniqueIndex:ux_devices_owner_name,priority:1" json:"ownerId"`
	RegisteredByID   *UserID         `gorm:"type:uuid" json:"registeredById,omitempty"`
	RegisteredAt     time.Time       `gorm:"not null;index:idx_devices_registered_at" json:"registeredAt"`
	LastSeenAt       time.Time       `gorm:"not null" json:"lastSeenAt"`
	UpdatedAt        time.Time       `gorm:"not null" json:"updatedAt"`
}

func (Device) TableName() string { return "devices" }

// TransitionTo moves the device to next or fails with ErrInvalidTransition.
func (d *Device) TransitionTo(next AccessStatus, at time.Time) error {
	if !d.AccessStatus.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	d.AccessStatus = next
	d.UpdatedAt = at
	return nil
}

var deviceNamePattern = regexp.MustCompile(`^[A-Za-z0-9 ._-]+$`)

// NormalizeDeviceName trims and checks a user supplied device name.
func NormalizeDeviceName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case len(name) < 2:
		return "", fmt.Errorf("%w: name must be at least 2 characters long", ErrInvalidDeviceName)
	case len(name) > 100:
		return "", fmt.Errorf("%w: name must be at most 100 characters long", ErrInvalidDeviceName)
	case !deviceNamePattern.MatchString(name):
		return "", fmt.Errorf("%w: only letters, numbers, spaces, dots, hyphens and underscores are allowed", ErrInvalidDeviceName)
	case strings.Contains(name, "  "):
		return "", fmt.Errorf("%w: name must not contain repeated spaces", ErrInvalidDeviceName)
	}
	return name, nil
}

// NormalizeMAC maps netutil's parse failures onto validation errors.
func NormalizeMAC(raw string) (string, error) {
	mac, err := netutil.NormalizeMAC(raw)
	switch {
	case err == nil:
		return mac, nil
	case errors.Is(err, netutil.ErrMACReserved):
		return "", ErrReservedMAC
	case errors.Is(err, netutil.ErrMACMulticast):
		return "", ErrMulticastMAC
	default:
		return "", ErrInvalidMAC
	}
}

// CheckPlatform rejects obviously wrong device type / OS pairs.
func CheckPlatform(t DeviceType, os OperatingSystem) error {
	if !t.Valid() {
		return ErrInvalidDeviceType
	}
	if !os.Valid() {
		return ErrInvalidOperatingSystem
	}
	if t == DeviceSmartphone && os.desktop() {
		return ErrIncompatiblePlatform
	}
	if (t == DeviceLaptop || t == DeviceDesktop) && os.mobile() {
		return ErrIncompatiblePlatform
	}
	return nil
}

// Display is the human readable device type used in notification texts.
func (t DeviceType) Display() string {
	switch t {
	case DeviceLaptop:
		return "Laptop"
	case DeviceTablet:
		return "Tablet"
	case DeviceSmartphone:
		return "Smartphone"
	case DeviceDesktop:
		return "Desktop"
	default:
		return "Other"
	}
}
