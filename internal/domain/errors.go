package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error kinds. Every error returned by the services wraps exactly one of
// these, so transports can branch with errors.Is.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("validation failed")
	ErrAlreadyResolved  = errors.New("already resolved")
	ErrNotFound         = errors.New("not found")
)

var (
	ErrRegistrationForbidden   = fmt.Errorf("%w: only admins may register devices for other users", ErrPermissionDenied)
	ErrSelfApproval            = fmt.Errorf("%w: cannot resolve your own access request", ErrPermissionDenied)
	ErrNotEligibleApprover     = fmt.Errorf("%w: not an eligible approver for this request", ErrPermissionDenied)
	ErrQueueForbidden          = fmt.Errorf("%w: only teachers and admins can review access requests", ErrPermissionDenied)
	ErrAdminOnly               = fmt.Errorf("%w: admin role required", ErrPermissionDenied)
	ErrDeviceAccessDenied      = fmt.Errorf("%w: device belongs to another user", ErrPermissionDenied)
	ErrRequestAccessDenied     = fmt.Errorf("%w: access request belongs to another user", ErrPermissionDenied)
	ErrUserDisabled            = fmt.Errorf("%w: user disabled", ErrPermissionDenied)
	ErrInvalidCredentials      = fmt.Errorf("%w: invalid credentials", ErrPermissionDenied)
	ErrRequestAlreadyResolved  = fmt.Errorf("%w: this request has already been processed", ErrAlreadyResolved)
	ErrRejectionReasonRequired = fmt.Errorf("%w: rejection reason is required", ErrValidation)
	ErrInvalidMAC              = fmt.Errorf("%w: mac address must contain exactly 12 hexadecimal characters", ErrValidation)
	ErrReservedMAC             = fmt.Errorf("%w: this mac address is reserved and cannot be used", ErrValidation)
	ErrMulticastMAC            = fmt.Errorf("%w: multicast mac addresses are not allowed", ErrValidation)
	ErrDuplicateMAC            = fmt.Errorf("%w: a device with this mac address is already registered", ErrValidation)
	ErrDuplicateDeviceName     = fmt.Errorf("%w: owner already has a device with this name", ErrValidation)
	ErrDuplicateUsername       = fmt.Errorf("%w: username already taken", ErrValidation)
	ErrInvalidDeviceName       = fmt.Errorf("%w: invalid device name", ErrValidation)
	ErrInvalidDeviceType       = fmt.Errorf("%w: invalid device type", ErrValidation)
	ErrInvalidOperatingSystem  = fmt.Errorf("%w: invalid operating system", ErrValidation)
	ErrIncompatiblePlatform    = fmt.Errorf("%w: operating system does not match device type", ErrValidation)
	ErrInvalidRole             = fmt.Errorf("%w: invalid role", ErrValidation)
	ErrInvalidTransition       = fmt.Errorf("%w: invalid access status transition", ErrValidation)
	ErrInvalidAccessStatus     = fmt.Errorf("%w: invalid access status", ErrValidation)
	ErrEmptyUsername           = fmt.Errorf("%w: empty username", ErrValidation)
	ErrPasswordLength          = fmt.Errorf("%w: password too short", ErrValidation)
	ErrUserNotFound            = fmt.Errorf("%w: user", ErrNotFound)
	ErrDeviceNotFound          = fmt.Errorf("%w: device", ErrNotFound)
	ErrRequestNotFound         = fmt.Errorf("%w: access request", ErrNotFound)
	ErrNotificationNotFound    = fmt.Errorf("%w: notification", ErrNotFound)
)

var ErrInvalidID = fmt.Errorf("%w: malformed id", ErrValidation)

// ParseID parses a client supplied UUID.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}
