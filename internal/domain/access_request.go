package domain

import (
	"strings"
	"time"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

// AccessRequest asks for network access for one device. Approved and
// rejected are terminal; at most one pending request exists per device.
type AccessRequest struct {
	ID              AccessRequestID `gorm:"type:uuid;primaryKey" json:"id"`
	DeviceID        DeviceID        `gorm:"type:uuid;not null;uniqueIndex:ux_access_requests_pending_device,where:status = 'pending'" json:"deviceId"`
	RequesterID     UserID          `gorm:"type:uuid;not null;index:idx_access_requests_requester,priority:1" json:"requesterId"`
	Status          RequestStatus   `gorm:"type:varchar(16);not null;default:pending;index:idx_access_requests_status,priority:1;index:idx_access_requests_requester,priority:2" json:"status"`
	Notes           string          `gorm:"type:text;not null;default:''" json:"notes"`
	// ResolvedByID and ResolvedAt record whoever approved or rejected.
	ResolvedByID    *UserID         `gorm:"type:uuid" json:"resolvedById,omitempty"`
	ResolvedAt      *time.Time      `json:"resolvedAt,omitempty"`
	RejectionReason *string         `gorm:"type:text" json:"rejectionReason,omitempty"`
	RequestedAt     time.Time       `gorm:"not null;index:idx_access_requests_status,priority:2" json:"requestedAt"`
}

func (AccessRequest) TableName() string { return "access_requests" }

func (r *AccessRequest) IsPending() bool { return r.Status == RequestPending }

// Approve resolves a pending request. Notes replace the stored notes only
// when non-empty.
func (r *AccessRequest) Approve(approver UserID, notes string, at time.Time) error {
	if !r.IsPending() {
		return ErrRequestAlreadyResolved
	}
	r.Status = RequestApproved
	r.ResolvedByID = &approver
	r.ResolvedAt = &at
	if n := strings.TrimSpace(notes); n != "" {
		r.Notes = n
	}
	return nil
}

// Reject resolves a pending request with a mandatory reason.
func (r *AccessRequest) Reject(resolver UserID, reason string, at time.Time) error {
	reason, err := NormalizeRejectionReason(reason)
	if err != nil {
		return err
	}
	if !r.IsPending() {
		return ErrRequestAlreadyResolved
	}
	r.Status = RequestRejected
	r.ResolvedByID = &resolver
	r.ResolvedAt = &at
	r.RejectionReason = &reason
	return nil
}

func NormalizeRejectionReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", ErrRejectionReasonRequired
	}
	return reason, nil
}

// DeviceStatusFor maps a resolved request onto the device access status.
func DeviceStatusFor(s RequestStatus) AccessStatus {
	switch s {
	case RequestApproved:
		return AccessActive
	case RequestRejected:
		return AccessRejected
	}
	return AccessPending
}
