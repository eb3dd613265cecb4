package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type AuditOutcome string

const (
	AuditSuccess AuditOutcome = "success"
	AuditDenied  AuditOutcome = "denied"
	AuditInvalid AuditOutcome = "invalid"
)

// Audit actions.
const (
	ActionDeviceRegister   = "device.register"
	ActionDeviceSuspend    = "device.suspend"
	ActionDeviceReactivate = "device.reactivate"
	ActionDeviceCompliance = "device.compliance"
	ActionRequestApprove   = "access_request.approve"
	ActionRequestReject    = "access_request.reject"
	ActionUserCreate       = "user.create"
	ActionUserLogin        = "user.login"
)

type AuditLog struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID    *UserID      `gorm:"type:uuid;index:idx_audit_actor" json:"actorId,omitempty"`
	Action     string       `gorm:"type:varchar(64);not null" json:"action"`
	EntityType string       `gorm:"type:varchar(32);not null" json:"entityType"`
	EntityID   *uuid.UUID   `gorm:"type:uuid" json:"entityId,omitempty"`
	Outcome    AuditOutcome `gorm:"type:varchar(16);not null" json:"outcome"`
	Metadata   string       `gorm:"type:text;not null;default:'{}'" json:"metadata"`
	IP         string       `gorm:"type:varchar(64)" json:"ip,omitempty"`
	UserAgent  string       `gorm:"type:varchar(512)" json:"userAgent,omitempty"`
	CreatedAt  time.Time    `gorm:"not null;index:idx_audit_created_at" json:"createdAt"`
}

func (AuditLog) TableName() string { return "audit_logs" }

// OutcomeFor classifies an operation error for the audit trail.
func OutcomeFor(err error) AuditOutcome {
	switch {
	case err == nil:
		return AuditSuccess
	case errors.Is(err, ErrPermissionDenied):
		return AuditDenied
	default:
		return AuditInvalid
	}
}
