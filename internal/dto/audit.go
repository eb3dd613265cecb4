package dto

import (
	"time"

	"byod/internal/domain"
)

type AuditFilter struct {
	ActorID string
	Action  string
	PageRequest
}

type AuditLogResponse struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actorId,omitempty"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId,omitempty"`
	Outcome    string    `json:"outcome"`
	Metadata   string    `json:"metadata"`
	IP         string    `json:"ip,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func FromAuditLog(a *domain.AuditLog) AuditLogResponse {
	out := AuditLogResponse{
		ID:         a.ID.String(),
		Action:     a.Action,
		EntityType: a.EntityType,
		Outcome:    string(a.Outcome),
		Metadata:   a.Metadata,
		IP:         a.IP,
		CreatedAt:  a.CreatedAt,
	}
	if a.ActorID != nil {
		out.ActorID = a.ActorID.String()
	}
	if a.EntityID != nil {
		out.EntityID = a.EntityID.String()
	}
	return out
}

type AuditListResponse struct {
	Items []AuditLogResponse `json:"items"`
	PageInfo
}
