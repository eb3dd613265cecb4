package dto

import (
	"time"

	"byod/internal/domain"
)

type NotificationResponse struct {
	ID              string     `json:"id"`
	Type            string     `json:"type"`
	Title           string     `json:"title"`
	Message         string     `json:"message"`
	AccessRequestID string     `json:"accessRequestId,omitempty"`
	IsRead          bool       `json:"isRead"`
	ReadAt          *time.Time `json:"readAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func FromNotification(n *domain.Notification) NotificationResponse {
	out := NotificationResponse{
		ID:        n.ID.String(),
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
	if n.AccessRequestID != nil {
		out.AccessRequestID = n.AccessRequestID.String()
	}
	return out
}

type NotificationListResponse struct {
	Items       []NotificationResponse `json:"items"`
	UnreadCount int64                  `json:"unreadCount"`
	PageInfo
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
