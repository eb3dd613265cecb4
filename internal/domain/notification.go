package domain

import "time"

type NotificationType string

const (
	NotificationAccessRequest   NotificationType = "access_request"
	NotificationRequestApproved NotificationType = "request_approved"
	NotificationRequestRejected NotificationType = "request_rejected"
)

type Notification struct {
	ID              NotificationID   `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID     UserID           `gorm:"type:uuid;not null;index:idx_notifications_recipient_read,priority:1" json:"recipientId"`
	Type            NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Title           string           `gorm:"type:varchar(200);not null" json:"title"`
	Message         string           `gorm:"type:text;not null" json:"message"`
	AccessRequestID *AccessRequestID `gorm:"type:uuid" json:"accessRequestId,omitempty"`
	IsRead          bool             `gorm:"not null;default:false;index:idx_notifications_recipient_read,priority:2" json:"isRead"`
	ReadAt          *time.Time       `json:"readAt,omitempty"`
	CreatedAt       time.Time        `gorm:"not null;index:idx_notifications_recipient_read,priority:3" json:"createdAt"`
}

func (Notification) TableName() string { return "notifications" }

// MarkRead is idempotent; the first read time is kept.
func (n *Notification) MarkRead(at time.Time) bool {
	if n.IsRead {
		return false
	}
	n.IsRead = true
	n.ReadAt = &at
	return true
}
