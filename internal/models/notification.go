package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType defines the severity shown in the client
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationSystem  NotificationType = "system"
)

// Notification is an in-app message for one user
type Notification struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
	RecipientID uuid.UUID        `json:"recipient" db:"recipient_id"`
	SenderID    *uuid.UUID       `json:"sender,omitempty" db:"sender_id"`
	Title       string           `json:"title" db:"title"`
	Message     string           `json:"message" db:"message"`
	Type        NotificationType `json:"type" db:"type"`
	Read        bool             `json:"read" db:"read"`
	Details     Variables        `json:"details,omitempty" db:"details"`
}
