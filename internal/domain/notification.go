package domain

import "time"

// NotificationType classifies an inbox entry.
type NotificationType string

const (
	NotifyJobUpdate NotificationType = "JOB_UPDATE"
	NotifyMessage   NotificationType = "MESSAGE"
	NotifySystem    NotificationType = "SYSTEM"
)

// Notification is a per-user inbox entry derived from a primary action.
// Users never create notifications directly and notifications are never
// deleted; the only mutation is flipping Read via MarkAllRead.
type Notification struct {
	ID           string
	UserID       string
	Title        string
	Message      string
	Timestamp    time.Time
	Read         bool
	Type         NotificationType
	RelatedJobID string
}

// NotificationRepository defines data access for notifications
type NotificationRepository interface {
	Append(n *Notification) error
	ListByUser(userID string) ([]*Notification, error)
	// MarkAllRead flips Read on every notification belonging to userID and
	// returns how many were newly marked. It never touches other users'
	// notifications.
	MarkAllRead(userID string) (int, error)
}
