package domain

import "time"

// Message is a chat entry scoped to exactly one job. Messages are append-only
// and listed in timestamp order.
type Message struct {
	ID        string
	JobID     string
	SenderID  string
	Content   string
	Timestamp time.Time
}

// MessageRepository defines data access for job chat messages
type MessageRepository interface {
	Append(msg *Message) error
	ListByJob(jobID string) ([]*Message, error)
}
