package repository

import (
	"log/slog"
	"sync"

	"github.com/autodoc-au/autodoc/internal/domain"
)

// MemoryNotificationRepository implements domain.NotificationRepository.
// Notifications are append-only; the only mutation is MarkAllRead.
type MemoryNotificationRepository struct {
	mu     sync.RWMutex
	byUser map[string][]*domain.Notification
	logger *slog.Logger
}

// NewMemoryNotificationRepository creates an empty notification repository
func NewMemoryNotificationRepository(logger *slog.Logger) *MemoryNotificationRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryNotificationRepository{
		byUser: map[string][]*domain.Notification{},
		logger: logger,
	}
}

// Append stores a new notification for its recipient
func (r *MemoryNotificationRepository) Append(n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *n
	r.byUser[n.UserID] = append(r.byUser[n.UserID], &stored)

	r.logger.Debug("notification appended",
		slog.String("user_id", n.UserID),
		slog.String("type", string(n.Type)),
	)
	return nil
}

// ListByUser returns a user's notifications in insertion order
func (r *MemoryNotificationRepository) ListByUser(userID string) ([]*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notifs := r.byUser[userID]
	out := make([]*domain.Notification, 0, len(notifs))
	for _, n := range notifs {
		c := *n
		out = append(out, &c)
	}
	return out, nil
}

// MarkAllRead flips Read on every notification belonging to userID. Calling
// it again is a no-op; other users' notifications are never touched.
func (r *MemoryNotificationRepository) MarkAllRead(userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	marked := 0
	for _, n := range r.byUser[userID] {
		if !n.Read {
			n.Read = true
			marked++
		}
	}
	return marked, nil
}
