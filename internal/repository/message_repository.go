package repository

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/autodoc-au/autodoc/internal/domain"
)

// MemoryMessageRepository implements domain.MessageRepository. Messages are
// append-only and listed per job in timestamp order.
type MemoryMessageRepository struct {
	mu     sync.RWMutex
	byJob  map[string][]*domain.Message
	logger *slog.Logger
}

// NewMemoryMessageRepository creates an empty message repository
func NewMemoryMessageRepository(logger *slog.Logger) *MemoryMessageRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryMessageRepository{
		byJob:  map[string][]*domain.Message{},
		logger: logger,
	}
}

// Append stores a new chat message
func (r *MemoryMessageRepository) Append(msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.JobID == "" {
		return fmt.Errorf("%w: message job id is required", domain.ErrValidation)
	}
	stored := *msg
	r.byJob[msg.JobID] = append(r.byJob[msg.JobID], &stored)

	r.logger.Debug("message appended",
		slog.String("job_id", msg.JobID),
		slog.String("sender_id", msg.SenderID),
	)
	return nil
}

// ListByJob returns a job's messages ordered by timestamp ascending. Two
// messages with the same timestamp keep their append order.
func (r *MemoryMessageRepository) ListByJob(jobID string) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := r.byJob[jobID]
	out := make([]*domain.Message, 0, len(msgs))
	for _, m := range msgs {
		c := *m
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}
