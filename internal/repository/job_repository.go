package repository

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/autodoc-au/autodoc/internal/domain"
)

// MemoryJobRepository implements domain.JobRepository with an in-memory map.
// Jobs are never deleted; lifecycle transitions go through Update with a
// whole-record replace.
type MemoryJobRepository struct {
	mu     sync.RWMutex
	byID   map[string]*domain.Job
	order  []string
	logger *slog.Logger
}

// NewMemoryJobRepository creates an empty job repository
func NewMemoryJobRepository(logger *slog.Logger) *MemoryJobRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryJobRepository{
		byID:   map[string]*domain.Job{},
		logger: logger,
	}
}

// Create adds a new job
func (r *MemoryJobRepository) Create(job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[job.ID]; exists {
		return fmt.Errorf("%w: duplicate job id %s", domain.ErrValidation, job.ID)
	}

	stored := cloneJob(job)
	r.byID[stored.ID] = stored
	r.order = append(r.order, stored.ID)

	r.logger.Debug("job created",
		slog.String("job_id", stored.ID),
		slog.String("customer_id", stored.CustomerID),
		slog.String("category", stored.Category),
	)
	return nil
}

// GetByID retrieves a job by id
func (r *MemoryJobRepository) GetByID(id string) (*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, exists := r.byID[id]
	if !exists {
		return nil, fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	return cloneJob(job), nil
}

// Update replaces the stored record for an existing job
func (r *MemoryJobRepository) Update(job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[job.ID]; !exists {
		return fmt.Errorf("job %s: %w", job.ID, domain.ErrNotFound)
	}
	r.byID[job.ID] = cloneJob(job)
	return nil
}

// List returns all jobs in insertion order
func (r *MemoryJobRepository) List() ([]*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Job, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneJob(r.byID[id]))
	}
	return out, nil
}

// cloneJob copies a job so callers never alias store-owned memory.
func cloneJob(j *domain.Job) *domain.Job {
	c := *j
	c.Photos = append([]string(nil), j.Photos...)
	if j.FinalPrice != nil {
		p := *j.FinalPrice
		c.FinalPrice = &p
	}
	return &c
}
