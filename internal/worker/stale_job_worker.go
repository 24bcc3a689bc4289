package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/autodoc-au/autodoc/internal/domain"
	"github.com/autodoc-au/autodoc/internal/service"
)

// StaleJobWorker periodically cancels OPEN jobs that nobody accepted within
// the configured age. It is gated behind the stale_job_cancel feature flag;
// without it no timer ever touches job state.
type StaleJobWorker struct {
	jobs     domain.JobRepository
	service  *service.JobService
	logger   *slog.Logger
	interval time.Duration
	maxAge   time.Duration
}

// NewStaleJobWorker creates a new stale job worker
func NewStaleJobWorker(
	jobs domain.JobRepository,
	jobService *service.JobService,
	logger *slog.Logger,
	interval time.Duration,
	maxAge time.Duration,
) *StaleJobWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &StaleJobWorker{
		jobs:     jobs,
		service:  jobService,
		logger:   logger,
		interval: interval,
		maxAge:   maxAge,
	}
}

// Start runs the sweep loop until ctx is cancelled
func (w *StaleJobWorker) Start(ctx context.Context) {
	w.logger.Info("stale job worker started",
		slog.Duration("interval", w.interval),
		slog.Duration("max_age", w.maxAge),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stale job worker stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep cancels every open job older than maxAge and returns how many it
// cancelled.
func (w *StaleJobWorker) Sweep(ctx context.Context) int {
	jobs, err := w.jobs.List()
	if err != nil {
		w.logger.Error("failed to list jobs for sweep", slog.String("error", err.Error()))
		return 0
	}

	cutoff := time.Now().Add(-w.maxAge)
	cancelled := 0
	for _, job := range jobs {
		if job.Status != domain.StatusOpen || job.CreatedAt.After(cutoff) {
			continue
		}

		if _, err := w.service.CancelStale(ctx, job.ID); err != nil {
			// A transition racing the sweep (a mechanic accepting right
			// now) shows up as an invalid transition; that is expected.
			if !errors.Is(err, domain.ErrInvalidTransition) {
				w.logger.Error("failed to cancel stale job",
					slog.String("job_id", job.ID),
					slog.String("error", err.Error()),
				)
			}
			continue
		}

		cancelled++
		w.logger.Info("stale job cancelled",
			slog.String("job_id", job.ID),
			slog.Time("created_at", job.CreatedAt),
		)
	}
	return cancelled
}
