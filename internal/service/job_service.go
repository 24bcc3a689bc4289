package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/autodoc-au/autodoc/internal/domain"
	"github.com/autodoc-au/autodoc/internal/observability/metrics"
	"github.com/autodoc-au/autodoc/internal/security"
	"github.com/autodoc-au/autodoc/pkg/config"
)

// JobService owns the job lifecycle. Every transition follows the same path:
// resolve the actor, authorize (fail-closed), check the current-state
// precondition, mutate, then dispatch derived notifications. Transitions on
// the same job are serialized by a per-job lock; distinct jobs never contend.
//
// The transition set is closed:
//
//	OPEN -> ACCEPTED -> COMPLETED_PENDING_PAYMENT -> PAID_AND_CLOSED
//	any non-terminal state -> CANCELLED
type JobService struct {
	jobs     domain.JobRepository
	users    domain.UserRepository
	messages domain.MessageRepository
	notifier *Notifier
	authz    *security.AuthorizationService
	config   *config.Config
	logger   *slog.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// JobDraft carries the customer-supplied fields of a new job
type JobDraft struct {
	Category    string
	Description string
	Vehicle     domain.Vehicle
	Location    string
	Photos      []string
}

// JobFilter narrows a job listing
type JobFilter struct {
	Status     domain.JobStatus
	Category   string
	CustomerID string
	MechanicID string
	Query      string // free text over category, vehicle make and location
}

// NewJobService creates a new job service
func NewJobService(
	jobs domain.JobRepository,
	users domain.UserRepository,
	messages domain.MessageRepository,
	notifier *Notifier,
	authz *security.AuthorizationService,
	cfg *config.Config,
	logger *slog.Logger,
) *JobService {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobService{
		jobs:     jobs,
		users:    users,
		messages: messages,
		notifier: notifier,
		authz:    authz,
		config:   cfg,
		logger:   logger,
		locks:    map[string]*sync.Mutex{},
	}
}

// Create opens a new job for the acting customer
func (s *JobService) Create(ctx context.Context, actorID string, draft JobDraft) (*domain.Job, error) {
	actor, err := s.users.GetByID(actorID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(actor, security.ActionCreateJob, nil); err != nil {
		metrics.ObserveTransition("create", "unauthorized")
		return nil, err
	}
	if err := s.validateDraft(draft); err != nil {
		metrics.ObserveTransition("create", "invalid")
		return nil, err
	}

	job := &domain.Job{
		ID:          domain.NewID(domain.IDPrefixJob),
		CustomerID:  actor.ID,
		Status:      domain.StatusOpen,
		Category:    draft.Category,
		Description: draft.Description,
		Vehicle:     draft.Vehicle,
		Location:    draft.Location,
		CreatedAt:   time.Now(),
		Photos:      draft.Photos,
	}
	if err := s.jobs.Create(job); err != nil {
		metrics.ObserveTransition("create", "error")
		return nil, err
	}

	metrics.ObserveTransition("create", "ok")
	metrics.IncrementOpenJobs()
	s.logger.Info("job created",
		slog.String("job_id", job.ID),
		slog.String("customer_id", actor.ID),
		slog.String("category", job.Category),
	)
	return job, nil
}

// Accept assigns an open job to the acting mechanic
func (s *JobService) Accept(ctx context.Context, jobID, actorID string) (*domain.Job, error) {
	unlock := s.lockJob(jobID)
	defer unlock()

	job, actor, err := s.resolve(jobID, actorID)
	if err != nil {
		metrics.ObserveTransition("accept", "not_found")
		return nil, err
	}
	if err := s.authz.Authorize(actor, security.ActionAcceptJob, job); err != nil {
		metrics.ObserveTransition("accept", "unauthorized")
		return nil, err
	}
	if job.Status != domain.StatusOpen {
		metrics.ObserveTransition("accept", "invalid")
		return nil, fmt.Errorf("%w: cannot accept job in status %s", domain.ErrInvalidTransition, job.Status)
	}

	job.Status = domain.StatusAccepted
	job.MechanicID = actor.ID
	if err := s.jobs.Update(job); err != nil {
		metrics.ObserveTransition("accept", "error")
		return nil, err
	}

	metrics.ObserveTransition("accept", "ok")
	metrics.DecrementOpenJobs()
	s.notifier.JobAccepted(job, actor)
	s.logger.Info("job accepted",
		slog.String("job_id", job.ID),
		slog.String("mechanic_id", actor.ID),
	)
	return job, nil
}

// Complete marks an accepted job as done, pending payment
func (s *JobService) Complete(ctx context.Context, jobID, actorID string) (*domain.Job, error) {
	unlock := s.lockJob(jobID)
	defer unlock()

	job, actor, err := s.resolve(jobID, actorID)
	if err != nil {
		metrics.ObserveTransition("complete", "not_found")
		return nil, err
	}
	if err := s.authz.Authorize(actor, security.ActionCompleteJob, job); err != nil {
		metrics.ObserveTransition("complete", "unauthorized")
		return nil, err
	}
	if job.Status != domain.StatusAccepted {
		metrics.ObserveTransition("complete", "invalid")
		return nil, fmt.Errorf("%w: cannot complete job in status %s", domain.ErrInvalidTransition, job.Status)
	}

	job.Status = domain.StatusCompletedPendingPayment
	if err := s.jobs.Update(job); err != nil {
		metrics.ObserveTransition("complete", "error")
		return nil, err
	}

	metrics.ObserveTransition("complete", "ok")
	s.notifier.JobCompleted(job, actor)
	s.logger.Info("job completed", slog.String("job_id", job.ID))
	return job, nil
}

// ConfirmPayment closes a completed job and records the amount paid
func (s *JobService) ConfirmPayment(ctx context.Context, jobID, actorID string, amount float64) (*domain.Job, error) {
	unlock := s.lockJob(jobID)
	defer unlock()

	job, actor, err := s.resolve(jobID, actorID)
	if err != nil {
		metrics.ObserveTransition("confirm_payment", "not_found")
		return nil, err
	}
	if err := s.authz.Authorize(actor, security.ActionConfirmPayment, job); err != nil {
		metrics.ObserveTransition("confirm_payment", "unauthorized")
		return nil, err
	}
	if job.Status != domain.StatusCompletedPendingPayment {
		metrics.ObserveTransition("confirm_payment", "invalid")
		return nil, fmt.Errorf("%w: cannot confirm payment for job in status %s", domain.ErrInvalidTransition, job.Status)
	}
	if amount <= 0 {
		metrics.ObserveTransition("confirm_payment", "invalid")
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}

	job.Status = domain.StatusPaidAndClosed
	job.FinalPrice = &amount
	if err := s.jobs.Update(job); err != nil {
		metrics.ObserveTransition("confirm_payment", "error")
		return nil, err
	}

	metrics.ObserveTransition("confirm_payment", "ok")
	s.notifier.PaymentConfirmed(job)
	s.logger.Info("payment confirmed",
		slog.String("job_id", job.ID),
		slog.Float64("final_price", amount),
	)
	return job, nil
}

// Cancel moves a non-terminal job to CANCELLED
func (s *JobService) Cancel(ctx context.Context, jobID, actorID string) (*domain.Job, error) {
	unlock := s.lockJob(jobID)
	defer unlock()

	job, actor, err := s.resolve(jobID, actorID)
	if err != nil {
		metrics.ObserveTransition("cancel", "not_found")
		return nil, err
	}
	if err := s.authz.Authorize(actor, security.ActionCancelJob, job); err != nil {
		metrics.ObserveTransition("cancel", "unauthorized")
		return nil, err
	}
	return s.cancelLocked(job, actor.ID, "cancel")
}

// CancelStale cancels an OPEN job that outlived the configured age. Reserved
// for the background sweeper; it bypasses actor authorization but keeps the
// state-machine precondition.
func (s *JobService) CancelStale(ctx context.Context, jobID string) (*domain.Job, error) {
	unlock := s.lockJob(jobID)
	defer unlock()

	job, err := s.jobs.GetByID(jobID)
	if err != nil {
		metrics.ObserveTransition("cancel_stale", "not_found")
		return nil, err
	}
	if job.Status != domain.StatusOpen {
		metrics.ObserveTransition("cancel_stale", "invalid")
		return nil, fmt.Errorf("%w: job is no longer open", domain.ErrInvalidTransition)
	}
	return s.cancelLocked(job, "", "cancel_stale")
}

func (s *JobService) cancelLocked(job *domain.Job, actorID, action string) (*domain.Job, error) {
	if job.Status.Terminal() {
		metrics.ObserveTransition(action, "invalid")
		return nil, fmt.Errorf("%w: cannot cancel job in status %s", domain.ErrInvalidTransition, job.Status)
	}

	wasOpen := job.Status == domain.StatusOpen
	job.Status = domain.StatusCancelled
	if err := s.jobs.Update(job); err != nil {
		metrics.ObserveTransition(action, "error")
		return nil, err
	}

	metrics.ObserveTransition(action, "ok")
	if wasOpen {
		metrics.DecrementOpenJobs()
	}
	s.notifier.JobCancelled(job, actorID)
	s.logger.Info("job cancelled",
		slog.String("job_id", job.ID),
		slog.String("actor_id", actorID),
	)
	return job, nil
}

// SendMessage appends a chat message to a job the actor participates in
func (s *JobService) SendMessage(ctx context.Context, jobID, actorID, content string) (*domain.Message, error) {
	job, actor, err := s.resolve(jobID, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(actor, security.ActionSendMessage, job); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", domain.ErrValidation)
	}

	msg := &domain.Message{
		ID:        domain.NewID(domain.IDPrefixMessage),
		JobID:     job.ID,
		SenderID:  actor.ID,
		Content:   content,
		Timestamp: time.Now(),
	}
	if err := s.messages.Append(msg); err != nil {
		return nil, err
	}

	metrics.ObserveMessage()
	s.notifier.MessageSent(job, msg, actor)
	return msg, nil
}

// Get returns a single job
func (s *JobService) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	return s.jobs.GetByID(jobID)
}

// List returns jobs matching the filter, newest first
func (s *JobService) List(ctx context.Context, filter JobFilter) ([]*domain.Job, error) {
	jobs, err := s.jobs.List()
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Job, 0, len(jobs))
	for _, j := range jobs {
		if filter.Status != "" && j.Status != filter.Status {
			continue
		}
		if filter.Category != "" && j.Category != filter.Category {
			continue
		}
		if filter.CustomerID != "" && j.CustomerID != filter.CustomerID {
			continue
		}
		if filter.MechanicID != "" && j.MechanicID != filter.MechanicID {
			continue
		}
		if filter.Query != "" && !matchesQuery(j, filter.Query) {
			continue
		}
		out = append(out, j)
	}

	// Insertion order is oldest first; callers want the newest on top.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// ListMessages returns a job's chat, oldest first
func (s *JobService) ListMessages(ctx context.Context, jobID string) ([]*domain.Message, error) {
	if _, err := s.jobs.GetByID(jobID); err != nil {
		return nil, err
	}
	return s.messages.ListByJob(jobID)
}

func (s *JobService) validateDraft(draft JobDraft) error {
	if strings.TrimSpace(draft.Description) == "" {
		return fmt.Errorf("%w: description is required", domain.ErrValidation)
	}
	if strings.TrimSpace(draft.Location) == "" {
		return fmt.Errorf("%w: location is required", domain.ErrValidation)
	}
	if draft.Vehicle.Make == "" || draft.Vehicle.Model == "" || draft.Vehicle.Year == "" {
		return fmt.Errorf("%w: vehicle make, model and year are required", domain.ErrValidation)
	}
	if !s.categoryAllowed(draft.Category) {
		return fmt.Errorf("%w: unknown job category %q", domain.ErrValidation, draft.Category)
	}
	maxPhotos := domain.MaxJobPhotos
	if s.config != nil && s.config.MaxJobPhotos > 0 {
		maxPhotos = s.config.MaxJobPhotos
	}
	if len(draft.Photos) > maxPhotos {
		return fmt.Errorf("%w: at most %d photos allowed", domain.ErrValidation, maxPhotos)
	}
	return nil
}

// matchesQuery does a case-insensitive substring match over the fields a
// mechanic browses by: category, vehicle make and location.
func matchesQuery(j *domain.Job, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{j.Category, j.Vehicle.Make, j.Location} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (s *JobService) categoryAllowed(category string) bool {
	categories := config.DefaultJobCategories
	if s.config != nil && len(s.config.JobCategories) > 0 {
		categories = s.config.JobCategories
	}
	for _, c := range categories {
		if c == category {
			return true
		}
	}
	return false
}

// resolve loads the job and the acting user for a transition
func (s *JobService) resolve(jobID, actorID string) (*domain.Job, *domain.User, error) {
	job, err := s.jobs.GetByID(jobID)
	if err != nil {
		return nil, nil, err
	}
	actor, err := s.users.GetByID(actorID)
	if err != nil {
		return nil, nil, err
	}
	return job, actor, nil
}

// lockJob serializes transitions per job id. Lock entries are never removed;
// the map is bounded by the number of jobs the process has touched.
func (s *JobService) lockJob(jobID string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[jobID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[jobID] = l
	}
	s.locksMu.Unlock()

	l.Lock()
	return l.Unlock
}
