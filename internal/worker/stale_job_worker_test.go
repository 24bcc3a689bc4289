package worker

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/autodoc-au/autodoc/internal/domain"
	"github.com/autodoc-au/autodoc/internal/repository"
	"github.com/autodoc-au/autodoc/internal/security"
	"github.com/autodoc-au/autodoc/internal/service"
)

func newSweepFixture(t *testing.T) (*StaleJobWorker, *repository.MemoryJobRepository) {
	t.Helper()

	users := repository.NewMemoryUserRepository(nil)
	jobs := repository.NewMemoryJobRepository(nil)
	messages := repository.NewMemoryMessageRepository(nil)
	notifications := repository.NewMemoryNotificationRepository(nil)
	notifier := service.NewNotifier(notifications, nil, nil)
	authz := security.NewAuthorizationService(nil)
	jobService := service.NewJobService(jobs, users, messages, notifier, authz, nil, nil)

	w := NewStaleJobWorker(jobs, jobService, nil, time.Minute, 48*time.Hour)
	return w, jobs
}

func seedJob(t *testing.T, jobs *repository.MemoryJobRepository, id string, status domain.JobStatus, age time.Duration) {
	t.Helper()
	err := jobs.Create(&domain.Job{
		ID:         id,
		CustomerID: "usr_customer",
		Status:     status,
		Category:   "General Repair",
		CreatedAt:  time.Now().Add(-age),
	})
	if err != nil {
		t.Fatalf("failed to seed job %s: %v", id, err)
	}
}

func TestSweepCancelsOnlyStaleOpenJobs(t *testing.T) {
	w, jobs := newSweepFixture(t)

	seedJob(t, jobs, "job_stale", domain.StatusOpen, 72*time.Hour)
	seedJob(t, jobs, "job_fresh", domain.StatusOpen, time.Hour)
	seedJob(t, jobs, "job_accepted", domain.StatusAccepted, 72*time.Hour)
	seedJob(t, jobs, "job_closed", domain.StatusPaidAndClosed, 72*time.Hour)

	cancelled := w.Sweep(context.Background())
	if cancelled != 1 {
		t.Fatalf("expected 1 cancelled, got %d", cancelled)
	}

	expect := map[string]domain.JobStatus{
		"job_stale":    domain.StatusCancelled,
		"job_fresh":    domain.StatusOpen,
		"job_accepted": domain.StatusAccepted,
		"job_closed":   domain.StatusPaidAndClosed,
	}
	for id, want := range expect {
		job, err := jobs.GetByID(id)
		if err != nil {
			t.Fatalf("get %s failed: %v", id, err)
		}
		if job.Status != want {
			t.Errorf("%s: expected %s, got %s", id, want, job.Status)
		}
	}

	// A second sweep finds nothing left
	if cancelled := w.Sweep(context.Background()); cancelled != 0 {
		t.Fatalf("expected idempotent sweep, got %d", cancelled)
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, _ := newSweepFixture(t)
	w.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("worker did not stop after cancel")
	}
}
