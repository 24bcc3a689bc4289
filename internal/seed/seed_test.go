package seed

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/autodoc-au/autodoc/internal/domain"
	"github.com/autodoc-au/autodoc/internal/repository"
)

func openJobsGauge(t *testing.T) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "autodoc_open_jobs" {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return 0
}

func TestDemoSeedsStoreAndOpenJobsGauge(t *testing.T) {
	before := openJobsGauge(t)

	users := repository.NewMemoryUserRepository(nil)
	jobs := repository.NewMemoryJobRepository(nil)
	notifications := repository.NewMemoryNotificationRepository(nil)

	if err := Demo(users, jobs, notifications, nil); err != nil {
		t.Fatalf("seed demo data: %v", err)
	}

	all, err := jobs.List()
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 seeded jobs, got %d", len(all))
	}
	open := 0
	for _, j := range all {
		if j.Status == domain.StatusOpen {
			open++
		}
	}
	if open != 1 {
		t.Fatalf("expected 1 open seeded job, got %d", open)
	}
	if got := openJobsGauge(t) - before; got != float64(open) {
		t.Fatalf("expected open jobs gauge to grow by %d, grew by %v", open, got)
	}

	// Re-seeding fails on the duplicate emails before any job is created,
	// so the gauge stays put.
	if err := Demo(users, jobs, notifications, nil); err == nil {
		t.Fatal("expected second seed to fail on duplicate users")
	}
	if got := openJobsGauge(t) - before; got != float64(open) {
		t.Fatalf("gauge moved on failed re-seed: %v", got)
	}
}
