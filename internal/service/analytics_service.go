package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/autodoc-au/autodoc/internal/domain"
	"github.com/autodoc-au/autodoc/pkg/cache"
)

// analyticsCacheTTL keeps hot dashboards from rescanning the job list on
// every refresh. Short enough that a fresh payment shows up quickly.
const analyticsCacheTTL = 30 * time.Second

// AnalyticsService aggregates revenue figures from closed jobs. Only jobs in
// PAID_AND_CLOSED carry a final price, so everything here scans that subset.
type AnalyticsService struct {
	jobs   domain.JobRepository
	cache  *cache.Cache
	logger *slog.Logger
}

// MonthlyEarnings is one bucket of a mechanic's earnings chart
type MonthlyEarnings struct {
	Month  string  `json:"month"` // e.g. "May"
	Year   int     `json:"year"`
	Amount float64 `json:"amount"`
}

// EarningsReport summarizes one mechanic's closed jobs
type EarningsReport struct {
	MechanicID    string            `json:"mechanicId"`
	TotalEarnings float64           `json:"totalEarnings"`
	JobsCompleted int               `json:"jobsCompleted"`
	Monthly       []MonthlyEarnings `json:"monthly"` // oldest of the last 4 months first
}

// PlatformStats summarizes the whole marketplace for admins
type PlatformStats struct {
	TotalRevenue float64        `json:"totalRevenue"`
	JobsByStatus map[string]int `json:"jobsByStatus"`
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(jobs domain.JobRepository, logger *slog.Logger) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{
		jobs:   jobs,
		cache:  cache.New(),
		logger: logger,
	}
}

// MechanicEarnings returns the total and last-4-months earnings for a mechanic
func (s *AnalyticsService) MechanicEarnings(ctx context.Context, mechanicID string) (*EarningsReport, error) {
	cacheKey := "earnings:" + mechanicID
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(*EarningsReport), nil
	}

	jobs, err := s.jobs.List()
	if err != nil {
		return nil, err
	}

	report := &EarningsReport{
		MechanicID: mechanicID,
		Monthly:    lastFourMonths(time.Now()),
	}
	for _, job := range jobs {
		if job.MechanicID != mechanicID || job.Status != domain.StatusPaidAndClosed {
			continue
		}
		amount := 0.0
		if job.FinalPrice != nil {
			amount = *job.FinalPrice
		}
		report.TotalEarnings += amount
		report.JobsCompleted++

		for i := range report.Monthly {
			m := &report.Monthly[i]
			if job.CreatedAt.Year() == m.Year && job.CreatedAt.Month().String()[:3] == m.Month {
				m.Amount += amount
			}
		}
	}

	s.cache.Set(cacheKey, report, analyticsCacheTTL)
	return report, nil
}

// PlatformStats returns marketplace-wide revenue and job counts by status
func (s *AnalyticsService) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	if cached, ok := s.cache.Get("platform"); ok {
		return cached.(*PlatformStats), nil
	}

	jobs, err := s.jobs.List()
	if err != nil {
		return nil, err
	}

	stats := &PlatformStats{JobsByStatus: map[string]int{}}
	for _, job := range jobs {
		stats.JobsByStatus[string(job.Status)]++
		if job.Status == domain.StatusPaidAndClosed && job.FinalPrice != nil {
			stats.TotalRevenue += *job.FinalPrice
		}
	}

	s.cache.Set("platform", stats, analyticsCacheTTL)
	return stats, nil
}

// lastFourMonths builds empty buckets for the current month and the three
// before it, oldest first.
func lastFourMonths(now time.Time) []MonthlyEarnings {
	out := make([]MonthlyEarnings, 0, 4)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 3; i >= 0; i-- {
		d := first.AddDate(0, -i, 0)
		out = append(out, MonthlyEarnings{
			Month: d.Month().String()[:3],
			Year:  d.Year(),
		})
	}
	return out
}
