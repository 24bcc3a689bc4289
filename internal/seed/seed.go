// Package seed loads the demo dataset used for local development: a
// customer, a verified mechanic, an admin and a handful of jobs in various
// lifecycle states, including closed ones with final prices so the analytics
// dashboards have something to show.
package seed

import (
	"log/slog"
	"time"

	"github.com/autodoc-au/autodoc/internal/domain"
	"github.com/autodoc-au/autodoc/internal/observability/metrics"
)

func price(v float64) *float64 { return &v }

// Demo populates the repositories with the demo dataset. It assumes empty
// repositories; seeding twice fails on the duplicate emails.
func Demo(
	users domain.UserRepository,
	jobs domain.JobRepository,
	notifications domain.NotificationRepository,
	logger *slog.Logger,
) error {
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now()

	customer := &domain.User{
		ID:    domain.NewID(domain.IDPrefixUser),
		Name:  "Sarah Jenkins",
		Email: "sarah@example.com",
		Phone: "0400 123 456",
		Role:  domain.RoleCustomer,
	}
	mechanic := &domain.User{
		ID:    domain.NewID(domain.IDPrefixUser),
		Name:  `Mike "The Wrench" O'Connor`,
		Email: "mike@mechanic.com",
		Phone: "0411 222 333",
		Role:  domain.RoleMechanic,
		Mechanic: &domain.MechanicProfile{
			Verified:        true,
			Skills:          []string{"Diesel Engines", "Toyota Specialist", "Emergency Starts"},
			Bio:             "Mobile mechanic with 15 years experience. Servicing North Adelaide.",
			ExperienceYears: 15,
		},
	}
	admin := &domain.User{
		ID:    domain.NewID(domain.IDPrefixUser),
		Name:  "Admin Alice",
		Email: "admin@autodoc.com",
		Role:  domain.RoleAdmin,
	}
	for _, u := range []*domain.User{customer, mechanic, admin} {
		if err := users.Create(u); err != nil {
			return err
		}
	}

	demoJobs := []*domain.Job{
		{
			ID:          domain.NewID(domain.IDPrefixJob),
			CustomerID:  customer.ID,
			Status:      domain.StatusOpen,
			Category:    "Emergency Breakdown",
			Description: "Car wont start, clicking noise. Need help ASAP.",
			Vehicle:     domain.Vehicle{Make: "Mazda", Model: "3", Year: "2015", Rego: "S123-ABC"},
			Location:    "Glenelg, SA",
			CreatedAt:   now.Add(-2 * time.Hour),
		},
		{
			ID:          domain.NewID(domain.IDPrefixJob),
			CustomerID:  customer.ID,
			MechanicID:  mechanic.ID,
			Status:      domain.StatusAccepted,
			Category:    "Logbook Servicing",
			Description: "60,000km service needed.",
			Vehicle:     domain.Vehicle{Make: "Toyota", Model: "Hilux", Year: "2018", Rego: "WORK-UTE"},
			Location:    "North Adelaide, SA",
			CreatedAt:   now.Add(-24 * time.Hour),
		},
		{
			ID:          domain.NewID(domain.IDPrefixJob),
			CustomerID:  customer.ID,
			MechanicID:  mechanic.ID,
			Status:      domain.StatusPaidAndClosed,
			Category:    "Battery Replacement",
			Description: "Battery dead, need replacement.",
			Vehicle:     domain.Vehicle{Make: "Honda", Model: "Civic", Year: "2012"},
			Location:    "Prospect, SA",
			CreatedAt:   now.Add(-5 * 24 * time.Hour),
			FinalPrice:  price(180),
		},
		{
			ID:          domain.NewID(domain.IDPrefixJob),
			CustomerID:  customer.ID,
			MechanicID:  mechanic.ID,
			Status:      domain.StatusPaidAndClosed,
			Category:    "General Repair",
			Description: "Brake pads replacement.",
			Vehicle:     domain.Vehicle{Make: "Ford", Model: "Ranger", Year: "2019"},
			Location:    "Mawson Lakes, SA",
			CreatedAt:   now.Add(-15 * 24 * time.Hour),
			FinalPrice:  price(350),
		},
		{
			ID:          domain.NewID(domain.IDPrefixJob),
			CustomerID:  customer.ID,
			MechanicID:  mechanic.ID,
			Status:      domain.StatusPaidAndClosed,
			Category:    "Diagnostics",
			Description: "Check engine light is on.",
			Vehicle:     domain.Vehicle{Make: "Hyundai", Model: "i30", Year: "2016"},
			Location:    "North Adelaide, SA",
			CreatedAt:   now.Add(-40 * 24 * time.Hour),
			FinalPrice:  price(120),
		},
	}
	for _, j := range demoJobs {
		if err := jobs.Create(j); err != nil {
			return err
		}
		// Keep the open jobs gauge in step with the store so transitions
		// on seeded jobs do not drive it negative.
		if j.Status == domain.StatusOpen {
			metrics.IncrementOpenJobs()
		}
	}

	welcome := &domain.Notification{
		ID:        domain.NewID(domain.IDPrefixNotification),
		UserID:    customer.ID,
		Title:     "Welcome to AutoDoc",
		Message:   "Post a job and nearby mechanics will pick it up.",
		Timestamp: now.Add(-48 * time.Hour),
		Type:      domain.NotifySystem,
	}
	if err := notifications.Append(welcome); err != nil {
		return err
	}

	logger.Info("demo data seeded",
		slog.Int("users", 3),
		slog.Int("jobs", len(demoJobs)),
	)
	return nil
}
