package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/autodoc-au/autodoc/internal/domain"
	"github.com/autodoc-au/autodoc/internal/repository"
	"github.com/autodoc-au/autodoc/internal/security"
)

type jobTestEnv struct {
	service       *JobService
	users         *repository.MemoryUserRepository
	jobs          *repository.MemoryJobRepository
	notifications *repository.MemoryNotificationRepository

	customer *domain.User
	mechanic *domain.User
	admin    *domain.User
}

func newJobTestEnv(t *testing.T) *jobTestEnv {
	t.Helper()

	users := repository.NewMemoryUserRepository(nil)
	jobs := repository.NewMemoryJobRepository(nil)
	messages := repository.NewMemoryMessageRepository(nil)
	notifications := repository.NewMemoryNotificationRepository(nil)
	notifier := NewNotifier(notifications, nil, nil)
	authz := security.NewAuthorizationService(nil)

	env := &jobTestEnv{
		service:       NewJobService(jobs, users, messages, notifier, authz, nil, nil),
		users:         users,
		jobs:          jobs,
		notifications: notifications,
		customer: &domain.User{
			ID:    "usr_customer",
			Name:  "Sarah",
			Email: "sarah@example.com",
			Role:  domain.RoleCustomer,
		},
		mechanic: &domain.User{
			ID:    "usr_mechanic",
			Name:  "Mike",
			Email: "mike@example.com",
			Role:  domain.RoleMechanic,
			Mechanic: &domain.MechanicProfile{
				Verified: true,
			},
		},
		admin: &domain.User{
			ID:    "usr_admin",
			Name:  "Alice",
			Email: "alice@example.com",
			Role:  domain.RoleAdmin,
		},
	}
	for _, u := range []*domain.User{env.customer, env.mechanic, env.admin} {
		if err := users.Create(u); err != nil {
			t.Fatalf("failed to create user %s: %v", u.ID, err)
		}
	}
	return env
}

func (env *jobTestEnv) openJob(t *testing.T) *domain.Job {
	t.Helper()
	job, err := env.service.Create(context.Background(), env.customer.ID, JobDraft{
		Category:    "General Repair",
		Description: "Brakes squeal at low speed",
		Vehicle:     domain.Vehicle{Make: "Toyota", Model: "Corolla", Year: "2018"},
		Location:    "Prospect, SA",
	})
	if err != nil {
		t.Fatalf("failed to create job: %v", err)
	}
	return job
}

func TestJobLifecycleHappyPath(t *testing.T) {
	env := newJobTestEnv(t)
	ctx := context.Background()

	job := env.openJob(t)
	if job.Status != domain.StatusOpen {
		t.Fatalf("expected OPEN, got %s", job.Status)
	}
	if job.MechanicID != "" {
		t.Fatalf("open job must have no mechanic, got %q", job.MechanicID)
	}

	job, err := env.service.Accept(ctx, job.ID, env.mechanic.ID)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if job.Status != domain.StatusAccepted || job.MechanicID != env.mechanic.ID {
		t.Fatalf("expected ACCEPTED by %s, got %s/%s", env.mechanic.ID, job.Status, job.MechanicID)
	}

	job, err = env.service.Complete(ctx, job.ID, env.mechanic.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if job.Status != domain.StatusCompletedPendingPayment {
		t.Fatalf("expected COMPLETED_PENDING_PAYMENT, got %s", job.Status)
	}

	job, err = env.service.ConfirmPayment(ctx, job.ID, env.customer.ID, 250)
	if err != nil {
		t.Fatalf("confirm payment failed: %v", err)
	}
	if job.Status != domain.StatusPaidAndClosed {
		t.Fatalf("expected PAID_AND_CLOSED, got %s", job.Status)
	}
	if job.FinalPrice == nil || *job.FinalPrice != 250 {
		t.Fatalf("expected final price 250, got %v", job.FinalPrice)
	}

	// Accept and complete notify the customer; payment notifies the mechanic
	inbox, err := env.notifications.ListByUser(env.customer.ID)
	if err != nil {
		t.Fatalf("failed to list notifications: %v", err)
	}
	if len(inbox) != 2 {
		t.Fatalf("expected 2 customer notifications (accept, complete), got %d", len(inbox))
	}
	mechInbox, _ := env.notifications.ListByUser(env.mechanic.ID)
	if len(mechInbox) != 1 {
		t.Fatalf("expected 1 mechanic notification (payment), got %d", len(mechInbox))
	}
}

func TestAcceptRequiresVerifiedMechanic(t *testing.T) {
	env := newJobTestEnv(t)
	job := env.openJob(t)

	unverified := &domain.User{
		ID:       "usr_newbie",
		Name:     "Nick",
		Email:    "nick@example.com",
		Role:     domain.RoleMechanic,
		Mechanic: &domain.MechanicProfile{Verified: false},
	}
	if err := env.users.Create(unverified); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	_, err := env.service.Accept(context.Background(), job.ID, unverified.ID)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	got, _ := env.service.Get(context.Background(), job.ID)
	if got.Status != domain.StatusOpen {
		t.Fatalf("denied accept must not change status, got %s", got.Status)
	}
}

func TestCustomerCannotAccept(t *testing.T) {
	env := newJobTestEnv(t)
	job := env.openJob(t)

	_, err := env.service.Accept(context.Background(), job.ID, env.customer.ID)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAcceptTakenJobConflicts(t *testing.T) {
	env := newJobTestEnv(t)
	ctx := context.Background()
	job := env.openJob(t)

	second := &domain.User{
		ID:       "usr_mech2",
		Name:     "Raj",
		Email:    "raj@example.com",
		Role:     domain.RoleMechanic,
		Mechanic: &domain.MechanicProfile{Verified: true},
	}
	if err := env.users.Create(second); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	if _, err := env.service.Accept(ctx, job.ID, env.mechanic.ID); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}
	_, err := env.service.Accept(ctx, job.ID, second.ID)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	got, _ := env.service.Get(ctx, job.ID)
	if got.MechanicID != env.mechanic.ID {
		t.Fatalf("assignment must not change, got %s", got.MechanicID)
	}
}

func TestCompleteOnlyByAssignedMechanic(t *testing.T) {
	env := newJobTestEnv(t)
	ctx := context.Background()
	job := env.openJob(t)

	other := &domain.User{
		ID:       "usr_mech2",
		Name:     "Raj",
		Email:    "raj@example.com",
		Role:     domain.RoleMechanic,
		Mechanic: &domain.MechanicProfile{Verified: true},
	}
	if err := env.users.Create(other); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	if _, err := env.service.Accept(ctx, job.ID, env.mechanic.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if _, err := env.service.Complete(ctx, job.ID, other.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for other mechanic, got %v", err)
	}
}

func TestConfirmPaymentRules(t *testing.T) {
	env := newJobTestEnv(t)
	ctx := context.Background()
	job := env.openJob(t)

	// Wrong state
	if _, err := env.service.ConfirmPayment(ctx, job.ID, env.customer.ID, 100); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on OPEN job, got %v", err)
	}

	env.service.Accept(ctx, job.ID, env.mechanic.ID)
	env.service.Complete(ctx, job.ID, env.mechanic.ID)

	// Wrong actor: only the job's customer pays
	if _, err := env.service.ConfirmPayment(ctx, job.ID, env.mechanic.ID, 100); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for mechanic, got %v", err)
	}

	// Bad amount
	if _, err := env.service.ConfirmPayment(ctx, job.ID, env.customer.ID, 0); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for zero amount, got %v", err)
	}

	if _, err := env.service.ConfirmPayment(ctx, job.ID, env.customer.ID, 99.5); err != nil {
		t.Fatalf("confirm payment failed: %v", err)
	}
}

func TestCancelAuthorization(t *testing.T) {
	env := newJobTestEnv(t)
	ctx := context.Background()

	otherCustomer := &domain.User{
		ID:    "usr_cust2",
		Name:  "Tom",
		Email: "tom@example.com",
		Role:  domain.RoleCustomer,
	}
	if err := env.users.Create(otherCustomer); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	// Owner may cancel
	job := env.openJob(t)
	if _, err := env.service.Cancel(ctx, job.ID, env.customer.ID); err != nil {
		t.Fatalf("owner cancel failed: %v", err)
	}

	// A different customer may not
	job = env.openJob(t)
	if _, err := env.service.Cancel(ctx, job.ID, otherCustomer.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-owner, got %v", err)
	}

	// Admin may cancel anything non-terminal
	if _, err := env.service.Cancel(ctx, job.ID, env.admin.ID); err != nil {
		t.Fatalf("admin cancel failed: %v", err)
	}

	// Mechanics never cancel
	job = env.openJob(t)
	if _, err := env.service.Cancel(ctx, job.ID, env.mechanic.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for mechanic, got %v", err)
	}
}

func TestTerminalStatesAreFrozen(t *testing.T) {
	env := newJobTestEnv(t)
	ctx := context.Background()
	job := env.openJob(t)

	env.service.Accept(ctx, job.ID, env.mechanic.ID)
	env.service.Complete(ctx, job.ID, env.mechanic.ID)
	env.service.ConfirmPayment(ctx, job.ID, env.customer.ID, 300)

	if _, err := env.service.Cancel(ctx, job.ID, env.admin.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition cancelling closed job, got %v", err)
	}

	cancelled := env.openJob(t)
	env.service.Cancel(ctx, cancelled.ID, env.customer.ID)
	if _, err := env.service.Accept(ctx, cancelled.ID, env.mechanic.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition accepting cancelled job, got %v", err)
	}
}

func TestCancelStaleOnlyOpenJobs(t *testing.T) {
	env := newJobTestEnv(t)
	ctx := context.Background()

	open := env.openJob(t)
	if _, err := env.service.CancelStale(ctx, open.ID); err != nil {
		t.Fatalf("stale cancel of open job failed: %v", err)
	}

	accepted := env.openJob(t)
	env.service.Accept(ctx, accepted.ID, env.mechanic.ID)
	if _, err := env.service.CancelStale(ctx, accepted.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for accepted job, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	env := newJobTestEnv(t)
	ctx := context.Background()

	base := JobDraft{
		Category:    "General Repair",
		Description: "Brakes squeal",
		Vehicle:     domain.Vehicle{Make: "Toyota", Model: "Corolla", Year: "2018"},
		Location:    "Prospect, SA",
	}

	cases := []struct {
		name   string
		mutate func(d *JobDraft)
	}{
		{"missing description", func(d *JobDraft) { d.Description = "  " }},
		{"missing location", func(d *JobDraft) { d.Location = "" }},
		{"missing vehicle year", func(d *JobDraft) { d.Vehicle.Year = "" }},
		{"unknown category", func(d *JobDraft) { d.Category = "Time Travel Repair" }},
		{"too many photos", func(d *JobDraft) { d.Photos = []string{"a", "b", "c", "d"} }},
	}
	for _, tc := range cases {
		draft := base
		tc.mutate(&draft)
		if _, err := env.service.Create(ctx, env.customer.ID, draft); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}

	// Mechanics cannot post jobs
	if _, err := env.service.Create(ctx, env.mechanic.ID, base); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for mechanic, got %v", err)
	}
}

func TestSendMessageParticipantsOnly(t *testing.T) {
	env := newJobTestEnv(t)
	ctx := context.Background()
	job := env.openJob(t)
	env.service.Accept(ctx, job.ID, env.mechanic.ID)

	outsider := &domain.User{
		ID:    "usr_cust2",
		Name:  "Tom",
		Email: "tom@example.com",
		Role:  domain.RoleCustomer,
	}
	if err := env.users.Create(outsider); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	msg, err := env.service.SendMessage(ctx, job.ID, env.customer.ID, "  When can you come?  ")
	if err != nil {
		t.Fatalf("customer message failed: %v", err)
	}
	if msg.Content != "When can you come?" {
		t.Fatalf("expected trimmed content, got %q", msg.Content)
	}

	if _, err := env.service.SendMessage(ctx, job.ID, env.mechanic.ID, "Tomorrow 9am"); err != nil {
		t.Fatalf("mechanic message failed: %v", err)
	}
	if _, err := env.service.SendMessage(ctx, job.ID, outsider.ID, "me too"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for outsider, got %v", err)
	}
	if _, err := env.service.SendMessage(ctx, job.ID, env.customer.ID, "   "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for blank message, got %v", err)
	}

	messages, err := env.service.ListMessages(ctx, job.ID)
	if err != nil {
		t.Fatalf("list messages failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	// Message notification lands with the other participant
	mechInbox, _ := env.notifications.ListByUser(env.mechanic.ID)
	var messageNotes int
	for _, n := range mechInbox {
		if n.Type == domain.NotifyMessage {
			messageNotes++
		}
	}
	if messageNotes != 1 {
		t.Fatalf("expected 1 message notification for mechanic, got %d", messageNotes)
	}
}

func TestListFilters(t *testing.T) {
	env := newJobTestEnv(t)
	ctx := context.Background()

	first := env.openJob(t)
	second, err := env.service.Create(ctx, env.customer.ID, JobDraft{
		Category:    "Diagnostics",
		Description: "Check engine light",
		Vehicle:     domain.Vehicle{Make: "Mazda", Model: "3", Year: "2015"},
		Location:    "Glenelg, SA",
	})
	if err != nil {
		t.Fatalf("failed to create job: %v", err)
	}
	env.service.Accept(ctx, second.ID, env.mechanic.ID)

	open, err := env.service.List(ctx, JobFilter{Status: domain.StatusOpen})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(open) != 1 || open[0].ID != first.ID {
		t.Fatalf("expected only the open job, got %d", len(open))
	}

	mine, _ := env.service.List(ctx, JobFilter{MechanicID: env.mechanic.ID})
	if len(mine) != 1 || mine[0].ID != second.ID {
		t.Fatalf("expected the accepted job for mechanic filter, got %d", len(mine))
	}

	// Free text search spans category, vehicle make and location
	byMake, _ := env.service.List(ctx, JobFilter{Query: "mazda"})
	if len(byMake) != 1 || byMake[0].ID != second.ID {
		t.Fatalf("expected query to match vehicle make, got %d", len(byMake))
	}
	byLocation, _ := env.service.List(ctx, JobFilter{Query: strings.ToUpper("prospect")})
	if len(byLocation) != 1 || byLocation[0].ID != first.ID {
		t.Fatalf("expected query to match location, got %d", len(byLocation))
	}

	// Newest first
	all, _ := env.service.List(ctx, JobFilter{})
	if len(all) != 2 || all[0].ID != second.ID {
		t.Fatalf("expected newest job first")
	}
}
