package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/autodoc-au/autodoc/internal/domain"
	"github.com/autodoc-au/autodoc/internal/observability/metrics"
	"github.com/autodoc-au/autodoc/internal/stream"
)

// EventPublisher pushes live events to a user's connected clients.
// *stream.Hub satisfies it; tests use a recording fake.
type EventPublisher interface {
	Publish(userID string, event stream.Event)
}

// Notifier derives inbox notifications and live stream events from primary
// workflow actions. It runs synchronously inside the triggering action, so a
// transition and its notifications land together.
type Notifier struct {
	notifications domain.NotificationRepository
	events        EventPublisher
	logger        *slog.Logger
}

// NewNotifier creates a new notifier. events may be nil when no live stream
// is attached (e.g. in tests that only care about store state).
func NewNotifier(notifications domain.NotificationRepository, events EventPublisher, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		notifications: notifications,
		events:        events,
		logger:        logger,
	}
}

// JobAccepted notifies the job's customer that a mechanic took the job
func (n *Notifier) JobAccepted(job *domain.Job, mechanic *domain.User) {
	n.dispatch(&domain.Notification{
		UserID:       job.CustomerID,
		Title:        "Job Accepted",
		Message:      fmt.Sprintf("%s accepted your %q job.", mechanic.Name, job.Category),
		Type:         domain.NotifyJobUpdate,
		RelatedJobID: job.ID,
	})
}

// JobCompleted notifies the customer that work is done and payment is due
func (n *Notifier) JobCompleted(job *domain.Job, mechanic *domain.User) {
	n.dispatch(&domain.Notification{
		UserID:       job.CustomerID,
		Title:        "Work Completed",
		Message:      fmt.Sprintf("%s marked your %q job as complete. Please confirm payment.", mechanic.Name, job.Category),
		Type:         domain.NotifyJobUpdate,
		RelatedJobID: job.ID,
	})
}

// PaymentConfirmed notifies the mechanic that the customer paid
func (n *Notifier) PaymentConfirmed(job *domain.Job) {
	if job.MechanicID == "" {
		return
	}
	amount := 0.0
	if job.FinalPrice != nil {
		amount = *job.FinalPrice
	}
	n.dispatch(&domain.Notification{
		UserID:       job.MechanicID,
		Title:        "Payment Confirmed",
		Message:      fmt.Sprintf("Payment of $%.2f received for the %q job.", amount, job.Category),
		Type:         domain.NotifyJobUpdate,
		RelatedJobID: job.ID,
	})
}

// JobCancelled notifies every participant other than the actor
func (n *Notifier) JobCancelled(job *domain.Job, actorID string) {
	for _, userID := range []string{job.CustomerID, job.MechanicID} {
		if userID == "" || userID == actorID {
			continue
		}
		n.dispatch(&domain.Notification{
			UserID:       userID,
			Title:        "Job Cancelled",
			Message:      fmt.Sprintf("The %q job has been cancelled.", job.Category),
			Type:         domain.NotifyJobUpdate,
			RelatedJobID: job.ID,
		})
	}
}

// MessageSent notifies the other participant of the job chat
func (n *Notifier) MessageSent(job *domain.Job, msg *domain.Message, sender *domain.User) {
	recipient := job.CustomerID
	if msg.SenderID == job.CustomerID {
		recipient = job.MechanicID
	}
	if recipient != "" {
		n.dispatch(&domain.Notification{
			UserID:       recipient,
			Title:        "New Message",
			Message:      fmt.Sprintf("%s sent a message about the %q job.", sender.Name, job.Category),
			Type:         domain.NotifyMessage,
			RelatedJobID: job.ID,
		})
	}

	// Both participants get the message itself on their live stream so open
	// chats update without polling.
	if n.events != nil {
		ev := stream.Event{Kind: stream.EventMessage, JobID: job.ID, Data: msg}
		n.events.Publish(job.CustomerID, ev)
		if job.MechanicID != "" {
			n.events.Publish(job.MechanicID, ev)
		}
	}
}

// MechanicVerified notifies the mechanic their account was verified
func (n *Notifier) MechanicVerified(mechanic *domain.User) {
	n.dispatch(&domain.Notification{
		UserID:  mechanic.ID,
		Title:   "Account Verified",
		Message: "Your account has been verified. You can now accept jobs.",
		Type:    domain.NotifySystem,
	})
}

// dispatch stamps, stores and publishes a single notification
func (n *Notifier) dispatch(notif *domain.Notification) {
	notif.ID = domain.NewID(domain.IDPrefixNotification)
	notif.Timestamp = time.Now()

	if err := n.notifications.Append(notif); err != nil {
		// Append to the in-memory store only fails on malformed input,
		// which dispatch never produces; log and keep the primary action.
		n.logger.Error("failed to store notification",
			slog.String("user_id", notif.UserID),
			slog.String("error", err.Error()),
		)
		return
	}
	metrics.ObserveNotification(string(notif.Type))

	if n.events != nil {
		n.events.Publish(notif.UserID, stream.Event{
			Kind:      stream.EventNotification,
			JobID:     notif.RelatedJobID,
			Data:      notif,
			Timestamp: notif.Timestamp,
		})
	}
}
