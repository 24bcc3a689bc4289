package security

import (
	"fmt"
	"log/slog"

	"github.com/autodoc-au/autodoc/internal/domain"
)

// Action identifies a guarded operation on the job workflow
type Action string

const (
	ActionCreateJob      Action = "create_job"
	ActionAcceptJob      Action = "accept_job"
	ActionCompleteJob    Action = "complete_job"
	ActionConfirmPayment Action = "confirm_payment"
	ActionCancelJob      Action = "cancel_job"
	ActionSendMessage    Action = "send_message"
	ActionVerifyMechanic Action = "verify_mechanic"
)

// RoleActions maps roles to the actions they may attempt. Ownership and
// verification preconditions are checked on top of this table.
var RoleActions = map[domain.Role][]Action{
	domain.RoleCustomer: {
		ActionCreateJob,
		ActionConfirmPayment,
		ActionCancelJob,
		ActionSendMessage,
	},
	domain.RoleMechanic: {
		ActionAcceptJob,
		ActionCompleteJob,
		ActionSendMessage,
	},
	domain.RoleAdmin: {
		ActionVerifyMechanic,
		ActionCancelJob,
	},
}

// AuthorizationService decides which actor may invoke which workflow action.
// Checks are evaluated before any mutation; a denial means nothing changed.
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{logger: logger}
}

// HasAction checks if a role may attempt an action at all
func (as *AuthorizationService) HasAction(role domain.Role, action Action) bool {
	for _, a := range RoleActions[role] {
		if a == action {
			return true
		}
	}
	return false
}

// Authorize validates that actor may perform action on job. The job may be
// nil only for ActionCreateJob.
func (as *AuthorizationService) Authorize(actor *domain.User, action Action, job *domain.Job) error {
	if actor == nil {
		return fmt.Errorf("%w: no actor", domain.ErrUnauthorized)
	}
	if !as.HasAction(actor.Role, action) {
		return as.deny(actor, action, fmt.Sprintf("%s role cannot %s", actor.Role, action))
	}

	switch action {
	case ActionCreateJob:
		return nil

	case ActionAcceptJob:
		if !actor.IsVerifiedMechanic() {
			return as.deny(actor, action, "verification required")
		}

	case ActionCompleteJob:
		if job.MechanicID != actor.ID {
			return as.deny(actor, action, "job is assigned to another mechanic")
		}

	case ActionConfirmPayment:
		if job.CustomerID != actor.ID {
			return as.deny(actor, action, "only the job's customer may confirm payment")
		}

	case ActionCancelJob:
		if actor.Role != domain.RoleAdmin && job.CustomerID != actor.ID {
			return as.deny(actor, action, "only the job's customer or an admin may cancel")
		}

	case ActionSendMessage:
		if job.CustomerID != actor.ID && job.MechanicID != actor.ID {
			return as.deny(actor, action, "actor is not a participant of this job")
		}
	}

	return nil
}

// AuthorizeVerify validates that actor may verify target as a mechanic
func (as *AuthorizationService) AuthorizeVerify(actor, target *domain.User) error {
	if actor == nil {
		return fmt.Errorf("%w: no actor", domain.ErrUnauthorized)
	}
	if !as.HasAction(actor.Role, ActionVerifyMechanic) {
		return as.deny(actor, ActionVerifyMechanic, fmt.Sprintf("%s role cannot verify mechanics", actor.Role))
	}
	if target == nil || target.Role != domain.RoleMechanic {
		return fmt.Errorf("%w: verification target must be a mechanic", domain.ErrValidation)
	}
	return nil
}

func (as *AuthorizationService) deny(actor *domain.User, action Action, reason string) error {
	as.logger.Warn("authorization denied",
		slog.String("user_id", actor.ID),
		slog.String("role", string(actor.Role)),
		slog.String("action", string(action)),
		slog.String("reason", reason),
	)
	return fmt.Errorf("%w: %s", domain.ErrUnauthorized, reason)
}
