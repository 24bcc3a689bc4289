package service

import (
	"context"
	"log/slog"

	"github.com/autodoc-au/autodoc/internal/domain"
	"github.com/autodoc-au/autodoc/internal/security"
)

// UserService exposes account queries and the admin verification action.
type UserService struct {
	users    domain.UserRepository
	notifier *Notifier
	authz    *security.AuthorizationService
	logger   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(users domain.UserRepository, notifier *Notifier, authz *security.AuthorizationService, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:    users,
		notifier: notifier,
		authz:    authz,
		logger:   logger,
	}
}

// Get returns a single user
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(userID)
}

// ListMechanics returns every mechanic account, verified or not
func (s *UserService) ListMechanics(ctx context.Context) ([]*domain.User, error) {
	return s.users.ListByRole(domain.RoleMechanic)
}

// VerifyMechanic flips the verification flag on a mechanic account. Only an
// admin may do this; verifying an already-verified mechanic is a no-op and
// does not re-notify.
func (s *UserService) VerifyMechanic(ctx context.Context, adminID, mechanicID string) (*domain.User, error) {
	admin, err := s.users.GetByID(adminID)
	if err != nil {
		return nil, err
	}
	mechanic, err := s.users.GetByID(mechanicID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeVerify(admin, mechanic); err != nil {
		return nil, err
	}

	if mechanic.Mechanic.Verified {
		return mechanic, nil
	}

	mechanic.Mechanic.Verified = true
	if err := s.users.Update(mechanic); err != nil {
		return nil, err
	}

	s.notifier.MechanicVerified(mechanic)
	s.logger.Info("mechanic verified",
		slog.String("mechanic_id", mechanic.ID),
		slog.String("admin_id", admin.ID),
	)
	return mechanic, nil
}
