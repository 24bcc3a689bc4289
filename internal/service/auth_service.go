package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/autodoc-au/autodoc/internal/domain"
	"github.com/autodoc-au/autodoc/internal/observability/metrics"
	"github.com/autodoc-au/autodoc/internal/security/auth"
)

// AuthService handles login and logout. Login is login-or-register: a known
// email resumes that account, an unknown one creates it from the supplied
// profile. There are no credentials; the issued token exists to carry
// identity between requests, not to prove it.
type AuthService struct {
	users   domain.UserRepository
	tokens  *auth.TokenManager
	revoker auth.Revoker
	logger  *slog.Logger
}

// LoginProfile is what a client submits at login. Only Email is required for
// an existing account; the rest seeds a new one.
type LoginProfile struct {
	Email           string
	Name            string
	Phone           string
	Role            domain.Role
	Skills          []string
	Bio             string
	ABN             string
	ExperienceYears int
}

// LoginResult is the outcome of a successful login
type LoginResult struct {
	User       *domain.User
	Token      string
	ExpiresAt  time.Time
	Registered bool // true when this login created the account
}

// NewAuthService creates a new authentication service
func NewAuthService(users domain.UserRepository, tokens *auth.TokenManager, revoker auth.Revoker, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:   users,
		tokens:  tokens,
		revoker: revoker,
		logger:  logger,
	}
}

// Login finds the account for profile.Email or registers a new one
func (s *AuthService) Login(ctx context.Context, profile LoginProfile) (*LoginResult, error) {
	email := strings.TrimSpace(profile.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", domain.ErrValidation)
	}

	registered := false
	user, err := s.users.GetByEmail(email)
	switch {
	case err == nil:
		// existing account

	case errors.Is(err, domain.ErrNotFound):
		user, err = s.register(email, profile)
		if err != nil {
			return nil, err
		}
		registered = true

	default:
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		s.logger.Error("failed to sign token",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	outcome := "login"
	if registered {
		outcome = "register"
	}
	metrics.ObserveLogin(outcome)
	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
		slog.Bool("registered", registered),
	)

	return &LoginResult{
		User:       user,
		Token:      token,
		ExpiresAt:  time.Now().Add(s.tokens.TTL()),
		Registered: registered,
	}, nil
}

// Logout revokes the presented token for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	until := time.Now()
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.revoker.Revoke(ctx, claims.ID, until); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.logger.Info("user logged out", slog.String("user_id", claims.UserID))
	return nil
}

// register builds the user record for a first-time email
func (s *AuthService) register(email string, profile LoginProfile) (*domain.User, error) {
	role := profile.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, profile.Role)
	}

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	user := &domain.User{
		ID:    domain.NewID(domain.IDPrefixUser),
		Name:  name,
		Email: email,
		Phone: profile.Phone,
		Role:  role,
	}
	// Mechanic-only fields live on the profile struct; for any other role
	// they are silently dropped, so no customer ever carries them.
	if role == domain.RoleMechanic {
		user.Mechanic = &domain.MechanicProfile{
			Verified:        false,
			Skills:          profile.Skills,
			Bio:             profile.Bio,
			ABN:             profile.ABN,
			ExperienceYears: profile.ExperienceYears,
		}
	}

	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(role)),
	)
	return user, nil
}
