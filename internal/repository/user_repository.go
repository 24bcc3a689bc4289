package repository

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/autodoc-au/autodoc/internal/domain"
)

// MemoryUserRepository implements domain.UserRepository with an in-memory map.
// The store is the single source of truth for accounts; users are never
// deleted.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]*domain.User // key: lowercased email
	order   []string                // ids in insertion order
	logger  *slog.Logger
}

// NewMemoryUserRepository creates an empty user repository
func NewMemoryUserRepository(logger *slog.Logger) *MemoryUserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryUserRepository{
		byID:    map[string]*domain.User{},
		byEmail: map[string]*domain.User{},
		logger:  logger,
	}
}

// Create adds a new user. Email must be unique (case-insensitive).
func (r *MemoryUserRepository) Create(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(user.Email)
	if key == "" {
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if _, exists := r.byEmail[key]; exists {
		return fmt.Errorf("%w: email already registered", domain.ErrValidation)
	}
	if _, exists := r.byID[user.ID]; exists {
		return fmt.Errorf("%w: duplicate user id %s", domain.ErrValidation, user.ID)
	}

	stored := cloneUser(user)
	r.byID[stored.ID] = stored
	r.byEmail[key] = stored
	r.order = append(r.order, stored.ID)

	r.logger.Debug("user created",
		slog.String("user_id", stored.ID),
		slog.String("role", string(stored.Role)),
	)
	return nil
}

// GetByID retrieves a user by id
func (r *MemoryUserRepository) GetByID(id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.byID[id]
	if !exists {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return cloneUser(user), nil
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *MemoryUserRepository) GetByEmail(email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.byEmail[emailKey(email)]
	if !exists {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	return cloneUser(user), nil
}

// Update replaces the stored record for an existing user. The email key may
// not change; role changes are rejected because roles are immutable.
func (r *MemoryUserRepository) Update(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.byID[user.ID]
	if !exists {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	}
	if existing.Role != user.Role {
		return fmt.Errorf("%w: role is immutable", domain.ErrValidation)
	}
	if emailKey(existing.Email) != emailKey(user.Email) {
		return fmt.Errorf("%w: email is immutable", domain.ErrValidation)
	}

	stored := cloneUser(user)
	r.byID[stored.ID] = stored
	r.byEmail[emailKey(stored.Email)] = stored
	return nil
}

// List returns all users in insertion order
func (r *MemoryUserRepository) List() ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneUser(r.byID[id]))
	}
	return out, nil
}

// ListByRole returns all users with the given role in insertion order
func (r *MemoryUserRepository) ListByRole(role domain.Role) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.User
	for _, id := range r.order {
		if u := r.byID[id]; u.Role == role {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// cloneUser copies a user so callers never alias store-owned memory.
func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.Mechanic != nil {
		mp := *u.Mechanic
		mp.Skills = append([]string(nil), u.Mechanic.Skills...)
		c.Mechanic = &mp
	}
	return &c
}
