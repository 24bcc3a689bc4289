package domain

// Role identifies what kind of account a user holds. Roles are fixed at
// registration; there is no role-change operation.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleMechanic Role = "MECHANIC"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleMechanic, RoleAdmin:
		return true
	}
	return false
}

// MechanicProfile carries the fields that only exist for mechanic accounts.
// Keeping them on a separate struct means a customer or admin can never hold
// a verification flag.
type MechanicProfile struct {
	Verified        bool
	Skills          []string
	Bio             string
	ABN             string
	ExperienceYears int
}

// User represents a marketplace account. Email is the identity key for login
// and is compared case-insensitively. Mechanic is non-nil exactly when Role
// is RoleMechanic.
type User struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	Role     Role
	Mechanic *MechanicProfile
}

// IsVerifiedMechanic reports whether the user is a mechanic that an admin has
// verified. Verification is required before a mechanic may accept jobs.
func (u *User) IsVerifiedMechanic() bool {
	return u.Role == RoleMechanic && u.Mechanic != nil && u.Mechanic.Verified
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(user *User) error
	GetByID(id string) (*User, error)
	GetByEmail(email string) (*User, error)
	Update(user *User) error
	List() ([]*User, error)
	ListByRole(role Role) ([]*User, error)
}
