package domain

import "time"

const (
	RoleCreator  = "creator"
	RoleCustomer = "customer"
	// RoleAdmin is never assignable at registration; admins are provisioned
	// directly in the store.
	RoleAdmin = "admin"
)

// IsRegistrableRole reports whether role may be chosen by a registering user.
func IsRegistrableRole(role string) bool {
	return role == RoleCreator || role == RoleCustomer
}

// User models an account holder.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Principal is the authenticated caller, as decoded from a session token.
type Principal struct {
	UserID   string
	Username string
	Role     string
}

// IsAdmin reports whether the caller carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
