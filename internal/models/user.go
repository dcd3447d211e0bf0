package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Role constants, stored in the user_roles association table.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an admin-console identity authenticated via OIDC.
type User struct {
	ID        uuid.UUID `json:"id"`
	Sub       string    `json:"sub"` // OIDC subject identifier
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Populated by auth middleware from user_roles.
	Roles []string `json:"roles,omitempty"`
}

// HasRole returns true if the user holds the given role.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// IsAdmin returns true if the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}
