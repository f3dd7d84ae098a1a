package domain

import "time"

// Role tags carried on every identity. RoleUser is the default.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User models a registered identity.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Verified     bool      `json:"verified"`
	Role         string    `json:"role,omitempty"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// IsValidRole reports whether role is one of the two known tags.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
