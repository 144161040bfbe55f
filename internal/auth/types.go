// Package auth holds the user model, password hashing, JWT claims and the
// pure authorization predicates the API handlers gate on.
package auth

import (
	"errors"
	"regexp"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 1-64 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// IsValidUsername checks if a username meets format requirements.
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// Role represents an authorisation tier.
type Role string

const (
	// RoleAdministrator manages user accounts and reads the request log.
	RoleAdministrator Role = "administrator"

	// RoleProvider owns readings and the catalog entries attached to them.
	// Typically a classroom device deployment account.
	RoleProvider Role = "provider"

	// RoleAnalyst reads and analyses data but owns nothing.
	RoleAnalyst Role = "analyst"
)

// ValidRoles is the set of roles an account may hold.
var ValidRoles = []Role{RoleAdministrator, RoleProvider, RoleAnalyst}

// IsValidRole returns true if the role is one of the defined tiers.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// User represents an account.
//
// Timestamp is RFC3339; the password hash never serialises into responses.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	Timestamp    string `json:"timestamp,omitempty"`
}

// Username is the projection returned by the usernames route.
type Username struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ErrTokenInvalid wraps every token parse or validation failure.
var ErrTokenInvalid = errors.New("token invalid")
