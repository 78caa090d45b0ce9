package auth

import (
	"strings"
	"time"
)

// Role determines the authorization scope of an account. The set is
// closed: unknown values are rejected at registration and at token
// verification.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// ParseRole normalizes raw input into a Role. Empty input defaults to
// RoleEmployee; anything outside the closed set is a field-scoped
// validation error.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.TrimSpace(strings.ToLower(raw)))
	if role == "" {
		return RoleEmployee, nil
	}
	if !role.Valid() {
		return "", invalidField("role", "role must be admin or employee")
	}
	return role, nil
}

// Account represents a registered user. PasswordHash holds the bcrypt
// output of the plaintext password and is never serialized.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sanitized returns a copy of the account with the credential secret
// cleared. Flows hand accounts across the boundary only in this form.
func (a Account) Sanitized() Account {
	a.PasswordHash = ""
	return a
}

// NormalizeEmail applies the storage email policy: trimmed and
// lower-cased, so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
