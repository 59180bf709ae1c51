package models

import (
	"strings"
	"time"

	id "bloodbank/pkg/domain"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole accepts "admin" or "user", case-insensitively.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUser:
		return RoleUser, true
	default:
		return "", false
	}
}

func (r Role) String() string {
	return string(r)
}

// User is an account able to authenticate and own donors.
// This is a pure domain entity - use UserResponse for JSON responses.
type User struct {
	ID           id.UserID
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser builds an active account. email must already be normalized.
func NewUser(email, passwordHash string, role Role, now time.Time) *User {
	return &User{
		ID:           id.NewUserID(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanLogin reports whether the account may be issued tokens.
func (u *User) CanLogin() bool {
	return u.IsActive
}

// NormalizeEmail trims and lower-cases an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
