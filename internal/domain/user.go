package domain

import (
	"context"
	"time"
)

// User represents a platform account. Guests created through public registration
// are users with an empty PasswordHash and therefore cannot log in.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser returns an active, non-admin User. ID is typically set by the repository on create.
func NewUser(email, fullName, passwordHash string, createdAt time.Time) *User {
	return &User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    createdAt,
	}
}

// HasCredential reports whether the user can authenticate with a password.
func (u *User) HasCredential() bool {
	return u.PasswordHash != ""
}

// UserRepository defines the interface for user storage.
// GetByEmail and GetByID return ErrUserNotFound when no row matches;
// Create returns ErrDuplicateEmail on a unique violation.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	SetAdmin(ctx context.Context, id string, isAdmin bool) (*User, error)
	List(ctx context.Context, params PaginationParams) ([]*User, error)
}

// AdminService defines operations reserved for administrators.
type AdminService interface {
	ListUsers(ctx context.Context, params PaginationParams) ([]*User, error)
	ToggleAdmin(ctx context.Context, targetID, callerID string) (*User, error)
	ListEventRegistrations(ctx context.Context, eventID string) ([]*EventAttendee, error)
}
