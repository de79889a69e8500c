package domain

import (
	"context"
	"time"
)

// CancellationBlackout is the period before an event's date during which
// registrations can no longer be cancelled.
const CancellationBlackout = 24 * time.Hour

// Registration represents a user's booking for an event. Cancelling deletes it.
// swagger:model Registration
type Registration struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	EventID      string    `json:"event_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

// NewRegistration creates a new Registration. ID is typically set by the repository on create.
func NewRegistration(userID, eventID string, registeredAt time.Time) *Registration {
	return &Registration{
		UserID:       userID,
		EventID:      eventID,
		RegisteredAt: registeredAt,
	}
}

// RegistrationWithEvent bundles a registration with the current title and date of its event.
type RegistrationWithEvent struct {
	*Registration
	EventTitle string    `json:"event_title"`
	EventDate  time.Time `json:"event_date"`
}

// EventAttendee is a registration seen from the event side, for administrators.
type EventAttendee struct {
	RegistrationID string    `json:"registration_id"`
	UserFullName   string    `json:"user_full_name"`
	UserEmail      string    `json:"user_email"`
	RegisteredAt   time.Time `json:"registered_at"`
}

// RegistrationRepository defines storage operations for registrations.
type RegistrationRepository interface {
	// CreateWithinCapacity inserts reg only if its event is active and still has a free seat,
	// atomically with respect to concurrent inserts for the same event. It returns
	// ErrNotFound for a missing or inactive event, ErrCapacityExceeded when full and
	// ErrConflict when the (user, event) pair is already registered.
	CreateWithinCapacity(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
	Delete(ctx context.Context, id string) error
	ListByUserID(ctx context.Context, userID string) ([]*RegistrationWithEvent, error)
	ListByEventID(ctx context.Context, eventID string) ([]*EventAttendee, error)
}

// BookingService defines the registration engine.
type BookingService interface {
	Register(ctx context.Context, userID, eventID string) (*Registration, error)
	// RegisterGuest resolves or creates a credential-less user keyed by email, then registers it.
	RegisterGuest(ctx context.Context, email, fullName, eventID string) (*Registration, *User, error)
	Cancel(ctx context.Context, registrationID, callerID string) error
	ListForUser(ctx context.Context, userID string) ([]*RegistrationWithEvent, error)
}
