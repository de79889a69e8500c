package domain

import (
	"context"
	"time"
)

// Event represents a capacity-bounded event published by an administrator.
// RegistrationCount and CreatorName are derived on read and never stored.
// swagger:model Event
type Event struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       *string    `json:"description"`
	Location          *string    `json:"location"`
	EventDate         time.Time  `json:"event_date"`
	Capacity          int        `json:"capacity"`
	IsActive          bool       `json:"is_active"`
	CreatedBy         *string    `json:"created_by"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at"`
	RegistrationCount int        `json:"registration_count"`
	CreatorName       *string    `json:"creator_name"`
}

// NewEvent returns an active Event owned by ownerID. ID is typically set by the repository on create.
func NewEvent(title string, description, location *string, eventDate time.Time, capacity int, ownerID string, createdAt time.Time) *Event {
	owner := ownerID
	return &Event{
		Title:       title,
		Description: description,
		Location:    location,
		EventDate:   eventDate,
		Capacity:    capacity,
		IsActive:    true,
		CreatedBy:   &owner,
		CreatedAt:   createdAt,
	}
}

// EventInput carries the fields required to create an event.
type EventInput struct {
	Title       string
	Description *string
	Location    *string
	EventDate   time.Time
	Capacity    int
}

// EventPatch carries a partial update; nil fields are left unchanged.
type EventPatch struct {
	Title       *string
	Description *string
	Location    *string
	EventDate   *time.Time
	Capacity    *int
}

// Empty reports whether the patch changes nothing.
func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Location == nil && p.EventDate == nil && p.Capacity == nil
}

// EventListParams filters and paginates the public event listing.
type EventListParams struct {
	PaginationParams
	Search string
}

// EventRepository defines the interface for event storage.
// Read methods return events regardless of is_active; filtering is the caller's concern,
// except List which only returns active events.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, id string, patch EventPatch, updatedAt time.Time) (*Event, error)
	// Deactivate flips is_active to false. It returns ErrNotFound only when the id does not exist.
	Deactivate(ctx context.Context, id string, updatedAt time.Time) error
	List(ctx context.Context, params EventListParams) ([]*Event, int, error)
}

// EventService defines the event catalog operations.
type EventService interface {
	CreateEvent(ctx context.Context, input EventInput, ownerID string) (*Event, error)
	UpdateEvent(ctx context.Context, id string, patch EventPatch) (*Event, error)
	SoftDeleteEvent(ctx context.Context, id string) error
	GetEvent(ctx context.Context, id string, includeInactive bool) (*Event, error)
	ListEvents(ctx context.Context, params EventListParams) ([]*Event, int, error)
}
