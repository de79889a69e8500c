package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventsphere/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
	now            func() time.Time
}

// NewEventService creates the event catalog service.
func NewEventService(eventRepo domain.EventRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, input domain.EventInput, ownerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if ownerID == "" {
		return nil, fmt.Errorf("%w: event owner is required", domain.ErrInvalidInput)
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if input.Capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be at least 1", domain.ErrInvalidInput)
	}
	now := s.now()
	if !input.EventDate.After(now) {
		return nil, fmt.Errorf("%w: event date must be in the future", domain.ErrInvalidInput)
	}

	event := domain.NewEvent(title, input.Description, input.Location, input.EventDate, input.Capacity, ownerID, now)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	// Re-read to pick up the creator's name.
	created, err := s.eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return created, nil
}

// UpdateEvent applies only the supplied fields. The event date is not
// checked against the current time here, unlike CreateEvent.
func (s *eventService) UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
		}
		patch.Title = &title
	}
	if patch.Capacity != nil && *patch.Capacity < 1 {
		return nil, fmt.Errorf("%w: capacity must be at least 1", domain.ErrInvalidInput)
	}

	if patch.Empty() {
		event, err := s.eventRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("get event: %w", err)
		}
		return event, nil
	}

	updated, err := s.eventRepo.Update(ctx, id, patch, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

// SoftDeleteEvent is idempotent: deactivating an inactive event succeeds.
func (s *eventService) SoftDeleteEvent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Deactivate(ctx, id, s.now()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("deactivate event: %w", err)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id string, includeInactive bool) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.IsActive && !includeInactive {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, params domain.EventListParams) ([]*domain.Event, int, error) {
	if err := params.Validate(); err != nil {
		return nil, 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	params.Search = strings.TrimSpace(params.Search)
	events, total, err := s.eventRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}
