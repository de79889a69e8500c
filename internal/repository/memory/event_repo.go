package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"eventsphere/internal/domain"
)

type eventRepository struct {
	s *Store
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e.ID = r.s.newID()
	stored := *e
	r.s.events[e.ID] = &stored
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stored, ok := r.s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.s.eventView(stored), nil
}

func (r *eventRepository) Update(ctx context.Context, id string, patch domain.EventPatch, updatedAt time.Time) (*domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Title != nil {
		stored.Title = *patch.Title
	}
	if patch.Description != nil {
		d := *patch.Description
		stored.Description = &d
	}
	if patch.Location != nil {
		l := *patch.Location
		stored.Location = &l
	}
	if patch.EventDate != nil {
		stored.EventDate = *patch.EventDate
	}
	if patch.Capacity != nil {
		stored.Capacity = *patch.Capacity
	}
	stored.UpdatedAt = &updatedAt
	return r.s.eventView(stored), nil
}

func (r *eventRepository) Deactivate(ctx context.Context, id string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	stored.IsActive = false
	stored.UpdatedAt = &updatedAt
	return nil
}

func (r *eventRepository) List(ctx context.Context, params domain.EventListParams) ([]*domain.Event, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	search := strings.ToLower(params.Search)

	r.s.mu.RLock()
	matched := make([]*domain.Event, 0)
	for _, stored := range r.s.events {
		if !stored.IsActive {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(stored.Title), search) {
			continue
		}
		matched = append(matched, r.s.eventView(stored))
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].EventDate.Equal(matched[j].EventDate) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].EventDate.Before(matched[j].EventDate)
	})
	return paginate(matched, params.PaginationParams), len(matched), nil
}

// eventView copies e and fills the derived fields. Callers hold s.mu.
func (s *Store) eventView(e *domain.Event) *domain.Event {
	out := *e
	out.RegistrationCount = s.regsPerEvent[e.ID]
	out.CreatorName = nil
	if e.CreatedBy != nil {
		if u, ok := s.users[*e.CreatedBy]; ok {
			name := u.FullName
			out.CreatorName = &name
		}
	}
	return &out
}
