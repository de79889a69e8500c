package memory

import (
	"context"
	"sort"

	"eventsphere/internal/domain"
)

type registrationRepository struct {
	s *Store
}

// CreateWithinCapacity checks activity, capacity and uniqueness and inserts under
// one write lock, so no two callers can both take the last seat.
func (r *registrationRepository) CreateWithinCapacity(ctx context.Context, reg *domain.Registration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	event, ok := r.s.events[reg.EventID]
	if !ok || !event.IsActive {
		return domain.ErrNotFound
	}
	if r.s.regsPerEvent[reg.EventID] >= event.Capacity {
		return domain.ErrCapacityExceeded
	}
	key := regKey{eventID: reg.EventID, userID: reg.UserID}
	if _, taken := r.s.regByPair[key]; taken {
		return domain.ErrConflict
	}

	reg.ID = r.s.newID()
	stored := *reg
	r.s.regs[reg.ID] = &stored
	r.s.regByPair[key] = reg.ID
	r.s.regsPerEvent[reg.EventID]++
	return nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stored, ok := r.s.regs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	reg := *stored
	return &reg, nil
}

func (r *registrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.regByPair[regKey{eventID: eventID, userID: userID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	reg := *r.s.regs[id]
	return &reg, nil
}

func (r *registrationRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.regsPerEvent[eventID], nil
}

func (r *registrationRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.regs[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.s.regs, id)
	delete(r.s.regByPair, regKey{eventID: stored.EventID, userID: stored.UserID})
	r.s.regsPerEvent[stored.EventID]--
	return nil
}

func (r *registrationRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	out := make([]*domain.RegistrationWithEvent, 0)
	for _, stored := range r.s.regs {
		if stored.UserID != userID {
			continue
		}
		event, ok := r.s.events[stored.EventID]
		if !ok {
			continue
		}
		reg := *stored
		out = append(out, &domain.RegistrationWithEvent{
			Registration: &reg,
			EventTitle:   event.Title,
			EventDate:    event.EventDate,
		})
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].RegisteredAt.After(out[j].RegisteredAt)
	})
	return out, nil
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventAttendee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	out := make([]*domain.EventAttendee, 0)
	for _, stored := range r.s.regs {
		if stored.EventID != eventID {
			continue
		}
		a := &domain.EventAttendee{
			RegistrationID: stored.ID,
			RegisteredAt:   stored.RegisteredAt,
		}
		if u, ok := r.s.users[stored.UserID]; ok {
			a.UserFullName = u.FullName
			a.UserEmail = u.Email
		}
		out = append(out, a)
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].RegistrationID < out[j].RegistrationID
		}
		return out[i].RegisteredAt.Before(out[j].RegisteredAt)
	})
	return out, nil
}
