package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventsphere/internal/domain"
)

type adminService struct {
	userRepo         domain.UserRepository
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	contextTimeout   time.Duration
}

// NewAdminService creates the service behind the admin-only endpoints.
func NewAdminService(
	userRepo domain.UserRepository,
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	timeout time.Duration,
) domain.AdminService {
	return &adminService{
		userRepo:         userRepo,
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		contextTimeout:   timeout,
	}
}

func (s *adminService) ListUsers(ctx context.Context, params domain.PaginationParams) ([]*domain.User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	users, err := s.userRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

// ToggleAdmin flips the target's admin flag. Callers can never change their own flag,
// whatever its current value; that check runs before the store is touched.
func (s *adminService) ToggleAdmin(ctx context.Context, targetID, callerID string) (*domain.User, error) {
	if targetID == callerID {
		return nil, fmt.Errorf("%w: cannot change your own admin status", domain.ErrInvalidOperation)
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	updated, err := s.userRepo.SetAdmin(ctx, target.ID, !target.IsAdmin)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("set admin: %w", err)
	}
	return updated, nil
}

func (s *adminService) ListEventRegistrations(ctx context.Context, eventID string) ([]*domain.EventAttendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	attendees, err := s.registrationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event registrations: %w", err)
	}
	if attendees == nil {
		attendees = []*domain.EventAttendee{}
	}
	return attendees, nil
}
