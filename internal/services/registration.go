package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventsphere/internal/domain"
)

type bookingService struct {
	logger           *slog.Logger
	userRepo         domain.UserRepository
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	contextTimeout   time.Duration
	now              func() time.Time
}

// NewBookingService creates the registration engine.
func NewBookingService(
	logger *slog.Logger,
	userRepo domain.UserRepository,
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	timeout time.Duration,
) domain.BookingService {
	return &bookingService{
		logger:           logger,
		userRepo:         userRepo,
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		contextTimeout:   timeout,
		now:              time.Now,
	}
}

// Register checks, in order: event exists and is active, event is in the future,
// a seat is free, the user is not already registered. The final insert goes through
// CreateWithinCapacity so that capacity and uniqueness hold under concurrent calls
// that pass the earlier checks together.
func (s *bookingService) Register(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.IsActive {
		return nil, domain.ErrNotFound
	}

	now := s.now()
	if !event.EventDate.After(now) {
		return nil, fmt.Errorf("%w: event in past", domain.ErrInvalidState)
	}

	count, err := s.registrationRepo.CountByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	if count >= event.Capacity {
		return nil, domain.ErrCapacityExceeded
	}

	if _, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID); err == nil {
		return nil, fmt.Errorf("%w: already registered", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get registration: %w", err)
	}

	reg := domain.NewRegistration(userID, eventID, now)
	if err := s.registrationRepo.CreateWithinCapacity(ctx, reg); err != nil {
		switch {
		case errors.Is(err, domain.ErrCapacityExceeded):
			return nil, domain.ErrCapacityExceeded
		case errors.Is(err, domain.ErrConflict):
			return nil, fmt.Errorf("%w: already registered", domain.ErrConflict)
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	s.logger.InfoContext(ctx, "registration created",
		"registration_id", reg.ID,
		"event_id", eventID,
		"user_id", userID,
	)
	return reg, nil
}

func (s *bookingService) RegisterGuest(ctx context.Context, email, fullName, eventID string) (*domain.Registration, *domain.User, error) {
	email = normalizeEmail(email)
	if !emailRegexp.MatchString(email) {
		return nil, nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	user, err := s.resolveGuest(ctx, email, fullName)
	if err != nil {
		return nil, nil, err
	}
	reg, err := s.Register(ctx, user.ID, eventID)
	if err != nil {
		return nil, nil, err
	}
	return reg, user, nil
}

// resolveGuest returns the user owning email, creating a credential-less one if needed.
// A concurrent create of the same email loses on the unique constraint and re-reads.
func (s *bookingService) resolveGuest(ctx context.Context, email, fullName string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}

	user = domain.NewUser(email, fullName, "", s.now())
	if err := s.userRepo.Create(ctx, user); err != nil {
		if !errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, fmt.Errorf("create guest user: %w", err)
		}
		user, err = s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("get user: %w", err)
		}
	}
	return user, nil
}

// Cancel deletes the caller's own registration unless the event starts within
// CancellationBlackout. Administrators have no override.
func (s *bookingService) Cancel(ctx context.Context, registrationID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get registration: %w", err)
	}
	if reg.UserID != callerID {
		return domain.ErrForbidden
	}

	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.EventDate.Sub(s.now()) <= domain.CancellationBlackout {
		return fmt.Errorf("%w: within cancellation blackout", domain.ErrInvalidState)
	}

	if err := s.registrationRepo.Delete(ctx, registrationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete registration: %w", err)
	}

	s.logger.InfoContext(ctx, "registration cancelled",
		"registration_id", registrationID,
		"event_id", reg.EventID,
		"user_id", callerID,
	)
	return nil
}

func (s *bookingService) ListForUser(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	regs, err := s.registrationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.RegistrationWithEvent{}
	}
	return regs, nil
}
