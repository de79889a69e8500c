package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventsphere/internal/domain"
)

func TestBookingService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)
		u := f.user(t, "ada@example.com")
		e := f.event(t, "Gophers", f.now.Add(72*time.Hour), 2)

		reg, err := f.bookings.Register(ctx, u.ID, e.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, reg.ID)
		assert.Equal(t, u.ID, reg.UserID)
		assert.Equal(t, e.ID, reg.EventID)
		assert.Equal(t, f.now, reg.RegisteredAt)

		got, err := f.store.Events().GetByID(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.RegistrationCount)
	})

	tests := []struct {
		name    string
		setup   func(t *testing.T, f *fixture, userID string) string
		wantErr error
	}{
		{
			name: "unknown event",
			setup: func(t *testing.T, f *fixture, userID string) string {
				return "missing"
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "soft-deleted event",
			setup: func(t *testing.T, f *fixture, userID string) string {
				e := f.event(t, "Gone", f.now.Add(72*time.Hour), 5)
				require.NoError(t, f.store.Events().Deactivate(context.Background(), e.ID, f.now))
				return e.ID
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "event starting right now",
			setup: func(t *testing.T, f *fixture, userID string) string {
				return f.event(t, "Now", f.now, 5).ID
			},
			wantErr: domain.ErrInvalidState,
		},
		{
			name: "event in the past",
			setup: func(t *testing.T, f *fixture, userID string) string {
				return f.event(t, "Yesterday", f.now.Add(-24*time.Hour), 5).ID
			},
			wantErr: domain.ErrInvalidState,
		},
		{
			name: "event full",
			setup: func(t *testing.T, f *fixture, userID string) string {
				e := f.event(t, "Tiny", f.now.Add(72*time.Hour), 1)
				other := f.user(t, "other@example.com")
				_, err := f.bookings.Register(context.Background(), other.ID, e.ID)
				require.NoError(t, err)
				return e.ID
			},
			wantErr: domain.ErrCapacityExceeded,
		},
		{
			name: "already registered",
			setup: func(t *testing.T, f *fixture, userID string) string {
				e := f.event(t, "Twice", f.now.Add(72*time.Hour), 5)
				_, err := f.bookings.Register(context.Background(), userID, e.ID)
				require.NoError(t, err)
				return e.ID
			},
			wantErr: domain.ErrConflict,
		},
		{
			name: "full event reports capacity before duplicate",
			setup: func(t *testing.T, f *fixture, userID string) string {
				e := f.event(t, "Single seat", f.now.Add(72*time.Hour), 1)
				_, err := f.bookings.Register(context.Background(), userID, e.ID)
				require.NoError(t, err)
				return e.ID
			},
			wantErr: domain.ErrCapacityExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			u := f.user(t, "ada@example.com")
			eventID := tt.setup(t, f, u.ID)

			reg, err := f.bookings.Register(ctx, u.ID, eventID)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, reg)
		})
	}

	t.Run("store failure is wrapped", func(t *testing.T) {
		f := newFixture(t)
		f.bookings.eventRepo = failingEventRepo{}

		_, err := f.bookings.Register(ctx, "user", "event")
		require.ErrorIs(t, err, errBoom)
		assert.False(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestBookingService_Register_ConcurrentLastSeat(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := f.event(t, "Last seat", f.now.Add(72*time.Hour), 1)

	const workers = 50
	userIDs := make([]string, workers)
	for i := range userIDs {
		userIDs[i] = f.user(t, fmt.Sprintf("user%d@example.com", i)).ID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		full      int
	)
	for _, id := range userIDs {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := f.bookings.Register(ctx, userID, e.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrCapacityExceeded):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, full)
	count, err := f.store.Registrations().CountByEventID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBookingService_Register_ConcurrentDoubleSubmit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	e := f.event(t, "Roomy", f.now.Add(72*time.Hour), 10)

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.bookings.Register(ctx, u.ID, e.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}

func TestBookingService_Cancel(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		untilDate time.Duration
		otherUser bool
		wantErr   error
	}{
		{name: "more than a day ahead", untilDate: 24*time.Hour + time.Second},
		{name: "well ahead", untilDate: 30 * 24 * time.Hour},
		{name: "exactly a day ahead", untilDate: 24 * time.Hour, wantErr: domain.ErrInvalidState},
		{name: "just inside the blackout", untilDate: 24*time.Hour - time.Second, wantErr: domain.ErrInvalidState},
		{name: "someone else's registration", untilDate: 72 * time.Hour, otherUser: true, wantErr: domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			owner := f.user(t, "owner@example.com")
			e := f.event(t, "Talk", f.now.Add(72*time.Hour), 3)
			reg, err := f.bookings.Register(ctx, owner.ID, e.ID)
			require.NoError(t, err)

			// Move the clock so the event is untilDate away.
			f.now = e.EventDate.Add(-tt.untilDate)

			caller := owner.ID
			if tt.otherUser {
				caller = f.user(t, "intruder@example.com").ID
			}
			err = f.bookings.Cancel(ctx, reg.ID, caller)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				_, getErr := f.store.Registrations().GetByID(ctx, reg.ID)
				require.NoError(t, getErr)
				return
			}
			require.NoError(t, err)
			_, err = f.store.Registrations().GetByID(ctx, reg.ID)
			require.ErrorIs(t, err, domain.ErrNotFound)
		})
	}

	t.Run("unknown registration", func(t *testing.T) {
		f := newFixture(t)
		err := f.bookings.Cancel(ctx, "missing", "user")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("frees the seat", func(t *testing.T) {
		f := newFixture(t)
		ada := f.user(t, "ada@example.com")
		bob := f.user(t, "bob@example.com")
		e := f.event(t, "One seat", f.now.Add(72*time.Hour), 1)

		reg, err := f.bookings.Register(ctx, ada.ID, e.ID)
		require.NoError(t, err)
		_, err = f.bookings.Register(ctx, bob.ID, e.ID)
		require.ErrorIs(t, err, domain.ErrCapacityExceeded)

		require.NoError(t, f.bookings.Cancel(ctx, reg.ID, ada.ID))
		_, err = f.bookings.Register(ctx, bob.ID, e.ID)
		require.NoError(t, err)
	})

	t.Run("allowed after the event is soft-deleted", func(t *testing.T) {
		f := newFixture(t)
		ada := f.user(t, "ada@example.com")
		e := f.event(t, "Cancelled talk", f.now.Add(72*time.Hour), 1)
		reg, err := f.bookings.Register(ctx, ada.ID, e.ID)
		require.NoError(t, err)
		require.NoError(t, f.store.Events().Deactivate(ctx, e.ID, f.now))

		require.NoError(t, f.bookings.Cancel(ctx, reg.ID, ada.ID))
	})
}

func TestBookingService_RegisterGuest(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a credential-less user", func(t *testing.T) {
		f := newFixture(t)
		e := f.event(t, "Open day", f.now.Add(72*time.Hour), 5)

		reg, guest, err := f.bookings.RegisterGuest(ctx, "  Guest@Example.com ", " Gus ", e.ID)
		require.NoError(t, err)
		assert.Equal(t, "guest@example.com", guest.Email)
		assert.Equal(t, "Gus", guest.FullName)
		assert.False(t, guest.HasCredential())
		assert.False(t, guest.IsAdmin)
		assert.Equal(t, guest.ID, reg.UserID)

		_, err = f.auth.Authenticate(ctx, "guest@example.com", "")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("reuses the existing user for the email", func(t *testing.T) {
		f := newFixture(t)
		existing := f.user(t, "ada@example.com")
		first := f.event(t, "First", f.now.Add(72*time.Hour), 5)
		second := f.event(t, "Second", f.now.Add(96*time.Hour), 5)

		reg, u, err := f.bookings.RegisterGuest(ctx, "ada@example.com", "Someone Else", first.ID)
		require.NoError(t, err)
		assert.Equal(t, existing.ID, u.ID)
		assert.Equal(t, existing.FullName, u.FullName)
		assert.Equal(t, existing.ID, reg.UserID)

		_, _, err = f.bookings.RegisterGuest(ctx, "ada@example.com", "Ada", first.ID)
		require.ErrorIs(t, err, domain.ErrConflict)

		_, _, err = f.bookings.RegisterGuest(ctx, "ada@example.com", "Ada", second.ID)
		require.NoError(t, err)
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t)
		e := f.event(t, "Open day", f.now.Add(72*time.Hour), 5)

		_, _, err := f.bookings.RegisterGuest(ctx, "not-an-email", "Gus", e.ID)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		_, _, err = f.bookings.RegisterGuest(ctx, "gus@example.com", "   ", e.ID)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown event still rejects", func(t *testing.T) {
		f := newFixture(t)
		_, _, err := f.bookings.RegisterGuest(ctx, "gus@example.com", "Gus", "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingService_ListForUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ada := f.user(t, "ada@example.com")

	empty, err := f.bookings.ListForUser(ctx, ada.ID)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	first := f.event(t, "First", f.now.Add(72*time.Hour), 5)
	second := f.event(t, "Second", f.now.Add(48*time.Hour), 5)
	_, err = f.bookings.Register(ctx, ada.ID, first.ID)
	require.NoError(t, err)
	f.now = f.now.Add(time.Minute)
	_, err = f.bookings.Register(ctx, ada.ID, second.ID)
	require.NoError(t, err)

	regs, err := f.bookings.ListForUser(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, "Second", regs[0].EventTitle)
	assert.Equal(t, "First", regs[1].EventTitle)
	assert.Equal(t, second.EventDate, regs[0].EventDate)
}
