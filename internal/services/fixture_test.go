package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eventsphere/internal/domain"
	"eventsphere/internal/repository/memory"
)

var errBoom = errors.New("boom")

// fakeHasher stores passwords with a visible prefix instead of bcrypt.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hash, password string) error {
	if hash == "" || hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokens issues "token:<email>" and verifies tokens of that shape.
type fakeTokens struct {
	expiry time.Duration
}

func (f *fakeTokens) Issue(user *domain.User, expiry time.Duration) (string, error) {
	f.expiry = expiry
	return "token:" + user.Email, nil
}

func (f *fakeTokens) Verify(token string) (*domain.Claims, error) {
	email, ok := strings.CutPrefix(token, "token:")
	if !ok || email == "" {
		return nil, errors.New("bad token")
	}
	return &domain.Claims{Email: email}, nil
}

// failingEventRepo fails every read with errBoom.
type failingEventRepo struct {
	domain.EventRepository
}

func (failingEventRepo) GetByID(context.Context, string) (*domain.Event, error) {
	return nil, errBoom
}

type fixture struct {
	store    *memory.Store
	now      time.Time
	tokens   *fakeTokens
	auth     *authService
	events   *eventService
	bookings *bookingService
	admin    *adminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:  store,
		now:    time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		tokens: &fakeTokens{},
	}
	clock := func() time.Time { return f.now }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f.auth = NewAuthService(store.Users(), fakeHasher{}, f.tokens, f.tokens, time.Hour, time.Second).(*authService)
	f.auth.now = clock
	f.events = NewEventService(store.Events(), time.Second).(*eventService)
	f.events.now = clock
	f.bookings = NewBookingService(logger, store.Users(), store.Events(), store.Registrations(), time.Second).(*bookingService)
	f.bookings.now = clock
	f.admin = NewAdminService(store.Users(), store.Events(), store.Registrations(), time.Second).(*adminService)
	return f
}

// user stores an active user whose password is "password1".
func (f *fixture) user(t *testing.T, email string) *domain.User {
	t.Helper()
	u := domain.NewUser(email, "User "+email, "hashed:password1", f.now)
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}

// event stores an active event directly, bypassing the future-date check.
func (f *fixture) event(t *testing.T, title string, date time.Time, capacity int) *domain.Event {
	t.Helper()
	e := domain.NewEvent(title, nil, nil, date, capacity, "", f.now)
	e.CreatedBy = nil
	require.NoError(t, f.store.Events().Create(context.Background(), e))
	return e
}
