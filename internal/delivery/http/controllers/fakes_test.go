package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"eventsphere/internal/delivery/http/helpers"
	"eventsphere/internal/delivery/http/middleware"
	"eventsphere/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var errStore = errors.New("pq: connection refused")

const (
	eventID        = "6f1c2a52-3b5e-4a53-9d6c-1f0e8e3a7b10"
	registrationID = "0b7e6c1d-8f2a-4c3b-9e4d-5a6f7b8c9d0e"
	userID         = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

var (
	ada   = &domain.User{ID: userID, Email: "ada@example.com", FullName: "Ada", IsActive: true}
	admin = &domain.User{ID: "11111111-2222-4333-8444-555555555555", Email: "root@example.com", FullName: "Root", IsActive: true, IsAdmin: true}
)

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	signUpErr    error
	loginErr     error
	loginToken   string
	lastEmail    string
	lastPassword string
	lastFullName string
}

func (f *fakeAuthService) SignUp(_ context.Context, email, password, fullName string) (*domain.User, error) {
	f.lastEmail, f.lastPassword, f.lastFullName = email, password, fullName
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &domain.User{ID: userID, Email: email, FullName: fullName, IsActive: true, PasswordHash: "secret-hash"}, nil
}

func (f *fakeAuthService) Authenticate(context.Context, string, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAuthService) IssueToken(*domain.User) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeAuthService) Login(_ context.Context, email, password string) (string, error) {
	f.lastEmail, f.lastPassword = email, password
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.loginToken, nil
}

func (f *fakeAuthService) ValidateToken(string) (*domain.Claims, error) {
	return nil, domain.ErrInvalidToken
}

func (f *fakeAuthService) ResolveCaller(context.Context, *domain.Claims) (*domain.User, error) {
	return nil, domain.ErrInvalidToken
}

func (f *fakeAuthService) EnsureAdmin(context.Context, string, string, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err             error
	event           *domain.Event
	events          []*domain.Event
	total           int
	called          bool
	lastID          string
	lastOwnerID     string
	lastInput       domain.EventInput
	lastPatch       domain.EventPatch
	lastListParams  domain.EventListParams
	lastIncludeGone bool
}

func (f *fakeEventService) CreateEvent(_ context.Context, input domain.EventInput, ownerID string) (*domain.Event, error) {
	f.called, f.lastInput, f.lastOwnerID = true, input, ownerID
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) UpdateEvent(_ context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	f.called, f.lastID, f.lastPatch = true, id, patch
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) SoftDeleteEvent(_ context.Context, id string) error {
	f.called, f.lastID = true, id
	return f.err
}

func (f *fakeEventService) GetEvent(_ context.Context, id string, includeInactive bool) (*domain.Event, error) {
	f.called, f.lastID, f.lastIncludeGone = true, id, includeInactive
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) ListEvents(_ context.Context, params domain.EventListParams) ([]*domain.Event, int, error) {
	f.called, f.lastListParams = true, params
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.events, f.total, nil
}

// fakeBookingService implements domain.BookingService for handler tests.
type fakeBookingService struct {
	err          error
	regs         []*domain.RegistrationWithEvent
	called       bool
	lastUserID   string
	lastEventID  string
	lastRegID    string
	lastEmail    string
	lastFullName string
}

func (f *fakeBookingService) Register(_ context.Context, userID, eventID string) (*domain.Registration, error) {
	f.called, f.lastUserID, f.lastEventID = true, userID, eventID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Registration{ID: registrationID, UserID: userID, EventID: eventID}, nil
}

func (f *fakeBookingService) RegisterGuest(_ context.Context, email, fullName, eventID string) (*domain.Registration, *domain.User, error) {
	f.called, f.lastEmail, f.lastFullName, f.lastEventID = true, email, fullName, eventID
	if f.err != nil {
		return nil, nil, f.err
	}
	guest := &domain.User{ID: userID, Email: "guest@example.com", FullName: fullName, IsActive: true}
	return &domain.Registration{ID: registrationID, UserID: guest.ID, EventID: eventID}, guest, nil
}

func (f *fakeBookingService) Cancel(_ context.Context, registrationID, callerID string) error {
	f.called, f.lastRegID, f.lastUserID = true, registrationID, callerID
	return f.err
}

func (f *fakeBookingService) ListForUser(_ context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	f.called, f.lastUserID = true, userID
	if f.err != nil {
		return nil, f.err
	}
	return f.regs, nil
}

// fakeAdminService implements domain.AdminService for handler tests.
type fakeAdminService struct {
	err          error
	users        []*domain.User
	attendees    []*domain.EventAttendee
	called       bool
	lastParams   domain.PaginationParams
	lastTargetID string
	lastCallerID string
	lastEventID  string
}

func (f *fakeAdminService) ListUsers(_ context.Context, params domain.PaginationParams) ([]*domain.User, error) {
	f.called, f.lastParams = true, params
	if f.err != nil {
		return nil, f.err
	}
	return f.users, nil
}

func (f *fakeAdminService) ToggleAdmin(_ context.Context, targetID, callerID string) (*domain.User, error) {
	f.called, f.lastTargetID, f.lastCallerID = true, targetID, callerID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: targetID, Email: "bob@example.com", IsActive: true, IsAdmin: true}, nil
}

func (f *fakeAdminService) ListEventRegistrations(_ context.Context, eventID string) ([]*domain.EventAttendee, error) {
	f.called, f.lastEventID = true, eventID
	if f.err != nil {
		return nil, f.err
	}
	return f.attendees, nil
}

// newRequest builds a request with an optional JSON body and an optional authenticated caller.
func newRequest(t *testing.T, method, target string, body any, caller *domain.User) *http.Request {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "http://test"+target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != nil {
		req = req.WithContext(middleware.SetUser(req.Context(), caller))
	}
	return req
}

// decodeData decodes the envelope and unmarshals data into dest.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.Nil(t, envelope.Error)
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

// decodeError decodes the envelope and returns its error object.
func decodeError(t *testing.T, rr *httptest.ResponseRecorder) *helpers.APIError {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.Nil(t, envelope.Data)
	require.NotNil(t, envelope.Error)
	return envelope.Error
}
