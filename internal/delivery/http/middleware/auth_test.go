package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventsphere/internal/delivery/http/helpers"
	"eventsphere/internal/domain"
)

// fakeAuthService implements domain.AuthService for middleware tests.
// Tokens map to claims; claims resolve through users keyed by email.
type fakeAuthService struct {
	tokens     map[string]*domain.Claims
	users      map[string]*domain.User
	resolveErr error
}

func (f *fakeAuthService) SignUp(context.Context, string, string, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAuthService) Authenticate(context.Context, string, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAuthService) IssueToken(*domain.User) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeAuthService) Login(context.Context, string, string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeAuthService) ValidateToken(token string) (*domain.Claims, error) {
	c, ok := f.tokens[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return c, nil
}

func (f *fakeAuthService) ResolveCaller(_ context.Context, claims *domain.Claims) (*domain.User, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	u, ok := f.users[claims.Email]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return u, nil
}

func (f *fakeAuthService) EnsureAdmin(context.Context, string, string, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func newFakeAuth() *fakeAuthService {
	return &fakeAuthService{
		tokens: map[string]*domain.Claims{
			"user-token":  {UserID: "user-1", Email: "ada@example.com", ExpiresAt: time.Now().Add(time.Hour)},
			"admin-token": {UserID: "admin-1", Email: "root@example.com", IsAdmin: true, ExpiresAt: time.Now().Add(time.Hour)},
			"stale-admin": {UserID: "user-1", Email: "ada@example.com", IsAdmin: true, ExpiresAt: time.Now().Add(time.Hour)},
			"ghost-token": {UserID: "ghost", Email: "ghost@example.com", ExpiresAt: time.Now().Add(time.Hour)},
		},
		users: map[string]*domain.User{
			"ada@example.com":  {ID: "user-1", Email: "ada@example.com", IsActive: true},
			"root@example.com": {ID: "admin-1", Email: "root@example.com", IsActive: true, IsAdmin: true},
		},
	}
}

func TestRequireAuthenticated(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	tests := []struct {
		name         string
		authHeader   string
		resolveErr   error
		wantStatus   int
		wantBodyCode string
		nextCalled   bool
		wantUserID   string
	}{
		{
			name:       "valid token sets caller and calls next",
			authHeader: "Bearer user-token",
			wantStatus: http.StatusOK,
			nextCalled: true,
			wantUserID: "user-1",
		},
		{
			name:         "missing authorization header",
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "invalid authorization format no Bearer prefix",
			authHeader:   "Basic abc",
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "empty token after Bearer",
			authHeader:   "Bearer ",
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "token fails verification",
			authHeader:   "Bearer forged",
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "subject no longer exists",
			authHeader:   "Bearer ghost-token",
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "store failure while resolving",
			authHeader:   "Bearer user-token",
			resolveErr:   errors.New("connection reset"),
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := newFakeAuth()
			auth.resolveErr = tt.resolveErr
			nextCalled := false
			var capturedUserID string
			next := func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				if u, ok := UserFromContext(r.Context()); ok {
					capturedUserID = u.ID
				}
				w.WriteHeader(http.StatusOK)
			}
			handler := RequireAuthenticated(auth, logger)(next)

			req := httptest.NewRequest(http.MethodGet, "http://test/api/auth/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			assert.Equal(t, tt.nextCalled, nextCalled, "next handler called")
			if tt.nextCalled {
				assert.Equal(t, tt.wantUserID, capturedUserID, "caller in context")
			}
			if tt.wantBodyCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantCode   string
	}{
		{name: "admin passes", authHeader: "Bearer admin-token", wantStatus: http.StatusOK},
		{name: "regular user is forbidden", authHeader: "Bearer user-token", wantStatus: http.StatusForbidden, wantCode: helpers.ErrCodeForbidden},
		{name: "stale admin claim uses stored flag", authHeader: "Bearer stale-admin", wantStatus: http.StatusForbidden, wantCode: helpers.ErrCodeForbidden},
		{name: "anonymous is unauthorized", wantStatus: http.StatusUnauthorized, wantCode: helpers.ErrCodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			handler := RequireAdmin(newFakeAuth(), logger)(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodPost, "http://test/api/events", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, nextCalled)
			if tt.wantCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
			}
		})
	}
}
