package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventsphere/internal/delivery/http/helpers"
	"eventsphere/internal/domain"
)

func TestAdminController_ListUsers(t *testing.T) {
	t.Run("paged listing", func(t *testing.T) {
		svc := &fakeAdminService{users: []*domain.User{ada, admin}}
		c := NewAdminController(testLogger, svc)
		rr := httptest.NewRecorder()

		c.ListUsers(rr, newRequest(t, http.MethodGet, "/api/admin/users?page=3&size=2", nil, admin))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.PaginationParams{Page: 3, PageSize: 2}, svc.lastParams)
		var got []domain.User
		decodeData(t, rr, &got)
		require.Len(t, got, 2)
		assert.Equal(t, ada.Email, got[0].Email)
	})

	t.Run("oversized page", func(t *testing.T) {
		svc := &fakeAdminService{}
		c := NewAdminController(testLogger, svc)
		rr := httptest.NewRecorder()

		c.ListUsers(rr, newRequest(t, http.MethodGet, "/api/admin/users?size=100", nil, admin))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.False(t, svc.called)
	})
}

func TestAdminController_ToggleAdmin(t *testing.T) {
	tests := []struct {
		name       string
		pathID     string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{name: "toggled", pathID: userID, wantStatus: http.StatusOK},
		{name: "own account", pathID: admin.ID, svcErr: fmt.Errorf("%w: cannot change your own admin status", domain.ErrInvalidOperation), wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeInvalidOperation},
		{name: "unknown user", pathID: userID, svcErr: fmt.Errorf("get user: %w", domain.ErrUserNotFound), wantStatus: http.StatusNotFound, wantCode: helpers.ErrCodeNotFound},
		{name: "malformed id", pathID: "root", wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAdminService{err: tt.svcErr}
			c := NewAdminController(testLogger, svc)
			req := newRequest(t, http.MethodPatch, "/api/admin/users/"+tt.pathID+"/toggle-admin", nil, admin)
			req.SetPathValue("userID", tt.pathID)
			rr := httptest.NewRecorder()

			c.ToggleAdmin(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rr).Code)
				return
			}
			assert.Equal(t, userID, svc.lastTargetID)
			assert.Equal(t, admin.ID, svc.lastCallerID)
			var got domain.User
			decodeData(t, rr, &got)
			assert.True(t, got.IsAdmin)
		})
	}
}

func TestAdminController_ListEventRegistrations(t *testing.T) {
	t.Run("attendees", func(t *testing.T) {
		svc := &fakeAdminService{attendees: []*domain.EventAttendee{{RegistrationID: registrationID, UserFullName: "Ada", UserEmail: "ada@example.com"}}}
		c := NewAdminController(testLogger, svc)
		req := newRequest(t, http.MethodGet, "/api/admin/events/"+eventID+"/registrations", nil, admin)
		req.SetPathValue("eventID", eventID)
		rr := httptest.NewRecorder()

		c.ListEventRegistrations(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, eventID, svc.lastEventID)
		var got []domain.EventAttendee
		decodeData(t, rr, &got)
		require.Len(t, got, 1)
		assert.Equal(t, "ada@example.com", got[0].UserEmail)
	})

	t.Run("unknown event", func(t *testing.T) {
		c := NewAdminController(testLogger, &fakeAdminService{err: domain.ErrNotFound})
		req := newRequest(t, http.MethodGet, "/api/admin/events/"+eventID+"/registrations", nil, admin)
		req.SetPathValue("eventID", eventID)
		rr := httptest.NewRecorder()

		c.ListEventRegistrations(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHealthController(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthController("test").Health(rr, newRequest(t, http.MethodGet, "/health", nil, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":{"status":"ok","env":"test"},"error":null}`, rr.Body.String())
}
