package controllers

import (
	"log/slog"
	"net/http"

	"eventsphere/internal/delivery/http/helpers"
	"eventsphere/internal/delivery/http/middleware"
	"eventsphere/internal/domain"
)

type AdminController struct {
	Logger  *slog.Logger
	Service domain.AdminService
}

func NewAdminController(logger *slog.Logger, svc domain.AdminService) *AdminController {
	return &AdminController{
		Logger:  logger,
		Service: svc,
	}
}

// ListUsers godoc
// @Summary List users
// @Description Admin only. Users ordered by creation time, newest first.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (>= 1)" default(1)
// @Param size query int false "Page size (1-50)" default(10)
// @Success 200 {object} helpers.APIResponse "data contains the users"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/admin/users [get]
func (c *AdminController) ListUsers(w http.ResponseWriter, r *http.Request) {
	params, err := helpers.ParsePagination(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	users, err := c.Service.ListUsers(r.Context(), params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if users == nil {
		users = []*domain.User{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, users)
}

// ListEventRegistrations godoc
// @Summary List an event's registrations
// @Description Admin only. Attendees in registration order with name and email. Inactive events are included.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the attendees"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/admin/events/{eventID}/registrations [get]
func (c *AdminController) ListEventRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	attendees, err := c.Service.ListEventRegistrations(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if attendees == nil {
		attendees = []*domain.EventAttendee{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, attendees)
}

// ToggleAdmin godoc
// @Summary Toggle a user's admin flag
// @Description Admin only. Callers cannot change their own flag (400 invalid_operation).
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the updated user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or invalid_operation"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/admin/users/{userID}/toggle-admin [patch]
func (c *AdminController) ToggleAdmin(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := c.Service.ToggleAdmin(r.Context(), userID, caller.ID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}
