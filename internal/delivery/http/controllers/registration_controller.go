package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventsphere/internal/delivery/http/helpers"
	"eventsphere/internal/delivery/http/middleware"
	"eventsphere/internal/domain"
)

// CreateRegistrationRequest is the request body for POST /api/registrations.
type CreateRegistrationRequest struct {
	EventID string `json:"event_id"`
}

// Validate implements Validator.
func (c CreateRegistrationRequest) Validate() []string {
	if !validUUID(c.EventID) {
		return []string{"event_id must be a UUID"}
	}
	return nil
}

// PublicRegistrationRequest is the request body for POST /api/registrations/public.
type PublicRegistrationRequest struct {
	EventID string `json:"event_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// Validate implements Validator.
func (p PublicRegistrationRequest) Validate() []string {
	var errs []string
	if !validUUID(p.EventID) {
		errs = append(errs, "event_id must be a UUID")
	}
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(p.Email) == "" {
		errs = append(errs, "email is required")
	}
	return errs
}

// PublicRegistrationResponse is the response body for POST /api/registrations/public.
type PublicRegistrationResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.BookingService
}

func NewRegistrationController(logger *slog.Logger, svc domain.BookingService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// Register godoc
// @Summary Register for an event
// @Description Books a seat for the caller. Fails when the event is unknown or inactive (404), full (409 capacity_exceeded), already booked by the caller (409 conflict) or not in the future (422).
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateRegistrationRequest true "Event to register for"
// @Success 201 {object} helpers.APIResponse "data contains the registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict or capacity_exceeded"
// @Failure 422 {object} helpers.APIResponse "error.code: invalid_state"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/registrations [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	var req CreateRegistrationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := c.Service.Register(r.Context(), caller.ID, strings.ToLower(req.EventID))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// RegisterGuest godoc
// @Summary Register for an event without an account
// @Description Resolves or creates a guest user by email and books a seat for it. Guests cannot log in. Rate limited per client.
// @Tags registrations
// @Accept json
// @Produce json
// @Param body body PublicRegistrationRequest true "Guest details and event"
// @Success 201 {object} helpers.APIResponse "data contains id, message, name and email"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict or capacity_exceeded"
// @Failure 422 {object} helpers.APIResponse "error.code: invalid_state"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/registrations/public [post]
func (c *RegistrationController) RegisterGuest(w http.ResponseWriter, r *http.Request) {
	var req PublicRegistrationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reg, user, err := c.Service.RegisterGuest(r.Context(), req.Email, req.Name, strings.ToLower(req.EventID))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, PublicRegistrationResponse{
		ID:      reg.ID,
		Message: "Registration successful",
		Name:    user.FullName,
		Email:   user.Email,
	})
}

// ListMine godoc
// @Summary List my registrations
// @Description Registrations of the caller, newest first, with the current title and date of each event.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the registrations"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/registrations/my [get]
func (c *RegistrationController) ListMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	regs, err := c.Service.ListForUser(r.Context(), caller.ID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if regs == nil {
		regs = []*domain.RegistrationWithEvent{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}

// Cancel godoc
// @Summary Cancel a registration
// @Description Deletes the caller's own registration. Refused inside the 24 hour window before the event (422).
// @Tags registrations
// @Security BearerAuth
// @Param registrationID path string true "Registration ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: invalid_state"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/registrations/{registrationID} [delete]
func (c *RegistrationController) Cancel(w http.ResponseWriter, r *http.Request) {
	registrationID, ok := pathID(w, r, "registrationID")
	if !ok {
		return
	}
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Cancel(r.Context(), registrationID, caller.ID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteNoContent(w)
}
