package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventsphere/internal/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// The first match wins.
var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, http.StatusBadRequest, ErrCodeBadRequest},
	{domain.ErrDuplicateEmail, http.StatusBadRequest, ErrCodeBadRequest},
	{domain.ErrInvalidOperation, http.StatusBadRequest, ErrCodeInvalidOperation},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeUnauthorized},
	{domain.ErrInvalidToken, http.StatusUnauthorized, ErrCodeUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
	{domain.ErrUserNotFound, http.StatusNotFound, ErrCodeNotFound},
	{domain.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{domain.ErrCapacityExceeded, http.StatusConflict, ErrCodeCapacityExceeded},
	{domain.ErrConflict, http.StatusConflict, ErrCodeConflict},
	{domain.ErrInvalidState, http.StatusUnprocessableEntity, ErrCodeInvalidState},
}

// StatusFor returns the HTTP status and error code for a service error.
// ok is false when err matches no domain sentinel.
func StatusFor(err error) (status int, code string, ok bool) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code, true
		}
	}
	return http.StatusInternalServerError, ErrCodeInternalError, false
}

// WriteServiceError maps err onto the error envelope. Domain errors keep their message;
// anything else is logged with the request path and method and answered with an opaque 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code, ok := StatusFor(err)
	if !ok {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, status, code, "internal server error")
		return
	}
	WriteJSONError(w, status, code, err.Error())
}
