package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "eventsphere/internal/delivery/http/helpers"
	"eventsphere/internal/domain"
)

type contextKey string

const userKey contextKey = "user"

// SetUser returns a context carrying the authenticated caller. Used by auth middleware.
func SetUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated caller from the context, if present.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userKey).(*domain.User)
	return u, ok && u != nil
}

func bearerToken(r *http.Request) (string, string) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", "missing authorization header"
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", "invalid authorization format"
	}
	token := strings.TrimSpace(auth[len(prefix):])
	if token == "" {
		return "", "missing token"
	}
	return token, ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, msg)
}

// RequireAuthenticated returns a wrapper that validates the Bearer token, re-reads the
// caller from the store and sets it in the request context. Unknown or inactive callers
// and bad tokens get 401; next is not called.
func RequireAuthenticated(auth domain.AuthService, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, problem := bearerToken(r)
			if problem != "" {
				unauthorized(w, problem)
				return
			}
			claims, err := auth.ValidateToken(token)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}
			user, err := auth.ResolveCaller(r.Context(), claims)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidToken) {
					unauthorized(w, "invalid or expired token")
					return
				}
				logger.ErrorContext(r.Context(), "resolve caller failed", "path", r.URL.Path, "method", r.Method, "err", err)
				h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal server error")
				return
			}
			next(w, r.WithContext(SetUser(r.Context(), user)))
		}
	}
}

// RequireAdmin is RequireAuthenticated plus a 403 for callers without the admin flag.
func RequireAdmin(auth domain.AuthService, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	authenticated := RequireAuthenticated(auth, logger)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return authenticated(func(w http.ResponseWriter, r *http.Request) {
			user, _ := UserFromContext(r.Context())
			if !user.IsAdmin {
				h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "admin privileges required")
				return
			}
			next(w, r)
		})
	}
}
