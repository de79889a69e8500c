package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventsphere/internal/delivery/http/controllers"
	"eventsphere/internal/delivery/http/middleware"
	"eventsphere/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth         *controllers.AuthController
	Event        *controllers.EventController
	Registration *controllers.RegistrationController
	Admin        *controllers.AdminController
	Health       *controllers.HealthController
}

// NewRouter initializes the HTTP router with all application routes.
// limiter guards the unauthenticated login and guest registration endpoints.
func NewRouter(c Controllers, authService domain.AuthService, limiter *middleware.RateLimiter, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	authenticated := middleware.RequireAuthenticated(authService, logger)
	admin := middleware.RequireAdmin(authService, logger)

	// Auth
	mux.HandleFunc("POST /api/auth/register", c.Auth.SignUp)
	mux.HandleFunc("POST /api/auth/login", limiter.Limit(c.Auth.Login))
	mux.HandleFunc("GET /api/auth/me", authenticated(c.Auth.Me))

	// Events
	mux.HandleFunc("GET /api/events", c.Event.ListEvents)
	mux.HandleFunc("GET /api/events/{eventID}", c.Event.GetEvent)
	mux.HandleFunc("POST /api/events", admin(c.Event.CreateEvent))
	mux.HandleFunc("PATCH /api/events/{eventID}", admin(c.Event.UpdateEvent))
	mux.HandleFunc("DELETE /api/events/{eventID}", admin(c.Event.DeleteEvent))

	// Registrations
	mux.HandleFunc("POST /api/registrations", authenticated(c.Registration.Register))
	mux.HandleFunc("POST /api/registrations/public", limiter.Limit(c.Registration.RegisterGuest))
	mux.HandleFunc("GET /api/registrations/my", authenticated(c.Registration.ListMine))
	mux.HandleFunc("DELETE /api/registrations/{registrationID}", authenticated(c.Registration.Cancel))

	// Admin
	mux.HandleFunc("GET /api/admin/users", admin(c.Admin.ListUsers))
	mux.HandleFunc("PATCH /api/admin/users/{userID}/toggle-admin", admin(c.Admin.ToggleAdmin))
	mux.HandleFunc("GET /api/admin/events/{eventID}/registrations", admin(c.Admin.ListEventRegistrations))

	mux.HandleFunc("GET /health", c.Health.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
