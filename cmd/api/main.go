package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventsphere/config"
	_ "eventsphere/docs"
	"eventsphere/internal/adapters/auth"
	httpdelivery "eventsphere/internal/delivery/http"
	"eventsphere/internal/delivery/http/controllers"
	"eventsphere/internal/delivery/http/middleware"
	"eventsphere/internal/domain"
	"eventsphere/internal/repository/migrations"
	"eventsphere/internal/repository/postgres"
	"eventsphere/internal/repository/sqlite"
	"eventsphere/internal/services"
)

const shutdownTimeout = 10 * time.Second

type repositories struct {
	users         domain.UserRepository
	events        domain.EventRepository
	registrations domain.RegistrationRepository
}

// @title EventSphere API
// @version 1.0
// @description Event registration with capacity-bounded bookings and admin-managed events.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, repos, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := migrations.Up(db, cfg.DBDriver)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("database ready", "driver", cfg.DBDriver, "schema_version", version)

	jwt := auth.NewJWT(cfg.SecretKey)
	authService := services.NewAuthService(repos.users, auth.NewBcryptHasher(cfg.BcryptCost), jwt, jwt, cfg.AccessTokenTTL, cfg.StoreTimeout)
	eventService := services.NewEventService(repos.events, cfg.StoreTimeout)
	bookingService := services.NewBookingService(logger, repos.users, repos.events, repos.registrations, cfg.StoreTimeout)
	adminService := services.NewAdminService(repos.users, repos.events, repos.registrations, cfg.StoreTimeout)

	if cfg.HasBootstrapAdmin() {
		admin, err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		logger.Info("bootstrap admin ensured", "user_id", admin.ID, "email", admin.Email)
	}

	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:         controllers.NewAuthController(logger, authService),
		Event:        controllers.NewEventController(logger, eventService),
		Registration: controllers.NewRegistrationController(logger, bookingService),
		Admin:        controllers.NewAdminController(logger, adminService),
		Health:       controllers.NewHealthController(cfg.Environment),
	}, authService, middleware.NewRateLimiter(middleware.RateLimitConfig{
		RPS:   cfg.RateLimitRPS,
		Burst: cfg.RateLimitBurst,
	}), logger)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (*sql.DB, repositories, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.DBUrl)
		if err != nil {
			return nil, repositories{}, err
		}
		return db, repositories{
			users:         sqlite.NewUserRepository(db),
			events:        sqlite.NewEventRepository(db),
			registrations: sqlite.NewRegistrationRepository(db),
		}, nil
	default:
		db, err := postgres.Open(ctx, cfg.DBUrl)
		if err != nil {
			return nil, repositories{}, err
		}
		return db, repositories{
			users:         postgres.NewUserRepository(db),
			events:        postgres.NewEventRepository(db),
			registrations: postgres.NewRegistrationRepository(db),
		}, nil
	}
}
