package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/collabtrack/server/internal/config"
	"github.com/collabtrack/server/internal/database"
	"github.com/collabtrack/server/internal/handlers"
	"github.com/collabtrack/server/internal/middleware"
	"github.com/collabtrack/server/internal/preferences"
	"github.com/collabtrack/server/internal/services"
	"github.com/collabtrack/server/pkg/logger"
	"github.com/collabtrack/server/pkg/utils"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	utils.ConfigureSession(cfg.Session.Secret, cfg.Session.ExpirationHours)

	sentryEnabled := initSentry(cfg.Sentry)
	if sentryEnabled {
		defer sentry.Flush(2 * time.Second)
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	store, closeStore, err := newPreferenceStore(cfg, db)
	if err != nil {
		return err
	}
	defer closeStore()

	gate := services.NewAuthGate(db, cfg.Auth.AllowedDomains)
	if cfg.Preferences.Backend == "redis" {
		gate.OnReassign = store.Rename
	}

	deps := handlers.Dependencies{
		DB:          db,
		Config:      cfg,
		Preferences: store,
		Money:       utils.NewMoneyFormatter(cfg.Locale.Currency, cfg.Locale.Language),
		Gate:        gate,
	}
	if cfg.OIDC.Enabled() {
		provider, err := services.NewOIDCProvider(ctx, cfg.OIDC)
		if err != nil {
			return fmt.Errorf("oidc initialization failed: %w", err)
		}
		deps.Provider = provider
	} else {
		logger.Warn("oidc_disabled", map[string]interface{}{
			"reason": "OIDC_ISSUER_URL or OIDC_CLIENT_ID not set",
		})
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	if sentryEnabled {
		app.Use(sentryfiber.New(sentryfiber.Options{Repanic: true}))
	}
	app.Use(requestid.New())
	app.Use(middleware.CORS(cfg.Server.FrontendURL))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	handlers.RegisterRoutes(app, deps)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":                cfg.Server.Port,
		"address":             listenAddr,
		"body_limit_mb":       cfg.Server.BodyLimitMB,
		"preferences_backend": cfg.Preferences.Backend,
		"oidc":                deps.Provider != nil,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("server_shutdown", map[string]interface{}{
			"signal": sig.String(),
		})
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("server_shutdown_failed", err, nil)
		}
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}

func initSentry(cfg config.SentryConfig) bool {
	if cfg.DSN == "" {
		return false
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          handlers.Version,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
	})
	if err != nil {
		logger.Error("sentry_init_failed", err, nil)
		return false
	}
	logger.EnableSentry()
	return true
}

// newPreferenceStore picks the repository configured by PREFERENCES_BACKEND.
// The returned func releases any connection the repository holds.
func newPreferenceStore(cfg *config.Config, db *gorm.DB) (*preferences.Store, func(), error) {
	if cfg.Preferences.Backend == "redis" {
		repo, err := preferences.NewRedisRepository(cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis initialization failed: %w", err)
		}
		return preferences.NewStore(repo), func() { _ = repo.Close() }, nil
	}
	return preferences.NewStore(preferences.NewGormRepository(db)), func() {}, nil
}
