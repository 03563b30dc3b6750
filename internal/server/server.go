// Package server assembles the process-level plumbing both binaries share:
// logging, storage and event backends, the fiber middleware chain and
// graceful shutdown.
package server

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/terraincognita07/vocalis/internal/config"
	"github.com/terraincognita07/vocalis/internal/db"
	"github.com/terraincognita07/vocalis/internal/events"
	"github.com/terraincognita07/vocalis/internal/services"
	"github.com/terraincognita07/vocalis/internal/storage"
	"github.com/terraincognita07/vocalis/internal/web"
)

const (
	shutdownTimeout      = 10 * time.Second
	sessionSweepInterval = time.Hour
)

// NewLogger builds the process logger. Unknown levels fall back to info.
func NewLogger(out io.Writer, level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(parsed).With().Timestamp().Logger()
}

// OpenStore returns the report store selected by STORAGE_BACKEND.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		store, err := storage.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StorageDisk:
		store, err := storage.NewDiskStore(cfg.ReportsDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

// NewPublisher returns a Kafka publisher when brokers are configured.
func NewPublisher(cfg *config.Config) events.Publisher {
	if !cfg.EventsEnabled() {
		return events.Nop{}
	}
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}

func CSRFConfig(cookies web.Cookies, skip func(c *fiber.Ctx) bool) csrf.Config {
	return csrf.Config{
		Next:           skip,
		KeyLookup:      "form:csrf_token",
		CookieName:     cookies.CSRFName(),
		CookieSameSite: "Lax",
		CookieHTTPOnly: true,
		CookieSecure:   cookies.Secure,
		ContextKey:     web.CSRFContextKey,
	}
}

// NewApp returns a fiber app with the shared middleware chain installed.
// skipCSRF exempts the service-to-service endpoints.
func NewApp(appName string, logger zerolog.Logger, cookies web.Cookies, skipCSRF func(c *fiber.Ctx) bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		BodyLimit:             web.MaxUploadBytes + 1<<20,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(web.RequestLogger(logger))
	app.Use(compress.New())
	app.Use(csrf.New(CSRFConfig(cookies, skipCSRF)))
	return app
}

// StartJanitor sweeps expired sessions of database until ctx is cancelled.
func StartJanitor(ctx context.Context, database *gorm.DB, logger zerolog.Logger) {
	services.NewSessionJanitor(db.NewSessionRepository(database), sessionSweepInterval, logger).Start(ctx)
}

// Run serves app until ctx is cancelled, then shuts it down gracefully.
func Run(ctx context.Context, app *fiber.App, port string, logger zerolog.Logger) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	logger.Info().Str("port", port).Msg("listening")
	if err := app.Listen(":" + port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}
