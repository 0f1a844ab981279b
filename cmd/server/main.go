package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"

	"github.com/uwdate/review-backend/internal/attachments"
	"github.com/uwdate/review-backend/internal/config"
	"github.com/uwdate/review-backend/internal/database"
	"github.com/uwdate/review-backend/internal/handlers"
	"github.com/uwdate/review-backend/internal/logging"
	"github.com/uwdate/review-backend/internal/middleware"
	"github.com/uwdate/review-backend/internal/models"
	"github.com/uwdate/review-backend/internal/routes"
	"github.com/uwdate/review-backend/internal/services"
	"github.com/uwdate/review-backend/internal/store"
)

// Multipart submissions carry up to MaxFiles evidence images.
const bodyLimit = attachments.MaxFiles*attachments.MaxFileSize + 1024*1024

type backend struct {
	partitions *store.Partitions
	reports    store.Collection[models.Report]
	check      handlers.StoreCheck
	db         *gorm.DB
}

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	baseLog := logging.Setup(cfg)

	b, err := openBackend(context.Background(), cfg)
	if err != nil {
		slog.Error("store initialization failed", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	var pgLogHandler *logging.PGHandler
	cleanupDone := make(chan struct{})
	if b.db != nil {
		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.NewPGHandler(b.db)
		slog.SetDefault(slog.New(logging.NewMultiHandler(baseLog, pgLogHandler)))
		logging.StartCleanup(b.db, cfg.LogRetention, cleanupDone)
	}

	evidence, err := attachments.NewStore(context.Background(), cfg)
	if err != nil {
		slog.Error("attachment store initialization failed", "driver", cfg.UploadDriver, "error", err)
		os.Exit(1)
	}

	// Services
	if n, err := b.partitions.Reconcile(context.Background()); err != nil {
		slog.Error("reconcile failed", "error", err)
	} else if n > 0 {
		slog.Warn("removed duplicated pending reviews", "count", n)
	}
	reviewService := services.NewReviewService(b.partitions, evidence)
	searchIndex := services.NewSearchIndex(b.partitions)
	reportLedger := services.NewReportLedger(b.reports)
	scheduler := services.NewModerationScheduler(reviewService, cfg.AutoApproveDelay)

	if cfg.ModerationResume {
		if n, err := scheduler.Resume(context.Background()); err != nil {
			slog.Error("failed to resume pending promotions", "error", err)
		} else {
			slog.Info("resumed pending promotions", "count", n)
		}
	}
	if cfg.ModerationSweep != "" {
		if err := scheduler.StartSweep(cfg.ModerationSweep); err != nil {
			slog.Error("moderation sweep not started", "error", err)
		}
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    bodyLimit,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	// Routes
	routes.Setup(app, routes.Handlers{
		Reviews: handlers.NewReviewHandler(reviewService, searchIndex, scheduler),
		Reports: handlers.NewReportHandler(reportLedger),
		Health:  handlers.NewHealthHandler(b.check, scheduler),
		Legal:   handlers.NewLegalHandler(cfg.Contact),
		Config:  handlers.NewConfigHandler(),
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", cfg.StoreDriver, "uploads", cfg.UploadDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := scheduler.Shutdown(ctx); err != nil {
		slog.Error("scheduler shutdown error", "error", err)
	}
	cancel()

	close(cleanupDone)
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	// Close database connections
	if b.db != nil {
		if err := database.Close(b.db); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.StoreDriver {
	case config.StoreFile:
		pending := store.NewFileCollection[models.ReviewRecord](cfg.DataDir, store.PendingReviews)
		approved := store.NewFileCollection[models.ReviewRecord](cfg.DataDir, store.ApprovedReviews)
		reports := store.NewFileCollection[models.Report](cfg.DataDir, store.Reports)
		for _, c := range []interface{ Init(context.Context) error }{pending, approved, reports} {
			if err := c.Init(ctx); err != nil {
				return nil, err
			}
		}
		slog.Info("file store initialized", "dir", cfg.DataDir)
		return &backend{
			partitions: store.NewPartitions(pending, approved),
			reports:    reports,
			check: func(ctx context.Context) error {
				_, err := approved.ReadAll(ctx)
				return err
			},
		}, nil

	case config.StorePostgres:
		if cfg.DBPassword == "" {
			return nil, errors.New("DB_PASSWORD environment variable is required")
		}
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
		return &backend{
			partitions: store.NewPartitions(
				store.NewGormCollection[models.ReviewRecord](db, store.PendingReviews),
				store.NewGormCollection[models.ReviewRecord](db, store.ApprovedReviews),
			),
			reports: store.NewGormCollection[models.Report](db, store.Reports),
			check:   func(ctx context.Context) error { return database.Ping(ctx, db) },
			db:      db,
		}, nil
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
