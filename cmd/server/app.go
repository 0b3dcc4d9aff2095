package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/askdoc/askdoc-api/internal/config"
	"github.com/askdoc/askdoc-api/internal/platform/gemini"
	"github.com/askdoc/askdoc-api/internal/platform/postgres"
	"github.com/askdoc/askdoc-api/internal/processing"
	"github.com/askdoc/askdoc-api/internal/service"
	"github.com/askdoc/askdoc-api/internal/service/auth"
	"github.com/askdoc/askdoc-api/internal/store"
	"github.com/askdoc/askdoc-api/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	jobStore  store.JobStore
	userStore store.UserStore

	// Service interfaces
	jwtService   auth.JWTService
	oauthService auth.OAuthService
	processor    processing.Processor
	jobService   service.JobService

	// Task handling
	taskQueue  *task.TaskQueue
	workerPool *task.WorkerPool
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration, logger, and database connection that
// must be established before application initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize JWT service
	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize OAuth service for the delegated identity provider
	app.oauthService = auth.NewOAuthService(cfg.Auth, logger)

	// Initialize stores
	app.jobStore = postgres.NewPostgresJobStore(db, logger)
	app.userStore = postgres.NewPostgresUserStore(db, logger)

	// Create the query processor
	app.processor, err = gemini.NewProcessor(
		ctx,
		logger.With("component", "query_processor"),
		cfg.LLM,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize query processor: %w", err)
	}
	logger.Info("Query processor initialized successfully")

	// Initialize the task queue and worker pool
	app.taskQueue = task.NewTaskQueue(cfg.Task.QueueSize, logger.With("component", "task_queue"))
	app.workerPool = task.NewWorkerPool(
		app.taskQueue,
		task.WorkerPoolConfig{WorkerCount: cfg.Task.WorkerCount},
		logger.With("component", "worker_pool"),
	)

	// A panic escaping a task is caught by the pool; the handler is the
	// last resort that keeps the job from staying pending forever.
	app.workerPool.SetErrorHandler(func(t task.Task, err error) {
		reconcileCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		qt, ok := t.(*task.QueryProcessingTask)
		if !ok {
			logger.Error("unrecoverable failure for unknown task type",
				"task_id", t.ID(), "error", err)
			return
		}
		if failErr := app.jobStore.Fail(reconcileCtx, qt.JobID(), err.Error()); failErr != nil {
			logger.Error("failed to reconcile job after task failure",
				"task_id", t.ID(), "job_id", qt.JobID(), "error", failErr)
		}
	})

	app.workerPool.Start()

	// Initialize job service
	app.jobService, err = service.NewJobService(
		app.jobStore,
		app.taskQueue,
		app.processor,
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create job service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources. The queue
// is closed before the pool is drained so workers observe the end of the
// stream, and the drain is bounded by the configured shutdown timeout.
func (app *application) cleanup() {
	if app.taskQueue != nil {
		app.taskQueue.Close()
	}

	if app.workerPool != nil {
		drainCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(app.config.Task.ShutdownTimeoutSeconds)*time.Second,
		)
		defer cancel()

		if err := app.workerPool.Stop(drainCtx); err != nil {
			app.logger.Warn("worker pool did not drain before deadline", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
