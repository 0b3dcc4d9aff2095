package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/askdoc/askdoc-api/internal/domain"
	"github.com/askdoc/askdoc-api/internal/platform/logger"
	"github.com/askdoc/askdoc-api/internal/store"
	"github.com/google/uuid"
)

// PostgresJobStore implements the store.JobStore interface
// using a PostgreSQL database as the storage backend.
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJobStore creates a new PostgreSQL implementation of the JobStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Ensure PostgresJobStore implements store.JobStore interface
var _ store.JobStore = (*PostgresJobStore)(nil)

// Create implements store.JobStore.Create
// It saves a new pending job to the database, handling domain validation.
// Returns store.ErrDuplicate if a record with the same ID already exists,
// or store.ErrUnavailable if the durable write fails.
func (s *PostgresJobStore) Create(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("job validation failed during create",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	query := `
		INSERT INTO jobs (id, prompt, status, response, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.Prompt,
		job.Status,
		job.Response,
		job.Error,
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return mapError(err)
	}

	log.Info("job created successfully",
		slog.String("job_id", job.ID.String()),
		slog.String("status", string(job.Status)))
	return nil
}

// GetByID implements store.JobStore.GetByID
// It retrieves a job by its unique ID.
// Returns store.ErrJobNotFound if the job does not exist.
func (s *PostgresJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving job by ID", slog.String("job_id", id.String()))

	query := `
		SELECT id, prompt, status, response, error, created_at, updated_at
		FROM jobs
		WHERE id = $1
	`

	var job domain.Job
	var status string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.Prompt,
		&status,
		&job.Response,
		&job.Error,
		&job.CreatedAt,
		&job.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("job not found", slog.String("job_id", id.String()))
			return nil, store.ErrJobNotFound
		}
		log.Error("failed to get job by ID",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return nil, mapError(err)
	}

	job.Status = domain.JobStatus(status)

	log.Debug("job retrieved successfully",
		slog.String("job_id", id.String()),
		slog.String("status", string(job.Status)))
	return &job, nil
}

// Complete implements store.JobStore.Complete
// It atomically transitions a pending job to completed and records the
// response. A job already in a terminal state is left untouched, and a
// missing record is created as a terminal one so a late-arriving
// completion is never lost.
func (s *PostgresJobStore) Complete(ctx context.Context, id uuid.UUID, response string) error {
	return s.reconcile(ctx, id, domain.JobStatusCompleted, &response, nil)
}

// Fail implements store.JobStore.Fail
// It atomically transitions a pending job to failed and records the error
// message, with the same no-op and create-if-missing semantics as Complete.
func (s *PostgresJobStore) Fail(ctx context.Context, id uuid.UUID, message string) error {
	return s.reconcile(ctx, id, domain.JobStatusFailed, nil, &message)
}

// reconcile durably records a job's outcome in a single atomic statement.
// The upsert creates a terminal record when none exists, transitions the
// record when it is still pending, and changes nothing when the record is
// already terminal (the conditional DO UPDATE only fires on pending rows).
func (s *PostgresJobStore) reconcile(
	ctx context.Context,
	id uuid.UUID,
	status domain.JobStatus,
	response *string,
	message *string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()

	query := `
		INSERT INTO jobs (id, prompt, status, response, error, created_at, updated_at)
		VALUES ($1, '', $2, $3, $4, $5, $5)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    response = EXCLUDED.response,
		    error = EXCLUDED.error,
		    updated_at = EXCLUDED.updated_at
		WHERE jobs.status = 'pending'
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		id,
		status,
		response,
		message,
		now,
	)

	if err != nil {
		log.Error("failed to reconcile job outcome",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()),
			slog.String("status", string(status)))
		return mapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return mapError(err)
	}

	if rowsAffected == 0 {
		// The record exists and is already terminal. Idempotent no-op.
		log.Debug("job already terminal, reconciliation skipped",
			slog.String("job_id", id.String()),
			slog.String("status", string(status)))
		return nil
	}

	log.Info("job outcome recorded",
		slog.String("job_id", id.String()),
		slog.String("status", string(status)))
	return nil
}
