package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/askdoc/askdoc-api/internal/domain"
	"github.com/askdoc/askdoc-api/internal/processing"
	"github.com/askdoc/askdoc-api/internal/store"
	"github.com/askdoc/askdoc-api/internal/task"
	"github.com/google/uuid"
)

// TaskEnqueuer defines the interface for handing tasks to the background
// worker pool.
type TaskEnqueuer interface {
	// Enqueue adds a task to the processing queue
	Enqueue(t task.Task) error
}

// JobService provides query-job operations: submission and status lookup.
type JobService interface {
	// SubmitQuery durably creates a pending job for the prompt, then
	// schedules exactly one background execution. The create write is
	// acknowledged before scheduling, so the returned job's ID is
	// immediately valid for GetJob lookups.
	SubmitQuery(ctx context.Context, prompt string) (*domain.Job, error)

	// GetJob retrieves a job by its ID. Read-only.
	GetJob(ctx context.Context, jobID uuid.UUID) (*domain.Job, error)
}

// Common sentinel errors for JobService
var (
	// ErrJobNotFound indicates that the job does not exist
	ErrJobNotFound = errors.New("job not found")

	// ErrStoreUnavailable indicates the durable store could not serve the
	// request; callers may retry
	ErrStoreUnavailable = errors.New("job store unavailable")

	// ErrExecutorBusy indicates the worker queue is at capacity and the
	// submission was rejected
	ErrExecutorBusy = errors.New("job executor is at capacity")
)

// JobServiceError wraps errors from the job service with context.
type JobServiceError struct {
	// Operation is the operation that failed (e.g., "submit_query")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for JobServiceError.
func (e *JobServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("job service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("job service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *JobServiceError) Unwrap() error {
	return e.Err
}

// jobServiceImpl implements the JobService interface
type jobServiceImpl struct {
	jobStore  store.JobStore
	enqueuer  TaskEnqueuer
	processor processing.Processor
	timeout   time.Duration
	logger    *slog.Logger
}

// NewJobService creates a new JobService.
// It returns an error if any of the required dependencies are nil.
func NewJobService(
	jobStore store.JobStore,
	enqueuer TaskEnqueuer,
	processor processing.Processor,
	timeout time.Duration,
	logger *slog.Logger,
) (JobService, error) {
	if jobStore == nil {
		return nil, &JobServiceError{
			Operation: "create_service",
			Message:   "jobStore cannot be nil",
		}
	}
	if enqueuer == nil {
		return nil, &JobServiceError{
			Operation: "create_service",
			Message:   "enqueuer cannot be nil",
		}
	}
	if processor == nil {
		return nil, &JobServiceError{
			Operation: "create_service",
			Message:   "processor cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &jobServiceImpl{
		jobStore:  jobStore,
		enqueuer:  enqueuer,
		processor: processor,
		timeout:   timeout,
		logger:    logger.With("component", "job_service"),
	}, nil
}

// SubmitQuery creates a new pending job and schedules its execution.
//
// Ordering matters here: the durable create write is acknowledged before
// the task is enqueued, so a caller polling the returned ID can never see
// "not found", and the executor can never observe the store before the
// record exists. If the create fails, nothing is scheduled. If the queue
// rejects the task, the already-created record is reconciled to failed so
// it does not linger as pending work nobody will run.
func (s *jobServiceImpl) SubmitQuery(ctx context.Context, prompt string) (*domain.Job, error) {
	job, err := domain.NewJob(prompt)
	if err != nil {
		s.logger.Error("failed to create job object", "error", err)
		return nil, &JobServiceError{
			Operation: "submit_query",
			Message:   "failed to create job object",
			Err:       err,
		}
	}

	if err := s.jobStore.Create(ctx, job); err != nil {
		s.logger.Error("failed to persist job", "error", err, "job_id", job.ID)
		if errors.Is(err, store.ErrUnavailable) {
			return nil, ErrStoreUnavailable
		}
		return nil, &JobServiceError{
			Operation: "submit_query",
			Message:   "failed to persist job",
			Err:       err,
		}
	}

	s.logger.Info("job created with pending status", "job_id", job.ID)

	t, err := task.NewQueryProcessingTask(
		job.ID,
		job.Prompt,
		s.jobStore,
		s.processor,
		s.timeout,
		s.logger,
	)
	if err != nil {
		s.failSubmission(ctx, job.ID, "failed to construct execution task")
		return nil, &JobServiceError{
			Operation: "submit_query",
			Message:   "failed to construct execution task",
			Err:       err,
		}
	}

	if err := s.enqueuer.Enqueue(t); err != nil {
		s.logger.Warn("task queue rejected job", "error", err, "job_id", job.ID)
		s.failSubmission(ctx, job.ID, "executor queue full")
		if errors.Is(err, task.ErrQueueFull) || errors.Is(err, task.ErrQueueClosed) {
			return nil, ErrExecutorBusy
		}
		return nil, &JobServiceError{
			Operation: "submit_query",
			Message:   "failed to enqueue job",
			Err:       err,
		}
	}

	s.logger.Info("job enqueued for background processing",
		"job_id", job.ID,
		"task_id", t.ID())

	return job, nil
}

// GetJob retrieves a job by its ID
func (s *jobServiceImpl) GetJob(ctx context.Context, jobID uuid.UUID) (*domain.Job, error) {
	job, err := s.jobStore.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			s.logger.Debug("job not found", "job_id", jobID)
			return nil, ErrJobNotFound
		}
		s.logger.Error("failed to retrieve job", "error", err, "job_id", jobID)
		if errors.Is(err, store.ErrUnavailable) {
			return nil, ErrStoreUnavailable
		}
		return nil, &JobServiceError{
			Operation: "get_job",
			Message:   "failed to retrieve job",
			Err:       err,
		}
	}

	s.logger.Debug("retrieved job successfully",
		"job_id", jobID,
		"status", job.Status)

	return job, nil
}

// failSubmission reconciles a job that was created but could not be
// scheduled. The record must not stay pending: no execution will ever
// complete it.
func (s *jobServiceImpl) failSubmission(ctx context.Context, jobID uuid.UUID, message string) {
	if err := s.jobStore.Fail(ctx, jobID, message); err != nil {
		s.logger.Error("failed to mark unscheduled job as failed",
			"error", err,
			"job_id", jobID)
	}
}
