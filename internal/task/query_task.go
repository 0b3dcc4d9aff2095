package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/askdoc/askdoc-api/internal/processing"
	"github.com/askdoc/askdoc-api/internal/store"
	"github.com/google/uuid"
)

// reconcileTimeout bounds the durable outcome write after processing has
// finished. It is deliberately independent of the execution context so a
// cancelled or timed-out job still reaches a terminal record.
const reconcileTimeout = 10 * time.Second

// Common errors
var (
	ErrNilJobStore  = errors.New("job store cannot be nil")
	ErrNilProcessor = errors.New("processor cannot be nil")
	ErrNilLogger    = errors.New("logger cannot be nil")
	ErrEmptyJobID   = errors.New("job ID cannot be empty")
	ErrEmptyPrompt  = errors.New("prompt cannot be empty")
)

// queryProcessingPayload represents the serialized data carried by the task
type queryProcessingPayload struct {
	JobID  uuid.UUID `json:"job_id"`
	Prompt string    `json:"prompt"`
}

// QueryProcessingTask implements the Task interface for answering a
// submitted prompt and durably recording the outcome.
//
// Execute never lets a failure escape unresolved: every path, including
// processor errors, timeouts, and panics, ends in exactly one terminal
// write through the job store. The write itself is conditional on the
// record still being pending, so a concurrent duplicate completion is a
// no-op rather than an overwrite.
type QueryProcessingTask struct {
	id        uuid.UUID
	jobID     uuid.UUID
	prompt    string
	jobStore  store.JobStore
	processor processing.Processor
	timeout   time.Duration
	logger    *slog.Logger
	status    TaskStatus
}

// NewQueryProcessingTask creates a new query processing task for the given job.
func NewQueryProcessingTask(
	jobID uuid.UUID,
	prompt string,
	jobStore store.JobStore,
	processor processing.Processor,
	timeout time.Duration,
	logger *slog.Logger,
) (*QueryProcessingTask, error) {
	if jobStore == nil {
		return nil, ErrNilJobStore
	}
	if processor == nil {
		return nil, ErrNilProcessor
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if jobID == uuid.Nil {
		return nil, ErrEmptyJobID
	}
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &QueryProcessingTask{
		id:        uuid.New(),
		jobID:     jobID,
		prompt:    prompt,
		jobStore:  jobStore,
		processor: processor,
		timeout:   timeout,
		logger:    logger.With("task_type", TaskTypeQueryProcessing, "job_id", jobID),
		status:    TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *QueryProcessingTask) ID() uuid.UUID {
	return t.id
}

// JobID returns the identifier of the job this task executes.
func (t *QueryProcessingTask) JobID() uuid.UUID {
	return t.jobID
}

// Type returns the task type identifier
func (t *QueryProcessingTask) Type() string {
	return TaskTypeQueryProcessing
}

// Payload returns the task data as a byte slice
func (t *QueryProcessingTask) Payload() []byte {
	payload := queryProcessingPayload{
		JobID:  t.jobID,
		Prompt: t.prompt,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *QueryProcessingTask) Status() TaskStatus {
	return t.status
}

// Execute runs the query against the processor and reconciles the outcome
// into the job store. On success the job becomes completed with the
// response text; on any failure (processor error, timeout, cancellation,
// panic) it becomes failed with the error message.
func (t *QueryProcessingTask) Execute(ctx context.Context) (err error) {
	t.status = TaskStatusProcessing
	t.logger.Info("starting query processing task")

	defer func() {
		if r := recover(); r != nil {
			t.status = TaskStatusFailed
			t.logger.Error("query processing panicked", "panic", r)
			err = fmt.Errorf("query processing panicked: %v", r)
			t.reconcileFailure(ctx, err.Error())
		}
	}()

	procCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	response, procErr := t.processor.Process(procCtx, t.prompt)
	if procErr != nil {
		t.status = TaskStatusFailed
		t.logger.Error("query processing failed", "error", procErr)
		t.reconcileFailure(ctx, procErr.Error())
		return fmt.Errorf("failed to process query: %w", procErr)
	}

	reconcileCtx, cancelReconcile := t.reconcileContext(ctx)
	defer cancelReconcile()

	if storeErr := t.jobStore.Complete(reconcileCtx, t.jobID, response); storeErr != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to record query response", "error", storeErr)
		return fmt.Errorf("failed to record query response: %w", storeErr)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("query processing task completed", "response_length", len(response))
	return nil
}

// reconcileFailure durably marks the job failed. The outcome write runs
// on its own context so it still happens when the execution context is
// already cancelled or past its deadline.
func (t *QueryProcessingTask) reconcileFailure(ctx context.Context, message string) {
	reconcileCtx, cancel := t.reconcileContext(ctx)
	defer cancel()

	if err := t.jobStore.Fail(reconcileCtx, t.jobID, message); err != nil {
		t.logger.Error("failed to record query failure", "error", err)
	}
}

// reconcileContext derives a context for the terminal write that ignores
// the execution context's cancellation but carries its values.
func (t *QueryProcessingTask) reconcileContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), reconcileTimeout)
}
