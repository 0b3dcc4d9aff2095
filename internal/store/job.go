package store

import (
	"context"

	"github.com/askdoc/askdoc-api/internal/domain"
	"github.com/google/uuid"
)

// JobStore defines the interface for job record persistence.
//
// All mutations to a single record are atomic: Complete and Fail are
// conditional, write-once transitions out of the pending state. A
// completion arriving for a record that does not exist yet creates the
// terminal record directly so a late reconciliation is never lost.
type JobStore interface {
	// Create saves a new pending job to the store.
	// It handles domain validation internally.
	// Returns ErrDuplicate if a record with the same ID already exists,
	// or ErrUnavailable if the durable write fails.
	Create(ctx context.Context, job *domain.Job) error

	// GetByID retrieves a job by its unique ID.
	// Returns ErrJobNotFound if the job does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)

	// Complete atomically transitions the job to completed and records
	// the response. If the record is already terminal, the call is a
	// no-op. If the record does not exist, a terminal record is created.
	Complete(ctx context.Context, id uuid.UUID, response string) error

	// Fail atomically transitions the job to failed and records the
	// error message, with the same no-op and create-if-missing semantics
	// as Complete.
	Fail(ctx context.Context, id uuid.UUID, message string) error
}
