package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the processing state of a query job.
type JobStatus string

// Possible job status values
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Common validation errors for Job
var (
	ErrEmptyJobID       = errors.New("job ID cannot be empty")
	ErrEmptyJobPrompt   = errors.New("job prompt cannot be empty")
	ErrInvalidJobStatus = errors.New("invalid job status")
	ErrJobTerminal      = errors.New("job is already in a terminal state")
	ErrConflictingJob   = errors.New("job cannot carry both a response and an error")
)

// Job represents a single submitted prompt and its eventual outcome.
// A job is created in the pending state and transitions exactly once
// to completed or failed. Response and Error are mutually exclusive:
// Response is set only on completion, Error only on failure.
type Job struct {
	ID        uuid.UUID `json:"id"`
	Prompt    string    `json:"prompt"`
	Status    JobStatus `json:"status"`
	Response  *string   `json:"response"`
	Error     *string   `json:"error"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewJob creates a new Job for the given prompt.
// It generates a new UUID for the job ID, sets the status to pending,
// and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewJob(prompt string) (*Job, error) {
	job := &Job{
		ID:        uuid.New(),
		Prompt:    prompt,
		Status:    JobStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the Job has valid data.
// Returns an error if any field fails validation.
func (j *Job) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyJobID
	}

	if j.Prompt == "" {
		return ErrEmptyJobPrompt
	}

	if !isValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}

	if j.Response != nil && j.Error != nil {
		return ErrConflictingJob
	}

	return nil
}

// IsTerminal reports whether the job has reached a terminal state.
// Terminal jobs never transition again.
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// Complete transitions a pending job to completed and records the response.
// Returns ErrJobTerminal if the job has already reached a terminal state.
func (j *Job) Complete(response string) error {
	if j.IsTerminal() {
		return ErrJobTerminal
	}

	j.Status = JobStatusCompleted
	j.Response = &response
	j.Error = nil
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// Fail transitions a pending job to failed and records the error message.
// Returns ErrJobTerminal if the job has already reached a terminal state.
func (j *Job) Fail(message string) error {
	if j.IsTerminal() {
		return ErrJobTerminal
	}

	j.Status = JobStatusFailed
	j.Error = &message
	j.Response = nil
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// isValidJobStatus checks if the given status is a valid JobStatus.
func isValidJobStatus(status JobStatus) bool {
	switch status {
	case JobStatusPending, JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}
