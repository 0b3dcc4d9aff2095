package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewJob(t *testing.T) {
	t.Parallel() // Enable parallel execution
	// Test valid job creation
	prompt := "Summarize the uploaded document."

	job, err := NewJob(prompt)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if job.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if job.Prompt != prompt {
		t.Errorf("Expected prompt %s, got %s", prompt, job.Prompt)
	}

	if job.Status != JobStatusPending {
		t.Errorf("Expected status %s, got %s", JobStatusPending, job.Status)
	}

	if job.Response != nil {
		t.Error("Expected nil response on a new job")
	}

	if job.Error != nil {
		t.Error("Expected nil error on a new job")
	}

	if job.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	if job.UpdatedAt.IsZero() {
		t.Error("Expected non-zero UpdatedAt time")
	}

	// Test invalid prompt
	_, err = NewJob("")
	if err != ErrEmptyJobPrompt {
		t.Errorf("Expected error %v, got %v", ErrEmptyJobPrompt, err)
	}
}

func TestJobValidate(t *testing.T) {
	t.Parallel() // Enable parallel execution
	response := "some answer"
	errMsg := "some failure"

	validJob := Job{
		ID:     uuid.New(),
		Prompt: "valid prompt",
		Status: JobStatusPending,
	}

	tests := []struct {
		name    string
		mutate  func(j *Job)
		wantErr error
	}{
		{
			name:    "valid pending job",
			mutate:  func(j *Job) {},
			wantErr: nil,
		},
		{
			name:    "empty ID",
			mutate:  func(j *Job) { j.ID = uuid.Nil },
			wantErr: ErrEmptyJobID,
		},
		{
			name:    "empty prompt",
			mutate:  func(j *Job) { j.Prompt = "" },
			wantErr: ErrEmptyJobPrompt,
		},
		{
			name:    "invalid status",
			mutate:  func(j *Job) { j.Status = "processing" },
			wantErr: ErrInvalidJobStatus,
		},
		{
			name: "response and error both set",
			mutate: func(j *Job) {
				j.Status = JobStatusCompleted
				j.Response = &response
				j.Error = &errMsg
			},
			wantErr: ErrConflictingJob,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			job := validJob
			tc.mutate(&job)

			err := job.Validate()
			if err != tc.wantErr {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestJobComplete(t *testing.T) {
	t.Parallel() // Enable parallel execution
	job, err := NewJob("a prompt")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := job.Complete("the answer"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if job.Status != JobStatusCompleted {
		t.Errorf("Expected status %s, got %s", JobStatusCompleted, job.Status)
	}

	if job.Response == nil || *job.Response != "the answer" {
		t.Error("Expected response to be recorded")
	}

	if job.Error != nil {
		t.Error("Expected error to remain nil after completion")
	}

	if !job.IsTerminal() {
		t.Error("Expected completed job to be terminal")
	}

	// A second transition must be rejected
	if err := job.Complete("another answer"); err != ErrJobTerminal {
		t.Errorf("Expected error %v, got %v", ErrJobTerminal, err)
	}

	if *job.Response != "the answer" {
		t.Error("Terminal response must not be overwritten")
	}
}

func TestJobFail(t *testing.T) {
	t.Parallel() // Enable parallel execution
	job, err := NewJob("a prompt")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := job.Fail("model unavailable"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if job.Status != JobStatusFailed {
		t.Errorf("Expected status %s, got %s", JobStatusFailed, job.Status)
	}

	if job.Error == nil || *job.Error != "model unavailable" {
		t.Error("Expected error message to be recorded")
	}

	if job.Response != nil {
		t.Error("Expected response to remain nil after failure")
	}

	if !job.IsTerminal() {
		t.Error("Expected failed job to be terminal")
	}

	// Terminal states never transition again, in either direction
	if err := job.Complete("late answer"); err != ErrJobTerminal {
		t.Errorf("Expected error %v, got %v", ErrJobTerminal, err)
	}

	if err := job.Fail("late failure"); err != ErrJobTerminal {
		t.Errorf("Expected error %v, got %v", ErrJobTerminal, err)
	}

	if *job.Error != "model unavailable" {
		t.Error("Terminal error must not be overwritten")
	}
}

func TestJobIsTerminal(t *testing.T) {
	t.Parallel() // Enable parallel execution
	job := Job{Status: JobStatusPending}
	if job.IsTerminal() {
		t.Error("Pending job must not be terminal")
	}

	job.Status = JobStatusCompleted
	if !job.IsTerminal() {
		t.Error("Completed job must be terminal")
	}

	job.Status = JobStatusFailed
	if !job.IsTerminal() {
		t.Error("Failed job must be terminal")
	}
}
