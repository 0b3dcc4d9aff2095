package processing

import "context"

// Processor defines the interface for answering a submitted prompt.
// This interface is the boundary between the job subsystem and the
// external query processor; implementations normalize provider failures
// into the errors defined in errors.go.
type Processor interface {
	// Process answers the given prompt and returns the response text.
	// The context bounds the call; implementations must honor
	// cancellation and deadlines.
	Process(ctx context.Context, prompt string) (string, error)
}
