package processing

import "errors"

// Common errors returned by the processing package
var (
	// ErrProcessingFailed is returned when query processing fails for any general reason
	ErrProcessingFailed = errors.New("failed to process query")

	// ErrEmptyPrompt is returned when the prompt is empty
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrInvalidResponse is returned when the model response cannot be parsed or is empty
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during query processing")

	// ErrInvalidConfig is returned when the processor configuration is invalid
	ErrInvalidConfig = errors.New("invalid processor configuration")
)
