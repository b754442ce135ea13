package utils

import (
	"errors"
	"fmt"
)

// ValidationError marks bad or missing input: no file, wrong extension,
// empty question, unresolvable document reference. Always maps to HTTP 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with a formatted message
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ProcessingError marks a chunking, embedding, storage, retrieval or
// generation failure. Maps to HTTP 500; the message includes the
// underlying cause text but stack traces stay on the diagnostic channel.
type ProcessingError struct {
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// NewProcessingError wraps an underlying failure so its text survives into
// the user-facing message.
func NewProcessingError(message string, cause error) *ProcessingError {
	return &ProcessingError{Message: message, Cause: cause}
}

// IsValidationError reports whether err is a ValidationError anywhere in
// its chain.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
