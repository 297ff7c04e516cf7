package core

import "fmt"

// ValidationError marks a malformed or missing request field, rejected
// before any store access.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ImportError marks a malformed import document. Nothing from the
// failing batch is persisted.
type ImportError struct {
	Reason string
}

func (e *ImportError) Error() string {
	return "import: " + e.Reason
}

func NewImportError(format string, args ...any) *ImportError {
	return &ImportError{Reason: fmt.Sprintf(format, args...)}
}

// BackendError is the uniform shape of a failed generation call. Detail
// carries the backend's diagnostic text; callers never see
// backend-specific error shapes.
type BackendError struct {
	Status int
	Detail string
}

func (e *BackendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("generation failed: http %d: %s", e.Status, e.Detail)
	}
	return "generation failed: " + e.Detail
}
