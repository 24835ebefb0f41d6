package models

import "fmt"

// ValidationError reports input that was rejected before any mutation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ErrTitleRequired is returned when a task title is empty after trimming.
var ErrTitleRequired = &ValidationError{Field: "title", Message: "task title is required"}

func invalidStatus(s TaskStatus) *ValidationError {
	return &ValidationError{
		Field:   "status",
		Message: fmt.Sprintf("invalid status %q: must be pending, in-progress, or completed", s),
	}
}
