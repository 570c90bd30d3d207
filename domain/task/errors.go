package task

import "errors"

var (
	// ErrNotFound indicates no task has the requested id.
	ErrNotFound = errors.New("task not found")
	// ErrValidation indicates the task fields were rejected.
	ErrValidation = errors.New("validation error")
)
