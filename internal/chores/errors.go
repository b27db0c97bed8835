package chores

import "errors"

var (
	// ErrNotFound is returned when no task has the requested id.
	ErrNotFound = errors.New("task not found")
	// ErrValidation wraps rejected input: bad fields, bad or oversized images.
	ErrValidation = errors.New("invalid task")
)
