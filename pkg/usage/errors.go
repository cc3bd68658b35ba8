package usage

import (
	"errors"
	"fmt"
)

// ErrRecorderClosed is returned when an event is offered to a
// recorder that has been closed.
var ErrRecorderClosed = errors.New("usage recorder is closed")

// ErrStoreClosed is returned by store operations after Close.
var ErrStoreClosed = errors.New("usage store is closed")

// StorageError wraps a failure in one of the usage stores.
type StorageError struct {
	// Backend names the store ("events" or "stats").
	Backend string

	// Operation is the store operation that failed.
	Operation string

	// Cause is the underlying error.
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("usage %s store: %s: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError builds a StorageError for the given backend and
// operation.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// SchedulerError wraps a failure while running or registering a
// scheduled usage job.
type SchedulerError struct {
	// Job names the job ("rollup" or "prune").
	Job string

	// Cause is the underlying error.
	Cause error
}

func (e *SchedulerError) Error() string {
	return fmt.Sprintf("usage scheduler: %s: %v", e.Job, e.Cause)
}

func (e *SchedulerError) Unwrap() error {
	return e.Cause
}

// NewSchedulerError builds a SchedulerError for the given job.
func NewSchedulerError(job string, cause error) *SchedulerError {
	return &SchedulerError{Job: job, Cause: cause}
}
