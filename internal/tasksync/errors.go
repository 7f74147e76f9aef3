package tasksync

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDataAvailable is returned by reads when neither the remote nor the
	// durable cache could provide tasks.
	ErrNoDataAvailable = errors.New("no task data available")

	// ErrOffline is the cause of a write attempted while the probe reports offline.
	ErrOffline = errors.New("offline")
)

// ValidationError rejects input before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Mutation operations.
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpComplete = "complete"
	OpDelete   = "delete"
)

// RemoteWriteFailedError is a create, update or delete the remote did not confirm.
// The in-memory collection is left unchanged.
type RemoteWriteFailedError struct {
	Op     string
	TaskID int // zero for create
	Err    error
}

func (e *RemoteWriteFailedError) Error() string {
	if e.TaskID != 0 {
		return fmt.Sprintf("%s task %d failed: %v", e.Op, e.TaskID, e.Err)
	}
	return fmt.Sprintf("%s task failed: %v", e.Op, e.Err)
}

func (e *RemoteWriteFailedError) Unwrap() error { return e.Err }
