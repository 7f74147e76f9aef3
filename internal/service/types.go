// Package service defines the backend-agnostic interface for task operations.
package service

// Task represents a single task item.
// JSON names follow the remote todo service.
type Task struct {
	ID        int    `json:"id"`
	Text      string `json:"todo"`
	Completed bool   `json:"completed"`
	OwnerID   int    `json:"userId"`
}

// NewTask is the payload for creating a task.
type NewTask struct {
	Text      string `json:"todo"`
	Completed bool   `json:"completed"`
	OwnerID   int    `json:"userId"`
}

// TaskPatch holds the mutable fields of a task.
// Nil fields are left untouched by the backend.
type TaskPatch struct {
	Text      *string `json:"todo,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}
