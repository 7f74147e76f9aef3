// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for task backend operations.
// All remote todo API calls go through this interface.
// The sync layer never talks HTTP directly.
type Service interface {
	// ListTasks returns up to limit tasks in backend order.
	ListTasks(ctx context.Context, limit int) ([]Task, error)

	// GetTask returns a single task by ID.
	GetTask(ctx context.Context, id int) (Task, error)

	// CreateTask creates a task and returns it with its assigned ID.
	CreateTask(ctx context.Context, t NewTask) (Task, error)

	// UpdateTask applies patch to the task and returns the updated task.
	UpdateTask(ctx context.Context, id int, patch TaskPatch) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id int) error
}
