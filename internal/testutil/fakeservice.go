// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"slices"
	"sync"

	"doit/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task
	nextID int
	calls  map[string]int

	// Error injection for testing
	ListTasksErr  error
	GetTaskErr    error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error

	// NextID overrides the ID assigned by the next CreateTask when non-zero.
	NextID int
}

var _ service.Service = (*FakeService)(nil)

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID: 1,
		calls:  make(map[string]int),
	}
}

// AddTask adds a task to the backend.
func (f *FakeService) AddTask(id int, text string, completed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{ID: id, Text: text, Completed: completed, OwnerID: 1})
	if id >= f.nextID {
		f.nextID = id + 1
	}
}

// Tasks returns the backend state.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.tasks)
}

// Calls returns how many times method was invoked.
func (f *FakeService) Calls(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[method]
}

// TotalCalls returns the number of backend invocations of any kind.
func (f *FakeService) TotalCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *FakeService) record(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, limit int) ([]service.Task, error) {
	f.record("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := slices.Clone(f.tasks)
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []service.Task{}
	}
	return out, nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, id int) (service.Task, error) {
	f.record("GetTask")
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return service.Task{}, &service.StatusError{Code: 404}
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, nt service.NewTask) (service.Task, error) {
	f.record("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	if f.NextID != 0 {
		id = f.NextID
		f.NextID = 0
	}
	if id >= f.nextID {
		f.nextID = id + 1
	}
	t := service.Task{ID: id, Text: nt.Text, Completed: nt.Completed, OwnerID: nt.OwnerID}
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id int, patch service.TaskPatch) (service.Task, error) {
	f.record("UpdateTask")
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID != id {
			continue
		}
		if patch.Text != nil {
			t.Text = *patch.Text
		}
		if patch.Completed != nil {
			t.Completed = *patch.Completed
		}
		f.tasks[i] = t
		return t, nil
	}
	return service.Task{}, &service.StatusError{Code: 404}
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id int) error {
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &service.StatusError{Code: 404}
}
