package tasksync

import (
	"context"
	"strings"

	"doit/internal/service"
)

// CreateTask creates a task remotely and appends it to the collection.
func (c *Client) CreateTask(ctx context.Context, text string) (service.Task, error) {
	text, err := validateText(text)
	if err != nil {
		return service.Task{}, err
	}
	if err := c.ensureOnline(OpCreate, 0); err != nil {
		return service.Task{}, err
	}

	t, err := c.remote.CreateTask(ctx, service.NewTask{Text: text, OwnerID: c.ownerID})
	if err != nil {
		return service.Task{}, c.writeFailed(OpCreate, 0, err)
	}

	c.cache.Append(t)
	c.metrics.Mutations.WithLabelValues(OpCreate, "ok").Inc()
	c.log.Debug("task created", "id", t.ID)
	return t, nil
}

// UpdateTask replaces the text of a task remotely, then in the collection.
// Other fields of the cached task are left as they were.
func (c *Client) UpdateTask(ctx context.Context, id int, text string) (service.Task, error) {
	text, err := validateText(text)
	if err != nil {
		return service.Task{}, err
	}
	if err := c.ensureOnline(OpUpdate, id); err != nil {
		return service.Task{}, err
	}

	t, err := c.remote.UpdateTask(ctx, id, service.TaskPatch{Text: &text})
	if err != nil {
		return service.Task{}, c.writeFailed(OpUpdate, id, err)
	}

	updated := t.Text
	if updated == "" {
		updated = text
	}
	if !c.cache.ReplaceByID(id, func(old service.Task) service.Task {
		old.Text = updated
		return old
	}) {
		c.log.Debug("updated task not in collection", "id", id)
	}
	c.metrics.Mutations.WithLabelValues(OpUpdate, "ok").Inc()
	return t, nil
}

// SetCompleted marks a task completed or pending remotely, then in the
// collection.
func (c *Client) SetCompleted(ctx context.Context, id int, completed bool) (service.Task, error) {
	if err := c.ensureOnline(OpComplete, id); err != nil {
		return service.Task{}, err
	}

	t, err := c.remote.UpdateTask(ctx, id, service.TaskPatch{Completed: &completed})
	if err != nil {
		return service.Task{}, c.writeFailed(OpComplete, id, err)
	}

	done := t.Completed
	if !c.cache.ReplaceByID(id, func(old service.Task) service.Task {
		old.Completed = done
		return old
	}) {
		c.log.Debug("completed task not in collection", "id", id)
	}
	c.metrics.Mutations.WithLabelValues(OpComplete, "ok").Inc()
	return t, nil
}

// DeleteTask deletes a task remotely and removes it from the collection.
func (c *Client) DeleteTask(ctx context.Context, id int) (int, error) {
	if err := c.ensureOnline(OpDelete, id); err != nil {
		return 0, err
	}
	if err := c.remote.DeleteTask(ctx, id); err != nil {
		return 0, c.writeFailed(OpDelete, id, err)
	}

	c.cache.RemoveByID(id)
	c.metrics.Mutations.WithLabelValues(OpDelete, "ok").Inc()
	return id, nil
}

func validateText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	return text, nil
}

// ensureOnline fails a write fast when the probe reports offline.
// Writes made offline are not queued.
func (c *Client) ensureOnline(op string, id int) error {
	if c.probe.Online() {
		return nil
	}
	return c.writeFailed(op, id, ErrOffline)
}

func (c *Client) writeFailed(op string, id int, err error) error {
	c.metrics.Mutations.WithLabelValues(op, "error").Inc()
	c.log.Warn("remote write failed", "op", op, "id", id, "error", err)
	return &RemoteWriteFailedError{Op: op, TaskID: id, Err: err}
}
