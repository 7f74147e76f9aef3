package tasksync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"doit/internal/service"
	"doit/internal/store"
)

// LoadTasks reads the full collection and publishes it.
//
// Offline: served from the durable cache, or ErrNoDataAvailable.
// Online: fetched remotely and persisted; on any remote failure the durable
// cache is served instead, stale data being preferred over an error.
//
// Concurrent calls share one underlying read. A result is returned to every
// caller but only published if no newer read or patch happened meanwhile.
func (c *Client) LoadTasks(ctx context.Context) ([]service.Task, error) {
	v, err, _ := c.loads.Do("tasks", func() (any, error) {
		gen := c.cache.Begin()
		tasks, err := c.load(ctx)
		return sharedRead{gen: gen, tasks: tasks}, err
	})
	if err != nil {
		return nil, err
	}

	// Every caller publishes under the generation taken when the shared read
	// began, so a caller joining after a patch cannot republish older data.
	read := v.(sharedRead)
	if !c.cache.Replace(read.gen, read.tasks) {
		c.metrics.SupersededReads.Inc()
		c.log.Debug("discarding superseded read", "generation", read.gen)
	}
	return slices.Clone(read.tasks), nil
}

type sharedRead struct {
	gen   uint64
	tasks []service.Task
}

func (c *Client) load(ctx context.Context) ([]service.Task, error) {
	if !c.probe.Online() {
		c.log.Info("offline, loading tasks from cache")
		if tasks, ok := c.readSnapshot(); ok {
			c.metrics.Loads.WithLabelValues(SourceCache).Inc()
			return tasks, nil
		}
		c.metrics.Loads.WithLabelValues(SourceNone).Inc()
		return nil, fmt.Errorf("%w: offline and nothing cached", ErrNoDataAvailable)
	}

	tasks, err := c.remote.ListTasks(ctx, c.fetchLimit)
	if err == nil {
		if tasks == nil {
			tasks = []service.Task{}
		}
		c.writeSnapshot(tasks)
		c.metrics.Loads.WithLabelValues(SourceRemote).Inc()
		c.log.Debug("loaded tasks from remote", "count", len(tasks))
		return tasks, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		c.metrics.Loads.WithLabelValues(SourceNone).Inc()
		return nil, fmt.Errorf("load tasks: %w", ctxErr)
	}
	c.log.Warn("remote fetch failed, trying cache", "error", err)
	if cached, ok := c.readSnapshot(); ok {
		c.metrics.Loads.WithLabelValues(SourceCache).Inc()
		return cached, nil
	}
	c.metrics.Loads.WithLabelValues(SourceNone).Inc()
	return nil, fmt.Errorf("%w: %w", ErrNoDataAvailable, err)
}

// GetTask returns one task, preferring the remote copy and falling back to
// the in-memory collection (loading it first if needed).
func (c *Client) GetTask(ctx context.Context, id int) (service.Task, error) {
	var remoteErr error
	if c.probe.Online() {
		t, err := c.remote.GetTask(ctx, id)
		if err == nil {
			return t, nil
		}
		remoteErr = err
		c.log.Info("remote task lookup failed, using local collection", "id", id, "error", err)
	}

	if !c.cache.Loaded() {
		if _, err := c.LoadTasks(ctx); err != nil {
			return service.Task{}, err
		}
	}
	if t, ok := c.cache.Find(id); ok {
		return t, nil
	}
	if remoteErr != nil && !errors.Is(remoteErr, service.ErrNotFound) {
		return service.Task{}, fmt.Errorf("task %d: %w", id, remoteErr)
	}
	return service.Task{}, fmt.Errorf("task %d: %w", id, service.ErrNotFound)
}

// LastSynced returns the time of the last successful full read persisted to
// the durable cache.
func (c *Client) LastSynced() (time.Time, bool) {
	ms, ok, err := store.Load[int64](c.store, KeyTasksTimestamp)
	if err != nil {
		c.storageFailure("get", err)
		return time.Time{}, false
	}
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// CachedTasks returns the durable snapshot of the last successful full read.
func (c *Client) CachedTasks() ([]service.Task, bool) {
	return c.readSnapshot()
}

func (c *Client) readSnapshot() ([]service.Task, bool) {
	tasks, ok, err := store.Load[[]service.Task](c.store, KeyAllTasks)
	if err != nil {
		c.storageFailure("get", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, true
}

func (c *Client) writeSnapshot(tasks []service.Task) {
	if err := c.store.Set(KeyAllTasks, tasks); err != nil {
		c.storageFailure("set", err)
		return
	}
	if err := c.store.Set(KeyTasksTimestamp, c.now().UnixMilli()); err != nil {
		c.storageFailure("set", err)
	}
}

// storageFailure absorbs a durable cache error: it is logged and counted,
// and the caller carries on as on a cache miss.
func (c *Client) storageFailure(op string, err error) {
	c.metrics.StorageErrors.WithLabelValues(op).Inc()
	c.log.Warn("task cache unavailable", "op", op, "error", err)
}
