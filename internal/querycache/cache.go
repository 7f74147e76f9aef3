// Package querycache holds the single in-memory task collection shown to the user.
//
// The collection is never modified in place. Every change builds a new slice
// and publishes it with one atomic pointer swap, so a reader sees either the
// state before a patch or the state after it.
//
// Reads are tagged with a generation from Begin. Replace only publishes a
// read whose generation is still current: a newer Begin or any successful
// patch in the meantime makes the older read stale.
package querycache

import (
	"slices"
	"sync"
	"sync/atomic"

	"doit/internal/service"
)

type snapshot struct {
	tasks  []service.Task
	loaded bool
}

// Cache is the live task collection.
type Cache struct {
	mu  sync.Mutex // serializes writers
	cur atomic.Pointer[snapshot]
	gen atomic.Uint64
}

// New returns an empty, not yet loaded cache.
func New() *Cache {
	c := &Cache{}
	c.cur.Store(&snapshot{})
	return c
}

// Begin starts a read and returns its generation.
func (c *Cache) Begin() uint64 {
	return c.gen.Add(1)
}

// Replace publishes tasks wholesale if gen is still the current generation.
// It reports whether the tasks were published.
func (c *Cache) Replace(gen uint64, tasks []service.Task) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen.Load() {
		return false
	}
	c.cur.Store(&snapshot{tasks: slices.Clone(tasks), loaded: true})
	return true
}

// Loaded reports whether a read has been published.
func (c *Cache) Loaded() bool {
	return c.cur.Load().loaded
}

// Tasks returns a copy of the current collection.
func (c *Cache) Tasks() []service.Task {
	return slices.Clone(c.cur.Load().tasks)
}

// Len returns the number of tasks in the current collection.
func (c *Cache) Len() int {
	return len(c.cur.Load().tasks)
}

// Find returns the task with the given id.
func (c *Cache) Find(id int) (service.Task, bool) {
	tasks := c.cur.Load().tasks
	if i := indexOf(tasks, id); i >= 0 {
		return tasks[i], true
	}
	return service.Task{}, false
}

// Append adds t at the end of the collection.
// Duplicate ids are not rejected.
func (c *Cache) Append(t service.Task) {
	c.patch(func(tasks []service.Task) ([]service.Task, bool) {
		return append(slices.Clone(tasks), t), true
	})
}

// ReplaceByID replaces the task with the given id by update(old), keeping its
// position. It reports whether a task matched.
func (c *Cache) ReplaceByID(id int, update func(service.Task) service.Task) bool {
	return c.patch(func(tasks []service.Task) ([]service.Task, bool) {
		i := indexOf(tasks, id)
		if i < 0 {
			return nil, false
		}
		next := slices.Clone(tasks)
		next[i] = update(next[i])
		next[i].ID = id
		return next, true
	})
}

// RemoveByID removes every task with the given id, keeping the order of the
// remainder. It reports whether a task matched.
func (c *Cache) RemoveByID(id int) bool {
	return c.patch(func(tasks []service.Task) ([]service.Task, bool) {
		if indexOf(tasks, id) < 0 {
			return nil, false
		}
		next := slices.DeleteFunc(slices.Clone(tasks), func(t service.Task) bool {
			return t.ID == id
		})
		return next, true
	})
}

// patch applies fn to the current collection and publishes the result.
// A published patch invalidates reads that are still in flight.
func (c *Cache) patch(fn func([]service.Task) ([]service.Task, bool)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.cur.Load()
	next, ok := fn(cur.tasks)
	if !ok {
		return false
	}
	c.gen.Add(1)
	c.cur.Store(&snapshot{tasks: next, loaded: cur.loaded})
	return true
}

func indexOf(tasks []service.Task, id int) int {
	return slices.IndexFunc(tasks, func(t service.Task) bool { return t.ID == id })
}
