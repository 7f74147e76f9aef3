// Package tasksync keeps the in-memory task collection in step with the
// remote todo service.
//
// Reads go remote first, persist the result to the durable store, and fall
// back to that store when the remote is unreachable or the probe reports
// offline. Writes always go to the remote; on success the matching patch is
// applied to the in-memory collection without a refetch. The durable store
// only ever holds the last successful full read.
package tasksync

import (
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"doit/internal/connectivity"
	"doit/internal/logging"
	"doit/internal/querycache"
	"doit/internal/service"
	"doit/internal/store"
)

// Durable cache keys.
const (
	KeyAllTasks       = "all-tasks"
	KeyTasksTimestamp = "tasks-timestamp"
)

// DefaultFetchLimit is the number of tasks requested by a full read.
const DefaultFetchLimit = 150

// Options configures a Client. Only Remote is required.
type Options struct {
	Remote service.Service

	// Store defaults to store.Nop.
	Store store.Store

	// Probe defaults to always online.
	Probe connectivity.Probe

	// Cache defaults to a new empty collection.
	Cache *querycache.Cache

	Logger  *slog.Logger
	Metrics *Metrics

	FetchLimit int
	OwnerID    int

	// Now defaults to time.Now.
	Now func() time.Time
}

// Client is the sync layer: it holds every collaborator the read and write
// paths need, so nothing lives in package state.
type Client struct {
	remote  service.Service
	store   store.Store
	probe   connectivity.Probe
	cache   *querycache.Cache
	log     *slog.Logger
	metrics *Metrics

	fetchLimit int
	ownerID    int
	now        func() time.Time

	loads singleflight.Group
}

// New creates a Client.
func New(opts Options) *Client {
	c := &Client{
		remote:     opts.Remote,
		store:      opts.Store,
		probe:      opts.Probe,
		cache:      opts.Cache,
		log:        opts.Logger,
		metrics:    opts.Metrics,
		fetchLimit: opts.FetchLimit,
		ownerID:    opts.OwnerID,
		now:        opts.Now,
	}
	if c.store == nil {
		c.store = store.Nop{}
	}
	if c.probe == nil {
		c.probe = connectivity.Static(true)
	}
	if c.cache == nil {
		c.cache = querycache.New()
	}
	if c.log == nil {
		c.log = logging.Discard()
	}
	if c.metrics == nil {
		c.metrics = NewMetrics(nil)
	}
	if c.fetchLimit < 1 {
		c.fetchLimit = DefaultFetchLimit
	}
	if c.ownerID == 0 {
		c.ownerID = 1
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Tasks returns the current in-memory collection.
func (c *Client) Tasks() []service.Task {
	return c.cache.Tasks()
}

// Loaded reports whether the in-memory collection has been populated by a read.
func (c *Client) Loaded() bool {
	return c.cache.Loaded()
}

// Online samples the connectivity probe.
func (c *Client) Online() bool {
	return c.probe.Online()
}

// Durable reports whether the cache survives restarts.
func (c *Client) Durable() bool {
	return c.store.Durable()
}

// Close logs a metrics summary and releases the durable store.
func (c *Client) Close() error {
	c.metrics.LogSummary(c.log)
	return c.store.Close()
}
