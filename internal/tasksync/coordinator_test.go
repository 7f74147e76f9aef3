package tasksync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doit/internal/querycache"
	"doit/internal/service"
	"doit/internal/store"
	fake "doit/internal/testutil"
)

// switchProbe is a probe tests can flip between online and offline.
type switchProbe struct{ offline atomic.Bool }

func (p *switchProbe) Online() bool { return !p.offline.Load() }

// brokenStore fails every operation.
type brokenStore struct{}

func (brokenStore) Get(key string, v any) (bool, error) {
	return false, &store.Error{Op: "get", Key: key, Err: errors.New("disk on fire")}
}
func (brokenStore) Set(key string, v any) error {
	return &store.Error{Op: "set", Key: key, Err: errors.New("quota exceeded")}
}
func (brokenStore) Durable() bool { return true }
func (brokenStore) Close() error  { return nil }

type harness struct {
	remote *fake.FakeService
	store  store.Store
	probe  *switchProbe
	client *Client
	now    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	s, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return newHarnessWithStore(t, s)
}

func newHarnessWithStore(t *testing.T, s store.Store) *harness {
	t.Helper()
	h := &harness{
		remote: fake.NewFakeService(),
		store:  s,
		probe:  &switchProbe{},
		now:    time.UnixMilli(1700000000000),
	}
	h.client = New(Options{
		Remote: h.remote,
		Store:  s,
		Probe:  h.probe,
		Now:    func() time.Time { return h.now },
	})
	return h
}

func TestLoadTasks_OnlineReturnsRemoteAndPersists(t *testing.T) {
	h := newHarness(t)
	h.remote.AddTask(1, "a", false)
	h.remote.AddTask(2, "b", true)
	ctx := context.Background()

	got, err := h.client.LoadTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, h.remote.Tasks(), got)
	assert.Equal(t, got, h.client.Tasks())

	// A later offline load is served from the durable cache.
	h.probe.offline.Store(true)
	calls := h.remote.TotalCalls()
	offline, err := h.client.LoadTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, offline)
	assert.Equal(t, calls, h.remote.TotalCalls())

	synced, ok := h.client.LastSynced()
	require.True(t, ok)
	assert.Equal(t, h.now.UnixMilli(), synced.UnixMilli())
	assert.Equal(t, float64(1), testutil.ToFloat64(h.client.metrics.Loads.WithLabelValues(SourceRemote)))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.client.metrics.Loads.WithLabelValues(SourceCache)))
}

func TestLoadTasks_OfflineUsesSnapshotWithoutRemote(t *testing.T) {
	h := newHarness(t)
	snapshot := []service.Task{{ID: 3, Text: "cached", OwnerID: 1}}
	require.NoError(t, h.store.Set(KeyAllTasks, snapshot))
	h.probe.offline.Store(true)

	got, err := h.client.LoadTasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snapshot, got)
	assert.Equal(t, 0, h.remote.TotalCalls())
}

func TestLoadTasks_OfflineEmptyCache(t *testing.T) {
	h := newHarness(t)
	h.probe.offline.Store(true)

	_, err := h.client.LoadTasks(context.Background())
	assert.True(t, errors.Is(err, ErrNoDataAvailable))
	assert.Equal(t, 0, h.remote.TotalCalls())
	assert.False(t, h.client.Loaded())
}

func TestLoadTasks_RemoteFailureFallsBackToSnapshot(t *testing.T) {
	h := newHarness(t)
	h.remote.AddTask(1, "a", false)
	ctx := context.Background()

	first, err := h.client.LoadTasks(ctx)
	require.NoError(t, err)

	h.remote.ListTasksErr = errors.New("connection reset by peer")
	got, err := h.client.LoadTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []service.Task{{ID: 1, Text: "a", OwnerID: 1}}, got)
	assert.Equal(t, first, got)
}

func TestLoadTasks_CancelledSkipsSnapshotFallback(t *testing.T) {
	h := newHarness(t)
	h.remote.AddTask(1, "a", false)

	_, err := h.client.LoadTasks(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.remote.ListTasksErr = context.Canceled

	got, err := h.client.LoadTasks(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrNoDataAvailable)
	assert.Nil(t, got)
}

func TestLoadTasks_RemoteFailureEmptyCache(t *testing.T) {
	h := newHarness(t)
	cause := &service.StatusError{Code: 500, Message: "boom"}
	h.remote.ListTasksErr = cause

	_, err := h.client.LoadTasks(context.Background())
	assert.True(t, errors.Is(err, ErrNoDataAvailable))

	var serr *service.StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 500, serr.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(h.client.metrics.Loads.WithLabelValues(SourceNone)))
}

func TestLoadTasks_RemoteFailureKeepsSnapshotUntouched(t *testing.T) {
	h := newHarness(t)
	h.remote.AddTask(1, "a", false)
	ctx := context.Background()
	_, err := h.client.LoadTasks(ctx)
	require.NoError(t, err)
	firstSync, _ := h.client.LastSynced()

	h.now = h.now.Add(time.Hour)
	h.remote.ListTasksErr = errors.New("timeout")
	_, err = h.client.LoadTasks(ctx)
	require.NoError(t, err)

	again, _ := h.client.LastSynced()
	assert.Equal(t, firstSync, again)
}

func TestLoadTasks_EmptyRemotePersistsEmptySnapshot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	got, err := h.client.LoadTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	h.probe.offline.Store(true)
	got, err = h.client.LoadTasks(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLoadTasks_StorageFailureIsAbsorbed(t *testing.T) {
	h := newHarnessWithStore(t, brokenStore{})
	h.remote.AddTask(1, "a", false)
	ctx := context.Background()

	got, err := h.client.LoadTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(h.client.metrics.StorageErrors.WithLabelValues("set")))

	// A broken cache reads as a miss.
	h.probe.offline.Store(true)
	_, err = h.client.LoadTasks(ctx)
	assert.True(t, errors.Is(err, ErrNoDataAvailable))
	var serr *store.Error
	assert.False(t, errors.As(err, &serr))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.client.metrics.StorageErrors.WithLabelValues("get")))

	_, ok := h.client.LastSynced()
	assert.False(t, ok)
}

func TestLoadTasks_NopStore(t *testing.T) {
	h := newHarnessWithStore(t, store.Nop{})
	h.remote.AddTask(1, "a", false)
	ctx := context.Background()

	_, err := h.client.LoadTasks(ctx)
	require.NoError(t, err)
	assert.False(t, h.client.Durable())

	h.probe.offline.Store(true)
	_, err = h.client.LoadTasks(ctx)
	assert.True(t, errors.Is(err, ErrNoDataAvailable))
}

// End to end: the collection was loaded once, the network then fails and the
// durable snapshot is served instead of an error.
func TestLoadTasks_NetworkFailureServesCachedSnapshot(t *testing.T) {
	h := newHarness(t)
	h.remote.AddTask(1, "a", false)
	ctx := context.Background()

	_, err := h.client.LoadTasks(ctx)
	require.NoError(t, err)

	h.remote.ListTasksErr = errors.New("dial tcp: no route to host")
	got, err := h.client.LoadTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []service.Task{{ID: 1, Text: "a", Completed: false, OwnerID: 1}}, got)
}

// blockingService holds ListTasks until released, to order concurrent reads.
type blockingService struct {
	*fake.FakeService
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (b *blockingService) ListTasks(ctx context.Context, limit int) ([]service.Task, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return b.FakeService.ListTasks(ctx, limit)
}

func TestLoadTasks_PatchDuringReadWins(t *testing.T) {
	remote := &blockingService{
		FakeService: fake.NewFakeService(),
		release:     make(chan struct{}),
		started:     make(chan struct{}),
	}
	remote.AddTask(1, "a", false)
	cache := querycache.New()
	c := New(Options{Remote: remote, Cache: cache})

	done := make(chan error)
	go func() {
		_, err := c.LoadTasks(context.Background())
		done <- err
	}()

	<-remote.started
	cache.Append(service.Task{ID: 99, Text: "patched meanwhile"})
	close(remote.release)
	require.NoError(t, <-done)

	got := c.Tasks()
	require.Len(t, got, 1)
	assert.Equal(t, 99, got[0].ID)
	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.SupersededReads))
}

func TestLoadTasks_ReadJoiningAfterPatchKeepsPatch(t *testing.T) {
	remote := &blockingService{
		FakeService: fake.NewFakeService(),
		release:     make(chan struct{}),
		started:     make(chan struct{}),
	}
	remote.AddTask(1, "a", false)
	cache := querycache.New()
	c := New(Options{Remote: remote, Cache: cache})
	ctx := context.Background()

	first := make(chan error)
	go func() {
		_, err := c.LoadTasks(ctx)
		first <- err
	}()
	<-remote.started

	cache.Append(service.Task{ID: 99, Text: "patched meanwhile"})

	second := make(chan error)
	go func() {
		_, err := c.LoadTasks(ctx)
		second <- err
	}()
	// Give the second read time to join the in-flight fetch.
	time.Sleep(50 * time.Millisecond)
	close(remote.release)

	require.NoError(t, <-first)
	require.NoError(t, <-second)
	require.Equal(t, 1, remote.Calls("ListTasks"), "second read should share the first fetch")

	got, ok := cache.Find(99)
	require.True(t, ok, "confirmed patch was overwritten by a fetch that began before it")
	assert.Equal(t, "patched meanwhile", got.Text)
	assert.Equal(t, float64(2), testutil.ToFloat64(c.metrics.SupersededReads))
}

func TestGetTask_Remote(t *testing.T) {
	h := newHarness(t)
	h.remote.AddTask(4, "remote", false)

	got, err := h.client.GetTask(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "remote", got.Text)
	assert.Equal(t, 0, h.remote.Calls("ListTasks"))
}

func TestGetTask_FallsBackToCollection(t *testing.T) {
	h := newHarness(t)
	h.remote.AddTask(4, "cached", false)
	ctx := context.Background()
	_, err := h.client.LoadTasks(ctx)
	require.NoError(t, err)

	h.remote.GetTaskErr = errors.New("network down")
	got, err := h.client.GetTask(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "cached", got.Text)
}

func TestGetTask_OfflineLoadsSnapshot(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Set(KeyAllTasks, []service.Task{{ID: 8, Text: "snap"}}))
	h.probe.offline.Store(true)

	got, err := h.client.GetTask(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, "snap", got.Text)
	assert.Equal(t, 0, h.remote.TotalCalls())
}

func TestGetTask_NotFound(t *testing.T) {
	h := newHarness(t)
	h.remote.AddTask(1, "a", false)

	_, err := h.client.GetTask(context.Background(), 12)
	assert.True(t, errors.Is(err, service.ErrNotFound))
}
