package tasksync

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doit/internal/service"
)

func loadedHarness(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t)
	h.remote.AddTask(1, "a", false)
	h.remote.AddTask(5, "old text", true)
	h.remote.AddTask(7, "c", false)
	h.remote.AddTask(9, "d", true)
	_, err := h.client.LoadTasks(context.Background())
	require.NoError(t, err)
	return h
}

func taskIDs(tasks []service.Task) []int {
	out := make([]int, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestCreateTask_RejectsEmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		h := newHarness(t)
		_, err := h.client.CreateTask(context.Background(), text)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "text %q", text)
		assert.Equal(t, 0, h.remote.TotalCalls(), "text %q", text)
	}
}

func TestCreateTask_AppendsConfirmedTask(t *testing.T) {
	h := loadedHarness(t)
	h.remote.NextID = 42

	got, err := h.client.CreateTask(context.Background(), "buy milk")
	require.NoError(t, err)
	assert.Equal(t, 42, got.ID)

	tasks := h.client.Tasks()
	assert.Equal(t, []int{1, 5, 7, 9, 42}, taskIDs(tasks))
	last := tasks[len(tasks)-1]
	assert.Equal(t, "buy milk", last.Text)
	assert.False(t, last.Completed)
	assert.Equal(t, 1, last.OwnerID)

	n := 0
	for _, task := range tasks {
		if task.ID == 42 {
			n++
		}
	}
	assert.Equal(t, 1, n)
	assert.Equal(t, float64(1), testutil.ToFloat64(h.client.metrics.Mutations.WithLabelValues(OpCreate, "ok")))
}

func TestCreateTask_TrimsText(t *testing.T) {
	h := newHarness(t)
	got, err := h.client.CreateTask(context.Background(), "  walk dog  ")
	require.NoError(t, err)
	assert.Equal(t, "walk dog", got.Text)
	assert.Equal(t, "walk dog", h.remote.Tasks()[0].Text)
}

func TestCreateTask_DoesNotTouchDurableCache(t *testing.T) {
	h := loadedHarness(t)
	_, err := h.client.CreateTask(context.Background(), "new")
	require.NoError(t, err)

	snapshot, ok := h.client.readSnapshot()
	require.True(t, ok)
	assert.Equal(t, []int{1, 5, 7, 9}, taskIDs(snapshot))
}

func TestCreateTask_RemoteFailureLeavesCollection(t *testing.T) {
	h := loadedHarness(t)
	before := h.client.Tasks()
	cause := errors.New("connection refused")
	h.remote.CreateTaskErr = cause

	_, err := h.client.CreateTask(context.Background(), "x")

	var werr *RemoteWriteFailedError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, OpCreate, werr.Op)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, before, h.client.Tasks())
	assert.Equal(t, float64(1), testutil.ToFloat64(h.client.metrics.Mutations.WithLabelValues(OpCreate, "error")))
}

func TestUpdateTask_ChangesOnlyText(t *testing.T) {
	h := loadedHarness(t)

	_, err := h.client.UpdateTask(context.Background(), 5, "new text")
	require.NoError(t, err)

	tasks := h.client.Tasks()
	assert.Equal(t, []int{1, 5, 7, 9}, taskIDs(tasks))
	assert.Equal(t, service.Task{ID: 5, Text: "new text", Completed: true, OwnerID: 1}, tasks[1])
	assert.Equal(t, service.Task{ID: 1, Text: "a", OwnerID: 1}, tasks[0])
}

func TestUpdateTask_Validation(t *testing.T) {
	h := loadedHarness(t)
	calls := h.remote.TotalCalls()

	_, err := h.client.UpdateTask(context.Background(), 5, " ")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, calls, h.remote.TotalCalls())
}

func TestUpdateTask_RemoteFailure(t *testing.T) {
	h := loadedHarness(t)
	before := h.client.Tasks()
	h.remote.UpdateTaskErr = &service.StatusError{Code: 404, Message: "Todo with id '5' not found"}

	_, err := h.client.UpdateTask(context.Background(), 5, "x")
	var werr *RemoteWriteFailedError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, 5, werr.TaskID)
	assert.True(t, errors.Is(err, service.ErrNotFound))
	assert.Equal(t, before, h.client.Tasks())
}

func TestSetCompleted_ChangesOnlyCompleted(t *testing.T) {
	h := loadedHarness(t)

	got, err := h.client.SetCompleted(context.Background(), 7, true)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	tasks := h.client.Tasks()
	assert.Equal(t, service.Task{ID: 7, Text: "c", Completed: true, OwnerID: 1}, tasks[2])

	_, err = h.client.SetCompleted(context.Background(), 7, false)
	require.NoError(t, err)
	assert.False(t, h.client.Tasks()[2].Completed)
}

func TestDeleteTask_RemovesAndKeepsOrder(t *testing.T) {
	h := loadedHarness(t)

	id, err := h.client.DeleteTask(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, id)
	assert.Equal(t, []int{1, 5, 9}, taskIDs(h.client.Tasks()))
}

func TestDeleteTask_RemoteFailure(t *testing.T) {
	h := loadedHarness(t)
	h.remote.DeleteTaskErr = &service.StatusError{Code: 401}

	_, err := h.client.DeleteTask(context.Background(), 7)
	var werr *RemoteWriteFailedError
	require.True(t, errors.As(err, &werr))
	assert.True(t, errors.Is(err, service.ErrUnauthorized))
	assert.Equal(t, []int{1, 5, 7, 9}, taskIDs(h.client.Tasks()))
}

func TestMutations_OfflineFailFast(t *testing.T) {
	h := loadedHarness(t)
	h.probe.offline.Store(true)
	calls := h.remote.TotalCalls()
	ctx := context.Background()

	_, err := h.client.CreateTask(ctx, "x")
	assert.True(t, errors.Is(err, ErrOffline))
	_, err = h.client.UpdateTask(ctx, 5, "x")
	assert.True(t, errors.Is(err, ErrOffline))
	_, err = h.client.SetCompleted(ctx, 5, false)
	assert.True(t, errors.Is(err, ErrOffline))
	_, err = h.client.DeleteTask(ctx, 5)
	assert.True(t, errors.Is(err, ErrOffline))

	var werr *RemoteWriteFailedError
	assert.True(t, errors.As(err, &werr))
	assert.Equal(t, calls, h.remote.TotalCalls())
	assert.Equal(t, []int{1, 5, 7, 9}, taskIDs(h.client.Tasks()))
}

func TestMutations_BeforeFirstLoad(t *testing.T) {
	h := newHarness(t)
	h.remote.AddTask(3, "a", false)

	// Patches on an unloaded collection do not mark it loaded.
	_, err := h.client.DeleteTask(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, h.client.Loaded())
}
