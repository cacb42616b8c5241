package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskCache_Load(t *testing.T) {
	fake, c := newFakeAPI(t)
	fake.seed("First")
	fake.seed("Second")
	fake.seed("Third")

	cache := NewTaskCache(c)
	require.NoError(t, cache.Load(context.Background()))

	tasks := cache.Tasks()
	require.Len(t, tasks, 3)
	// Newest first.
	assert.Equal(t, "Third", tasks[0].Title)
	assert.Equal(t, "First", tasks[2].Title)
	assert.Equal(t, StatusTodo, tasks[0].Status)
	assert.False(t, cache.Loading())
	assert.NoError(t, cache.Err())
}

func TestTaskCache_AddPrepends(t *testing.T) {
	fake, c := newFakeAPI(t)
	fake.seed("Existing")

	cache := NewTaskCache(c)
	require.NoError(t, cache.Load(context.Background()))

	entry, err := cache.Add(context.Background(), "Fresh", TaskCreate{Priority: "high"})
	require.NoError(t, err)
	assert.Equal(t, "Fresh", entry.Title)
	assert.Equal(t, "high", entry.Priority)

	tasks := cache.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "Fresh", tasks[0].Title)
	assert.Equal(t, 2, fake.count())
}

func TestTaskCache_AddFailureLeavesStateUntouched(t *testing.T) {
	fake, c := newFakeAPI(t)
	fake.seed("Existing")

	cache := NewTaskCache(c)
	require.NoError(t, cache.Load(context.Background()))

	fake.failNextCreate = true
	_, err := cache.Add(context.Background(), "Doomed", TaskCreate{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)

	assert.Len(t, cache.Tasks(), 1)
	assert.Error(t, cache.Err())

	// The next success clears the recorded error.
	_, err = cache.Add(context.Background(), "Fine", TaskCreate{})
	require.NoError(t, err)
	assert.NoError(t, cache.Err())
}

func TestTaskCache_UpdateReplacesEntry(t *testing.T) {
	fake, c := newFakeAPI(t)
	seeded := fake.seed("Before")

	cache := NewTaskCache(c)
	require.NoError(t, cache.Load(context.Background()))

	title := "After"
	entry, err := cache.Update(context.Background(), seeded.ID, TaskUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "After", entry.Title)

	tasks := cache.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "After", tasks[0].Title)
	assert.Equal(t, seeded.ID, tasks[0].ID)
}

func TestTaskCache_DeleteThenUndo(t *testing.T) {
	fake, c := newFakeAPI(t)
	seeded := fake.seed("Restorable")

	cache := NewTaskCache(c, WithUndoWindow(time.Minute))
	require.NoError(t, cache.Load(context.Background()))

	require.NoError(t, cache.Delete(context.Background(), seeded.ID))
	assert.Empty(t, cache.Tasks())
	assert.Equal(t, 0, fake.count())

	snapshot, ok := cache.PendingUndo()
	require.True(t, ok)
	assert.Equal(t, "Restorable", snapshot.Title)

	entry, err := cache.Undo(context.Background())
	require.NoError(t, err)

	// Undo is a re-creation: same content, new identity.
	assert.Equal(t, "Restorable", entry.Title)
	assert.NotEqual(t, seeded.ID, entry.ID)
	assert.Equal(t, 1, fake.count())

	_, ok = cache.PendingUndo()
	assert.False(t, ok)

	// A second undo has nothing left to restore.
	_, err = cache.Undo(context.Background())
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestTaskCache_UndoWindowExpires(t *testing.T) {
	fake, c := newFakeAPI(t)
	seeded := fake.seed("Gone for good")

	cache := NewTaskCache(c, WithUndoWindow(20*time.Millisecond))
	require.NoError(t, cache.Load(context.Background()))
	require.NoError(t, cache.Delete(context.Background(), seeded.ID))

	require.Eventually(t, func() bool {
		_, ok := cache.PendingUndo()
		return !ok
	}, time.Second, 5*time.Millisecond)

	_, err := cache.Undo(context.Background())
	assert.ErrorIs(t, err, ErrNothingToUndo)
	assert.Equal(t, 0, fake.count())
}

func TestTaskCache_SecondDeleteReplacesSlot(t *testing.T) {
	fake, c := newFakeAPI(t)
	first := fake.seed("First casualty")
	second := fake.seed("Second casualty")

	cache := NewTaskCache(c, WithUndoWindow(time.Minute))
	require.NoError(t, cache.Load(context.Background()))

	require.NoError(t, cache.Delete(context.Background(), first.ID))
	require.NoError(t, cache.Delete(context.Background(), second.ID))

	snapshot, ok := cache.PendingUndo()
	require.True(t, ok)
	assert.Equal(t, "Second casualty", snapshot.Title)

	entry, err := cache.Undo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Second casualty", entry.Title)

	// Only the second delete was restorable; the first is gone.
	assert.Equal(t, 1, fake.count())
}

func TestTaskCache_StaleTimerCannotClearReplacedSlot(t *testing.T) {
	fake, c := newFakeAPI(t)
	first := fake.seed("First")
	second := fake.seed("Second")

	cache := NewTaskCache(c, WithUndoWindow(time.Minute))
	require.NoError(t, cache.Load(context.Background()))

	require.NoError(t, cache.Delete(context.Background(), first.ID))
	staleGen := cache.undoGen

	require.NoError(t, cache.Delete(context.Background(), second.ID))

	// Simulate the first delete's timer firing after its slot was replaced.
	cache.expireUndo(staleGen)

	snapshot, ok := cache.PendingUndo()
	require.True(t, ok)
	assert.Equal(t, "Second", snapshot.Title)
}

func TestTaskCache_DismissUndo(t *testing.T) {
	fake, c := newFakeAPI(t)
	seeded := fake.seed("Dismissed")

	cache := NewTaskCache(c, WithUndoWindow(time.Minute))
	require.NoError(t, cache.Load(context.Background()))
	require.NoError(t, cache.Delete(context.Background(), seeded.ID))

	cache.DismissUndo()
	_, ok := cache.PendingUndo()
	assert.False(t, ok)

	// Idempotent.
	cache.DismissUndo()

	_, err := cache.Undo(context.Background())
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestTaskCache_ToggleStatus(t *testing.T) {
	fake, c := newFakeAPI(t)
	seeded := fake.seed("Flip me")

	cache := NewTaskCache(c)
	require.NoError(t, cache.Load(context.Background()))

	entry, err := cache.ToggleStatus(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, entry.Status)

	serverTask, ok := fake.get(seeded.ID)
	require.True(t, ok)
	assert.Equal(t, "completed", serverTask.Status)
	assert.True(t, serverTask.Completed)

	entry, err = cache.ToggleStatus(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusTodo, entry.Status)

	serverTask, _ = fake.get(seeded.ID)
	assert.Equal(t, "pending", serverTask.Status)
}

func TestTaskCache_ToggleUnknownTask(t *testing.T) {
	_, c := newFakeAPI(t)
	cache := NewTaskCache(c)

	_, err := cache.ToggleStatus(context.Background(), uuid.New())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)
}
