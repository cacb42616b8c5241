package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultUndoWindow is how long a deleted task stays restorable.
const DefaultUndoWindow = 5000 * time.Millisecond

// LoadLimit is the page size used when loading the cache.
const LoadLimit = 100

// ErrNothingToUndo is returned by Undo when no delete is pending or the
// undo window has already elapsed.
var ErrNothingToUndo = errors.New("nothing to undo")

// Entry is the cache's view of a task: a simplified projection with a
// two-value status.
type Entry struct {
	ID          uuid.UUID
	Title       string
	Description string
	Status      string // StatusTodo or StatusDone
	Priority    string
	DueDate     *time.Time
	Tags        []string
	CreatedAt   time.Time
}

func entryFromTask(t *Task) Entry {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return Entry{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      toCacheStatus(t.Status),
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		Tags:        tags,
		CreatedAt:   t.CreatedAt,
	}
}

// pendingUndo is the single undo slot. The generation guards against a
// stale timer clearing a slot that was replaced by a later delete.
type pendingUndo struct {
	snapshot Entry
	timer    *time.Timer
	gen      uint64
}

// TaskCache is an in-memory, newest-first mirror of the caller's tasks.
// Every mutation is confirm-then-apply: the server is asked first and local
// state changes only after it confirms, so a failed call never leaves ghost
// state behind. Deletes park a snapshot in a single undo slot for
// DefaultUndoWindow; a second delete replaces the slot outright.
type TaskCache struct {
	client *Client
	window time.Duration

	mu      sync.Mutex
	tasks   []Entry
	loading bool
	lastErr error
	pending *pendingUndo
	undoGen uint64
}

// CacheOption customizes a TaskCache.
type CacheOption func(*TaskCache)

// WithUndoWindow overrides the undo validity window.
func WithUndoWindow(d time.Duration) CacheOption {
	return func(tc *TaskCache) { tc.window = d }
}

// NewTaskCache creates an empty cache backed by c. Call Load to populate it.
func NewTaskCache(c *Client, opts ...CacheOption) *TaskCache {
	tc := &TaskCache{
		client: c,
		window: DefaultUndoWindow,
	}
	for _, opt := range opts {
		opt(tc)
	}
	return tc
}

// Load fetches up to LoadLimit tasks, newest first, and replaces the local
// list. Concurrent loads are not deduplicated; the last response wins.
func (tc *TaskCache) Load(ctx context.Context) error {
	tc.mu.Lock()
	tc.loading = true
	tc.mu.Unlock()

	list, err := tc.client.ListTasks(ctx, ListOptions{
		SortBy: "createdAt",
		Order:  "desc",
		Limit:  LoadLimit,
	})

	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.loading = false
	if err != nil {
		tc.lastErr = err
		return err
	}

	entries := make([]Entry, 0, len(list.Tasks))
	for i := range list.Tasks {
		entries = append(entries, entryFromTask(&list.Tasks[i]))
	}
	tc.tasks = entries
	tc.lastErr = nil
	return nil
}

// Tasks returns a snapshot of the cached tasks, newest first.
func (tc *TaskCache) Tasks() []Entry {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	out := make([]Entry, len(tc.tasks))
	copy(out, tc.tasks)
	return out
}

// Loading reports whether a Load is in flight.
func (tc *TaskCache) Loading() bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.loading
}

// Err returns the error from the most recent failed operation, or nil if
// the last operation succeeded.
func (tc *TaskCache) Err() error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.lastErr
}

// Add creates a task on the server and, once confirmed, prepends it to the
// local list so ordering stays newest-first without a refetch.
func (tc *TaskCache) Add(ctx context.Context, title string, fields TaskCreate) (*Entry, error) {
	fields.Title = title

	task, err := tc.client.CreateTask(ctx, fields)
	if err != nil {
		tc.fail(err)
		return nil, err
	}

	entry := entryFromTask(task)
	tc.mu.Lock()
	tc.tasks = append([]Entry{entry}, tc.tasks...)
	tc.lastErr = nil
	tc.mu.Unlock()
	return &entry, nil
}

// Update applies a partial update and replaces the matching local entry
// with the server's authoritative record.
func (tc *TaskCache) Update(ctx context.Context, id uuid.UUID, update TaskUpdate) (*Entry, error) {
	task, err := tc.client.UpdateTask(ctx, id, update)
	if err != nil {
		tc.fail(err)
		return nil, err
	}

	entry := entryFromTask(task)
	tc.mu.Lock()
	for i := range tc.tasks {
		if tc.tasks[i].ID == id {
			tc.tasks[i] = entry
			break
		}
	}
	tc.lastErr = nil
	tc.mu.Unlock()
	return &entry, nil
}

// Delete removes a task on the server, then drops it locally and parks a
// snapshot in the undo slot. A pending undo from an earlier delete is
// discarded.
func (tc *TaskCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := tc.client.DeleteTask(ctx, id); err != nil {
		tc.fail(err)
		return err
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	var snapshot *Entry
	for i := range tc.tasks {
		if tc.tasks[i].ID == id {
			s := tc.tasks[i]
			snapshot = &s
			tc.tasks = append(tc.tasks[:i], tc.tasks[i+1:]...)
			break
		}
	}
	tc.lastErr = nil

	if snapshot == nil {
		// Deleted a task the cache never held; nothing to offer undo for.
		return nil
	}

	if tc.pending != nil {
		tc.pending.timer.Stop()
	}
	tc.undoGen++
	gen := tc.undoGen
	tc.pending = &pendingUndo{
		snapshot: *snapshot,
		gen:      gen,
		timer: time.AfterFunc(tc.window, func() {
			tc.expireUndo(gen)
		}),
	}
	return nil
}

// expireUndo clears the undo slot when the window elapses. The generation
// check makes expiry a no-op if the slot was already cleared or replaced.
func (tc *TaskCache) expireUndo(gen uint64) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.pending != nil && tc.pending.gen == gen {
		tc.pending = nil
	}
}

// PendingUndo returns the restorable snapshot, if any.
func (tc *TaskCache) PendingUndo() (Entry, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.pending == nil {
		return Entry{}, false
	}
	return tc.pending.snapshot, true
}

// Undo re-creates the pending deleted task. The slot is cleared before the
// re-creation is awaited: a failed re-create surfaces its error but does
// not make the snapshot restorable again. The re-created task gets a new
// ID and creation time.
func (tc *TaskCache) Undo(ctx context.Context) (*Entry, error) {
	tc.mu.Lock()
	if tc.pending == nil {
		tc.mu.Unlock()
		return nil, ErrNothingToUndo
	}
	snapshot := tc.pending.snapshot
	tc.pending.timer.Stop()
	tc.pending = nil
	tc.mu.Unlock()

	return tc.Add(ctx, snapshot.Title, TaskCreate{
		Description: snapshot.Description,
		Status:      toServerStatus(snapshot.Status),
		Priority:    snapshot.Priority,
		DueDate:     snapshot.DueDate,
		Tags:        snapshot.Tags,
	})
}

// DismissUndo drops the pending snapshot without restoring it. Dismissing
// when nothing is pending is a no-op.
func (tc *TaskCache) DismissUndo() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.pending != nil {
		tc.pending.timer.Stop()
		tc.pending = nil
	}
}

// ToggleStatus flips a cached task between todo and done by issuing an
// Update with the opposite status.
func (tc *TaskCache) ToggleStatus(ctx context.Context, id uuid.UUID) (*Entry, error) {
	tc.mu.Lock()
	var current *Entry
	for i := range tc.tasks {
		if tc.tasks[i].ID == id {
			current = &tc.tasks[i]
			break
		}
	}
	if current == nil {
		tc.mu.Unlock()
		return nil, &APIError{StatusCode: 404, Message: "Task not found"}
	}
	next := StatusDone
	if current.Status == StatusDone {
		next = StatusTodo
	}
	tc.mu.Unlock()

	serverStatus := toServerStatus(next)
	return tc.Update(ctx, id, TaskUpdate{Status: &serverStatus})
}

func (tc *TaskCache) fail(err error) {
	tc.mu.Lock()
	tc.lastErr = err
	tc.mu.Unlock()
}
