package board

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iammorganparry/clive/apps/tasks/internal/models"
	"github.com/iammorganparry/clive/apps/tasks/internal/store"
	"github.com/iammorganparry/clive/apps/tasks/internal/suggest"
)

type reply struct {
	subtasks []string
	err      error
}

// gatedSuggester blocks each call until a reply is sent for its title.
type gatedSuggester struct {
	mu      sync.Mutex
	gates   map[string]chan reply
	started chan string
}

func newGatedSuggester() *gatedSuggester {
	return &gatedSuggester{gates: map[string]chan reply{}, started: make(chan string, 16)}
}

func (g *gatedSuggester) gate(title string) chan reply {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[title]
	if !ok {
		ch = make(chan reply, 4)
		g.gates[title] = ch
	}
	return ch
}

func (g *gatedSuggester) Suggest(ctx context.Context, title, _ string) ([]string, error) {
	g.started <- title
	select {
	case r := <-g.gate(title):
		return r.subtasks, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type instantSuggester struct {
	subtasks []string
	err      error
}

func (s instantSuggester) Suggest(context.Context, string, string) ([]string, error) {
	return s.subtasks, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBoard(t *testing.T, s Suggester) *Board {
	t.Helper()
	return New(store.NewMemoryTaskStore(), s, NewHub(DefaultRecentLimit), discardLogger())
}

func mustCreate(t *testing.T, b *Board, title string) *models.Task {
	t.Helper()
	task, err := b.CreateTask(models.TaskFormInput{Title: title})
	require.NoError(t, err)
	return task
}

func lastMessage(t *testing.T, b *Board) models.Notification {
	t.Helper()
	recent := b.Hub().Recent()
	require.NotEmpty(t, recent)
	return recent[len(recent)-1]
}

func TestBoard_CreateUpdateDeleteNotify(t *testing.T) {
	b := newTestBoard(t, instantSuggester{})

	task := mustCreate(t, b, "Write report")
	assert.Equal(t, MsgTaskAdded, lastMessage(t, b).Message)
	assert.Equal(t, task.ID, lastMessage(t, b).TaskID)

	_, err := b.CreateTask(models.TaskFormInput{Title: "  "})
	assert.ErrorIs(t, err, models.ErrTitleRequired)
	n := lastMessage(t, b)
	assert.Equal(t, models.NotificationError, n.Kind)
	assert.Equal(t, MsgTitleRequired, n.Message)

	title := "Write final report"
	updated, err := b.UpdateTask(task.ID, models.TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Write final report", updated.Title)
	assert.Equal(t, MsgTaskUpdated, lastMessage(t, b).Message)

	_, err = b.UpdateTask("missing", models.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	require.NoError(t, b.DeleteTask(task.ID))
	assert.Equal(t, MsgTaskDeleted, lastMessage(t, b).Message)
	require.NoError(t, b.DeleteTask(task.ID))

	tasks, err := b.Tasks()
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestBoard_TaskDueLabel(t *testing.T) {
	b := newTestBoard(t, instantSuggester{})
	b.now = func() time.Time { return time.Date(2025, 7, 3, 15, 0, 0, 0, time.Local) }

	past, err := b.CreateTask(models.TaskFormInput{Title: "Past", DueDate: "2025-07-01"})
	require.NoError(t, err)
	today, err := b.CreateTask(models.TaskFormInput{Title: "Today", DueDate: "2025-07-03"})
	require.NoError(t, err)

	got, err := b.Task(past.ID)
	require.NoError(t, err)
	assert.Equal(t, "Due", got.DueLabel)

	got, err = b.Task(today.ID)
	require.NoError(t, err)
	assert.Equal(t, "Deadline", got.DueLabel)

	_, err = b.Task("missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestBoard_RequestSuggestions_Success(t *testing.T) {
	gen := newGatedSuggester()
	b := newTestBoard(t, gen)
	task := mustCreate(t, b, "Plan trip")

	require.NoError(t, b.RequestSuggestions(context.Background(), task.ID))
	assert.Equal(t, "Plan trip", <-gen.started)
	assert.True(t, b.IsLoading(task.ID))
	assert.Equal(t, []string{task.ID}, b.Loading())

	tasks, err := b.Tasks()
	require.NoError(t, err)
	assert.True(t, tasks[0].Pending)

	gen.gate("Plan trip") <- reply{subtasks: []string{"Book flights", "Reserve hotel"}}
	b.Wait()

	assert.False(t, b.IsLoading(task.ID))
	assert.Empty(t, b.Loading())
	got, err := b.Task(task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Book flights", "Reserve hotel"}, got.Subtasks)
	assert.False(t, got.Pending)
	assert.Equal(t, MsgSubtasksGenerated, lastMessage(t, b).Message)
}

// observingStore records what the board reports at the moment subtasks
// are written.
type observingStore struct {
	*store.MemoryTaskStore
	board   *Board
	loading []bool
}

func (s *observingStore) ApplySuggestions(id string, subtasks []string) (bool, error) {
	s.loading = append(s.loading, s.board.IsLoading(id))
	return s.MemoryTaskStore.ApplySuggestions(id, subtasks)
}

func TestBoard_RequestSuggestions_LoadingClearsAfterApply(t *testing.T) {
	s := &observingStore{MemoryTaskStore: store.NewMemoryTaskStore()}
	b := New(s, instantSuggester{subtasks: []string{"Book flights"}}, nil, discardLogger())
	s.board = b
	task := mustCreate(t, b, "Plan trip")

	require.NoError(t, b.RequestSuggestions(context.Background(), task.ID))
	b.Wait()

	assert.Equal(t, []bool{true}, s.loading)
	assert.Empty(t, b.Loading())
	got, err := b.Task(task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Book flights"}, got.Subtasks)
}

func TestBoard_RequestSuggestions_FailureLeavesTaskUntouched(t *testing.T) {
	b := newTestBoard(t, instantSuggester{err: &suggest.Error{Kind: suggest.ErrUpstream, Cause: errors.New("boom")}})
	task := mustCreate(t, b, "Plan trip")
	_, err := b.store.ApplySuggestions(task.ID, []string{"Existing"})
	require.NoError(t, err)

	require.NoError(t, b.RequestSuggestions(context.Background(), task.ID))
	b.Wait()

	assert.Empty(t, b.Loading())
	got, err := b.Task(task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Existing"}, got.Subtasks)

	n := lastMessage(t, b)
	assert.Equal(t, models.NotificationError, n.Kind)
	assert.Equal(t, MsgSubtasksFailed, n.Message)
	assert.NotContains(t, n.Message, "boom")
}

func TestBoard_RequestSuggestions_MissingTask(t *testing.T) {
	b := newTestBoard(t, instantSuggester{})
	err := b.RequestSuggestions(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.Empty(t, b.Loading())
}

func TestBoard_RequestSuggestions_IgnoresCallerCancel(t *testing.T) {
	gen := newGatedSuggester()
	b := newTestBoard(t, gen)
	task := mustCreate(t, b, "Plan trip")

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, b.RequestSuggestions(ctx, task.ID))
	<-gen.started
	cancel()

	gen.gate("Plan trip") <- reply{subtasks: []string{"Pack bags"}}
	b.Wait()

	got, err := b.Task(task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pack bags"}, got.Subtasks)
}

func TestBoard_DeleteWhilePending(t *testing.T) {
	gen := newGatedSuggester()
	b := newTestBoard(t, gen)
	task := mustCreate(t, b, "Plan trip")
	other := mustCreate(t, b, "Other")

	require.NoError(t, b.RequestSuggestions(context.Background(), task.ID))
	<-gen.started
	require.NoError(t, b.DeleteTask(task.ID))
	before := len(b.Hub().Recent())

	gen.gate("Plan trip") <- reply{subtasks: []string{"Book flights"}}
	b.Wait()

	assert.Empty(t, b.Loading())
	assert.Len(t, b.Hub().Recent(), before)
	tasks, err := b.Tasks()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, other.ID, tasks[0].ID)
	assert.Empty(t, tasks[0].Subtasks)
}

func TestBoard_IndependentRequestsSettleOutOfOrder(t *testing.T) {
	gen := newGatedSuggester()
	b := newTestBoard(t, gen)
	first := mustCreate(t, b, "First")
	second := mustCreate(t, b, "Second")

	require.NoError(t, b.RequestSuggestions(context.Background(), first.ID))
	require.NoError(t, b.RequestSuggestions(context.Background(), second.ID))
	<-gen.started
	<-gen.started
	assert.ElementsMatch(t, []string{first.ID, second.ID}, b.Loading())

	gen.gate("Second") <- reply{err: &suggest.Error{Kind: suggest.ErrEmptyResponse}}
	require.Eventually(t, func() bool { return !b.IsLoading(second.ID) }, time.Second, time.Millisecond)
	assert.True(t, b.IsLoading(first.ID))

	gen.gate("First") <- reply{subtasks: []string{"Draft outline"}}
	b.Wait()
	assert.Empty(t, b.Loading())

	got, err := b.Task(first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Draft outline"}, got.Subtasks)
	got, err = b.Task(second.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Subtasks)
}

func TestBoard_SecondRequestSameTask(t *testing.T) {
	gen := newGatedSuggester()
	b := newTestBoard(t, gen)
	task := mustCreate(t, b, "Plan trip")

	require.NoError(t, b.RequestSuggestions(context.Background(), task.ID))
	require.NoError(t, b.RequestSuggestions(context.Background(), task.ID))
	<-gen.started
	<-gen.started
	assert.Equal(t, []string{task.ID}, b.Loading())

	gate := gen.gate("Plan trip")
	gate <- reply{subtasks: []string{"One"}}
	require.Eventually(t, func() bool { return !b.IsLoading(task.ID) }, time.Second, time.Millisecond)

	gate <- reply{subtasks: []string{"Two"}}
	b.Wait()
	assert.Empty(t, b.Loading())

	got, err := b.Task(task.ID)
	require.NoError(t, err)
	assert.Len(t, got.Subtasks, 1)
}

func TestBoard_LoadingSetUnderConcurrency(t *testing.T) {
	b := newTestBoard(t, instantSuggester{subtasks: []string{"Step"}})

	var ids []string
	for i := 0; i < 30; i++ {
		ids = append(ids, mustCreate(t, b, "Task").ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, b.RequestSuggestions(context.Background(), id))
		}(id)
	}
	wg.Wait()
	b.Wait()

	assert.Empty(t, b.Loading())
	tasks, err := b.Tasks()
	require.NoError(t, err)
	for _, task := range tasks {
		assert.Equal(t, []string{"Step"}, task.Subtasks)
		assert.False(t, task.Pending)
	}
}

func TestBoard_Snapshot(t *testing.T) {
	b := newTestBoard(t, instantSuggester{})
	mustCreate(t, b, "A")

	snap, err := b.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Tasks, 1)
	assert.NotNil(t, snap.Loading)
	assert.Empty(t, snap.Loading)
	require.Len(t, snap.Notifications, 1)
	assert.Equal(t, MsgTaskAdded, snap.Notifications[0].Message)
}

func TestSuggestionMachine(t *testing.T) {
	m, err := newSuggestionMachine("t1")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, m.Current())

	m.send(eventSettle)
	assert.Equal(t, StateIdle, m.Current())

	m.send(eventRequest)
	assert.True(t, m.Pending())
	m.send(eventRequest)
	assert.True(t, m.Pending())

	m.send(eventSettle)
	assert.Equal(t, StateIdle, m.Current())
}
