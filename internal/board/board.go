// Package board is the task interaction surface: it combines the task
// store, the subtask suggester and the per-task loading set, and reports
// outcomes as notifications.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/iammorganparry/clive/apps/tasks/internal/models"
	"github.com/iammorganparry/clive/apps/tasks/internal/store"
)

// User-visible notification messages.
const (
	MsgTaskAdded         = "Task added successfully"
	MsgTaskUpdated       = "Task updated successfully"
	MsgTaskDeleted       = "Task deleted successfully"
	MsgTitleRequired     = "Task title is required"
	MsgSubtasksGenerated = "Subtasks generated successfully"
	MsgSubtasksFailed    = "Failed to generate subtasks"
)

var ErrTaskNotFound = errors.New("task not found")

// Suggester produces subtasks for a task.
type Suggester interface {
	Suggest(ctx context.Context, title, description string) ([]string, error)
}

type Board struct {
	store     store.TaskStore
	suggester Suggester
	hub       *Hub
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	machines map[string]*suggestionMachine
	inflight sync.WaitGroup
}

func New(s store.TaskStore, suggester Suggester, hub *Hub, logger *slog.Logger) *Board {
	if hub == nil {
		hub = NewHub(DefaultRecentLimit)
	}
	return &Board{
		store:     s,
		suggester: suggester,
		hub:       hub,
		logger:    logger,
		now:       time.Now,
		machines:  make(map[string]*suggestionMachine),
	}
}

func (b *Board) Hub() *Hub {
	return b.hub
}

// Tasks lists every task in display order with its busy flag.
func (b *Board) Tasks() ([]models.BoardTask, error) {
	tasks, err := b.store.List()
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	now := b.now()
	out := make([]models.BoardTask, len(tasks))
	for i, t := range tasks {
		out[i] = models.BoardTask{
			Task:     t,
			Pending:  b.IsLoading(t.ID),
			DueLabel: t.DueLabel(now),
		}
	}
	return out, nil
}

// Task returns a single task, or ErrTaskNotFound.
func (b *Board) Task(id string) (*models.BoardTask, error) {
	t, err := b.store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}
	return &models.BoardTask{Task: *t, Pending: b.IsLoading(id), DueLabel: t.DueLabel(b.now())}, nil
}

func (b *Board) CreateTask(in models.TaskFormInput) (*models.Task, error) {
	task, err := b.store.Create(in)
	if err != nil {
		b.notifyFailure(err, "")
		return nil, err
	}
	b.notify(models.NotificationSuccess, MsgTaskAdded, task.ID)
	return task, nil
}

func (b *Board) UpdateTask(id string, patch models.TaskPatch) (*models.Task, error) {
	task, err := b.store.Update(id, patch)
	if err != nil {
		b.notifyFailure(err, id)
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	b.notify(models.NotificationSuccess, MsgTaskUpdated, id)
	return task, nil
}

// DeleteTask removes the task. Deleting an absent id is not an error.
// An outstanding suggestion request for id keeps running; its result is
// discarded when it arrives.
func (b *Board) DeleteTask(id string) error {
	if err := b.store.Delete(id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	b.notify(models.NotificationSuccess, MsgTaskDeleted, id)
	return nil
}

// RequestSuggestions puts id in the loading set and asks the suggester for
// subtasks on a separate goroutine. The caller's cancellation does not
// reach the request.
func (b *Board) RequestSuggestions(ctx context.Context, id string) error {
	task, err := b.store.Get(id)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return ErrTaskNotFound
	}

	if err := b.markPending(id); err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		b.runSuggestion(ctx, *task)
	}()
	return nil
}

// runSuggestion writes the reply before the loading entry is cleared, so a
// task never reads as settled while still holding its old subtasks.
func (b *Board) runSuggestion(ctx context.Context, task models.Task) {
	defer b.settle(task.ID)

	subtasks, err := b.suggester.Suggest(ctx, task.Title, task.Description)

	if err != nil {
		b.logger.Warn("suggestion request failed", "task_id", task.ID, "error", err)
		b.notify(models.NotificationError, MsgSubtasksFailed, task.ID)
		return
	}

	applied, err := b.store.ApplySuggestions(task.ID, subtasks)
	if err != nil {
		b.logger.Error("apply suggestions failed", "task_id", task.ID, "error", err)
		b.notify(models.NotificationError, MsgSubtasksFailed, task.ID)
		return
	}
	if !applied {
		b.logger.Debug("suggestions discarded for deleted task", "task_id", task.ID)
		return
	}
	b.notify(models.NotificationSuccess, MsgSubtasksGenerated, task.ID)
}

func (b *Board) markPending(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, ok := b.machines[id]
	if !ok {
		var err error
		m, err = newSuggestionMachine(id)
		if err != nil {
			return err
		}
		b.machines[id] = m
	}
	m.send(eventRequest)
	return nil
}

func (b *Board) settle(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, ok := b.machines[id]
	if !ok {
		return
	}
	m.send(eventSettle)
	if !m.Pending() {
		delete(b.machines, id)
	}
}

// Loading returns the ids awaiting a suggestion reply, sorted.
func (b *Board) Loading() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := make([]string, 0, len(b.machines))
	for id, m := range b.machines {
		if m.Pending() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (b *Board) IsLoading(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.machines[id]
	return ok && m.Pending()
}

// Wait blocks until every dispatched suggestion request has settled.
func (b *Board) Wait() {
	b.inflight.Wait()
}

func (b *Board) Snapshot() (*models.BoardSnapshot, error) {
	tasks, err := b.Tasks()
	if err != nil {
		return nil, err
	}
	return &models.BoardSnapshot{
		Tasks:         tasks,
		Loading:       b.Loading(),
		Notifications: b.hub.Recent(),
	}, nil
}

func (b *Board) notify(kind models.NotificationKind, msg, taskID string) {
	b.hub.Publish(models.Notification{Kind: kind, Message: msg, TaskID: taskID})
}

func (b *Board) notifyFailure(err error, taskID string) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		msg := verr.Message
		if verr.Field == "title" {
			msg = MsgTitleRequired
		}
		b.notify(models.NotificationError, msg, taskID)
		return
	}
	b.logger.Error("task mutation failed", "task_id", taskID, "error", err)
}
