package board

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iammorganparry/clive/apps/tasks/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrDialogClosed    = errors.New("dialog is not open")
)

// Session holds the dialog state of one interaction session: the add
// dialog with its draft and the edit dialog with its working copy. The
// two dialogs are independent.
type Session struct {
	ID    string
	board *Board

	mu       sync.Mutex
	addOpen  bool
	editOpen bool
	draft    models.TaskFormInput
	selected *models.Task
}

func (s *Session) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := models.SessionState{
		ID:       s.ID,
		AddOpen:  s.addOpen,
		EditOpen: s.editOpen,
		Draft:    s.draft,
	}
	if s.selected != nil {
		sel := s.selected.Clone()
		state.Selected = &sel
	}
	return state
}

// OpenAdd resets the draft to a pending task due today and opens the add
// dialog.
func (s *Session) OpenAdd(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = models.NewTaskFormInput(now)
	s.addOpen = true
}

func (s *Session) SetDraft(in models.TaskFormInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.addOpen {
		return ErrDialogClosed
	}
	s.draft = in
	return nil
}

// SubmitAdd creates a task from the draft. On a validation error the
// dialog stays open with the draft intact.
func (s *Session) SubmitAdd() (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.addOpen {
		return nil, ErrDialogClosed
	}

	task, err := s.board.CreateTask(s.draft)
	if err != nil {
		return nil, err
	}
	s.addOpen = false
	s.draft = models.TaskFormInput{}
	return task, nil
}

func (s *Session) CancelAdd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addOpen = false
	s.draft = models.TaskFormInput{}
}

// OpenEdit captures a working copy of the task and opens the edit dialog.
func (s *Session) OpenEdit(id string) error {
	task, err := s.board.store.Get(id)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrTaskNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	copied := task.Clone()
	s.selected = &copied
	s.editOpen = true
	return nil
}

// SetSelected edits the working copy. Nothing is validated until submit.
func (s *Session) SetSelected(patch models.TaskPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editOpen || s.selected == nil {
		return ErrDialogClosed
	}

	if patch.Title != nil {
		s.selected.Title = *patch.Title
	}
	if patch.Description != nil {
		s.selected.Description = *patch.Description
	}
	if patch.Status != nil {
		s.selected.Status = *patch.Status
	}
	if patch.DueDate != nil {
		s.selected.DueDate = *patch.DueDate
	}
	return nil
}

// SubmitEdit commits the working copy's title, description, status and
// due date. Subtasks on the stored task are left alone.
func (s *Session) SubmitEdit() (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editOpen || s.selected == nil {
		return nil, ErrDialogClosed
	}

	task, err := s.board.UpdateTask(s.selected.ID, models.PatchFrom(*s.selected))
	if err != nil && !errors.Is(err, ErrTaskNotFound) {
		return nil, err
	}
	// A task deleted while the dialog was open closes the dialog too.
	s.closeEdit()
	return task, err
}

func (s *Session) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeEdit()
}

func (s *Session) closeEdit() {
	s.editOpen = false
	s.selected = nil
}

// SessionRegistry holds live sessions keyed by id. Sessions are never
// persisted.
type SessionRegistry struct {
	board *Board

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionRegistry(b *Board) *SessionRegistry {
	return &SessionRegistry{board: b, sessions: make(map[string]*Session)}
}

func (r *SessionRegistry) Create() *Session {
	s := &Session{ID: uuid.New().String(), board: r.board}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session, or nil if it does not exist.
func (r *SessionRegistry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

func (r *SessionRegistry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
