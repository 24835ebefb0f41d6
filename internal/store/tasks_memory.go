package store

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/iammorganparry/clive/apps/tasks/internal/models"
)

// MemoryTaskStore keeps tasks in a slice for the lifetime of the process.
type MemoryTaskStore struct {
	mu    sync.RWMutex
	tasks []models.Task
}

func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{tasks: []models.Task{}}
}

// List returns copies of all tasks in collection order.
func (s *MemoryTaskStore) List() ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out, nil
}

// Get returns a copy of the task with the given id.
func (s *MemoryTaskStore) Get(id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	t := s.tasks[i].Clone()
	return &t, nil
}

// Create validates the input and appends a new task.
func (s *MemoryTaskStore) Create(in models.TaskFormInput) (*models.Task, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	for s.indexOf(id) >= 0 {
		id = uuid.New().String()
	}
	t := newTask(id, in)
	s.tasks = append(s.tasks, t)

	out := t.Clone()
	return &out, nil
}

// Update replaces the task in place. The stored task is unchanged when the
// patch fails validation.
func (s *MemoryTaskStore) Update(id string, patch models.TaskPatch) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	updated, err := patch.Apply(s.tasks[i])
	if err != nil {
		return nil, err
	}
	s.tasks[i] = updated

	out := updated.Clone()
	return &out, nil
}

// Delete removes the task, preserving the order of the rest.
func (s *MemoryTaskStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.tasks = slices.Delete(s.tasks, i, i+1)
	}
	return nil
}

// ApplySuggestions replaces the subtasks of the task wholesale.
func (s *MemoryTaskStore) ApplySuggestions(id string, subtasks []string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.tasks[i].Subtasks = cloneSubtasks(subtasks)
	return true, nil
}

func (s *MemoryTaskStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks), nil
}

// indexOf must be called with mu held.
func (s *MemoryTaskStore) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t models.Task) bool { return t.ID == id })
}
