package store

import "github.com/iammorganparry/clive/apps/tasks/internal/models"

// TaskStore holds the ordered task collection.
//
// Lookups and mutations targeting an absent id are no-ops, not errors:
// Get and Update return nil, nil and ApplySuggestions returns false.
// Validation failures are returned as *models.ValidationError and leave
// the collection untouched.
type TaskStore interface {
	List() ([]models.Task, error)
	Get(id string) (*models.Task, error)
	Create(input models.TaskFormInput) (*models.Task, error)
	Update(id string, patch models.TaskPatch) (*models.Task, error)
	Delete(id string) error
	ApplySuggestions(id string, subtasks []string) (bool, error)
	Count() (int, error)
}

// newTask builds the task committed by Create. The input must already be
// validated.
func newTask(id string, in models.TaskFormInput) models.Task {
	status := in.Status
	if status == "" {
		status = models.TaskStatusPending
	}
	return models.Task{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		DueDate:     in.DueDate,
		Subtasks:    []string{},
	}
}

func cloneSubtasks(subtasks []string) []string {
	if subtasks == nil {
		return []string{}
	}
	return append([]string{}, subtasks...)
}
