package models

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used for due dates.
const DateLayout = "2006-01-02"

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) IsValid() bool {
	return s == TaskStatusPending || s == TaskStatusInProgress || s == TaskStatusCompleted
}

// Task is one user-visible unit of work.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	DueDate     string     `json:"dueDate"`
	Subtasks    []string   `json:"subtasks"`
}

// Clone returns a copy of the task that shares no slices with t.
func (t Task) Clone() Task {
	out := t
	out.Subtasks = append([]string{}, t.Subtasks...)
	return out
}

// DueLabel returns "Due" when the due date lies before now's calendar day
// and "Deadline" otherwise, including for empty or unparsable dates.
func (t Task) DueLabel(now time.Time) string {
	if t.DueDate == "" {
		return "Deadline"
	}
	due, err := time.ParseInLocation(DateLayout, t.DueDate, now.Location())
	if err != nil {
		return "Deadline"
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if due.Before(today) {
		return "Due"
	}
	return "Deadline"
}

// TaskFormInput is the transient draft behind the add dialog.
type TaskFormInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	DueDate     string     `json:"dueDate"`
}

// NewTaskFormInput returns the reset draft: empty text, pending, due today.
func NewTaskFormInput(now time.Time) TaskFormInput {
	return TaskFormInput{
		Status:  TaskStatusPending,
		DueDate: now.Format(DateLayout),
	}
}

// Validate checks the draft before it is committed. An empty status is
// accepted and later defaults to pending.
func (in TaskFormInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrTitleRequired
	}
	if in.Status != "" && !in.Status.IsValid() {
		return invalidStatus(in.Status)
	}
	return nil
}

// TaskPatch is a partial update. A nil field means "unchanged".
// Id and subtasks are deliberately absent: edits never write them.
type TaskPatch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
	DueDate     *string     `json:"dueDate,omitempty"`
}

// Apply returns t with the patch applied, or a validation error if the
// result would be invalid. t itself is never modified.
func (p TaskPatch) Apply(t Task) (Task, error) {
	out := t.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.DueDate != nil {
		out.DueDate = *p.DueDate
	}

	if strings.TrimSpace(out.Title) == "" {
		return t, ErrTitleRequired
	}
	if !out.Status.IsValid() {
		return t, invalidStatus(out.Status)
	}
	return out, nil
}

// PatchFrom builds the patch that turns a stored task into the edited copy.
func PatchFrom(edited Task) TaskPatch {
	return TaskPatch{
		Title:       &edited.Title,
		Description: &edited.Description,
		Status:      &edited.Status,
		DueDate:     &edited.DueDate,
	}
}
