package models

import "time"

// SuggestRequest is the payload for POST /api/suggestions.
type SuggestRequest struct {
	TaskTitle       string `json:"taskTitle"`
	TaskDescription string `json:"taskDescription,omitempty"`
}

// SuggestResponse is returned from POST /api/suggestions.
type SuggestResponse struct {
	Subtasks []string `json:"subtasks"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// BoardTask is a task as shown on the board, with its busy indicator.
type BoardTask struct {
	Task
	Pending  bool   `json:"pending"`
	DueLabel string `json:"dueLabel"`
}

// NotificationKind selects how a notification is presented.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
	NotificationInfo    NotificationKind = "info"
)

// Notification is a short user-visible message (a toast in the browser).
type Notification struct {
	ID      string           `json:"id"`
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
	TaskID  string           `json:"taskId,omitempty"`
	At      time.Time        `json:"at"`
}

// BoardSnapshot is returned from GET /api/board.
type BoardSnapshot struct {
	Tasks         []BoardTask    `json:"tasks"`
	Loading       []string       `json:"loading"`
	Notifications []Notification `json:"notifications"`
}

// DispatchResponse is returned from POST /api/tasks/{id}/suggestions.
type DispatchResponse struct {
	TaskID  string `json:"taskId"`
	Pending bool   `json:"pending"`
}

// SessionState is the dialog state of one interaction session.
type SessionState struct {
	ID       string        `json:"id"`
	AddOpen  bool          `json:"addOpen"`
	EditOpen bool          `json:"editOpen"`
	Draft    TaskFormInput `json:"draft"`
	Selected *Task         `json:"selected,omitempty"`
}

// EditOpenRequest is the payload for POST /api/sessions/{sid}/edit/open.
type EditOpenRequest struct {
	TaskID string `json:"taskId"`
}

// HealthResponse is returned from GET /health.
type HealthResponse struct {
	Status    string       `json:"status"`
	Store     ServiceCheck `json:"store"`
	Generator ServiceCheck `json:"generator"`
	TaskCount int          `json:"taskCount"`
}

type ServiceCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
