package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/clive/apps/tasks/internal/board"
	"github.com/iammorganparry/clive/apps/tasks/internal/models"
)

type TaskHandler struct {
	board  *board.Board
	logger *slog.Logger
}

func NewTaskHandler(b *board.Board, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{board: b, logger: logger}
}

// List handles GET /api/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.board.Tasks()
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.TaskFormInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	task, err := h.board.CreateTask(in)
	if err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// Get handles GET /api/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.board.Task(chi.URLParam(r, "id"))
	if err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Update handles PATCH /api/tasks/{id}. Subtasks in the body are ignored.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	task, err := h.board.UpdateTask(chi.URLParam(r, "id"), patch)
	if err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.board.DeleteTask(chi.URLParam(r, "id")); err != nil {
		h.logger.Error("delete task", "error", err)
		writeBoardError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequestSuggestions handles POST /api/tasks/{id}/suggestions. The reply
// is sent before the suggestion arrives.
func (h *TaskHandler) RequestSuggestions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.board.RequestSuggestions(r.Context(), id); err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, models.DispatchResponse{TaskID: id, Pending: true})
}

// Snapshot handles GET /api/board
func (h *TaskHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.board.Snapshot()
	if err != nil {
		h.logger.Error("board snapshot", "error", err)
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
