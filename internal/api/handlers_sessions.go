package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/clive/apps/tasks/internal/board"
	"github.com/iammorganparry/clive/apps/tasks/internal/models"
)

// SessionHandler exposes the add and edit dialogs of a session.
type SessionHandler struct {
	registry *board.SessionRegistry
	now      func() time.Time
}

func NewSessionHandler(registry *board.SessionRegistry) *SessionHandler {
	return &SessionHandler{registry: registry, now: time.Now}
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) *board.Session {
	s := h.registry.Get(chi.URLParam(r, "sid"))
	if s == nil {
		writeBoardError(w, board.ErrSessionNotFound)
	}
	return s
}

// Create handles POST /api/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.registry.Create()
	writeJSON(w, http.StatusCreated, s.State())
}

// Get handles GET /api/sessions/{sid}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if s := h.session(w, r); s != nil {
		writeJSON(w, http.StatusOK, s.State())
	}
}

// Delete handles DELETE /api/sessions/{sid}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.registry.Delete(chi.URLParam(r, "sid"))
	w.WriteHeader(http.StatusNoContent)
}

// OpenAdd handles POST /api/sessions/{sid}/add/open
func (h *SessionHandler) OpenAdd(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	s.OpenAdd(h.now())
	writeJSON(w, http.StatusOK, s.State())
}

// SetDraft handles PUT /api/sessions/{sid}/add/draft
func (h *SessionHandler) SetDraft(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var in models.TaskFormInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.SetDraft(in); err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

// SubmitAdd handles POST /api/sessions/{sid}/add/submit
func (h *SessionHandler) SubmitAdd(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	task, err := s.SubmitAdd()
	if err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// CancelAdd handles POST /api/sessions/{sid}/add/cancel
func (h *SessionHandler) CancelAdd(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	s.CancelAdd()
	writeJSON(w, http.StatusOK, s.State())
}

// OpenEdit handles POST /api/sessions/{sid}/edit/open
func (h *SessionHandler) OpenEdit(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var req models.EditOpenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.TaskID == "" {
		writeError(w, http.StatusBadRequest, "taskId is required")
		return
	}
	if err := s.OpenEdit(req.TaskID); err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

// SetSelected handles PUT /api/sessions/{sid}/edit/draft
func (h *SessionHandler) SetSelected(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	var patch models.TaskPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.SetSelected(patch); err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

// SubmitEdit handles POST /api/sessions/{sid}/edit/submit
func (h *SessionHandler) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	task, err := s.SubmitEdit()
	if err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// CancelEdit handles POST /api/sessions/{sid}/edit/cancel
func (h *SessionHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	s.CancelEdit()
	writeJSON(w, http.StatusOK, s.State())
}
