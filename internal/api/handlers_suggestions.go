package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/xeipuuv/gojsonschema"

	"github.com/iammorganparry/clive/apps/tasks/internal/models"
	"github.com/iammorganparry/clive/apps/tasks/internal/suggest"
)

const suggestRequestSchemaJSON = `{
  "type": "object",
  "properties": {
    "taskTitle": {"type": "string", "pattern": "\\S"},
    "taskDescription": {"type": "string"}
  },
  "required": ["taskTitle"]
}`

var suggestRequestSchema = gojsonschema.NewStringLoader(suggestRequestSchemaJSON)

// Suggester is the suggestion client as seen by the endpoint.
type Suggester interface {
	Suggest(ctx context.Context, title, description string) ([]string, error)
}

type SuggestionHandler struct {
	suggester Suggester
	logger    *slog.Logger
}

func NewSuggestionHandler(s Suggester, logger *slog.Logger) *SuggestionHandler {
	return &SuggestionHandler{suggester: s, logger: logger}
}

// Suggest handles POST /api/suggestions
func (h *SuggestionHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := gojsonschema.Validate(suggestRequestSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !result.Valid() {
		writeError(w, http.StatusBadRequest, schemaMessage(result.Errors()))
		return
	}

	var req models.SuggestRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	subtasks, err := h.suggester.Suggest(r.Context(), req.TaskTitle, req.TaskDescription)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Message)
			return
		}

		h.logger.Error("suggestion request failed", "error", err, "request_id", GetRequestID(r))
		msg := suggest.FailureMessage
		var serr *suggest.Error
		if errors.As(err, &serr) {
			msg = serr.Error()
		}
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	writeJSON(w, http.StatusOK, models.SuggestResponse{Subtasks: subtasks})
}

// schemaMessage reports a missing or blank title the same way the task
// store does; any other violation is described by the schema library.
func schemaMessage(errs []gojsonschema.ResultError) string {
	for _, e := range errs {
		if e.Field() == "taskTitle" || e.Type() == "required" {
			return models.ErrTitleRequired.Message
		}
	}
	if len(errs) > 0 {
		return "invalid request body: " + errs[0].String()
	}
	return "invalid request body"
}
