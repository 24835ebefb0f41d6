package api

import (
	"net/http"

	"github.com/iammorganparry/clive/apps/tasks/internal/llm"
	"github.com/iammorganparry/clive/apps/tasks/internal/models"
	"github.com/iammorganparry/clive/apps/tasks/internal/store"
)

type HealthHandler struct {
	store store.TaskStore
	gen   llm.Generator
}

// NewHealthHandler creates a health handler. gen may be nil, in which case
// the generator is reported as not configured.
func NewHealthHandler(s store.TaskStore, gen llm.Generator) *HealthHandler {
	return &HealthHandler{store: s, gen: gen}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status: "ok",
	}

	// Check generator
	switch checker, ok := h.gen.(llm.HealthChecker); {
	case h.gen == nil:
		resp.Generator = models.ServiceCheck{Status: "error", Message: "not configured"}
		resp.Status = "degraded"
	case !ok:
		resp.Generator = models.ServiceCheck{Status: "ok", Message: h.gen.ID()}
	default:
		if err := checker.HealthCheck(r.Context()); err != nil {
			resp.Generator = models.ServiceCheck{Status: "error", Message: err.Error()}
			resp.Status = "degraded"
		} else {
			resp.Generator = models.ServiceCheck{Status: "ok", Message: h.gen.ID()}
		}
	}

	// Check store
	count, err := h.store.Count()
	if err != nil {
		resp.Store = models.ServiceCheck{Status: "error", Message: err.Error()}
		resp.Status = "degraded"
	} else {
		resp.Store = models.ServiceCheck{Status: "ok"}
		resp.TaskCount = count
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
