package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/clive/apps/tasks/internal/board"
	"github.com/iammorganparry/clive/apps/tasks/internal/llm"
	"github.com/iammorganparry/clive/apps/tasks/internal/store"
)

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(
	taskStore store.TaskStore,
	b *board.Board,
	sessions *board.SessionRegistry,
	suggester Suggester,
	gen llm.Generator,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on ALL routes including /health)
	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	// Handlers
	healthH := NewHealthHandler(taskStore, gen)
	suggestH := NewSuggestionHandler(suggester, logger)
	taskH := NewTaskHandler(b, logger)
	eventsH := NewEventsHandler(b.Hub(), logger)
	sessionH := NewSessionHandler(sessions)

	r.Get("/health", healthH.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/suggestions", suggestH.Suggest)
		r.Get("/board", taskH.Snapshot)
		r.Get("/events", eventsH.Stream)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskH.List)
			r.Post("/", taskH.Create)
			r.Get("/{id}", taskH.Get)
			r.Patch("/{id}", taskH.Update)
			r.Delete("/{id}", taskH.Delete)
			r.Post("/{id}/suggestions", taskH.RequestSuggestions)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionH.Create)
			r.Get("/{sid}", sessionH.Get)
			r.Delete("/{sid}", sessionH.Delete)
			r.Post("/{sid}/add/open", sessionH.OpenAdd)
			r.Put("/{sid}/add/draft", sessionH.SetDraft)
			r.Post("/{sid}/add/submit", sessionH.SubmitAdd)
			r.Post("/{sid}/add/cancel", sessionH.CancelAdd)
			r.Post("/{sid}/edit/open", sessionH.OpenEdit)
			r.Put("/{sid}/edit/draft", sessionH.SetSelected)
			r.Post("/{sid}/edit/submit", sessionH.SubmitEdit)
			r.Post("/{sid}/edit/cancel", sessionH.CancelEdit)
		})
	})

	return r
}
