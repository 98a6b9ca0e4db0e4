package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harunnryd/chatdesk/internal/metrics"
)

// NewRouter builds the full API with its middleware stack.
func NewRouter(h *Handlers) chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	MountRoutes(r, h)
	return r
}

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Route("/chats", func(r chi.Router) {
		r.Post("/", h.CreateChat)
		r.Get("/{id}", h.GetChat)
		r.Get("/{id}/poll", h.PollChat)
	})

	r.Get("/agents", h.ListAgents)
	r.Get("/stats", h.GetStats)
	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
}
