package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RegisterRoutes registers all analysis routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/analysis", func(r chi.Router) {
		// Batches fetch from the provider, which can be slow on cold cache
		r.Use(middleware.Timeout(120 * time.Second))

		r.Get("/stream", h.HandleStream)
		r.Post("/batch", h.HandleAnalyzeBatch)
		r.Get("/{ticker}", h.HandleAnalyzeTicker)
	})
}
