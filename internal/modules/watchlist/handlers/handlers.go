// Package handlers provides HTTP handlers for the watchlist.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/beacon/internal/modules/watchlist"
)

// Handler handles watchlist HTTP requests
type Handler struct {
	repo *watchlist.Repository
	log  zerolog.Logger
}

// NewHandler creates a new watchlist handler
func NewHandler(repo *watchlist.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "watchlist").Logger(),
	}
}

// HandleList handles GET /api/watchlist
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repo.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list watchlist")
		h.writeError(w, http.StatusInternalServerError, "Failed to load watchlist")
		return
	}

	if entries == nil {
		entries = []watchlist.Entry{}
	}
	h.writeJSON(w, http.StatusOK, entries)
}

// HandleAdd handles POST /api/watchlist
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var entry watchlist.Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(entry.Ticker) == "" {
		h.writeError(w, http.StatusBadRequest, "Ticker required")
		return
	}

	if err := h.repo.Add(entry); err != nil {
		h.log.Error().Err(err).Str("ticker", entry.Ticker).Msg("Failed to add to watchlist")
		h.writeError(w, http.StatusInternalServerError, "Failed to add to watchlist")
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

// HandleRemove handles DELETE /api/watchlist/{ticker}
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	if err := h.repo.Remove(ticker); err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
