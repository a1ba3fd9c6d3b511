// Package handlers provides HTTP handlers for the analysis pipeline.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/aristath/beacon/internal/modules/analysis"
)

// maxBatchTickers bounds one batch request to prevent resource exhaustion.
const maxBatchTickers = 200

// Handler handles analysis HTTP requests
type Handler struct {
	service *analysis.Service
	hub     *analysis.ProgressHub
	log     zerolog.Logger
}

// NewHandler creates a new analysis handler
func NewHandler(service *analysis.Service, hub *analysis.ProgressHub, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		log:     log.With().Str("handler", "analysis").Logger(),
	}
}

// HandleAnalyzeTicker handles GET /api/analysis/{ticker}
func (h *Handler) HandleAnalyzeTicker(w http.ResponseWriter, r *http.Request) {
	tickers := analysis.ParseTickers(chi.URLParam(r, "ticker"))
	if len(tickers) != 1 {
		h.writeError(w, http.StatusBadRequest, "Exactly one ticker required")
		return
	}

	record := h.service.Analyze(tickers[0])
	if record.Failed() {
		h.writeJSON(w, http.StatusBadGateway, record)
		return
	}

	h.writeJSON(w, http.StatusOK, record)
}

// HandleAnalyzeBatch handles POST /api/analysis/batch
func (h *Handler) HandleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Tickers string `json:"tickers"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	tickers := analysis.ParseTickers(request.Tickers)
	if len(tickers) == 0 {
		h.writeError(w, http.StatusBadRequest, "No tickers provided")
		return
	}
	if len(tickers) > maxBatchTickers {
		h.writeError(w, http.StatusBadRequest, "Too many tickers (max 200)")
		return
	}

	startTime := time.Now()
	result := h.service.AnalyzeBatch(tickers, func(batchID string, current, total int, ticker string) {
		h.hub.Publish(analysis.BatchProgress{
			BatchID: batchID,
			Current: current,
			Total:   total,
			Ticker:  ticker,
			Done:    current == total,
		})
	})

	h.log.Info().
		Int("tickers", len(tickers)).
		Dur("elapsed", time.Since(startTime)).
		Msg("Batch request completed")

	h.writeJSON(w, http.StatusOK, result)
}

// HandleStream handles GET /api/analysis/stream, a WebSocket pushing
// batch progress events until the client disconnects.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The dashboard is served from the same origin; dev mode uses
		// a separate port, so origin checks stay off.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")

	events, cancel := h.hub.Subscribe()
	defer cancel()

	h.log.Debug().Msg("Progress stream connected")

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			writeCtx, writeCancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, event)
			writeCancel()
			if err != nil {
				h.log.Debug().Err(err).Msg("Progress stream write failed, closing")
				return
			}
		}
	}
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
