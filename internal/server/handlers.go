// Package server provides the HTTP server and routing for Beacon.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// handleHealth handles health check requests. Each database gets a quick
// integrity check; any failure marks the whole service unhealthy.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "healthy"
	httpStatus := http.StatusOK
	databases := make(map[string]string, len(s.databases))

	for name, db := range s.databases {
		if err := db.QuickCheck(ctx); err != nil {
			s.log.Error().Err(err).Str("database", name).Msg("Health check failed")
			databases[name] = "unhealthy"
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		databases[name] = "healthy"
	}

	s.writeJSON(w, httpStatus, map[string]interface{}{
		"status":    status,
		"service":   "beacon",
		"databases": databases,
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
