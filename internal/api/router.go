package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Read-only device state
		r.Get("/sensors", s.handleSensors)
		r.Get("/status", s.handleStatus)
		r.Get("/data-health", s.handleDataHealth)

		// Encrypted exports
		r.Route("/encrypted", func(r chi.Router) {
			r.Get("/", s.handleEncrypted)
			r.Get("/humidity", s.handleEncryptedHumidity)
		})

		// Actuator control and settings
		r.Post("/led", s.handleLED)
		r.Post("/fan", s.handleFan)
		r.Post("/settings", s.handleSettings)

		// Audit trail
		r.Get("/audit", s.handleAuditList)

		// Realtime event stream
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
