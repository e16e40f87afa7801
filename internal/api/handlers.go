package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/openclimate-io/climasim-core/internal/audit"
	"github.com/openclimate-io/climasim-core/internal/crypto"
	"github.com/openclimate-io/climasim-core/internal/device"
)

// handleSensors returns the latest raw sensor reading.
//
// GET /api/v1/sensors
func (s *Server) handleSensors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.node.Sensors())
}

// handleStatus returns the full device snapshot: sensors, actuators,
// settings, and the current data-health verdict.
//
// GET /api/v1/status
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.node.Snapshot())
}

// handleDataHealth returns the freshness verdict for the sensor data.
//
// GET /api/v1/data-health
func (s *Server) handleDataHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.node.Health())
}

// handleEncrypted returns the current reading encrypted under the active
// algorithm, or under an explicitly requested one.
//
// GET /api/v1/encrypted?algo=DES
func (s *Server) handleEncrypted(w http.ResponseWriter, r *http.Request) {
	env, err := s.node.EncryptedReading(r.URL.Query().Get("algo"))
	if err != nil {
		s.writeEncryptError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// handleEncryptedHumidity returns a humidity-only encrypted export.
//
// GET /api/v1/encrypted/humidity?algo=AES
func (s *Server) handleEncryptedHumidity(w http.ResponseWriter, r *http.Request) {
	env, err := s.node.EncryptedHumidity(r.URL.Query().Get("algo"))
	if err != nil {
		s.writeEncryptError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// writeEncryptError maps encryption failures to HTTP responses.
func (s *Server) writeEncryptError(w http.ResponseWriter, err error) {
	if errors.Is(err, crypto.ErrUnsupportedAlgorithm) {
		writeError(w, http.StatusBadRequest, ErrCodeUnsupportedAlgorithm, err.Error())
		return
	}
	s.logger.Error("encrypted export failed", "error", err)
	writeInternalError(w, "encryption failed")
}

// switchRequest is the body for LED and fan commands. State is `any`
// because clients send booleans, numbers, and strings interchangeably.
type switchRequest struct {
	State any `json:"state"`
}

// handleLED applies an LED command.
//
// POST /api/v1/led {"state": "on"}
//
// Unrecognised state values are ignored and reported back unchanged,
// matching the lenient semantics of the physical toggle.
func (s *Server) handleLED(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	led := s.node.SetLED(r.Context(), req.State)
	writeJSON(w, http.StatusOK, map[string]any{"led": led})
}

// handleFan applies a fan command.
//
// POST /api/v1/fan {"state": false}
//
// Fails with 403 when remote fan control is disabled in settings, and
// with 400 when the state value is unrecognised.
func (s *Server) handleFan(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	fan, err := s.node.SetFan(r.Context(), req.State)
	if err != nil {
		switch {
		case errors.Is(err, device.ErrFanControlDisabled):
			writeError(w, http.StatusForbidden, ErrCodeFanControlDisabled, err.Error())
		case errors.Is(err, device.ErrInvalidState):
			writeError(w, http.StatusBadRequest, ErrCodeInvalidState, err.Error())
		default:
			s.logger.Error("fan command failed", "error", err)
			writeInternalError(w, "fan command failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"fan": fan})
}

// handleSettings applies a runtime settings mutation.
//
// POST /api/v1/settings {"allowFanControl": true, "algo": "DES"}
//
// Validation is all-or-nothing: an invalid algorithm rejects the whole
// request and no field changes.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var req device.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := s.node.ApplySettings(r.Context(), req)
	if err != nil {
		if errors.Is(err, device.ErrInvalidAlgorithm) {
			writeError(w, http.StatusBadRequest, ErrCodeInvalidAlgorithm, err.Error())
			return
		}
		s.logger.Error("settings update failed", "error", err)
		writeInternalError(w, "settings update failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleAuditList returns paginated audit log entries.
//
// Query parameters:
//   - action: filter by action type (led_command, fan_command, settings_update)
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleAuditList(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "audit logging not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{Action: q.Get("action")}

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list audit logs", "error", err)
		writeInternalError(w, "failed to list audit logs")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
