package device

import (
	"context"
	"time"
)

// State holds the current actuator and sensor values of the node.
// It is owned by the Node and mutated only under its lock.
type State struct {
	LED             bool
	Fan             bool
	AllowFanControl bool
	Temperature     float64
	Humidity        float64

	// LastUpdate is the time of the most recent state change.
	// The zero value means the node has not produced a reading yet.
	LastUpdate time.Time
}

// Reading is the plain sensor sample produced by one update tick.
// It is also the record wrapped into encrypted history envelopes.
type Reading struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
}

// HealthStatus classifies the freshness of the most recent state update.
type HealthStatus string

// Health status values.
const (
	HealthOK      HealthStatus = "ok"
	HealthStale   HealthStatus = "stale"
	HealthUnknown HealthStatus = "unknown"
)

// Health is the derived data-freshness verdict. It is recomputed from
// State.LastUpdate on every read and never stored.
type Health struct {
	Status     HealthStatus `json:"status"`
	AgeMS      *int64       `json:"ageMs"`
	IsFresh    bool         `json:"isFresh"`
	LastUpdate *time.Time   `json:"lastUpdate"`
}

// Snapshot is the full externally visible view of the node: device state,
// active algorithm, and the current health verdict. It is the payload of the
// initialState event and of full status reads.
type Snapshot struct {
	LED             bool       `json:"led"`
	Fan             bool       `json:"fan"`
	AllowFanControl bool       `json:"allowFanControl"`
	Temperature     float64    `json:"temperature"`
	Humidity        float64    `json:"humidity"`
	LastUpdate      *time.Time `json:"lastUpdate"`
	EncAlgo         string     `json:"encAlgo"`
	DataHealth      Health     `json:"dataHealth"`
}

// Settings is a runtime settings mutation request. Absent fields are left
// untouched. AllowFanControl deliberately has type any: callers send it as a
// boolean, a "true"/"1" style string, or a number, and it is coerced.
type Settings struct {
	AllowFanControl any     `json:"allowFanControl,omitempty"`
	Algo            *string `json:"algo,omitempty"`
}

// SettingsResult reports the settings in effect after a successful mutation,
// alongside the current health verdict.
type SettingsResult struct {
	AllowFanControl bool   `json:"allowFanControl"`
	EncAlgo         string `json:"encAlgo"`
	DataHealth      Health `json:"dataHealth"`
}

// Event names broadcast to observers.
const (
	EventTemperatureUpdated = "temperatureUpdated"
	EventDataHealthUpdated  = "dataHealthUpdated"
	EventLEDStateChanged    = "ledStateChanged"
	EventFanStateChanged    = "fanStateChanged"
	EventSettingsUpdated    = "settingsUpdated"
	EventInitialState       = "initialState"
)

// Publisher delivers events to realtime observers. Delivery is
// fire-and-forget; implementations must never block the caller.
type Publisher interface {
	Publish(event string, payload any)
}

// Forwarder pushes readings to an external aggregator. Forwarding is
// best-effort with a bounded timeout; errors are the implementation's
// problem, never the update cycle's.
type Forwarder interface {
	Forward(deviceID string, reading Reading)
}

// MetricWriter records numeric telemetry points. Writes must be
// non-blocking.
type MetricWriter interface {
	WriteSensorMetric(deviceID string, measurement string, value float64)
	WriteActuatorState(deviceID string, actuator string, on bool)
}

// Recorder persists audit entries for control operations.
type Recorder interface {
	Record(ctx context.Context, action string, details map[string]any) error
}

// Logger defines the logging interface used by the Node.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
