package device

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/openclimate-io/climasim-core/internal/crypto"
	"github.com/openclimate-io/climasim-core/internal/infrastructure/config"
)

// Deps holds the dependencies required by the Node.
type Deps struct {
	Config    config.DeviceConfig
	Period    time.Duration // update cycle period
	MaxAge    time.Duration // data-freshness threshold
	Publisher Publisher     // required: realtime event delivery
	Forwarder Forwarder     // optional: external aggregator
	Metrics   MetricWriter  // optional: telemetry sink
	Audit     Recorder      // optional: command audit trail
	Logger    Logger        // optional
}

// Node is the emulated sensor/actuator device.
//
// It owns the Device State, the active encryption algorithm, and the
// encrypted history buffer. All mutations are serialised through a single
// mutex; the update cycle and inbound control calls share it.
type Node struct {
	mu      sync.Mutex
	cfg     config.DeviceConfig
	state   State
	algo    string // active algorithm name, always a registered suite
	history *History

	period time.Duration
	maxAge time.Duration

	publisher Publisher
	forwarder Forwarder
	metrics   MetricWriter
	audit     Recorder
	logger    Logger

	rng *rand.Rand

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// New creates a Node from its dependencies.
//
// The configured default algorithm must resolve in the suite registry; its
// normalised name becomes the initial active algorithm.
func New(deps Deps) (*Node, error) {
	if deps.Publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}

	suite, err := crypto.Resolve(deps.Config.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("default algorithm: %w", err)
	}

	period := deps.Period
	if period <= 0 {
		period = time.Duration(deps.Config.UpdatePeriod) * time.Second
	}
	maxAge := deps.MaxAge
	if maxAge <= 0 {
		maxAge = 2 * period
	}

	logger := deps.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	return &Node{
		cfg: deps.Config,
		state: State{
			AllowFanControl: deps.Config.AllowFanControl,
		},
		algo:      suite.Name,
		history:   NewHistory(HistoryCapacity),
		period:    period,
		maxAge:    maxAge,
		publisher: deps.Publisher,
		forwarder: deps.Forwarder,
		metrics:   deps.Metrics,
		audit:     deps.Audit,
		logger:    logger,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
	}, nil
}

// Run drives the periodic update cycle until the context is cancelled.
// The cycle runs for process lifetime; a failing tick is isolated and the
// schedule continues.
func (n *Node) Run(ctx context.Context) {
	ticker := time.NewTicker(n.period)
	defer ticker.Stop()

	n.logger.Info("update cycle started", "period", n.period, "algorithm", n.Algorithm())

	for {
		select {
		case <-ctx.Done():
			n.logger.Info("update cycle stopped")
			return
		case <-ticker.C:
			n.Tick()
		}
	}
}

// Tick performs one update cycle: generate fresh sensor values, append an
// encrypted history entry, recompute freshness, and notify observers.
//
// History encryption is best-effort auditing, not part of the serving path:
// a failure is logged and swallowed, and the plain-data notification still
// goes out.
func (n *Node) Tick() {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("update tick panic recovered", "panic", r)
		}
	}()

	now := n.now().UTC()

	n.mu.Lock()
	n.state.Temperature = float64(randBetween(n.rng, n.cfg.Temperature.Min, n.cfg.Temperature.Max))
	n.state.Humidity = float64(randBetween(n.rng, n.cfg.Humidity.Min, n.cfg.Humidity.Max))
	n.state.LastUpdate = now

	reading := Reading{
		Timestamp:   now,
		Temperature: n.state.Temperature,
		Humidity:    n.state.Humidity,
	}
	algo := n.algo

	env, encErr := crypto.Encrypt(reading, algo, n.cfg.Secret)
	if encErr == nil {
		n.history.Append(env)
	}

	health := EvaluateHealth(n.state.LastUpdate, n.maxAge, n.now().UTC())
	n.mu.Unlock()

	if encErr != nil {
		n.logger.Error("history encryption failed", "algorithm", algo, "error", encErr)
	}

	n.publisher.Publish(EventTemperatureUpdated, map[string]any{
		"temperature": reading.Temperature,
		"humidity":    reading.Humidity,
		"timestamp":   reading.Timestamp,
	})
	n.publisher.Publish(EventDataHealthUpdated, health)

	if n.forwarder != nil {
		// Fire-and-forget: the forwarder bounds its own timeout and a slow
		// or failing aggregator must never delay the next tick.
		go n.forwarder.Forward(n.cfg.ID, reading)
	}
	if n.metrics != nil {
		n.metrics.WriteSensorMetric(n.cfg.ID, "temperature", reading.Temperature)
		n.metrics.WriteSensorMetric(n.cfg.ID, "humidity", reading.Humidity)
	}

	n.logger.Debug("tick complete",
		"temperature", reading.Temperature,
		"humidity", reading.Humidity,
		"history_len", n.HistoryLen(),
	)
}

// Snapshot returns the full externally visible view of the node.
func (n *Node) Snapshot() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshotLocked()
}

// snapshotLocked builds a Snapshot. Callers must hold n.mu.
func (n *Node) snapshotLocked() Snapshot {
	snap := Snapshot{
		LED:             n.state.LED,
		Fan:             n.state.Fan,
		AllowFanControl: n.state.AllowFanControl,
		Temperature:     n.state.Temperature,
		Humidity:        n.state.Humidity,
		EncAlgo:         n.algo,
		DataHealth:      EvaluateHealth(n.state.LastUpdate, n.maxAge, n.now().UTC()),
	}
	if !n.state.LastUpdate.IsZero() {
		ts := n.state.LastUpdate
		snap.LastUpdate = &ts
	}
	return snap
}

// Health returns the current data-freshness verdict.
func (n *Node) Health() Health {
	n.mu.Lock()
	defer n.mu.Unlock()
	return EvaluateHealth(n.state.LastUpdate, n.maxAge, n.now().UTC())
}

// Sensors returns the current plain sensor values.
func (n *Node) Sensors() Reading {
	n.mu.Lock()
	defer n.mu.Unlock()
	return Reading{
		Timestamp:   n.state.LastUpdate,
		Temperature: n.state.Temperature,
		Humidity:    n.state.Humidity,
	}
}

// Algorithm returns the active encryption algorithm name.
func (n *Node) Algorithm() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.algo
}

// HistoryLen returns the number of encrypted history entries held.
func (n *Node) HistoryLen() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.history.Len()
}

// sensorExport is the record for full encrypted exports.
type sensorExport struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// humidityExport is the record for humidity-only encrypted exports.
type humidityExport struct {
	Humidity float64 `json:"humidity"`
}

// EncryptedReading returns the current temperature and humidity encrypted
// under the named algorithm, or under the active algorithm when the name is
// empty. An explicit unknown name fails with crypto.ErrUnsupportedAlgorithm.
func (n *Node) EncryptedReading(algorithm string) (crypto.Envelope, error) {
	n.mu.Lock()
	record := sensorExport{
		Temperature: n.state.Temperature,
		Humidity:    n.state.Humidity,
	}
	if algorithm == "" {
		algorithm = n.algo
	}
	n.mu.Unlock()

	return crypto.Encrypt(record, algorithm, n.cfg.Secret)
}

// EncryptedHumidity returns the current humidity alone encrypted under the
// named algorithm, or under the active algorithm when the name is empty.
func (n *Node) EncryptedHumidity(algorithm string) (crypto.Envelope, error) {
	n.mu.Lock()
	record := humidityExport{Humidity: n.state.Humidity}
	if algorithm == "" {
		algorithm = n.algo
	}
	n.mu.Unlock()

	return crypto.Encrypt(record, algorithm, n.cfg.Secret)
}

// randBetween returns a uniformly distributed integer in [min, max].
func randBetween(rng *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + rng.Intn(max-min+1)
}

// record writes an audit entry, logging and discarding any failure.
func (n *Node) record(ctx context.Context, action string, details map[string]any) {
	if n.audit == nil {
		return
	}
	if err := n.audit.Record(ctx, action, details); err != nil {
		n.logger.Debug("audit record failed", "action", action, "error", err)
	}
}
