package device

import (
	"context"
	"fmt"
	"strings"

	"github.com/openclimate-io/climasim-core/internal/crypto"
)

// SetLED applies an LED control command.
//
// The LED accepts boolean-like input and is deliberately lenient: a value
// matching neither the ON nor the OFF representation leaves the LED
// unchanged without signalling an error. This mirrors the device's physical
// behaviour of ignoring malformed commands. The returned value is the LED
// state after the call.
func (n *Node) SetLED(ctx context.Context, state any) bool {
	desired, ok := parseSwitchState(state)

	n.mu.Lock()
	if !ok {
		led := n.state.LED
		n.mu.Unlock()
		n.logger.Debug("ignoring unrecognised led state", "state", state)
		return led
	}

	n.state.LED = desired
	n.state.LastUpdate = n.now().UTC()
	ts := n.state.LastUpdate
	n.mu.Unlock()

	n.publisher.Publish(EventLEDStateChanged, map[string]any{
		"led":       desired,
		"timestamp": ts,
	})
	n.record(ctx, "led_command", map[string]any{"led": desired})
	if n.metrics != nil {
		n.metrics.WriteActuatorState(n.cfg.ID, "led", desired)
	}
	n.logger.Info("led state changed", "led", desired)

	return desired
}

// SetFan applies a fan control command.
//
// The permission flag is checked before the value is interpreted: when
// allowFanControl is false every fan command fails with
// ErrFanControlDisabled, however malformed. A value matching neither ON nor
// OFF fails with ErrInvalidState. The returned value is the fan state after
// the call.
func (n *Node) SetFan(ctx context.Context, state any) (bool, error) {
	n.mu.Lock()

	if !n.state.AllowFanControl {
		fan := n.state.Fan
		n.mu.Unlock()
		return fan, ErrFanControlDisabled
	}

	desired, ok := parseSwitchState(state)
	if !ok {
		fan := n.state.Fan
		n.mu.Unlock()
		return fan, fmt.Errorf("%w: %v", ErrInvalidState, state)
	}

	n.state.Fan = desired
	n.state.LastUpdate = n.now().UTC()
	ts := n.state.LastUpdate
	n.mu.Unlock()

	n.publisher.Publish(EventFanStateChanged, map[string]any{
		"fan":       desired,
		"timestamp": ts,
	})
	n.record(ctx, "fan_command", map[string]any{"fan": desired})
	if n.metrics != nil {
		n.metrics.WriteActuatorState(n.cfg.ID, "fan", desired)
	}
	n.logger.Info("fan state changed", "fan", desired)

	return desired, nil
}

// ApplySettings atomically updates the runtime-tunable settings.
//
// All fields are validated before any mutation: an unknown algorithm name
// fails the whole call with ErrInvalidAlgorithm and leaves allowFanControl
// untouched, even when that field alone would have been valid. On success
// the new settings are broadcast and returned alongside the current health
// verdict.
func (n *Node) ApplySettings(ctx context.Context, s Settings) (SettingsResult, error) {
	// Validate first, touch nothing on failure.
	var suite crypto.Suite
	if s.Algo != nil {
		resolved, err := crypto.Resolve(*s.Algo)
		if err != nil {
			return SettingsResult{}, fmt.Errorf("%w: %q", ErrInvalidAlgorithm, *s.Algo)
		}
		suite = resolved
	}

	n.mu.Lock()
	if s.AllowFanControl != nil {
		n.state.AllowFanControl = coerceBool(s.AllowFanControl)
	}
	if s.Algo != nil {
		n.algo = suite.Name
	}
	result := SettingsResult{
		AllowFanControl: n.state.AllowFanControl,
		EncAlgo:         n.algo,
		DataHealth:      EvaluateHealth(n.state.LastUpdate, n.maxAge, n.now().UTC()),
	}
	n.mu.Unlock()

	n.publisher.Publish(EventSettingsUpdated, map[string]any{
		"allowFanControl": result.AllowFanControl,
		"encAlgo":         result.EncAlgo,
	})
	n.record(ctx, "settings_update", map[string]any{
		"allowFanControl": result.AllowFanControl,
		"encAlgo":         result.EncAlgo,
	})
	n.logger.Info("settings updated",
		"allow_fan_control", result.AllowFanControl,
		"algorithm", result.EncAlgo,
	)

	return result, nil
}

// parseSwitchState interprets an actuator command value.
//
// Recognised ON representations: true, "on", "true", "1", numeric 1.
// Recognised OFF representations: false, "off", "false", "0", numeric 0.
// Anything else is unrecognised (ok == false).
func parseSwitchState(state any) (value bool, ok bool) {
	switch v := state.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "on", "true", "1":
			return true, true
		case "off", "false", "0":
			return false, true
		}
	case float64:
		// JSON numbers decode as float64.
		if v == 1 {
			return true, true
		}
		if v == 0 {
			return false, true
		}
	case int:
		if v == 1 {
			return true, true
		}
		if v == 0 {
			return false, true
		}
	}
	return false, false
}

// coerceBool turns a boolean-like settings value into a strict boolean.
// Recognised truthy forms: true, "true", "1", numeric 1. Everything else,
// including unrecognised strings, coerces to false.
func coerceBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1":
			return true
		}
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return false
}
