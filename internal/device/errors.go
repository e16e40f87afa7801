package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrFanControlDisabled) {
//	    // handle forbidden fan command
//	}
var (
	// ErrInvalidAlgorithm is returned when a settings update names an
	// encryption algorithm that does not resolve in the suite registry.
	// The update is rejected as a whole; no field is changed.
	ErrInvalidAlgorithm = errors.New("device: invalid algorithm")

	// ErrFanControlDisabled is returned when a fan command arrives while
	// allowFanControl is false.
	ErrFanControlDisabled = errors.New("device: fan control disabled")

	// ErrInvalidState is returned when a fan command carries a value that
	// matches neither the ON nor the OFF representation.
	ErrInvalidState = errors.New("device: invalid state")
)
