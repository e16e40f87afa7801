package crypto

import "errors"

// Domain errors for the crypto package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, crypto.ErrUnsupportedAlgorithm) {
//	    // handle unknown cipher name
//	}
var (
	// ErrUnsupportedAlgorithm is returned when a cipher name does not
	// resolve in the suite registry.
	ErrUnsupportedAlgorithm = errors.New("crypto: unsupported algorithm")

	// ErrInvalidEnvelope is returned when an envelope's IV or ciphertext
	// does not match the suite's parameters.
	ErrInvalidEnvelope = errors.New("crypto: invalid envelope")

	// ErrInvalidPadding is returned when PKCS#7 padding cannot be removed
	// after decryption, usually indicating a wrong key or corrupted data.
	ErrInvalidPadding = errors.New("crypto: invalid padding")
)
