// Package crypto provides the runtime-switchable symmetric encryption
// subsystem for ClimaSim Core.
//
// This package manages:
//   - A static registry of supported cipher suites (AES-256-CBC, 3DES-CBC)
//   - Deterministic key derivation from the configured device secret
//   - Encryption of structured records into self-describing envelopes
//   - The matching decrypt operation for external consumers of the envelopes
//
// # Envelope Format
//
// Every encryption produces an Envelope carrying the algorithm name, a fresh
// random IV, and the ciphertext, all three base64-encoded where binary:
//
//	{"algo": "AES", "iv": "<base64>", "data": "<base64>"}
//
// Anyone holding the device secret can decrypt an envelope without further
// context: the algorithm name resolves the suite, the suite fixes the key
// length, and the key is re-derived from the secret.
//
// # Key Derivation
//
// Keys are derived by hashing the secret with SHA-256 and truncating to the
// suite's key length. The same secret therefore yields different keys for
// suites with different key lengths; derivation is repeated per call and
// never cached across suites.
//
// # Usage
//
//	env, err := crypto.Encrypt(reading, "AES", secret)
//	if err != nil { ... }
//
//	plain, err := crypto.Decrypt(env, secret)
package crypto
