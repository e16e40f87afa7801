package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
)

// Suite describes a supported cipher algorithm and its parameter profile.
// The key and IV lengths exactly match the underlying cipher's requirement.
type Suite struct {
	// Name is the public algorithm name used in envelopes and settings
	// (upper-case, e.g. "AES").
	Name string

	// CipherID identifies the concrete cipher and mode.
	CipherID string

	// KeyLen is the derived key length in bytes.
	KeyLen int

	// IVLen is the initialisation vector length in bytes (the cipher's
	// block size for CBC mode).
	IVLen int
}

// Cipher mode identifiers.
const (
	CipherAES256CBC = "aes-256-cbc"
	CipherDESEDE3   = "des-ede3-cbc"
)

// suites is the static registry of supported algorithms.
// It is immutable after package initialisation.
var suites = map[string]Suite{
	"AES": {Name: "AES", CipherID: CipherAES256CBC, KeyLen: 32, IVLen: aes.BlockSize},
	"DES": {Name: "DES", CipherID: CipherDESEDE3, KeyLen: 24, IVLen: des.BlockSize},
}

// Resolve looks up a suite by algorithm name.
//
// Names are case-normalised (upper-cased and trimmed) at this boundary.
// Unknown names are rejected with ErrUnsupportedAlgorithm, never silently
// defaulted.
func Resolve(name string) (Suite, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	s, ok := suites[normalized]
	if !ok {
		return Suite{}, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
	return s, nil
}

// Suites returns all registered suites sorted by name.
func Suites() []Suite {
	out := make([]Suite, 0, len(suites))
	for _, s := range suites {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DeriveKey deterministically derives an encryption key from the device
// secret for the given suite: SHA-256 of the secret, truncated to the
// suite's key length.
//
// Determinism matters: anyone holding the secret must be able to re-derive
// the key and decrypt stored envelopes. Suites with different key lengths
// intentionally yield different keys from the same secret, so derivation is
// performed per call rather than cached.
func DeriveKey(secret string, s Suite) []byte {
	sum := sha256.Sum256([]byte(secret))
	key := make([]byte, s.KeyLen)
	copy(key, sum[:s.KeyLen])
	return key
}

// newBlock constructs the block cipher for a suite from a derived key.
func newBlock(s Suite, key []byte) (cipher.Block, error) {
	switch s.CipherID {
	case CipherAES256CBC:
		return aes.NewCipher(key)
	case CipherDESEDE3:
		return des.NewTripleDESCipher(key)
	default:
		return nil, fmt.Errorf("%w: cipher %q", ErrUnsupportedAlgorithm, s.CipherID)
	}
}
