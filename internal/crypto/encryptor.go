package crypto

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
)

// Envelope is a self-describing ciphertext record. It carries everything an
// external party holding the device secret needs to decrypt it.
type Envelope struct {
	Algo string `json:"algo"`
	IV   string `json:"iv"`
	Data string `json:"data"`
}

// Encrypt serialises record to canonical JSON and encrypts it under the
// named algorithm with a key derived from secret.
//
// A fresh random IV is generated for every call; two encryptions of the same
// record never share an IV or ciphertext. Unknown algorithm names fail with
// ErrUnsupportedAlgorithm.
func Encrypt(record any, algorithm string, secret string) (Envelope, error) {
	suite, err := Resolve(algorithm)
	if err != nil {
		return Envelope{}, err
	}

	plaintext, err := json.Marshal(record)
	if err != nil {
		return Envelope{}, fmt.Errorf("serialising record: %w", err)
	}

	key := DeriveKey(secret, suite)
	block, err := newBlock(suite, key)
	if err != nil {
		return Envelope{}, err
	}

	iv := make([]byte, suite.IVLen)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return Envelope{}, fmt.Errorf("generating iv: %w", err)
	}

	padded := pkcs7Pad(plaintext, block.BlockSize())
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return Envelope{
		Algo: suite.Name,
		IV:   base64.StdEncoding.EncodeToString(iv),
		Data: base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

// Decrypt reverses Encrypt, returning the canonical JSON plaintext.
//
// The node itself never reads its history back; this operation exists for
// external consumers of exported envelopes and to keep the round-trip law
// verifiable.
func Decrypt(env Envelope, secret string) ([]byte, error) {
	suite, err := Resolve(env.Algo)
	if err != nil {
		return nil, err
	}

	iv, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding iv: %w", ErrInvalidEnvelope, err)
	}
	if len(iv) != suite.IVLen {
		return nil, fmt.Errorf("%w: iv length %d, want %d", ErrInvalidEnvelope, len(iv), suite.IVLen)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding data: %w", ErrInvalidEnvelope, err)
	}

	key := DeriveKey(secret, suite)
	block, err := newBlock(suite, key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d not a multiple of block size", ErrInvalidEnvelope, len(ciphertext))
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return pkcs7Unpad(plaintext, block.BlockSize())
}

// pkcs7Pad appends PKCS#7 padding to align data to the block size.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

// pkcs7Unpad removes PKCS#7 padding, validating every padding byte.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, ErrInvalidPadding
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, ErrInvalidPadding
		}
	}
	return data[:len(data)-padLen], nil
}
