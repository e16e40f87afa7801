package crypto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

const testSecret = "unit-test-device-secret"

type testReading struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
}

func sampleReading() testReading {
	return testReading{
		Timestamp:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Temperature: 21,
		Humidity:    55,
	}
}

func TestEncrypt_RoundTrip(t *testing.T) {
	for _, s := range Suites() {
		t.Run(s.Name, func(t *testing.T) {
			record := sampleReading()

			env, err := Encrypt(record, s.Name, testSecret)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if env.Algo != s.Name {
				t.Errorf("envelope algo = %q, want %q", env.Algo, s.Name)
			}

			plain, err := Decrypt(env, testSecret)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}

			var got testReading
			if err := json.Unmarshal(plain, &got); err != nil {
				t.Fatalf("unmarshalling decrypted record: %v", err)
			}
			if !got.Timestamp.Equal(record.Timestamp) || got.Temperature != record.Temperature || got.Humidity != record.Humidity {
				t.Errorf("round-trip mismatch: got %+v, want %+v", got, record)
			}
		})
	}
}

func TestEncrypt_IVLengthPerSuite(t *testing.T) {
	tests := []struct {
		algo   string
		ivLen  int
		keyLen int
	}{
		{"AES", 16, 32},
		{"DES", 8, 24},
	}

	for _, tt := range tests {
		env, err := Encrypt(sampleReading(), tt.algo, testSecret)
		if err != nil {
			t.Fatalf("Encrypt(%s) error = %v", tt.algo, err)
		}
		iv, err := base64.StdEncoding.DecodeString(env.IV)
		if err != nil {
			t.Fatalf("decoding iv: %v", err)
		}
		if len(iv) != tt.ivLen {
			t.Errorf("%s iv length = %d, want %d", tt.algo, len(iv), tt.ivLen)
		}
	}
}

func TestEncrypt_FreshIVPerCall(t *testing.T) {
	record := sampleReading()

	env1, err := Encrypt(record, "AES", testSecret)
	if err != nil {
		t.Fatalf("first Encrypt() error = %v", err)
	}
	env2, err := Encrypt(record, "AES", testSecret)
	if err != nil {
		t.Fatalf("second Encrypt() error = %v", err)
	}

	if env1.IV == env2.IV {
		t.Error("two encryptions of identical input reused the IV")
	}
	if env1.Data == env2.Data {
		t.Error("two encryptions of identical input produced identical ciphertext")
	}
}

func TestEncrypt_UnsupportedAlgorithm(t *testing.T) {
	_, err := Encrypt(sampleReading(), "XYZ", testSecret)
	if !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Errorf("Encrypt(XYZ) error = %v, want ErrUnsupportedAlgorithm", err)
	}
}

func TestDecrypt_WrongSecret(t *testing.T) {
	env, err := Encrypt(sampleReading(), "AES", testSecret)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	plain, err := Decrypt(env, "a-different-secret")
	if err == nil {
		// CBC with a wrong key almost always breaks the padding; on the rare
		// chance the padding survives, the plaintext must not parse back into
		// the original record.
		var got testReading
		if json.Unmarshal(plain, &got) == nil && got == sampleReading() {
			t.Error("decryption with wrong secret recovered the record")
		}
	}
}

func TestDecrypt_TamperedEnvelope(t *testing.T) {
	env, err := Encrypt(sampleReading(), "DES", testSecret)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(e Envelope) Envelope
	}{
		{"unknown algo", func(e Envelope) Envelope { e.Algo = "ROT13"; return e }},
		{"bad iv encoding", func(e Envelope) Envelope { e.IV = "!!not-base64!!"; return e }},
		{"wrong iv length", func(e Envelope) Envelope {
			e.IV = base64.StdEncoding.EncodeToString(make([]byte, 16)) // DES wants 8
			return e
		}},
		{"truncated data", func(e Envelope) Envelope {
			raw, _ := base64.StdEncoding.DecodeString(e.Data)
			e.Data = base64.StdEncoding.EncodeToString(raw[:len(raw)-1])
			return e
		}},
		{"empty data", func(e Envelope) Envelope { e.Data = ""; return e }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decrypt(tt.mutate(env), testSecret); err == nil {
				t.Error("Decrypt() accepted a tampered envelope")
			}
		})
	}
}

func TestPKCS7_Unpad(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"valid single pad", append([]byte("1234567"), 1), false},
		{"valid full block pad", []byte{8, 8, 8, 8, 8, 8, 8, 8}, false},
		{"zero pad byte", []byte{1, 2, 3, 4, 5, 6, 7, 0}, true},
		{"pad exceeds block", []byte{1, 2, 3, 4, 5, 6, 7, 9}, true},
		{"inconsistent pad bytes", []byte{1, 2, 3, 4, 5, 6, 3, 2}, true},
		{"empty input", nil, true},
		{"not block aligned", []byte{1, 2, 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pkcs7Unpad(tt.data, 8)
			if (err != nil) != tt.wantErr {
				t.Errorf("pkcs7Unpad() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}
