package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openclimate-io/climasim-core/internal/audit"
	"github.com/openclimate-io/climasim-core/internal/crypto"
	"github.com/openclimate-io/climasim-core/internal/device"
	"github.com/openclimate-io/climasim-core/internal/infrastructure/config"
	"github.com/openclimate-io/climasim-core/internal/infrastructure/logging"
)

// fakeAuditRepo is an in-memory audit.Repository for handler tests.
type fakeAuditRepo struct {
	logs []audit.AuditLog
}

func (f *fakeAuditRepo) Create(_ context.Context, log *audit.AuditLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	f.logs = append(f.logs, *log)
	return nil
}

func (f *fakeAuditRepo) Record(ctx context.Context, action string, details map[string]any) error {
	return f.Create(ctx, &audit.AuditLog{Action: action, Source: "device", Details: details})
}

func (f *fakeAuditRepo) List(_ context.Context, filter audit.Filter) (*audit.ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	logs := []audit.AuditLog{}
	for _, l := range f.logs {
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		logs = append(logs, l)
	}
	return &audit.ListResult{Logs: logs, Total: len(logs), Limit: filter.Limit}, nil
}

func testDeviceConfig() config.DeviceConfig {
	return config.DeviceConfig{
		ID:              "env-sim-01",
		UpdatePeriod:    2,
		Temperature:     config.RangeConfig{Min: 18, Max: 30},
		Humidity:        config.RangeConfig{Min: 40, Max: 80},
		Secret:          "unit-test-device-secret",
		Algorithm:       "AES",
		AllowFanControl: true,
	}
}

// newTestServer wires a real device node behind the API handlers.
// The hub doubles as the node's event publisher, as it does in main.
func newTestServer(t *testing.T) (*Server, *device.Node, *fakeAuditRepo) {
	t.Helper()

	logger := logging.Default()
	hub := NewHub(config.WebSocketConfig{
		MaxMessageSize: 4096,
		PingInterval:   30,
		PongTimeout:    10,
	}, logger)

	repo := &fakeAuditRepo{}
	node, err := device.New(device.Deps{
		Config:    testDeviceConfig(),
		Period:    2 * time.Second,
		MaxAge:    4 * time.Second,
		Publisher: hub,
		Audit:     repo,
	})
	if err != nil {
		t.Fatalf("device.New() error = %v", err)
	}

	srv, err := New(Deps{
		Logger:      logger,
		Node:        node,
		Audit:       repo,
		ExternalHub: hub,
		Version:     "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv, node, repo
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %s: %v", rec.Body.String(), err)
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]any
	decodeBody(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestHandleStatusAfterTick(t *testing.T) {
	srv, node, _ := newTestServer(t)
	node.Tick()

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var snap device.Snapshot
	decodeBody(t, rec, &snap)

	if snap.Temperature < 18 || snap.Temperature > 30 {
		t.Errorf("temperature %v outside [18, 30]", snap.Temperature)
	}
	if snap.Humidity < 40 || snap.Humidity > 80 {
		t.Errorf("humidity %v outside [40, 80]", snap.Humidity)
	}
	if snap.DataHealth.Status != device.HealthOK {
		t.Errorf("health = %q, want %q", snap.DataHealth.Status, device.HealthOK)
	}
	if snap.EncAlgo != "AES" {
		t.Errorf("encAlgo = %q, want AES", snap.EncAlgo)
	}
	if snap.LastUpdate == nil {
		t.Error("lastUpdate missing after tick")
	}
}

func TestHandleDataHealthBeforeTick(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/data-health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var health device.Health
	decodeBody(t, rec, &health)
	if health.Status != device.HealthUnknown {
		t.Errorf("status = %q, want %q", health.Status, device.HealthUnknown)
	}
}

func TestHandleEncrypted(t *testing.T) {
	srv, node, _ := newTestServer(t)
	node.Tick()

	t.Run("active algorithm", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/encrypted", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}

		var env crypto.Envelope
		decodeBody(t, rec, &env)
		if env.Algo != "AES" {
			t.Errorf("algo = %q, want AES", env.Algo)
		}
		iv, err := base64.StdEncoding.DecodeString(env.IV)
		if err != nil {
			t.Fatalf("decoding IV: %v", err)
		}
		if len(iv) != 16 {
			t.Errorf("AES IV length = %d, want 16", len(iv))
		}
	})

	t.Run("explicit DES", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/encrypted?algo=DES", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}

		var env crypto.Envelope
		decodeBody(t, rec, &env)
		if env.Algo != "DES" {
			t.Errorf("algo = %q, want DES", env.Algo)
		}
		iv, err := base64.StdEncoding.DecodeString(env.IV)
		if err != nil {
			t.Fatalf("decoding IV: %v", err)
		}
		if len(iv) != 8 {
			t.Errorf("3DES IV length = %d, want 8", len(iv))
		}
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/encrypted?algo=ROT13", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}

		var apiErr Error
		decodeBody(t, rec, &apiErr)
		if apiErr.Code != ErrCodeUnsupportedAlgorithm {
			t.Errorf("code = %q, want %q", apiErr.Code, ErrCodeUnsupportedAlgorithm)
		}
	})

	t.Run("humidity only decrypts to single field", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/encrypted/humidity", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}

		var env crypto.Envelope
		decodeBody(t, rec, &env)
		plaintext, err := crypto.Decrypt(env, "unit-test-device-secret")
		if err != nil {
			t.Fatalf("Decrypt() error = %v", err)
		}
		var record map[string]any
		if err := json.Unmarshal(plaintext, &record); err != nil {
			t.Fatalf("unmarshalling plaintext: %v", err)
		}
		if _, ok := record["humidity"]; !ok {
			t.Error("humidity field missing from export")
		}
		if _, ok := record["temperature"]; ok {
			t.Error("temperature leaked into humidity-only export")
		}
	})
}

func TestHandleLED(t *testing.T) {
	srv, _, repo := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/led", `{"state":"on"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	decodeBody(t, rec, &body)
	if body["led"] != true {
		t.Errorf("led = %v, want true", body["led"])
	}

	if len(repo.logs) == 0 || repo.logs[0].Action != "led_command" {
		t.Error("LED command not audited")
	}

	t.Run("unrecognised state ignored", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/led", `{"state":"sideways"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var body map[string]any
		decodeBody(t, rec, &body)
		if body["led"] != true {
			t.Errorf("led = %v, want unchanged true", body["led"])
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/led", `{not json`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandleFan(t *testing.T) {
	srv, node, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/fan", `{"state":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	t.Run("invalid state", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/fan", `{"state":"maybe"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		var apiErr Error
		decodeBody(t, rec, &apiErr)
		if apiErr.Code != ErrCodeInvalidState {
			t.Errorf("code = %q, want %q", apiErr.Code, ErrCodeInvalidState)
		}
	})

	t.Run("disabled control returns 403", func(t *testing.T) {
		if _, err := node.ApplySettings(context.Background(), device.Settings{AllowFanControl: false}); err != nil {
			t.Fatalf("ApplySettings() error = %v", err)
		}

		rec := doRequest(t, srv, http.MethodPost, "/api/v1/fan", `{"state":"off"}`)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
		var apiErr Error
		decodeBody(t, rec, &apiErr)
		if apiErr.Code != ErrCodeFanControlDisabled {
			t.Errorf("code = %q, want %q", apiErr.Code, ErrCodeFanControlDisabled)
		}
	})
}

func TestHandleSettings(t *testing.T) {
	srv, node, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/settings", `{"allowFanControl":false,"algo":"DES"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var result device.SettingsResult
	decodeBody(t, rec, &result)
	if result.AllowFanControl {
		t.Error("allowFanControl = true, want false")
	}
	if result.EncAlgo != "DES" {
		t.Errorf("encAlgo = %q, want DES", result.EncAlgo)
	}
	if node.Algorithm() != "DES" {
		t.Errorf("node algorithm = %q, want DES", node.Algorithm())
	}

	t.Run("invalid algorithm rejects whole request", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/settings", `{"allowFanControl":true,"algo":"ROT13"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		var apiErr Error
		decodeBody(t, rec, &apiErr)
		if apiErr.Code != ErrCodeInvalidAlgorithm {
			t.Errorf("code = %q, want %q", apiErr.Code, ErrCodeInvalidAlgorithm)
		}

		// The valid field must not have been applied.
		snap := node.Snapshot()
		if snap.AllowFanControl {
			t.Error("allowFanControl mutated despite invalid algorithm")
		}
	})
}

func TestHandleAuditList(t *testing.T) {
	srv, _, repo := newTestServer(t)

	if err := repo.Record(context.Background(), "settings_update", nil); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/audit?action=settings_update", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result audit.ListResult
	decodeBody(t, rec, &result)
	if result.Total != 1 {
		t.Errorf("Total = %d, want 1", result.Total)
	}

	t.Run("not configured", func(t *testing.T) {
		srv.audit = nil
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/audit", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandleSensors(t *testing.T) {
	srv, node, _ := newTestServer(t)
	node.Tick()

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/sensors", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var reading device.Reading
	decodeBody(t, rec, &reading)
	if reading.Temperature < 18 || reading.Temperature > 30 {
		t.Errorf("temperature %v outside [18, 30]", reading.Temperature)
	}
}
