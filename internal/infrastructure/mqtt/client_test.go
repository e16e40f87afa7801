package mqtt

import (
	"strings"
	"testing"

	"github.com/openclimate-io/climasim-core/internal/infrastructure/config"
)

func testMQTTConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "localhost",
			Port:     1883,
			ClientID: "climasim-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     30,
		},
	}
}

func TestBuildClientOptions(t *testing.T) {
	t.Run("plain tcp broker", func(t *testing.T) {
		opts := buildClientOptions(testMQTTConfig())

		if len(opts.Servers) != 1 {
			t.Fatalf("len(Servers) = %d, want 1", len(opts.Servers))
		}
		if got := opts.Servers[0].String(); got != "tcp://localhost:1883" {
			t.Errorf("broker URL = %q, want tcp://localhost:1883", got)
		}
		if opts.ClientID != "climasim-test" {
			t.Errorf("ClientID = %q, want climasim-test", opts.ClientID)
		}
		if !opts.AutoReconnect {
			t.Error("AutoReconnect not enabled")
		}
	})

	t.Run("tls broker uses ssl scheme", func(t *testing.T) {
		cfg := testMQTTConfig()
		cfg.Broker.TLS = true
		opts := buildClientOptions(cfg)

		if got := opts.Servers[0].Scheme; got != "ssl" {
			t.Errorf("scheme = %q, want ssl", got)
		}
		if opts.TLSConfig == nil {
			t.Error("TLSConfig not set for TLS broker")
		}
	})

	t.Run("credentials applied when present", func(t *testing.T) {
		cfg := testMQTTConfig()
		cfg.Auth.Username = "sensor"
		cfg.Auth.Password = "secret"
		opts := buildClientOptions(cfg)

		if opts.Username != "sensor" {
			t.Errorf("Username = %q, want sensor", opts.Username)
		}
		if opts.Password != "secret" {
			t.Errorf("Password = %q, want secret", opts.Password)
		}
	})
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testMQTTConfig())
	configureLWT(opts, "climasim-test")

	if !opts.WillEnabled {
		t.Fatal("will not enabled")
	}
	if opts.WillTopic != "climasim/system/status" {
		t.Errorf("WillTopic = %q, want climasim/system/status", opts.WillTopic)
	}
	if !opts.WillRetained {
		t.Error("will should be retained")
	}
	payload := string(opts.WillPayload)
	if !strings.Contains(payload, `"status":"offline"`) {
		t.Errorf("will payload missing offline status: %s", payload)
	}
	if !strings.Contains(payload, "unexpected_disconnect") {
		t.Errorf("will payload missing crash reason: %s", payload)
	}
}

func TestStatusPayloads(t *testing.T) {
	online := buildOnlinePayload("climasim-test")
	if !strings.Contains(online, `"status":"online"`) {
		t.Errorf("online payload = %s", online)
	}

	offline := buildOfflinePayload("climasim-test")
	if !strings.Contains(offline, `"status":"offline"`) || !strings.Contains(offline, "graceful_shutdown") {
		t.Errorf("offline payload = %s", offline)
	}
}

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		got  string
		want string
	}{
		{topics.SystemStatus(), "climasim/system/status"},
		{topics.DeviceReading("env-sim-01"), "climasim/reading/env-sim-01"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("topic = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestPublishValidation(t *testing.T) {
	c := &Client{cfg: testMQTTConfig()}

	t.Run("empty topic", func(t *testing.T) {
		if err := c.Publish("", []byte("{}"), 1, false); err != ErrInvalidTopic {
			t.Errorf("error = %v, want ErrInvalidTopic", err)
		}
	})

	t.Run("invalid qos", func(t *testing.T) {
		if err := c.Publish("climasim/reading/x", []byte("{}"), 3, false); err != ErrInvalidQoS {
			t.Errorf("error = %v, want ErrInvalidQoS", err)
		}
	})

	t.Run("oversized payload", func(t *testing.T) {
		big := make([]byte, maxPayloadSize+1)
		err := c.Publish("climasim/reading/x", big, 1, false)
		if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
			t.Errorf("error = %v, want payload size error", err)
		}
	})
}
