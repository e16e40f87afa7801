package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for ClimaSim Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DeviceConfig contains the emulated device settings: identity, sensor value
// bounds, the update cycle period, and the encryption subsystem inputs.
type DeviceConfig struct {
	ID string `yaml:"id"`

	// UpdatePeriod is the sensor refresh interval in seconds.
	UpdatePeriod int `yaml:"update_period"`

	Temperature RangeConfig `yaml:"temperature"`
	Humidity    RangeConfig `yaml:"humidity"`

	// Secret is the passphrase the history-encryption key is derived from.
	// Set via CLIMASIM_DEVICE_SECRET in production.
	Secret string `yaml:"secret"`

	// Algorithm is the default encryption algorithm (AES or DES).
	Algorithm string `yaml:"algorithm"`

	// AllowFanControl is the initial fan-control permission flag.
	AllowFanControl bool `yaml:"allow_fan_control"`

	// HealthMaxAge overrides the data-freshness threshold in milliseconds.
	// When 0, the threshold defaults to twice the update period.
	HealthMaxAge int `yaml:"health_max_age"`
}

// RangeConfig is an inclusive integer range for generated sensor values.
type RangeConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// DatabaseConfig contains SQLite database settings for the audit log.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains settings for the best-effort reading forwarder.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Topic     string              `yaml:"topic"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains telemetry sink settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: CLIMASIM_SECTION_KEY
// For example: CLIMASIM_DEVICE_SECRET, CLIMASIM_API_PORT
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			ID:           "climasim-01",
			UpdatePeriod: 5,
			Temperature:  RangeConfig{Min: 18, Max: 30},
			Humidity:     RangeConfig{Min: 40, Max: 80},
			Algorithm:    "AES",
		},
		Database: DatabaseConfig{
			Path:        "./data/climasim.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "climasim-core",
			},
			QoS:   0,
			Topic: "climasim/readings",
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: CLIMASIM_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Device
	if v := os.Getenv("CLIMASIM_DEVICE_SECRET"); v != "" {
		cfg.Device.Secret = v
	}
	if v := os.Getenv("CLIMASIM_DEVICE_ALGORITHM"); v != "" {
		cfg.Device.Algorithm = v
	}

	// Database
	if v := os.Getenv("CLIMASIM_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("CLIMASIM_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("CLIMASIM_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("CLIMASIM_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("CLIMASIM_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("CLIMASIM_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// InfluxDB
	if v := os.Getenv("CLIMASIM_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors and security issues.
func (c *Config) Validate() error {
	var errs []string

	// Device validation
	if c.Device.ID == "" {
		errs = append(errs, "device.id is required")
	}
	if c.Device.UpdatePeriod < 1 {
		errs = append(errs, "device.update_period must be at least 1 second")
	}
	if c.Device.Temperature.Min > c.Device.Temperature.Max {
		errs = append(errs, "device.temperature.min must not exceed device.temperature.max")
	}
	if c.Device.Humidity.Min > c.Device.Humidity.Max {
		errs = append(errs, "device.humidity.min must not exceed device.humidity.max")
	}
	if c.Device.Algorithm == "" {
		errs = append(errs, "device.algorithm is required")
	}
	if c.Device.HealthMaxAge < 0 {
		errs = append(errs, "device.health_max_age must not be negative")
	}

	// The history encryption key is derived from this secret. An empty or
	// short secret would make every stored envelope trivially recoverable.
	const minSecretLength = 16
	if c.Device.Secret == "" {
		errs = append(errs, "device.secret is required (set CLIMASIM_DEVICE_SECRET environment variable)")
	} else if len(c.Device.Secret) < minSecretLength {
		errs = append(errs, "device.secret must be at least 16 characters")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.Topic == "" {
		errs = append(errs, "mqtt.topic is required when mqtt is enabled")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetUpdatePeriod returns the sensor update period as a Duration.
func (c *Config) GetUpdatePeriod() time.Duration {
	return time.Duration(c.Device.UpdatePeriod) * time.Second
}

// GetHealthMaxAge returns the data-freshness threshold. When no override is
// configured it defaults to twice the update period.
func (c *Config) GetHealthMaxAge() time.Duration {
	if c.Device.HealthMaxAge > 0 {
		return time.Duration(c.Device.HealthMaxAge) * time.Millisecond
	}
	return 2 * c.GetUpdatePeriod()
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
