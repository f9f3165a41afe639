package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
site:
  id: "test-site"
serial:
  device: "/dev/ttyS1"
  baud_rate: 19200
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-site" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-site")
	}

	if cfg.Serial.Device != "/dev/ttyS1" {
		t.Errorf("Serial.Device = %q, want %q", cfg.Serial.Device, "/dev/ttyS1")
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}

	// Unset sections keep their defaults.
	if cfg.Engine.CommandTimeout != 5 {
		t.Errorf("Engine.CommandTimeout = %d, want default 5", cfg.Engine.CommandTimeout)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
site:
  id: ""
serial:
  device: "/dev/ttyS1"
database:
  path: "/tmp/test.db"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty site.id, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Site:     SiteConfig{ID: "site-001"},
			Serial:   SerialConfig{Device: "/dev/ttyUSB0", BaudRate: 19200},
			Engine:   EngineConfig{QueueSize: 32, CommandTimeout: 5},
			Database: DatabaseConfig{Path: "/data/litejet.db"},
			MQTT:     MQTTConfig{QoS: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing site ID",
			mutate:  func(c *Config) { c.Site.ID = "" },
			wantErr: true,
		},
		{
			name:    "missing serial device",
			mutate:  func(c *Config) { c.Serial.Device = "" },
			wantErr: true,
		},
		{
			name:    "zero baud rate",
			mutate:  func(c *Config) { c.Serial.BaudRate = 0 },
			wantErr: true,
		},
		{
			name:    "negative queue size",
			mutate:  func(c *Config) { c.Engine.QueueSize = -1 },
			wantErr: true,
		},
		{
			name:    "zero command timeout",
			mutate:  func(c *Config) { c.Engine.CommandTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "negative retention",
			mutate:  func(c *Config) { c.Database.RetentionDays = -7 },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name: "influxdb enabled without token",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = "http://localhost:8086"
			},
			wantErr: true,
		},
		{
			name: "influxdb enabled with credentials",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = "http://localhost:8086"
				c.InfluxDB.Token = "token"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := &Config{
		Engine:   EngineConfig{CommandTimeout: 7},
		Bridge:   BridgeConfig{HealthInterval: 45},
		Database: DatabaseConfig{RetentionDays: 30},
	}

	if got := cfg.GetCommandTimeout().Seconds(); got != 7 {
		t.Errorf("GetCommandTimeout() = %v, want 7", got)
	}

	if got := cfg.GetHealthInterval().Seconds(); got != 45 {
		t.Errorf("GetHealthInterval() = %v, want 45", got)
	}

	if got := cfg.GetRetention().Hours(); got != 30*24 {
		t.Errorf("GetRetention() = %v hours, want %v", got, 30*24)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("LITEJET_SERIAL_DEVICE", "/dev/ttyAMA0")
	t.Setenv("LITEJET_SERIAL_BAUD_RATE", "9600")
	t.Setenv("LITEJET_DATABASE_PATH", "/custom/path.db")
	t.Setenv("LITEJET_MQTT_HOST", "mqtt.example.com")
	t.Setenv("LITEJET_MQTT_USERNAME", "testuser")
	t.Setenv("LITEJET_MQTT_PASSWORD", "testpass")
	t.Setenv("LITEJET_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	if cfg.Serial.Device != "/dev/ttyAMA0" {
		t.Errorf("Serial.Device = %q, want %q", cfg.Serial.Device, "/dev/ttyAMA0")
	}

	if cfg.Serial.BaudRate != 9600 {
		t.Errorf("Serial.BaudRate = %d, want 9600", cfg.Serial.BaudRate)
	}

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}

	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}

	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
}

func TestApplyEnvOverrides_BadBaudIgnored(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("LITEJET_SERIAL_BAUD_RATE", "fast")

	applyEnvOverrides(cfg)

	if cfg.Serial.BaudRate != 19200 {
		t.Errorf("Serial.BaudRate = %d, want default 19200", cfg.Serial.BaudRate)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Site.ID == "" {
		t.Error("defaultConfig should have non-empty Site.ID")
	}

	if cfg.Serial.BaudRate != 19200 {
		t.Errorf("defaultConfig Serial.BaudRate = %d, want 19200", cfg.Serial.BaudRate)
	}

	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig does not validate: %v", err)
	}
}
