package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8084", cfg.GetServerAddr())
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, 10*time.Millisecond, cfg.Serial.ReadTimeout)
	assert.Equal(t, 15*time.Millisecond, cfg.Serial.PollInterval)
	assert.Equal(t, 256, cfg.Serial.EventBuffer)
	assert.Equal(t, "master", cfg.Bridge.DefaultMode)
	assert.Equal(t, 1400*time.Millisecond, cfg.Bridge.IndicatorHold)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
serial:
  port: /dev/ttyUSB0
  baud_rate: 9600
  auto_connect: true
bridge:
  default_mode: slave
  indicator_hold: 2s
mqtt:
  enabled: true
  broker_url: tcp://broker:1883
  qos: 1
app:
  environment: production
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.GetServerAddr())
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.True(t, cfg.Serial.AutoConnect)
	assert.Equal(t, "slave", cfg.Bridge.DefaultMode)
	assert.Equal(t, 2*time.Second, cfg.Bridge.IndicatorHold)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.True(t, cfg.IsProduction())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("BOARD_BRIDGE_SERIAL_BAUD_RATE", "57600")
	t.Setenv("BOARD_BRIDGE_LOGGING_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, "serial:\n  baud_rate: 9600\n"))
	require.NoError(t, err)
	assert.Equal(t, 57600, cfg.Serial.BaudRate)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"baud rate", "serial:\n  baud_rate: 38400\n", "serial.baud_rate"},
		{"auto connect without port", "serial:\n  auto_connect: true\n", "serial.port"},
		{"mode", "bridge:\n  default_mode: turbo\n", "bridge.default_mode"},
		{"level", "logging:\n  level: verbose\n", "logging.level"},
		{"environment", "app:\n  environment: moon\n", "app.environment"},
		{"qos", "mqtt:\n  enabled: true\n  qos: 3\n", "mqtt.qos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
