// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Serial   SerialConfig   `mapstructure:"serial"`
	Bridge   BridgeConfig   `mapstructure:"bridge"`
	Security SecurityConfig `mapstructure:"security"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	App      AppConfig      `mapstructure:"app"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host" validate:"required"`
	Port         string        `mapstructure:"port" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// SerialConfig represents the serial link defaults
type SerialConfig struct {
	// Port is opened at startup when AutoConnect is set
	Port         string        `mapstructure:"port"`
	BaudRate     int           `mapstructure:"baud_rate"`
	AutoConnect  bool          `mapstructure:"auto_connect"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	EventBuffer  int           `mapstructure:"event_buffer"`
}

// BridgeConfig represents command and response handling
type BridgeConfig struct {
	DefaultMode   string        `mapstructure:"default_mode"`
	IndicatorHold time.Duration `mapstructure:"indicator_hold"`
}

// SecurityConfig represents security configuration
type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MQTTConfig represents the optional event publisher
type MQTTConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BrokerURL   string        `mapstructure:"broker_url"`
	TopicPrefix string        `mapstructure:"topic_prefix"`
	ClientID    string        `mapstructure:"client_id"`
	QoS         byte          `mapstructure:"qos"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"required"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required"`
}

var (
	validEnvironments = []string{"development", "staging", "production", "test"}
	validLevels       = []string{"debug", "info", "warn", "error", "fatal"}
	validModes        = []string{"master", "slave", "text", "binary"}
	validBaudRates    = []int{9600, 19200, 57600, 115200, 230400}
)

// Load loads configuration from file and environment variables. An empty
// path searches the working directory and ./config for config.yaml; a
// missing file is not an error, defaults and environment still apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variable support
	v.SetEnvPrefix("BOARD_BRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8084")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")

	// Serial defaults
	v.SetDefault("serial.port", "")
	v.SetDefault("serial.baud_rate", 115200)
	v.SetDefault("serial.auto_connect", false)
	v.SetDefault("serial.read_timeout", "10ms")
	v.SetDefault("serial.poll_interval", "15ms")
	v.SetDefault("serial.event_buffer", 256)

	// Bridge defaults
	v.SetDefault("bridge.default_mode", "master")
	v.SetDefault("bridge.indicator_hold", "1400ms")

	// Security defaults
	v.SetDefault("security.allowed_origins", []string{"*"})

	// MQTT defaults
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker_url", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic_prefix", "board-bridge")
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.qos", 0)
	v.SetDefault("mqtt.timeout", "5s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// App defaults
	v.SetDefault("app.name", "board-bridge")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if config.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}

	if !containsInt(validBaudRates, config.Serial.BaudRate) {
		return fmt.Errorf("serial.baud_rate must be one of: %v", validBaudRates)
	}
	if config.Serial.AutoConnect && config.Serial.Port == "" {
		return fmt.Errorf("serial.port is required when serial.auto_connect is set")
	}
	if config.Serial.PollInterval <= 0 {
		return fmt.Errorf("serial.poll_interval must be positive")
	}
	if config.Serial.EventBuffer <= 0 {
		return fmt.Errorf("serial.event_buffer must be positive")
	}

	if !containsString(validModes, strings.ToLower(config.Bridge.DefaultMode)) {
		return fmt.Errorf("bridge.default_mode must be one of: %v", validModes)
	}
	if config.Bridge.IndicatorHold <= 0 {
		return fmt.Errorf("bridge.indicator_hold must be positive")
	}

	if config.MQTT.Enabled {
		if config.MQTT.BrokerURL == "" {
			return fmt.Errorf("mqtt.broker_url is required when mqtt is enabled")
		}
		if config.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
		}
	}

	if !containsString(validEnvironments, config.App.Environment) {
		return fmt.Errorf("app.environment must be one of: %v", validEnvironments)
	}
	if !containsString(validLevels, config.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	return nil
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

func containsInt(values []int, n int) bool {
	for _, v := range values {
		if v == n {
			return true
		}
	}
	return false
}

// GetServerAddr returns the server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
