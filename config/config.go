// Package config loads server configuration with Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	// Port is also read from the PORT environment variable.
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the "host:port" listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is "json" or "console".
	Format string `mapstructure:"format"`
	// ToFile also writes logs to File. Set by LOGGING=true.
	ToFile bool   `mapstructure:"to_file"`
	File   string `mapstructure:"file"`
}

// GameConfig holds room state machine settings.
type GameConfig struct {
	// ConclusionDelay separates the final board update from gameOver.
	ConclusionDelay time.Duration `mapstructure:"conclusion_delay"`
}

// WebSocketConfig holds per-connection transport settings.
type WebSocketConfig struct {
	ReadBufferSize  int           `mapstructure:"read_buffer_size"`
	WriteBufferSize int           `mapstructure:"write_buffer_size"`
	SendBuffer      int           `mapstructure:"send_buffer"`
	MaxMessageSize  int64         `mapstructure:"max_message_size"`
	WriteWait       time.Duration `mapstructure:"write_wait"`
	PongWait        time.Duration `mapstructure:"pong_wait"`
	PingPeriod      time.Duration `mapstructure:"ping_period"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Game      GameConfig      `mapstructure:"game"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
}

// Validate checks all configuration invariants and reports every violation.
func (c Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, "server.shutdown_timeout must not be negative")
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Game.ConclusionDelay < 0 {
		errs = append(errs, "game.conclusion_delay must not be negative")
	}
	if err := validateWebSocket(c.WebSocket); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.ToFile && l.File == "" {
		return errors.New("logging.file must not be empty when logging.to_file is set")
	}
	return nil
}

func validateWebSocket(w WebSocketConfig) error {
	var errs []string
	if w.SendBuffer < 1 {
		errs = append(errs, fmt.Sprintf("websocket.send_buffer must be >= 1, got %d", w.SendBuffer))
	}
	if w.MaxMessageSize < 1 {
		errs = append(errs, fmt.Sprintf("websocket.max_message_size must be >= 1, got %d", w.MaxMessageSize))
	}
	if w.PongWait <= 0 || w.WriteWait <= 0 {
		errs = append(errs, "websocket.pong_wait and websocket.write_wait must be positive")
	}
	if w.PingPeriod <= 0 || w.PingPeriod >= w.PongWait {
		errs = append(errs, "websocket.ping_period must be positive and shorter than websocket.pong_wait")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from path, if set, applies environment overrides
// (TTT_ prefix, plus PORT and LOGGING) and validates the result.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetEnvPrefix("TTT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "TTT_SERVER_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("binding server.port: %w", err)
	}
	if err := v.BindEnv("logging.to_file", "TTT_LOGGING_TO_FILE", "LOGGING"); err != nil {
		return Config{}, fmt.Errorf("binding logging.to_file: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3002)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.to_file", false)
	v.SetDefault("logging.file", "myapp.log")

	v.SetDefault("game.conclusion_delay", "300ms")

	v.SetDefault("websocket.read_buffer_size", 1024)
	v.SetDefault("websocket.write_buffer_size", 1024)
	v.SetDefault("websocket.send_buffer", 64)
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.ping_period", "54s")
}
