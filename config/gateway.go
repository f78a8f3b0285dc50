package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// ErrMissingToken is returned by Validate when no bot token is configured.
var ErrMissingToken = errors.New("no token specified, please specify one with --token")

// GatewayConfig holds gateway client configuration.
type GatewayConfig struct {
	Token    string   `env:"TOKEN"`
	Intent   int      `env:"INTENT"`
	LogLevel string   `env:"LOGLEVEL"`
	Modules  []string `env:"MODULES" envSeparator:","`
	BotName  string   `env:"BOT_NAME"` // heads the help listing

	APIBase          string        `env:"API_BASE"`
	GatewayVersion   int           `env:"GATEWAY_VERSION"`
	Encoding         string        `env:"GATEWAY_ENCODING"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT"`
	HandshakeTimeout time.Duration `env:"HANDSHAKE_TIMEOUT"`
	ReadLimit        int64         `env:"READ_LIMIT"` // inbound frame size cap in bytes

	ReconnectInitial  time.Duration `env:"RECONNECT_INITIAL"`
	ReconnectMax      time.Duration `env:"RECONNECT_MAX"`
	ReconnectAttempts int           `env:"RECONNECT_ATTEMPTS"` // 0 means unlimited

	StatusAddr string `env:"STATUS_ADDR"` // empty disables the status server
}

// DefaultConfig returns the default gateway configuration.
func DefaultConfig() *GatewayConfig {
	return &GatewayConfig{
		Intent:            14103,
		LogLevel:          "info",
		Modules:           []string{"Echo"},
		BotName:           "Squirt-Bot",
		APIBase:           "https://discord.com/api/v9",
		GatewayVersion:    9,
		Encoding:          "json",
		RequestTimeout:    10 * time.Second,
		HandshakeTimeout:  10 * time.Second,
		ReadLimit:         100 << 20,
		ReconnectInitial:  time.Second,
		ReconnectMax:      time.Minute,
		ReconnectAttempts: 10,
	}
}

// FromEnv loads configuration from environment variables over the defaults.
func FromEnv() (*GatewayConfig, error) {
	cfg := DefaultConfig()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse gateway env: %w", err)
	}
	return cfg, nil
}

// Level parses LogLevel. Names are case-insensitive.
func (c *GatewayConfig) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// Validate checks the settings the client cannot start without.
func (c *GatewayConfig) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	if c.GatewayVersion <= 0 {
		return fmt.Errorf("gateway version must be positive, got %d", c.GatewayVersion)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}
