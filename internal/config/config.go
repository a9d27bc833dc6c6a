// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")
	// ErrInvalidConfig is returned when parsed values fail validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the complete service configuration.
type Config struct {
	Addr        string `env:"ADDR" envDefault:":8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`

	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`

	Machine Machine `envPrefix:"MACHINE_"`
	OIDC    OIDC    `envPrefix:"OIDC_"`
}

// Machine holds the container sizes used when no saved state exists.
type Machine struct {
	WaterCapacity float64 `env:"WATER_CAPACITY" envDefault:"2"`
	BeansCapacity int     `env:"BEANS_CAPACITY" envDefault:"40"`
}

// OIDC configures single sign-on.
type OIDC struct {
	Enabled      bool   `env:"ENABLED" envDefault:"false"`
	IssuerURL    string `env:"ISSUER_URL"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"`
}

// Load reads an optional .env file, then parses and validates the environment.
func Load() (Config, error) {
	// The .env file is optional.
	_ = godotenv.Load()
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var c Config
	if err := env.ParseWithOptions(&c, opts); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks value ranges and cross-field requirements.
func (c Config) Validate() error {
	var errs []error
	if c.Machine.WaterCapacity <= 0 {
		errs = append(errs, fmt.Errorf("MACHINE_WATER_CAPACITY must be positive, got %v", c.Machine.WaterCapacity))
	}
	if c.Machine.BeansCapacity <= 0 {
		errs = append(errs, fmt.Errorf("MACHINE_BEANS_CAPACITY must be positive, got %d", c.Machine.BeansCapacity))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be \"text\" or \"json\", got %q", c.LogFormat))
	}
	if c.SessionCleanupInterval <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_CLEANUP_INTERVAL must be positive, got %v", c.SessionCleanupInterval))
	}
	if c.OIDC.Enabled {
		for name, v := range map[string]string{
			"OIDC_ISSUER_URL":   c.OIDC.IssuerURL,
			"OIDC_CLIENT_ID":    c.OIDC.ClientID,
			"OIDC_REDIRECT_URL": c.OIDC.RedirectURL,
		} {
			if v == "" {
				errs = append(errs, fmt.Errorf("%s is required when OIDC is enabled", name))
			}
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}

// SlogLevel converts LogLevel into a slog.Level.
func (c Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return l, nil
}
