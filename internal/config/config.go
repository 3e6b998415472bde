// Package config loads service configuration from the environment.
// Variables use the CRASHGATE_ prefix with "__" separating nesting levels,
// e.g. CRASHGATE_AUTH__HMAC_SECRET maps to auth.hmac_secret.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CRASHGATE_"

// Storage backend names.
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
)

type Config struct {
	Primary       Primary              `koanf:"primary"`
	Server        ServerConfig         `koanf:"server"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Limits        LimitsConfig         `koanf:"limits"`
	Storage       StorageConfig        `koanf:"storage"`
	Database      DatabaseConfig       `koanf:"database"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

type Primary struct {
	Env string `koanf:"env"`
}

type ServerConfig struct {
	Port         string `koanf:"port"`
	ReadTimeout  int    `koanf:"read_timeout"`
	WriteTimeout int    `koanf:"write_timeout"`
	IdleTimeout  int    `koanf:"idle_timeout"`
}

type AuthConfig struct {
	// HMACSecret is the shared secret clients sign request bodies with.
	// The service refuses to start without it.
	HMACSecret string `koanf:"hmac_secret" validate:"required"`
}

type LimitsConfig struct {
	RequestsPerMinute int `koanf:"requests_per_minute" validate:"gte=0"`
	MaxBodyBytes      int `koanf:"max_body_bytes" validate:"gte=0"`
}

type StorageConfig struct {
	Backend  string `koanf:"backend" validate:"omitempty,oneof=rest postgres"`
	Endpoint string `koanf:"endpoint"`
	Token    string `koanf:"token"`
}

type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// Load reads and validates configuration from the environment.
func Load() (*Config, error) {
	k := koanf.New(".")
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if cfg.Observability == nil {
		cfg.Observability = DefaultObservabilityConfig()
	}
	cfg.Observability.ServiceName = "crashgate"
	cfg.Observability.Environment = cfg.Primary.Env
	if err := cfg.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("observability config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Primary.Env == "" {
		c.Primary.Env = "development"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 20
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 120
	}
	if c.Limits.RequestsPerMinute == 0 {
		c.Limits.RequestsPerMinute = 60
	}
	if c.Limits.MaxBodyBytes == 0 {
		c.Limits.MaxBodyBytes = 50000
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendREST
	}
}
