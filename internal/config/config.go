package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

const (
	PairingStoreMemory = "memory"
	PairingStoreRedis  = "redis"
)

type Config struct {
	Port                  int    `env:"PORT" envDefault:"8080"`
	DatabaseURL           string `env:"DATABASE_URL,required"`
	RedisURL              string `env:"REDIS_URL,required"`
	LogLevel              string `env:"LOG_LEVEL" envDefault:"info"`
	TopicPrefix           string `env:"RFID_TOPIC_PREFIX" envDefault:"rfid"`
	PairingStore          string `env:"PAIRING_STORE" envDefault:"memory"`
	PairingTimeoutSeconds int    `env:"PAIRING_TIMEOUT_SECONDS" envDefault:"60"`
	LookupTimeoutMillis   int    `env:"LOOKUP_TIMEOUT_MS" envDefault:"2000"`
	ReadRateLimitPerMin   int    `env:"READ_RATE_LIMIT_PER_MIN" envDefault:"120"`
	APIRateLimitPerMin    int    `env:"API_RATE_LIMIT_PER_MIN" envDefault:"300"`
	AutoMigrate           bool   `env:"AUTO_MIGRATE" envDefault:"false"`
}

func (c *Config) PairingTimeout() time.Duration {
	return time.Duration(c.PairingTimeoutSeconds) * time.Second
}

func (c *Config) LookupTimeout() time.Duration {
	return time.Duration(c.LookupTimeoutMillis) * time.Millisecond
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	switch c.PairingStore {
	case PairingStoreMemory, PairingStoreRedis:
	default:
		return fmt.Errorf("PAIRING_STORE must be %q or %q, got %q", PairingStoreMemory, PairingStoreRedis, c.PairingStore)
	}

	if c.PairingTimeoutSeconds <= 0 {
		return fmt.Errorf("PAIRING_TIMEOUT_SECONDS must be positive")
	}
	if c.LookupTimeoutMillis <= 0 {
		return fmt.Errorf("LOOKUP_TIMEOUT_MS must be positive")
	}
	if c.ReadRateLimitPerMin < 0 {
		return fmt.Errorf("READ_RATE_LIMIT_PER_MIN must not be negative")
	}
	if c.APIRateLimitPerMin < 0 {
		return fmt.Errorf("API_RATE_LIMIT_PER_MIN must not be negative")
	}

	prefix := strings.Trim(c.TopicPrefix, "/")
	if prefix == "" || strings.ContainsAny(prefix, "*?[]+#") {
		return fmt.Errorf("RFID_TOPIC_PREFIX %q is not a valid topic prefix", c.TopicPrefix)
	}

	if isProduction {
		if c.PairingStore == PairingStoreMemory {
			log.Warn().Msg("PAIRING_STORE=memory in production: pairing sessions are not shared across instances")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.TopicPrefix = strings.Trim(cfg.TopicPrefix, "/")
	return &cfg, nil
}
