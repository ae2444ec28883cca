package app

import (
	"fmt"

	"github.com/Netflix/go-env"
)

// Config holds runtime options, read from KYRO_* environment variables.
// Command-line flags override individual fields after loading.
type Config struct {
	MaxSkipped   int    `env:"KYRO_MAX_SKIPPED,default=1000"`
	MaxSkipAhead int    `env:"KYRO_MAX_SKIP_AHEAD,default=65536"`
	LogLevel     string `env:"KYRO_LOG_LEVEL,default=INFO"`
}

// LoadConfig reads Config from the process environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the ratchet cannot use.
func (c Config) Validate() error {
	if c.MaxSkipped < 0 {
		return fmt.Errorf("config error: KYRO_MAX_SKIPPED must not be negative, got %d", c.MaxSkipped)
	}
	if c.MaxSkipAhead < 0 || int64(c.MaxSkipAhead) > int64(^uint32(0)) {
		return fmt.Errorf("config error: KYRO_MAX_SKIP_AHEAD out of range, got %d", c.MaxSkipAhead)
	}
	return nil
}
