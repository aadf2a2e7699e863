package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds FILLBOX_* overrides. Zero values mean unset.
type EnvConfig struct {
	ConfigPath  string        `env:"FILLBOX_CONFIG"`
	Mode        string        `env:"FILLBOX_MODE"`
	Boxes       int           `env:"FILLBOX_BOXES"`
	ClearDelay  time.Duration `env:"FILLBOX_CLEAR_DELAY"`
	Backend     string        `env:"FILLBOX_STORAGE"`
	DBPath      string        `env:"FILLBOX_DB"`
	RedisAddr   string        `env:"FILLBOX_REDIS_ADDR"`
	RedisPrefix string        `env:"FILLBOX_REDIS_PREFIX"`
	LogLevel    string        `env:"FILLBOX_LOG_LEVEL"`
	LogFile     string        `env:"FILLBOX_LOG_FILE"`
}

// LoadEnv reads overrides from the process environment.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
