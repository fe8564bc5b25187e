package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// overrides mirrors the environment variables that may replace file values.
// Unset variables leave the zero value, which means "keep the file value".
type overrides struct {
	BaseURL     string `env:"PREDICT_BASE_URL"`
	Mode        string `env:"PREDICT_MODE"`
	LogLevel    string `env:"PREDICT_LOG_LEVEL"`
	MetricsAddr string `env:"PREDICT_METRICS_ADDR"`
	Timeout     int    `env:"PREDICT_TIMEOUT_SECONDS"`
}

// ApplyEnv loads dotenv files (default ".env"; missing files are fine) and
// applies PREDICT_* variables on top of c.
func (c *Config) ApplyEnv(dotenv ...string) error {
	if err := godotenv.Load(dotenv...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load dotenv: %w", err)
	}
	var o overrides
	if err := env.Load(&o, nil); err != nil {
		return fmt.Errorf("load environment variables: %w", err)
	}
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.Mode != "" {
		c.Mode = o.Mode
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.MetricsAddr != "" {
		c.MetricsAddr = o.MetricsAddr
	}
	if o.Timeout > 0 {
		c.RequestTimeoutSeconds = o.Timeout
	}
	return c.Validate()
}
