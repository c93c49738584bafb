package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PlatformPaths []string // hcl files or directories
	HobList       string   // overrides hob_list from the platform description
	Volumes       []string // extra firmware volume files or directories

	Strict              bool
	NoDepexRequiresArch bool

	LogFormat       string
	LogLevel        string
	Colored         bool
	MonitorURL      string
	MetricsFile     string
	HealthcheckPort int
}

// NewConfig validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.PlatformPaths) == 0 && len(cfg.Volumes) == 0 {
		return nil, errors.New("at least one platform description or firmware volume is required")
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	return &cfg, nil
}
