package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/dxecore/internal/config"
	"github.com/vk/dxecore/internal/ctxlog"
	"github.com/vk/dxecore/internal/metrics"
	"github.com/vk/dxecore/internal/registry"
)

// ErrUnclean is returned by Run in strict mode when a unit failed or was
// left waiting.
var ErrUnclean = errors.New("boot session did not converge cleanly")

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	registry  *registry.Registry
	model     *config.Model
	converter config.Converter
	metrics   *metrics.Metrics

	httpServer *http.Server
}

// NewApp loads the platform description, registers modules and validates
// one against the other. With no modules, DefaultModules is used.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, converter, err := loader.Load(ctx, cfg.PlatformPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load platform description: %w", err)
	}
	logger.Debug("Platform description loaded and translated into unified model.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = DefaultModules(outW)
	}
	reg.RegisterModules(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.Validate(ctx, model); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.")

	a := &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		registry:  reg,
		model:     model,
		converter: converter,
	}
	if cfg.MetricsFile != "" || cfg.HealthcheckPort > 0 {
		a.metrics = metrics.New()
	}
	return a, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded platform description.
func (a *App) Model() *config.Model {
	return a.model
}

// Metrics returns the dispatch metrics, or nil when neither a metrics file
// nor the healthcheck server was requested.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}
