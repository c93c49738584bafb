package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/dxecore/internal/core"
	"github.com/vk/dxecore/internal/ctxlog"
)

// Run executes one boot session and prints its report. The report is
// returned whenever the session ran, even alongside an error.
func (a *App) Run(ctx context.Context) (report *core.Report, err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.config.HealthcheckPort)
		defer func() {
			err = errors.Join(err, a.closeHealthcheckServer(ctx))
		}()
	}

	c, closers, err := a.buildCore(ctx)
	defer func() {
		for _, cl := range closers {
			if cerr := cl.Close(); cerr != nil {
				a.logger.Warn("Failed to close observer.", "error", cerr)
			}
		}
	}()
	if err != nil {
		return nil, fmt.Errorf("failed to assemble boot session: %w", err)
	}
	a.logger.Debug("Boot session assembled.", "components", len(a.registry.Components()))

	report, startErr := c.Start(ctx)
	if report == nil {
		return nil, fmt.Errorf("boot session failed: %w", startErr)
	}
	report.Print(a.outW, a.config.Colored)

	if a.config.MetricsFile != "" {
		if err := a.metrics.WriteFile(a.config.MetricsFile); err != nil {
			return report, err
		}
		a.logger.Debug("Metrics written.", "file", a.config.MetricsFile)
	}
	if startErr != nil {
		return report, fmt.Errorf("boot session interrupted: %w", startErr)
	}

	if (a.config.Strict || a.model.Core.Strict) && !report.Clean() {
		return report, fmt.Errorf("%w: %d failed, %d stuck", ErrUnclean, len(report.Failed()), len(report.Stuck()))
	}
	a.logger.Debug("App.Run method finished.")
	return report, nil
}
