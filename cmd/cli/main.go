package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/dxecore/internal/app"
	"github.com/vk/dxecore/internal/cli"
	"github.com/vk/dxecore/internal/hcl"
	"github.com/vk/dxecore/internal/registry"
)

// main is the entrypoint for the dxecore application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. With no modules the application's defaults are registered.
func run(ctx context.Context, outW io.Writer, args []string, modules ...registry.Module) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	dxeApp, err := newApp(outW, appConfig, modules)
	if err != nil {
		return err
	}
	// Component and driver panics are not recovered.
	_, err = dxeApp.Run(ctx)
	return err
}

// newApp builds the application. Registering two modules under one name
// panics; that is reported as a startup error instead of a stack trace.
func newApp(outW io.Writer, cfg *app.Config, modules []registry.Module) (_ *app.App, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()
	return app.NewApp(outW, cfg, hcl.NewLoader(), modules...)
}
