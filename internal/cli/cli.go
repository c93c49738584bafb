package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gookit/color"
	"github.com/vk/dxecore/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// ExitCode maps an error returned by the application to a process exit code.
func ExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, app.ErrUnclean):
		return 1
	default:
		return 3
	}
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("dxecore", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
dxecore - dispatches a firmware boot session on the host and reports its outcome.

Usage:
  dxecore [options] [PLATFORM_PATH...]

Arguments:
  PLATFORM_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	var volumes, platforms stringList
	flagSet.Var(&platforms, "platform", "Platform description file or directory. Repeatable.")
	flagSet.Var(&volumes, "fv", "Firmware volume file or directory (.fv, .fv.zst, .fv.gz, .fd). Repeatable.")
	hobListFlag := flagSet.String("hob-list", "", "Raw hand-off block list file. Overrides hob_list.")
	strictFlag := flagSet.Bool("strict", false, "Exit with status 1 when any unit failed or was left waiting.")
	archFlag := flagSet.Bool("no-depex-requires-arch", false, "Drivers without a dependency expression wait for all architectural protocols.")
	monitorFlag := flagSet.String("monitor-url", "", "socket.io server that receives dispatch events.")
	metricsFlag := flagSet.String("metrics-file", "", "Write dispatch metrics in Prometheus text format to this file.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	colorFlag := flagSet.String("color", "auto", "Color the report. Options: 'auto', 'always', 'never'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	platforms = append(platforms, flagSet.Args()...)
	if len(platforms) == 0 && len(volumes) == 0 {
		slog.Debug("Nothing to boot, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	var colored bool
	switch strings.ToLower(*colorFlag) {
	case "auto":
		colored = color.SupportColor()
	case "always":
		colored = true
	case "never":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid color: must be 'auto', 'always', or 'never'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		PlatformPaths:       platforms,
		HobList:             *hobListFlag,
		Volumes:             volumes,
		Strict:              *strictFlag,
		NoDepexRequiresArch: *archFlag,
		LogFormat:           logFormat,
		LogLevel:            logLevel,
		Colored:             colored,
		MonitorURL:          *monitorFlag,
		MetricsFile:         *metricsFlag,
		HealthcheckPort:     *healthPortFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
