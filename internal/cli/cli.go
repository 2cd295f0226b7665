package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/specialistvlad/compositor/internal/app"
)

// EnvPrefix prefixes the environment variables that supply flag defaults.
const EnvPrefix = "COMPOSITOR_"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// listFlag collects a repeatable, comma separated flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

const usage = `
Compositor - server-side rendering of HTML component pages.

Usage:
  compositor render [options] PAGE...
  compositor serve  [options] [ROOT]

Commands:
  render  Render pages (files or folders of .html files) once.
  serve   Serve the pages below ROOT, rendering them on every request.

Every option can also be set through an environment variable named
COMPOSITOR_<OPTION>, e.g. COMPOSITOR_LOG_LEVEL=debug.

Options:
`

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("compositor", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usage)
		flagSet.PrintDefaults()
	}

	if len(args) == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	command := args[0]
	switch command {
	case app.CommandRender, app.CommandServe:
		args = args[1:]
	case "-h", "-help", "--help", "help":
		flagSet.Usage()
		return nil, true, nil
	default:
		if strings.HasPrefix(command, "-") {
			if err := flagSet.Parse(args); err != nil {
				if errors.Is(err, flag.ErrHelp) {
					return nil, true, nil
				}
				return nil, false, &ExitError{Code: 2, Message: err.Error()}
			}
		}
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q: expected render or serve", command)}
	}

	var configPaths listFlag
	if v := env("CONFIG"); v != "" {
		_ = configPaths.Set(v)
	}
	flagSet.Var(&configPaths, "config", "Configuration file or folder (.hcl, .yaml). Repeatable or comma separated.")
	componentsFlag := flagSet.String("components", env("COMPONENTS"), "Folder of local component sources.")
	baseURLFlag := flagSet.String("base-url", envOr("BASE_URL", "."), "Folder or http(s) URL that relative namespace URIs resolve against.")
	outFlag := flagSet.String("out", env("OUT"), "Output folder for rendered pages. Empty writes to stdout.")
	addrFlag := flagSet.String("addr", envOr("ADDR", ":8080"), "Listen address for serve.")
	healthPortFlag := flagSet.Int("healthcheck-port", envInt("HEALTHCHECK_PORT", 0), "Port for the HTTP health check server while rendering. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", envOr("LOG_FORMAT", "json"), "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", envOr("LOG_LEVEL", "info"), "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	fetchTimeoutFlag := flagSet.Duration("fetch-timeout", envDuration("FETCH_TIMEOUT", 10*time.Second), "Timeout of a single component fetch.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.", "command", command)

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

	if command == app.CommandRender && flagSet.NArg() == 0 {
		slog.Debug("No pages provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(app.Config{
		Command:         command,
		Inputs:          flagSet.Args(),
		OutputDir:       *outFlag,
		ConfigPaths:     configPaths,
		ComponentsPath:  *componentsFlag,
		BaseURL:         *baseURLFlag,
		Addr:            *addrFlag,
		HealthcheckPort: *healthPortFlag,
		FetchTimeout:    *fetchTimeoutFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

func env(name string) string {
	return os.Getenv(EnvPrefix + name)
}

func envOr(name, def string) string {
	if v := env(name); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) int {
	if n, err := strconv.Atoi(env(name)); err == nil {
		return n
	}
	return def
}

func envDuration(name string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(env(name)); err == nil {
		return d
	}
	return def
}
