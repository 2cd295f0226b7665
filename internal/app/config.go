package app

import (
	"errors"
	"fmt"
	"time"
)

// Commands understood by Run.
const (
	CommandRender = "render"
	CommandServe  = "serve"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command string
	// Inputs are page files or folders of pages. Serve uses the first one
	// as its page root.
	Inputs []string
	// OutputDir receives rendered pages; empty writes to the app's output.
	OutputDir string
	// ConfigPaths are .hcl/.yaml files or folders of them.
	ConfigPaths []string
	// ComponentsPath is a folder of local component sources.
	ComponentsPath string
	// BaseURL resolves namespace URIs that are not absolute URLs. A path
	// selects a local folder, an http(s) URL a remote server.
	BaseURL string

	Addr            string
	HealthcheckPort int
	FetchTimeout    time.Duration
	LogFormat       string
	LogLevel        string
}

// NewConfig validates cfg and fills defaults.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Command {
	case CommandRender:
		if len(cfg.Inputs) == 0 {
			return nil, errors.New("render needs at least one page")
		}
	case CommandServe:
		if len(cfg.Inputs) == 0 {
			cfg.Inputs = []string{"."}
		}
		if cfg.Addr == "" {
			cfg.Addr = ":8080"
		}
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}

	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	if cfg.HealthcheckPort < 0 {
		return nil, errors.New("healthcheck port must not be negative")
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "."
	}
	return &cfg, nil
}
