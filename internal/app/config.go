package app

import (
	"errors"
	"fmt"

	"github.com/vk/fusegrid/internal/pipeline"
)

// Plan output formats.
const (
	FormatYAML     = "yaml"
	FormatWorkflow = "workflow"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPaths []string // hcl files or directories
	Pipeline    string
	Filter      pipeline.FilterOptions

	LogFormat  string
	LogLevel   string
	StatusPort int

	// AsyncIO forces asynchronous artifact I/O on top of the project setting.
	AsyncIO bool
	// DefaultResourceClass overrides the project's default class when set.
	DefaultResourceClass string

	Format string
	Image  string
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ConfigPaths) == 0 {
		return nil, errors.New("ConfigPaths is a required configuration field and cannot be empty")
	}
	if _, ok := parseLevel(cfg.LogLevel); !ok {
		return nil, fmt.Errorf("invalid log level %q (want debug, info, warn or error)", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q (want text or json)", cfg.LogFormat)
	}
	switch cfg.Format {
	case "":
		cfg.Format = FormatYAML
	case FormatYAML, FormatWorkflow:
	default:
		return nil, fmt.Errorf("invalid plan format %q (want %s or %s)", cfg.Format, FormatYAML, FormatWorkflow)
	}
	if cfg.StatusPort < 0 || cfg.StatusPort > 65535 {
		return nil, fmt.Errorf("invalid status port %d", cfg.StatusPort)
	}
	return &cfg, nil
}
