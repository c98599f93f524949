package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	// Field is the dotted path of the invalid field.
	Field string

	// Message describes what is invalid.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates all validation failures of one pass.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the whole configuration tree and reports every failure,
// not just the first.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	add := func(field, message string) {
		errs = append(errs, &ValidationError{Field: field, Message: message})
	}

	if cfg.Server.ListenAddress == "" {
		add("server.listen_address", "listen address is required")
	}
	if cfg.Server.ReadTimeout < 0 {
		add("server.read_timeout", "must not be negative")
	}
	if cfg.Server.ShutdownTimeout < 0 {
		add("server.shutdown_timeout", "must not be negative")
	}

	if len(cfg.Backends) == 0 {
		add("backends", "at least one backend is required")
	}
	for name, be := range cfg.Backends {
		field := fmt.Sprintf("backends.%s", name)

		if name == "" {
			add("backends", "backend name must not be empty")
		}
		if be.Type != "" && be.Type != "ollama" {
			add(field+".type", fmt.Sprintf("unsupported backend type %q", be.Type))
		}
		if be.BaseURL == "" {
			add(field+".base_url", "base URL is required")
		} else if u, err := url.Parse(be.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			add(field+".base_url", fmt.Sprintf("invalid base URL %q", be.BaseURL))
		}
		if be.Timeout < 0 {
			add(field+".timeout", "must not be negative")
		}
	}

	switch cfg.Usage.Backend {
	case "", "memory":
	case "sqlite":
		if cfg.Usage.SQLite.Path == "" {
			add("usage.sqlite.path", "path is required for the sqlite backend")
		}
	default:
		add("usage.backend", fmt.Sprintf("unsupported usage backend %q", cfg.Usage.Backend))
	}
	if cfg.Usage.Retention.Days < 0 {
		add("usage.retention.days", "must not be negative")
	}
	if cfg.Usage.Retention.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Usage.Retention.Schedule); err != nil {
			add("usage.retention.schedule", fmt.Sprintf("invalid cron expression: %v", err))
		}
	}

	switch cfg.Telemetry.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		add("telemetry.logging.level", fmt.Sprintf("unknown log level %q", cfg.Telemetry.Logging.Level))
	}
	switch cfg.Telemetry.Logging.Format {
	case "", "json", "text":
	default:
		add("telemetry.logging.format", fmt.Sprintf("unknown log format %q", cfg.Telemetry.Logging.Format))
	}

	if cfg.Telemetry.Tracing.Enabled && cfg.Telemetry.Tracing.Endpoint == "" {
		add("telemetry.tracing.endpoint", "endpoint is required when tracing is enabled")
	}
	if r := cfg.Telemetry.Tracing.SampleRatio; r < 0 || r > 1 {
		add("telemetry.tracing.sample_ratio", "must be between 0.0 and 1.0")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
