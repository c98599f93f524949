package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and then
// applies CHORDLAB_* environment overrides, re-validating the result.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// ApplyEnvOverrides applies CHORDLAB_* environment variables over a
// configuration. The caller is responsible for re-validating afterwards.
func ApplyEnvOverrides(cfg *Config) {
	if val := os.Getenv("CHORDLAB_SERVER_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Server.ListenAddress = fmt.Sprintf(":%d", port)
		}
	}
	if val := os.Getenv("CHORDLAB_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("CHORDLAB_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// The URL override targets the conventional local backend, creating
	// the entry when the file did not declare it.
	if val := os.Getenv("CHORDLAB_BACKEND_URL"); val != "" {
		be := cfg.Backends[DefaultBackendName]
		be.BaseURL = val
		if be.Type == "" {
			be.Type = "ollama"
		}
		if be.Timeout == 0 {
			be.Timeout = DefaultBackendTimeout
		}
		if be.HealthCheckInterval == 0 {
			be.HealthCheckInterval = DefaultHealthInterval
		}
		if cfg.Backends == nil {
			cfg.Backends = make(map[string]BackendConfig)
		}
		cfg.Backends[DefaultBackendName] = be
	}

	if val := os.Getenv("CHORDLAB_AGENTS_DIR"); val != "" {
		cfg.Agents.Dir = val
	}

	if val := os.Getenv("CHORDLAB_USAGE_DB_PATH"); val != "" {
		cfg.Usage.Backend = "sqlite"
		cfg.Usage.SQLite.Path = val
	}
	if val := os.Getenv("CHORDLAB_USAGE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Usage.Enabled = b
		}
	}

	if val := os.Getenv("CHORDLAB_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CHORDLAB_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("CHORDLAB_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
		cfg.Telemetry.Tracing.Enabled = true
	}
}
