package config

import "time"

// Default values applied to unset fields.
const (
	DefaultListenAddress   = ":8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20 // 1MB

	DefaultBackendName    = "local-backend"
	DefaultBackendURL     = "http://localhost:11434"
	DefaultBackendTimeout = 60 * time.Second
	DefaultHealthInterval = 30 * time.Second

	DefaultAgentsDir = "./agents"

	DefaultUsageBackend   = "memory"
	DefaultAsyncBuffer    = 1000
	DefaultRetentionDays  = 30
	DefaultPruneSchedule  = "0 3 * * *"
	DefaultMetricsPath    = "/metrics"
	DefaultMetricsNS      = "chordlab"
	DefaultMetricsSubsys  = "relay"
	DefaultTracingService = "chordlab-relay"
)

// ApplyDefaults fills unset fields with their defaults. A config with no
// backends gets the conventional local one, so an empty file is runnable.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if len(cfg.Server.CORS.AllowedOrigins) == 0 {
		cfg.Server.CORS.AllowedOrigins = []string{"*"}
	}

	if len(cfg.Backends) == 0 {
		cfg.Backends = map[string]BackendConfig{
			DefaultBackendName: {},
		}
	}
	for name, be := range cfg.Backends {
		if be.Type == "" {
			be.Type = "ollama"
		}
		if be.BaseURL == "" {
			be.BaseURL = DefaultBackendURL
		}
		if be.Timeout == 0 {
			be.Timeout = DefaultBackendTimeout
		}
		if be.HealthCheckInterval == 0 {
			be.HealthCheckInterval = DefaultHealthInterval
		}
		cfg.Backends[name] = be
	}

	if cfg.Agents.Dir == "" {
		cfg.Agents.Dir = DefaultAgentsDir
	}

	if cfg.Usage.Backend == "" {
		cfg.Usage.Backend = DefaultUsageBackend
	}
	if cfg.Usage.AsyncBuffer == 0 {
		cfg.Usage.AsyncBuffer = DefaultAsyncBuffer
	}
	if cfg.Usage.Retention.Days == 0 {
		cfg.Usage.Retention.Days = DefaultRetentionDays
	}
	if cfg.Usage.Retention.Schedule == "" {
		cfg.Usage.Retention.Schedule = DefaultPruneSchedule
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNS
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsys
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = 1.0
	}
}

// DefaultConfig returns a fully defaulted configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
