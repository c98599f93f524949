package config

import "time"

// Config is the root configuration for the relay daemon.
type Config struct {
	// Server configures the HTTP server.
	Server ServerConfig `yaml:"server"`

	// Backends maps provider ids to backend configurations.
	Backends map[string]BackendConfig `yaml:"backends"`

	// Agents configures the agent profile store.
	Agents AgentsConfig `yaml:"agents"`

	// Usage configures the usage recorder.
	Usage UsageConfig `yaml:"usage"`

	// Telemetry configures logging, metrics, and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// ListenAddress is the address the server binds to (e.g., ":8080").
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout bounds reading the request, including the body.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// IdleTimeout bounds how long keep-alive connections stay open.
	// There is deliberately no write timeout: the stream route holds
	// the response open for the lifetime of a turn.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS configures cross-origin access for the browser client.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains cross-origin settings.
type CORSConfig struct {
	// AllowedOrigins lists the origins allowed to call the API.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// BackendConfig describes one model-serving backend.
type BackendConfig struct {
	// Type is the backend protocol type; "ollama" is the only supported
	// type, and blank means ollama.
	Type string `yaml:"type"`

	// BaseURL is the backend's base URL.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds non-streaming requests and the connect phase of
	// streaming ones.
	Timeout time.Duration `yaml:"timeout"`

	// HealthCheckInterval is how often the backend is probed.
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
}

// AgentsConfig configures the agent profile store.
type AgentsConfig struct {
	// Dir is the directory holding the profile markdown files.
	Dir string `yaml:"dir"`

	// Watch enables live reload on file changes.
	Watch bool `yaml:"watch"`
}

// UsageConfig configures the usage recorder.
type UsageConfig struct {
	// Enabled enables usage recording.
	Enabled bool `yaml:"enabled"`

	// Backend is the storage backend: "memory" or "sqlite".
	Backend string `yaml:"backend"`

	// SQLite configures the sqlite storage backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// AsyncBuffer is the size of the recorder's write queue.
	AsyncBuffer int `yaml:"async_buffer"`

	// Retention configures record pruning.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains sqlite storage settings.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`
}

// RetentionConfig configures usage record pruning.
type RetentionConfig struct {
	// Days is how long records are kept; zero disables pruning.
	Days int `yaml:"days"`

	// Schedule is the cron expression for the prune job.
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig groups the observability settings.
type TelemetryConfig struct {
	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus registry.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing configures OpenTelemetry tracing.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is the output format: json or text.
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled enables the metrics registry and endpoint.
	Enabled bool `yaml:"enabled"`

	// Path is the scrape endpoint path.
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric name subsystem.
	Subsystem string `yaml:"subsystem"`

	// TurnDurationBuckets are the histogram buckets for turn duration,
	// in seconds.
	TurnDurationBuckets []float64 `yaml:"turn_duration_buckets"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled enables span export; disabled yields a no-op tracer.
	Enabled bool `yaml:"enabled"`

	// ServiceName identifies this process in traces.
	ServiceName string `yaml:"service_name"`

	// Endpoint is the OTLP gRPC collector endpoint (host:port).
	Endpoint string `yaml:"endpoint"`

	// SampleRatio is the fraction of traces sampled (0.0 to 1.0).
	SampleRatio float64 `yaml:"sample_ratio"`

	// OTLP contains exporter transport settings.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter transport settings.
type OTLPConfig struct {
	// Insecure disables TLS on the exporter connection.
	Insecure bool `yaml:"insecure"`

	// Timeout bounds span export batches.
	Timeout time.Duration `yaml:"timeout"`
}
