package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"chordlab/relay/pkg/agents"
	"chordlab/relay/pkg/backend"
	"chordlab/relay/pkg/backendfactory"
	"chordlab/relay/pkg/cli"
	"chordlab/relay/pkg/config"
	"chordlab/relay/pkg/server"
	"chordlab/relay/pkg/session"
	"chordlab/relay/pkg/telemetry/logging"
	"chordlab/relay/pkg/telemetry/metrics"
	"chordlab/relay/pkg/telemetry/tracing"
	"chordlab/relay/pkg/usage"
	"chordlab/relay/pkg/usage/recorder"
	"chordlab/relay/pkg/usage/retention"
	"chordlab/relay/pkg/usage/storage"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the relay server",
	Long: `Start the relay server with the specified configuration.

The server listens on the configured address, relays chat turns to the
configured backends, and streams responses back as Server-Sent Events.

Examples:
  # Start with default config
  relayd run

  # Start with custom config
  relayd run --config /etc/chordlab/relay.yaml

  # Override listen address
  relayd run --listen 0.0.0.0:8080

  # Validate config without starting server
  relayd run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if _, err := logging.Setup(cfg.Telemetry.Logging); err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("ChordLab relay v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx := cli.SetupSignalHandler()

	// Tracing
	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to initialize tracing: %w", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("tracer shutdown failed", "error", err)
		}
	}()

	// Metrics
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	// Backends
	slog.Info("initializing backend manager", "backends", len(cfg.Backends))
	manager := backendfactory.NewManager()
	defer manager.Close()

	for name, backendCfg := range cfg.Backends {
		if err := manager.Add(backend.Config{
			Name:                name,
			Type:                backendCfg.Type,
			BaseURL:             backendCfg.BaseURL,
			Timeout:             backendCfg.Timeout,
			HealthCheckInterval: backendCfg.HealthCheckInterval,
		}); err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to add backend %q: %w", name, err))
		}
	}
	fmt.Printf("✓ Backends initialized (%d configured)\n", manager.Count())

	if collector != nil {
		go watchBackendHealth(ctx, manager, collector)
	}

	// Agent profiles
	agentStore, err := agents.NewStore(cfg.Agents.Dir)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to load agent profiles: %w", err))
	}
	fmt.Printf("✓ Agent profiles loaded (%d profiles)\n", len(agentStore.List()))

	if cfg.Agents.Watch {
		watcher, err := agents.NewWatcher(agentStore)
		if err != nil {
			slog.Warn("failed to start profile watcher", "error", err)
		} else {
			go func() {
				if err := watcher.Watch(ctx); err != nil && ctx.Err() == nil {
					slog.Error("profile watcher stopped", "error", err)
				}
			}()
			defer watcher.Stop()
		}
	}

	// Usage accounting
	var turnRecorder *recorder.Recorder
	if cfg.Usage.Enabled {
		usageStorage, err := newUsageStorage(cfg)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer usageStorage.Close()

		turnRecorder = recorder.New(usageStorage, &recorder.Config{
			Enabled:     true,
			AsyncBuffer: cfg.Usage.AsyncBuffer,
		})
		defer turnRecorder.Close()

		if cfg.Usage.Retention.Schedule != "" && cfg.Usage.Retention.Days > 0 {
			pruner := retention.NewPruner(usageStorage, &retention.Config{
				RetentionDays: cfg.Usage.Retention.Days,
				PruneSchedule: cfg.Usage.Retention.Schedule,
			})
			scheduler := retention.NewScheduler(pruner)
			if err := scheduler.Start(ctx); err != nil {
				slog.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer scheduler.Stop()
			}
		}

		fmt.Println("✓ Usage accounting initialized")
	}

	// HTTP server
	deps := server.Dependencies{
		Registry: manager,
		Sessions: session.NewStore(),
		Locks:    session.NewKeyedMutex(),
		Agents:   agentStore,
		Metrics:  collector,
	}
	if turnRecorder != nil {
		deps.Recorder = turnRecorder
	}
	srv := server.NewServer(&cfg.Server, deps)

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Server.ListenAddress)
	if collector != nil {
		fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Server.ListenAddress)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// newUsageStorage creates the configured usage storage backend.
func newUsageStorage(cfg *config.Config) (usage.Storage, error) {
	switch cfg.Usage.Backend {
	case "sqlite":
		sqliteCfg := storage.DefaultSQLiteConfig()
		if cfg.Usage.SQLite.Path != "" {
			sqliteCfg.Path = cfg.Usage.SQLite.Path
		}
		store, err := storage.NewSQLiteStorage(sqliteCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite storage: %w", err)
		}
		return store, nil
	case "memory", "":
		return storage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported usage backend: %s", cfg.Usage.Backend)
	}
}

// watchBackendHealth periodically mirrors backend health into the
// metrics gauge.
func watchBackendHealth(ctx context.Context, manager *backendfactory.Manager, collector *metrics.Collector) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, name := range manager.Names() {
				be, ok := manager.Get(name)
				if !ok {
					continue
				}
				collector.UpdateBackendHealth(name, be.IsHealthy())
			}
		}
	}
}
