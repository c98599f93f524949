package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chordlab/relay/pkg/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "relayd",
	Short: "ChordLab relay - streaming inference relay for local models",
	Long: `ChordLab relay sits between the composition client and a local
model-serving backend.

It accepts chat turns over HTTP, attaches them to per-session
conversations, forwards the conversation to the backend, and re-frames
the backend's NDJSON token stream as Server-Sent Events. Failed turns
roll back so a session never records a user message the model did not
answer.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "relay.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration file with environment overrides.
// A missing file is only an error when the user pointed at one
// explicitly; the default path silently falls back to built-in defaults.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) && !rootCmd.PersistentFlags().Changed("config") {
		cfg := config.DefaultConfig()
		config.ApplyEnvOverrides(cfg)
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return config.LoadConfigWithEnvOverrides(cfgFile)
}
