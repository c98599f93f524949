package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"chordlab/relay/pkg/cli"
	"chordlab/relay/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load and validate the relay configuration without starting the server.

All validation failures are reported at once, so a broken file can be
fixed in one pass.

Examples:
  # Validate the default config file
  relayd validate

  # Validate a specific file
  relayd validate --config /etc/chordlab/relay.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			fmt.Printf("✗ Configuration invalid (%d problems):\n", len(verrs))
			for _, verr := range verrs {
				fmt.Printf("  - %s: %s\n", verr.Field, verr.Message)
			}
			return cli.NewCommandError("validate", fmt.Errorf("%d validation errors", len(verrs)))
		}
		return cli.NewConfigError("", err.Error())
	}

	fmt.Println("✓ Configuration valid")
	fmt.Printf("  Listen address: %s\n", cfg.Server.ListenAddress)
	fmt.Printf("  Backends: %d\n", len(cfg.Backends))
	fmt.Printf("  Agents dir: %s\n", cfg.Agents.Dir)
	if cfg.Usage.Enabled {
		fmt.Printf("  Usage backend: %s\n", cfg.Usage.Backend)
	}
	return nil
}
