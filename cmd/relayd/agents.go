package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chordlab/relay/pkg/agents"
	"chordlab/relay/pkg/cli"
)

var agentsFlags struct {
	dir    string
	output string
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List agent profiles",
	Long: `List the agent profiles the relay would serve.

Profiles are markdown files with YAML front matter; the file name
(without extension) is the agent id.

Examples:
  # List agents from the configured directory
  relayd agents

  # List agents from a specific directory
  relayd agents --dir ./agents

  # Machine-readable output
  relayd agents --output json`,
	RunE: listAgents,
}

func init() {
	rootCmd.AddCommand(agentsCmd)

	agentsCmd.Flags().StringVar(&agentsFlags.dir, "dir", "", "agent profile directory (overrides config)")
	agentsCmd.Flags().StringVarP(&agentsFlags.output, "output", "o", "text", "output format: text, json, csv")
}

func listAgents(cmd *cobra.Command, args []string) error {
	dir := agentsFlags.dir
	if dir == "" {
		cfg, err := loadConfig()
		if err != nil {
			return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
		}
		dir = cfg.Agents.Dir
	}

	store, err := agents.NewStore(dir)
	if err != nil {
		return cli.NewCommandError("agents", err)
	}

	infos := store.List()
	if len(infos) == 0 {
		fmt.Printf("No agent profiles found in %s\n", dir)
		return nil
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{info.ID, info.Name, info.Model, info.Description})
	}

	table := &cli.Table{
		Headers: []string{"ID", "NAME", "MODEL", "DESCRIPTION"},
		Rows:    rows,
		Data:    infos,
	}

	formatter := cli.NewFormatter(cli.OutputFormat(agentsFlags.output))
	if err := formatter.FormatTo(os.Stdout, table); err != nil {
		return cli.NewCommandError("agents", err)
	}
	return nil
}
