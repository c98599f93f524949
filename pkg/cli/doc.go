/*
Package cli provides command-line utilities for the relayd command.

The package includes tabular output formatters, error types, and signal
handling helpers shared by relayd subcommands.

Output Formatting:

Commands that list things (agents, providers) build a Table and render
it in the requested format:

	table := &cli.Table{
		Headers: []string{"ID", "NAME", "MODEL"},
		Rows:    rows,
	}
	formatter := cli.NewFormatter(cli.FormatText)
	if err := formatter.FormatTo(os.Stdout, table); err != nil {
		return err
	}

JSON output marshals the underlying data directly instead of the table.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
