package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/sigmaguard/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate configuration files",
		Long: `Manage configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  sigmaguard config init -o sigmaguard.yaml
  sigmaguard config validate -f sigmaguard.yaml`,
	}

	var output string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			cfg.Watchlist = config.Watchlist{{Ticker: "AAPL", Name: "Apple"}}
			if err := cfg.SaveToFile(output); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "✓ Created default configuration: %s\n", output)
			fmt.Fprintln(w, "\nEdit the watchlist and run with:")
			fmt.Fprintf(w, "  sigmaguard run --config %s\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "sigmaguard.yaml", "output config file path")

	var path string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromFile(path)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "✓ Configuration valid: %s\n", path)
			fmt.Fprintf(w, "  Watchlist: %d tickers (benchmark %s)\n", len(cfg.Watchlist.Tickers()), cfg.Benchmark)
			fmt.Fprintf(w, "  Ledger: %s, state: %s\n", cfg.Ledger.Kind, cfg.State.Kind)
			fmt.Fprintf(w, "  Policy: alpha %.2f, %d bands\n", cfg.Policy.Alpha, len(cfg.Policy.Bands))
			return nil
		},
	}
	validateCmd.Flags().StringVarP(&path, "file", "f", "", "path to config file (required)")
	validateCmd.MarkFlagRequired("file")

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
