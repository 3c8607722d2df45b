// Package cli holds the sigmaguard command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

// RootConfig carries the global flags to every subcommand.
type RootConfig struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}

	cmd := &cobra.Command{
		Use:   "sigmaguard",
		Short: "SigmaGuard: daily quant-risk scoring for a watchlist",
		Long: `SigmaGuard scores each watchlist ticker from 0 (calm) to 100 (critical)
out of statistical position, market energy and trend-trap components,
discounts confirmed trends, smooths the result and classifies it into
nine risk levels. Every evaluation is written to an audit ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "path to config file (defaults apply when empty)")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	cmd.PersistentFlags().StringVar(&rc.LogFormat, "log-format", "", "log format: console|json (overrides config)")

	cmd.AddCommand(
		newRunCmd(rc),
		newLedgerCmd(rc),
		newSettleCmd(rc),
		newAuditCmd(rc),
		newConfigCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "sigmaguard %s\n", version)
			},
		},
	)
	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
