package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/sigmaguard/journal"
	"github.com/rustyeddy/sigmaguard/report"
)

func newLedgerCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Query the audit ledger",
		Long: `Query the per-ticker audit ledger.

Examples:
  sigmaguard ledger show AAPL
  sigmaguard ledger show AAPL --org --last 5
  sigmaguard ledger prev AAPL --before 2024-03-05
  sigmaguard ledger run 01HRZ8Q6V9K3M2N4P5R6S7T8V9`,
	}

	var (
		org  bool
		last int
	)
	show := &cobra.Command{
		Use:   "show <ticker>",
		Short: "List a ticker's ledger rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), rc, false)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.ledger.Rows(cmd.Context(), strings.ToUpper(args[0]))
			if err != nil {
				return fmt.Errorf("read ledger: %w", err)
			}
			if len(rows) == 0 {
				return fmt.Errorf("%s: %w", args[0], journal.ErrNotFound)
			}
			if last > 0 && len(rows) > last {
				rows = rows[len(rows)-last:]
			}
			if org {
				fmt.Fprintln(cmd.OutOrStdout(), journal.FormatRowsOrg(rows))
				return nil
			}
			return report.Rows(cmd.OutOrStdout(), rows)
		},
	}
	show.Flags().BoolVar(&org, "org", false, "print Org-mode entries")
	show.Flags().IntVarP(&last, "last", "n", 0, "only the newest n rows")

	var before string
	prev := &cobra.Command{
		Use:   "prev <ticker>",
		Short: "Show the row the next cycle compares against",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now()
			if before != "" {
				var err error
				if day, err = time.Parse("2006-01-02", before); err != nil {
					return fmt.Errorf("--before: %w", err)
				}
			}

			a, err := openApp(cmd.Context(), rc, false)
			if err != nil {
				return err
			}
			defer a.Close()

			row, err := journal.Previous(cmd.Context(), a.ledger, strings.ToUpper(args[0]), day)
			if errors.Is(err, journal.ErrNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: no row before %s\n", args[0], day.Format("2006-01-02"))
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), journal.FormatRowOrg(row))
			return nil
		},
	}
	prev.Flags().StringVar(&before, "before", "", "YYYY-MM-DD (default today)")

	run := &cobra.Command{
		Use:   "run <run-id>",
		Short: "List the rows one scan run wrote (sqlite ledger)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), rc, false)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := journal.ByRun(cmd.Context(), a.ledger, args[0])
			if err != nil {
				return err
			}
			return report.Rows(cmd.OutOrStdout(), rows)
		},
	}

	cmd.AddCommand(show, prev, run)
	return cmd
}

func newSettleCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "settle",
		Short: "Fill forward returns for ledger rows older than 20 days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), rc, false)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := journal.Settle(cmd.Context(), a.ledger, a.prices, time.Now())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, r := range res {
				if r.Err != nil {
					fmt.Fprintf(w, "%-10s error: %v\n", r.Ticker, r.Err)
					continue
				}
				fmt.Fprintf(w, "%-10s settled %d, pending %d\n", r.Ticker, r.Settled, r.Pending)
			}
			return nil
		},
	}
}

func newAuditCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Forward returns by risk level over all settled rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), rc, false)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := journal.All(cmd.Context(), a.ledger)
			if err != nil {
				return err
			}
			return report.Audit(cmd.OutOrStdout(), journal.AuditByLevel(rows))
		},
	}
}
