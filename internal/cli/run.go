package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/sigmaguard/config"
	"github.com/rustyeddy/sigmaguard/journal"
	"github.com/rustyeddy/sigmaguard/metrics"
	"github.com/rustyeddy/sigmaguard/report"
	"github.com/rustyeddy/sigmaguard/risk"
	"github.com/rustyeddy/sigmaguard/scan"
)

type runOptions struct {
	interval    time.Duration
	metricsAddr string
	noSettle    bool
	quiet       bool
}

func newRunCmd(rc *RootConfig) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [ticker...]",
		Short: "Score the watchlist (or the given tickers) once, or every --interval",
		Long: `Settle matured ledger rows, then score every watchlist ticker and
append one audit row per ticker. Tickers given as arguments replace the
configured watchlist.

Examples:
  sigmaguard run --config sigmaguard.yaml
  sigmaguard run AAPL MSFT
  sigmaguard run --interval 24h --metrics-addr :9102`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, rc, opts, args)
		},
	}
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "repeat every interval (overrides scan.interval)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (overrides metrics.addr)")
	cmd.Flags().BoolVar(&opts.noSettle, "no-settle", false, "skip forward-return settlement")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "print the summary only")
	return cmd
}

func watchItems(cfg *config.Config, args []string) []scan.Item {
	wl := cfg.Watchlist
	if len(args) > 0 {
		wl = nil
		for _, a := range args {
			wl = append(wl, config.Item{Ticker: a})
		}
	}
	items := make([]scan.Item, 0, len(wl))
	for _, it := range wl {
		items = append(items, scan.Item{
			Ticker: it.Ticker,
			Name:   it.Name,
			Bench:  config.BenchFor(it, cfg.Benchmark),
		})
	}
	return items
}

func runScan(cmd *cobra.Command, rc *RootConfig, opts *runOptions, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, rc, true)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg

	eng, err := risk.NewEngine(cfg.Policy)
	if err != nil {
		return err
	}

	rec := metrics.New()
	addr := cfg.Metrics.Addr
	if opts.metricsAddr != "" {
		addr = opts.metricsAddr
	}
	if addr != "" {
		srv := serveMetrics(addr, rec)
		defer srv.Shutdown(context.Background())
	}

	macro := scan.MacroTickers{}
	if cfg.Macro.Enabled {
		macro = scan.MacroTickers{VIX: cfg.Macro.VIX, US10Y: cfg.Macro.US10Y, DXY: cfg.Macro.DXY}
	}
	sc := scan.New(eng, a.prices, a.ledger, a.store, scan.Options{
		Workers: cfg.Scan.Workers,
		Macro:   macro,
		Metrics: rec,
	})

	items := watchItems(cfg, args)
	if len(items) == 0 {
		log.Warn().Msg("watchlist is empty")
	}
	out := cmd.OutOrStdout()
	settle := cfg.Scan.Settle && !opts.noSettle

	cycle := func(ctx context.Context) (scan.Summary, error) {
		if settle {
			settleAll(ctx, a.ledger, a.prices)
		}
		return sc.Run(ctx, items)
	}
	done := func(sum scan.Summary) {
		printSummary(ctx, out, a.ledger, sum, opts.quiet)
	}

	interval := cfg.Scan.Interval
	if opts.interval > 0 {
		interval = opts.interval
	}
	if interval <= 0 {
		sum, err := cycle(ctx)
		if err != nil {
			return err
		}
		done(sum)
		return nil
	}

	log.Info().Dur("interval", interval).Msg("scanning on a schedule")
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		sum, err := cycle(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return err
		}
		done(sum)
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

func settleAll(ctx context.Context, l journal.Ledger, src journal.Prices) {
	res, err := journal.Settle(ctx, l, src, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("settlement failed")
		return
	}
	for _, r := range res {
		if r.Err != nil {
			log.Warn().Str("ticker", r.Ticker).Err(r.Err).Msg("settlement skipped")
			continue
		}
		if r.Settled > 0 {
			log.Info().Str("ticker", r.Ticker).Int("settled", r.Settled).Int("pending", r.Pending).Msg("settled")
		}
	}
}

func printSummary(ctx context.Context, w io.Writer, l journal.Ledger, sum scan.Summary, quiet bool) {
	if !quiet {
		for _, r := range sum.Results {
			if r.Outcome != scan.Scored {
				continue
			}
			fmt.Fprintln(w, report.Record(r.Item.Name, r.Record, r.Allocation, time.Now()))
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintf(w, "run %s: %d scored, %d no data, %d failed (%s)\n",
		sum.RunID, sum.Scored, sum.NoData, sum.Failed, sum.Duration.Round(time.Millisecond))

	rows, err := journal.All(ctx, l)
	if err != nil {
		log.Warn().Err(err).Msg("performance audit skipped")
		return
	}
	if stats := journal.AuditByLevel(rows); len(stats) > 0 {
		fmt.Fprintln(w)
		report.Audit(w, stats)
	}
}

func serveMetrics(addr string, rec *metrics.Recorder) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server")
		}
	}()
	log.Info().Str("addr", addr).Msg("serving metrics")
	return srv
}
