// Package scan runs one scoring cycle over a watchlist: fetch prices,
// compute indicators, evaluate against the stored prior, then write the
// ledger row and the new prior.
package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rustyeddy/sigmaguard/feed"
	"github.com/rustyeddy/sigmaguard/indicators"
	"github.com/rustyeddy/sigmaguard/journal"
	"github.com/rustyeddy/sigmaguard/market"
	"github.com/rustyeddy/sigmaguard/metrics"
	"github.com/rustyeddy/sigmaguard/pkg/id"
	"github.com/rustyeddy/sigmaguard/risk"
	"github.com/rustyeddy/sigmaguard/state"
)

// Item is one ticker to score. Bench is the resolved benchmark ticker,
// empty for none.
type Item struct {
	Ticker string
	Name   string
	Bench  string
}

// Outcome classifies a ticker's result.
type Outcome string

const (
	Scored Outcome = "scored"
	NoData Outcome = "no_data"
	Failed Outcome = "error"
)

// Result is the outcome of one ticker. Record, Allocation and Row are set
// only when Outcome is Scored.
type Result struct {
	Item       Item
	Outcome    Outcome
	Record     risk.Record
	Allocation risk.Allocation
	Row        journal.Row
	Err        error
}

// Summary is one completed cycle.
type Summary struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Results  []Result

	Scored int
	NoData int
	Failed int
}

type Options struct {
	Workers int
	Macro   MacroTickers
	Metrics *metrics.Recorder
}

type Scanner struct {
	engine  *risk.Engine
	prices  feed.Source
	ledger  journal.Ledger
	store   state.Store
	locks   *state.Locker
	workers int
	macro   MacroTickers
	metrics *metrics.Recorder
	now     func() time.Time
}

func New(engine *risk.Engine, prices feed.Source, ledger journal.Ledger, store state.Store, opts Options) *Scanner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Scanner{
		engine:  engine,
		prices:  prices,
		ledger:  ledger,
		store:   store,
		locks:   state.NewLocker(),
		workers: opts.Workers,
		macro:   opts.Macro,
		metrics: opts.Metrics,
		now:     time.Now,
	}
}

// Dedupe drops repeated tickers, keeping the first entry.
func Dedupe(items []Item) []Item {
	seen := make(map[string]bool, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Ticker == "" || seen[it.Ticker] {
			continue
		}
		seen[it.Ticker] = true
		out = append(out, it)
	}
	return out
}

// Run scores every item with at most Workers tickers in flight. Per-ticker
// failures are reported in the Summary; the returned error is only the
// context's.
func (s *Scanner) Run(ctx context.Context, items []Item) (Summary, error) {
	items = Dedupe(items)
	sum := Summary{
		RunID:   id.New(),
		Started: s.now(),
		Results: make([]Result, len(items)),
	}
	log.Info().Str("run", sum.RunID).Int("tickers", len(items)).Msg("scan started")

	var macro journal.Macro
	if len(items) > 0 {
		macro = FetchMacro(ctx, s.prices, s.macro)
	}

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i, it := range items {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			sum.Results[i] = Result{Item: it, Outcome: Failed, Err: ctx.Err()}
			continue
		}
		wg.Add(1)
		go func(i int, it Item) {
			defer wg.Done()
			defer func() { <-sem }()
			sum.Results[i] = s.one(ctx, sum.RunID, it, macro)
		}(i, it)
	}
	wg.Wait()

	for _, r := range sum.Results {
		switch r.Outcome {
		case Scored:
			sum.Scored++
		case NoData:
			sum.NoData++
		default:
			sum.Failed++
		}
	}
	sum.Duration = s.now().Sub(sum.Started)

	if s.metrics != nil {
		s.metrics.RecordCycle()
		s.metrics.RecordLatency("cycle", sum.Duration.Seconds())
	}
	log.Info().Str("run", sum.RunID).Int("scored", sum.Scored).Int("no_data", sum.NoData).
		Int("failed", sum.Failed).Dur("took", sum.Duration).Msg("scan finished")
	return sum, ctx.Err()
}

func (s *Scanner) one(ctx context.Context, runID string, it Item, macro journal.Macro) Result {
	start := time.Now()
	res := s.evaluate(ctx, runID, it, macro)

	lg := log.With().Str("ticker", it.Ticker).Logger()
	switch res.Outcome {
	case Scored:
		lg.Info().Float64("score", res.Record.Score).Int("level", res.Record.Level).
			Str("delta", res.Record.Direction.Marker()).Msg("scored")
	case NoData:
		lg.Warn().Err(res.Err).Msg("no data, skipped")
	default:
		lg.Error().Err(res.Err).Msg("ticker failed")
	}

	if s.metrics != nil {
		s.metrics.RecordOutcome(string(res.Outcome))
		s.metrics.RecordLatency("ticker", time.Since(start).Seconds())
		if res.Outcome == Scored {
			s.metrics.RecordScore(it.Ticker, res.Record.Score, res.Record.Level, res.Record.Gate.Discount)
		}
	}
	return res
}

func (s *Scanner) evaluate(ctx context.Context, runID string, it Item, macro journal.Macro) Result {
	res := Result{Item: it, Outcome: Failed}
	fail := func(err error) Result {
		if errors.Is(err, market.ErrNoData) {
			res.Outcome = NoData
		}
		res.Err = err
		return res
	}

	target, err := s.prices.Candles(ctx, it.Ticker)
	if err != nil {
		return fail(fmt.Errorf("fetch %s: %w", it.Ticker, err))
	}

	var bench []market.Candle
	if it.Bench != "" {
		bench, err = s.prices.Candles(ctx, it.Bench)
		if err != nil {
			log.Warn().Str("ticker", it.Ticker).Str("bench", it.Bench).Err(err).
				Msg("benchmark unavailable, scoring without it")
			bench = nil
		}
	}
	pair := market.Align(target, bench)
	if len(bench) > 0 && !pair.HasBench() {
		log.Warn().Str("ticker", it.Ticker).Str("bench", it.Bench).Msg("no shared dates with benchmark")
	}

	snap, err := indicators.Compute(pair)
	if err != nil {
		return fail(err)
	}

	unlock := s.locks.Lock(it.Ticker)
	defer unlock()

	var prior *risk.Prior
	p, err := s.store.Load(ctx, it.Ticker, snap.Date)
	switch {
	case err == nil:
		prior = &p
	case errors.Is(err, state.ErrNotFound):
	default:
		return fail(fmt.Errorf("load prior: %w", err))
	}

	rec, err := s.engine.Evaluate(risk.Input{Ticker: it.Ticker, Snapshot: snap}, prior)
	if err != nil {
		return fail(err)
	}
	alloc := risk.Allocate(market.Closes(pair.Target), snap, s.engine.Policy().Allocation)

	benchTicker := it.Bench
	if !pair.HasBench() {
		benchTicker = ""
	}
	row := journal.NewRow(journal.Entry{
		RunID:       runID,
		Name:        it.Name,
		BenchTicker: benchTicker,
		Record:      rec,
		Snapshot:    snap,
		Allocation:  alloc,
		Macro:       macro,
	})
	if err := s.ledger.Upsert(ctx, row); err != nil {
		return fail(fmt.Errorf("ledger: %w", err))
	}
	if err := s.store.Save(ctx, it.Ticker, rec.Prior()); err != nil {
		return fail(fmt.Errorf("save prior: %w", err))
	}

	res.Outcome = Scored
	res.Record = rec
	res.Allocation = alloc
	res.Row = row
	return res
}
