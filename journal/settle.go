package journal

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/sigmaguard/market"
)

const (
	// SettleAge is how long a row waits before forward returns are filled.
	SettleAge = 20 * 24 * time.Hour
	// SettleBars is the number of trading days the forward window spans.
	SettleBars = 15
)

// Prices supplies daily history for settlement.
type Prices interface {
	Candles(ctx context.Context, ticker string) ([]market.Candle, error)
}

// SettleResult counts what a settlement pass did for one ticker.
type SettleResult struct {
	Ticker  string
	Settled int
	Pending int
	Err     error
}

// Settle fills Ret_20d, Min_Ret_20d and Max_Ret_20d for rows older than
// SettleAge, using up to SettleBars bars after each audit date: the last
// close, the lowest low and the highest high against Price_T.
func Settle(ctx context.Context, l Ledger, src Prices, now time.Time) ([]SettleResult, error) {
	tickers, err := l.Tickers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SettleResult, 0, len(tickers))
	for _, t := range tickers {
		res := SettleResult{Ticker: t}
		res.Settled, res.Pending, res.Err = settleTicker(ctx, l, src, t, now)
		out = append(out, res)
	}
	return out, nil
}

func settleTicker(ctx context.Context, l Ledger, src Prices, ticker string, now time.Time) (settled, pending int, err error) {
	rows, err := l.Rows(ctx, ticker)
	if err != nil {
		return 0, 0, err
	}
	idx := unsettled(rows, now, SettleAge)
	if len(idx) == 0 {
		return 0, 0, nil
	}

	cs, err := src.Candles(ctx, ticker)
	if err != nil {
		return 0, len(idx), fmt.Errorf("prices %s: %w", ticker, err)
	}

	for _, i := range idx {
		r := rows[i]
		if !SettleRow(&r, cs) {
			pending++
			continue
		}
		if err := l.Upsert(ctx, r); err != nil {
			return settled, pending, err
		}
		settled++
	}
	return settled, pending, nil
}

// SettleRow fills the forward-return columns of r from the bars after its
// audit date. It reports false when there is nothing to settle from.
func SettleRow(r *Row, cs []market.Candle) bool {
	window := market.After(cs, r.AuditDate, SettleBars)
	if len(window) == 0 || r.PriceT == 0 {
		return false
	}
	hi, lo := math.Inf(-1), math.Inf(1)
	for _, c := range window {
		hi = math.Max(hi, c.High)
		lo = math.Min(lo, c.Low)
	}
	r.Ret20d = pct(window[len(window)-1].Close, r.PriceT)
	r.MaxRet20d = pct(hi, r.PriceT)
	r.MinRet20d = pct(lo, r.PriceT)
	return true
}
