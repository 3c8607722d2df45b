// Package indicators computes the technical features the risk engine scores:
// multi-window z-scores, momentum oscillators and trend-quality measures.
// Every function is pure; insufficient history yields Missing, never zero.
package indicators

import "github.com/rustyeddy/sigmaguard/market"

// Indicator computes a single streaming value from daily candles.
// It is deterministic and safe to use for batch and incremental updates.
type Indicator interface {
	// Name returns a stable identifier like "EMA(12)" or "ADX(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next closed candle and updates internal state.
	Update(c market.Candle)

	// Ready reports whether Float64() is meaningful (warmup completed).
	Ready() bool

	// Float64 returns the current value; callers should check Ready().
	Float64() float64
}

// Result converts a streaming indicator's state into a Value.
func Result(ind Indicator) Value {
	if !ind.Ready() {
		return Missing
	}
	return Of(ind.Float64())
}

// TradingDaysPerYear sizes the multi-sigma windows.
const TradingDaysPerYear = 252

// Standard periods.
const (
	PeriodRSI       = 14
	PeriodMFI       = 14
	PeriodADX       = 14
	PeriodBB        = 20
	PeriodBBThr     = 100
	PeriodR2        = 20
	PeriodDisparity = 120
	DisparityWindow = 5 * TradingDaysPerYear
	MACDFast        = 12
	MACDSlow        = 26
	MACDSignalLen   = 9
)
