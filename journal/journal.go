// Package journal keeps the per-ticker audit ledger: one 53-column row per
// ticker and audit date, written as CSV files or into SQLite.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/sigmaguard/indicators"
	"github.com/rustyeddy/sigmaguard/risk"
)

// ErrNotFound is returned when a ledger holds no matching row.
var ErrNotFound = errors.New("ledger row not found")

// Row is one audit entry. Indicator columns are Values so a reading that
// could not be computed is stored empty, never as 0.
type Row struct {
	RunID string // SQLite only

	AuditDate time.Time
	Ticker    string
	Name      string
	RiskScore float64
	RiskLevel int
	PriceT    float64

	SigmaTAvg indicators.Value
	SigmaT    [5]indicators.Value
	RSIT      indicators.Value
	MFIT      indicators.Value
	BBWT      indicators.Value
	R2T       indicators.Value
	ADXT      indicators.Value
	DispT120  indicators.Value

	TickerB   string
	PriceB    indicators.Value
	SigmaBAvg indicators.Value
	RSIB      indicators.Value
	MFIB      indicators.Value
	ADXB      indicators.Value
	BBWB      indicators.Value

	StopPrice   float64
	RiskGapPct  float64
	InvestEI    float64
	WeightPct   float64
	ExpectedMDD float64

	LivermoreStatus string
	BaseRawScore    float64
	RiskMultiplier  float64
	TrendScenario   string

	ScorePos     float64
	ScorePosEMA  float64
	ScoreEne     float64
	ScoreEneEMA  float64
	ScoreTrap    float64
	ScoreTrapEMA float64

	VIX   float64
	US10Y float64
	DXY   float64

	MACDHistT indicators.Value
	MACDHistB indicators.Value
	ADXGap    indicators.Value
	DispLimit indicators.Value
	BBWThr    indicators.Value

	LivDiscount float64
	SOPAction   string

	Ret20d    indicators.Value
	MinRet20d indicators.Value
	MaxRet20d indicators.Value
}

// Day is the audit date as YYYY-MM-DD, the row's key within a ticker.
func (r Row) Day() string {
	return r.AuditDate.UTC().Format(dateLayout)
}

// Settled reports whether forward returns have been filled in.
func (r Row) Settled() bool {
	return r.Ret20d.Present()
}

// Smoothed recovers the pre-discount smoothed score from the stored final
// score and multiplier.
func (r Row) Smoothed() float64 {
	if r.RiskMultiplier <= 0 {
		return r.RiskScore
	}
	return r.RiskScore / r.RiskMultiplier
}

// Prior converts a stored row into engine state for the next cycle.
func (r Row) Prior() risk.Prior {
	return risk.Prior{
		Date:     r.AuditDate,
		Smoothed: r.Smoothed(),
		Level:    r.RiskLevel,
		Position: r.ScorePosEMA,
		Energy:   r.ScoreEneEMA,
		Trap:     r.ScoreTrapEMA,
	}
}

// Macro holds the optional market-context columns.
type Macro struct {
	VIX   float64
	US10Y float64
	DXY   float64
}

// Entry gathers everything one audit row is built from.
type Entry struct {
	RunID       string
	Name        string
	BenchTicker string
	Record      risk.Record
	Snapshot    indicators.Snapshot
	Allocation  risk.Allocation
	Macro       Macro
}

// NewRow flattens an evaluation into a ledger row. The record's delta has
// no column; consecutive Risk_Score/Risk_Multiplier rows reproduce it.
func NewRow(e Entry) Row {
	rec, s := e.Record, e.Snapshot
	r := Row{
		RunID:     e.RunID,
		AuditDate: rec.Date,
		Ticker:    rec.Ticker,
		Name:      e.Name,
		RiskScore: rec.Score,
		RiskLevel: rec.Level,
		PriceT:    s.Close,

		SigmaTAvg: s.Get(indicators.SigmaAvg),
		RSIT:      s.Get(indicators.RSI),
		MFIT:      s.Get(indicators.MFI),
		BBWT:      s.Get(indicators.BBW),
		R2T:       s.Get(indicators.R2),
		ADXT:      s.Get(indicators.ADX),
		DispT120:  s.Get(indicators.Disparity120),

		TickerB:   e.BenchTicker,
		PriceB:    s.BenchClose,
		SigmaBAvg: s.BenchValue(indicators.SigmaAvg),
		RSIB:      s.BenchValue(indicators.RSI),
		MFIB:      s.BenchValue(indicators.MFI),
		ADXB:      s.BenchValue(indicators.ADX),
		BBWB:      s.BenchValue(indicators.BBW),

		StopPrice:   e.Allocation.Stop,
		RiskGapPct:  e.Allocation.RiskPct,
		InvestEI:    e.Allocation.EI,
		WeightPct:   e.Allocation.WeightPct,
		ExpectedMDD: e.Allocation.ExpectedMDD,

		LivermoreStatus: rec.Gate.Status(),
		BaseRawScore:    rec.Raw,
		RiskMultiplier:  rec.Gate.Multiplier(),
		TrendScenario:   rec.Scenario,

		ScorePos:     rec.Position.Raw,
		ScorePosEMA:  rec.Position.Smoothed,
		ScoreEne:     rec.Energy.Raw,
		ScoreEneEMA:  rec.Energy.Smoothed,
		ScoreTrap:    rec.Trap.Raw,
		ScoreTrapEMA: rec.Trap.Smoothed,

		VIX:   e.Macro.VIX,
		US10Y: e.Macro.US10Y,
		DXY:   e.Macro.DXY,

		MACDHistT: s.Get(indicators.MACDHist),
		MACDHistB: s.BenchValue(indicators.MACDHist),
		ADXGap:    s.Get(indicators.ADXGap),
		DispLimit: s.Get(indicators.DisparityLimit),
		BBWThr:    s.Get(indicators.BBWThreshold),

		LivDiscount: rec.Gate.Discount,
		SOPAction:   string(rec.Band.Action),
	}
	if r.TickerB == "" {
		r.TickerB = "N/A"
	}
	for i, n := range indicators.SigmaWindows {
		r.SigmaT[i] = s.Get(n)
	}
	return r
}

// Ledger stores audit rows. Upsert replaces the row with the same ticker
// and audit day.
type Ledger interface {
	Upsert(ctx context.Context, r Row) error
	Rows(ctx context.Context, ticker string) ([]Row, error)
	Tickers(ctx context.Context) ([]string, error)
	Close() error
}
