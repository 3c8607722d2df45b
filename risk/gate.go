package risk

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/sigmaguard/indicators"
)

// GateResult is the outcome of the trend-confirmation discount gate.
type GateResult struct {
	Open     bool
	Strength float64 // mean excess over the thresholds, 0..1
	Discount float64 // fraction removed from the smoothed score
	Failed   []string
}

// Status is a short text for reports and the ledger.
func (g GateResult) Status() string {
	if g.Open {
		return fmt.Sprintf("CONFIRMED -%.0f%%", g.Discount*100)
	}
	if len(g.Failed) == 0 {
		return "UNCONFIRMED"
	}
	return "UNCONFIRMED (" + strings.Join(g.Failed, ", ") + ")"
}

// Multiplier is 1 - Discount.
func (g GateResult) Multiplier() float64 { return 1 - g.Discount }

// Gate opens only when ADX, R² and MFI all reach their thresholds; a
// missing reading fails its condition. An open gate discounts between
// MinDiscount and MaxDiscount, linear in the mean excess.
func Gate(p GatePolicy, s indicators.Snapshot) GateResult {
	type cond struct {
		name    string
		v       indicators.Value
		lo, sat float64
	}
	conds := []cond{
		{"adx", s.Get(indicators.ADX), p.ADXMin, p.ADXSaturation},
		{"r2", s.Get(indicators.R2), p.R2Min, p.R2Saturation},
		{"mfi", s.Get(indicators.MFI), p.MFIMin, p.MFISaturation},
	}

	var g GateResult
	var excess float64
	for _, c := range conds {
		x, ok := c.v.Get()
		if !ok {
			g.Failed = append(g.Failed, c.name+" n/a")
			continue
		}
		if x < c.lo {
			g.Failed = append(g.Failed, fmt.Sprintf("%s %.2f<%.2f", c.name, x, c.lo))
			continue
		}
		excess += ramp(x, c.lo, c.sat)
	}
	if len(g.Failed) > 0 {
		return g
	}

	g.Open = true
	g.Strength = excess / float64(len(conds))
	g.Discount = clamp(p.MinDiscount+(p.MaxDiscount-p.MinDiscount)*g.Strength, p.MinDiscount, p.MaxDiscount)
	return g
}
