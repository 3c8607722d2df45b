package risk

import "github.com/rustyeddy/sigmaguard/indicators"

// Allocation is the capital plan attached to a scored ticker.
type Allocation struct {
	Stop        float64
	RiskPct     float64 // distance to stop, percent of price
	EI          float64 // efficiency index, EIBenchmark / risk
	WeightPct   float64 // suggested portfolio weight
	ExpectedMDD float64 // percent, negative
	Emergency   bool    // stop fell back to EmergencyFactor of price
}

// Allocate derives a hybrid stop and position weight. The stop is the
// higher of a statistical floor (mean - k sigma over StatWindow closes) and
// a technical floor (price at disparity 100, less 8%). When that stop is not
// below price, an emergency stop at EmergencyFactor of price is used.
func Allocate(closes []float64, s indicators.Snapshot, p AllocationPolicy) Allocation {
	price := s.Close

	var stat float64
	w := p.StatWindow
	if len(closes) < w {
		w = len(closes)
	}
	if m, sd, ok := indicators.MeanStd(closes, w); ok {
		stat = m - p.StatSigmas*sd
	}

	disp := s.Get(indicators.Disparity120).Or(100)
	if disp <= 0 {
		disp = 100
	}
	tech := price / (disp / 100) * p.TechFactor

	a := Allocation{Stop: max(stat, tech)}
	risk := RiskPct(price, a.Stop)
	if price <= a.Stop || risk <= 0 {
		a.Stop = price * p.EmergencyFactor
		a.Emergency = true
		risk = 1 - p.EmergencyFactor
	}

	a.RiskPct = risk * 100
	a.EI = p.EIBenchmark / risk
	a.WeightPct = min(p.AccountRisk/risk*100, p.MaxWeightPct)

	a.ExpectedMDD = p.CalmDrawdownPct
	if sig, ok := s.Get(indicators.SigmaAvg).Get(); ok && sig > p.HotSigma {
		a.ExpectedMDD = p.HotDrawdownPct
	}
	return a
}
