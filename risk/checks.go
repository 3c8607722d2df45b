package risk

import (
	"fmt"
	"math"
	"strings"
)

type Violation struct {
	Code string
	Msg  string
}

// PolicyError lists every rule a Policy breaks.
type PolicyError struct {
	Violations []Violation
}

func (e *PolicyError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Code + ": " + v.Msg
	}
	return "invalid risk policy: " + strings.Join(msgs, "; ")
}

func (e *PolicyError) add(code, msg string) {
	e.Violations = append(e.Violations, Violation{Code: code, Msg: msg})
}

// Has reports whether a violation with the given code was recorded.
func (e *PolicyError) Has(code string) bool {
	for _, v := range e.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

// Fixed score ranges. A policy may tighten the position and trap caps but
// never widen them; the energy partials always sum to EnergyCap.
const (
	PositionCap     = 30.0
	EnergyCap       = 50.0
	TrapCap         = 20.0
	MinGateDiscount = 0.10
	MaxGateDiscount = 0.50
)

// Validate checks the policy tables. It returns a *PolicyError or nil.
func (p Policy) Validate() error {
	e := &PolicyError{}

	if !(p.Alpha > 0 && p.Alpha <= 1) {
		e.add("BAD_ALPHA", fmt.Sprintf("alpha %.3f must be in (0,1]", p.Alpha))
	}

	if p.Position.Max <= 0 || p.Energy.Max <= 0 || p.Trap.Max <= 0 {
		e.add("BAD_MAX", "component maxima must be positive")
	}
	if p.Position.Max > PositionCap {
		e.add("BAD_MAX", fmt.Sprintf("position max %.1f exceeds %.0f", p.Position.Max, PositionCap))
	}
	if p.Energy.Max != EnergyCap {
		e.add("BAD_MAX", fmt.Sprintf("energy max %.1f must be %.0f", p.Energy.Max, EnergyCap))
	}
	if p.Trap.Max > TrapCap {
		e.add("BAD_MAX", fmt.Sprintf("trap max %.1f exceeds %.0f", p.Trap.Max, TrapCap))
	}
	if len(p.Position.Weights) != 5 {
		e.add("BAD_WEIGHTS", fmt.Sprintf("need 5 window weights, got %d", len(p.Position.Weights)))
	}
	for i, w := range p.Position.Weights {
		if w <= 0 {
			e.add("BAD_WEIGHTS", fmt.Sprintf("weight %d is %.3f, must be positive", i+1, w))
		}
	}
	if p.Position.SigmaCritical <= 0 {
		e.add("BAD_SIGMA_CRITICAL", "sigma_critical must be positive")
	}
	if p.Position.DownsideBias < 1 {
		e.add("BAD_DOWNSIDE_BIAS", "downside_bias must be >= 1")
	}

	if math.Abs(p.Energy.Partials()-EnergyCap) > 1e-9 {
		e.add("ENERGY_PARTIALS",
			fmt.Sprintf("energy partials sum to %.2f, want %.0f", p.Energy.Partials(), EnergyCap))
	}
	if p.Energy.MACDRising > p.Energy.MACDFalling || p.Energy.MACDFalling > p.Energy.MACDMax {
		e.add("ENERGY_MACD", "need macd_rising <= macd_falling <= macd_max")
	}
	if p.Energy.FlowSpan <= 0 || p.Energy.RSISpan <= 0 || p.Energy.BBWDefaultLimit <= 0 {
		e.add("ENERGY_SPAN", "energy spans and default band-width limit must be positive")
	}

	if p.Trap.ADXFloor >= p.Trap.ADXSaturation {
		e.add("TRAP_ADX", fmt.Sprintf("adx_floor %.1f must be below adx_saturation %.1f", p.Trap.ADXFloor, p.Trap.ADXSaturation))
	}
	if p.Trap.R2Ceiling <= 0 || p.Trap.R2Ceiling > 1 {
		e.add("TRAP_R2", "r2_ceiling must be in (0,1]")
	}

	g := p.Gate
	if !(g.MinDiscount >= MinGateDiscount && g.MinDiscount <= g.MaxDiscount && g.MaxDiscount <= MaxGateDiscount) {
		e.add("GATE_DISCOUNT",
			fmt.Sprintf("need 0.10 <= min_discount (%.2f) <= max_discount (%.2f) <= 0.50", g.MinDiscount, g.MaxDiscount))
	}
	if g.ADXMin >= g.ADXSaturation || g.R2Min >= g.R2Saturation || g.MFIMin >= g.MFISaturation {
		e.add("GATE_SATURATION", "gate thresholds must be below their saturation points")
	}

	checkBands(e, p.Bands)

	a := p.Allocation
	if a.StatWindow < 2 || a.EIBenchmark <= 0 || a.AccountRisk <= 0 || a.MaxWeightPct <= 0 {
		e.add("ALLOCATION", "allocation window, ei_benchmark, account_risk and max_weight_pct must be positive")
	}
	if a.EmergencyFactor <= 0 || a.EmergencyFactor >= 1 {
		e.add("ALLOCATION", "emergency_factor must be in (0,1)")
	}

	if len(e.Violations) > 0 {
		return e
	}
	return nil
}

func checkBands(e *PolicyError, bands []Band) {
	if len(bands) != 9 {
		e.add("BANDS", fmt.Sprintf("need exactly 9 bands, got %d", len(bands)))
		return
	}
	if bands[0].Min != 0 {
		e.add("BANDS", "first band must start at 0")
	}
	for i, b := range bands {
		if b.Level != i+1 {
			e.add("BANDS", fmt.Sprintf("band %d has level %d", i+1, b.Level))
		}
		if b.Min >= 100 {
			e.add("BANDS", fmt.Sprintf("band %d starts at %.1f, must be below 100", b.Level, b.Min))
		}
		if i > 0 && b.Min <= bands[i-1].Min {
			e.add("BANDS", fmt.Sprintf("band %d min %.1f not above band %d min %.1f", b.Level, b.Min, bands[i-1].Level, bands[i-1].Min))
		}
		if b.Label == "" || b.Action == "" {
			e.add("BANDS", fmt.Sprintf("band %d needs a label and an action", b.Level))
		}
	}
}
