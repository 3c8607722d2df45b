package risk

import (
	"github.com/rustyeddy/sigmaguard/indicators"
)

// PositionScore turns the multi-sigma z-scores into a 0..Max score. Each
// present window contributes |z|/SigmaCritical (downside z weighted by
// DownsideBias), clamped to 1. Weights are renormalised over the present
// windows, so a missing 5-year window scores from the other four.
func PositionScore(p PositionPolicy, s indicators.Snapshot) float64 {
	var sum, wsum float64
	for i, name := range indicators.SigmaWindows {
		z, ok := s.Get(name).Get()
		if !ok || i >= len(p.Weights) {
			continue
		}
		bias := 1.0
		if z < 0 {
			bias = p.DownsideBias
		}
		w := p.Weights[i]
		sum += w * unit(abs(z)*bias/p.SigmaCritical)
		wsum += w
	}
	if wsum == 0 {
		return 0
	}
	return clamp(p.Max*sum/wsum, 0, p.Max)
}

// EnergyParts breaks the energy score into its partials.
type EnergyParts struct {
	MACD float64
	BBW  float64
	Flow float64
	RSI  float64
}

func (e EnergyParts) Sum() float64 { return e.MACD + e.BBW + e.Flow + e.RSI }

// EnergyScore is the momentum composite. A missing input zeroes only its
// own partial.
func EnergyScore(p EnergyPolicy, s indicators.Snapshot) (float64, EnergyParts) {
	var parts EnergyParts

	macd, okM := s.Get(indicators.MACD).Get()
	sig, okS := s.Get(indicators.MACDSignal).Get()
	if okM && okS {
		switch {
		case macd < sig:
			parts.MACD = p.MACDMax
		case falling(s.Get(indicators.MACDHist), s.Get(indicators.MACDHistPrev)):
			parts.MACD = p.MACDFalling
		default:
			parts.MACD = p.MACDRising
		}
	}

	if bbw, ok := s.Get(indicators.BBW).Get(); ok {
		thr := s.Get(indicators.BBWThreshold).Or(p.BBWDefaultLimit)
		if thr > 0 {
			parts.BBW = p.BBWMax * unit(1-bbw/thr)
		}
	}

	rsi, okR := s.Get(indicators.RSI).Get()
	if mfi, ok := s.Get(indicators.MFI).Get(); ok && okR {
		parts.Flow = p.FlowMax * unit((rsi-mfi)/p.FlowSpan)
	}
	if okR {
		parts.RSI = p.RSIMax * unit((rsi-p.RSIFloor)/p.RSISpan)
	}

	return clamp(parts.Sum(), 0, p.Max), parts
}

func falling(hist, prev indicators.Value) bool {
	h, ok1 := hist.Get()
	hp, ok2 := prev.Get()
	return ok1 && ok2 && h < hp
}

// TrapScore rises when ADX reports a strong trend that a low R² says is
// not linear. Without both readings it is 0.
func TrapScore(p TrapPolicy, s indicators.Snapshot) float64 {
	adx, ok1 := s.Get(indicators.ADX).Get()
	r2, ok2 := s.Get(indicators.R2).Get()
	if !ok1 || !ok2 {
		return 0
	}
	strength := ramp(adx, p.ADXFloor, p.ADXSaturation)
	misfit := unit((p.R2Ceiling - r2) / p.R2Ceiling)
	return clamp(p.Max*strength*misfit, 0, p.Max)
}
