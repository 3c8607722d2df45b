package risk

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func unit(x float64) float64 { return clamp(x, 0, 1) }

// ramp maps x linearly from 0 at lo to 1 at hi, clamped.
func ramp(x, lo, hi float64) float64 {
	if hi <= lo {
		if x >= hi {
			return 1
		}
		return 0
	}
	return unit((x - lo) / (hi - lo))
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Smooth is one EMA step with weight alpha on the new raw value. Without a
// previous value the raw value is returned unchanged.
func Smooth(alpha, raw float64, prev *float64) float64 {
	if prev == nil {
		return raw
	}
	return alpha*raw + (1-alpha)*(*prev)
}

// RiskPct is the fractional distance from price down to stop.
func RiskPct(price, stop float64) float64 {
	if price <= 0 {
		return 0
	}
	return (price - stop) / price
}
