package indicators

// DefaultBBWThreshold is the floor and fallback of the dynamic band-width
// threshold.
const DefaultBBWThreshold = 0.30

// BandWidths returns the Bollinger band width, (upper-lower)/middle with
// bands at +-2 sample standard deviations, for every complete window.
// A zero middle band reads 0.
func BandWidths(closes []float64, period int) []float64 {
	return rolling(closes, period, func(w []float64) float64 {
		m := mean(w)
		if m == 0 {
			return 0
		}
		return 4 * stddev(w) / m
	})
}

func lastOf(xs []float64) Value {
	if len(xs) == 0 {
		return Missing
	}
	return Of(xs[len(xs)-1])
}

// BBWThresholdOf is mean + 1.5 sigma of the last lookback band widths,
// floored at DefaultBBWThreshold. Too little history gives the floor.
func BBWThresholdOf(widths []float64, lookback int) Value {
	if lookback <= 1 || len(widths) < lookback {
		return Of(DefaultBBWThreshold)
	}
	w := widths[len(widths)-lookback:]
	thr := mean(w) + 1.5*stddev(w)
	if thr < DefaultBBWThreshold {
		thr = DefaultBBWThreshold
	}
	return Of(thr)
}
