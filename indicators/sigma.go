package indicators

// MinDisparityLimit is the floor of the dynamic disparity limit, in percent.
const MinDisparityLimit = 110.0

// ZScore is the last close measured in sample standard deviations from the
// mean of the trailing window. Short history is Missing; a flat window is 0.
func ZScore(closes []float64, window int) Value {
	m, sd, ok := MeanStd(closes, window)
	if !ok {
		return Missing
	}
	if sd == 0 {
		return Of(0)
	}
	return Of((closes[len(closes)-1] - m) / sd)
}

// MeanStd returns the mean and sample standard deviation of the trailing
// window, and false when the series is shorter than the window.
func MeanStd(closes []float64, window int) (m, sd float64, ok bool) {
	if window <= 1 || len(closes) < window {
		return 0, 0, false
	}
	w := closes[len(closes)-window:]
	return mean(w), stddev(w), true
}

// MultiSigma computes the z-score over 1..years years of trading days.
func MultiSigma(closes []float64, years int) []Value {
	out := make([]Value, years)
	for k := 1; k <= years; k++ {
		out[k-1] = ZScore(closes, k*TradingDaysPerYear)
	}
	return out
}

// Average is the mean of the present values, Missing when none are.
func Average(vs []Value) Value {
	var sum float64
	n := 0
	for _, v := range vs {
		if x, ok := v.Get(); ok {
			sum += x
			n++
		}
	}
	if n == 0 {
		return Missing
	}
	return Of(sum / float64(n))
}

// Disparities returns close / SMA(period) * 100 for every complete window.
// A zero average reads 100.
func Disparities(closes []float64, period int) []float64 {
	return rolling(closes, period, func(w []float64) float64 {
		m := mean(w)
		if m == 0 {
			return 100
		}
		return w[len(w)-1] / m * 100
	})
}

// DisparityStats returns the mean disparity over up to window values and the
// dynamic limit mean + 2 sigma, floored at MinDisparityLimit. At least
// minCount disparity values are required.
func DisparityStats(disps []float64, window, minCount int) (avg, limit Value) {
	if len(disps) < minCount || len(disps) < 2 {
		return Missing, Missing
	}
	w := disps
	if len(w) > window {
		w = w[len(w)-window:]
	}
	m := mean(w)
	lim := m + 2*stddev(w)
	if lim < MinDisparityLimit {
		lim = MinDisparityLimit
	}
	return Of(m), Of(lim)
}
