package indicators

import "math"

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	m := mean(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// rolling applies fn to every trailing window of length period and returns
// one output per complete window (len(xs)-period+1 values).
func rolling(xs []float64, period int, fn func([]float64) float64) []float64 {
	if period <= 0 || len(xs) < period {
		return nil
	}
	out := make([]float64, 0, len(xs)-period+1)
	for end := period; end <= len(xs); end++ {
		out = append(out, fn(xs[end-period:end]))
	}
	return out
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
