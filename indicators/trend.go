package indicators

// MACDResult holds the latest MACD line, signal, histogram and the
// histogram one bar earlier.
type MACDResult struct {
	Line     Value
	Signal   Value
	Hist     Value
	HistPrev Value
}

// MACDOf runs fast/slow EMAs of closes, then a signal EMA of their
// difference. All EMAs are seeded with their first input.
func MACDOf(closes []float64, fast, slow, signal int) MACDResult {
	need := slow + signal
	if len(closes) < need {
		return MACDResult{Line: Missing, Signal: Missing, Hist: Missing, HistPrev: Missing}
	}

	f, s, sig := NewEMA(fast), NewEMA(slow), NewEMA(signal)
	hist := make([]float64, len(closes))
	var line float64
	for i, c := range closes {
		f.Add(c)
		s.Add(c)
		line = f.Float64() - s.Float64()
		sig.Add(line)
		hist[i] = line - sig.Float64()
	}

	r := MACDResult{
		Line:     Of(line),
		Signal:   Of(sig.Float64()),
		Hist:     Of(hist[len(hist)-1]),
		HistPrev: Missing,
	}
	if len(closes) > need {
		r.HistPrev = Of(hist[len(hist)-2])
	}
	return r
}

// fit is a least-squares line through y over x = 0..n-1.
func fit(y []float64) (slope, intercept float64) {
	n := float64(len(y))
	xm := (n - 1) / 2
	ym := mean(y)
	var sxy, sxx float64
	for i, v := range y {
		dx := float64(i) - xm
		sxy += dx * (v - ym)
		sxx += dx * dx
	}
	if sxx == 0 {
		return 0, ym
	}
	slope = sxy / sxx
	return slope, ym - slope*xm
}

// RSquaredOf is the coefficient of determination of the last period closes
// against their least-squares line. A constant window reads 0.
func RSquaredOf(closes []float64, period int) Value {
	if period < 2 || len(closes) < period {
		return Missing
	}
	y := closes[len(closes)-period:]
	slope, icept := fit(y)
	ym := mean(y)
	var res, tot float64
	for i, v := range y {
		p := slope*float64(i) + icept
		res += (v - p) * (v - p)
		tot += (v - ym) * (v - ym)
	}
	if tot == 0 {
		return Of(0)
	}
	return Of(clamp(1-res/tot, 0, 1))
}

// SlopeOf is the least-squares slope of the last period closes as a percent
// of the window's first close.
func SlopeOf(closes []float64, period int) Value {
	if period < 2 || len(closes) < period {
		return Missing
	}
	y := closes[len(closes)-period:]
	if y[0] == 0 {
		return Missing
	}
	slope, _ := fit(y)
	return Of(slope / y[0] * 100)
}
