package indicators

import (
	"sort"
	"time"
)

// Name identifies one indicator in a Snapshot.
type Name string

const (
	Sigma1Y Name = "sigma_1y"
	Sigma2Y Name = "sigma_2y"
	Sigma3Y Name = "sigma_3y"
	Sigma4Y Name = "sigma_4y"
	Sigma5Y Name = "sigma_5y"
	// SigmaAvg is the mean of the present multi-sigma windows.
	SigmaAvg Name = "sigma_avg"

	RSI     Name = "rsi"
	MFI     Name = "mfi"
	ADX     Name = "adx"
	PlusDI  Name = "plus_di"
	MinusDI Name = "minus_di"
	ADXGap  Name = "adx_gap"

	BBW          Name = "bbw"
	BBWThreshold Name = "bbw_thr"

	Disparity120   Name = "disp120"
	DisparityAvg   Name = "disp120_avg"
	DisparityLimit Name = "disp120_limit"

	MACD         Name = "macd"
	MACDSignal   Name = "macd_signal"
	MACDHist     Name = "macd_hist"
	MACDHistPrev Name = "macd_hist_prev"

	R2    Name = "r2"
	Slope Name = "slope"
)

// SigmaWindows lists the multi-sigma names from the 1-year to 5-year window.
var SigmaWindows = []Name{Sigma1Y, Sigma2Y, Sigma3Y, Sigma4Y, Sigma5Y}

// Snapshot holds every indicator for one evaluation date. Consumers treat
// it as read-only.
type Snapshot struct {
	Date       time.Time
	Bars       int
	Close      float64
	BenchClose Value

	Values map[Name]Value
	Bench  map[Name]Value
}

// Get returns a target indicator, Missing when absent.
func (s Snapshot) Get(n Name) Value {
	if s.Values == nil {
		return Missing
	}
	return s.Values[n]
}

// BenchValue returns a benchmark indicator, Missing when absent.
func (s Snapshot) BenchValue(n Name) Value {
	if s.Bench == nil {
		return Missing
	}
	return s.Bench[n]
}

// Empty reports a snapshot built from no bars at all.
func (s Snapshot) Empty() bool {
	return s.Bars == 0
}

// Names returns the target indicator names in sorted order.
func (s Snapshot) Names() []Name {
	out := make([]Name, 0, len(s.Values))
	for n := range s.Values {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
