package indicators

import "github.com/rustyeddy/sigmaguard/market"

// ErrNoData is returned by Compute when the target series is empty.
var ErrNoData = market.ErrNoData

// SigmaYears is the number of multi-sigma windows.
const SigmaYears = 5

// Compute derives the full indicator set for the last aligned bar of the
// pair. Benchmark indicators go to Snapshot.Bench; without a benchmark that
// map is empty and every benchmark read is Missing.
func Compute(pair market.Pair) (Snapshot, error) {
	last, ok := market.Last(pair.Target)
	if !ok {
		return Snapshot{}, ErrNoData
	}

	snap := Snapshot{
		Date:       last.Time,
		Bars:       len(pair.Target),
		Close:      last.Close,
		BenchClose: Missing,
		Values:     Set(pair.Target),
		Bench:      map[Name]Value{},
	}
	if pair.HasBench() {
		snap.Bench = Set(pair.Bench)
		if b, ok := market.Last(pair.Bench); ok {
			snap.BenchClose = Of(b.Close)
		}
	}
	snap.Values[ADXGap] = Sub(snap.Values[ADX], snap.BenchValue(ADX))
	return snap, nil
}

// Set computes every indicator for the last bar of one series.
func Set(cs []market.Candle) map[Name]Value {
	closes := market.Closes(cs)
	vs := make(map[Name]Value, 24)

	sig := MultiSigma(closes, SigmaYears)
	for i, n := range SigmaWindows {
		vs[n] = sig[i]
	}
	vs[SigmaAvg] = Average(sig)

	vs[RSI] = RSIOf(closes, PeriodRSI)
	vs[MFI] = MFIOf(cs, PeriodMFI)

	adx := NewDMI(PeriodADX)
	for _, c := range cs {
		adx.Update(c)
	}
	vs[ADX] = Result(adx)
	vs[PlusDI], vs[MinusDI] = Missing, Missing
	if adx.Ready() {
		vs[PlusDI], vs[MinusDI] = Of(adx.PlusDI()), Of(adx.MinusDI())
	}

	widths := BandWidths(closes, PeriodBB)
	vs[BBW] = lastOf(widths)
	vs[BBWThreshold] = BBWThresholdOf(widths, PeriodBBThr)

	disps := Disparities(closes, PeriodDisparity)
	vs[Disparity120] = lastOf(disps)
	vs[DisparityAvg], vs[DisparityLimit] = DisparityStats(disps, DisparityWindow, PeriodDisparity)

	m := MACDOf(closes, MACDFast, MACDSlow, MACDSignalLen)
	vs[MACD], vs[MACDSignal], vs[MACDHist], vs[MACDHistPrev] = m.Line, m.Signal, m.Hist, m.HistPrev

	vs[R2] = RSquaredOf(closes, PeriodR2)
	vs[Slope] = SlopeOf(closes, PeriodR2)
	return vs
}
