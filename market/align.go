package market

import "sort"

// Pair is a target series and its benchmark on one shared date index.
// Bench is either empty or exactly as long as Target with matching dates.
type Pair struct {
	Target []Candle
	Bench  []Candle
}

// HasBench reports whether benchmark bars are available.
func (p Pair) HasBench() bool {
	return len(p.Bench) > 0
}

// Len is the number of aligned bars.
func (p Pair) Len() int {
	return len(p.Target)
}

// Normalize sorts a series by date and drops later bars that repeat a
// calendar day. It returns the cleaned series and the number of duplicates.
func Normalize(cs []Candle) ([]Candle, int) {
	if len(cs) == 0 {
		return cs, 0
	}
	out := make([]Candle, len(cs))
	copy(out, cs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	dups := 0
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i].Day() == out[n-1].Day() {
			dups++
			continue
		}
		out[n] = out[i]
		n++
	}
	return out[:n], dups
}

// Align intersects target and benchmark on calendar date. Dates present on
// only one side are dropped, so a gap can never shift one series against
// the other. An empty benchmark yields a target-only pair.
func Align(target, bench []Candle) Pair {
	target, _ = Normalize(target)
	if len(bench) == 0 {
		return Pair{Target: target}
	}
	bench, _ = Normalize(bench)

	byDay := make(map[string]Candle, len(bench))
	for _, b := range bench {
		byDay[b.Day()] = b
	}

	p := Pair{
		Target: make([]Candle, 0, len(target)),
		Bench:  make([]Candle, 0, len(target)),
	}
	for _, t := range target {
		b, ok := byDay[t.Day()]
		if !ok {
			continue
		}
		p.Target = append(p.Target, t)
		p.Bench = append(p.Bench, b)
	}
	if len(p.Target) == 0 {
		// No shared dates: the benchmark is unusable, not the target.
		return Pair{Target: target}
	}
	return p
}
