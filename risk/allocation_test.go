package risk

import (
	"testing"

	"github.com/rustyeddy/sigmaguard/indicators"
	"github.com/stretchr/testify/assert"
)

func repeat(n int, xs ...float64) []float64 {
	out := make([]float64, 0, n)
	for len(out) < n {
		out = append(out, xs[len(out)%len(xs)])
	}
	return out
}

func TestAllocateTechnicalStop(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy().Allocation
	closes := repeat(252, 90, 110)
	s := snap(map[indicators.Name]float64{indicators.Disparity120: 100, indicators.SigmaAvg: 0.5})

	a := Allocate(closes, s, p)
	assert.False(t, a.Emergency)
	assert.InDelta(t, 92.0, a.Stop, 1e-9)
	assert.InDelta(t, 8.0, a.RiskPct, 1e-9)
	assert.InDelta(t, 2.5, a.EI, 1e-9)
	assert.InDelta(t, 10.0, a.WeightPct, 1e-9)
	assert.Equal(t, -5.0, a.ExpectedMDD)
}

func TestAllocateEmergencyStop(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy().Allocation
	// flat history puts the statistical floor right at the price
	s := snap(map[indicators.Name]float64{indicators.SigmaAvg: 2.4})

	a := Allocate(repeat(300, 100), s, p)
	assert.True(t, a.Emergency)
	assert.InDelta(t, 90.0, a.Stop, 1e-9)
	assert.InDelta(t, 10.0, a.RiskPct, 1e-9)
	assert.InDelta(t, 2.0, a.EI, 1e-9)
	assert.InDelta(t, 8.0, a.WeightPct, 1e-9)
	assert.Equal(t, -15.0, a.ExpectedMDD)
}

func TestAllocateWeightCapped(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy().Allocation
	// price below its 120-day average puts the technical stop just under it
	s := snap(map[indicators.Name]float64{indicators.Disparity120: 93})

	a := Allocate(nil, s, p)
	assert.False(t, a.Emergency)
	assert.Less(t, a.RiskPct, 4.0)
	assert.Equal(t, p.MaxWeightPct, a.WeightPct)
}
