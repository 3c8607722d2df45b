package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/sigmaguard/market"
)

// DMI computes Wilder's directional movement system (ADX with ±DI) over daily candles.
//
// Warmup: N periods seed the smoothed TR/+DM/-DM, then N DX values seed the
// ADX. With the first candle only providing "prev", the first reading is
// available after 2N candles. A window with no true range at all reads 0.
type DMI struct {
	n    int
	name string

	prev    market.Candle
	hasPrev bool
	ready   bool
	periods int

	adx     float64
	plusDI  float64
	minusDI float64

	sumTR      float64
	sumPlusDM  float64
	sumMinusDM float64

	smTR      float64
	smPlusDM  float64
	smMinusDM float64

	dxSum   float64
	dxCount int
}

func NewDMI(period int) *DMI {
	if period <= 0 {
		panic("ADX period must be > 0")
	}
	return &DMI{n: period, name: fmt.Sprintf("ADX(%d)", period)}
}

func (a *DMI) Name() string     { return a.name }
func (a *DMI) Warmup() int      { return 2 * a.n }
func (a *DMI) Ready() bool      { return a.ready }
func (a *DMI) Float64() float64 { return a.adx }

func (a *DMI) PlusDI() float64  { return a.plusDI }
func (a *DMI) MinusDI() float64 { return a.minusDI }

func (a *DMI) Reset() {
	*a = DMI{n: a.n, name: a.name}
}

// Update consumes the next closed candle.
func (a *DMI) Update(c market.Candle) {
	if !a.hasPrev {
		a.prev = c
		a.hasPrev = true
		return
	}
	defer func() { a.prev = c }()

	tr := max3(c.High-c.Low, math.Abs(c.High-a.prev.Close), math.Abs(c.Low-a.prev.Close))

	upMove := c.High - a.prev.High
	downMove := a.prev.Low - c.Low

	var plusDM, minusDM float64
	if upMove > downMove && upMove > 0 {
		plusDM = upMove
	}
	if downMove > upMove && downMove > 0 {
		minusDM = downMove
	}

	a.periods++

	if a.periods <= a.n {
		a.sumTR += tr
		a.sumPlusDM += plusDM
		a.sumMinusDM += minusDM

		if a.periods == a.n {
			a.smTR, a.smPlusDM, a.smMinusDM = a.sumTR, a.sumPlusDM, a.sumMinusDM
			a.plusDI, a.minusDI = di(a.smPlusDM, a.smMinusDM, a.smTR)
			a.dxSum = dx(a.plusDI, a.minusDI)
			a.dxCount = 1
			a.settle()
		}
		return
	}

	// smoothed = prior - prior/N + current
	nf := float64(a.n)
	a.smTR = a.smTR - a.smTR/nf + tr
	a.smPlusDM = a.smPlusDM - a.smPlusDM/nf + plusDM
	a.smMinusDM = a.smMinusDM - a.smMinusDM/nf + minusDM

	a.plusDI, a.minusDI = di(a.smPlusDM, a.smMinusDM, a.smTR)
	d := dx(a.plusDI, a.minusDI)

	if a.ready {
		a.adx = (a.adx*(nf-1) + d) / nf
		return
	}
	a.dxSum += d
	a.dxCount++
	a.settle()
}

func (a *DMI) settle() {
	if a.dxCount >= a.n {
		a.adx = a.dxSum / float64(a.n)
		a.ready = true
	}
}

func di(smPlusDM, smMinusDM, smTR float64) (plusDI, minusDI float64) {
	if smTR <= 0 {
		return 0, 0
	}
	return 100 * smPlusDM / smTR, 100 * smMinusDM / smTR
}

func dx(plusDI, minusDI float64) float64 {
	den := plusDI + minusDI
	if den <= 0 {
		return 0
	}
	return 100 * math.Abs(plusDI-minusDI) / den
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
