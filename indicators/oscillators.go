package indicators

import "github.com/rustyeddy/sigmaguard/market"

// RSIOf is Wilder's Relative Strength Index over closes. It needs period+1
// closes. A window with gains and no losses reads 100; a window with no
// movement at all reads 50.
func RSIOf(closes []float64, period int) Value {
	if period <= 0 || len(closes) < period+1 {
		return Missing
	}

	var gain, loss float64
	for i := 1; i <= period; i++ {
		g, l := move(closes[i] - closes[i-1])
		gain += g
		loss += l
	}
	p := float64(period)
	gain /= p
	loss /= p

	for i := period + 1; i < len(closes); i++ {
		g, l := move(closes[i] - closes[i-1])
		gain = (gain*(p-1) + g) / p
		loss = (loss*(p-1) + l) / p
	}
	return Of(ratioIndex(gain, loss))
}

// MFIOf is the Money Flow Index over the last period typical-price changes.
// Flow is typical price times volume; an unchanged typical price adds to
// neither side.
func MFIOf(cs []market.Candle, period int) Value {
	if period <= 0 || len(cs) < period+1 {
		return Missing
	}

	var pos, neg float64
	for i := len(cs) - period; i < len(cs); i++ {
		tp := cs[i].TypicalPrice()
		prev := cs[i-1].TypicalPrice()
		flow := tp * cs[i].Volume
		switch {
		case tp > prev:
			pos += flow
		case tp < prev:
			neg += flow
		}
	}
	return Of(ratioIndex(pos, neg))
}

func move(d float64) (gain, loss float64) {
	if d > 0 {
		return d, 0
	}
	return 0, -d
}

// ratioIndex maps up/down totals to 0..100 as 100 - 100/(1+up/down).
func ratioIndex(up, down float64) float64 {
	if down == 0 {
		if up > 0 {
			return 100
		}
		return 50
	}
	return 100 - 100/(1+up/down)
}
