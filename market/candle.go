package market

import (
	"errors"
	"time"
)

// ErrNoData is returned when a series has no bars at all.
var ErrNoData = errors.New("no price history")

const dateLayout = "2006-01-02"

// Candle is one daily OHLCV bar.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Day returns the bar's calendar date in UTC, the key used for alignment.
func (c Candle) Day() string {
	return c.Time.UTC().Format(dateLayout)
}

// TypicalPrice is (H+L+C)/3.
func (c Candle) TypicalPrice() float64 {
	return (c.High + c.Low + c.Close) / 3
}

// Closes extracts closing prices in series order.
func Closes(cs []Candle) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Close
	}
	return out
}

// Last returns the final bar of a series.
func Last(cs []Candle) (Candle, bool) {
	if len(cs) == 0 {
		return Candle{}, false
	}
	return cs[len(cs)-1], true
}

// After returns the bars strictly after t, at most n of them (n <= 0 means all).
func After(cs []Candle, t time.Time, n int) []Candle {
	day := t.UTC().Format(dateLayout)
	var out []Candle
	for _, c := range cs {
		if c.Day() <= day {
			continue
		}
		out = append(out, c)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}
