package indicators

import (
	"math"
	"strconv"
)

// Value is an indicator reading that is either present or explicitly
// missing. A present 0.0 is a real reading; missing is a separate state.
type Value struct {
	v  float64
	ok bool
}

// Missing is the absent reading.
var Missing = Value{}

// Of wraps a computed number. Non-finite input is treated as missing so a
// NaN can never leak into scoring.
func Of(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing
	}
	return Value{v: v, ok: true}
}

// Get returns the number and whether it is present.
func (v Value) Get() (float64, bool) { return v.v, v.ok }

// Present reports whether the value was computed.
func (v Value) Present() bool { return v.ok }

// Or returns the value, or def when missing.
func (v Value) Or(def float64) float64 {
	if !v.ok {
		return def
	}
	return v.v
}

func (v Value) String() string {
	if !v.ok {
		return "n/a"
	}
	return strconv.FormatFloat(v.v, 'f', 4, 64)
}

// Sub returns a-b when both are present.
func Sub(a, b Value) Value {
	x, ok1 := a.Get()
	y, ok2 := b.Get()
	if !ok1 || !ok2 {
		return Missing
	}
	return Of(x - y)
}
