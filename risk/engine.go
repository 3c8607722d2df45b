// Package risk turns an indicator snapshot into a bounded, smoothed risk
// score with a discrete level and a recommended action. It performs no I/O;
// state from the previous cycle is passed in and handed back explicitly.
package risk

import (
	"time"

	"github.com/rustyeddy/sigmaguard/indicators"
)

// ErrNoData marks a ticker with no price history at all.
var ErrNoData = indicators.ErrNoData

// Direction compares the smoothed score with the previous cycle.
type Direction int

const (
	New Direction = iota
	Up
	Down
	Unchanged
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Unchanged:
		return "unchanged"
	default:
		return "new"
	}
}

// Marker is the display arrow for the direction.
func (d Direction) Marker() string {
	switch d {
	case Up:
		return "▲"
	case Down:
		return "▼"
	case Unchanged:
		return "-"
	default:
		return "NEW"
	}
}

// Component is one scorer's raw value and its EMA across cycles.
type Component struct {
	Raw      float64
	Smoothed float64
}

// Input is one ticker's data for a cycle.
type Input struct {
	Ticker   string
	Snapshot indicators.Snapshot
}

// Prior is what the next cycle needs from a Record.
type Prior struct {
	Date     time.Time
	Smoothed float64
	Level    int

	Position float64
	Energy   float64
	Trap     float64
}

// Record is the scored result for one ticker on one date.
type Record struct {
	Ticker string
	Date   time.Time

	Position Component
	Energy   Component
	Trap     Component
	Parts    EnergyParts

	Raw      float64 // P+E-T clamped to [0,100]
	Smoothed float64 // EMA of Raw, before the gate discount
	Gate     GateResult
	Score    float64 // Smoothed after discount, clamped to [0,100]
	Level    int
	Band     Band

	Previous  *float64
	Delta     float64
	Direction Direction

	// Scenario is BULLISH for a rising regression slope, BEARISH otherwise.
	Scenario string
}

// Prior extracts the state to carry into the next cycle.
func (r Record) Prior() Prior {
	return Prior{
		Date:     r.Date,
		Smoothed: r.Smoothed,
		Level:    r.Level,
		Position: r.Position.Smoothed,
		Energy:   r.Energy.Smoothed,
		Trap:     r.Trap.Smoothed,
	}
}

// Engine scores snapshots with a validated Policy.
type Engine struct {
	policy Policy
}

// NewEngine validates p and returns an engine using it.
func NewEngine(p Policy) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Engine{policy: p}, nil
}

func (e *Engine) Policy() Policy { return e.policy }

// Evaluate scores one ticker. prior is nil on the ticker's first cycle.
// The only error is ErrNoData for an empty snapshot; missing indicators
// lower the affected terms and never fail.
func (e *Engine) Evaluate(in Input, prior *Prior) (Record, error) {
	s := in.Snapshot
	if s.Empty() {
		return Record{}, ErrNoData
	}
	p := e.policy

	r := Record{
		Ticker:   in.Ticker,
		Date:     s.Date,
		Scenario: "BEARISH",
	}
	if slope, ok := s.Get(indicators.Slope).Get(); ok && slope > 0 {
		r.Scenario = "BULLISH"
	}

	r.Position.Raw = PositionScore(p.Position, s)
	r.Energy.Raw, r.Parts = EnergyScore(p.Energy, s)
	r.Trap.Raw = TrapScore(p.Trap, s)
	r.Raw = clamp(r.Position.Raw+r.Energy.Raw-r.Trap.Raw, 0, 100)

	var prevS, prevP, prevE, prevT *float64
	if prior != nil {
		prevS, prevP, prevE, prevT = &prior.Smoothed, &prior.Position, &prior.Energy, &prior.Trap
	}
	r.Smoothed = Smooth(p.Alpha, r.Raw, prevS)
	r.Position.Smoothed = Smooth(p.Alpha, r.Position.Raw, prevP)
	r.Energy.Smoothed = Smooth(p.Alpha, r.Energy.Raw, prevE)
	r.Trap.Smoothed = Smooth(p.Alpha, r.Trap.Raw, prevT)

	r.Gate = Gate(p.Gate, s)
	r.Score = clamp(r.Smoothed*(1-r.Gate.Discount), 0, 100)
	r.Band = Classify(p.Bands, r.Score)
	r.Level = r.Band.Level

	r.Direction = New
	if prior != nil {
		prev := prior.Smoothed
		r.Previous = &prev
		r.Delta = r.Smoothed - prev
		r.Direction = direction(r.Delta)
	}
	return r, nil
}

func direction(delta float64) Direction {
	const eps = 1e-9
	switch {
	case delta > eps:
		return Up
	case delta < -eps:
		return Down
	default:
		return Unchanged
	}
}

// Classify returns the band holding score. Scores are clamped to [0,100]
// first, so every score maps to exactly one band.
func Classify(bands []Band, score float64) Band {
	score = clamp(score, 0, 100)
	if len(bands) == 0 {
		return Band{}
	}
	b := bands[0]
	for _, cand := range bands[1:] {
		if score < cand.Min {
			break
		}
		b = cand
	}
	return b
}

// State maps a ticker to its prior. The engine never mutates a State it is
// given.
type State map[string]Prior

// Outcome is one ticker's result in a cycle: a Record, or an error for a
// ticker that could not be scored.
type Outcome struct {
	Ticker string
	Record Record
	Err    error
}

func (o Outcome) Scored() bool { return o.Err == nil }

// Cycle evaluates a batch against the prior state and returns the outcomes
// with the next state. A failed ticker keeps its previous entry; duplicate
// tickers are scored once.
func (e *Engine) Cycle(inputs []Input, st State) ([]Outcome, State) {
	next := make(State, len(st)+len(inputs))
	for k, v := range st {
		next[k] = v
	}

	seen := make(map[string]bool, len(inputs))
	out := make([]Outcome, 0, len(inputs))
	for _, in := range inputs {
		if seen[in.Ticker] {
			continue
		}
		seen[in.Ticker] = true

		var prior *Prior
		if p, ok := st[in.Ticker]; ok {
			prior = &p
		}
		rec, err := e.Evaluate(in, prior)
		out = append(out, Outcome{Ticker: in.Ticker, Record: rec, Err: err})
		if err == nil {
			next[in.Ticker] = rec.Prior()
		}
	}
	return out, next
}
