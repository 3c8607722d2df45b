// Package state persists each ticker's prior-cycle engine state between
// runs and serialises evaluations of the same ticker.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/sigmaguard/risk"
)

// ErrNotFound means no usable prior exists for the ticker.
var ErrNotFound = errors.New("no prior state")

// Store loads and saves priors. Load returns the latest prior dated
// strictly before the given day, so re-running a day compares against
// the previous trading day and not against itself.
type Store interface {
	Load(ctx context.Context, ticker string, before time.Time) (risk.Prior, error)
	Save(ctx context.Context, ticker string, p risk.Prior) error
	Close() error
}

// Entry keeps the two most recent priors of one ticker.
type Entry struct {
	Current  risk.Prior  `json:"current"`
	Previous *risk.Prior `json:"previous,omitempty"`
}

func dayOf(t time.Time) string { return t.UTC().Format("2006-01-02") }

// Push records p. A prior for the same day replaces Current; a newer day
// shifts Current into Previous. An older day (a backfill) leaves Current
// alone and only replaces Previous when it is at least as recent.
func (e Entry) Push(p risk.Prior) Entry {
	if dayOf(e.Current.Date) == dayOf(p.Date) || e.Current.Date.IsZero() {
		return Entry{Current: p, Previous: e.Previous}
	}
	if dayOf(p.Date) < dayOf(e.Current.Date) {
		if e.Previous == nil || dayOf(e.Previous.Date) <= dayOf(p.Date) {
			return Entry{Current: e.Current, Previous: &p}
		}
		return e
	}
	cur := e.Current
	return Entry{Current: p, Previous: &cur}
}

// Before returns the newest prior dated before the given day.
func (e Entry) Before(before time.Time) (risk.Prior, bool) {
	day := dayOf(before)
	if !e.Current.Date.IsZero() && dayOf(e.Current.Date) < day {
		return e.Current, true
	}
	if e.Previous != nil && dayOf(e.Previous.Date) < day {
		return *e.Previous, true
	}
	return risk.Prior{}, false
}
