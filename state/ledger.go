package state

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/sigmaguard/journal"
	"github.com/rustyeddy/sigmaguard/risk"
)

// LedgerStore derives priors from the audit ledger itself. The smoothed
// score is recovered from Risk_Score and Risk_Multiplier, the component
// EMAs from their columns. Save is a no-op: the ledger row is the state.
type LedgerStore struct {
	ledger journal.Ledger
}

func NewLedger(l journal.Ledger) *LedgerStore {
	return &LedgerStore{ledger: l}
}

func (s *LedgerStore) Load(ctx context.Context, ticker string, before time.Time) (risk.Prior, error) {
	row, err := journal.Previous(ctx, s.ledger, ticker, before)
	if errors.Is(err, journal.ErrNotFound) {
		return risk.Prior{}, ErrNotFound
	}
	if err != nil {
		return risk.Prior{}, err
	}
	return row.Prior(), nil
}

func (s *LedgerStore) Save(context.Context, string, risk.Prior) error { return nil }

// Close leaves the ledger open; its owner closes it.
func (s *LedgerStore) Close() error { return nil }
