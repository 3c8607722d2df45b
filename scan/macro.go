package scan

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/rustyeddy/sigmaguard/feed"
	"github.com/rustyeddy/sigmaguard/journal"
	"github.com/rustyeddy/sigmaguard/market"
)

// MacroTickers names the series behind the macro ledger columns. An empty
// ticker is not fetched.
type MacroTickers struct {
	VIX   string
	US10Y string
	DXY   string
}

// FetchMacro reads the latest close of each macro ticker. A failed fetch
// leaves its column at 0.
func FetchMacro(ctx context.Context, src feed.Source, t MacroTickers) journal.Macro {
	var m journal.Macro
	for _, f := range []struct {
		ticker string
		dst    *float64
	}{
		{t.VIX, &m.VIX},
		{t.US10Y, &m.US10Y},
		{t.DXY, &m.DXY},
	} {
		if f.ticker == "" {
			continue
		}
		cs, err := src.Candles(ctx, f.ticker)
		if err != nil {
			log.Warn().Str("macro", f.ticker).Err(err).Msg("macro fetch failed")
			continue
		}
		if last, ok := market.Last(cs); ok {
			*f.dst = last.Close
		}
	}
	return m
}
