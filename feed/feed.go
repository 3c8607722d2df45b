// Package feed fetches daily price history for a ticker.
package feed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/rustyeddy/sigmaguard/market"
)

// Source returns a ticker's daily candles sorted by date.
type Source interface {
	Candles(ctx context.Context, ticker string) ([]market.Candle, error)
}

// DirSource reads <dir>/<ticker>.csv.
type DirSource struct {
	Dir string
}

func NewDir(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

// Path maps a ticker to its file. Characters that cannot appear in file
// names (index tickers like ^VIX) are kept; only separators are replaced.
func (d *DirSource) Path(ticker string) string {
	name := strings.NewReplacer("/", "_", `\`, "_").Replace(ticker)
	return filepath.Join(d.Dir, name+".csv")
}

func (d *DirSource) Candles(ctx context.Context, ticker string) ([]market.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := d.Path(ticker)
	cs, stats, err := market.LoadCSV(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", ticker, market.ErrNoData)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if stats.BadLines > 0 || stats.Duplicates > 0 {
		log.Warn().Str("ticker", ticker).Int("bad", stats.BadLines).
			Int("dups", stats.Duplicates).Msg("skipped price rows")
	}
	if len(cs) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, market.ErrNoData)
	}
	return cs, nil
}

// Static serves fixed series from memory.
type Static map[string][]market.Candle

func (s Static) Candles(ctx context.Context, ticker string) ([]market.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cs, ok := s[ticker]
	if !ok || len(cs) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, market.ErrNoData)
	}
	return cs, nil
}
