package journal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/sigmaguard/indicators"
)

// Previous returns the latest row for ticker dated strictly before the
// given day, so a re-run on the same day never compares against itself.
func Previous(ctx context.Context, l Ledger, ticker string, before time.Time) (Row, error) {
	rows, err := l.Rows(ctx, ticker)
	if err != nil {
		return Row{}, err
	}
	day := before.UTC().Format(dateLayout)
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].Day() < day {
			return rows[i], nil
		}
	}
	return Row{}, fmt.Errorf("%s before %s: %w", ticker, day, ErrNotFound)
}

// Latest returns the most recent row for ticker.
func Latest(ctx context.Context, l Ledger, ticker string) (Row, error) {
	rows, err := l.Rows(ctx, ticker)
	if err != nil {
		return Row{}, err
	}
	if len(rows) == 0 {
		return Row{}, fmt.Errorf("%s: %w", ticker, ErrNotFound)
	}
	return rows[len(rows)-1], nil
}

// ErrNoRunIndex is returned by ByRun for ledgers that do not store run ids.
var ErrNoRunIndex = errors.New("ledger does not index run ids")

type runIndex interface {
	Run(ctx context.Context, runID string) ([]Row, error)
}

// ByRun returns the rows one scan run wrote. Only the SQLite ledger keeps
// run ids.
func ByRun(ctx context.Context, l Ledger, runID string) ([]Row, error) {
	ri, ok := l.(runIndex)
	if !ok {
		return nil, ErrNoRunIndex
	}
	rows, err := ri.Run(ctx, runID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return rows, nil
}

// All loads every ticker's rows.
func All(ctx context.Context, l Ledger) ([]Row, error) {
	tickers, err := l.Tickers(ctx)
	if err != nil {
		return nil, err
	}
	var out []Row
	for _, t := range tickers {
		rows, err := l.Rows(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("rows %s: %w", t, err)
		}
		out = append(out, rows...)
	}
	return out, nil
}

// LevelStat summarises settled rows at one risk level.
type LevelStat struct {
	Level     int
	Count     int
	AvgRet    float64
	AvgMinRet float64
	HitRate   float64 // share of rows with a positive Ret_20d
}

// AuditByLevel groups settled rows by risk level. Unsettled rows are
// skipped; levels with no settled rows are omitted.
func AuditByLevel(rows []Row) []LevelStat {
	type acc struct {
		n, wins     int
		ret, minRet float64
	}
	by := map[int]*acc{}
	for _, r := range rows {
		ret, ok := r.Ret20d.Get()
		if !ok {
			continue
		}
		a := by[r.RiskLevel]
		if a == nil {
			a = &acc{}
			by[r.RiskLevel] = a
		}
		a.n++
		a.ret += ret
		a.minRet += r.MinRet20d.Or(ret)
		if ret > 0 {
			a.wins++
		}
	}

	out := make([]LevelStat, 0, len(by))
	for lvl, a := range by {
		n := float64(a.n)
		out = append(out, LevelStat{
			Level:     lvl,
			Count:     a.n,
			AvgRet:    a.ret / n,
			AvgMinRet: a.minRet / n,
			HitRate:   float64(a.wins) / n,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

// unsettled returns rows with no forward returns that are at least age old.
func unsettled(rows []Row, now time.Time, age time.Duration) []int {
	var idx []int
	cutoff := now.Add(-age)
	for i, r := range rows {
		if r.Settled() || r.AuditDate.After(cutoff) {
			continue
		}
		idx = append(idx, i)
	}
	return idx
}

func pct(x, base float64) indicators.Value {
	if base == 0 {
		return indicators.Missing
	}
	return indicators.Of((x - base) / base * 100)
}
