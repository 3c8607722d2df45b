package feed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/sigmaguard/market"
)

const csvBody = `Date,Open,High,Low,Close,Volume
2024-01-02,10,11,9,10.5,1000
2024-01-03,10.5,12,10,11.5,1200
`

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AAPL.csv"), []byte(csvBody), 0o644))

	src := NewDir(dir)
	cs, err := src.Candles(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, cs, 2)
	assert.Equal(t, 11.5, cs[1].Close)

	_, err = src.Candles(context.Background(), "MSFT")
	assert.ErrorIs(t, err, market.ErrNoData)
}

func TestDirSourcePath(t *testing.T) {
	src := NewDir("/data")
	assert.Equal(t, filepath.Join("/data", "^VIX.csv"), src.Path("^VIX"))
	assert.Equal(t, filepath.Join("/data", "BRK_B.csv"), src.Path("BRK/B"))
}

type flaky struct {
	calls atomic.Int32
	err   error
}

func (f *flaky) Candles(ctx context.Context, ticker string) ([]market.Candle, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return []market.Candle{{Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 1}}, nil
}

func guardCfg() GuardConfig {
	return GuardConfig{
		Name:          "test",
		RatePerSecond: 1000,
		Burst:         10,
		Timeout:       time.Second,
		MaxFailures:   2,
		OpenFor:       time.Minute,
	}
}

func TestGuardedPassesThrough(t *testing.T) {
	g := NewGuarded(&flaky{}, guardCfg())
	cs, err := g.Candles(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Len(t, cs, 1)
	assert.Equal(t, "closed", g.State())
}

func TestGuardedTripsOnFailures(t *testing.T) {
	src := &flaky{err: errors.New("upstream 500")}
	g := NewGuarded(src, guardCfg())

	for i := 0; i < 2; i++ {
		_, err := g.Candles(context.Background(), "AAPL")
		assert.Error(t, err)
	}
	assert.Equal(t, "open", g.State())

	_, err := g.Candles(context.Background(), "AAPL")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), src.calls.Load(), "open breaker must not call upstream")
}

func TestGuardedNoDataDoesNotTrip(t *testing.T) {
	src := &flaky{err: market.ErrNoData}
	g := NewGuarded(src, guardCfg())

	for i := 0; i < 4; i++ {
		_, err := g.Candles(context.Background(), "AAPL")
		assert.ErrorIs(t, err, market.ErrNoData)
	}
	assert.Equal(t, "closed", g.State())
}

func TestGuardedCancelDoesNotTrip(t *testing.T) {
	src := &flaky{err: fmt.Errorf("fetch AAPL: %w", context.Canceled)}
	g := NewGuarded(src, guardCfg())

	for i := 0; i < 4; i++ {
		_, err := g.Candles(context.Background(), "AAPL")
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, "closed", g.State())
	assert.Equal(t, int32(4), src.calls.Load())
}

func TestGuardedHonoursCancel(t *testing.T) {
	cfg := guardCfg()
	cfg.RatePerSecond = 0.001
	cfg.Burst = 1
	g := NewGuarded(&flaky{}, cfg)

	_, err := g.Candles(context.Background(), "AAPL")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Candles(ctx, "AAPL")
	assert.Error(t, err)
}

func TestStatic(t *testing.T) {
	s := Static{"AAPL": {{Close: 1}}}
	_, err := s.Candles(context.Background(), "AAPL")
	assert.NoError(t, err)
	_, err = s.Candles(context.Background(), "MSFT")
	assert.ErrorIs(t, err, market.ErrNoData)
}
