package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/sigmaguard/risk"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "data/prices", c.DataDir)
	assert.Equal(t, "SPY", c.Benchmark)
	assert.Equal(t, "csv", c.Ledger.Kind)
	assert.Equal(t, "ledger", c.State.Kind)
	assert.Equal(t, 4, c.Scan.Workers)
	assert.Equal(t, 30*time.Second, c.Feed.Timeout)
	assert.True(t, c.Macro.Enabled)
	assert.Equal(t, "^VIX", c.Macro.VIX)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, risk.DefaultPolicy(), c.Policy)
	assert.NoError(t, c.Validate())
}

func TestParseWatchlistShapes(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want Watchlist
	}{
		{
			name: "list of tickers",
			yaml: "watchlist: [AAPL, MSFT]\n",
			want: Watchlist{{Ticker: "AAPL"}, {Ticker: "MSFT"}},
		},
		{
			name: "map ticker to name",
			yaml: "watchlist:\n  B: Barrick Gold\n  SOXL: Semi Bull 3X\n",
			want: Watchlist{{Ticker: "B", Name: "Barrick Gold"}, {Ticker: "SOXL", Name: "Semi Bull 3X"}},
		},
		{
			name: "items",
			yaml: "watchlist:\n  - ticker: 005930.KS\n    name: Samsung\n    bench: ^KS11\n",
			want: Watchlist{{Ticker: "005930.KS", Name: "Samsung", Bench: "^KS11"}},
		},
		{
			name: "upper-case key",
			yaml: "WATCHLIST: [QQQ]\n",
			want: Watchlist{{Ticker: "QQQ"}},
		},
		{
			name: "empty",
			yaml: "watchlist:\n",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Watchlist)
		})
	}
}

func TestParseOverridesPolicy(t *testing.T) {
	c, err := Parse([]byte("policy:\n  alpha: 0.3\n  gate:\n    adx_min: 22\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.3, c.Policy.Alpha)
	assert.Equal(t, 22.0, c.Policy.Gate.ADXMin)
	assert.Equal(t, risk.DefaultPolicy().Gate.R2Min, c.Policy.Gate.R2Min)
	assert.Len(t, c.Policy.Bands, 9)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad alpha", "policy:\n  alpha: 1.5\n"},
		{"bad ledger kind", "ledger:\n  kind: parquet\n"},
		{"bad state kind", "state:\n  kind: etcd\n"},
		{"zero workers", "scan:\n  workers: 0\n"},
		{"scalar watchlist", "watchlist: AAPL\n"},
		{"blank ticker", "watchlist:\n  - ticker: ' '\n"},
		{"bad log level", "log:\n  level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SIGMAGUARD_DATA_DIR", "/srv/prices")
	t.Setenv("SIGMAGUARD_LEDGER_DIR", "/srv/ledgers")
	t.Setenv("SIGMAGUARD_LOG_LEVEL", "debug")
	t.Setenv("SIGMAGUARD_REDIS_ADDR", "redis:6379")

	c, err := Parse([]byte("data_dir: ./prices\n"))
	require.NoError(t, err)
	assert.Equal(t, "/srv/prices", c.DataDir)
	assert.Equal(t, "/srv/ledgers", c.Ledger.Dir)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "redis:6379", c.State.Redis.Addr)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sigmaguard.yaml")
	c := Default()
	c.Watchlist = Watchlist{{Ticker: "AAPL", Name: "Apple"}}
	c.Scan.Interval = time.Hour
	require.NoError(t, c.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, c.Watchlist, got.Watchlist)
	assert.Equal(t, time.Hour, got.Scan.Interval)
	assert.Equal(t, c.Policy, got.Policy)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWatchlistHelpers(t *testing.T) {
	w := Watchlist{{Ticker: "AAPL"}, {Ticker: "MSFT", Bench: "QQQ"}, {Ticker: "AAPL"}, {Ticker: "GLD", Bench: "-"}}
	assert.Equal(t, []string{"AAPL", "MSFT", "GLD"}, w.Tickers())

	assert.Equal(t, "SPY", BenchFor(w[0], "SPY"))
	assert.Equal(t, "QQQ", BenchFor(w[1], "SPY"))
	assert.Equal(t, "", BenchFor(w[3], "SPY"))
	assert.Equal(t, "", BenchFor(Item{Ticker: "SPY"}, "SPY"))
}
