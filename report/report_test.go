package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/sigmaguard/indicators"
	"github.com/rustyeddy/sigmaguard/journal"
	"github.com/rustyeddy/sigmaguard/risk"
)

func TestBadge(t *testing.T) {
	assert.Equal(t, "✅", Badge(1))
	assert.Equal(t, "✅", Badge(2))
	assert.Equal(t, "🟡", Badge(3))
	assert.Equal(t, "🔴", Badge(4))
	assert.Equal(t, "🚨", Badge(9))
}

func TestDelta(t *testing.T) {
	assert.Equal(t, "", Delta(risk.Record{Direction: risk.New}))
	assert.Equal(t, "(▲3.5)", Delta(risk.Record{Direction: risk.Up, Delta: 3.5}))
	assert.Equal(t, "(▼7.0)", Delta(risk.Record{Direction: risk.Down, Delta: -7}))
	assert.Equal(t, "(-0.0)", Delta(risk.Record{Direction: risk.Unchanged}))
}

func TestRecord(t *testing.T) {
	bands := risk.DefaultBands()
	r := risk.Record{
		Ticker:    "AAPL",
		Date:      time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Score:     63,
		Level:     6,
		Band:      bands[5],
		Direction: risk.Down,
		Delta:     -7,
		Scenario:  "BULLISH",
	}
	a := risk.Allocation{Stop: 92, RiskPct: 8, EI: 2.5, WeightPct: 10}

	msg := Record("Apple", r, a, time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC))
	assert.Contains(t, msg, "🚨 [SigmaGuard audit] Apple (AAPL)")
	assert.Contains(t, msg, "Score: 63.0 (▼7.0)")
	assert.Contains(t, msg, "Lv.6 "+bands[5].Label)
	assert.Contains(t, msg, "Stop: 92.00 (risk -8.0%)")
	assert.Contains(t, msg, "2024-03-05 09:30 (data 2024-03-04)")
	assert.NotContains(t, msg, "emergency")
}

func TestAudit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Audit(&buf, nil))
	assert.Equal(t, "no settled rows\n", buf.String())

	buf.Reset()
	require.NoError(t, Audit(&buf, []journal.LevelStat{
		{Level: 2, Count: 4, AvgRet: 3.25, AvgMinRet: -1.5, HitRate: 0.75},
	}))
	out := buf.String()
	assert.Contains(t, out, "Level")
	assert.Contains(t, out, "3.25%")
	assert.Contains(t, out, "75%")
}

func TestRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Rows(&buf, []journal.Row{{
		AuditDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Ticker:    "AAPL",
		RiskScore: 63,
		RiskLevel: 6,
		Ret20d:    indicators.Of(2.5),
	}}))
	assert.Contains(t, buf.String(), "2024-03-04")
	assert.Contains(t, buf.String(), "2.5000")
}
