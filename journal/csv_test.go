package journal

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/sigmaguard/indicators"
	"github.com/rustyeddy/sigmaguard/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleRow(ticker, d string, score float64) Row {
	r := Row{
		AuditDate:       day(d),
		Ticker:          ticker,
		Name:            ticker + " Inc.",
		RiskScore:       score,
		RiskLevel:       risk.Classify(risk.DefaultBands(), score).Level,
		PriceT:          100,
		SigmaTAvg:       indicators.Of(1.25),
		RSIT:            indicators.Of(0),
		ADXT:            indicators.Of(31.5),
		TickerB:         "SPY",
		PriceB:          indicators.Of(500.25),
		LivermoreStatus: "UNCONFIRMED",
		BaseRawScore:    score,
		RiskMultiplier:  1,
		TrendScenario:   "BULLISH",
		ScorePosEMA:     12.5,
		SOPAction:       "hold",
	}
	r.SigmaT[0] = indicators.Of(-0.75)
	return r
}

func TestHeaderHas53Columns(t *testing.T) {
	t.Parallel()

	h := Header()
	require.Len(t, h, 53)
	assert.Equal(t, "Audit_Date", h[0])
	assert.Equal(t, "Max_Ret_20d", h[52])

	seen := map[string]bool{}
	for _, n := range h {
		assert.False(t, seen[n], "duplicate column %s", n)
		seen[n] = true
	}
}

func TestCellsKeepMissingEmpty(t *testing.T) {
	t.Parallel()

	r := sampleRow("AAPL", "2024-03-01", 42.123456)
	cells := r.Cells()
	byName := map[string]string{}
	for i, n := range Header() {
		byName[n] = cells[i]
	}

	assert.Equal(t, "2024-03-01", byName["Audit_Date"])
	assert.Equal(t, "42.1235", byName["Risk_Score"])
	assert.Equal(t, "0", byName["RSI_T"], "a present zero is written")
	assert.Equal(t, "", byName["MFI_T"], "missing is empty")
	assert.Equal(t, "", byName["Ret_20d"])
	assert.Equal(t, "-0.75", byName["Sigma_T_1y"])
}

func TestReadRowsByHeaderName(t *testing.T) {
	t.Parallel()

	in := "\ufeffTicker,Risk_Score,Audit_Date,Unknown,Ret_20d\nAAPL,55.5,2024-01-05,zzz,\nAAPL,60,2024-01-08,zzz,3.25\n"
	rows, err := ReadRows(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "AAPL", rows[0].Ticker)
	assert.Equal(t, 55.5, rows[0].RiskScore)
	assert.Equal(t, "2024-01-05", rows[0].Day())
	assert.False(t, rows[0].Settled())
	assert.Equal(t, indicators.Of(3.25), rows[1].Ret20d)

	_, err = ReadRows(strings.NewReader("Audit_Date,Risk_Score\n2024-01-05,abc\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestWriteRowsRoundTrip(t *testing.T) {
	t.Parallel()

	src := []Row{sampleRow("MSFT", "2024-02-01", 33), sampleRow("MSFT", "2024-02-02", 35.5)}
	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, src))

	got, err := ReadRows(&buf)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestCSVLedgerUpsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, err := NewCSV(t.TempDir())
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Upsert(ctx, sampleRow("aapl", "2024-01-03", 40)))
	require.NoError(t, l.Upsert(ctx, sampleRow("AAPL", "2024-01-02", 30)))
	require.NoError(t, l.Upsert(ctx, sampleRow("AAPL", "2024-01-03", 45)), "same day replaces")
	require.NoError(t, l.Upsert(ctx, sampleRow("MSFT", "2024-01-03", 20)))

	assert.True(t, strings.HasSuffix(l.Path("aapl"), "sigma_guard_ledger_AAPL.csv"))

	rows, err := l.Rows(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01-02", rows[0].Day())
	assert.Equal(t, 45.0, rows[1].RiskScore)

	tickers, err := l.Tickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, tickers)

	none, err := l.Rows(ctx, "NOPE")
	require.NoError(t, err)
	assert.Empty(t, none)

	f, err := os.Open(l.Path("AAPL"))
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, Header(), recs[0])
}

func TestCSVLedgerHasNoRunIndex(t *testing.T) {
	t.Parallel()

	l, err := NewCSV(t.TempDir())
	require.NoError(t, err)
	defer l.Close()

	_, err = ByRun(context.Background(), l, "01HRUNA")
	assert.ErrorIs(t, err, ErrNoRunIndex)
}

func TestNewRowFromRecord(t *testing.T) {
	t.Parallel()

	snap := indicators.Snapshot{
		Date:       day("2024-04-02"),
		Bars:       10,
		Close:      123.45,
		BenchClose: indicators.Of(500),
		Values: map[indicators.Name]indicators.Value{
			indicators.Sigma1Y: indicators.Of(1.1),
			indicators.RSI:     indicators.Of(61),
		},
		Bench: map[indicators.Name]indicators.Value{indicators.RSI: indicators.Of(48)},
	}
	rec := risk.Record{
		Ticker:   "NVDA",
		Date:     snap.Date,
		Position: risk.Component{Raw: 20, Smoothed: 18},
		Raw:      50,
		Smoothed: 60,
		Gate:     risk.GateResult{Open: true, Discount: 0.2},
		Score:    48,
		Level:    5,
		Band:     risk.Band{Level: 5, Action: risk.Hold},
		Scenario: "BULLISH",
	}

	r := NewRow(Entry{RunID: "01HX", Name: "NVIDIA", BenchTicker: "QQQ", Record: rec, Snapshot: snap,
		Allocation: risk.Allocation{Stop: 110, WeightPct: 8}, Macro: Macro{VIX: 14.2}})

	assert.Equal(t, "NVDA", r.Ticker)
	assert.Equal(t, 123.45, r.PriceT)
	assert.Equal(t, indicators.Of(1.1), r.SigmaT[0])
	assert.False(t, r.SigmaT[4].Present())
	assert.Equal(t, indicators.Of(48), r.RSIB)
	assert.InDelta(t, 0.8, r.RiskMultiplier, 1e-12)
	assert.InDelta(t, 60.0, r.Smoothed(), 1e-9)
	assert.Equal(t, "hold", r.SOPAction)
	assert.Equal(t, 14.2, r.VIX)

	p := r.Prior()
	assert.InDelta(t, 60.0, p.Smoothed, 1e-9)
	assert.Equal(t, 18.0, p.Position)
	assert.Equal(t, 5, p.Level)

	noBench := NewRow(Entry{Record: rec, Snapshot: indicators.Snapshot{Bars: 1}})
	assert.Equal(t, "N/A", noBench.TickerB)
}
