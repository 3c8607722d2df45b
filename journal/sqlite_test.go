package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rustyeddy/sigmaguard/indicators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLiteLedger, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	l, err := NewSQLite(path)
	require.NoError(t, err)
	return l, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	l, path := newTestSQLite(t)
	require.NoError(t, l.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`PRAGMA table_info(ledger)`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		require.NoError(t, rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, append([]string{"run_id"}, Header()...), names)
}

func TestSQLiteUpsertAndReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, path := newTestSQLite(t)

	a := sampleRow("AAPL", "2024-01-02", 30)
	a.RunID = "01HRUNA"
	b := sampleRow("AAPL", "2024-01-03", 44.5)
	b.RunID = "01HRUNB"
	b.Ret20d = indicators.Of(-2.5)

	require.NoError(t, l.Upsert(ctx, b))
	require.NoError(t, l.Upsert(ctx, a))
	require.NoError(t, l.Upsert(ctx, sampleRow("MSFT", "2024-01-03", 12)))

	b.RiskScore = 47
	require.NoError(t, l.Upsert(ctx, b), "same ticker and day replaces")
	require.NoError(t, l.Close())

	l, err := NewSQLite(path)
	require.NoError(t, err)
	defer l.Close()

	rows, err := l.Rows(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, a, rows[0])
	assert.Equal(t, b, rows[1])
	assert.False(t, rows[0].MFIT.Present(), "NULL reads back as missing")
	assert.Equal(t, indicators.Of(0), rows[0].RSIT)

	run, err := ByRun(ctx, l, "01HRUNB")
	require.NoError(t, err)
	require.Len(t, run, 1)
	assert.Equal(t, 47.0, run[0].RiskScore)

	_, err = ByRun(ctx, l, "01HNOPE")
	assert.ErrorIs(t, err, ErrNotFound)

	tickers, err := l.Tickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, tickers)
}
