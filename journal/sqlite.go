package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteLedger stores every ticker in one table.
type SQLiteLedger struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}

	return &SQLiteLedger{db: db}, nil
}

var (
	insertSQL = buildInsert()
	selectSQL = "SELECT run_id, " + strings.Join(Header(), ", ") + " FROM ledger"
)

func buildInsert() string {
	names := append([]string{"run_id"}, Header()...)
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	return "INSERT OR REPLACE INTO ledger (" + strings.Join(names, ", ") + ") VALUES (" + marks + ")"
}

func (l *SQLiteLedger) Upsert(ctx context.Context, r Row) error {
	args := make([]any, 0, len(columns)+1)
	args = append(args, r.RunID)
	for _, c := range columns {
		args = append(args, sqlValue(c.ref(&r)))
	}
	_, err := l.db.ExecContext(ctx, insertSQL, args...)
	return err
}

func (l *SQLiteLedger) Rows(ctx context.Context, ticker string) ([]Row, error) {
	return l.query(ctx, selectSQL+" WHERE Ticker = ? ORDER BY Audit_Date ASC", ticker)
}

// Run returns every row written by one run.
func (l *SQLiteLedger) Run(ctx context.Context, runID string) ([]Row, error) {
	return l.query(ctx, selectSQL+" WHERE run_id = ? ORDER BY Ticker, Audit_Date", runID)
}

func (l *SQLiteLedger) Tickers(ctx context.Context) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT DISTINCT Ticker FROM ledger ORDER BY Ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (l *SQLiteLedger) query(ctx context.Context, q string, args ...any) ([]Row, error) {
	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	cells := make([]sql.NullString, len(columns)+1)
	dest := make([]any, len(cells))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		r := Row{RunID: cells[0].String}
		for i := range columns {
			if err := r.set(i, cells[i+1].String); err != nil {
				return nil, err
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
