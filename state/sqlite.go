package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/sigmaguard/risk"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS prior_state (
	ticker TEXT PRIMARY KEY,
	body TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// SQLiteStore keeps priors in a local database file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create state schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) entry(ctx context.Context, ticker string) (Entry, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM prior_state WHERE ticker = ?`, ticker).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, nil
	}
	if err != nil {
		return Entry{}, err
	}
	var e Entry
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		return Entry{}, fmt.Errorf("decode state %s: %w", ticker, err)
	}
	return e, nil
}

func (s *SQLiteStore) Load(ctx context.Context, ticker string, before time.Time) (risk.Prior, error) {
	e, err := s.entry(ctx, ticker)
	if err != nil {
		return risk.Prior{}, err
	}
	if p, ok := e.Before(before); ok {
		return p, nil
	}
	return risk.Prior{}, ErrNotFound
}

func (s *SQLiteStore) Save(ctx context.Context, ticker string, p risk.Prior) error {
	e, err := s.entry(ctx, ticker)
	if err != nil {
		return err
	}
	body, err := json.Marshal(e.Push(p))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO prior_state (ticker, body, updated_at) VALUES (?, ?, ?)`,
		ticker, string(body), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
