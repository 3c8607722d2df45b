package journal

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	filePrefix = "sigma_guard_ledger_"
	fileSuffix = ".csv"
)

// CSVLedger keeps one CSV file per ticker in a directory.
type CSVLedger struct {
	dir string
	mu  sync.Mutex
}

func NewCSV(dir string) (*CSVLedger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	return &CSVLedger{dir: dir}, nil
}

// Path returns the ledger file for a ticker.
func (l *CSVLedger) Path(ticker string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(strings.ToUpper(ticker))
	return filepath.Join(l.dir, filePrefix+safe+fileSuffix)
}

// Upsert rewrites the ticker's file with r replacing any row on the same
// day. Rows stay in date order.
func (l *CSVLedger) Upsert(_ context.Context, r Row) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	path := l.Path(r.Ticker)
	rows, err := readLedgerFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	rows = upsert(rows, r)
	return writeLedgerFile(path, rows)
}

func (l *CSVLedger) Rows(_ context.Context, ticker string) ([]Row, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := readLedgerFile(l.Path(ticker))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return rows, err
}

// Tickers lists the tickers that have a ledger file.
func (l *CSVLedger) Tickers(_ context.Context) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(l.dir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		out = append(out, strings.TrimSuffix(strings.TrimPrefix(base, filePrefix), fileSuffix))
	}
	sort.Strings(out)
	return out, nil
}

func (l *CSVLedger) Close() error { return nil }

func upsert(rows []Row, r Row) []Row {
	replaced := false
	for i := range rows {
		if rows[i].Day() == r.Day() {
			rows[i] = r
			replaced = true
		}
	}
	if !replaced {
		rows = append(rows, r)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].AuditDate.Before(rows[j].AuditDate) })
	return rows
}

func readLedgerFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// ReadRows parses a ledger CSV. Columns are matched by header name, so
// files with missing or reordered columns still load.
func ReadRows(rd io.Reader) ([]Row, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c.name] = i
	}
	pos := make([]int, len(head))
	for i, h := range head {
		h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		if j, ok := index[h]; ok {
			pos[i] = j
		} else {
			pos[i] = -1
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		var r Row
		for i, cell := range rec {
			if i >= len(pos) || pos[i] < 0 {
				continue
			}
			if err := r.set(pos[i], cell); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// WriteRows writes the header and rows as CSV.
func WriteRows(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	for i := range rows {
		if err := cw.Write(rows[i].Cells()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeLedgerFile replaces path atomically through a temp file.
func writeLedgerFile(path string, rows []Row) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ledger-*")
	if err != nil {
		return err
	}
	if err := WriteRows(tmp, rows); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
