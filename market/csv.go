package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// IngestStats counts the rows ReadCSV skipped.
type IngestStats struct {
	Rows       int
	BadLines   int
	Duplicates int
}

var timeLayouts = []string{
	dateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
	"20060102",
}

// columns maps a field to its index in a row.
type columns struct {
	date, open, high, low, close, volume int
}

var defaultColumns = columns{date: 0, open: 1, high: 2, low: 3, close: 4, volume: 5}

// LoadCSV reads a daily OHLCV file from disk.
func LoadCSV(path string) ([]Candle, IngestStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, IngestStats{}, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses daily OHLCV rows:
//
//	Date,Open,High,Low,Close[,Adj Close],Volume
//
// A header row is optional; when present, columns are located by name so
// vendor exports with extra columns load unchanged. Unparseable rows are
// skipped and counted, later duplicates of a date are dropped (keep-first),
// and the result is sorted by date.
func ReadCSV(r io.Reader) ([]Candle, IngestStats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		stats    IngestStats
		out      []Candle
		cols     = defaultColumns
		sawFirst bool
	)

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read csv: %w", err)
		}
		if len(row) == 0 {
			continue
		}

		// Allow a single header row
		if !sawFirst {
			sawFirst = true
			if isHeader(row) {
				cols = headerColumns(row)
				continue
			}
		}

		stats.Rows++
		c, ok := parseRow(row, cols)
		if !ok {
			stats.BadLines++
			continue
		}
		out = append(out, c)
	}

	out, dups := Normalize(out)
	stats.Duplicates = dups
	return out, stats, nil
}

func isHeader(row []string) bool {
	first := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(row[0], "\ufeff")))
	return first == "date" || first == "time" || first == "datetime"
}

func headerColumns(row []string) columns {
	cols := columns{date: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, name := range row {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case "date", "time", "datetime":
			cols.date = i
		case "open":
			cols.open = i
		case "high":
			cols.high = i
		case "low":
			cols.low = i
		case "close":
			cols.close = i
		case "adj close", "adj_close":
			if cols.close < 0 {
				cols.close = i
			}
		case "volume":
			cols.volume = i
		}
	}
	return cols
}

func parseRow(row []string, cols columns) (Candle, bool) {
	field := func(i int) (string, bool) {
		if i < 0 || i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}

	ds, ok := field(cols.date)
	if !ok {
		return Candle{}, false
	}
	t, err := parseTime(ds)
	if err != nil {
		return Candle{}, false
	}

	var vals [4]float64
	for k, idx := range []int{cols.open, cols.high, cols.low, cols.close} {
		s, ok := field(idx)
		if !ok {
			return Candle{}, false
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Candle{}, false
		}
		vals[k] = v
	}

	// Volume is optional; indices without volume still score price-only indicators.
	var vol float64
	if s, ok := field(cols.volume); ok && s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Candle{}, false
		}
		vol = v
	}

	return Candle{
		Time:   t,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vol,
	}, true
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// WriteCSV writes candles with a header in the format ReadCSV expects.
func WriteCSV(w io.Writer, cs []Candle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Open", "High", "Low", "Close", "Volume"}); err != nil {
		return err
	}
	for _, c := range cs {
		if err := cw.Write([]string{
			c.Day(),
			f(c.Open),
			f(c.High),
			f(c.Low),
			f(c.Close),
			f(c.Volume),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
