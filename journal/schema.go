package journal

import (
	"strings"
	"time"

	"github.com/rustyeddy/sigmaguard/indicators"
)

// Schema creates the ledger table: every ledger column plus run_id, keyed
// by ticker and audit date.
var Schema = buildSchema()

func buildSchema() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ledger (\n\trun_id TEXT NOT NULL DEFAULT ''")
	var r Row
	for _, c := range columns {
		b.WriteString(",\n\t")
		b.WriteString(c.name)
		b.WriteString(" ")
		b.WriteString(sqlType(c.ref(&r)))
	}
	b.WriteString(",\n\tPRIMARY KEY (Ticker, Audit_Date)\n);\n\n")
	b.WriteString("CREATE INDEX IF NOT EXISTS idx_ledger_run ON ledger(run_id);\n")
	return b.String()
}

func sqlType(p any) string {
	switch p.(type) {
	case *time.Time:
		// TEXT, not DATE: the driver would otherwise hand back time.Time
		return "TEXT NOT NULL"
	case *string:
		return "TEXT NOT NULL DEFAULT ''"
	case *int:
		return "INTEGER NOT NULL DEFAULT 0"
	case *float64:
		return "REAL NOT NULL DEFAULT 0"
	case *indicators.Value:
		return "REAL"
	}
	return "TEXT"
}
