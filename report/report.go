// Package report renders scored records and audits as plain text.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rustyeddy/sigmaguard/journal"
	"github.com/rustyeddy/sigmaguard/risk"
)

const rule = "━━━━━━━━━━━━━━"

// Badge is the severity marker shown in front of a level.
func Badge(level int) string {
	switch {
	case level >= 5:
		return "🚨"
	case level == 4:
		return "🔴"
	case level == 3:
		return "🟡"
	default:
		return "✅"
	}
}

// Delta renders the change against the previous cycle, e.g. "(▲3.5)".
// It is empty on a ticker's first cycle.
func Delta(r risk.Record) string {
	if r.Direction == risk.New {
		return ""
	}
	d := r.Delta
	if d < 0 {
		d = -d
	}
	return fmt.Sprintf("(%s%.1f)", r.Direction.Marker(), d)
}

// Record is the per-ticker audit message.
func Record(name string, r risk.Record, a risk.Allocation, now time.Time) string {
	title := r.Ticker
	if name != "" && name != r.Ticker {
		title = fmt.Sprintf("%s (%s)", name, r.Ticker)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [SigmaGuard audit] %s\n", Badge(r.Level), title)
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "• Status: %s (Lv.%d %s)\n", r.Scenario, r.Level, r.Band.Label)
	fmt.Fprintf(&b, "• Score: %.1f %s\n", r.Score, Delta(r))
	fmt.Fprintf(&b, "• Components: pos %.1f  ene %.1f  trap %.1f\n",
		r.Position.Smoothed, r.Energy.Smoothed, r.Trap.Smoothed)
	fmt.Fprintf(&b, "• Multiplier: x%.2f (%s)\n", r.Gate.Multiplier(), r.Gate.Status())
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "• Action: %s, %s\n", r.Band.Action, r.Band.Sizing)
	fmt.Fprintf(&b, "• Weight: %.2f%% (EI %.2f)\n", a.WeightPct, a.EI)
	stop := fmt.Sprintf("%.2f (risk %.1f%%)", a.Stop, -a.RiskPct)
	if a.Emergency {
		stop += " emergency"
	}
	fmt.Fprintf(&b, "• Stop: %s\n", stop)
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "📅 %s (data %s)", now.Format("2006-01-02 15:04"), r.Date.Format("2006-01-02"))
	return b.String()
}

// Audit writes the per-level forward-return table.
func Audit(w io.Writer, stats []journal.LevelStat) error {
	if len(stats) == 0 {
		_, err := fmt.Fprintln(w, "no settled rows")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Level\tCount\tAvg Ret 20d\tAvg Min Ret\tHit Rate\t")
	for _, s := range stats {
		fmt.Fprintf(tw, "%d\t%d\t%.2f%%\t%.2f%%\t%.0f%%\t\n",
			s.Level, s.Count, s.AvgRet, s.AvgMinRet, s.HitRate*100)
	}
	return tw.Flush()
}

// Rows writes a compact ledger listing, newest last.
func Rows(w io.Writer, rows []journal.Row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tTicker\tScore\tLevel\tGate\tAction\tRet 20d")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\t%s\t%s\t%s\n",
			r.Day(), r.Ticker, r.RiskScore, r.RiskLevel, r.LivermoreStatus, r.SOPAction, r.Ret20d)
	}
	return tw.Flush()
}
