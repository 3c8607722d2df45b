package journal

import (
	"fmt"
	"strings"
)

// FormatRowOrg renders a ledger row as an Org-mode entry. Scores and the
// gate go in a PROPERTIES drawer so they stay searchable.
func FormatRowOrg(r Row) string {
	heading := fmt.Sprintf("** %s %s: L%d %.1f (%s)", r.Day(), r.Ticker, r.RiskLevel, r.RiskScore, r.SOPAction)

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	if r.RunID != "" {
		b.WriteString(fmt.Sprintf(":RUN_ID: %s\n", r.RunID))
		b.WriteString(fmt.Sprintf(":ID: %s-%s\n", shortID(r.RunID), r.Ticker))
	}
	b.WriteString(fmt.Sprintf(":TICKER: %s\n", r.Ticker))
	if r.Name != "" {
		b.WriteString(fmt.Sprintf(":NAME: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf(":AUDIT_DATE: %s\n", r.Day()))
	b.WriteString(fmt.Sprintf(":PRICE: %.2f\n", r.PriceT))
	b.WriteString(fmt.Sprintf(":RISK_SCORE: %.1f\n", r.RiskScore))
	b.WriteString(fmt.Sprintf(":RISK_LEVEL: %d\n", r.RiskLevel))
	b.WriteString(fmt.Sprintf(":BASE_RAW: %.1f\n", r.BaseRawScore))
	b.WriteString(fmt.Sprintf(":POSITION: %.1f\n", r.ScorePos))
	b.WriteString(fmt.Sprintf(":ENERGY: %.1f\n", r.ScoreEne))
	b.WriteString(fmt.Sprintf(":TRAP: %.1f\n", r.ScoreTrap))
	b.WriteString(fmt.Sprintf(":GATE: %s\n", r.LivermoreStatus))
	b.WriteString(fmt.Sprintf(":STOP: %.2f\n", r.StopPrice))
	b.WriteString(fmt.Sprintf(":WEIGHT_PCT: %.1f\n", r.WeightPct))
	if r.Settled() {
		b.WriteString(fmt.Sprintf(":RET_20D: %s\n", r.Ret20d))
	}
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatRowsOrg renders multiple rows separated by blank lines.
func FormatRowsOrg(rows []Row) string {
	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatRowOrg(r))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
