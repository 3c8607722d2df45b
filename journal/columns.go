package journal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/sigmaguard/indicators"
)

const dateLayout = "2006-01-02"

type column struct {
	name string
	ref  func(r *Row) any
}

// columns is the ledger layout, in file order.
var columns = []column{
	{"Audit_Date", func(r *Row) any { return &r.AuditDate }},
	{"Ticker", func(r *Row) any { return &r.Ticker }},
	{"Name", func(r *Row) any { return &r.Name }},
	{"Risk_Score", func(r *Row) any { return &r.RiskScore }},
	{"Risk_Level", func(r *Row) any { return &r.RiskLevel }},
	{"Price_T", func(r *Row) any { return &r.PriceT }},
	{"Sigma_T_Avg", func(r *Row) any { return &r.SigmaTAvg }},
	{"Sigma_T_1y", func(r *Row) any { return &r.SigmaT[0] }},
	{"Sigma_T_2y", func(r *Row) any { return &r.SigmaT[1] }},
	{"Sigma_T_3y", func(r *Row) any { return &r.SigmaT[2] }},
	{"Sigma_T_4y", func(r *Row) any { return &r.SigmaT[3] }},
	{"Sigma_T_5y", func(r *Row) any { return &r.SigmaT[4] }},
	{"RSI_T", func(r *Row) any { return &r.RSIT }},
	{"MFI_T", func(r *Row) any { return &r.MFIT }},
	{"BBW_T", func(r *Row) any { return &r.BBWT }},
	{"R2_T", func(r *Row) any { return &r.R2T }},
	{"ADX_T", func(r *Row) any { return &r.ADXT }},
	{"Disp_T_120", func(r *Row) any { return &r.DispT120 }},
	{"Ticker_B", func(r *Row) any { return &r.TickerB }},
	{"Price_B", func(r *Row) any { return &r.PriceB }},
	{"Sigma_B_Avg", func(r *Row) any { return &r.SigmaBAvg }},
	{"RSI_B", func(r *Row) any { return &r.RSIB }},
	{"MFI_B", func(r *Row) any { return &r.MFIB }},
	{"ADX_B", func(r *Row) any { return &r.ADXB }},
	{"BBW_B", func(r *Row) any { return &r.BBWB }},
	{"Stop_Price", func(r *Row) any { return &r.StopPrice }},
	{"Risk_Gap_Pct", func(r *Row) any { return &r.RiskGapPct }},
	{"Invest_EI", func(r *Row) any { return &r.InvestEI }},
	{"Weight_Pct", func(r *Row) any { return &r.WeightPct }},
	{"Expected_MDD", func(r *Row) any { return &r.ExpectedMDD }},
	{"Livermore_Status", func(r *Row) any { return &r.LivermoreStatus }},
	{"Base_Raw_Score", func(r *Row) any { return &r.BaseRawScore }},
	{"Risk_Multiplier", func(r *Row) any { return &r.RiskMultiplier }},
	{"Trend_Scenario", func(r *Row) any { return &r.TrendScenario }},
	{"Score_Pos", func(r *Row) any { return &r.ScorePos }},
	{"Score_Pos_EMA", func(r *Row) any { return &r.ScorePosEMA }},
	{"Score_Ene", func(r *Row) any { return &r.ScoreEne }},
	{"Score_Ene_EMA", func(r *Row) any { return &r.ScoreEneEMA }},
	{"Score_Trap", func(r *Row) any { return &r.ScoreTrap }},
	{"Score_Trap_EMA", func(r *Row) any { return &r.ScoreTrapEMA }},
	{"VIX_T", func(r *Row) any { return &r.VIX }},
	{"US10Y_T", func(r *Row) any { return &r.US10Y }},
	{"DXY_T", func(r *Row) any { return &r.DXY }},
	{"MACD_Hist_T", func(r *Row) any { return &r.MACDHistT }},
	{"MACD_Hist_B", func(r *Row) any { return &r.MACDHistB }},
	{"ADX_Gap", func(r *Row) any { return &r.ADXGap }},
	{"Disp_Limit", func(r *Row) any { return &r.DispLimit }},
	{"BBW_Thr", func(r *Row) any { return &r.BBWThr }},
	{"LIV_Discount", func(r *Row) any { return &r.LivDiscount }},
	{"SOP_Action", func(r *Row) any { return &r.SOPAction }},
	{"Ret_20d", func(r *Row) any { return &r.Ret20d }},
	{"Min_Ret_20d", func(r *Row) any { return &r.MinRet20d }},
	{"Max_Ret_20d", func(r *Row) any { return &r.MaxRet20d }},
}

// Header returns the ledger column names in order.
func Header() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.name
	}
	return out
}

// Cells renders the row in Header order. Missing values are empty.
func (r *Row) Cells() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = formatCell(c.ref(r))
	}
	return out
}

// set parses one cell into the column at index i.
func (r *Row) set(i int, s string) error {
	s = strings.TrimSpace(s)
	switch p := columns[i].ref(r).(type) {
	case *time.Time:
		if s == "" {
			return fmt.Errorf("%s is empty", columns[i].name)
		}
		t, err := time.Parse(dateLayout, s[:min(len(s), len(dateLayout))])
		if err != nil {
			return fmt.Errorf("%s: %w", columns[i].name, err)
		}
		*p = t
	case *string:
		*p = s
	case *int:
		if s == "" {
			*p = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", columns[i].name, err)
		}
		*p = int(f)
	case *float64:
		if s == "" {
			*p = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", columns[i].name, err)
		}
		*p = f
	case *indicators.Value:
		if s == "" {
			*p = indicators.Missing
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", columns[i].name, err)
		}
		*p = indicators.Of(f)
	}
	return nil
}

// sqlValue is the database form of a column: NULL for missing values.
func sqlValue(p any) any {
	switch v := p.(type) {
	case *time.Time:
		return v.UTC().Format(dateLayout)
	case *string:
		return *v
	case *int:
		return *v
	case *float64:
		return round4(*v)
	case *indicators.Value:
		if x, ok := v.Get(); ok {
			return round4(x)
		}
		return nil
	}
	return nil
}

func formatCell(p any) string {
	switch v := p.(type) {
	case *time.Time:
		return v.UTC().Format(dateLayout)
	case *string:
		return *v
	case *int:
		return strconv.Itoa(*v)
	case *float64:
		return num(*v)
	case *indicators.Value:
		if x, ok := v.Get(); ok {
			return num(x)
		}
		return ""
	}
	return ""
}

func round4(x float64) float64 {
	r := math.Round(x*1e4) / 1e4
	if r == 0 {
		return 0 // no "-0" in the ledger
	}
	return r
}

func num(x float64) string {
	return strconv.FormatFloat(round4(x), 'f', -1, 64)
}
