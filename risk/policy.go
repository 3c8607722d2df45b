package risk

// Action is the recommended handling of a position at a risk level.
type Action string

const (
	Accumulate Action = "accumulate"
	Hold       Action = "hold"
	Reduce     Action = "reduce"
	Exit       Action = "exit"
)

// Policy holds every tuning constant of the scoring engine. It is loaded
// once (usually from the config file) and checked with Validate.
type Policy struct {
	Alpha      float64          `yaml:"alpha"`
	Position   PositionPolicy   `yaml:"position"`
	Energy     EnergyPolicy     `yaml:"energy"`
	Trap       TrapPolicy       `yaml:"trap"`
	Gate       GatePolicy       `yaml:"gate"`
	Bands      []Band           `yaml:"bands"`
	Allocation AllocationPolicy `yaml:"allocation"`
}

type PositionPolicy struct {
	Max float64 `yaml:"max"` // 30

	// Weights for the 1y..5y windows; renormalised over present windows.
	Weights []float64 `yaml:"weights"`

	SigmaCritical float64 `yaml:"sigma_critical"` // |z| that saturates a window, 2.5
	DownsideBias  float64 `yaml:"downside_bias"`  // multiplier for z < 0, 1.25
}

type EnergyPolicy struct {
	Max float64 `yaml:"max"` // 50

	MACDMax     float64 `yaml:"macd_max"`     // bearish cross
	MACDFalling float64 `yaml:"macd_falling"` // bullish, histogram falling
	MACDRising  float64 `yaml:"macd_rising"`  // bullish, histogram rising

	BBWMax          float64 `yaml:"bbw_max"`
	BBWDefaultLimit float64 `yaml:"bbw_default_limit"`

	FlowMax  float64 `yaml:"flow_max"`
	FlowSpan float64 `yaml:"flow_span"` // rsi-mfi gap that saturates

	RSIMax   float64 `yaml:"rsi_max"`
	RSIFloor float64 `yaml:"rsi_floor"`
	RSISpan  float64 `yaml:"rsi_span"`
}

// Partials is the sum of the energy partial maxima.
func (e EnergyPolicy) Partials() float64 {
	return e.MACDMax + e.BBWMax + e.FlowMax + e.RSIMax
}

type TrapPolicy struct {
	Max           float64 `yaml:"max"` // 20
	ADXFloor      float64 `yaml:"adx_floor"`
	ADXSaturation float64 `yaml:"adx_saturation"`
	R2Ceiling     float64 `yaml:"r2_ceiling"`
}

type GatePolicy struct {
	ADXMin float64 `yaml:"adx_min"`
	R2Min  float64 `yaml:"r2_min"`
	MFIMin float64 `yaml:"mfi_min"`

	ADXSaturation float64 `yaml:"adx_saturation"`
	R2Saturation  float64 `yaml:"r2_saturation"`
	MFISaturation float64 `yaml:"mfi_saturation"`

	MinDiscount float64 `yaml:"min_discount"`
	MaxDiscount float64 `yaml:"max_discount"`
}

// Band is one row of the level table. A score belongs to the band with the
// greatest Min not above it.
type Band struct {
	Level  int     `yaml:"level"`
	Min    float64 `yaml:"min"`
	Label  string  `yaml:"label"`
	Action Action  `yaml:"action"`
	Sizing string  `yaml:"sizing"`
}

type AllocationPolicy struct {
	StatWindow      int     `yaml:"stat_window"`      // 252
	StatSigmas      float64 `yaml:"stat_sigmas"`      // 2
	TechFactor      float64 `yaml:"tech_factor"`      // 0.92
	EmergencyFactor float64 `yaml:"emergency_factor"` // 0.90
	EIBenchmark     float64 `yaml:"ei_benchmark"`     // 0.20
	AccountRisk     float64 `yaml:"account_risk"`     // 0.008
	MaxWeightPct    float64 `yaml:"max_weight_pct"`   // 20
	HotSigma        float64 `yaml:"hot_sigma"`        // 2
	HotDrawdownPct  float64 `yaml:"hot_drawdown_pct"` // -15
	CalmDrawdownPct float64 `yaml:"calm_drawdown_pct"`
}

// DefaultBands is the nine-level table.
func DefaultBands() []Band {
	return []Band{
		{1, 0, "STRONG BUY", Accumulate, "Build to full target weight"},
		{2, 11, "BUY", Accumulate, "Add toward target weight on pullbacks"},
		{3, 21, "STABLE", Hold, "Hold full position"},
		{4, 31, "NEUTRAL", Hold, "Hold; no adds above target weight"},
		{5, 41, "WATCH", Hold, "Hold; no new entries"},
		{6, 61, "CAUTION", Reduce, "Trim 20% of position"},
		{7, 71, "WARNING", Reduce, "Trim 30% and tighten stop"},
		{8, 81, "DANGER", Reduce, "Take profit on 50% and raise cash"},
		{9, 91, "CRITICAL", Exit, "Exit position"},
	}
}

func DefaultPolicy() Policy {
	return Policy{
		Alpha: 0.5,
		Position: PositionPolicy{
			Max:           30,
			Weights:       []float64{0.2, 0.2, 0.2, 0.2, 0.2},
			SigmaCritical: 2.5,
			DownsideBias:  1.25,
		},
		Energy: EnergyPolicy{
			Max:             50,
			MACDMax:         10,
			MACDFalling:     6,
			MACDRising:      2,
			BBWMax:          12,
			BBWDefaultLimit: 0.30,
			FlowMax:         18,
			FlowSpan:        30,
			RSIMax:          10,
			RSIFloor:        50,
			RSISpan:         30,
		},
		Trap: TrapPolicy{
			Max:           20,
			ADXFloor:      20,
			ADXSaturation: 40,
			R2Ceiling:     0.5,
		},
		Gate: GatePolicy{
			ADXMin:        25,
			R2Min:         0.5,
			MFIMin:        40,
			ADXSaturation: 50,
			R2Saturation:  0.9,
			MFISaturation: 80,
			MinDiscount:   0.10,
			MaxDiscount:   0.50,
		},
		Bands: DefaultBands(),
		Allocation: AllocationPolicy{
			StatWindow:      252,
			StatSigmas:      2,
			TechFactor:      0.92,
			EmergencyFactor: 0.90,
			EIBenchmark:     0.20,
			AccountRisk:     0.008,
			MaxWeightPct:    20,
			HotSigma:        2,
			HotDrawdownPct:  -15,
			CalmDrawdownPct: -5,
		},
	}
}
