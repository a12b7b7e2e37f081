package domain

// PolicyConfig represents bet-sizing policy configuration parameters.
type PolicyConfig struct {
	PolicyType string // "FLAT" | "FIXED_FRACTION" | "KELLY" | "RISK_ADJUSTED_KELLY"

	// FLAT parameters
	Stake *float64

	// FIXED_FRACTION parameters
	Fraction *float64

	// KELLY / RISK_ADJUSTED_KELLY parameters
	ProbWin     *float64
	DecimalOdds *float64
	Multiplier  *float64

	// RISK_ADJUSTED_KELLY parameters
	ProbStd       *float64
	EdgeThreshold *float64
	MaxDrawdown   *float64

	// Optional stake bounds, applied as wrappers around the base policy
	MinStake *float64
	MaxStake *float64
}

// Policy type constants
const (
	PolicyTypeFlat              = "FLAT"
	PolicyTypeFixedFraction     = "FIXED_FRACTION"
	PolicyTypeKelly             = "KELLY"
	PolicyTypeRiskAdjustedKelly = "RISK_ADJUSTED_KELLY"
)
