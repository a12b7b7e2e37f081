package domain

// BetAssessment represents a single-bet evaluation combining implied
// probability, edge, and expected value at a given stake.
type BetAssessment struct {
	ImpliedProbability   float64 // bookmaker break-even probability
	EstimatedProbability float64 // model-estimated win probability
	Edge                 float64 // estimated minus implied probability
	ExpectedValue        float64 // expected profit at the assessed stake
	Stake                float64 // stake the assessment was computed for
	Verdict              string  // "GOOD BET" | "BAD BET"
	Quality              string  // edge quality label
}

// Assessment verdict constants
const (
	VerdictGoodBet = "GOOD BET"
	VerdictBadBet  = "BAD BET"
)

// Edge quality labels
const (
	QualityStrongPositiveEdge = "STRONG POSITIVE EDGE"
	QualitySmallPositiveEdge  = "SMALL POSITIVE EDGE"
	QualityBreakeven          = "BREAKEVEN"
	QualityNegativeEdge       = "NEGATIVE EDGE"
)
