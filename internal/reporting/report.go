package reporting

import (
	"time"

	"bankroll-lab/internal/decision"
	"bankroll-lab/internal/metrics"
)

// Report represents the sweep report structure.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	PolicyCount int
	TotalTrials int // summed over the latest run of every policy

	// Overall gate outcome, carried by the leading policy. The pipeline
	// overrides this with INSUFFICIENT_DATA when sufficiency checks fail.
	Decision      decision.Decision
	LeadingPolicy string // policy ranked first by median final bankroll

	// Policy Comparison (sorted by median final bankroll, descending)
	PolicyMetrics []PolicyMetricRow

	// Bankroll Envelope (sample paths of the leading policy's run)
	Envelope EnvelopeSection

	// Stake Gate outcomes, in leaderboard order
	Gates []*decision.DecisionResult
}

// PolicyMetricRow represents one row in the policy comparison table.
type PolicyMetricRow struct {
	PolicyID            string
	RunID               string
	TotalTrials         int
	RuinedCount         int
	InitialBankroll     float64
	MeanFinalBankroll   float64
	MedianFinalBankroll float64
	StddevFinalBankroll float64
	P10FinalBankroll    float64
	P90FinalBankroll    float64
	ProbabilityOfProfit float64
	ProbabilityOfRuin   float64
	MeanMaxDrawdown     float64
	CreatedAt           int64 // Unix ms
}

// EnvelopeSection holds the mean/P10/P90 bankroll band over one run's
// sample paths. Empty when no path store was wired or the run persisted
// no paths.
type EnvelopeSection struct {
	PolicyID string
	RunID    string
	Points   []metrics.EnvelopePoint
}
