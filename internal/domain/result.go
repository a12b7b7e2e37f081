package domain

// PathResult represents one simulated bankroll trajectory.
// Owned by its trial; folded into a BatchResult and discarded.
type PathResult struct {
	Path          []float64 // bankroll after each played bet; Path[0] is the initial bankroll
	FinalBankroll float64   // bankroll when the trial ended, >= 0
	MaxDrawdown   float64   // worst fractional retracement from the running peak, [0, 1]
	Ruined        bool      // true if the trial hit zero or the ruin floor early
}

// BatchResult aggregates all trials of one batch run.
// Immutable once returned; owns its slices exclusively.
type BatchResult struct {
	PolicyID string      // sizing policy identifier
	Params   BatchParams // parameters the batch ran with
	Seed     int64       // seed actually used (resolved when Params.Seed is nil)

	// Parallel per-trial sequences, in trial execution order
	FinalBankrolls []float64
	MaxDrawdowns   []float64
	RuinedFlags    []bool

	// First Params.PathsToStore trial paths, kept for inspection
	SamplePaths [][]float64

	Summary BatchSummary
}

// BatchSummary represents scalar reductions over a batch's trials.
type BatchSummary struct {
	TotalTrials int // number of trials run
	RuinedCount int // trials that ended in ruin

	// Final bankroll distribution
	MeanFinalBankroll   float64
	MedianFinalBankroll float64
	StddevFinalBankroll float64
	MinFinalBankroll    float64
	MaxFinalBankroll    float64
	P10FinalBankroll    float64 // 10th percentile
	P90FinalBankroll    float64 // 90th percentile

	// Outcome probabilities
	ProbabilityOfProfit float64 // fraction of trials strictly above the initial bankroll
	ProbabilityOfRuin   float64 // fraction of trials flagged ruined

	// Drawdown
	MeanMaxDrawdown   float64
	MedianMaxDrawdown float64
}
