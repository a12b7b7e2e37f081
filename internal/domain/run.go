package domain

// RunRecord represents a persisted batch run with its parameters and summary.
// Corresponds to run_records table in PostgreSQL.
type RunRecord struct {
	RunID    string // PRIMARY KEY, deterministic hash
	PolicyID string // sizing policy identifier

	// Policy configuration, snapshotted so the policy can be rebuilt on replay
	Policy PolicyConfig

	// Batch parameters, snapshotted so the run can be replayed
	ProbWin         float64
	DecimalOdds     float64
	InitialBankroll float64
	NBets           int
	NSims           int
	RuinThreshold   float64
	PathsToStore    int
	Seed            int64 // seed actually used

	// Summary
	TotalTrials         int
	RuinedCount         int
	MeanFinalBankroll   float64
	MedianFinalBankroll float64
	StddevFinalBankroll float64
	MinFinalBankroll    float64
	MaxFinalBankroll    float64
	P10FinalBankroll    float64
	P90FinalBankroll    float64
	ProbabilityOfProfit float64
	ProbabilityOfRuin   float64
	MeanMaxDrawdown     float64
	MedianMaxDrawdown   float64

	CreatedAt int64 // record creation timestamp (ms)
}

// Summary reassembles the record's flattened summary columns into a
// BatchSummary, the shape replay and reporting work with.
func (r *RunRecord) Summary() BatchSummary {
	return BatchSummary{
		TotalTrials:         r.TotalTrials,
		RuinedCount:         r.RuinedCount,
		MeanFinalBankroll:   r.MeanFinalBankroll,
		MedianFinalBankroll: r.MedianFinalBankroll,
		StddevFinalBankroll: r.StddevFinalBankroll,
		MinFinalBankroll:    r.MinFinalBankroll,
		MaxFinalBankroll:    r.MaxFinalBankroll,
		P10FinalBankroll:    r.P10FinalBankroll,
		P90FinalBankroll:    r.P90FinalBankroll,
		ProbabilityOfProfit: r.ProbabilityOfProfit,
		ProbabilityOfRuin:   r.ProbabilityOfRuin,
		MeanMaxDrawdown:     r.MeanMaxDrawdown,
		MedianMaxDrawdown:   r.MedianMaxDrawdown,
	}
}

// PathPoint represents one bankroll observation within a stored sample path.
// Corresponds to path_timeseries table in ClickHouse.
type PathPoint struct {
	RunID    string  // run identifier
	Trial    int     // trial index within the batch
	BetIndex int     // 0 is the initial bankroll, t is the bankroll after bet t
	Bankroll float64 // bankroll value at this point
}
