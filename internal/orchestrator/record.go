package orchestrator

import (
	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/runid"
)

// RecordFromResult flattens a batch result into its storable run record.
// The run ID is derived from the policy, parameters and seed, so re-recording
// an identical run collides on the key instead of storing a second copy.
func RecordFromResult(res *domain.BatchResult, cfg domain.PolicyConfig, createdAt int64) *domain.RunRecord {
	return &domain.RunRecord{
		RunID:  runid.Compute(res.PolicyID, res.Params, res.Seed),
		Policy: cfg,

		PolicyID:        res.PolicyID,
		NBets:           res.Params.NBets,
		NSims:           res.Params.NSims,
		InitialBankroll: res.Params.InitialBankroll,
		ProbWin:         res.Params.ProbWin,
		DecimalOdds:     res.Params.DecimalOdds,
		RuinThreshold:   res.Params.RuinThreshold,
		PathsToStore:    res.Params.PathsToStore,
		Seed:            res.Seed,

		TotalTrials:         res.Summary.TotalTrials,
		RuinedCount:         res.Summary.RuinedCount,
		MeanFinalBankroll:   res.Summary.MeanFinalBankroll,
		MedianFinalBankroll: res.Summary.MedianFinalBankroll,
		StddevFinalBankroll: res.Summary.StddevFinalBankroll,
		MinFinalBankroll:    res.Summary.MinFinalBankroll,
		MaxFinalBankroll:    res.Summary.MaxFinalBankroll,
		P10FinalBankroll:    res.Summary.P10FinalBankroll,
		P90FinalBankroll:    res.Summary.P90FinalBankroll,
		ProbabilityOfProfit: res.Summary.ProbabilityOfProfit,
		ProbabilityOfRuin:   res.Summary.ProbabilityOfRuin,
		MeanMaxDrawdown:     res.Summary.MeanMaxDrawdown,
		MedianMaxDrawdown:   res.Summary.MedianMaxDrawdown,

		CreatedAt: createdAt,
	}
}

// PointsFromResult flattens the retained sample paths into path points. The
// trial index is the path's position in the sample, not the original trial
// number.
func PointsFromResult(runID string, res *domain.BatchResult) []*domain.PathPoint {
	var points []*domain.PathPoint
	for trial, path := range res.SamplePaths {
		for betIndex, bankroll := range path {
			points = append(points, &domain.PathPoint{
				RunID:    runID,
				Trial:    trial,
				BetIndex: betIndex,
				Bankroll: bankroll,
			})
		}
	}
	return points
}
