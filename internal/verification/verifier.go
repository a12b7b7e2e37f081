// Package verification compares stored simulation output against a fresh
// re-execution. Replay re-runs the original arithmetic with the stored seed,
// so matching runs agree to the last bit; the tolerance only absorbs
// round-off introduced by summary arithmetic on reordered inputs.
package verification

import (
	"fmt"
	"math"

	"bankroll-lab/internal/domain"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-9

// FieldDivergence represents a mismatch between stored and replayed values.
type FieldDivergence struct {
	Field    string      // field name
	Expected interface{} // stored value
	Actual   interface{} // replayed value
}

// CompareSummaries compares two batch summaries and returns divergences.
// Uses FloatTolerance for float64 comparisons.
func CompareSummaries(stored, replayed *domain.BatchSummary) []FieldDivergence {
	var divergences []FieldDivergence

	if stored.TotalTrials != replayed.TotalTrials {
		divergences = append(divergences, FieldDivergence{
			Field:    "TotalTrials",
			Expected: stored.TotalTrials,
			Actual:   replayed.TotalTrials,
		})
	}

	if stored.RuinedCount != replayed.RuinedCount {
		divergences = append(divergences, FieldDivergence{
			Field:    "RuinedCount",
			Expected: stored.RuinedCount,
			Actual:   replayed.RuinedCount,
		})
	}

	floatFields := []struct {
		name             string
		stored, replayed float64
	}{
		{"MeanFinalBankroll", stored.MeanFinalBankroll, replayed.MeanFinalBankroll},
		{"MedianFinalBankroll", stored.MedianFinalBankroll, replayed.MedianFinalBankroll},
		{"StddevFinalBankroll", stored.StddevFinalBankroll, replayed.StddevFinalBankroll},
		{"MinFinalBankroll", stored.MinFinalBankroll, replayed.MinFinalBankroll},
		{"MaxFinalBankroll", stored.MaxFinalBankroll, replayed.MaxFinalBankroll},
		{"P10FinalBankroll", stored.P10FinalBankroll, replayed.P10FinalBankroll},
		{"P90FinalBankroll", stored.P90FinalBankroll, replayed.P90FinalBankroll},
		{"ProbabilityOfProfit", stored.ProbabilityOfProfit, replayed.ProbabilityOfProfit},
		{"ProbabilityOfRuin", stored.ProbabilityOfRuin, replayed.ProbabilityOfRuin},
		{"MeanMaxDrawdown", stored.MeanMaxDrawdown, replayed.MeanMaxDrawdown},
		{"MedianMaxDrawdown", stored.MedianMaxDrawdown, replayed.MedianMaxDrawdown},
	}

	for _, f := range floatFields {
		if !floatEquals(f.stored, f.replayed) {
			divergences = append(divergences, FieldDivergence{
				Field:    f.name,
				Expected: f.stored,
				Actual:   f.replayed,
			})
		}
	}

	return divergences
}

// CompareBatchResults compares two batch results field by field: seed,
// the parallel per-trial arrays, the sample paths and the summary.
func CompareBatchResults(stored, replayed *domain.BatchResult) []FieldDivergence {
	var divergences []FieldDivergence

	if stored.PolicyID != replayed.PolicyID {
		divergences = append(divergences, FieldDivergence{
			Field:    "PolicyID",
			Expected: stored.PolicyID,
			Actual:   replayed.PolicyID,
		})
	}

	if stored.Seed != replayed.Seed {
		divergences = append(divergences, FieldDivergence{
			Field:    "Seed",
			Expected: stored.Seed,
			Actual:   replayed.Seed,
		})
	}

	if len(stored.FinalBankrolls) != len(replayed.FinalBankrolls) {
		divergences = append(divergences, FieldDivergence{
			Field:    "len(FinalBankrolls)",
			Expected: len(stored.FinalBankrolls),
			Actual:   len(replayed.FinalBankrolls),
		})
	} else {
		for i := range stored.FinalBankrolls {
			if !floatEquals(stored.FinalBankrolls[i], replayed.FinalBankrolls[i]) {
				divergences = append(divergences, FieldDivergence{
					Field:    fmt.Sprintf("FinalBankrolls[%d]", i),
					Expected: stored.FinalBankrolls[i],
					Actual:   replayed.FinalBankrolls[i],
				})
			}
		}
	}

	if len(stored.MaxDrawdowns) != len(replayed.MaxDrawdowns) {
		divergences = append(divergences, FieldDivergence{
			Field:    "len(MaxDrawdowns)",
			Expected: len(stored.MaxDrawdowns),
			Actual:   len(replayed.MaxDrawdowns),
		})
	} else {
		for i := range stored.MaxDrawdowns {
			if !floatEquals(stored.MaxDrawdowns[i], replayed.MaxDrawdowns[i]) {
				divergences = append(divergences, FieldDivergence{
					Field:    fmt.Sprintf("MaxDrawdowns[%d]", i),
					Expected: stored.MaxDrawdowns[i],
					Actual:   replayed.MaxDrawdowns[i],
				})
			}
		}
	}

	if len(stored.RuinedFlags) != len(replayed.RuinedFlags) {
		divergences = append(divergences, FieldDivergence{
			Field:    "len(RuinedFlags)",
			Expected: len(stored.RuinedFlags),
			Actual:   len(replayed.RuinedFlags),
		})
	} else {
		for i := range stored.RuinedFlags {
			if stored.RuinedFlags[i] != replayed.RuinedFlags[i] {
				divergences = append(divergences, FieldDivergence{
					Field:    fmt.Sprintf("RuinedFlags[%d]", i),
					Expected: stored.RuinedFlags[i],
					Actual:   replayed.RuinedFlags[i],
				})
			}
		}
	}

	divergences = append(divergences, CompareSamplePaths(stored.SamplePaths, replayed.SamplePaths)...)

	storedSummary := stored.Summary
	replayedSummary := replayed.Summary
	divergences = append(divergences, CompareSummaries(&storedSummary, &replayedSummary)...)

	return divergences
}

// CompareSamplePaths compares two sets of bankroll trajectories point by
// point. Paths may have different lengths within a set (ruined trials stop
// early); a length mismatch between corresponding paths is itself a
// divergence.
func CompareSamplePaths(stored, replayed [][]float64) []FieldDivergence {
	var divergences []FieldDivergence

	if len(stored) != len(replayed) {
		divergences = append(divergences, FieldDivergence{
			Field:    "len(SamplePaths)",
			Expected: len(stored),
			Actual:   len(replayed),
		})
		return divergences
	}

	for i := range stored {
		if len(stored[i]) != len(replayed[i]) {
			divergences = append(divergences, FieldDivergence{
				Field:    fmt.Sprintf("len(SamplePaths[%d])", i),
				Expected: len(stored[i]),
				Actual:   len(replayed[i]),
			})
			continue
		}
		for j := range stored[i] {
			if !floatEquals(stored[i][j], replayed[i][j]) {
				divergences = append(divergences, FieldDivergence{
					Field:    fmt.Sprintf("SamplePaths[%d][%d]", i, j),
					Expected: stored[i][j],
					Actual:   replayed[i][j],
				})
			}
		}
	}

	return divergences
}

// floatEquals compares two float64 values within FloatTolerance.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}
