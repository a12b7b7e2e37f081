package metrics

import (
	"math"
	"sort"

	"bankroll-lab/internal/domain"
)

// SummarizeBatch reduces the parallel per-trial arrays of a batch run to
// scalar statistics. finals, drawdowns and ruined must be index-aligned in
// trial order; initialBankroll is the profit reference (a trial counts as
// profitable only when it finished strictly above it).
func SummarizeBatch(finals, drawdowns []float64, ruined []bool, initialBankroll float64) *domain.BatchSummary {
	n := len(finals)
	if n == 0 {
		return &domain.BatchSummary{}
	}

	// Sort copies for percentile calculations; originals keep trial order.
	sortedFinals := make([]float64, n)
	copy(sortedFinals, finals)
	sort.Float64s(sortedFinals)

	sortedDrawdowns := make([]float64, len(drawdowns))
	copy(sortedDrawdowns, drawdowns)
	sort.Float64s(sortedDrawdowns)

	ruinedCount := 0
	for _, r := range ruined {
		if r {
			ruinedCount++
		}
	}

	profitable := 0
	for _, f := range finals {
		if f > initialBankroll {
			profitable++
		}
	}

	mean := computeMean(finals)

	return &domain.BatchSummary{
		TotalTrials: n,
		RuinedCount: ruinedCount,

		MeanFinalBankroll:   mean,
		MedianFinalBankroll: computeMedian(sortedFinals),
		StddevFinalBankroll: computeStddev(finals, mean),
		MinFinalBankroll:    sortedFinals[0],
		MaxFinalBankroll:    sortedFinals[n-1],
		P10FinalBankroll:    computePercentile(sortedFinals, 0.10),
		P90FinalBankroll:    computePercentile(sortedFinals, 0.90),

		ProbabilityOfProfit: float64(profitable) / float64(n),
		ProbabilityOfRuin:   float64(ruinedCount) / float64(n),

		MeanMaxDrawdown:   computeMean(drawdowns),
		MedianMaxDrawdown: computeMedian(sortedDrawdowns),
	}
}

// EnvelopePoint is the cross-trial bankroll distribution at one bet index.
type EnvelopePoint struct {
	BetIndex int
	Mean     float64
	P10      float64
	P90      float64
}

// PathEnvelope computes the per-bet-index bankroll distribution over a set of
// sample paths. Paths may have ragged lengths (ruined trials end early); each
// index aggregates only the paths that reached it. Returns one point per
// index up to the longest path, or nil when paths is empty.
func PathEnvelope(paths [][]float64) []EnvelopePoint {
	maxLen := 0
	for _, p := range paths {
		if len(p) > maxLen {
			maxLen = len(p)
		}
	}
	if maxLen == 0 {
		return nil
	}

	points := make([]EnvelopePoint, maxLen)
	column := make([]float64, 0, len(paths))
	for idx := 0; idx < maxLen; idx++ {
		column = column[:0]
		for _, p := range paths {
			if idx < len(p) {
				column = append(column, p[idx])
			}
		}

		sorted := make([]float64, len(column))
		copy(sorted, column)
		sort.Float64s(sorted)

		points[idx] = EnvelopePoint{
			BetIndex: idx,
			Mean:     computeMean(column),
			P10:      computePercentile(sorted, 0.10),
			P90:      computePercentile(sorted, 0.90),
		}
	}
	return points
}

// PathsFromPoints regroups a (trial, bet_index)-ordered point list, as the
// path point stores return it, into per-trial trajectories.
func PathsFromPoints(points []*domain.PathPoint) [][]float64 {
	var paths [][]float64
	currentTrial := -1
	for _, p := range points {
		if p.Trial != currentTrial {
			paths = append(paths, nil)
			currentTrial = p.Trial
		}
		paths[len(paths)-1] = append(paths[len(paths)-1], p.Bankroll)
	}
	return paths
}

// computeMean calculates the arithmetic mean of values.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computeMedian is the 50th percentile. sorted must be pre-sorted ASC.
func computeMedian(sorted []float64) float64 {
	return computePercentile(sorted, 0.50)
}

// computeStddev calculates sample standard deviation (n-1 denominator).
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0 // Need at least 2 samples for sample stddev
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// computePercentile uses linear interpolation.
// sorted must be pre-sorted ASC.
// p is percentile (0.10 = 10th percentile).
func computePercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	// Index for percentile (0-based, continuous)
	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	// Linear interpolation
	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
