package verification

import (
	"testing"

	"bankroll-lab/internal/domain"
)

func testSummary() domain.BatchSummary {
	return domain.BatchSummary{
		TotalTrials:         5000,
		RuinedCount:         12,
		MeanFinalBankroll:   1260.5,
		MedianFinalBankroll: 1200.0,
		StddevFinalBankroll: 310.2,
		MinFinalBankroll:    0.0,
		MaxFinalBankroll:    2890.0,
		P10FinalBankroll:    880.0,
		P90FinalBankroll:    1710.0,
		ProbabilityOfProfit: 0.64,
		ProbabilityOfRuin:   0.0024,
		MeanMaxDrawdown:     0.18,
		MedianMaxDrawdown:   0.15,
	}
}

func TestCompareSummaries_ExactMatch(t *testing.T) {
	stored := testSummary()
	replayed := testSummary()

	divergences := CompareSummaries(&stored, &replayed)

	if len(divergences) != 0 {
		t.Errorf("Expected 0 divergences, got %d: %v", len(divergences), divergences)
	}
}

func TestCompareSummaries_MeanDivergence(t *testing.T) {
	stored := testSummary()
	replayed := testSummary()
	replayed.MeanFinalBankroll = 1261.5

	divergences := CompareSummaries(&stored, &replayed)

	if len(divergences) != 1 {
		t.Fatalf("Expected 1 divergence, got %d", len(divergences))
	}
	if divergences[0].Field != "MeanFinalBankroll" {
		t.Errorf("Expected MeanFinalBankroll divergence, got %s", divergences[0].Field)
	}
}

func TestCompareSummaries_RuinedCountDivergence(t *testing.T) {
	stored := testSummary()
	replayed := testSummary()
	replayed.RuinedCount = 13

	divergences := CompareSummaries(&stored, &replayed)

	if len(divergences) != 1 {
		t.Fatalf("Expected 1 divergence, got %d", len(divergences))
	}
	if divergences[0].Field != "RuinedCount" {
		t.Errorf("Expected RuinedCount divergence, got %s", divergences[0].Field)
	}
}

func TestCompareSummaries_WithinTolerance(t *testing.T) {
	stored := testSummary()
	replayed := testSummary()
	replayed.MeanFinalBankroll += FloatTolerance / 2

	divergences := CompareSummaries(&stored, &replayed)

	if len(divergences) != 0 {
		t.Errorf("Expected shift within tolerance to match, got %d divergences", len(divergences))
	}
}

func TestCompareSummaries_BeyondTolerance(t *testing.T) {
	stored := testSummary()
	replayed := testSummary()
	replayed.MeanFinalBankroll += FloatTolerance * 10

	divergences := CompareSummaries(&stored, &replayed)

	if len(divergences) != 1 {
		t.Errorf("Expected shift beyond tolerance to diverge, got %d divergences", len(divergences))
	}
}

func TestCompareSummaries_MultipleDivergences(t *testing.T) {
	stored := testSummary()
	replayed := testSummary()
	replayed.TotalTrials = 4999
	replayed.ProbabilityOfRuin = 0.01
	replayed.MedianMaxDrawdown = 0.25

	divergences := CompareSummaries(&stored, &replayed)

	if len(divergences) != 3 {
		t.Fatalf("Expected 3 divergences, got %d: %v", len(divergences), divergences)
	}
}

func testBatchResult() *domain.BatchResult {
	return &domain.BatchResult{
		PolicyID:       "flat-10",
		Seed:           42,
		FinalBankrolls: []float64{1050.0, 980.0, 1120.0},
		MaxDrawdowns:   []float64{0.08, 0.15, 0.05},
		RuinedFlags:    []bool{false, false, false},
		SamplePaths: [][]float64{
			{1000.0, 1010.0, 1000.0},
			{1000.0, 990.0, 980.0},
		},
		Summary: testSummary(),
	}
}

func TestCompareBatchResults_ExactMatch(t *testing.T) {
	stored := testBatchResult()
	replayed := testBatchResult()

	divergences := CompareBatchResults(stored, replayed)

	if len(divergences) != 0 {
		t.Errorf("Expected 0 divergences, got %d: %v", len(divergences), divergences)
	}
}

func TestCompareBatchResults_SeedDivergence(t *testing.T) {
	stored := testBatchResult()
	replayed := testBatchResult()
	replayed.Seed = 43

	divergences := CompareBatchResults(stored, replayed)

	if len(divergences) != 1 {
		t.Fatalf("Expected 1 divergence, got %d", len(divergences))
	}
	if divergences[0].Field != "Seed" {
		t.Errorf("Expected Seed divergence, got %s", divergences[0].Field)
	}
}

func TestCompareBatchResults_TrialValueDivergence(t *testing.T) {
	stored := testBatchResult()
	replayed := testBatchResult()
	replayed.FinalBankrolls = []float64{1050.0, 981.0, 1120.0}

	divergences := CompareBatchResults(stored, replayed)

	if len(divergences) != 1 {
		t.Fatalf("Expected 1 divergence, got %d: %v", len(divergences), divergences)
	}
	if divergences[0].Field != "FinalBankrolls[1]" {
		t.Errorf("Expected FinalBankrolls[1] divergence, got %s", divergences[0].Field)
	}
}

func TestCompareBatchResults_TrialCountDivergence(t *testing.T) {
	stored := testBatchResult()
	replayed := testBatchResult()
	replayed.FinalBankrolls = []float64{1050.0, 980.0}

	divergences := CompareBatchResults(stored, replayed)

	if len(divergences) != 1 {
		t.Fatalf("Expected 1 divergence, got %d: %v", len(divergences), divergences)
	}
	if divergences[0].Field != "len(FinalBankrolls)" {
		t.Errorf("Expected len(FinalBankrolls) divergence, got %s", divergences[0].Field)
	}
}

func TestCompareBatchResults_RuinedFlagDivergence(t *testing.T) {
	stored := testBatchResult()
	replayed := testBatchResult()
	replayed.RuinedFlags = []bool{false, true, false}

	divergences := CompareBatchResults(stored, replayed)

	if len(divergences) != 1 {
		t.Fatalf("Expected 1 divergence, got %d: %v", len(divergences), divergences)
	}
	if divergences[0].Field != "RuinedFlags[1]" {
		t.Errorf("Expected RuinedFlags[1] divergence, got %s", divergences[0].Field)
	}
}

func TestCompareSamplePaths_ExactMatch(t *testing.T) {
	stored := [][]float64{
		{1000.0, 1010.0, 1020.0},
		{1000.0, 990.0},
	}
	replayed := [][]float64{
		{1000.0, 1010.0, 1020.0},
		{1000.0, 990.0},
	}

	divergences := CompareSamplePaths(stored, replayed)

	if len(divergences) != 0 {
		t.Errorf("Expected 0 divergences, got %d: %v", len(divergences), divergences)
	}
}

func TestCompareSamplePaths_PointDivergence(t *testing.T) {
	stored := [][]float64{{1000.0, 1010.0, 1020.0}}
	replayed := [][]float64{{1000.0, 1011.0, 1020.0}}

	divergences := CompareSamplePaths(stored, replayed)

	if len(divergences) != 1 {
		t.Fatalf("Expected 1 divergence, got %d", len(divergences))
	}
	if divergences[0].Field != "SamplePaths[0][1]" {
		t.Errorf("Expected SamplePaths[0][1] divergence, got %s", divergences[0].Field)
	}
}

func TestCompareSamplePaths_LengthDivergence(t *testing.T) {
	// A trial that was ruined one bet earlier on replay
	stored := [][]float64{{1000.0, 500.0, 0.0}}
	replayed := [][]float64{{1000.0, 0.0}}

	divergences := CompareSamplePaths(stored, replayed)

	if len(divergences) != 1 {
		t.Fatalf("Expected 1 divergence, got %d", len(divergences))
	}
	if divergences[0].Field != "len(SamplePaths[0])" {
		t.Errorf("Expected len(SamplePaths[0]) divergence, got %s", divergences[0].Field)
	}
}

func TestCompareSamplePaths_CountDivergence(t *testing.T) {
	stored := [][]float64{{1000.0}, {1000.0}}
	replayed := [][]float64{{1000.0}}

	divergences := CompareSamplePaths(stored, replayed)

	if len(divergences) != 1 {
		t.Fatalf("Expected 1 divergence, got %d", len(divergences))
	}
	if divergences[0].Field != "len(SamplePaths)" {
		t.Errorf("Expected len(SamplePaths) divergence, got %s", divergences[0].Field)
	}
}

func TestCompareSamplePaths_BothEmpty(t *testing.T) {
	divergences := CompareSamplePaths(nil, [][]float64{})

	if len(divergences) != 0 {
		t.Errorf("Expected 0 divergences for empty sets, got %d", len(divergences))
	}
}
