package pipeline

import (
	"context"
	"strings"
	"testing"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/orchestrator"
	"bankroll-lab/internal/replay"
	"bankroll-lab/internal/storage/memory"
)

// seedSweep records a real sweep so stored summaries replay exactly.
func seedSweep(t *testing.T, ctx context.Context, runStore *memory.RunRecordStore, pathStore *memory.PathPointStore, nsims int, configs []domain.PolicyConfig) {
	t.Helper()
	seed := int64(7)
	result, err := orchestrator.New(orchestrator.Options{
		RunRecordStore: runStore,
		PathPointStore: pathStore,
		Params: domain.BatchParams{
			ProbWin:         0.545,
			DecimalOdds:     1.909,
			InitialBankroll: 1000,
			NBets:           50,
			NSims:           nsims,
			RuinThreshold:   0.4,
			PathsToStore:    2,
			Seed:            &seed,
		},
		PolicyConfigs: configs,
	}).Run(ctx)
	if err != nil {
		t.Fatalf("seed sweep failed: %v", err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("seed sweep errors: %v", result.Errors)
	}
}

func twoPolicyRoster() []domain.PolicyConfig {
	stake := 10.0
	probWin := 0.545
	decimalOdds := 1.909
	half := 0.5
	return []domain.PolicyConfig{
		{PolicyType: domain.PolicyTypeFlat, Stake: &stake},
		{PolicyType: domain.PolicyTypeKelly, ProbWin: &probWin, DecimalOdds: &decimalOdds, Multiplier: &half},
	}
}

// fabricatedRun is a hand-written record whose summary no batch execution
// produces. Replaying it must diverge.
func fabricatedRun() *domain.RunRecord {
	stake := 10.0
	return &domain.RunRecord{
		RunID:    "run-fabricated",
		Policy:   domain.PolicyConfig{PolicyType: domain.PolicyTypeFlat, Stake: &stake},
		PolicyID: "FLAT_stake10.00",

		NBets:           50,
		NSims:           1000,
		InitialBankroll: 1000,
		ProbWin:         0.545,
		DecimalOdds:     1.909,
		RuinThreshold:   0.4,
		PathsToStore:    2,
		Seed:            99,

		TotalTrials:         1000,
		RuinedCount:         0,
		MeanFinalBankroll:   9999,
		MedianFinalBankroll: 9999,
		StddevFinalBankroll: 1,
		MinFinalBankroll:    9000,
		MaxFinalBankroll:    10000,
		P10FinalBankroll:    9500,
		P90FinalBankroll:    9900,
		ProbabilityOfProfit: 1,
		ProbabilityOfRuin:   0,
		MeanMaxDrawdown:     0.001,
		MedianMaxDrawdown:   0.001,

		CreatedAt: 1700000000000,
	}
}

func findCheck(t *testing.T, result *SufficiencyResult, name string) SufficiencyCheck {
	t.Helper()
	for _, check := range result.Checks {
		if check.Name == name {
			return check
		}
	}
	t.Fatalf("check %q not found in %+v", name, result.Checks)
	return SufficiencyCheck{}
}

func TestSufficiencyChecker_AllPass(t *testing.T) {
	ctx := context.Background()
	runStore := memory.NewRunRecordStore()
	pathStore := memory.NewPathPointStore()
	seedSweep(t, ctx, runStore, pathStore, 1000, twoPolicyRoster())

	replayRunner := replay.NewRunner(replay.Options{RunRecordStore: runStore, PathPointStore: pathStore})
	checker := NewSufficiencyChecker(runStore, pathStore, replayRunner)

	result, err := checker.Check(ctx)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if len(result.Checks) != 5 {
		t.Errorf("len(Checks) = %d, want 5", len(result.Checks))
	}
	for _, check := range result.Checks {
		if !check.Pass {
			t.Errorf("check %q failed, actual=%s", check.Name, check.Actual)
		}
	}
	if !result.AllPass {
		t.Errorf("AllPass = false, want true (errors: %v)", result.Errors)
	}
}

func TestSufficiencyChecker_TooFewPolicies(t *testing.T) {
	ctx := context.Background()
	runStore := memory.NewRunRecordStore()
	pathStore := memory.NewPathPointStore()
	seedSweep(t, ctx, runStore, pathStore, 1000, twoPolicyRoster()[:1])

	replayRunner := replay.NewRunner(replay.Options{RunRecordStore: runStore, PathPointStore: pathStore})
	result, err := NewSufficiencyChecker(runStore, pathStore, replayRunner).Check(ctx)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if result.AllPass {
		t.Error("AllPass = true, want false with a single policy")
	}
	check := findCheck(t, result, "Policies compared")
	if check.Pass {
		t.Errorf("Policies compared passed with actual=%s", check.Actual)
	}
}

func TestSufficiencyChecker_ShallowRuns(t *testing.T) {
	ctx := context.Background()
	runStore := memory.NewRunRecordStore()
	pathStore := memory.NewPathPointStore()
	seedSweep(t, ctx, runStore, pathStore, 500, twoPolicyRoster())

	replayRunner := replay.NewRunner(replay.Options{RunRecordStore: runStore, PathPointStore: pathStore})
	result, err := NewSufficiencyChecker(runStore, pathStore, replayRunner).Check(ctx)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if result.AllPass {
		t.Error("AllPass = true, want false with 500-trial runs")
	}
	check := findCheck(t, result, "Trials per run")
	if check.Pass {
		t.Error("Trials per run passed with 500-trial runs")
	}
	if check.Actual != "min 500 across 2 runs" {
		t.Errorf("Trials per run actual = %q", check.Actual)
	}
}

func TestSufficiencyChecker_NotConfigured(t *testing.T) {
	ctx := context.Background()
	runStore := memory.NewRunRecordStore()
	pathStore := memory.NewPathPointStore()
	seedSweep(t, ctx, runStore, pathStore, 1000, twoPolicyRoster())

	// No path store and no replay runner on the checker itself.
	result, err := NewSufficiencyChecker(runStore, nil, nil).Check(ctx)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if result.AllPass {
		t.Error("AllPass = true, want false without path store and replay runner")
	}
	if check := findCheck(t, result, "Sample path coverage"); check.Pass {
		t.Error("Sample path coverage passed without a path store")
	}
	if check := findCheck(t, result, "Replayable runs"); check.Pass {
		t.Error("Replayable runs passed without a replay runner")
	}
	if len(result.Errors) != 2 {
		t.Errorf("len(Errors) = %d, want 2 (%v)", len(result.Errors), result.Errors)
	}
}

func TestSufficiencyChecker_FabricatedRunDiverges(t *testing.T) {
	ctx := context.Background()
	runStore := memory.NewRunRecordStore()
	pathStore := memory.NewPathPointStore()

	if err := runStore.Insert(ctx, fabricatedRun()); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	replayRunner := replay.NewRunner(replay.Options{RunRecordStore: runStore, PathPointStore: pathStore})
	result, err := NewSufficiencyChecker(runStore, pathStore, replayRunner).Check(ctx)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if check := findCheck(t, result, "Replayable runs"); check.Pass {
		t.Error("Replayable runs passed for a fabricated summary")
	}
	if check := findCheck(t, result, "Sample path coverage"); check.Pass {
		t.Error("Sample path coverage passed with no stored points")
	}

	var sawDivergence, sawMissingPaths bool
	for _, e := range result.Errors {
		if strings.Contains(e, "replay diverged for run run-fabricated") {
			sawDivergence = true
		}
		if strings.Contains(e, "no sample paths stored for run run-fabricated") {
			sawMissingPaths = true
		}
	}
	if !sawDivergence {
		t.Errorf("Errors missing replay divergence: %v", result.Errors)
	}
	if !sawMissingPaths {
		t.Errorf("Errors missing path coverage failure: %v", result.Errors)
	}
}

func TestSufficiencyChecker_NoRuns(t *testing.T) {
	ctx := context.Background()
	runStore := memory.NewRunRecordStore()
	pathStore := memory.NewPathPointStore()

	replayRunner := replay.NewRunner(replay.Options{RunRecordStore: runStore, PathPointStore: pathStore})
	result, err := NewSufficiencyChecker(runStore, pathStore, replayRunner).Check(ctx)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if result.AllPass {
		t.Error("AllPass = true, want false with no runs")
	}
	if check := findCheck(t, result, "Policies compared"); check.Pass {
		t.Error("Policies compared passed with no runs")
	}
	if check := findCheck(t, result, "Trials per run"); check.Pass {
		t.Error("Trials per run passed with no runs")
	}
	// Vacuous checks pass on an empty store.
	if check := findCheck(t, result, "Duplicate run_id count"); !check.Pass {
		t.Error("Duplicate run_id count failed with no runs")
	}
	if check := findCheck(t, result, "Sample path coverage"); !check.Pass {
		t.Error("Sample path coverage failed with no runs")
	}
	if check := findCheck(t, result, "Replayable runs"); !check.Pass {
		t.Error("Replayable runs failed with no runs")
	}
}
