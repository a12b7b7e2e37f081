package pipeline

import (
	"context"
	"fmt"
	"sort"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/metrics"
	"bankroll-lab/internal/replay"
	"bankroll-lab/internal/storage"
)

// Sufficiency thresholds. The gate reads tail probabilities off the latest
// runs; below these the GO/NO-GO verdict is noise.
const (
	MinPoliciesCompared = 2
	MinTrialsPerRun     = 1000
)

// SufficiencyCheck represents one data sufficiency criterion.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult contains all 5 checks.
type SufficiencyResult struct {
	Checks  []SufficiencyCheck
	AllPass bool
	Errors  []string // data integrity errors
}

// SufficiencyChecker validates that the recorded runs are deep and intact
// enough for the stake gate to be trusted.
type SufficiencyChecker struct {
	runRecordStore storage.RunRecordStore
	pathPointStore storage.PathPointStore
	replayRunner   *replay.Runner
}

// NewSufficiencyChecker creates a new sufficiency checker.
func NewSufficiencyChecker(
	runRecordStore storage.RunRecordStore,
	pathPointStore storage.PathPointStore,
	replayRunner *replay.Runner,
) *SufficiencyChecker {
	return &SufficiencyChecker{
		runRecordStore: runRecordStore,
		pathPointStore: pathPointStore,
		replayRunner:   replayRunner,
	}
}

// Check performs all 5 sufficiency checks against the latest run of every
// policy, the population the stake gate evaluates.
func (c *SufficiencyChecker) Check(ctx context.Context) (*SufficiencyResult, error) {
	result := &SufficiencyResult{
		Checks:  make([]SufficiencyCheck, 0, 5),
		AllPass: true,
		Errors:  []string{},
	}

	allRecords, err := c.runRecordStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load run records: %w", err)
	}

	latest, err := metrics.NewAggregator(c.runRecordStore).LatestRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest runs: %w", err)
	}

	// Check 1: Policies compared >= 2
	check1 := c.checkPoliciesCompared(latest)
	result.Checks = append(result.Checks, check1)
	if !check1.Pass {
		result.AllPass = false
	}

	// Check 2: Trials per run >= 1000
	check2 := c.checkTrialsPerRun(latest)
	result.Checks = append(result.Checks, check2)
	if !check2.Pass {
		result.AllPass = false
	}

	// Check 3: Duplicate run_id count == 0
	check3, duplicateErrors := c.checkDuplicateRunIDs(allRecords)
	result.Checks = append(result.Checks, check3)
	if !check3.Pass {
		result.AllPass = false
		result.Errors = append(result.Errors, duplicateErrors...)
	}

	// Check 4: Sample path coverage == 100%
	check4, coverageErrors := c.checkPathCoverage(ctx, latest)
	result.Checks = append(result.Checks, check4)
	if !check4.Pass {
		result.AllPass = false
		result.Errors = append(result.Errors, coverageErrors...)
	}

	// Check 5: Replayable runs == 100%
	check5, replayErrors := c.checkReplayability(ctx, latest)
	result.Checks = append(result.Checks, check5)
	if !check5.Pass {
		result.AllPass = false
		result.Errors = append(result.Errors, replayErrors...)
	}

	return result, nil
}

// checkPoliciesCompared: the gate ranks policies against each other, which
// takes at least two of them.
func (c *SufficiencyChecker) checkPoliciesCompared(latest []*domain.RunRecord) SufficiencyCheck {
	count := len(latest)
	return SufficiencyCheck{
		Name:      "Policies compared",
		Threshold: fmt.Sprintf(">= %d", MinPoliciesCompared),
		Actual:    fmt.Sprintf("%d", count),
		Pass:      count >= MinPoliciesCompared,
	}
}

// checkTrialsPerRun: ruin and profit probabilities come straight from trial
// counts, so every gated run needs a statistical floor under it.
func (c *SufficiencyChecker) checkTrialsPerRun(latest []*domain.RunRecord) SufficiencyCheck {
	if len(latest) == 0 {
		return SufficiencyCheck{
			Name:      "Trials per run",
			Threshold: fmt.Sprintf(">= %d", MinTrialsPerRun),
			Actual:    "no runs recorded",
			Pass:      false,
		}
	}

	minTrials := latest[0].TotalTrials
	for _, rec := range latest {
		if rec.TotalTrials < minTrials {
			minTrials = rec.TotalTrials
		}
	}

	return SufficiencyCheck{
		Name:      "Trials per run",
		Threshold: fmt.Sprintf(">= %d", MinTrialsPerRun),
		Actual:    fmt.Sprintf("min %d across %d runs", minTrials, len(latest)),
		Pass:      minTrials >= MinTrialsPerRun,
	}
}

// checkDuplicateRunIDs: duplicate run_id count == 0. The stores key by
// run_id, but data loaded from outside the writers can still collide.
func (c *SufficiencyChecker) checkDuplicateRunIDs(records []*domain.RunRecord) (SufficiencyCheck, []string) {
	seen := make(map[string]int)
	for _, rec := range records {
		seen[rec.RunID]++
	}

	duplicateCount := 0
	var errors []string
	// Sort keys for deterministic output
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, id := range keys {
		count := seen[id]
		if count > 1 {
			duplicateCount++
			errors = append(errors, fmt.Sprintf("duplicate run_id: %s (count=%d)", id, count))
		}
	}

	return SufficiencyCheck{
		Name:      "Duplicate run_id count",
		Threshold: "= 0",
		Actual:    fmt.Sprintf("%d", duplicateCount),
		Pass:      duplicateCount == 0,
	}, errors
}

// checkPathCoverage: every latest run that retained sample paths must have
// its points stored, or the envelope silently reports on nothing.
func (c *SufficiencyChecker) checkPathCoverage(ctx context.Context, latest []*domain.RunRecord) (SufficiencyCheck, []string) {
	if c.pathPointStore == nil {
		return SufficiencyCheck{
			Name:      "Sample path coverage",
			Threshold: "= 100%",
			Actual:    "NOT CONFIGURED (path point store required)",
			Pass:      false,
		}, []string{"path point store not configured - cannot verify sample path coverage"}
	}

	expected := 0
	missingCount := 0
	var errors []string

	sorted := sortedByRunID(latest)
	for _, rec := range sorted {
		if rec.PathsToStore <= 0 {
			continue
		}
		expected++
		count, err := c.pathPointStore.CountByRunID(ctx, rec.RunID)
		if err != nil {
			missingCount++
			errors = append(errors, fmt.Sprintf("error counting path points for run %s: %v", rec.RunID, err))
		} else if count == 0 {
			missingCount++
			errors = append(errors, fmt.Sprintf("no sample paths stored for run %s", rec.RunID))
		}
	}

	if expected == 0 {
		return SufficiencyCheck{
			Name:      "Sample path coverage",
			Threshold: "= 100%",
			Actual:    "0/0 (no runs retain paths)",
			Pass:      true,
		}, nil
	}

	covered := expected - missingCount
	pct := float64(covered) / float64(expected) * 100

	return SufficiencyCheck{
		Name:      "Sample path coverage",
		Threshold: "= 100%",
		Actual:    fmt.Sprintf("%.1f%% (%d/%d)", pct, covered, expected),
		Pass:      missingCount == 0,
	}, errors
}

// checkReplayability: replayable runs == 100%. Each latest run is re-executed
// from its stored snapshot and seed; a divergence means the recorded summary
// no longer describes what the code does.
func (c *SufficiencyChecker) checkReplayability(ctx context.Context, latest []*domain.RunRecord) (SufficiencyCheck, []string) {
	if c.replayRunner == nil {
		return SufficiencyCheck{
			Name:      "Replayable runs",
			Threshold: "= 100%",
			Actual:    "NOT CONFIGURED (replay runner required)",
			Pass:      false, // Fail if no replay runner - cannot verify replayability
		}, []string{"replay runner not configured - cannot verify replayability requirement"}
	}

	totalCount := len(latest)
	if totalCount == 0 {
		return SufficiencyCheck{
			Name:      "Replayable runs",
			Threshold: "= 100%",
			Actual:    "0/0 (no runs)",
			Pass:      true,
		}, nil
	}

	failedCount := 0
	var errors []string

	sorted := sortedByRunID(latest)
	for _, rec := range sorted {
		res, err := c.replayRunner.Replay(ctx, rec.RunID)
		if err != nil {
			failedCount++
			errors = append(errors, fmt.Sprintf("replay failed for run %s: %v", rec.RunID, err))
			continue
		}
		if !res.Match {
			failedCount++
			errors = append(errors, fmt.Sprintf("replay diverged for run %s (%d fields)", rec.RunID, len(res.Divergences)))
		}
	}

	replayableCount := totalCount - failedCount
	pct := float64(replayableCount) / float64(totalCount) * 100

	return SufficiencyCheck{
		Name:      "Replayable runs",
		Threshold: "= 100%",
		Actual:    fmt.Sprintf("%.1f%% (%d/%d)", pct, replayableCount, totalCount),
		Pass:      failedCount == 0,
	}, errors
}

// sortedByRunID copies records into run_id order for deterministic output.
func sortedByRunID(records []*domain.RunRecord) []*domain.RunRecord {
	sorted := make([]*domain.RunRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].RunID < sorted[j].RunID
	})
	return sorted
}
