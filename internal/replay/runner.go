// Package replay re-executes persisted runs and reports divergences from
// the stored results. A run carries its policy snapshot and resolved seed,
// so a faithful re-execution reproduces the stored summary and sample paths
// exactly; any divergence means the code or the data drifted since the run
// was recorded.
package replay

import (
	"context"
	"errors"
	"fmt"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/metrics"
	"bankroll-lab/internal/policy"
	"bankroll-lab/internal/simulation"
	"bankroll-lab/internal/storage"
	"bankroll-lab/internal/verification"
)

// ReplayResult contains the result of replaying a single run.
type ReplayResult struct {
	RunID       string                         // replayed run ID
	PolicyID    string                         // policy the run was recorded under
	Match       bool                           // true if all fields match
	Divergences []verification.FieldDivergence // list of divergent fields
}

// ReplayReport contains results for batch replay.
type ReplayReport struct {
	TotalRuns     int            // total runs replayed
	MatchedRuns   int            // runs that matched exactly
	DivergentRuns int            // runs with divergences
	Results       []ReplayResult // individual results
}

// Runner re-executes stored runs.
type Runner struct {
	runStore  storage.RunRecordStore
	pathStore storage.PathPointStore
}

// Options contains configuration for creating a Runner.
type Options struct {
	RunRecordStore storage.RunRecordStore
	PathPointStore storage.PathPointStore // nil skips sample path comparison
}

// NewRunner creates a new replay runner.
func NewRunner(opts Options) *Runner {
	return &Runner{
		runStore:  opts.RunRecordStore,
		pathStore: opts.PathPointStore,
	}
}

// Replay re-runs a stored run and compares the fresh results against the
// stored ones. The policy is rebuilt from the stored snapshot and the batch
// re-executes with the stored seed. Returns ErrRunNotFound when the run ID
// is unknown.
func (r *Runner) Replay(ctx context.Context, runID string) (*ReplayResult, error) {
	// 1. Load stored run
	rec, err := r.runStore.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	// 2. Rebuild policy from the stored snapshot
	pol, err := policy.FromConfig(rec.Policy)
	if err != nil {
		return nil, fmt.Errorf("rebuild policy %s: %w", rec.PolicyID, err)
	}

	// 3. Re-run with the stored parameters and seed
	seed := rec.Seed
	params := domain.BatchParams{
		ProbWin:         rec.ProbWin,
		DecimalOdds:     rec.DecimalOdds,
		InitialBankroll: rec.InitialBankroll,
		NBets:           rec.NBets,
		NSims:           rec.NSims,
		RuinThreshold:   rec.RuinThreshold,
		PathsToStore:    rec.PathsToStore,
		Seed:            &seed,
	}

	fresh, err := simulation.NewRunner().Run(ctx, params, pol)
	if err != nil {
		return nil, fmt.Errorf("re-run %s: %w", runID, err)
	}

	// 4. Compare summaries
	storedSummary := rec.Summary()
	divergences := verification.CompareSummaries(&storedSummary, &fresh.Summary)

	// 5. Compare sample paths. Runs persisted without a path store have no
	// points; there is nothing to compare then.
	if r.pathStore != nil && rec.PathsToStore > 0 {
		points, err := r.pathStore.GetByRunID(ctx, runID)
		if err != nil {
			return nil, err
		}
		if len(points) > 0 {
			storedPaths := metrics.PathsFromPoints(points)
			divergences = append(divergences, verification.CompareSamplePaths(storedPaths, fresh.SamplePaths)...)
		}
	}

	return &ReplayResult{
		RunID:       runID,
		PolicyID:    rec.PolicyID,
		Match:       len(divergences) == 0,
		Divergences: divergences,
	}, nil
}

// ReplayAll replays every stored run.
func (r *Runner) ReplayAll(ctx context.Context) (*ReplayReport, error) {
	records, err := r.runStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReplayReport{
		TotalRuns: len(records),
		Results:   make([]ReplayResult, 0, len(records)),
	}

	for _, rec := range records {
		result, err := r.Replay(ctx, rec.RunID)
		if err != nil {
			// Record error as divergence
			report.Results = append(report.Results, ReplayResult{
				RunID:    rec.RunID,
				PolicyID: rec.PolicyID,
				Match:    false,
				Divergences: []verification.FieldDivergence{
					{Field: "Error", Expected: nil, Actual: err.Error()},
				},
			})
			report.DivergentRuns++
			continue
		}

		report.Results = append(report.Results, *result)
		if result.Match {
			report.MatchedRuns++
		} else {
			report.DivergentRuns++
		}
	}

	return report, nil
}
