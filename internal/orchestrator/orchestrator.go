// Package orchestrator coordinates multi-policy sweeps.
// Flow: build policies → run batches in parallel → persist records + paths
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/observability"
	"bankroll-lab/internal/policy"
	"bankroll-lab/internal/simulation"
	"bankroll-lab/internal/storage"
)

var ErrNoPolicies = errors.New("no policies configured")

// Orchestrator runs every configured policy against the shared batch
// parameters and persists the results.
type Orchestrator struct {
	// Stores
	runRecordStore storage.RunRecordStore
	pathPointStore storage.PathPointStore

	// Sweep configuration
	params        domain.BatchParams
	policyConfigs []domain.PolicyConfig

	// Options
	verbose bool
	logger  *log.Logger
	now     func() time.Time
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	RunRecordStore storage.RunRecordStore
	PathPointStore storage.PathPointStore // nil skips sample path persistence

	// Shared batch parameters. Params.Seed is the sweep's master seed; nil
	// derives one from the clock.
	Params domain.BatchParams

	// Policy roster
	PolicyConfigs []domain.PolicyConfig

	// Options
	Verbose bool
	Logger  *log.Logger // defaults to log.Default()
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		runRecordStore: opts.RunRecordStore,
		pathPointStore: opts.PathPointStore,
		params:         opts.Params,
		policyConfigs:  opts.PolicyConfigs,
		verbose:        opts.Verbose,
		logger:         logger,
		now:            time.Now,
	}
}

// SweepResult contains results from a sweep execution.
type SweepResult struct {
	MasterSeed       int64    // resolved seed the per-policy sub-seeds derive from
	RunsCompleted    int      // runs persisted, including identical runs already stored
	PathPointsStored int      // sample path points written
	RunIDs           []string // completed run IDs, roster order
	Errors           []string // per-policy failures; the sweep itself kept going
}

// batchOutcome pairs one policy's batch result with its error.
type batchOutcome struct {
	result *domain.BatchResult
	err    error
}

// Run executes the sweep.
// Phases:
//  1. Build each policy from its config
//  2. Run all batches in parallel, one goroutine per policy
//  3. Persist run records and sample paths in roster order
func (o *Orchestrator) Run(ctx context.Context) (*SweepResult, error) {
	if len(o.policyConfigs) == 0 {
		return nil, ErrNoPolicies
	}
	sweepStart := o.now()

	// Phase 1: a bad config fails the sweep before any batch runs.
	o.log("Phase 1: Building %d policies...", len(o.policyConfigs))
	policies := make([]policy.Policy, len(o.policyConfigs))
	for i, cfg := range o.policyConfigs {
		pol, err := policy.FromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("phase 1 (build policy %s): %w", cfg.PolicyType, err)
		}
		policies[i] = pol
	}

	masterSeed := o.resolveMasterSeed()
	result := &SweepResult{MasterSeed: masterSeed}

	// Phase 2: one goroutine per policy, each writing only its own slot, so
	// the outcome order matches the roster regardless of scheduling. The
	// sub-seed derives from the master seed and the policy ID, keeping every
	// policy's batch bit-for-bit reproducible.
	o.log("Phase 2: Running %d batches (%d trials x %d bets, master seed %d)...",
		len(policies), o.params.NSims, o.params.NBets, masterSeed)
	outcomes := make([]batchOutcome, len(policies))
	var wg sync.WaitGroup
	for i, pol := range policies {
		wg.Add(1)
		go func(i int, pol policy.Policy) {
			defer wg.Done()
			params := o.params
			subSeed := simulation.SeedPartition(masterSeed, pol.ID())
			params.Seed = &subSeed

			start := time.Now()
			res, err := simulation.NewRunner().Run(ctx, params, pol)
			if err == nil {
				observability.RecordBatch(res.Summary.TotalTrials, res.Summary.RuinedCount, time.Since(start).Seconds())
			}
			outcomes[i] = batchOutcome{result: res, err: err}
		}(i, pol)
	}
	wg.Wait()

	// Phase 3: persist in roster order, collecting per-policy errors without
	// aborting the sweep.
	o.log("Phase 3: Persisting results...")
	for i, out := range outcomes {
		if out.err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("run %s: %v", policies[i].ID(), out.err))
			continue
		}
		o.persist(ctx, out.result, o.policyConfigs[i], result)
	}

	status := "success"
	if len(result.Errors) > 0 {
		status = "partial"
	}
	observability.RecordSweep(status, o.now().Sub(sweepStart).Seconds())

	o.log("Sweep completed: %d/%d runs, %d path points (%d errors)",
		result.RunsCompleted, len(policies), result.PathPointsStored, len(result.Errors))

	return result, nil
}

// resolveMasterSeed picks the sweep's master seed once, so every policy's
// sub-seed derivation sees the same value.
func (o *Orchestrator) resolveMasterSeed() int64 {
	if o.params.Seed != nil {
		return *o.params.Seed
	}
	return o.now().UnixNano()
}

// persist stores one batch outcome. A duplicate run key means an identical
// run is already recorded; that counts as completed and its paths are left
// untouched.
func (o *Orchestrator) persist(ctx context.Context, res *domain.BatchResult, cfg domain.PolicyConfig, result *SweepResult) {
	rec := RecordFromResult(res, cfg, o.now().UnixMilli())

	if err := o.runRecordStore.Insert(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			o.log("  run %s (%s) already stored", rec.RunID, res.PolicyID)
			result.RunsCompleted++
			result.RunIDs = append(result.RunIDs, rec.RunID)
			return
		}
		result.Errors = append(result.Errors, fmt.Sprintf("store run %s: %v", rec.RunID, err))
		return
	}

	if o.pathPointStore != nil && len(res.SamplePaths) > 0 {
		points := PointsFromResult(rec.RunID, res)
		if err := o.pathPointStore.InsertBulk(ctx, points); err != nil {
			if !errors.Is(err, storage.ErrDuplicateKey) {
				result.Errors = append(result.Errors, fmt.Sprintf("store paths for run %s: %v", rec.RunID, err))
			}
		} else {
			result.PathPointsStored += len(points)
		}
	}

	result.RunsCompleted++
	result.RunIDs = append(result.RunIDs, rec.RunID)
	o.log("  run %s (%s): %d trials, %d ruined", rec.RunID, res.PolicyID, rec.TotalTrials, rec.RuinedCount)
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		o.logger.Printf("[orchestrator] "+format, args...)
	}
}
