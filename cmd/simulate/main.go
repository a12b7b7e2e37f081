package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/orchestrator"
	"bankroll-lab/internal/policy"
	"bankroll-lab/internal/runid"
	"bankroll-lab/internal/simulation"
	"bankroll-lab/internal/storage"
	chstore "bankroll-lab/internal/storage/clickhouse"
	"bankroll-lab/internal/storage/memory"
	pgstore "bankroll-lab/internal/storage/postgres"
	"bankroll-lab/internal/verification"
)

func main() {
	// Parse flags
	policyType := flag.String("policy", "", "Policy: FLAT, FIXED_FRACTION, KELLY, RISK_ADJUSTED_KELLY (required)")

	// Policy parameters
	stake := flag.Float64("stake", 10, "Stake per bet for FLAT")
	fraction := flag.Float64("fraction", 0.02, "Bankroll fraction per bet for FIXED_FRACTION")
	multiplier := flag.Float64("multiplier", 1.0, "Kelly multiplier for KELLY / RISK_ADJUSTED_KELLY")
	probStd := flag.Float64("prob-std", 0, "Probability std for RISK_ADJUSTED_KELLY shrinkage (0 disables)")
	edgeThreshold := flag.Float64("edge-threshold", 0, "Edge threshold for RISK_ADJUSTED_KELLY ramp (0 disables)")
	maxDrawdown := flag.Float64("max-drawdown", 0, "Drawdown throttle for RISK_ADJUSTED_KELLY (0 disables)")
	minStake := flag.Float64("min-stake", 0, "Minimum stake bound (0 disables)")
	maxStake := flag.Float64("max-stake", 0, "Maximum stake bound (0 disables)")

	// Batch parameters
	probWin := flag.Float64("prob", 0.545, "Win probability per bet")
	decimalOdds := flag.Float64("odds", 1.909, "Decimal odds including stake return")
	bankroll := flag.Float64("bankroll", 1000, "Initial bankroll")
	nBets := flag.Int("bets", 300, "Bets per trial")
	nSims := flag.Int("sims", 5000, "Independent trials")
	ruinThreshold := flag.Float64("ruin-threshold", 0.4, "Ruin floor as a fraction of the initial bankroll")
	pathsToStore := flag.Int("paths", 50, "Sample paths to retain")
	seed := flag.Int64("seed", 0, "RNG seed (0 derives one from the clock)")

	// Storage
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage")

	// Output
	outputJSON := flag.Bool("json", false, "Output as JSON")
	persistResult := flag.Bool("persist", false, "Persist run record and sample paths to storage")
	verify := flag.Bool("verify", false, "Re-run with the resolved seed and compare bit for bit")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[simulate] ", log.LstdFlags)

	// Validate required flags
	if *policyType == "" {
		logger.Fatal("--policy is required")
	}

	// Normalize policy type
	*policyType = strings.ToUpper(*policyType)
	if *policyType != domain.PolicyTypeFlat &&
		*policyType != domain.PolicyTypeFixedFraction &&
		*policyType != domain.PolicyTypeKelly &&
		*policyType != domain.PolicyTypeRiskAdjustedKelly {
		logger.Fatalf("Invalid policy: %s. Must be FLAT, FIXED_FRACTION, KELLY, or RISK_ADJUSTED_KELLY", *policyType)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Build policy config
	cfg := buildPolicyConfig(
		*policyType,
		*stake,
		*fraction,
		*multiplier,
		*probWin,
		*decimalOdds,
		*probStd,
		*edgeThreshold,
		*maxDrawdown,
		*minStake,
		*maxStake,
	)

	pol, err := policy.FromConfig(cfg)
	if err != nil {
		logger.Fatalf("build policy: %v", err)
	}

	// Build batch parameters
	params := domain.BatchParams{
		ProbWin:         *probWin,
		DecimalOdds:     *decimalOdds,
		InitialBankroll: *bankroll,
		NBets:           *nBets,
		NSims:           *nSims,
		RuinThreshold:   *ruinThreshold,
		PathsToStore:    *pathsToStore,
	}
	if *seed != 0 {
		params.Seed = seed
	}

	// Run batch
	logger.Printf("Running batch: policy=%s bets=%d sims=%d", pol.ID(), *nBets, *nSims)

	start := time.Now()
	result, err := simulation.NewRunner().Run(ctx, params, pol)
	if err != nil {
		logger.Fatalf("simulation failed: %v", err)
	}
	logger.Printf("Batch complete: %d trials in %v", result.Summary.TotalTrials, time.Since(start).Round(time.Millisecond))

	runID := runid.Compute(result.PolicyID, result.Params, result.Seed)

	// Optional self-check: the same seed must reproduce the same batch
	if *verify {
		if err := verifyResult(ctx, params, pol, result, logger); err != nil {
			logger.Fatal(err)
		}
		logger.Print("Verification passed: re-run matches the original result exactly")
	}

	// Persist run record and sample paths
	if *persistResult {
		runStore, pathStore, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
		if err != nil {
			logger.Fatal(err)
		}
		defer cleanup()

		persistRun(ctx, runStore, pathStore, result, cfg, logger)
	}

	// Output result
	if *outputJSON {
		out := simulateOutput{
			RunID:   runID,
			Policy:  result.PolicyID,
			Seed:    result.Seed,
			Params:  result.Params,
			Summary: result.Summary,
		}
		output, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(output))
	} else {
		printBatchResult(runID, result)
	}
}

// simulateOutput is the JSON shape for a single batch run.
type simulateOutput struct {
	RunID   string              `json:"run_id"`
	Policy  string              `json:"policy_id"`
	Seed    int64               `json:"seed"`
	Params  domain.BatchParams  `json:"params"`
	Summary domain.BatchSummary `json:"summary"`
}

// buildPolicyConfig creates a PolicyConfig from CLI flags.
func buildPolicyConfig(
	policyType string,
	stake, fraction, multiplier, probWin, decimalOdds float64,
	probStd, edgeThreshold, maxDrawdown, minStake, maxStake float64,
) domain.PolicyConfig {
	cfg := domain.PolicyConfig{
		PolicyType: policyType,
	}

	switch policyType {
	case domain.PolicyTypeFlat:
		cfg.Stake = &stake
	case domain.PolicyTypeFixedFraction:
		cfg.Fraction = &fraction
	case domain.PolicyTypeKelly:
		cfg.ProbWin = &probWin
		cfg.DecimalOdds = &decimalOdds
		cfg.Multiplier = &multiplier
	case domain.PolicyTypeRiskAdjustedKelly:
		cfg.ProbWin = &probWin
		cfg.DecimalOdds = &decimalOdds
		cfg.Multiplier = &multiplier
		if probStd > 0 {
			cfg.ProbStd = &probStd
		}
		if edgeThreshold > 0 {
			cfg.EdgeThreshold = &edgeThreshold
		}
		if maxDrawdown > 0 {
			cfg.MaxDrawdown = &maxDrawdown
		}
	}

	if minStake > 0 {
		cfg.MinStake = &minStake
	}
	if maxStake > 0 {
		cfg.MaxStake = &maxStake
	}

	return cfg
}

// verifyResult re-runs the batch with the resolved seed and compares every
// field of the fresh result against the first run.
func verifyResult(
	ctx context.Context,
	params domain.BatchParams,
	pol policy.Policy,
	result *domain.BatchResult,
	logger *log.Logger,
) error {
	replaySeed := result.Seed
	params.Seed = &replaySeed

	second, err := simulation.NewRunner().Run(ctx, params, pol)
	if err != nil {
		return fmt.Errorf("verification re-run failed: %w", err)
	}

	divergences := verification.CompareBatchResults(result, second)
	if len(divergences) == 0 {
		return nil
	}
	for _, d := range divergences {
		logger.Printf("DIVERGENCE %s: expected %v, got %v", d.Field, d.Expected, d.Actual)
	}
	return fmt.Errorf("verification failed: %d fields diverged", len(divergences))
}

// createStores wires the run and path stores: in-memory with --use-memory,
// otherwise Postgres for run records and ClickHouse for path points.
func createStores(
	ctx context.Context,
	postgresDSN, clickhouseDSN string,
	useMemory bool,
) (storage.RunRecordStore, storage.PathPointStore, func(), error) {
	if useMemory {
		return memory.NewRunRecordStore(), memory.NewPathPointStore(), func() {}, nil
	}

	if postgresDSN == "" {
		return nil, nil, nil, errors.New("--postgres-dsn is required when not using --use-memory (run records)")
	}
	if clickhouseDSN == "" {
		return nil, nil, nil, errors.New("--clickhouse-dsn is required when not using --use-memory (path points)")
	}

	pool, err := pgstore.Bootstrap(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	conn, err := chstore.Bootstrap(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	cleanup := func() {
		pool.Close()
		conn.Close()
	}
	return pgstore.NewRunRecordStore(pool), chstore.NewPathPointStore(conn), cleanup, nil
}

// persistRun stores the run record and its sample paths. The run ID is
// content-derived, so re-persisting an identical run collides on the key
// rather than storing a second copy.
func persistRun(
	ctx context.Context,
	runStore storage.RunRecordStore,
	pathStore storage.PathPointStore,
	result *domain.BatchResult,
	cfg domain.PolicyConfig,
	logger *log.Logger,
) {
	record := orchestrator.RecordFromResult(result, cfg, time.Now().UnixMilli())

	if err := runStore.Insert(ctx, record); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			logger.Printf("Run %s already stored, skipping", record.RunID)
			return
		}
		logger.Fatalf("persist run record: %v", err)
	}

	points := orchestrator.PointsFromResult(record.RunID, result)
	if len(points) > 0 {
		if err := pathStore.InsertBulk(ctx, points); err != nil {
			logger.Fatalf("persist sample paths: %v", err)
		}
	}
	logger.Printf("Persisted run %s (%d path points)", record.RunID, len(points))
}

// printBatchResult outputs a human-readable batch summary.
func printBatchResult(runID string, res *domain.BatchResult) {
	s := res.Summary
	fmt.Println()
	fmt.Println("=== Batch Result ===")
	fmt.Printf("Run ID:             %s\n", runID)
	fmt.Printf("Policy:             %s\n", res.PolicyID)
	fmt.Printf("Seed:               %d\n", res.Seed)
	fmt.Printf("Trials:             %d x %d bets\n", s.TotalTrials, res.Params.NBets)
	fmt.Println()

	fmt.Println("Final Bankroll:")
	fmt.Printf("  Mean:             %.2f\n", s.MeanFinalBankroll)
	fmt.Printf("  Median:           %.2f\n", s.MedianFinalBankroll)
	fmt.Printf("  Stddev:           %.2f\n", s.StddevFinalBankroll)
	fmt.Printf("  Min:              %.2f\n", s.MinFinalBankroll)
	fmt.Printf("  Max:              %.2f\n", s.MaxFinalBankroll)
	fmt.Printf("  P10:              %.2f\n", s.P10FinalBankroll)
	fmt.Printf("  P90:              %.2f\n", s.P90FinalBankroll)
	fmt.Println()

	fmt.Println("Outcomes:")
	fmt.Printf("  Prob. of Profit:  %.2f%%\n", s.ProbabilityOfProfit*100)
	fmt.Printf("  Prob. of Ruin:    %.2f%%\n", s.ProbabilityOfRuin*100)
	fmt.Printf("  Ruined Trials:    %d / %d\n", s.RuinedCount, s.TotalTrials)
	fmt.Println()

	fmt.Println("Drawdown:")
	fmt.Printf("  Mean Max:         %.2f%%\n", s.MeanMaxDrawdown*100)
	fmt.Printf("  Median Max:       %.2f%%\n", s.MedianMaxDrawdown*100)
}
