// Package main provides the sweep entry point.
// Executes: policy sweep → sufficiency checks → reporting
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/orchestrator"
	"bankroll-lab/internal/pipeline"
	"bankroll-lab/internal/replay"
	"bankroll-lab/internal/storage"
	chstore "bankroll-lab/internal/storage/clickhouse"
	"bankroll-lab/internal/storage/memory"
	pgstore "bankroll-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	outputDir := flag.String("output-dir", "output", "Output directory for generated files")

	// Shared batch parameters
	probWin := flag.Float64("prob", 0.545, "Win probability per bet")
	decimalOdds := flag.Float64("odds", 1.909, "Decimal odds including stake return")
	bankroll := flag.Float64("bankroll", 1000, "Initial bankroll")
	nBets := flag.Int("bets", 300, "Bets per trial")
	nSims := flag.Int("sims", 5000, "Independent trials per policy")
	ruinThreshold := flag.Float64("ruin-threshold", 0.4, "Ruin floor as a fraction of the initial bankroll")
	pathsToStore := flag.Int("paths", 50, "Sample paths to retain per run")
	seed := flag.Int64("seed", 0, "Master seed (0 derives one from the clock)")

	// Storage: in-memory unless DSNs are given
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (empty = in-memory run records)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (empty = in-memory path points)")

	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[sweep] ", log.LstdFlags)

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling sweep...", sig)
		cancel()
	}()

	// Create stores
	var runStore storage.RunRecordStore = memory.NewRunRecordStore()
	var pathStore storage.PathPointStore = memory.NewPathPointStore()

	if *postgresDSN != "" {
		pool, err := pgstore.Bootstrap(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()

		runStore = pgstore.NewRunRecordStore(pool)
	}
	if *clickhouseDSN != "" {
		conn, err := chstore.Bootstrap(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("connect to clickhouse: %v", err)
		}
		defer conn.Close()

		pathStore = chstore.NewPathPointStore(conn)
	}

	// Build shared batch parameters
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

	// Phase 1: run every policy in the roster against the shared scenario
	fmt.Println("=== Policy Sweep ===")
	orch := orchestrator.New(orchestrator.Options{
		RunRecordStore: runStore,
		PathPointStore: pathStore,
		Params:         params,
		PolicyConfigs:  pipeline.DefaultPolicyConfigs(),
		Verbose:        *verbose,
		Logger:         logger,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sweep error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sweep completed:\n")
	fmt.Printf("  Master Seed: %d\n", result.MasterSeed)
	fmt.Printf("  Runs:        %d\n", result.RunsCompleted)
	fmt.Printf("  Path Points: %d\n", result.PathPointsStored)
	if len(result.Errors) > 0 {
		fmt.Printf("  Errors:      %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}

	// Phase 2: sufficiency checks and report generation
	fmt.Println("\n=== Reporting ===")

	replayRunner := replay.NewRunner(replay.Options{
		RunRecordStore: runStore,
		PathPointStore: pathStore,
	})

	p := pipeline.NewSweepPipeline(runStore, pathStore, *outputDir).
		WithSufficiencyChecker(runStore, pathStore, replayRunner)

	if err := p.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nSweep pipeline completed successfully:")
	fmt.Printf("  - %s/%s\n", *outputDir, pipeline.SweepReportFile)
	fmt.Printf("  - %s/%s\n", *outputDir, pipeline.MetricsCSVFile)
	fmt.Printf("  - %s/%s\n", *outputDir, pipeline.EnvelopeCSVFile)
	fmt.Printf("  - %s/%s\n", *outputDir, pipeline.StakeGateFile)
}
