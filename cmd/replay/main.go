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
	"syscall"

	"bankroll-lab/internal/pipeline"
	"bankroll-lab/internal/replay"
	"bankroll-lab/internal/storage"
	chstore "bankroll-lab/internal/storage/clickhouse"
	"bankroll-lab/internal/storage/memory"
	pgstore "bankroll-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	runID := flag.String("run-id", "", "Run ID to replay (empty replays every stored run)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (empty skips sample path comparison)")
	useFixtures := flag.Bool("use-fixtures", false, "Replay the fixture sweep in memory")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	// Setup structured logger
	logger := log.New(os.Stderr, "[replay] ", log.LstdFlags)

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

	// Create stores
	var runStore storage.RunRecordStore
	var pathStore storage.PathPointStore

	if *useFixtures {
		memRuns := memory.NewRunRecordStore()
		memPaths := memory.NewPathPointStore()

		logger.Print("Loading fixture sweep...")
		if err := pipeline.LoadFixtures(ctx, memRuns, memPaths); err != nil {
			logger.Fatalf("load fixtures: %v", err)
		}
		runStore, pathStore = memRuns, memPaths
	} else {
		if *postgresDSN == "" {
			logger.Fatal("--postgres-dsn is required when not using --use-fixtures (run records)")
		}

		pool, err := pgstore.Bootstrap(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()

		runStore = pgstore.NewRunRecordStore(pool)

		// Sample paths live in ClickHouse; without a DSN the replay still
		// verifies summaries, it just cannot compare trajectories.
		if *clickhouseDSN != "" {
			conn, err := chstore.Bootstrap(ctx, *clickhouseDSN)
			if err != nil {
				logger.Fatalf("connect to clickhouse: %v", err)
			}
			defer conn.Close()

			pathStore = chstore.NewPathPointStore(conn)
		}
	}

	// Create replay runner
	runner := replay.NewRunner(replay.Options{
		RunRecordStore: runStore,
		PathPointStore: pathStore,
	})

	if *runID != "" {
		replaySingle(ctx, runner, *runID, *outputJSON, logger)
	} else {
		replayEverything(ctx, runner, *outputJSON, logger)
	}
}

// replaySingle replays one stored run and exits non-zero on divergence.
func replaySingle(ctx context.Context, runner *replay.Runner, runID string, outputJSON bool, logger *log.Logger) {
	logger.Printf("Replaying run %s", runID)

	result, err := runner.Replay(ctx, runID)
	if err != nil {
		if errors.Is(err, replay.ErrRunNotFound) {
			logger.Fatalf("run %s not found", runID)
		}
		logger.Fatalf("replay failed: %v", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
	} else {
		printReplayResult(result)
	}

	if !result.Match {
		os.Exit(1)
	}
}

// replayEverything replays all stored runs and exits non-zero if any diverged.
func replayEverything(ctx context.Context, runner *replay.Runner, outputJSON bool, logger *log.Logger) {
	logger.Print("Replaying all stored runs")

	report, err := runner.ReplayAll(ctx)
	if err != nil {
		logger.Fatalf("replay failed: %v", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Println()
		fmt.Println("=== Replay Report ===")
		fmt.Printf("Total Runs:      %d\n", report.TotalRuns)
		fmt.Printf("Matched:         %d\n", report.MatchedRuns)
		fmt.Printf("Divergent:       %d\n", report.DivergentRuns)
		for i := range report.Results {
			printReplayResult(&report.Results[i])
		}
	}

	if report.DivergentRuns > 0 {
		os.Exit(1)
	}
}

// printReplayResult outputs one run's verdict and any divergent fields.
func printReplayResult(r *replay.ReplayResult) {
	status := "MATCH"
	if !r.Match {
		status = "DIVERGED"
	}
	fmt.Println()
	fmt.Printf("Run %s (%s): %s\n", r.RunID, r.PolicyID, status)
	for _, d := range r.Divergences {
		fmt.Printf("  %-24s expected %v, got %v\n", d.Field+":", d.Expected, d.Actual)
	}
}
