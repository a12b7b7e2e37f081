package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bankroll-lab/internal/feed"
	"bankroll-lab/internal/storage"
	"bankroll-lab/internal/storage/memory"
	pgstore "bankroll-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	wsEndpoint := flag.String("ws-endpoint", "", "Model service WebSocket endpoint (required)")
	markets := flag.String("markets", "", "Comma-separated market filter (empty subscribes to all markets)")
	bankroll := flag.Float64("bankroll", 1000, "Bankroll for Kelly sizing")
	multiplier := flag.Float64("multiplier", 0.5, "Kelly multiplier (0.5 = half Kelly)")

	// Storage
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[feed] ", log.LstdFlags)

	// Validate required flags
	if *wsEndpoint == "" {
		logger.Fatal("--ws-endpoint is required")
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

	// Create quote store
	var quoteStore storage.QuoteStore = memory.NewQuoteStore()
	if !*useMemory && *postgresDSN != "" {
		pool, err := pgstore.Bootstrap(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()

		quoteStore = pgstore.NewQuoteStore(pool)
	}

	// Connect to the model service
	logger.Printf("Connecting to %s", *wsEndpoint)
	client, err := feed.NewClient(ctx, *wsEndpoint, nil)
	if err != nil {
		logger.Fatalf("connect websocket: %v", err)
	}
	defer client.Close()

	source := feed.NewWSQuoteSource(client, splitMarkets(*markets))

	// Run the feed loop until the context is cancelled
	runner := feed.NewRunner(feed.RunnerOptions{
		Source:          source,
		QuoteStore:      quoteStore,
		Bankroll:        *bankroll,
		KellyMultiplier: *multiplier,
		Logger:          logger,
	})

	runErr := runner.Run(ctx)

	// Print final stats regardless of how the loop ended
	printStats(runner.Stats())

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Fatalf("feed runner: %v", runErr)
	}
}

// splitMarkets parses the comma-separated market filter.
func splitMarkets(s string) []string {
	if s == "" {
		return nil
	}
	var markets []string
	for _, m := range strings.Split(s, ",") {
		if m = strings.TrimSpace(m); m != "" {
			markets = append(markets, m)
		}
	}
	return markets
}

// printStats outputs the final feed counters.
func printStats(stats feed.RunnerStats) {
	fmt.Println()
	fmt.Println("=== Feed Summary ===")
	fmt.Printf("Quotes Processed:  %d\n", stats.QuotesProcessed)
	fmt.Printf("Quotes Stored:     %d\n", stats.QuotesStored)
	fmt.Printf("Good Bets:         %d\n", stats.GoodBets)
	if stats.LastQuoteAt > 0 {
		fmt.Printf("Last Quote At:     %s\n", time.UnixMilli(stats.LastQuoteAt).Format(time.RFC3339))
	} else {
		fmt.Printf("Last Quote At:     N/A\n")
	}
}
