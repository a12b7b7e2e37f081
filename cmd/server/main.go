// Package main provides the unified server that runs all components together:
// - Quote feed (continuous): WebSocket quote ingestion and assessment
// - Sweep (scheduled): policy batches against the shared scenario
// - Reporting (scheduled): SWEEP_REPORT.md, CSVs, STAKE_GATE.md
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"bankroll-lab/internal/feed"
	"bankroll-lab/internal/observability"
	"bankroll-lab/internal/orchestrator"
	"bankroll-lab/internal/pipeline"
	"bankroll-lab/internal/replay"
	"bankroll-lab/internal/storage"
	chstore "bankroll-lab/internal/storage/clickhouse"
	"bankroll-lab/internal/storage/memory"
	pgstore "bankroll-lab/internal/storage/postgres"
)

// Server holds all components of the unified service.
type Server struct {
	// Configuration
	wsEndpoint      string
	postgresDSN     string
	clickhouseDSN   string
	useMemory       bool
	markets         []string
	bankroll        float64
	kellyMultiplier float64
	outputDir       string
	sweepInterval   time.Duration
	reportInterval  time.Duration

	// Stores
	stores *allStores

	// Components
	feedRunner *feed.Runner
	logger     *log.Logger

	// State
	mu            sync.Mutex
	lastSweepRun  time.Time
	lastReportRun time.Time
	sweepRunning  bool
	reportRunning bool
	feedStarted   time.Time

	// Stats
	sweepRuns  int
	reportRuns int
}

// allStores holds all storage implementations.
type allStores struct {
	quoteStore     storage.QuoteStore
	runRecordStore storage.RunRecordStore
	pathPointStore storage.PathPointStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("MODEL_WS_ENDPOINT"), "Model service WebSocket endpoint")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	markets := flag.String("markets", "", "Comma-separated market filter (empty subscribes to all markets)")
	bankroll := flag.Float64("bankroll", 1000, "Bankroll for live quote sizing")
	multiplier := flag.Float64("multiplier", 0.5, "Kelly multiplier for live quote sizing")
	outputDir := flag.String("output-dir", "output", "Output directory for reports")
	sweepInterval := flag.Duration("sweep-interval", 1*time.Hour, "Policy sweep run interval")
	reportInterval := flag.Duration("report-interval", 6*time.Hour, "Report generation interval")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *wsEndpoint == "" {
		logger.Fatal("--ws-endpoint is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Resolve market filter
	marketList := splitMarkets(*markets)
	if len(marketList) > 0 {
		logger.Printf("Monitoring markets: %v", marketList)
	} else {
		logger.Print("Monitoring all markets")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Create server
	server := &Server{
		wsEndpoint:      *wsEndpoint,
		postgresDSN:     *postgresDSN,
		clickhouseDSN:   *clickhouseDSN,
		useMemory:       *useMemory,
		markets:         marketList,
		bankroll:        *bankroll,
		kellyMultiplier: *multiplier,
		outputDir:       *outputDir,
		sweepInterval:   *sweepInterval,
		reportInterval:  *reportInterval,
		stores:          stores,
		logger:          logger,
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP server
	go server.startHTTPServer(*metricsAddr)

	// Run the unified server
	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
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

// createStores creates all required stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			quoteStore:     memory.NewQuoteStore(),
			runRecordStore: memory.NewRunRecordStore(),
			pathPointStore: memory.NewPathPointStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL, schema applied on connect
	pool, err := pgstore.Bootstrap(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// ClickHouse, schema applied on connect
	chConn, err := chstore.Bootstrap(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	stores := &allStores{
		// PostgreSQL stores (quotes + run records)
		quoteStore:     pgstore.NewQuoteStore(pool),
		runRecordStore: pgstore.NewRunRecordStore(pool),

		// ClickHouse store (path analytics)
		pathPointStore: chstore.NewPathPointStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// Run starts the unified server with all components.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting unified server...")

	// Create error channel for goroutines
	errCh := make(chan error, 3)

	// Start quote feed in background
	go func() {
		err := s.runFeed(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("feed: %w", err)
		}
	}()

	// Start sweep scheduler in background
	go func() {
		err := s.runSweepScheduler(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("sweep scheduler: %w", err)
		}
	}()

	// Start report scheduler in background
	go func() {
		err := s.runReportScheduler(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("report scheduler: %w", err)
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runFeed runs continuous quote ingestion and assessment.
func (s *Server) runFeed(ctx context.Context) error {
	s.logger.Println("Starting quote feed...")

	ws, err := feed.NewClient(ctx, s.wsEndpoint, nil)
	if err != nil {
		return fmt.Errorf("create websocket client: %w", err)
	}
	defer ws.Close()

	source := feed.NewWSQuoteSource(ws, s.markets)

	runner := feed.NewRunner(feed.RunnerOptions{
		Source:          source,
		QuoteStore:      s.stores.quoteStore,
		Bankroll:        s.bankroll,
		KellyMultiplier: s.kellyMultiplier,
		Logger:          log.New(os.Stdout, "[feed] ", log.LstdFlags|log.Lshortfile),
	})

	s.mu.Lock()
	s.feedRunner = runner
	s.feedStarted = time.Now()
	s.mu.Unlock()

	s.logger.Println("Feed started")
	return runner.Run(ctx)
}

// runSweepScheduler runs the policy sweep on schedule.
func (s *Server) runSweepScheduler(ctx context.Context) error {
	s.logger.Printf("Starting sweep scheduler (interval: %v)...", s.sweepInterval)

	// Run immediately on start
	s.runSweep(ctx)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

// runSweep executes one policy sweep. Each scheduled sweep resolves a fresh
// master seed from the clock, so successive sweeps accumulate as new runs.
func (s *Server) runSweep(ctx context.Context) {
	s.mu.Lock()
	if s.sweepRunning {
		s.mu.Unlock()
		s.logger.Println("Sweep already running, skipping...")
		return
	}
	s.sweepRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sweepRunning = false
		s.lastSweepRun = time.Now()
		s.sweepRuns++
		s.mu.Unlock()
	}()

	s.logger.Println("Running policy sweep...")
	start := time.Now()

	orch := orchestrator.New(orchestrator.Options{
		RunRecordStore: s.stores.runRecordStore,
		PathPointStore: s.stores.pathPointStore,
		Params:         pipeline.DefaultParams(),
		PolicyConfigs:  pipeline.DefaultPolicyConfigs(),
		Logger:         s.logger,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		s.logger.Printf("Sweep error: %v", err)
		return
	}

	s.logger.Printf("Sweep completed in %v: seed=%d runs=%d points=%d",
		time.Since(start), result.MasterSeed, result.RunsCompleted, result.PathPointsStored)
	for _, e := range result.Errors {
		s.logger.Printf("Sweep policy error: %s", e)
	}
}

// runReportScheduler runs report generation on schedule.
func (s *Server) runReportScheduler(ctx context.Context) error {
	s.logger.Printf("Starting report scheduler (interval: %v)...", s.reportInterval)

	// Wait for the first sweep to land before generating reports
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.sweepInterval + 1*time.Minute):
	}

	// Run immediately after the first sweep
	s.runReport(ctx)

	ticker := time.NewTicker(s.reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runReport(ctx)
		}
	}
}

// runReport generates reports.
func (s *Server) runReport(ctx context.Context) {
	s.mu.Lock()
	if s.reportRunning {
		s.mu.Unlock()
		s.logger.Println("Report generation already running, skipping...")
		return
	}
	// Wait for sweep to finish
	if s.sweepRunning {
		s.mu.Unlock()
		s.logger.Println("Sweep running, waiting before report generation...")
		time.Sleep(30 * time.Second)
		s.mu.Lock()
	}
	s.reportRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.reportRunning = false
		s.lastReportRun = time.Now()
		s.reportRuns++
		s.mu.Unlock()
	}()

	s.logger.Println("Generating reports...")
	start := time.Now()

	// Ensure output directory exists
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		s.logger.Printf("Failed to create output directory: %v", err)
		return
	}

	// Create replay runner for the replayability check
	replayRunner := replay.NewRunner(replay.Options{
		RunRecordStore: s.stores.runRecordStore,
		PathPointStore: s.stores.pathPointStore,
	})

	// Create pipeline
	p := pipeline.NewSweepPipeline(
		s.stores.runRecordStore,
		s.stores.pathPointStore,
		s.outputDir,
	).WithSufficiencyChecker(
		s.stores.runRecordStore,
		s.stores.pathPointStore,
		replayRunner,
	)

	// Run reporting pipeline
	if err := p.Run(ctx); err != nil {
		s.logger.Printf("Report generation error: %v", err)
		return
	}

	s.logger.Printf("Reports generated in %v to %s/", time.Since(start), s.outputDir)
}

// startHTTPServer starts the HTTP server for health/metrics/status.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status          string    `json:"status"`
	Uptime          string    `json:"uptime"`
	FeedStarted     time.Time `json:"feed_started"`
	QuotesProcessed int64     `json:"quotes_processed"`
	QuotesStored    int64     `json:"quotes_stored"`
	GoodBets        int64     `json:"good_bets"`
	LastQuoteAt     int64     `json:"last_quote_at"`
	LastSweepRun    time.Time `json:"last_sweep_run,omitempty"`
	LastReportRun   time.Time `json:"last_report_run,omitempty"`
	SweepRuns       int       `json:"sweep_runs"`
	ReportRuns      int       `json:"report_runs"`
	SweepRunning    bool      `json:"sweep_running"`
	ReportRunning   bool      `json:"report_running"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats feed.RunnerStats
	if s.feedRunner != nil {
		stats = s.feedRunner.Stats()
	}

	resp := StatusResponse{
		Status:          "running",
		Uptime:          time.Since(s.feedStarted).String(),
		FeedStarted:     s.feedStarted,
		QuotesProcessed: stats.QuotesProcessed,
		QuotesStored:    stats.QuotesStored,
		GoodBets:        stats.GoodBets,
		LastQuoteAt:     stats.LastQuoteAt,
		LastSweepRun:    s.lastSweepRun,
		LastReportRun:   s.lastReportRun,
		SweepRuns:       s.sweepRuns,
		ReportRuns:      s.reportRuns,
		SweepRunning:    s.sweepRunning,
		ReportRunning:   s.reportRunning,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
