package reporting

import (
	"context"
	"fmt"
	"time"

	"bankroll-lab/internal/decision"
	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/metrics"
	"bankroll-lab/internal/storage"
)

// Generator produces reports from stored run records.
type Generator struct {
	runRecordStore storage.RunRecordStore
	pathPointStore storage.PathPointStore // optional; nil drops the envelope section
	now            func() time.Time       // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. pathStore may be nil when no
// sample paths were persisted.
func NewGenerator(runStore storage.RunRecordStore, pathStore storage.PathPointStore) *Generator {
	return &Generator{
		runRecordStore: runStore,
		pathPointStore: pathStore,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete sweep report. Every policy contributes its
// latest run; returns metrics.ErrNoRuns when the store holds nothing.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	agg := metrics.NewAggregator(g.runRecordStore)

	// Leaderboard rows, ranked by median final bankroll
	rows, err := agg.ComparePolicies(ctx)
	if err != nil {
		return nil, err
	}

	// The same latest-run records back the gate inputs
	records, err := agg.LatestRuns(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt:   g.now(),
		PolicyCount:   len(rows),
		PolicyMetrics: make([]PolicyMetricRow, len(rows)),
	}
	for i, row := range rows {
		report.PolicyMetrics[i] = metricRowFrom(row)
		report.TotalTrials += row.TotalTrials
	}

	// Gate every policy, leaderboard order; the leader decides the overall
	// outcome.
	report.Gates = buildGates(rows, records)
	if len(report.Gates) > 0 {
		report.LeadingPolicy = report.Gates[0].PolicyID
		report.Decision = report.Gates[0].Decision
	}

	if err := g.generateEnvelope(ctx, report, rows); err != nil {
		return nil, err
	}

	return report, nil
}

// generateEnvelope loads the leading run's sample paths and reduces them to
// a mean/P10/P90 band per bet index. Skipped when no path store is wired or
// the run persisted no paths.
func (g *Generator) generateEnvelope(ctx context.Context, report *Report, rows []metrics.ComparisonRow) error {
	if g.pathPointStore == nil || len(rows) == 0 {
		return nil
	}

	leader := rows[0]
	points, err := g.pathPointStore.GetByRunID(ctx, leader.RunID)
	if err != nil {
		return fmt.Errorf("load sample paths for run %s: %w", leader.RunID, err)
	}
	if len(points) == 0 {
		return nil
	}

	report.Envelope = EnvelopeSection{
		PolicyID: leader.PolicyID,
		RunID:    leader.RunID,
		Points:   metrics.PathEnvelope(metrics.PathsFromPoints(points)),
	}
	return nil
}

// buildGates evaluates the stake gate against each policy's latest run,
// ordered like the leaderboard rows.
func buildGates(rows []metrics.ComparisonRow, records []*domain.RunRecord) []*decision.DecisionResult {
	byPolicy := make(map[string]*domain.RunRecord, len(records))
	for _, rec := range records {
		byPolicy[rec.PolicyID] = rec
	}

	eval := decision.NewEvaluator()
	gates := make([]*decision.DecisionResult, 0, len(rows))
	for _, row := range rows {
		rec, ok := byPolicy[row.PolicyID]
		if !ok {
			continue
		}
		gates = append(gates, eval.Evaluate(decision.InputFromRecord(rec)))
	}
	return gates
}

// metricRowFrom projects an aggregator comparison row into the report row.
func metricRowFrom(row metrics.ComparisonRow) PolicyMetricRow {
	return PolicyMetricRow{
		PolicyID:            row.PolicyID,
		RunID:               row.RunID,
		TotalTrials:         row.TotalTrials,
		RuinedCount:         row.RuinedCount,
		InitialBankroll:     row.InitialBankroll,
		MeanFinalBankroll:   row.MeanFinalBankroll,
		MedianFinalBankroll: row.MedianFinalBankroll,
		StddevFinalBankroll: row.StddevFinalBankroll,
		P10FinalBankroll:    row.P10FinalBankroll,
		P90FinalBankroll:    row.P90FinalBankroll,
		ProbabilityOfProfit: row.ProbabilityOfProfit,
		ProbabilityOfRuin:   row.ProbabilityOfRuin,
		MeanMaxDrawdown:     row.MeanMaxDrawdown,
		CreatedAt:           row.CreatedAt,
	}
}
