package metrics

import (
	"context"
	"errors"
	"sort"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/storage"
)

// ErrNoRuns is returned when no runs are available for comparison.
var ErrNoRuns = errors.New("no runs available for comparison")

// ComparisonRow is one policy's line in a cross-policy comparison,
// built from that policy's most recent run.
type ComparisonRow struct {
	PolicyID            string
	RunID               string
	TotalTrials         int
	RuinedCount         int
	InitialBankroll     float64
	MeanFinalBankroll   float64
	MedianFinalBankroll float64
	StddevFinalBankroll float64
	P10FinalBankroll    float64
	P90FinalBankroll    float64
	ProbabilityOfProfit float64
	ProbabilityOfRuin   float64
	MeanMaxDrawdown     float64
	CreatedAt           int64
}

// Aggregator builds cross-policy comparisons from persisted run records.
type Aggregator struct {
	runRecordStore storage.RunRecordStore
}

// NewAggregator creates a new run aggregator.
func NewAggregator(runStore storage.RunRecordStore) *Aggregator {
	return &Aggregator{runRecordStore: runStore}
}

// LatestRuns returns the most recent run of every policy, sorted by policy ID
// for deterministic output. A policy's latest run is the one with the highest
// created_at; ties resolve to the higher run_id. An empty store yields an
// empty slice.
func (a *Aggregator) LatestRuns(ctx context.Context) ([]*domain.RunRecord, error) {
	records, err := a.runRecordStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	// GetAll orders by (created_at, run_id) ascending, so the last record
	// seen for a policy is its latest.
	latest := make(map[string]*domain.RunRecord)
	for _, rec := range records {
		latest[rec.PolicyID] = rec
	}

	policyIDs := make([]string, 0, len(latest))
	for id := range latest {
		policyIDs = append(policyIDs, id)
	}
	sort.Strings(policyIDs)

	out := make([]*domain.RunRecord, len(policyIDs))
	for i, id := range policyIDs {
		out[i] = latest[id]
	}
	return out, nil
}

// ComparePolicies builds one comparison row per policy from its latest run,
// ranked by median final bankroll descending. Policies tying on the median
// order by policy ID. Returns ErrNoRuns if the store holds no runs.
func (a *Aggregator) ComparePolicies(ctx context.Context) ([]ComparisonRow, error) {
	records, err := a.LatestRuns(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRuns
	}

	rows := make([]ComparisonRow, len(records))
	for i, rec := range records {
		rows[i] = rowFromRecord(rec)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].MedianFinalBankroll != rows[j].MedianFinalBankroll {
			return rows[i].MedianFinalBankroll > rows[j].MedianFinalBankroll
		}
		return rows[i].PolicyID < rows[j].PolicyID
	})

	return rows, nil
}

func rowFromRecord(rec *domain.RunRecord) ComparisonRow {
	return ComparisonRow{
		PolicyID:            rec.PolicyID,
		RunID:               rec.RunID,
		TotalTrials:         rec.TotalTrials,
		RuinedCount:         rec.RuinedCount,
		InitialBankroll:     rec.InitialBankroll,
		MeanFinalBankroll:   rec.MeanFinalBankroll,
		MedianFinalBankroll: rec.MedianFinalBankroll,
		StddevFinalBankroll: rec.StddevFinalBankroll,
		P10FinalBankroll:    rec.P10FinalBankroll,
		P90FinalBankroll:    rec.P90FinalBankroll,
		ProbabilityOfProfit: rec.ProbabilityOfProfit,
		ProbabilityOfRuin:   rec.ProbabilityOfRuin,
		MeanMaxDrawdown:     rec.MeanMaxDrawdown,
		CreatedAt:           rec.CreatedAt,
	}
}
