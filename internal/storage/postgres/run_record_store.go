package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/storage"
)

// RunRecordStore implements storage.RunRecordStore using PostgreSQL.
type RunRecordStore struct {
	pool *Pool
}

// NewRunRecordStore creates a new RunRecordStore.
func NewRunRecordStore(pool *Pool) *RunRecordStore {
	return &RunRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunRecordStore = (*RunRecordStore)(nil)

const runRecordColumns = `
	run_id, policy_id,
	policy_type, policy_stake, policy_fraction, policy_prob_win,
	policy_decimal_odds, policy_multiplier, policy_prob_std,
	policy_edge_threshold, policy_max_drawdown, policy_min_stake, policy_max_stake,
	prob_win, decimal_odds, initial_bankroll, n_bets, n_sims,
	ruin_threshold, paths_to_store, seed,
	total_trials, ruined_count,
	mean_final_bankroll, median_final_bankroll, stddev_final_bankroll,
	min_final_bankroll, max_final_bankroll, p10_final_bankroll, p90_final_bankroll,
	probability_of_profit, probability_of_ruin,
	mean_max_drawdown, median_max_drawdown,
	created_at
`

// Insert adds a new run record. Returns ErrDuplicateKey if run_id exists.
func (s *RunRecordStore) Insert(ctx context.Context, r *domain.RunRecord) error {
	query := `
		INSERT INTO run_records (` + runRecordColumns + `) VALUES (
			$1, $2,
			$3, $4, $5, $6,
			$7, $8, $9,
			$10, $11, $12, $13,
			$14, $15, $16, $17, $18,
			$19, $20, $21,
			$22, $23,
			$24, $25, $26,
			$27, $28, $29, $30,
			$31, $32,
			$33, $34,
			$35
		)
	`

	_, err := s.pool.Exec(ctx, query,
		r.RunID, r.PolicyID,
		r.Policy.PolicyType, r.Policy.Stake, r.Policy.Fraction, r.Policy.ProbWin,
		r.Policy.DecimalOdds, r.Policy.Multiplier, r.Policy.ProbStd,
		r.Policy.EdgeThreshold, r.Policy.MaxDrawdown, r.Policy.MinStake, r.Policy.MaxStake,
		r.ProbWin, r.DecimalOdds, r.InitialBankroll, r.NBets, r.NSims,
		r.RuinThreshold, r.PathsToStore, r.Seed,
		r.TotalTrials, r.RuinedCount,
		r.MeanFinalBankroll, r.MedianFinalBankroll, r.StddevFinalBankroll,
		r.MinFinalBankroll, r.MaxFinalBankroll, r.P10FinalBankroll, r.P90FinalBankroll,
		r.ProbabilityOfProfit, r.ProbabilityOfRuin,
		r.MeanMaxDrawdown, r.MedianMaxDrawdown,
		r.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}

// GetByID retrieves a run record by its ID. Returns ErrNotFound if not exists.
func (s *RunRecordStore) GetByID(ctx context.Context, runID string) (*domain.RunRecord, error) {
	query := `SELECT ` + runRecordColumns + ` FROM run_records WHERE run_id = $1`

	row := s.pool.QueryRow(ctx, query, runID)
	r, err := scanRunRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get run record by id: %w", err)
	}
	return r, nil
}

// GetByPolicyID retrieves all runs for a policy, ordered by created_at ASC.
func (s *RunRecordStore) GetByPolicyID(ctx context.Context, policyID string) ([]*domain.RunRecord, error) {
	query := `
		SELECT ` + runRecordColumns + `
		FROM run_records
		WHERE policy_id = $1
		ORDER BY created_at ASC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query, policyID)
	if err != nil {
		return nil, fmt.Errorf("get run records by policy id: %w", err)
	}
	defer rows.Close()

	return scanRunRecords(rows)
}

// GetAll retrieves all run records, ordered by created_at ASC.
func (s *RunRecordStore) GetAll(ctx context.Context) ([]*domain.RunRecord, error) {
	query := `
		SELECT ` + runRecordColumns + `
		FROM run_records
		ORDER BY created_at ASC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all run records: %w", err)
	}
	defer rows.Close()

	return scanRunRecords(rows)
}

// Delete removes a run record. Returns ErrNotFound if run_id does not exist.
func (s *RunRecordStore) Delete(ctx context.Context, runID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM run_records WHERE run_id = $1`, runID)
	if err != nil {
		return fmt.Errorf("delete run record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanRunRecord scans a single row into a RunRecord.
func scanRunRecord(row pgx.Row) (*domain.RunRecord, error) {
	var r domain.RunRecord

	err := row.Scan(
		&r.RunID, &r.PolicyID,
		&r.Policy.PolicyType, &r.Policy.Stake, &r.Policy.Fraction, &r.Policy.ProbWin,
		&r.Policy.DecimalOdds, &r.Policy.Multiplier, &r.Policy.ProbStd,
		&r.Policy.EdgeThreshold, &r.Policy.MaxDrawdown, &r.Policy.MinStake, &r.Policy.MaxStake,
		&r.ProbWin, &r.DecimalOdds, &r.InitialBankroll, &r.NBets, &r.NSims,
		&r.RuinThreshold, &r.PathsToStore, &r.Seed,
		&r.TotalTrials, &r.RuinedCount,
		&r.MeanFinalBankroll, &r.MedianFinalBankroll, &r.StddevFinalBankroll,
		&r.MinFinalBankroll, &r.MaxFinalBankroll, &r.P10FinalBankroll, &r.P90FinalBankroll,
		&r.ProbabilityOfProfit, &r.ProbabilityOfRuin,
		&r.MeanMaxDrawdown, &r.MedianMaxDrawdown,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// scanRunRecords scans multiple rows into a slice of RunRecord.
func scanRunRecords(rows pgx.Rows) ([]*domain.RunRecord, error) {
	var records []*domain.RunRecord

	for rows.Next() {
		r, err := scanRunRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run record row: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run record rows: %w", err)
	}

	return records, nil
}
