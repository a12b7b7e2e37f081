package clickhouse

import (
	"context"
	"fmt"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/storage"
)

// PathPointStore implements storage.PathPointStore using ClickHouse.
type PathPointStore struct {
	conn *Conn
}

// NewPathPointStore creates a new PathPointStore.
func NewPathPointStore(conn *Conn) *PathPointStore {
	return &PathPointStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PathPointStore = (*PathPointStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate
// (run_id, trial, bet_index). MergeTree does not enforce uniqueness, so
// duplicates are detected before the batch is sent. Existence is checked per
// (run_id, trial): a trial's path is written in one batch, never partially.
func (s *PathPointStore) InsertBulk(ctx context.Context, points []*domain.PathPoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type pointKey struct {
		runID    string
		trial    int
		betIndex int
	}
	type trialKey struct {
		runID string
		trial int
	}
	seen := make(map[pointKey]struct{}, len(points))
	trials := make(map[trialKey]struct{})
	for _, p := range points {
		if p == nil || p.RunID == "" {
			return storage.ErrInvalidInput
		}
		k := pointKey{p.RunID, p.Trial, p.BetIndex}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
		trials[trialKey{p.RunID, p.Trial}] = struct{}{}
	}

	// Check for duplicates against existing DB rows, one query per trial
	for tk := range trials {
		exists, err := s.trialExists(ctx, tk.runID, tk.trial)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO path_timeseries (
			run_id, trial, bet_index, bankroll
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.RunID, uint32(p.Trial), uint32(p.BetIndex), p.Bankroll,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRunID retrieves all points for a run, ordered by (trial, bet_index) ASC.
func (s *PathPointStore) GetByRunID(ctx context.Context, runID string) ([]*domain.PathPoint, error) {
	query := `
		SELECT run_id, trial, bet_index, bankroll
		FROM path_timeseries
		WHERE run_id = ?
		ORDER BY trial ASC, bet_index ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run id: %w", err)
	}
	defer rows.Close()

	return scanPathPoints(rows)
}

// GetByRunTrial retrieves one trial's points, ordered by bet_index ASC.
func (s *PathPointStore) GetByRunTrial(ctx context.Context, runID string, trial int) ([]*domain.PathPoint, error) {
	query := `
		SELECT run_id, trial, bet_index, bankroll
		FROM path_timeseries
		WHERE run_id = ? AND trial = ?
		ORDER BY bet_index ASC
	`

	rows, err := s.conn.Query(ctx, query, runID, uint32(trial))
	if err != nil {
		return nil, fmt.Errorf("query by run trial: %w", err)
	}
	defer rows.Close()

	return scanPathPoints(rows)
}

// CountByRunID returns the number of stored points for a run.
func (s *PathPointStore) CountByRunID(ctx context.Context, runID string) (int, error) {
	query := `SELECT count(*) FROM path_timeseries WHERE run_id = ?`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, runID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count by run id: %w", err)
	}
	return int(count), nil
}

// trialExists checks if any point for (run_id, trial) exists.
func (s *PathPointStore) trialExists(ctx context.Context, runID string, trial int) (bool, error) {
	query := `
		SELECT count(*) FROM path_timeseries
		WHERE run_id = ? AND trial = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, runID, uint32(trial)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// chRows is the subset of driver.Rows the scanners need.
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanPathPoints scans multiple rows.
func scanPathPoints(rows chRows) ([]*domain.PathPoint, error) {
	var points []*domain.PathPoint

	for rows.Next() {
		var p domain.PathPoint
		var trial, betIndex uint32

		if err := rows.Scan(&p.RunID, &trial, &betIndex, &p.Bankroll); err != nil {
			return nil, fmt.Errorf("scan path point row: %w", err)
		}

		p.Trial = int(trial)
		p.BetIndex = int(betIndex)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate path point rows: %w", err)
	}

	return points, nil
}
