package storage

import (
	"context"

	"bankroll-lab/internal/domain"
)

// RunRecordStore provides access to run_records storage.
type RunRecordStore interface {
	// Insert adds a new run record. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.RunRecord) error

	// GetByID retrieves a run record by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.RunRecord, error)

	// GetByPolicyID retrieves all runs for a policy, ordered by created_at ASC.
	GetByPolicyID(ctx context.Context, policyID string) ([]*domain.RunRecord, error)

	// GetAll retrieves all run records, ordered by created_at ASC.
	GetAll(ctx context.Context) ([]*domain.RunRecord, error)

	// Delete removes a run record. Returns ErrNotFound if run_id does not
	// exist. Stored path points for the run are not cascaded.
	Delete(ctx context.Context, runID string) error
}

// PathPointStore provides access to path_timeseries storage.
type PathPointStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate
	// (run_id, trial, bet_index).
	InsertBulk(ctx context.Context, points []*domain.PathPoint) error

	// GetByRunID retrieves all points for a run, ordered by (trial, bet_index) ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.PathPoint, error)

	// GetByRunTrial retrieves one trial's points, ordered by bet_index ASC.
	GetByRunTrial(ctx context.Context, runID string, trial int) ([]*domain.PathPoint, error)

	// CountByRunID returns the number of stored points for a run.
	CountByRunID(ctx context.Context, runID string) (int, error)
}

// QuoteStore provides access to quotes storage.
type QuoteStore interface {
	// Insert adds a new quote. Returns ErrDuplicateKey if quote_id exists.
	Insert(ctx context.Context, q *domain.Quote) error

	// GetByID retrieves a quote by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, quoteID string) (*domain.Quote, error)

	// GetBySource retrieves all quotes from a feed source, ordered by quoted_at ASC.
	GetBySource(ctx context.Context, source string) ([]*domain.Quote, error)

	// GetAll retrieves all quotes, ordered by quoted_at ASC.
	GetAll(ctx context.Context) ([]*domain.Quote, error)
}
