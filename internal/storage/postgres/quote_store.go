package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/storage"
)

// QuoteStore implements storage.QuoteStore using PostgreSQL.
type QuoteStore struct {
	pool *Pool
}

// NewQuoteStore creates a new QuoteStore.
func NewQuoteStore(pool *Pool) *QuoteStore {
	return &QuoteStore{pool: pool}
}

// Compile-time interface check.
var _ storage.QuoteStore = (*QuoteStore)(nil)

// Insert adds a new quote. Returns ErrDuplicateKey if quote_id exists.
func (s *QuoteStore) Insert(ctx context.Context, q *domain.Quote) error {
	query := `
		INSERT INTO quotes (
			quote_id, source, market, selection, american_odds,
			prob_win, prob_std, quoted_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9
		)
	`

	_, err := s.pool.Exec(ctx, query,
		q.QuoteID, q.Source, q.Market, q.Selection, q.AmericanOdds,
		q.ProbWin, q.ProbStd, q.QuotedAt, q.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

// GetByID retrieves a quote by its ID. Returns ErrNotFound if not exists.
func (s *QuoteStore) GetByID(ctx context.Context, quoteID string) (*domain.Quote, error) {
	query := `
		SELECT quote_id, source, market, selection, american_odds,
		       prob_win, prob_std, quoted_at, created_at
		FROM quotes
		WHERE quote_id = $1
	`

	row := s.pool.QueryRow(ctx, query, quoteID)
	q, err := scanQuote(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get quote by id: %w", err)
	}
	return q, nil
}

// GetBySource retrieves all quotes from a feed source, ordered by quoted_at ASC.
func (s *QuoteStore) GetBySource(ctx context.Context, source string) ([]*domain.Quote, error) {
	query := `
		SELECT quote_id, source, market, selection, american_odds,
		       prob_win, prob_std, quoted_at, created_at
		FROM quotes
		WHERE source = $1
		ORDER BY quoted_at ASC, quote_id ASC
	`

	rows, err := s.pool.Query(ctx, query, source)
	if err != nil {
		return nil, fmt.Errorf("get quotes by source: %w", err)
	}
	defer rows.Close()

	return scanQuotes(rows)
}

// GetAll retrieves all quotes, ordered by quoted_at ASC.
func (s *QuoteStore) GetAll(ctx context.Context) ([]*domain.Quote, error) {
	query := `
		SELECT quote_id, source, market, selection, american_odds,
		       prob_win, prob_std, quoted_at, created_at
		FROM quotes
		ORDER BY quoted_at ASC, quote_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all quotes: %w", err)
	}
	defer rows.Close()

	return scanQuotes(rows)
}

// scanQuote scans a single row into a Quote.
func scanQuote(row pgx.Row) (*domain.Quote, error) {
	var q domain.Quote

	err := row.Scan(
		&q.QuoteID, &q.Source, &q.Market, &q.Selection, &q.AmericanOdds,
		&q.ProbWin, &q.ProbStd, &q.QuotedAt, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &q, nil
}

// scanQuotes scans multiple rows into a slice of Quote.
func scanQuotes(rows pgx.Rows) ([]*domain.Quote, error) {
	var quotes []*domain.Quote

	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote row: %w", err)
		}
		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote rows: %w", err)
	}

	return quotes, nil
}
