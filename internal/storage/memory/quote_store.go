package memory

import (
	"context"
	"sort"
	"sync"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/storage"
)

// QuoteStore is an in-memory implementation of storage.QuoteStore.
type QuoteStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Quote // keyed by quote_id
}

// NewQuoteStore creates a new in-memory quote store.
func NewQuoteStore() *QuoteStore {
	return &QuoteStore{
		data: make(map[string]*domain.Quote),
	}
}

// Insert adds a new quote. Returns ErrDuplicateKey if quote_id exists.
func (s *QuoteStore) Insert(_ context.Context, q *domain.Quote) error {
	if q == nil || q.QuoteID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[q.QuoteID]; exists {
		return storage.ErrDuplicateKey
	}

	quoteCopy := *q
	s.data[q.QuoteID] = &quoteCopy
	return nil
}

// GetByID retrieves a quote by its ID. Returns ErrNotFound if not exists.
func (s *QuoteStore) GetByID(_ context.Context, quoteID string) (*domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, exists := s.data[quoteID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	quoteCopy := *q
	return &quoteCopy, nil
}

// GetBySource retrieves all quotes from a feed source, ordered by quoted_at ASC.
func (s *QuoteStore) GetBySource(_ context.Context, source string) ([]*domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Quote
	for _, q := range s.data {
		if q.Source == source {
			quoteCopy := *q
			result = append(result, &quoteCopy)
		}
	}

	sortQuotes(result)
	return result, nil
}

// GetAll retrieves all quotes, ordered by quoted_at ASC.
func (s *QuoteStore) GetAll(_ context.Context) ([]*domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Quote, 0, len(s.data))
	for _, q := range s.data {
		quoteCopy := *q
		result = append(result, &quoteCopy)
	}

	sortQuotes(result)
	return result, nil
}

// sortQuotes orders by quoted_at ASC, quote_id ASC for deterministic output.
func sortQuotes(quotes []*domain.Quote) {
	sort.Slice(quotes, func(i, j int) bool {
		if quotes[i].QuotedAt != quotes[j].QuotedAt {
			return quotes[i].QuotedAt < quotes[j].QuotedAt
		}
		return quotes[i].QuoteID < quotes[j].QuoteID
	})
}

var _ storage.QuoteStore = (*QuoteStore)(nil)
