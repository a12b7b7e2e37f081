package memory

import (
	"context"
	"sort"
	"sync"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/storage"
)

// RunRecordStore is an in-memory implementation of storage.RunRecordStore.
type RunRecordStore struct {
	mu   sync.RWMutex
	data map[string]*domain.RunRecord // keyed by run_id
}

// NewRunRecordStore creates a new in-memory run record store.
func NewRunRecordStore() *RunRecordStore {
	return &RunRecordStore{
		data: make(map[string]*domain.RunRecord),
	}
}

// Insert adds a new run record. Returns ErrDuplicateKey if run_id exists.
func (s *RunRecordStore) Insert(_ context.Context, r *domain.RunRecord) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	recordCopy := *r
	s.data[r.RunID] = &recordCopy
	return nil
}

// GetByID retrieves a run record by its ID. Returns ErrNotFound if not exists.
func (s *RunRecordStore) GetByID(_ context.Context, runID string) (*domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	recordCopy := *r
	return &recordCopy, nil
}

// GetByPolicyID retrieves all runs for a policy, ordered by created_at ASC.
func (s *RunRecordStore) GetByPolicyID(_ context.Context, policyID string) ([]*domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RunRecord
	for _, r := range s.data {
		if r.PolicyID == policyID {
			recordCopy := *r
			result = append(result, &recordCopy)
		}
	}

	sortRunRecords(result)
	return result, nil
}

// GetAll retrieves all run records, ordered by created_at ASC.
func (s *RunRecordStore) GetAll(_ context.Context) ([]*domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.RunRecord, 0, len(s.data))
	for _, r := range s.data {
		recordCopy := *r
		result = append(result, &recordCopy)
	}

	sortRunRecords(result)
	return result, nil
}

// Delete removes a run record. Returns ErrNotFound if run_id does not exist.
func (s *RunRecordStore) Delete(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[runID]; !exists {
		return storage.ErrNotFound
	}

	delete(s.data, runID)
	return nil
}

// sortRunRecords orders by created_at ASC, run_id ASC for deterministic output.
func sortRunRecords(records []*domain.RunRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt != records[j].CreatedAt {
			return records[i].CreatedAt < records[j].CreatedAt
		}
		return records[i].RunID < records[j].RunID
	})
}

var _ storage.RunRecordStore = (*RunRecordStore)(nil)
