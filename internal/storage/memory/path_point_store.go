package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/storage"
)

// PathPointStore is an in-memory implementation of storage.PathPointStore.
type PathPointStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PathPoint // keyed by (run_id, trial, bet_index)
}

// NewPathPointStore creates a new in-memory path point store.
func NewPathPointStore() *PathPointStore {
	return &PathPointStore{
		data: make(map[string]*domain.PathPoint),
	}
}

// pathKey generates a unique key for a path point.
func pathKey(runID string, trial, betIndex int) string {
	return fmt.Sprintf("%s|%d|%d", runID, trial, betIndex)
}

// InsertBulk adds multiple points. Fails entire batch on duplicate.
func (s *PathPointStore) InsertBulk(_ context.Context, points []*domain.PathPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(points))

	// First pass: check for duplicates (existing + intra-batch)
	for _, p := range points {
		if p == nil || p.RunID == "" {
			return storage.ErrInvalidInput
		}
		key := pathKey(p.RunID, p.Trial, p.BetIndex)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, p := range points {
		key := pathKey(p.RunID, p.Trial, p.BetIndex)
		pointCopy := *p
		s.data[key] = &pointCopy
	}

	return nil
}

// GetByRunID retrieves all points for a run, ordered by (trial, bet_index) ASC.
func (s *PathPointStore) GetByRunID(_ context.Context, runID string) ([]*domain.PathPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PathPoint
	for _, p := range s.data {
		if p.RunID == runID {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Trial != result[j].Trial {
			return result[i].Trial < result[j].Trial
		}
		return result[i].BetIndex < result[j].BetIndex
	})

	return result, nil
}

// GetByRunTrial retrieves one trial's points, ordered by bet_index ASC.
func (s *PathPointStore) GetByRunTrial(_ context.Context, runID string, trial int) ([]*domain.PathPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PathPoint
	for _, p := range s.data {
		if p.RunID == runID && p.Trial == trial {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].BetIndex < result[j].BetIndex
	})

	return result, nil
}

// CountByRunID returns the number of stored points for a run.
func (s *PathPointStore) CountByRunID(_ context.Context, runID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, p := range s.data {
		if p.RunID == runID {
			count++
		}
	}
	return count, nil
}

var _ storage.PathPointStore = (*PathPointStore)(nil)
