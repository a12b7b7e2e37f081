package memory

import (
	"context"
	"errors"
	"testing"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/storage"
)

func TestPathPointStore_InsertBulkAndGet(t *testing.T) {
	store := NewPathPointStore()
	ctx := context.Background()

	points := []*domain.PathPoint{
		{RunID: "run1", Trial: 0, BetIndex: 0, Bankroll: 1000},
		{RunID: "run1", Trial: 0, BetIndex: 1, Bankroll: 1010},
		{RunID: "run1", Trial: 1, BetIndex: 0, Bankroll: 1000},
		{RunID: "run2", Trial: 0, BetIndex: 0, Bankroll: 500},
	}

	if err := store.InsertBulk(ctx, points); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByRunID(ctx, "run1")
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 points for run1, got %d", len(got))
	}

	// Ordered by (trial, bet_index)
	if got[0].Trial != 0 || got[0].BetIndex != 0 {
		t.Errorf("Expected (0,0) first, got (%d,%d)", got[0].Trial, got[0].BetIndex)
	}
	if got[2].Trial != 1 {
		t.Errorf("Expected trial 1 last, got %d", got[2].Trial)
	}
	if got[1].Bankroll != 1010 {
		t.Errorf("Bankroll mismatch: got %f, want 1010", got[1].Bankroll)
	}
}

func TestPathPointStore_EmptyBulk(t *testing.T) {
	store := NewPathPointStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, nil); err != nil {
		t.Errorf("Empty bulk insert should succeed, got %v", err)
	}
}

func TestPathPointStore_DuplicateAgainstExisting(t *testing.T) {
	store := NewPathPointStore()
	ctx := context.Background()

	points := []*domain.PathPoint{
		{RunID: "run1", Trial: 0, BetIndex: 0, Bankroll: 1000},
	}

	if err := store.InsertBulk(ctx, points); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.InsertBulk(ctx, points)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestPathPointStore_IntraBatchDuplicate(t *testing.T) {
	store := NewPathPointStore()
	ctx := context.Background()

	points := []*domain.PathPoint{
		{RunID: "run1", Trial: 0, BetIndex: 0, Bankroll: 1000},
		{RunID: "run1", Trial: 0, BetIndex: 0, Bankroll: 999},
	}

	err := store.InsertBulk(ctx, points)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Verify all-or-nothing
	count, _ := store.CountByRunID(ctx, "run1")
	if count != 0 {
		t.Errorf("Expected 0 points (no partial insert), got %d", count)
	}
}

func TestPathPointStore_GetByRunTrial(t *testing.T) {
	store := NewPathPointStore()
	ctx := context.Background()

	points := []*domain.PathPoint{
		{RunID: "run1", Trial: 0, BetIndex: 1, Bankroll: 1010},
		{RunID: "run1", Trial: 0, BetIndex: 0, Bankroll: 1000},
		{RunID: "run1", Trial: 1, BetIndex: 0, Bankroll: 1000},
	}

	if err := store.InsertBulk(ctx, points); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByRunTrial(ctx, "run1", 0)
	if err != nil {
		t.Fatalf("GetByRunTrial failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 points for trial 0, got %d", len(got))
	}
	// Ordered by bet_index
	if got[0].BetIndex != 0 || got[1].BetIndex != 1 {
		t.Errorf("Results not ordered by bet_index: got %d, %d", got[0].BetIndex, got[1].BetIndex)
	}
}

func TestPathPointStore_CountByRunID(t *testing.T) {
	store := NewPathPointStore()
	ctx := context.Background()

	points := []*domain.PathPoint{
		{RunID: "run1", Trial: 0, BetIndex: 0, Bankroll: 1000},
		{RunID: "run1", Trial: 0, BetIndex: 1, Bankroll: 990},
		{RunID: "run2", Trial: 0, BetIndex: 0, Bankroll: 1000},
	}

	if err := store.InsertBulk(ctx, points); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	count, err := store.CountByRunID(ctx, "run1")
	if err != nil {
		t.Fatalf("CountByRunID failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected count 2, got %d", count)
	}

	count, _ = store.CountByRunID(ctx, "unknown")
	if count != 0 {
		t.Errorf("Expected count 0 for unknown run, got %d", count)
	}
}

func TestPathPointStore_InvalidInput(t *testing.T) {
	store := NewPathPointStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.PathPoint{nil})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil point, got %v", err)
	}

	err = store.InsertBulk(ctx, []*domain.PathPoint{{RunID: ""}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty run_id, got %v", err)
	}
}
