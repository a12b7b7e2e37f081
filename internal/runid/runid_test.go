package runid

import (
	"testing"

	"github.com/mr-tron/base58"

	"bankroll-lab/internal/domain"
)

func testParams() domain.BatchParams {
	return domain.BatchParams{
		ProbWin:         0.545,
		DecimalOdds:     1.909,
		InitialBankroll: 1000,
		NBets:           300,
		NSims:           5000,
		RuinThreshold:   0.4,
		PathsToStore:    100,
	}
}

func TestCompute_Deterministic(t *testing.T) {
	params := testParams()

	results := make([]string, 10)
	for i := range results {
		results[i] = Compute("FLAT_stake10.00", params, 42)
	}

	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Errorf("Determinism failed: results[%d]=%s != results[0]=%s", i, results[i], results[0])
		}
	}
}

func TestCompute_DecodesToTwelveBytes(t *testing.T) {
	id := Compute("FLAT_stake10.00", testParams(), 42)

	raw, err := base58.Decode(id)
	if err != nil {
		t.Fatalf("run_id is not valid base58: %v", err)
	}
	if len(raw) != 12 {
		t.Errorf("expected 12-byte prefix, got %d bytes", len(raw))
	}
}

func TestCompute_DifferentInputs(t *testing.T) {
	params := testParams()
	base := Compute("FLAT_stake10.00", params, 42)

	// Different policy should produce a different run_id
	if got := Compute("KELLY_p0.5450_odds1.9091_mult0.50", params, 42); got == base {
		t.Error("Different policy should produce different run_id")
	}

	// Different seed should produce a different run_id
	if got := Compute("FLAT_stake10.00", params, 43); got == base {
		t.Error("Different seed should produce different run_id")
	}

	// Different win probability should produce a different run_id
	changed := params
	changed.ProbWin = 0.546
	if got := Compute("FLAT_stake10.00", changed, 42); got == base {
		t.Error("Different prob_win should produce different run_id")
	}

	// Different trial count should produce a different run_id
	changed = params
	changed.NSims = 5001
	if got := Compute("FLAT_stake10.00", changed, 42); got == base {
		t.Error("Different n_sims should produce different run_id")
	}

	// Different paths_to_store should produce a different run_id
	changed = params
	changed.PathsToStore = 50
	if got := Compute("FLAT_stake10.00", changed, 42); got == base {
		t.Error("Different paths_to_store should produce different run_id")
	}
}

func TestCompute_SeedArgumentWinsOverParams(t *testing.T) {
	params := testParams()
	seed := int64(42)
	params.Seed = &seed

	// The resolved seed argument is canonical; the params pointer is ignored.
	withPointer := Compute("FLAT_stake10.00", params, 42)
	params.Seed = nil
	withoutPointer := Compute("FLAT_stake10.00", params, 42)

	if withPointer != withoutPointer {
		t.Errorf("params.Seed should not affect run_id: %s != %s", withPointer, withoutPointer)
	}
}
