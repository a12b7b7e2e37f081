package simulation

import (
	"math"
	"math/rand"
	"testing"

	"bankroll-lab/internal/policy"
)

// negativeStakePolicy proposes a negative stake on every bet.
type negativeStakePolicy struct{}

func (negativeStakePolicy) Stake(_, _ float64, _ int) float64 { return -50 }
func (negativeStakePolicy) ID() string                        { return "NEGATIVE_STAKE" }

func TestSimulatePath_AlwaysWinning(t *testing.T) {
	// probWin 1 never loses: flat $10 at decimal 2.0 adds $10 per bet
	pol, err := policy.NewFlatPolicy(10)
	if err != nil {
		t.Fatalf("NewFlatPolicy failed: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	result := SimulatePath(1.0, 2.0, 100, 5, pol, 0, rng)

	want := []float64{100, 110, 120, 130, 140, 150}
	if len(result.Path) != len(want) {
		t.Fatalf("expected path length %d, got %d", len(want), len(result.Path))
	}
	for i := range want {
		if math.Abs(result.Path[i]-want[i]) > 1e-9 {
			t.Errorf("path[%d]: expected %f, got %f", i, want[i], result.Path[i])
		}
	}
	if result.FinalBankroll != 150 {
		t.Errorf("expected final 150, got %f", result.FinalBankroll)
	}
	if result.MaxDrawdown != 0 {
		t.Errorf("expected drawdown 0, got %f", result.MaxDrawdown)
	}
	if result.Ruined {
		t.Error("expected not ruined")
	}
}

func TestSimulatePath_AlwaysLosingRuinsAtZero(t *testing.T) {
	// probWin 0 loses $10 per bet: $100 is gone after exactly 10 bets
	pol, err := policy.NewFlatPolicy(10)
	if err != nil {
		t.Fatalf("NewFlatPolicy failed: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	result := SimulatePath(0.0, 2.0, 100, 20, pol, 0, rng)

	// 10 losing bets plus the starting point
	if len(result.Path) != 11 {
		t.Fatalf("expected path length 11, got %d", len(result.Path))
	}
	if result.FinalBankroll != 0 {
		t.Errorf("expected final 0, got %f", result.FinalBankroll)
	}
	if !result.Ruined {
		t.Error("expected ruined")
	}
	// Full retracement from the starting peak
	if result.MaxDrawdown != 1 {
		t.Errorf("expected drawdown 1, got %f", result.MaxDrawdown)
	}
}

func TestSimulatePath_RuinFloorStopsEarly(t *testing.T) {
	// Losing $10 per bet from $100 hits the $40 floor on bet 6
	pol, err := policy.NewFlatPolicy(10)
	if err != nil {
		t.Fatalf("NewFlatPolicy failed: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	result := SimulatePath(0.0, 2.0, 100, 20, pol, 40, rng)

	if len(result.Path) != 7 {
		t.Fatalf("expected path length 7, got %d", len(result.Path))
	}
	// The floor does not clamp: the bankroll keeps its actual value
	if result.FinalBankroll != 40 {
		t.Errorf("expected final 40, got %f", result.FinalBankroll)
	}
	if !result.Ruined {
		t.Error("expected ruined")
	}
	if math.Abs(result.MaxDrawdown-0.6) > 1e-12 {
		t.Errorf("expected drawdown 0.6, got %f", result.MaxDrawdown)
	}
}

func TestSimulatePath_ZeroBankrollEntryCheck(t *testing.T) {
	// With a negative ruin level the floor check never fires; the zeroed
	// bankroll is caught at the next bet's entry instead: clamped to 0,
	// recorded, trial over. Absolute zero and the configurable floor are
	// two distinct failure definitions.
	pol, err := policy.NewFlatPolicy(100)
	if err != nil {
		t.Fatalf("NewFlatPolicy failed: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	result := SimulatePath(0.0, 2.0, 100, 5, pol, -1, rng)

	want := []float64{100, 0, 0}
	if len(result.Path) != len(want) {
		t.Fatalf("expected path length %d, got %d", len(want), len(result.Path))
	}
	for i := range want {
		if result.Path[i] != want[i] {
			t.Errorf("path[%d]: expected %f, got %f", i, want[i], result.Path[i])
		}
	}
	if result.FinalBankroll != 0 {
		t.Errorf("expected final 0, got %f", result.FinalBankroll)
	}
	if !result.Ruined {
		t.Error("expected ruined")
	}
}

func TestSimulatePath_StakeClampedToBankroll(t *testing.T) {
	// A $1000 flat stake on a $100 bankroll goes all-in: with probWin 1
	// and decimal 3.0 each bet triples the bankroll
	pol, err := policy.NewFlatPolicy(1000)
	if err != nil {
		t.Fatalf("NewFlatPolicy failed: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	result := SimulatePath(1.0, 3.0, 100, 3, pol, 0, rng)

	want := []float64{100, 300, 900, 2700}
	if len(result.Path) != len(want) {
		t.Fatalf("expected path length %d, got %d", len(want), len(result.Path))
	}
	for i := range want {
		if math.Abs(result.Path[i]-want[i]) > 1e-9 {
			t.Errorf("path[%d]: expected %f, got %f", i, want[i], result.Path[i])
		}
	}
}

func TestSimulatePath_NegativeProposalSitsOut(t *testing.T) {
	// A negative proposal clamps to 0: every bet is sat out, the bankroll
	// never moves, and each step still records a path point
	rng := rand.New(rand.NewSource(1))
	result := SimulatePath(0.5, 2.0, 100, 10, negativeStakePolicy{}, 0, rng)

	if len(result.Path) != 11 {
		t.Fatalf("expected path length 11, got %d", len(result.Path))
	}
	for i, v := range result.Path {
		if v != 100 {
			t.Errorf("path[%d]: expected 100, got %f", i, v)
		}
	}
	if result.FinalBankroll != 100 {
		t.Errorf("expected final 100, got %f", result.FinalBankroll)
	}
	if result.Ruined {
		t.Error("expected not ruined")
	}
	if result.MaxDrawdown != 0 {
		t.Errorf("expected drawdown 0, got %f", result.MaxDrawdown)
	}
}

func TestSimulatePath_ZeroStakeIsNotTermination(t *testing.T) {
	pol, err := policy.NewFlatPolicy(0)
	if err != nil {
		t.Fatalf("NewFlatPolicy failed: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	result := SimulatePath(0.5, 2.0, 250, 300, pol, 25, rng)

	// All 300 no-bet steps are valid path points
	if len(result.Path) != 301 {
		t.Fatalf("expected path length 301, got %d", len(result.Path))
	}
	if result.FinalBankroll != 250 {
		t.Errorf("expected final 250, got %f", result.FinalBankroll)
	}
	if result.Ruined {
		t.Error("expected not ruined")
	}
}

func TestSimulatePath_DrawdownMatchesPathReconstruction(t *testing.T) {
	// The reported max drawdown must equal the worst retracement from the
	// running peak reconstructed by scanning the path
	pol, err := policy.NewFixedFractionPolicy(0.3)
	if err != nil {
		t.Fatalf("NewFixedFractionPolicy failed: %v", err)
	}

	for seed := int64(1); seed <= 5; seed++ {
		rng := rand.New(rand.NewSource(seed))
		result := SimulatePath(0.5, 2.0, 1000, 100, pol, 100, rng)

		if result.Path[0] != 1000 {
			t.Fatalf("seed %d: path[0] should be the initial bankroll, got %f", seed, result.Path[0])
		}

		runningPeak := result.Path[0]
		reconstructed := 0.0
		for i, v := range result.Path {
			if v < 0 {
				t.Errorf("seed %d: path[%d] is negative: %f", seed, i, v)
			}
			runningPeak = math.Max(runningPeak, v)
			if runningPeak > 0 {
				if dd := (runningPeak - v) / runningPeak; dd > reconstructed {
					reconstructed = dd
				}
			}
		}

		if math.Abs(result.MaxDrawdown-reconstructed) > 1e-12 {
			t.Errorf("seed %d: reported drawdown %.15f, reconstructed %.15f", seed, result.MaxDrawdown, reconstructed)
		}
		if result.MaxDrawdown < 0 || result.MaxDrawdown > 1 {
			t.Errorf("seed %d: drawdown out of [0,1]: %f", seed, result.MaxDrawdown)
		}
	}
}
