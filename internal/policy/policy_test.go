package policy

import (
	"errors"
	"math"
	"testing"

	"bankroll-lab/internal/kelly"
)

func TestFlatPolicy_ConstantStake(t *testing.T) {
	p, err := NewFlatPolicy(10)
	if err != nil {
		t.Fatalf("NewFlatPolicy failed: %v", err)
	}

	// Stake ignores bankroll, peak, and bet index
	states := []struct {
		bankroll, peak float64
		betIndex       int
	}{
		{1000, 1000, 0},
		{5, 1000, 150},
		{0, 0, 299},
	}
	for _, s := range states {
		if got := p.Stake(s.bankroll, s.peak, s.betIndex); got != 10 {
			t.Errorf("Stake(%f, %f, %d): expected 10, got %f", s.bankroll, s.peak, s.betIndex, got)
		}
	}

	if p.ID() != "FLAT_stake10.00" {
		t.Errorf("unexpected ID: %s", p.ID())
	}
}

func TestFlatPolicy_NegativeStake(t *testing.T) {
	_, err := NewFlatPolicy(-1)
	if !errors.Is(err, ErrNegativeStake) {
		t.Errorf("expected ErrNegativeStake, got %v", err)
	}
}

func TestFlatPolicy_ZeroStakeAllowed(t *testing.T) {
	p, err := NewFlatPolicy(0)
	if err != nil {
		t.Fatalf("NewFlatPolicy(0) failed: %v", err)
	}
	if got := p.Stake(1000, 1000, 0); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestFixedFractionPolicy_ScalesWithBankroll(t *testing.T) {
	p, err := NewFixedFractionPolicy(0.05)
	if err != nil {
		t.Fatalf("NewFixedFractionPolicy failed: %v", err)
	}

	if got := p.Stake(1000, 1000, 0); math.Abs(got-50) > 1e-12 {
		t.Errorf("expected 50, got %f", got)
	}
	if got := p.Stake(200, 1000, 10); math.Abs(got-10) > 1e-12 {
		t.Errorf("expected 10, got %f", got)
	}
	if got := p.Stake(0, 1000, 20); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestFixedFractionPolicy_FractionOutOfRange(t *testing.T) {
	for _, fraction := range []float64{-0.1, 1.1} {
		_, err := NewFixedFractionPolicy(fraction)
		if !errors.Is(err, ErrFractionOutOfRange) {
			t.Errorf("NewFixedFractionPolicy(%f): expected ErrFractionOutOfRange, got %v", fraction, err)
		}
	}
}

func TestKellyPolicy_PrecomputedFraction(t *testing.T) {
	// Even money at 60%: full Kelly fraction 0.2, halved to 0.1
	p, err := NewKellyPolicy(0.60, 2.0, 0.5)
	if err != nil {
		t.Fatalf("NewKellyPolicy failed: %v", err)
	}

	if math.Abs(p.Fraction()-0.1) > 1e-12 {
		t.Errorf("expected fraction 0.1, got %f", p.Fraction())
	}
	if got := p.Stake(500, 500, 0); math.Abs(got-50) > 1e-12 {
		t.Errorf("expected 50, got %f", got)
	}
}

func TestKellyPolicy_IgnoresPeakAndIndex(t *testing.T) {
	// The fraction never adapts mid-run: a deep drawdown changes the stake
	// only through the bankroll it multiplies
	p, err := NewKellyPolicy(0.60, 2.0, 1.0)
	if err != nil {
		t.Fatalf("NewKellyPolicy failed: %v", err)
	}

	atPeak := p.Stake(500, 500, 0)
	inDrawdown := p.Stake(500, 2000, 250)
	if atPeak != inDrawdown {
		t.Errorf("expected identical stakes, got %f and %f", atPeak, inDrawdown)
	}
}

func TestKellyPolicy_NegativeEdgeStakesZero(t *testing.T) {
	// Even money at 40%: Kelly floors the fraction at 0
	p, err := NewKellyPolicy(0.40, 2.0, 1.0)
	if err != nil {
		t.Fatalf("NewKellyPolicy failed: %v", err)
	}
	if got := p.Stake(1000, 1000, 0); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestKellyPolicy_InvalidInputs(t *testing.T) {
	if _, err := NewKellyPolicy(0.60, 2.0, 1.5); !errors.Is(err, ErrMultiplierOutOfRange) {
		t.Errorf("expected ErrMultiplierOutOfRange, got %v", err)
	}
	if _, err := NewKellyPolicy(1.5, 2.0, 1.0); !errors.Is(err, kelly.ErrProbOutOfRange) {
		t.Errorf("expected kelly.ErrProbOutOfRange, got %v", err)
	}
	if _, err := NewKellyPolicy(0.60, 1.0, 1.0); !errors.Is(err, kelly.ErrInvalidOdds) {
		t.Errorf("expected kelly.ErrInvalidOdds, got %v", err)
	}
}

func TestRiskAdjustedKellyPolicy_AtPeak(t *testing.T) {
	// p=0.545, decimal 2.0: edge = 0.545 - 0.455 = 0.09
	// edge-adjusted: 0.09 over threshold, ramp capped at 1 → 0.09
	// uncertainty-adjusted with std 0.02: (0.09 - 0.02) / 1 = 0.07
	// min = 0.07, no drawdown, ×0.5 multiplier → 0.035 → $35 on $1000
	p, err := NewRiskAdjustedKellyPolicy(0.545, 2.0, 0.02, 0.5, 0.01, 0.3)
	if err != nil {
		t.Fatalf("NewRiskAdjustedKellyPolicy failed: %v", err)
	}

	got := p.Stake(1000, 1000, 0)
	if math.Abs(got-35) > 1e-9 {
		t.Errorf("expected 35, got %f", got)
	}
}

func TestRiskAdjustedKellyPolicy_DrawdownThrottle(t *testing.T) {
	p, err := NewRiskAdjustedKellyPolicy(0.545, 2.0, 0.02, 0.5, 0.01, 0.3)
	if err != nil {
		t.Fatalf("NewRiskAdjustedKellyPolicy failed: %v", err)
	}

	// 15% drawdown against a 30% tolerance halves the base fraction:
	// 0.07 × 0.5 throttle × 0.5 multiplier × 850 = 14.875
	got := p.Stake(850, 1000, 5)
	if math.Abs(got-14.875) > 1e-9 {
		t.Errorf("expected 14.875, got %f", got)
	}

	// At the tolerated drawdown betting stops entirely
	if got := p.Stake(700, 1000, 5); got != 0 {
		t.Errorf("expected 0 at max drawdown, got %f", got)
	}

	// Beyond it too
	if got := p.Stake(500, 1000, 5); got != 0 {
		t.Errorf("expected 0 beyond max drawdown, got %f", got)
	}
}

func TestRiskAdjustedKellyPolicy_TinyEdgeNoBet(t *testing.T) {
	// Even money at 50.4%: edge 0.008 sits at or below the 0.01 threshold
	p, err := NewRiskAdjustedKellyPolicy(0.504, 2.0, 0.0, 0.5, 0.01, 0.3)
	if err != nil {
		t.Fatalf("NewRiskAdjustedKellyPolicy failed: %v", err)
	}

	if got := p.Stake(1000, 1000, 0); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestRiskAdjustedKellyPolicy_Validation(t *testing.T) {
	tests := []struct {
		name          string
		probWin       float64
		odds          float64
		probStd       float64
		multiplier    float64
		edgeThreshold float64
		maxDD         float64
		expectedErr   error
	}{
		{"probability above 1", 1.5, 2.0, 0.02, 0.5, 0.01, 0.3, kelly.ErrProbOutOfRange},
		{"odds at 1", 0.545, 1.0, 0.02, 0.5, 0.01, 0.3, kelly.ErrInvalidOdds},
		{"negative prob std", 0.545, 2.0, -0.01, 0.5, 0.01, 0.3, ErrNegativeProbStd},
		{"multiplier above 1", 0.545, 2.0, 0.02, 1.5, 0.01, 0.3, ErrMultiplierOutOfRange},
		{"edge threshold above 1", 0.545, 2.0, 0.02, 0.5, 1.5, 0.3, ErrEdgeThresholdOutOfRange},
		{"max drawdown above 1", 0.545, 2.0, 0.02, 0.5, 0.01, 1.5, ErrMaxDrawdownOutOfRange},
		{"negative max drawdown", 0.545, 2.0, 0.02, 0.5, 0.01, -0.1, ErrMaxDrawdownOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRiskAdjustedKellyPolicy(tt.probWin, tt.odds, tt.probStd, tt.multiplier, tt.edgeThreshold, tt.maxDD)
			if !errors.Is(err, tt.expectedErr) {
				t.Errorf("expected %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func TestMinBetPolicy_RaisesToFloor(t *testing.T) {
	base, err := NewFixedFractionPolicy(0.01)
	if err != nil {
		t.Fatalf("NewFixedFractionPolicy failed: %v", err)
	}
	p, err := NewMinBetPolicy(base, 25)
	if err != nil {
		t.Fatalf("NewMinBetPolicy failed: %v", err)
	}

	// 1% of 1000 is 10, below the floor → 25
	if got := p.Stake(1000, 1000, 0); got != 25 {
		t.Errorf("expected 25, got %f", got)
	}

	// 1% of 5000 is 50, already above the floor → base passes through
	if got := p.Stake(5000, 5000, 0); math.Abs(got-50) > 1e-12 {
		t.Errorf("expected 50, got %f", got)
	}
}

func TestMaxBetPolicy_CapsAtCeiling(t *testing.T) {
	base, err := NewFixedFractionPolicy(0.10)
	if err != nil {
		t.Fatalf("NewFixedFractionPolicy failed: %v", err)
	}
	p, err := NewMaxBetPolicy(base, 50)
	if err != nil {
		t.Fatalf("NewMaxBetPolicy failed: %v", err)
	}

	// 10% of 1000 is 100, above the cap → 50
	if got := p.Stake(1000, 1000, 0); got != 50 {
		t.Errorf("expected 50, got %f", got)
	}

	// 10% of 200 is 20, under the cap → base passes through
	if got := p.Stake(200, 1000, 0); math.Abs(got-20) > 1e-12 {
		t.Errorf("expected 20, got %f", got)
	}
}

func TestBoundPolicies_IDComposition(t *testing.T) {
	base, err := NewFlatPolicy(10)
	if err != nil {
		t.Fatalf("NewFlatPolicy failed: %v", err)
	}

	minWrapped, err := NewMinBetPolicy(base, 5)
	if err != nil {
		t.Fatalf("NewMinBetPolicy failed: %v", err)
	}
	if minWrapped.ID() != "FLAT_stake10.00_min5.00" {
		t.Errorf("unexpected ID: %s", minWrapped.ID())
	}

	maxWrapped, err := NewMaxBetPolicy(minWrapped, 100)
	if err != nil {
		t.Fatalf("NewMaxBetPolicy failed: %v", err)
	}
	if maxWrapped.ID() != "FLAT_stake10.00_min5.00_max100.00" {
		t.Errorf("unexpected ID: %s", maxWrapped.ID())
	}
}

func TestBoundPolicies_Validation(t *testing.T) {
	base, err := NewFlatPolicy(10)
	if err != nil {
		t.Fatalf("NewFlatPolicy failed: %v", err)
	}

	if _, err := NewMinBetPolicy(base, -1); !errors.Is(err, ErrNegativeBound) {
		t.Errorf("expected ErrNegativeBound, got %v", err)
	}
	if _, err := NewMaxBetPolicy(base, -1); !errors.Is(err, ErrNegativeBound) {
		t.Errorf("expected ErrNegativeBound, got %v", err)
	}
	if _, err := NewMinBetPolicy(nil, 1); !errors.Is(err, ErrNilBasePolicy) {
		t.Errorf("expected ErrNilBasePolicy, got %v", err)
	}
	if _, err := NewMaxBetPolicy(nil, 1); !errors.Is(err, ErrNilBasePolicy) {
		t.Errorf("expected ErrNilBasePolicy, got %v", err)
	}
}
