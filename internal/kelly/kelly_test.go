package kelly

import (
	"errors"
	"math"
	"testing"
)

func TestFraction_PositiveEdge(t *testing.T) {
	// decimal 1.909091 (b = 0.909091), p = 0.545:
	// f = (0.909091*0.545 - 0.455) / 0.909091 = 0.0445
	b := 100.0 / 110.0
	got, err := Fraction(0.545, 1+b)
	if err != nil {
		t.Fatalf("Fraction: %v", err)
	}
	want := (b*0.545 - 0.455) / b
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %.6f, got %.6f", want, got)
	}
}

func TestFraction_NegativeEdgeFloorsAtZero(t *testing.T) {
	// Even money at 40% has negative edge; Kelly never recommends a bet
	got, err := Fraction(0.40, 2.0)
	if err != nil {
		t.Fatalf("Fraction: %v", err)
	}
	if got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestFraction_FullKellyEvenMoney(t *testing.T) {
	// Even money at 60%: f = (1*0.6 - 0.4) / 1 = 0.2
	got, err := Fraction(0.60, 2.0)
	if err != nil {
		t.Fatalf("Fraction: %v", err)
	}
	if math.Abs(got-0.2) > 1e-12 {
		t.Errorf("expected 0.2, got %f", got)
	}
}

func TestFraction_InvalidInputs(t *testing.T) {
	if _, err := Fraction(1.5, 2.0); !errors.Is(err, ErrProbOutOfRange) {
		t.Errorf("expected ErrProbOutOfRange, got %v", err)
	}
	if _, err := Fraction(0.5, 1.0); !errors.Is(err, ErrInvalidOdds) {
		t.Errorf("expected ErrInvalidOdds, got %v", err)
	}
	if _, err := Fraction(0.5, 0.5); !errors.Is(err, ErrInvalidOdds) {
		t.Errorf("expected ErrInvalidOdds, got %v", err)
	}
}

func TestBetSize_RoundsToCents(t *testing.T) {
	// Even money at 60% with $1000 and half Kelly: 1000 * 0.2 * 0.5 = 100.00
	got, err := BetSize(0.60, 2.0, 1000, 0.5)
	if err != nil {
		t.Fatalf("BetSize: %v", err)
	}
	if got != 100.00 {
		t.Errorf("expected 100.00, got %f", got)
	}

	// Fraction 0.0445... on $1000 full Kelly rounds to a cent boundary
	b := 100.0 / 110.0
	frac := (b*0.545 - 0.455) / b
	got, err = BetSize(0.545, 1+b, 1000, 1.0)
	if err != nil {
		t.Fatalf("BetSize: %v", err)
	}
	want := math.Round(1000*frac*100) / 100
	if got != want {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestBetSize_NonPositiveBankroll(t *testing.T) {
	for _, bankroll := range []float64{0, -100} {
		_, err := BetSize(0.60, 2.0, bankroll, 1.0)
		if !errors.Is(err, ErrNonPositiveBankroll) {
			t.Errorf("BetSize(bankroll=%f): expected ErrNonPositiveBankroll, got %v", bankroll, err)
		}
	}
}

func TestEdgeAdjustedFraction_BelowThreshold(t *testing.T) {
	// Even money at 50.4%: edge = 0.008, at or below threshold 0.01 → no bet
	got := EdgeAdjustedFraction(0.504, 2.0, 0.01)
	if got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestEdgeAdjustedFraction_SoftRamp(t *testing.T) {
	// Even money at 52%: edge = 0.04, above threshold but under the 0.05 ramp.
	// raw = 0.04/1 = 0.04, scale = 0.04/0.05 = 0.8 → 0.032
	got := EdgeAdjustedFraction(0.52, 2.0, 0.01)
	if math.Abs(got-0.032) > 1e-12 {
		t.Errorf("expected 0.032, got %f", got)
	}
}

func TestEdgeAdjustedFraction_FullScaleAboveRamp(t *testing.T) {
	// Even money at 60%: edge = 0.2 >= 0.05, scale caps at 1 → raw Kelly 0.2
	got := EdgeAdjustedFraction(0.60, 2.0, 0.01)
	if math.Abs(got-0.2) > 1e-12 {
		t.Errorf("expected 0.2, got %f", got)
	}
}

func TestUncertaintyAdjustedFraction_ShrinksWithStd(t *testing.T) {
	// Even money at 60% with std 0.05: edge = 0.2, penalty = 0.05 → 0.15
	got := UncertaintyAdjustedFraction(0.60, 2.0, 0.05)
	if math.Abs(got-0.15) > 1e-12 {
		t.Errorf("expected 0.15, got %f", got)
	}

	// Zero std leaves the raw Kelly fraction untouched
	got = UncertaintyAdjustedFraction(0.60, 2.0, 0)
	if math.Abs(got-0.2) > 1e-12 {
		t.Errorf("expected 0.2, got %f", got)
	}
}

func TestUncertaintyAdjustedFraction_PenaltyFloorsAtZero(t *testing.T) {
	// Penalty exceeding the edge floors the adjusted edge at 0
	got := UncertaintyAdjustedFraction(0.52, 2.0, 0.10)
	if got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestDrawdownAdjustedFraction_NoDrawdown(t *testing.T) {
	// Bankroll at peak: factor = 1, fraction unchanged
	got := DrawdownAdjustedFraction(0.1, 1000, 1000, 0.3)
	if math.Abs(got-0.1) > 1e-12 {
		t.Errorf("expected 0.1, got %f", got)
	}
}

func TestDrawdownAdjustedFraction_LinearThrottle(t *testing.T) {
	// 15% drawdown against a 30% tolerance halves the fraction
	got := DrawdownAdjustedFraction(0.1, 850, 1000, 0.3)
	if math.Abs(got-0.05) > 1e-9 {
		t.Errorf("expected 0.05, got %f", got)
	}
}

func TestDrawdownAdjustedFraction_AtMaxDrawdown(t *testing.T) {
	// 30% drawdown at a 30% tolerance disables betting entirely
	got := DrawdownAdjustedFraction(0.1, 700, 1000, 0.3)
	if got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestDrawdownAdjustedFraction_ZeroPeakPassthrough(t *testing.T) {
	got := DrawdownAdjustedFraction(0.1, 0, 0, 0.3)
	if got != 0.1 {
		t.Errorf("expected passthrough 0.1, got %f", got)
	}
}

func TestRiskLevel_Bands(t *testing.T) {
	cases := []struct {
		fraction float64
		want     string
	}{
		{0, RiskNoBet},
		{0.05, RiskLow},
		{0.1, RiskModerate},
		{0.2, RiskModerate},
		{0.25, RiskHigh},
		{0.49, RiskHigh},
		{0.5, RiskVeryHigh},
		{1.0, RiskVeryHigh},
	}

	for _, tc := range cases {
		if got := RiskLevel(tc.fraction); got != tc.want {
			t.Errorf("RiskLevel(%f): expected %q, got %q", tc.fraction, tc.want, got)
		}
	}
}

func TestRegime_Bands(t *testing.T) {
	cases := []struct {
		fraction float64
		want     string
	}{
		{0, RegimeNoBet},
		{0.1, RegimeConservative},
		{0.2, RegimeAggressive},
		{0.49, RegimeAggressive},
		{0.5, RegimeSpeculative},
	}

	for _, tc := range cases {
		if got := Regime(tc.fraction); got != tc.want {
			t.Errorf("Regime(%f): expected %q, got %q", tc.fraction, tc.want, got)
		}
	}
}
