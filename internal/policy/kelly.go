package policy

import (
	"errors"
	"fmt"

	"bankroll-lab/internal/kelly"
)

// ErrMultiplierOutOfRange is returned when a Kelly multiplier falls
// outside [0, 1].
var ErrMultiplierOutOfRange = errors.New("kelly multiplier must be between 0 and 1")

// KellyPolicy wagers a Kelly-derived fraction of the current bankroll.
// The fraction is computed once at construction from the configured edge
// and never adapts during a run; only the bankroll it multiplies changes.
type KellyPolicy struct {
	ProbWin     float64 // estimated win probability
	DecimalOdds float64 // decimal odds, > 1
	Multiplier  float64 // fractional Kelly multiplier, [0, 1]

	fraction float64 // kelly.Fraction * Multiplier, precomputed
}

// NewKellyPolicy creates a new KellyPolicy.
func NewKellyPolicy(probWin, decimalOdds, multiplier float64) (*KellyPolicy, error) {
	if multiplier < 0 || multiplier > 1 {
		return nil, ErrMultiplierOutOfRange
	}

	frac, err := kelly.Fraction(probWin, decimalOdds)
	if err != nil {
		return nil, err
	}

	return &KellyPolicy{
		ProbWin:     probWin,
		DecimalOdds: decimalOdds,
		Multiplier:  multiplier,
		fraction:    frac * multiplier,
	}, nil
}

// ID returns the policy identifier including parameters.
func (p *KellyPolicy) ID() string {
	return fmt.Sprintf("KELLY_p%.4f_odds%.4f_mult%.2f", p.ProbWin, p.DecimalOdds, p.Multiplier)
}

// Stake proposes the precomputed fraction times the current bankroll.
func (p *KellyPolicy) Stake(bankroll, _ float64, _ int) float64 {
	return bankroll * p.fraction
}

// Fraction returns the precomputed bankroll fraction the policy wagers.
func (p *KellyPolicy) Fraction() float64 {
	return p.fraction
}

// Ensure KellyPolicy implements Policy
var _ Policy = (*KellyPolicy)(nil)
