package policy

import (
	"errors"
	"fmt"
)

// ErrFractionOutOfRange is returned when a fixed-fraction policy is
// configured with a fraction outside [0, 1].
var ErrFractionOutOfRange = errors.New("fraction must be between 0 and 1")

// FixedFractionPolicy wagers a constant fraction of the current bankroll.
type FixedFractionPolicy struct {
	Fraction float64 // fraction of bankroll, [0, 1]
}

// NewFixedFractionPolicy creates a new FixedFractionPolicy.
func NewFixedFractionPolicy(fraction float64) (*FixedFractionPolicy, error) {
	if fraction < 0 || fraction > 1 {
		return nil, ErrFractionOutOfRange
	}
	return &FixedFractionPolicy{Fraction: fraction}, nil
}

// ID returns the policy identifier including parameters.
func (p *FixedFractionPolicy) ID() string {
	return fmt.Sprintf("FIXED_FRACTION_frac%.4f", p.Fraction)
}

// Stake proposes fraction * bankroll.
func (p *FixedFractionPolicy) Stake(bankroll, _ float64, _ int) float64 {
	return bankroll * p.Fraction
}

// Ensure FixedFractionPolicy implements Policy
var _ Policy = (*FixedFractionPolicy)(nil)
