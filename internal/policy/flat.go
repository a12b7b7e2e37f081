package policy

import (
	"errors"
	"fmt"
)

// ErrNegativeStake is returned when a flat policy is configured with a
// negative stake.
var ErrNegativeStake = errors.New("flat stake must not be negative")

// FlatPolicy wagers a constant dollar amount on every bet, independent of
// bankroll, peak, and bet index.
type FlatPolicy struct {
	Amount float64 // fixed stake in dollars
}

// NewFlatPolicy creates a new FlatPolicy.
func NewFlatPolicy(amount float64) (*FlatPolicy, error) {
	if amount < 0 {
		return nil, ErrNegativeStake
	}
	return &FlatPolicy{Amount: amount}, nil
}

// ID returns the policy identifier including parameters.
func (p *FlatPolicy) ID() string {
	return fmt.Sprintf("FLAT_stake%.2f", p.Amount)
}

// Stake always proposes the configured amount.
func (p *FlatPolicy) Stake(_, _ float64, _ int) float64 {
	return p.Amount
}

// Ensure FlatPolicy implements Policy
var _ Policy = (*FlatPolicy)(nil)
