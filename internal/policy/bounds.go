package policy

import (
	"errors"
	"fmt"
	"math"
)

// Wrapper construction errors
var (
	ErrNegativeBound = errors.New("stake bound must not be negative")
	ErrNilBasePolicy = errors.New("base policy must not be nil")
)

// MinBetPolicy raises a base policy's proposal to a floor. Sportsbooks
// commonly enforce minimum stakes; the floor increases variance and can
// meaningfully raise ruin probability for small bankrolls.
type MinBetPolicy struct {
	Base   Policy
	MinBet float64 // floor in dollars
}

// NewMinBetPolicy wraps base with a minimum stake.
func NewMinBetPolicy(base Policy, minBet float64) (*MinBetPolicy, error) {
	if base == nil {
		return nil, ErrNilBasePolicy
	}
	if minBet < 0 {
		return nil, ErrNegativeBound
	}
	return &MinBetPolicy{Base: base, MinBet: minBet}, nil
}

// ID returns the wrapped policy identifier with the floor appended.
func (p *MinBetPolicy) ID() string {
	return fmt.Sprintf("%s_min%.2f", p.Base.ID(), p.MinBet)
}

// Stake proposes max(base stake, floor).
func (p *MinBetPolicy) Stake(bankroll, peak float64, betIndex int) float64 {
	return math.Max(p.Base.Stake(bankroll, peak, betIndex), p.MinBet)
}

// MaxBetPolicy caps a base policy's proposal at a ceiling.
type MaxBetPolicy struct {
	Base   Policy
	MaxBet float64 // ceiling in dollars
}

// NewMaxBetPolicy wraps base with a maximum stake.
func NewMaxBetPolicy(base Policy, maxBet float64) (*MaxBetPolicy, error) {
	if base == nil {
		return nil, ErrNilBasePolicy
	}
	if maxBet < 0 {
		return nil, ErrNegativeBound
	}
	return &MaxBetPolicy{Base: base, MaxBet: maxBet}, nil
}

// ID returns the wrapped policy identifier with the ceiling appended.
func (p *MaxBetPolicy) ID() string {
	return fmt.Sprintf("%s_max%.2f", p.Base.ID(), p.MaxBet)
}

// Stake proposes min(base stake, ceiling).
func (p *MaxBetPolicy) Stake(bankroll, peak float64, betIndex int) float64 {
	return math.Min(p.Base.Stake(bankroll, peak, betIndex), p.MaxBet)
}

// Ensure wrappers implement Policy
var (
	_ Policy = (*MinBetPolicy)(nil)
	_ Policy = (*MaxBetPolicy)(nil)
)
