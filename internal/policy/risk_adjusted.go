package policy

import (
	"errors"
	"fmt"
	"math"

	"bankroll-lab/internal/kelly"
)

// Risk-adjusted Kelly validation errors
var (
	ErrNegativeProbStd         = errors.New("probability standard deviation must not be negative")
	ErrEdgeThresholdOutOfRange = errors.New("edge threshold must be between 0 and 1")
	ErrMaxDrawdownOutOfRange   = errors.New("max drawdown must be between 0 and 1")
)

// Defaults applied by FromConfig when optional parameters are omitted.
const (
	DefaultKellyMultiplier = 1.0
	DefaultProbStd         = 0.02
	DefaultRiskMultiplier  = 0.5
	DefaultEdgeThreshold   = 0.01
	DefaultMaxDrawdown     = 0.3
)

// RiskAdjustedKellyPolicy recomputes a throttled Kelly fraction on every
// bet. It takes the smaller of the edge-adjusted and uncertainty-adjusted
// fractions, scales it down by the trial's live drawdown from peak, and
// applies the fractional-Kelly multiplier. Because the drawdown throttle
// reads the simulator's running (bankroll, peak) arguments, sizing shrinks
// linearly as a trial falls from its high-water mark and shuts off entirely
// at the configured maximum tolerated drawdown.
type RiskAdjustedKellyPolicy struct {
	ProbWin       float64 // estimated win probability
	DecimalOdds   float64 // decimal odds, > 1
	ProbStd       float64 // standard deviation of the probability estimate
	Multiplier    float64 // fractional Kelly multiplier, [0, 1]
	EdgeThreshold float64 // minimum edge required to place a bet
	MaxDrawdown   float64 // drawdown at which betting fully stops, (0, 1]
}

// NewRiskAdjustedKellyPolicy creates a new RiskAdjustedKellyPolicy.
func NewRiskAdjustedKellyPolicy(probWin, decimalOdds, probStd, multiplier, edgeThreshold, maxDrawdown float64) (*RiskAdjustedKellyPolicy, error) {
	if probWin < 0 || probWin > 1 {
		return nil, kelly.ErrProbOutOfRange
	}
	if decimalOdds <= 1 {
		return nil, kelly.ErrInvalidOdds
	}
	if probStd < 0 {
		return nil, ErrNegativeProbStd
	}
	if multiplier < 0 || multiplier > 1 {
		return nil, ErrMultiplierOutOfRange
	}
	if edgeThreshold < 0 || edgeThreshold > 1 {
		return nil, ErrEdgeThresholdOutOfRange
	}
	if maxDrawdown < 0 || maxDrawdown > 1 {
		return nil, ErrMaxDrawdownOutOfRange
	}

	return &RiskAdjustedKellyPolicy{
		ProbWin:       probWin,
		DecimalOdds:   decimalOdds,
		ProbStd:       probStd,
		Multiplier:    multiplier,
		EdgeThreshold: edgeThreshold,
		MaxDrawdown:   maxDrawdown,
	}, nil
}

// ID returns the policy identifier including parameters.
func (p *RiskAdjustedKellyPolicy) ID() string {
	return fmt.Sprintf("RISK_ADJUSTED_KELLY_p%.4f_odds%.4f_std%.4f_edge%.4f_dd%.2f_mult%.2f",
		p.ProbWin,
		p.DecimalOdds,
		p.ProbStd,
		p.EdgeThreshold,
		p.MaxDrawdown,
		p.Multiplier,
	)
}

// Stake proposes the risk-adjusted Kelly stake for the current state:
// min(edge-adjusted, uncertainty-adjusted) floored at 0, drawdown
// throttled from the live bankroll/peak, times multiplier, times bankroll.
func (p *RiskAdjustedKellyPolicy) Stake(bankroll, peak float64, _ int) float64 {
	kEdge := kelly.EdgeAdjustedFraction(p.ProbWin, p.DecimalOdds, p.EdgeThreshold)
	kUnc := kelly.UncertaintyAdjustedFraction(p.ProbWin, p.DecimalOdds, p.ProbStd)
	k := math.Max(0, math.Min(kEdge, kUnc))

	k = kelly.DrawdownAdjustedFraction(k, bankroll, peak, p.MaxDrawdown)
	k *= p.Multiplier

	return bankroll * k
}

// Ensure RiskAdjustedKellyPolicy implements Policy
var _ Policy = (*RiskAdjustedKellyPolicy)(nil)
