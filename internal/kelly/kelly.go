// Package kelly implements Kelly criterion bet sizing: the closed-form
// growth-optimal bankroll fraction plus edge, uncertainty, and drawdown
// adjusted variants used for risk-managed sizing.
package kelly

import (
	"errors"
	"math"
)

// Package errors
var (
	ErrProbOutOfRange      = errors.New("win probability must be between 0 and 1")
	ErrInvalidOdds         = errors.New("decimal odds must be greater than 1")
	ErrNonPositiveBankroll = errors.New("bankroll must be greater than zero")
)

// Risk level labels returned by RiskLevel.
const (
	RiskNoBet    = "NO BET"
	RiskLow      = "LOW RISK"
	RiskModerate = "MODERATE RISK"
	RiskHigh     = "HIGH RISK"
	RiskVeryHigh = "VERY HIGH RISK"
)

// Betting regime labels returned by Regime.
const (
	RegimeNoBet        = "NO BET"
	RegimeConservative = "CONSERVATIVE"
	RegimeAggressive   = "AGGRESSIVE"
	RegimeSpeculative  = "SPECULATIVE"
)

// Fraction returns the Kelly criterion fraction of bankroll to wager:
// (b*p - (1-p)) / b with b = decimalOdds - 1, floored at 0.
// A negative-edge bet always sizes to zero.
func Fraction(probWin, decimalOdds float64) (float64, error) {
	if probWin < 0 || probWin > 1 {
		return 0, ErrProbOutOfRange
	}
	if decimalOdds <= 1 {
		return 0, ErrInvalidOdds
	}

	b := decimalOdds - 1
	frac := (b*probWin - (1 - probWin)) / b
	return math.Max(0, frac), nil
}

// BetSize returns the recommended dollar stake for the given bankroll:
// bankroll * Fraction * multiplier, rounded to cents.
func BetSize(probWin, decimalOdds, bankroll, multiplier float64) (float64, error) {
	if bankroll <= 0 {
		return 0, ErrNonPositiveBankroll
	}

	frac, err := Fraction(probWin, decimalOdds)
	if err != nil {
		return 0, err
	}
	return math.Round(bankroll*frac*multiplier*100) / 100, nil
}

// EdgeAdjustedFraction returns a Kelly fraction suppressed for tiny edges.
// The raw edge is b*p - (1-p); at or below edgeThreshold the fraction is 0,
// above it the raw Kelly fraction is scaled by min(edge/0.05, 1) so sizing
// ramps in smoothly rather than jumping to full Kelly on a marginal edge.
func EdgeAdjustedFraction(probWin, decimalOdds, edgeThreshold float64) float64 {
	b := decimalOdds - 1
	edge := probWin*b - (1 - probWin)

	if edge <= edgeThreshold {
		return 0
	}

	rawKelly := edge / b
	scale := math.Min(edge/0.05, 1)
	return rawKelly * scale
}

// UncertaintyAdjustedFraction returns a Kelly fraction shrunk by a variance
// penalty probStd*b subtracted from the raw edge (floored at 0), so a noisy
// probability estimate sizes smaller than a confident one.
func UncertaintyAdjustedFraction(probWin, decimalOdds, probStd float64) float64 {
	b := decimalOdds - 1
	edge := probWin*b - (1 - probWin)
	penalty := probStd * b

	adjusted := math.Max(edge-penalty, 0)
	return adjusted / b
}

// DrawdownAdjustedFraction scales a Kelly fraction by how far the bankroll
// sits below its peak: at or beyond maxDrawdown betting stops entirely,
// otherwise the fraction scales by 1 - drawdown/maxDrawdown, restoring full
// size as the bankroll returns to its high-water mark. A non-positive peak
// passes the fraction through unchanged.
func DrawdownAdjustedFraction(fraction, bankroll, peak, maxDrawdown float64) float64 {
	if peak <= 0 {
		return fraction
	}

	drawdown := (peak - bankroll) / peak
	if drawdown >= maxDrawdown {
		return 0
	}

	return fraction * (1 - drawdown/maxDrawdown)
}

// RiskLevel returns a qualitative risk label for a Kelly fraction.
func RiskLevel(fraction float64) string {
	switch {
	case fraction == 0:
		return RiskNoBet
	case fraction < 0.1:
		return RiskLow
	case fraction < 0.25:
		return RiskModerate
	case fraction < 0.5:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// Regime returns the betting regime label for a Kelly fraction.
func Regime(fraction float64) string {
	switch {
	case fraction == 0:
		return RegimeNoBet
	case fraction < 0.2:
		return RegimeConservative
	case fraction < 0.5:
		return RegimeAggressive
	default:
		return RegimeSpeculative
	}
}
