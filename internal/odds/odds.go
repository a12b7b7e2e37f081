// Package odds converts between betting odds formats.
//
// All converters take American odds (positive for underdogs, negative for
// favorites). The simulation core consumes decimal odds only; this package is
// the boundary where raw odds formats are parsed.
package odds

import "errors"

// ErrZeroOdds is returned when American odds are zero, which has no meaning
// in any odds format.
var ErrZeroOdds = errors.New("american odds cannot be zero")

// AmericanToDecimal converts American odds to decimal odds.
// Decimal odds include the returned stake: -110 -> 1.9090..., +150 -> 2.5.
func AmericanToDecimal(american int) (float64, error) {
	if american == 0 {
		return 0, ErrZeroOdds
	}
	if american > 0 {
		return 1 + float64(american)/100, nil
	}
	return 1 + 100/absFloat(american), nil
}

// ImpliedProbability computes the probability implied by American odds.
// This is the win rate at which the bet breaks even exactly.
func ImpliedProbability(american int) (float64, error) {
	if american == 0 {
		return 0, ErrZeroOdds
	}
	if american > 0 {
		return 100 / (float64(american) + 100), nil
	}
	a := absFloat(american)
	return a / (a + 100), nil
}

// BreakEvenProbability is an alias for ImpliedProbability, named for callers
// reasoning about the win rate needed to break even.
func BreakEvenProbability(american int) (float64, error) {
	return ImpliedProbability(american)
}

// PayoutProfit computes the profit (excluding returned stake) of a winning
// bet at the given American odds.
func PayoutProfit(american int, stake float64) (float64, error) {
	if american == 0 {
		return 0, ErrZeroOdds
	}
	if american > 0 {
		return stake * float64(american) / 100, nil
	}
	return stake * 100 / absFloat(american), nil
}

func absFloat(american int) float64 {
	if american < 0 {
		return float64(-american)
	}
	return float64(american)
}
