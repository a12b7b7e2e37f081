// Package ev computes expected value and edge quality for individual bets.
package ev

import (
	"errors"
	"math"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/odds"
)

// ErrProbOutOfRange is returned when a win probability falls outside [0, 1].
var ErrProbOutOfRange = errors.New("win probability must be between 0 and 1")

// Edge returns the estimated win probability minus the probability implied by
// the quoted odds. Positive edge means the quote pays better than fair.
func Edge(probWin float64, american int) (float64, error) {
	if probWin < 0 || probWin > 1 {
		return 0, ErrProbOutOfRange
	}
	implied, err := odds.ImpliedProbability(american)
	if err != nil {
		return 0, err
	}
	return probWin - implied, nil
}

// ExpectedValue returns the expected profit of a single bet at the given
// stake: probWin*profit - (1-probWin)*stake.
func ExpectedValue(probWin float64, american int, stake float64) (float64, error) {
	if probWin < 0 || probWin > 1 {
		return 0, ErrProbOutOfRange
	}
	profit, err := odds.PayoutProfit(american, stake)
	if err != nil {
		return 0, err
	}
	return probWin*profit - (1-probWin)*stake, nil
}

// Quality returns a qualitative rating of the bet's edge.
// Edges above 5 points are strong, positive edges below that are small, and
// anything within 1 point of fair is treated as breakeven.
func Quality(probWin float64, american int) (string, error) {
	edge, err := Edge(probWin, american)
	if err != nil {
		return "", err
	}

	switch {
	case edge > 0.05:
		return domain.QualityStrongPositiveEdge, nil
	case edge > 0:
		return domain.QualitySmallPositiveEdge, nil
	case math.Abs(edge) < 0.01:
		return domain.QualityBreakeven, nil
	default:
		return domain.QualityNegativeEdge, nil
	}
}

// Evaluate assesses a bet at the given stake and returns the implied
// probability, edge, expected value, verdict, and edge quality together.
func Evaluate(probWin float64, american int, stake float64) (*domain.BetAssessment, error) {
	if probWin < 0 || probWin > 1 {
		return nil, ErrProbOutOfRange
	}
	implied, err := odds.ImpliedProbability(american)
	if err != nil {
		return nil, err
	}
	expected, err := ExpectedValue(probWin, american, stake)
	if err != nil {
		return nil, err
	}
	quality, err := Quality(probWin, american)
	if err != nil {
		return nil, err
	}

	verdict := domain.VerdictBadBet
	if expected > 0 {
		verdict = domain.VerdictGoodBet
	}

	return &domain.BetAssessment{
		ImpliedProbability:   implied,
		EstimatedProbability: probWin,
		Edge:                 probWin - implied,
		ExpectedValue:        expected,
		Stake:                stake,
		Verdict:              verdict,
		Quality:              quality,
	}, nil
}
