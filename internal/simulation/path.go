// Package simulation implements the Monte Carlo core: a single-path
// simulator that advances a bankroll bet-by-bet under a pluggable sizing
// policy, and a batch runner that repeats it across many trials and
// reduces the outcomes into summary statistics.
package simulation

import (
	"math"
	"math/rand"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/policy"
)

// SimulatePath advances one bankroll trajectory over at most nBets bets,
// consulting pol for a stake each step and drawing win/loss outcomes from
// rng. The trial ends early when the bankroll reaches zero or falls to or
// below ruinLevel; otherwise it runs until bet exhaustion.
//
// Per-bet steps, for bet index t:
//  1. A bankroll already at or below zero is clamped to exactly 0,
//     recorded, and ends the trial as ruined
//  2. The policy proposes a raw stake for (bankroll, peak, t)
//  3. The stake is clamped to [0, bankroll]
//  4. A zero stake is a sat-out bet: the unchanged bankroll is recorded
//     and the trial continues
//  5. A uniform draw below probWin wins stake*(decimalOdds-1), otherwise
//     the stake is lost
//  6. Peak rises to the new bankroll if exceeded
//  7. The retracement (peak-bankroll)/peak raises the running max drawdown
//  8. The new bankroll is appended to the path
//  9. A bankroll at or below ruinLevel ends the trial as ruined
//
// Drawdown is measured against the running peak, not the initial bankroll,
// so a trial that grows before losing is scored on the fall from its own
// high-water mark. The simulator trusts its inputs and always returns a
// well-formed result; it never errors, even for a fully ruined trial.
func SimulatePath(probWin, decimalOdds, initialBankroll float64, nBets int, pol policy.Policy, ruinLevel float64, rng *rand.Rand) *domain.PathResult {
	bankroll := initialBankroll
	peak := initialBankroll
	maxDrawdown := 0.0
	ruined := false

	path := make([]float64, 1, nBets+1)
	path[0] = initialBankroll

	for t := 0; t < nBets; t++ {
		// 1. A zeroed bankroll cannot play on
		if bankroll <= 0 {
			bankroll = 0
			ruined = true
			path = append(path, 0)
			break
		}

		// 2-3. Propose and clamp the stake: never negative, never more
		// than the bankroll can cover
		stake := pol.Stake(bankroll, peak, t)
		if stake < 0 {
			stake = 0
		}
		if stake > bankroll {
			stake = bankroll
		}

		// 4. A zero stake sits the bet out
		if stake == 0 {
			path = append(path, bankroll)
			continue
		}

		// 5. Resolve the bet
		if rng.Float64() < probWin {
			bankroll += stake * (decimalOdds - 1)
		} else {
			bankroll -= stake
		}

		// 6-7. Track the peak and the worst retracement from it
		peak = math.Max(peak, bankroll)
		if peak > 0 {
			if dd := (peak - bankroll) / peak; dd > maxDrawdown {
				maxDrawdown = dd
			}
		}

		// 8. Record the new bankroll
		path = append(path, bankroll)

		// 9. A bankroll at or below the ruin floor ends the trial
		if bankroll <= ruinLevel {
			ruined = true
			break
		}
	}

	return &domain.PathResult{
		Path:          path,
		FinalBankroll: bankroll,
		MaxDrawdown:   maxDrawdown,
		Ruined:        ruined,
	}
}
