package domain

// BatchParams represents the full configuration of one Monte Carlo batch.
type BatchParams struct {
	ProbWin         float64 // estimated win probability per bet, [0, 1]
	DecimalOdds     float64 // decimal odds including stake return, > 1
	InitialBankroll float64 // starting bankroll, > 0
	NBets           int     // bets per trial, > 0
	NSims           int     // independent trials, > 0
	RuinThreshold   float64 // ruin floor as a fraction of initial bankroll, open (0, 1)
	PathsToStore    int     // full paths to retain for inspection, >= 0
	Seed            *int64  // RNG seed; nil derives a seed from the wall clock
}
