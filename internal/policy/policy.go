// Package policy implements pluggable bet-sizing policies for bankroll
// simulations. Each policy maps the simulator's live state to a proposed
// stake, keeping sizing logic separate from outcome and risk tracking so
// different policies can be compared under identical conditions.
package policy

// Policy proposes a stake for the current bet.
//
// Policies are stateless transformers: all memory (bankroll, peak, bet
// index) is owned by the simulator and passed in on every call. A policy
// may close over precomputed constants but never over bet history.
type Policy interface {
	// Stake proposes a raw stake for bet betIndex given the trial's
	// current and peak bankroll. The simulator clamps the proposal to
	// [0, bankroll]; any sign or magnitude is acceptable here.
	Stake(bankroll, peak float64, betIndex int) float64

	// ID returns the policy identifier (includes parameters).
	ID() string
}
