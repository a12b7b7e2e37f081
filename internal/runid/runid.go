package runid

import (
	"crypto/sha256"
	"fmt"
	"strconv"

	"github.com/mr-tron/base58"

	"bankroll-lab/internal/domain"
)

// Compute derives a deterministic run_id for one (policy, params, seed) batch.
// Formula: SHA256(policy_id|prob_win|decimal_odds|initial_bankroll|n_bets|
// n_sims|ruin_threshold|paths_to_store|seed), base58-encoded 12-byte prefix.
// seed is the resolved seed of the run (params.Seed is ignored, the runner
// resolves nil seeds before the run is recorded), so re-running an identical
// batch reproduces the same run_id and collides on insert instead of
// double-storing.
func Compute(policyID string, params domain.BatchParams, seed int64) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%d|%d|%s|%d|%d",
		policyID,
		formatFloat(params.ProbWin),
		formatFloat(params.DecimalOdds),
		formatFloat(params.InitialBankroll),
		params.NBets,
		params.NSims,
		formatFloat(params.RuinThreshold),
		params.PathsToStore,
		seed,
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:12])
}

// formatFloat renders a float with round-trip precision so the canonical
// string never depends on locale or default formatting width.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
