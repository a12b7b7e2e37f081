package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders policy comparison rows as CSV string.
func RenderCSV(rows []PolicyMetricRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("policy_id,run_id,total_trials,ruined_count,initial_bankroll,")
	sb.WriteString("mean_final_bankroll,median_final_bankroll,stddev_final_bankroll,")
	sb.WriteString("p10_final_bankroll,p90_final_bankroll,")
	sb.WriteString("probability_of_profit,probability_of_ruin,mean_max_drawdown,created_at\n")

	// Rows
	for _, m := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%d,%d,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%d\n",
			m.PolicyID,
			m.RunID,
			m.TotalTrials,
			m.RuinedCount,
			m.InitialBankroll,
			m.MeanFinalBankroll,
			m.MedianFinalBankroll,
			m.StddevFinalBankroll,
			m.P10FinalBankroll,
			m.P90FinalBankroll,
			m.ProbabilityOfProfit,
			m.ProbabilityOfRuin,
			m.MeanMaxDrawdown,
			m.CreatedAt,
		))
	}

	return sb.String()
}

// RenderEnvelopeCSV renders the full, undownsampled envelope as CSV string.
func RenderEnvelopeCSV(env EnvelopeSection) string {
	var sb strings.Builder

	// Header
	sb.WriteString("policy_id,run_id,bet_index,mean_bankroll,p10_bankroll,p90_bankroll\n")

	// Rows
	for _, pt := range env.Points {
		sb.WriteString(fmt.Sprintf("%s,%s,%d,%.6f,%.6f,%.6f\n",
			env.PolicyID,
			env.RunID,
			pt.BetIndex,
			pt.Mean,
			pt.P10,
			pt.P90,
		))
	}

	return sb.String()
}
