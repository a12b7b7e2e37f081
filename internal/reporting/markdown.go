package reporting

import (
	"fmt"
	"strings"
	"time"

	"bankroll-lab/internal/metrics"
)

// Long runs produce more envelope points than a readable table holds.
const maxEnvelopeRows = 21

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Sweep Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Policies: %d | Trials: %d\n\n", r.PolicyCount, r.TotalTrials))
	if r.Decision != "" {
		sb.WriteString(fmt.Sprintf("Decision: **%s**", string(r.Decision)))
		if r.LeadingPolicy != "" {
			sb.WriteString(fmt.Sprintf(" (leading policy: %s)", r.LeadingPolicy))
		}
		sb.WriteString("\n\n")
	}

	// Policy Comparison
	sb.WriteString("## Policy Comparison\n\n")
	if len(r.PolicyMetrics) > 0 {
		sb.WriteString("| Policy | Trials | Ruined | Mean | Median | Stddev | P10 | P90 | P(Profit) | P(Ruin) | MeanMaxDD |\n")
		sb.WriteString("|--------|--------|--------|------|--------|--------|-----|-----|-----------|---------|-----------|\n")
		for _, m := range r.PolicyMetrics {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %.2f | %.2f | %.2f | %.2f | %.2f | %.4f | %.4f | %.4f |\n",
				m.PolicyID, m.TotalTrials, m.RuinedCount,
				m.MeanFinalBankroll, m.MedianFinalBankroll, m.StddevFinalBankroll,
				m.P10FinalBankroll, m.P90FinalBankroll,
				m.ProbabilityOfProfit, m.ProbabilityOfRuin, m.MeanMaxDrawdown))
		}
	} else {
		sb.WriteString("No policy metrics available.\n")
	}
	sb.WriteString("\n")

	// Bankroll Envelope
	sb.WriteString("## Bankroll Envelope\n\n")
	if len(r.Envelope.Points) > 0 {
		sb.WriteString(fmt.Sprintf("Sample paths of %s (run `%s`).\n\n", r.Envelope.PolicyID, r.Envelope.RunID))
		sb.WriteString("| Bet | Mean | P10 | P90 |\n")
		sb.WriteString("|-----|------|-----|-----|\n")
		for _, pt := range envelopeTableRows(r.Envelope.Points) {
			sb.WriteString(fmt.Sprintf("| %d | %.2f | %.2f | %.2f |\n", pt.BetIndex, pt.Mean, pt.P10, pt.P90))
		}
	} else {
		sb.WriteString("No sample paths available.\n")
	}
	sb.WriteString("\n")

	// Stake Gate summary; STAKE_GATE.md carries the full checklists
	sb.WriteString("## Stake Gate\n\n")
	if len(r.Gates) > 0 {
		sb.WriteString("| Policy | Decision | GO Criteria | NO-GO Triggers |\n")
		sb.WriteString("|--------|----------|-------------|----------------|\n")
		for _, gate := range r.Gates {
			passed := 0
			for _, c := range gate.GOCriteria {
				if c.Pass {
					passed++
				}
			}
			triggered := 0
			for _, c := range gate.NOGOChecks {
				if !c.Pass {
					triggered++
				}
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d/%d | %d/%d |\n",
				gate.PolicyID, string(gate.Decision),
				passed, len(gate.GOCriteria), triggered, len(gate.NOGOChecks)))
		}
	} else {
		sb.WriteString("No gate results available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

// envelopeTableRows downsamples the envelope to at most maxEnvelopeRows
// evenly strided points, always keeping the final one.
func envelopeTableRows(points []metrics.EnvelopePoint) []metrics.EnvelopePoint {
	if len(points) <= maxEnvelopeRows {
		return points
	}

	stride := (len(points) + maxEnvelopeRows - 1) / maxEnvelopeRows
	rows := make([]metrics.EnvelopePoint, 0, maxEnvelopeRows+1)
	for i := 0; i < len(points); i += stride {
		rows = append(rows, points[i])
	}

	last := points[len(points)-1]
	if rows[len(rows)-1].BetIndex != last.BetIndex {
		rows = append(rows, last)
	}
	return rows
}
