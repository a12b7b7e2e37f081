package decision

import (
	"fmt"
	"strings"
)

// RenderMarkdown renders one policy's DecisionResult as a Markdown section.
func RenderMarkdown(result *DecisionResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## Policy: %s\n\n", result.PolicyID))
	if result.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: `%s`\n\n", result.RunID))
	}
	sb.WriteString(fmt.Sprintf("### Decision: %s\n\n", result.Decision))

	// GO Criteria table
	sb.WriteString("### GO Criteria\n\n")
	sb.WriteString("| # | Criterion | Threshold | Actual | Pass |\n")
	sb.WriteString("|---|-----------|-----------|--------|------|\n")
	for i, c := range result.GOCriteria {
		passStr := "PASS"
		if !c.Pass {
			passStr = "FAIL"
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			i+1, c.Name, c.Threshold, c.Actual, passStr))
	}
	sb.WriteString("\n")

	goPassed := 0
	for _, c := range result.GOCriteria {
		if c.Pass {
			goPassed++
		}
	}
	sb.WriteString(fmt.Sprintf("GO Criteria: %d/%d passed\n\n", goPassed, len(result.GOCriteria)))

	// NO-GO Triggers table
	sb.WriteString("### NO-GO Triggers\n\n")
	sb.WriteString("| # | Trigger | Condition | Actual | Status |\n")
	sb.WriteString("|---|---------|-----------|--------|--------|\n")
	for i, c := range result.NOGOChecks {
		statusStr := "NOT TRIGGERED"
		if !c.Pass { // Pass=false means triggered
			statusStr = "TRIGGERED"
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			i+1, c.Name, c.Threshold, c.Actual, statusStr))
	}
	sb.WriteString("\n")

	nogoTriggered := 0
	for _, c := range result.NOGOChecks {
		if !c.Pass {
			nogoTriggered++
		}
	}
	sb.WriteString(fmt.Sprintf("NO-GO Triggers: %d/%d triggered\n\n", nogoTriggered, len(result.NOGOChecks)))

	// Summary
	sb.WriteString("### Summary\n\n")
	if result.Decision == DecisionGO {
		sb.WriteString("All GO criteria passed and no NO-GO triggers fired.\n")
	} else {
		sb.WriteString("Decision is NO-GO due to:\n")
		for _, c := range result.GOCriteria {
			if !c.Pass {
				sb.WriteString(fmt.Sprintf("- GO criterion failed: %s (actual: %s)\n", c.Name, c.Actual))
			}
		}
		for _, c := range result.NOGOChecks {
			if !c.Pass {
				sb.WriteString(fmt.Sprintf("- NO-GO trigger fired: %s (actual: %s)\n", c.Name, c.Actual))
			}
		}
	}

	return sb.String()
}

// RenderMarkdownAll renders every policy's gate result under one report
// header, in the given order.
func RenderMarkdownAll(results []*DecisionResult) string {
	var sb strings.Builder

	sb.WriteString("# Stake Gate Report\n\n")

	goCount := 0
	for _, r := range results {
		if r.Decision == DecisionGO {
			goCount++
		}
	}
	sb.WriteString(fmt.Sprintf("%d/%d policies cleared the gate.\n\n", goCount, len(results)))

	for _, r := range results {
		sb.WriteString(RenderMarkdown(r))
		sb.WriteString("\n")
	}

	return sb.String()
}
