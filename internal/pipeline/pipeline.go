// Package pipeline assembles the sweep artifacts: it checks data
// sufficiency, generates the report, and writes the report, CSV and stake
// gate files to the output directory.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bankroll-lab/internal/decision"
	"bankroll-lab/internal/metrics"
	"bankroll-lab/internal/observability"
	"bankroll-lab/internal/replay"
	"bankroll-lab/internal/reporting"
	"bankroll-lab/internal/storage"
)

// Output file names.
const (
	SweepReportFile = "SWEEP_REPORT.md"
	MetricsCSVFile  = "policy_metrics.csv"
	EnvelopeCSVFile = "bankroll_envelope.csv"
	StakeGateFile   = "STAKE_GATE.md"
)

// SweepPipeline orchestrates report + stake gate generation.
type SweepPipeline struct {
	reportGen *reporting.Generator
	checker   *SufficiencyChecker
	outputDir string
	clock     func() time.Time
}

// NewSweepPipeline creates a new pipeline writing into outputDir.
func NewSweepPipeline(
	runRecordStore storage.RunRecordStore,
	pathPointStore storage.PathPointStore,
	outputDir string,
) *SweepPipeline {
	return &SweepPipeline{
		reportGen: reporting.NewGenerator(runRecordStore, pathPointStore),
		outputDir: outputDir,
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

// WithSufficiencyChecker adds a sufficiency checker to the pipeline. When the
// checks fail, the stake gate is overridden to INSUFFICIENT_DATA.
func (p *SweepPipeline) WithSufficiencyChecker(
	runRecordStore storage.RunRecordStore,
	pathPointStore storage.PathPointStore,
	replayRunner *replay.Runner,
) *SweepPipeline {
	p.checker = NewSufficiencyChecker(runRecordStore, pathPointStore, replayRunner)
	return p
}

// WithClock sets a custom clock function for deterministic output.
func (p *SweepPipeline) WithClock(clock func() time.Time) *SweepPipeline {
	p.clock = clock
	p.reportGen = p.reportGen.WithClock(clock)
	return p
}

// Run executes the full pipeline and writes the output files:
// - SWEEP_REPORT.md
// - policy_metrics.csv
// - bankroll_envelope.csv (when sample paths exist)
// - STAKE_GATE.md
func (p *SweepPipeline) Run(ctx context.Context) error {
	// Ensure output directory exists
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return err
	}

	// 1. Run sufficiency check FIRST (if configured)
	var quality *SufficiencyResult
	if p.checker != nil {
		var err error
		quality, err = p.checker.Check(ctx)
		if err != nil {
			return err
		}
	}
	insufficient := quality != nil && !quality.AllPass

	// 2. Generate the report. With nothing recorded there is no report to
	// write; when the checker already knows the data is short, the gate file
	// still documents why.
	report, err := p.reportGen.Generate(ctx)
	if err != nil {
		if insufficient && errors.Is(err, metrics.ErrNoRuns) {
			return p.writeInsufficientDataGate(quality)
		}
		return err
	}

	// 3. Failed sufficiency overrides the gate verdict before anything is
	// rendered.
	if insufficient {
		report.Decision = decision.DecisionInsufficientData
	}

	// 4. Write SWEEP_REPORT.md
	reportPath := filepath.Join(p.outputDir, SweepReportFile)
	if err := os.WriteFile(reportPath, []byte(reporting.RenderMarkdown(report)), 0644); err != nil {
		return err
	}

	// 5. Write policy_metrics.csv
	csvPath := filepath.Join(p.outputDir, MetricsCSVFile)
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(report.PolicyMetrics)), 0644); err != nil {
		return err
	}

	// 6. Write bankroll_envelope.csv at full resolution (the report table is
	// downsampled).
	if len(report.Envelope.Points) > 0 {
		envPath := filepath.Join(p.outputDir, EnvelopeCSVFile)
		if err := os.WriteFile(envPath, []byte(reporting.RenderEnvelopeCSV(report.Envelope)), 0644); err != nil {
			return err
		}
	}

	// 7. Write STAKE_GATE.md
	var gateMD string
	if insufficient {
		gateMD = p.renderInsufficientDataGate(quality)
	} else {
		gateMD = p.renderStakeGate(report)
	}
	gatePath := filepath.Join(p.outputDir, StakeGateFile)
	if err := os.WriteFile(gatePath, []byte(gateMD), 0644); err != nil {
		return err
	}

	observability.RecordReportGenerated()
	return nil
}

// renderStakeGate renders the full gate report: one section per policy in
// leaderboard order, then the overall verdict carried by the leader.
func (p *SweepPipeline) renderStakeGate(report *reporting.Report) string {
	var sb strings.Builder
	sb.WriteString("# Stake Gate Report\n\n")
	sb.WriteString("Generated at: " + p.clock().Format("2006-01-02 15:04:05 UTC") + "\n\n")

	if len(report.Gates) == 0 {
		sb.WriteString("No policies to evaluate.\n")
		return sb.String()
	}

	goCount := 0
	for _, r := range report.Gates {
		if r.Decision == decision.DecisionGO {
			goCount++
		}
	}
	sb.WriteString(fmt.Sprintf("%d/%d policies cleared the gate.\n\n", goCount, len(report.Gates)))

	for i, r := range report.Gates {
		if i > 0 {
			sb.WriteString("---\n\n")
		}
		sb.WriteString(decision.RenderMarkdown(r))
		sb.WriteString("\n")
	}

	sb.WriteString("---\n\n")
	sb.WriteString("## Overall Decision\n\n")
	leaderMedian := 0.0
	if len(report.PolicyMetrics) > 0 {
		leaderMedian = report.PolicyMetrics[0].MedianFinalBankroll
	}
	sb.WriteString(fmt.Sprintf("**%s** (based on leading policy: %s, median=%.2f)\n",
		string(report.Decision), report.LeadingPolicy, leaderMedian))

	return sb.String()
}

// renderInsufficientDataGate renders a gate report explaining why no
// GO/NO-GO verdict was issued.
func (p *SweepPipeline) renderInsufficientDataGate(quality *SufficiencyResult) string {
	var sb strings.Builder
	sb.WriteString("# Stake Gate Report\n\n")
	sb.WriteString("Generated at: " + p.clock().Format("2006-01-02 15:04:05 UTC") + "\n\n")
	sb.WriteString("## Decision: INSUFFICIENT_DATA\n\n")
	sb.WriteString("Data sufficiency checks failed. Cannot proceed with GO/NO-GO evaluation.\n\n")
	sb.WriteString("### Failed Checks\n\n")
	sb.WriteString("| Check | Threshold | Actual | Status |\n")
	sb.WriteString("|-------|-----------|--------|--------|\n")
	for _, check := range quality.Checks {
		status := "PASS"
		if !check.Pass {
			status = "FAIL"
		}
		sb.WriteString("| " + check.Name + " | " + check.Threshold + " | " + check.Actual + " | " + status + " |\n")
	}
	sb.WriteString("\n")

	if len(quality.Errors) > 0 {
		sb.WriteString("### Integrity Errors\n\n")
		for _, err := range quality.Errors {
			sb.WriteString("- " + err + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("### Required Actions\n\n")
	sb.WriteString("1. Record more runs until all sufficiency checks pass\n")
	sb.WriteString("2. Fix any data integrity issues\n")
	sb.WriteString("3. Re-run the sweep\n")

	return sb.String()
}

// writeInsufficientDataGate writes only the gate file; there is no report to
// render without runs.
func (p *SweepPipeline) writeInsufficientDataGate(quality *SufficiencyResult) error {
	gatePath := filepath.Join(p.outputDir, StakeGateFile)
	return os.WriteFile(gatePath, []byte(p.renderInsufficientDataGate(quality)), 0644)
}
