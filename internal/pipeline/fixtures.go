package pipeline

import (
	"context"
	"fmt"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/orchestrator"
	"bankroll-lab/internal/storage"
)

// FixtureSeed is the master seed for fixture sweeps, fixed so every fixture
// load produces byte-identical records.
const FixtureSeed int64 = 12345

// DefaultParams returns the standard sweep scenario: a 0.545 edge at -110
// odds, 300 bets per trial, 5000 trials, ruin at 40% of the initial bankroll.
func DefaultParams() domain.BatchParams {
	return domain.BatchParams{
		ProbWin:         0.545,
		DecimalOdds:     1.909,
		InitialBankroll: 1000,
		NBets:           300,
		NSims:           5000,
		RuinThreshold:   0.4,
		PathsToStore:    50,
	}
}

// DefaultPolicyConfigs returns the standard comparison roster: flat $10,
// fixed-fraction 2%, full Kelly, half Kelly, and risk-adjusted Kelly, all
// priced off the default scenario.
func DefaultPolicyConfigs() []domain.PolicyConfig {
	stake := 10.0
	fraction := 0.02
	probWin := 0.545
	decimalOdds := 1.909
	half := 0.5
	return []domain.PolicyConfig{
		{PolicyType: domain.PolicyTypeFlat, Stake: &stake},
		{PolicyType: domain.PolicyTypeFixedFraction, Fraction: &fraction},
		{PolicyType: domain.PolicyTypeKelly, ProbWin: &probWin, DecimalOdds: &decimalOdds},
		{PolicyType: domain.PolicyTypeKelly, ProbWin: &probWin, DecimalOdds: &decimalOdds, Multiplier: &half},
		{PolicyType: domain.PolicyTypeRiskAdjustedKelly, ProbWin: &probWin, DecimalOdds: &decimalOdds},
	}
}

// LoadFixtures populates the stores with a real demonstration sweep: the
// default roster run under FixtureSeed. The records come from actual batch
// executions, so replayability holds for fixture data just as it does for
// production runs.
func LoadFixtures(
	ctx context.Context,
	runRecordStore storage.RunRecordStore,
	pathPointStore storage.PathPointStore,
) error {
	seed := FixtureSeed
	params := DefaultParams()
	params.Seed = &seed

	result, err := orchestrator.New(orchestrator.Options{
		RunRecordStore: runRecordStore,
		PathPointStore: pathPointStore,
		Params:         params,
		PolicyConfigs:  DefaultPolicyConfigs(),
	}).Run(ctx)
	if err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("fixture sweep: %s", result.Errors[0])
	}
	return nil
}
