package decision

import (
	"bankroll-lab/internal/domain"
)

// InputFromRecord projects a persisted run record onto the gate's input.
func InputFromRecord(rec *domain.RunRecord) DecisionInput {
	return DecisionInput{
		PolicyID:            rec.PolicyID,
		RunID:               rec.RunID,
		TotalTrials:         rec.TotalTrials,
		InitialBankroll:     rec.InitialBankroll,
		MedianFinalBankroll: rec.MedianFinalBankroll,
		ProbabilityOfProfit: rec.ProbabilityOfProfit,
		ProbabilityOfRuin:   rec.ProbabilityOfRuin,
		MeanMaxDrawdown:     rec.MeanMaxDrawdown,
	}
}

// InputsFromRecords projects a record set in its given order. Callers that
// need a deterministic report feed records already sorted by policy.
func InputsFromRecords(recs []*domain.RunRecord) []DecisionInput {
	inputs := make([]DecisionInput, len(recs))
	for i, rec := range recs {
		inputs[i] = InputFromRecord(rec)
	}
	return inputs
}
