package decision

import "errors"

// Decision represents the final GO/NO-GO result for a policy.
type Decision string

const (
	DecisionGO   Decision = "GO"
	DecisionNOGO Decision = "NO-GO"

	// DecisionInsufficientData is issued by the pipeline when the recorded
	// runs are too thin to trust the gate, regardless of the metrics.
	DecisionInsufficientData Decision = "INSUFFICIENT_DATA"
)

// Validation errors for decision inputs.
var (
	ErrNilInput           = errors.New("decision input is nil")
	ErrEmptyPolicyID      = errors.New("policy ID must not be empty")
	ErrNoTrials           = errors.New("input must carry at least one trial")
	ErrInvalidBankroll    = errors.New("initial bankroll must be greater than zero")
	ErrInvalidProbability = errors.New("probabilities must be between 0 and 1")
)

// DecisionInput contains the metrics the gate evaluates for one policy,
// taken from that policy's run summary.
type DecisionInput struct {
	PolicyID string
	RunID    string

	TotalTrials         int
	InitialBankroll     float64
	MedianFinalBankroll float64
	ProbabilityOfProfit float64
	ProbabilityOfRuin   float64
	MeanMaxDrawdown     float64
}

// Validate checks the input for structural problems before evaluation.
func (in *DecisionInput) Validate() error {
	if in == nil {
		return ErrNilInput
	}
	if in.PolicyID == "" {
		return ErrEmptyPolicyID
	}
	if in.TotalTrials <= 0 {
		return ErrNoTrials
	}
	if in.InitialBankroll <= 0 {
		return ErrInvalidBankroll
	}
	if in.ProbabilityOfProfit < 0 || in.ProbabilityOfProfit > 1 {
		return ErrInvalidProbability
	}
	if in.ProbabilityOfRuin < 0 || in.ProbabilityOfRuin > 1 {
		return ErrInvalidProbability
	}
	return nil
}

// CriterionResult represents pass/fail for one criterion.
type CriterionResult struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// DecisionResult contains the final decision with checklist.
type DecisionResult struct {
	PolicyID   string
	RunID      string
	Decision   Decision
	GOCriteria []CriterionResult // 4 GO criteria
	NOGOChecks []CriterionResult // 4 NO-GO triggers
}
