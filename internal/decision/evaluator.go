package decision

import "fmt"

// Gate thresholds. A policy must clear every one of them to get a GO.
const (
	MaxProbabilityOfRuin   = 0.05 // at most 5% of trials may end in ruin
	MinProbabilityOfProfit = 0.50 // at least half the trials must end in profit
	MaxMeanDrawdown        = 0.30 // mean worst retracement at most 30%
)

// Evaluator evaluates the stake gate for one policy.
type Evaluator struct{}

// NewEvaluator creates a new gate evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate produces a DecisionResult from a DecisionInput.
// GO if ALL criteria pass and NO NO-GO triggers fire.
// NO-GO if ANY criterion fails or ANY trigger fires.
func (e *Evaluator) Evaluate(input DecisionInput) *DecisionResult {
	goCriteria := e.evaluateGOCriteria(input)
	nogoChecks := e.evaluateNOGOTriggers(input)

	allGOPass := true
	for _, c := range goCriteria {
		if !c.Pass {
			allGOPass = false
			break
		}
	}

	anyNOGOTriggered := false
	for _, c := range nogoChecks {
		if !c.Pass { // Pass=false means triggered
			anyNOGOTriggered = true
			break
		}
	}

	decision := DecisionGO
	if !allGOPass || anyNOGOTriggered {
		decision = DecisionNOGO
	}

	return &DecisionResult{
		PolicyID:   input.PolicyID,
		RunID:      input.RunID,
		Decision:   decision,
		GOCriteria: goCriteria,
		NOGOChecks: nogoChecks,
	}
}

// evaluateGOCriteria evaluates the 4 GO criteria.
func (e *Evaluator) evaluateGOCriteria(input DecisionInput) []CriterionResult {
	criteria := make([]CriterionResult, 4)

	// 1. Probability of ruin within bound
	criteria[0] = CriterionResult{
		Name:      "Ruin probability contained",
		Threshold: fmt.Sprintf("<= %.0f%%", MaxProbabilityOfRuin*100),
		Actual:    fmt.Sprintf("%.2f%%", input.ProbabilityOfRuin*100),
		Pass:      input.ProbabilityOfRuin <= MaxProbabilityOfRuin,
	}

	// 2. Median trial keeps the bankroll whole
	criteria[1] = CriterionResult{
		Name:      "Median final preserves bankroll",
		Threshold: fmt.Sprintf(">= $%.2f", input.InitialBankroll),
		Actual:    fmt.Sprintf("$%.2f", input.MedianFinalBankroll),
		Pass:      input.MedianFinalBankroll >= input.InitialBankroll,
	}

	// 3. Profitable more often than not
	criteria[2] = CriterionResult{
		Name:      "Probability of profit",
		Threshold: fmt.Sprintf(">= %.0f%%", MinProbabilityOfProfit*100),
		Actual:    fmt.Sprintf("%.2f%%", input.ProbabilityOfProfit*100),
		Pass:      input.ProbabilityOfProfit >= MinProbabilityOfProfit,
	}

	// 4. Typical worst retracement tolerable
	criteria[3] = CriterionResult{
		Name:      "Mean max drawdown tolerable",
		Threshold: fmt.Sprintf("<= %.0f%%", MaxMeanDrawdown*100),
		Actual:    fmt.Sprintf("%.2f%%", input.MeanMaxDrawdown*100),
		Pass:      input.MeanMaxDrawdown <= MaxMeanDrawdown,
	}

	return criteria
}

// evaluateNOGOTriggers evaluates the 4 NO-GO triggers.
// Pass=true means NOT triggered, Pass=false means triggered.
func (e *Evaluator) evaluateNOGOTriggers(input DecisionInput) []CriterionResult {
	checks := make([]CriterionResult, 4)

	// 1. Ruin probability above bound triggers NO-GO
	triggered1 := input.ProbabilityOfRuin > MaxProbabilityOfRuin
	checks[0] = CriterionResult{
		Name:      "Excessive ruin probability",
		Threshold: fmt.Sprintf("> %.0f%%", MaxProbabilityOfRuin*100),
		Actual:    fmt.Sprintf("%.2f%%", input.ProbabilityOfRuin*100),
		Pass:      !triggered1, // Pass means NOT triggered
	}

	// 2. Median trial loses money triggers NO-GO
	triggered2 := input.MedianFinalBankroll < input.InitialBankroll
	checks[1] = CriterionResult{
		Name:      "Median final loses money",
		Threshold: fmt.Sprintf("< $%.2f", input.InitialBankroll),
		Actual:    fmt.Sprintf("$%.2f", input.MedianFinalBankroll),
		Pass:      !triggered2,
	}

	// 3. Losing more often than winning triggers NO-GO
	triggered3 := input.ProbabilityOfProfit < MinProbabilityOfProfit
	checks[2] = CriterionResult{
		Name:      "Profit less likely than loss",
		Threshold: fmt.Sprintf("< %.0f%%", MinProbabilityOfProfit*100),
		Actual:    fmt.Sprintf("%.2f%%", input.ProbabilityOfProfit*100),
		Pass:      !triggered3,
	}

	// 4. Deep typical drawdown triggers NO-GO
	triggered4 := input.MeanMaxDrawdown > MaxMeanDrawdown
	checks[3] = CriterionResult{
		Name:      "Drawdown too deep",
		Threshold: fmt.Sprintf("> %.0f%%", MaxMeanDrawdown*100),
		Actual:    fmt.Sprintf("%.2f%%", input.MeanMaxDrawdown*100),
		Pass:      !triggered4,
	}

	return checks
}
