package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/ev"
	"bankroll-lab/internal/kelly"
	"bankroll-lab/internal/odds"
	"bankroll-lab/internal/policy"
	"bankroll-lab/internal/simulation"
)

func main() {
	// Parse flags
	americanOdds := flag.Int("odds", -110, "American odds for the bet")
	probWin := flag.Float64("prob", 0.545, "Estimated win probability")
	stake := flag.Float64("stake", 100, "Stake to assess expected value at")
	bankroll := flag.Float64("bankroll", 1000, "Bankroll for Kelly sizing")
	multiplier := flag.Float64("multiplier", 0.5, "Kelly multiplier (0.5 = half Kelly)")

	// Outlook simulation
	nBets := flag.Int("bets", 300, "Bets per trial for the outlook simulation")
	nSims := flag.Int("sims", 2000, "Trials for the outlook simulation (0 disables)")
	seed := flag.Int64("seed", 0, "RNG seed for the outlook simulation (0 derives one from the clock)")

	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[evaluate] ", log.LstdFlags)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Assess the single bet
	assessment, err := ev.Evaluate(*probWin, *americanOdds, *stake)
	if err != nil {
		logger.Fatalf("evaluate bet: %v", err)
	}

	decimalOdds, err := odds.AmericanToDecimal(*americanOdds)
	if err != nil {
		logger.Fatalf("convert odds: %v", err)
	}
	profit, err := odds.PayoutProfit(*americanOdds, *stake)
	if err != nil {
		logger.Fatalf("compute payout: %v", err)
	}

	// Kelly sizing off the same estimate
	fraction, err := kelly.Fraction(*probWin, decimalOdds)
	if err != nil {
		logger.Fatalf("kelly fraction: %v", err)
	}
	kellyStake, err := kelly.BetSize(*probWin, decimalOdds, *bankroll, *multiplier)
	if err != nil {
		logger.Fatalf("kelly bet size: %v", err)
	}
	applied := fraction * *multiplier

	// Bankroll outlook under the applied Kelly fraction
	var outlook *domain.BatchSummary
	if *nSims > 0 {
		summary, err := runOutlook(ctx, *probWin, decimalOdds, *bankroll, *multiplier, *nBets, *nSims, *seed)
		if err != nil {
			logger.Fatalf("outlook simulation: %v", err)
		}
		outlook = summary
	}

	// Output result
	if *outputJSON {
		out := evaluateOutput{
			AmericanOdds:  *americanOdds,
			DecimalOdds:   decimalOdds,
			ProfitAtStake: profit,
			Assessment:    assessment,
			KellyFraction: fraction,
			Multiplier:    *multiplier,
			AppliedKelly:  applied,
			KellyStake:    kellyStake,
			RiskLevel:     kelly.RiskLevel(applied),
			Regime:        kelly.Regime(fraction),
			Outlook:       outlook,
		}
		output, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(output))
	} else {
		printAssessment(*americanOdds, decimalOdds, profit, assessment)
		printKellySizing(fraction, *multiplier, applied, kellyStake, *bankroll)
		if outlook != nil {
			printOutlook(outlook, *nBets, *nSims, *bankroll)
		}
	}
}

// evaluateOutput is the JSON shape for a bet evaluation.
type evaluateOutput struct {
	AmericanOdds  int                   `json:"american_odds"`
	DecimalOdds   float64               `json:"decimal_odds"`
	ProfitAtStake float64               `json:"profit_at_stake"`
	Assessment    *domain.BetAssessment `json:"assessment"`
	KellyFraction float64               `json:"kelly_fraction"`
	Multiplier    float64               `json:"multiplier"`
	AppliedKelly  float64               `json:"applied_kelly"`
	KellyStake    float64               `json:"kelly_stake"`
	RiskLevel     string                `json:"risk_level"`
	Regime        string                `json:"regime"`
	Outlook       *domain.BatchSummary  `json:"outlook,omitempty"`
}

// runOutlook simulates repeated bets at the assessed edge, staked by the
// same Kelly policy the sizing section recommends.
func runOutlook(
	ctx context.Context,
	probWin, decimalOdds, bankroll, multiplier float64,
	nBets, nSims int,
	seed int64,
) (*domain.BatchSummary, error) {
	cfg := domain.PolicyConfig{
		PolicyType:  domain.PolicyTypeKelly,
		ProbWin:     &probWin,
		DecimalOdds: &decimalOdds,
		Multiplier:  &multiplier,
	}
	pol, err := policy.FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	params := domain.BatchParams{
		ProbWin:         probWin,
		DecimalOdds:     decimalOdds,
		InitialBankroll: bankroll,
		NBets:           nBets,
		NSims:           nSims,
		RuinThreshold:   0.4,
	}
	if seed != 0 {
		params.Seed = &seed
	}

	result, err := simulation.NewRunner().Run(ctx, params, pol)
	if err != nil {
		return nil, err
	}
	return &result.Summary, nil
}

// printAssessment outputs the human-readable bet assessment.
func printAssessment(american int, decimal, profit float64, a *domain.BetAssessment) {
	fmt.Println()
	fmt.Println("=== Bet Assessment ===")
	fmt.Printf("American Odds:      %+d\n", american)
	fmt.Printf("Decimal Odds:       %.4f\n", decimal)
	fmt.Printf("Implied Prob:       %.2f%%\n", a.ImpliedProbability*100)
	fmt.Printf("Estimated Prob:     %.2f%%\n", a.EstimatedProbability*100)
	fmt.Printf("Edge:               %+.2f%%\n", a.Edge*100)
	fmt.Printf("Stake:              %.2f\n", a.Stake)
	fmt.Printf("Profit if Won:      %.2f\n", profit)
	fmt.Printf("Expected Value:     %+.2f\n", a.ExpectedValue)
	fmt.Printf("Verdict:            %s (%s)\n", a.Verdict, a.Quality)
}

// printKellySizing outputs the recommended stake.
func printKellySizing(fraction, multiplier, applied, stake, bankroll float64) {
	fmt.Println()
	fmt.Println("=== Kelly Sizing ===")
	fmt.Printf("Full Kelly:         %.4f\n", fraction)
	fmt.Printf("Multiplier:         %.2f\n", multiplier)
	fmt.Printf("Applied Fraction:   %.4f\n", applied)
	fmt.Printf("Recommended Stake:  %.2f (bankroll %.2f)\n", stake, bankroll)
	fmt.Printf("Risk Level:         %s\n", kelly.RiskLevel(applied))
	fmt.Printf("Regime:             %s\n", kelly.Regime(fraction))
}

// printOutlook outputs the bankroll outlook summary.
func printOutlook(s *domain.BatchSummary, nBets, nSims int, bankroll float64) {
	fmt.Println()
	fmt.Printf("=== Outlook (%d bets x %d trials) ===\n", nBets, nSims)
	fmt.Printf("Mean Final:         %.2f (from %.2f)\n", s.MeanFinalBankroll, bankroll)
	fmt.Printf("Median Final:       %.2f\n", s.MedianFinalBankroll)
	fmt.Printf("P10 / P90:          %.2f / %.2f\n", s.P10FinalBankroll, s.P90FinalBankroll)
	fmt.Printf("Prob. of Profit:    %.2f%%\n", s.ProbabilityOfProfit*100)
	fmt.Printf("Prob. of Ruin:      %.2f%%\n", s.ProbabilityOfRuin*100)
	fmt.Printf("Mean Max Drawdown:  %.2f%%\n", s.MeanMaxDrawdown*100)
}
