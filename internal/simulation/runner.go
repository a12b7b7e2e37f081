package simulation

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/metrics"
	"bankroll-lab/internal/policy"
)

// Validation errors, one per rejected parameter
var (
	ErrProbOutOfRange          = errors.New("win probability must be between 0 and 1")
	ErrInvalidOdds             = errors.New("decimal odds must be greater than 1")
	ErrNonPositiveBankroll     = errors.New("initial bankroll must be greater than zero")
	ErrNonPositiveBets         = errors.New("number of bets must be greater than zero")
	ErrNonPositiveSims         = errors.New("number of simulations must be greater than zero")
	ErrRuinThresholdOutOfRange = errors.New("ruin threshold must be strictly between 0 and 1")
	ErrNegativePathsToStore    = errors.New("number of paths to store must not be negative")
	ErrNilPolicy               = errors.New("policy must not be nil")
)

// Runner drives batches of path simulations.
type Runner struct {
	seedFn func() int64 // fallback seed source for batches without an explicit seed
}

// NewRunner creates a batch runner seeding unseeded batches from the wall
// clock.
func NewRunner() *Runner {
	return &Runner{
		seedFn: func() int64 { return time.Now().UnixNano() },
	}
}

// WithSeedSource overrides the fallback seed source. Useful in tests.
func (r *Runner) WithSeedSource(fn func() int64) *Runner {
	r.seedFn = fn
	return r
}

// ValidateParams checks every scalar in params and returns the first
// violation. Validation failures are caller configuration errors, never
// retried.
func ValidateParams(params domain.BatchParams) error {
	if params.ProbWin < 0 || params.ProbWin > 1 {
		return ErrProbOutOfRange
	}
	if params.DecimalOdds <= 1 {
		return ErrInvalidOdds
	}
	if params.InitialBankroll <= 0 {
		return ErrNonPositiveBankroll
	}
	if params.NBets <= 0 {
		return ErrNonPositiveBets
	}
	if params.NSims <= 0 {
		return ErrNonPositiveSims
	}
	if params.RuinThreshold <= 0 || params.RuinThreshold >= 1 {
		return ErrRuinThresholdOutOfRange
	}
	if params.PathsToStore < 0 {
		return ErrNegativePathsToStore
	}
	return nil
}

// Run executes params.NSims independent trials of pol and reduces them
// into a BatchResult.
//
// All parameters are validated before any trial runs; a batch either fails
// fast or completes whole. One random source, built from the resolved
// seed, is threaded through every trial sequentially; trial order is what
// makes a fixed seed bit-for-bit reproducible. Trials themselves never
// suspend; cancellation is honored between trials only.
func (r *Runner) Run(ctx context.Context, params domain.BatchParams, pol policy.Policy) (*domain.BatchResult, error) {
	if err := ValidateParams(params); err != nil {
		return nil, err
	}
	if pol == nil {
		return nil, ErrNilPolicy
	}

	// Ruin floor shared by every trial
	ruinLevel := params.RuinThreshold * params.InitialBankroll

	seed := r.resolveSeed(params.Seed)
	rng := rand.New(rand.NewSource(seed))

	result := &domain.BatchResult{
		PolicyID:       pol.ID(),
		Params:         params,
		Seed:           seed,
		FinalBankrolls: make([]float64, 0, params.NSims),
		MaxDrawdowns:   make([]float64, 0, params.NSims),
		RuinedFlags:    make([]bool, 0, params.NSims),
	}
	if params.PathsToStore > 0 {
		result.SamplePaths = make([][]float64, 0, params.PathsToStore)
	}

	for trial := 0; trial < params.NSims; trial++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pr := SimulatePath(params.ProbWin, params.DecimalOdds, params.InitialBankroll, params.NBets, pol, ruinLevel, rng)

		result.FinalBankrolls = append(result.FinalBankrolls, pr.FinalBankroll)
		result.MaxDrawdowns = append(result.MaxDrawdowns, pr.MaxDrawdown)
		result.RuinedFlags = append(result.RuinedFlags, pr.Ruined)

		// First-come sample retention, not a representative sample
		if len(result.SamplePaths) < params.PathsToStore {
			result.SamplePaths = append(result.SamplePaths, pr.Path)
		}
	}

	result.Summary = *metrics.SummarizeBatch(result.FinalBankrolls, result.MaxDrawdowns, result.RuinedFlags, params.InitialBankroll)

	return result, nil
}

// resolveSeed returns the explicit seed or derives one from the fallback
// source.
func (r *Runner) resolveSeed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return r.seedFn()
}
