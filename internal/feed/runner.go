package feed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"bankroll-lab/internal/domain"
	"bankroll-lab/internal/ev"
	"bankroll-lab/internal/kelly"
	"bankroll-lab/internal/observability"
	"bankroll-lab/internal/odds"
	"bankroll-lab/internal/storage"
)

// Runner consumes a quote stream: each quote is validated, persisted, and
// assessed for edge at a Kelly-suggested stake.
type Runner struct {
	source          QuoteSource
	quoteStore      storage.QuoteStore
	bankroll        float64
	kellyMultiplier float64
	logger          *log.Logger
	now             func() time.Time

	quotesProcessed atomic.Int64
	quotesStored    atomic.Int64
	goodBets        atomic.Int64
	lastQuoteAt     atomic.Int64 // ms timestamp, 0 before the first quote
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Source QuoteSource
	// QuoteStore persists incoming quotes. nil skips persistence, which also
	// disables duplicate detection.
	QuoteStore storage.QuoteStore
	// Bankroll sizes the stake suggestions. Default: 1000.
	Bankroll float64
	// KellyMultiplier scales suggested stakes. Default: 0.5 (half Kelly).
	KellyMultiplier float64
	Logger          *log.Logger
}

// NewRunner creates a new feed runner.
func NewRunner(opts RunnerOptions) *Runner {
	bankroll := opts.Bankroll
	if bankroll == 0 {
		bankroll = 1000
	}

	kellyMultiplier := opts.KellyMultiplier
	if kellyMultiplier == 0 {
		kellyMultiplier = 0.5
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Runner{
		source:          opts.Source,
		quoteStore:      opts.QuoteStore,
		bankroll:        bankroll,
		kellyMultiplier: kellyMultiplier,
		logger:          logger,
		now:             time.Now,
	}
}

// WithClock overrides the runner's clock. Intended for tests.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Run starts consuming quotes. It blocks until the context is cancelled or
// the quote channel closes.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Println("Starting feed runner...")

	quotesCh, err := r.source.Subscribe(ctx)
	if err != nil {
		return err
	}
	r.logger.Printf("Subscribed to quote feed, bankroll=%.2f, kelly multiplier=%.2f", r.bankroll, r.kellyMultiplier)

	for {
		select {
		case <-ctx.Done():
			r.logger.Println("Feed runner stopping...")
			return ctx.Err()

		case q, ok := <-quotesCh:
			if !ok {
				r.logger.Println("Quote channel closed")
				return errors.New("quote channel closed")
			}
			r.handleQuote(ctx, q)
		}
	}
}

// handleQuote processes a single quote.
func (r *Runner) handleQuote(ctx context.Context, q *domain.Quote) {
	r.quotesProcessed.Add(1)
	r.lastQuoteAt.Store(r.now().UnixMilli())
	observability.RecordQuoteProcessed()

	if err := validateQuote(q); err != nil {
		observability.RecordQuoteError("validation")
		r.logger.Printf("Invalid quote: %v", err)
		return
	}

	// Store the quote
	if r.quoteStore != nil {
		quote := *q
		quote.CreatedAt = r.now().UnixMilli()
		if err := r.quoteStore.Insert(ctx, &quote); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				// Redelivered quote, already assessed on first delivery
				return
			}
			observability.RecordQuoteError("store")
			r.logger.Printf("Error storing quote %s: %v", q.QuoteID, err)
		} else {
			r.quotesStored.Add(1)
			observability.RecordQuoteStored()
		}
	}

	r.assessQuote(q)
}

// assessQuote sizes a stake with the Kelly criterion and evaluates the
// quote's expected value at that stake.
func (r *Runner) assessQuote(q *domain.Quote) {
	decimalOdds, err := odds.AmericanToDecimal(q.AmericanOdds)
	if err != nil {
		observability.RecordQuoteError("assessment")
		r.logger.Printf("Error assessing quote %s: %v", q.QuoteID, err)
		return
	}

	fraction, err := kelly.Fraction(q.ProbWin, decimalOdds)
	if err != nil {
		observability.RecordQuoteError("assessment")
		r.logger.Printf("Error assessing quote %s: %v", q.QuoteID, err)
		return
	}

	stake, err := kelly.BetSize(q.ProbWin, decimalOdds, r.bankroll, r.kellyMultiplier)
	if err != nil {
		observability.RecordQuoteError("assessment")
		r.logger.Printf("Error assessing quote %s: %v", q.QuoteID, err)
		return
	}

	assessment, err := ev.Evaluate(q.ProbWin, q.AmericanOdds, stake)
	if err != nil {
		observability.RecordQuoteError("assessment")
		r.logger.Printf("Error assessing quote %s: %v", q.QuoteID, err)
		return
	}

	observability.RecordAssessment(assessment.Verdict)

	if assessment.Verdict == domain.VerdictGoodBet {
		r.goodBets.Add(1)
		r.logger.Printf("GOOD BET: %s %s at %+d (edge=%.4f, EV=%.2f, stake=%.2f, %s)",
			q.Market, q.Selection, q.AmericanOdds,
			assessment.Edge, assessment.ExpectedValue, stake,
			kelly.RiskLevel(fraction*r.kellyMultiplier))
	}
}

// validateQuote rejects quotes the storage and assessment layers cannot use.
func validateQuote(q *domain.Quote) error {
	if q == nil {
		return errors.New("nil quote")
	}
	if q.QuoteID == "" {
		return errors.New("empty quote_id")
	}
	if q.Market == "" {
		return errors.New("empty market")
	}
	if q.AmericanOdds == 0 {
		return errors.New("zero american odds")
	}
	if q.ProbWin < 0 || q.ProbWin > 1 {
		return fmt.Errorf("prob_win %v outside [0, 1]", q.ProbWin)
	}
	if q.ProbStd < 0 {
		return fmt.Errorf("negative prob_std %v", q.ProbStd)
	}
	return nil
}

// RunnerStats is a point-in-time snapshot of feed activity.
type RunnerStats struct {
	QuotesProcessed int64
	QuotesStored    int64
	GoodBets        int64
	LastQuoteAt     int64 // ms timestamp of the last received quote, 0 before the first
}

// Stats returns current runner statistics.
func (r *Runner) Stats() RunnerStats {
	return RunnerStats{
		QuotesProcessed: r.quotesProcessed.Load(),
		QuotesStored:    r.quotesStored.Load(),
		GoodBets:        r.goodBets.Load(),
		LastQuoteAt:     r.lastQuoteAt.Load(),
	}
}
