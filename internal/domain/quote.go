package domain

// Quote represents an ingested odds quote from a model feed.
// Corresponds to quotes table in PostgreSQL.
type Quote struct {
	QuoteID      string  // PRIMARY KEY, deterministic hash
	Source       string  // feed source name
	Market       string  // market identifier
	Selection    string  // wagered outcome within the market
	AmericanOdds int     // quoted American odds, never zero
	ProbWin      float64 // model-estimated win probability
	ProbStd      float64 // standard deviation of the probability estimate
	QuotedAt     int64   // quote timestamp (ms)
	CreatedAt    int64   // record creation timestamp (ms)
}
