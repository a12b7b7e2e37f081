package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeQuoteID computes a deterministic quote_id using SHA256.
// Formula: SHA256(source|market|selection|american_odds|quoted_at)
// Returns hex-encoded hash (64 characters).
//
// The feed assigns no keys of its own, so the same quote delivered twice
// (redelivery after a reconnect, overlapping subscriptions) hashes to the
// same ID and collides on insert instead of storing a second copy.
func ComputeQuoteID(
	source string,
	market string,
	selection string,
	americanOdds int,
	quotedAt int64,
) string {
	data := fmt.Sprintf("%s|%s|%s|%d|%d",
		source,
		market,
		selection,
		americanOdds,
		quotedAt,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
