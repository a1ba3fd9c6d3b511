package clientdata

import "time"

// TTL constants for the cached provider payloads.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Annual statements only move with new filings.
	TTLStatements = 45 * 24 * time.Hour

	// Market snapshots carry the current price, so they go stale fast.
	TTLSnapshot = time.Hour

	// Daily price history gains at most one bar per trading day.
	TTLDailyPrices = 24 * time.Hour
)
