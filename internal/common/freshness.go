package common

import "time"

// DefaultTTL is the freshness window for cached provider results.
const DefaultTTL = 300 * time.Second

// IsFresh returns true if updated is within ttl of now.
// A zero timestamp is never fresh.
func IsFresh(updated, now time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return now.Sub(updated) < ttl
}
