// Package usage tracks per-user daily generation quotas. Counters are keyed
// by user and UTC calendar day, so the reset at midnight is implicit in the
// key rather than a stored date that has to be compared and rewritten.
package usage

import (
	"context"
	"time"
)

// Store is a daily counter keyed by user. Increment must be atomic: two
// concurrent requests from the same user may never observe the same count.
type Store interface {
	// Increment bumps today's counter for the user and returns the new count.
	Increment(ctx context.Context, userID string) (int, error)
	// Peek returns today's count without modifying it.
	Peek(ctx context.Context, userID string) (int, error)
	// Decrement rolls back one increment (floor zero), used after an upstream
	// generation fails so the user is not charged for nothing.
	Decrement(ctx context.Context, userID string) error
}

// dayKey scopes a counter to one user and one UTC calendar day
func dayKey(userID string, now time.Time) string {
	return "usage:" + userID + ":" + now.UTC().Format("2006-01-02")
}

// counterTTL keeps finished days from accumulating. Two days covers clock
// skew around midnight; the key is unreachable after roll-over anyway.
const counterTTL = 48 * time.Hour
