// Package usage holds the per-period analysis counter rules.
package usage

import (
	"time"

	"tubelens-api/internal/domain/subscriptions"
)

// ResetDue reports whether the counter's period has ended.
func ResetDue(now time.Time, u subscriptions.UsageLimit) bool {
	return !now.Before(u.ResetAt)
}

// NextReset advances resetAt by whole periods until it lies strictly after now.
func NextReset(now, resetAt time.Time, period time.Duration) time.Time {
	if period <= 0 || now.Before(resetAt) {
		return resetAt
	}
	steps := now.Sub(resetAt)/period + 1
	return resetAt.Add(steps * period)
}

// Effective returns the counter as it stands at now, with a due reset applied in memory.
func Effective(now time.Time, u subscriptions.UsageLimit, period time.Duration) subscriptions.UsageLimit {
	if ResetDue(now, u) {
		u.AnalysesUsed = 0
		u.ResetAt = NextReset(now, u.ResetAt, period)
	}
	return u
}

// AtCap reports whether no analysis slot is left under limit.
func AtCap(u subscriptions.UsageLimit, limit int) bool {
	return u.AnalysesUsed >= limit
}
