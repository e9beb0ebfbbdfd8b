package plans

import (
	"strings"
	"time"

	"tubelens-api/internal/domain/subscriptions"
)

// Tier constants (single source of truth)
const (
	TierFree  = "free"
	TierBasic = "basic"
	TierPro   = "pro"
)

func IsValidTier(tier string) bool {
	switch tier {
	case TierFree, TierBasic, TierPro:
		return true
	}
	return false
}

// NormalizeTier lowercases a stored plan name and falls back to free for anything unknown.
func NormalizeTier(s string) string {
	tier := strings.ToLower(strings.TrimSpace(s))
	if IsValidTier(tier) {
		return tier
	}
	return TierFree
}

// Caps maps each tier to the number of analyses allowed per usage period.
type Caps struct {
	Free  int
	Basic int
	Pro   int
}

func (c Caps) For(tier string) int {
	switch NormalizeTier(tier) {
	case TierPro:
		return c.Pro
	case TierBasic:
		return c.Basic
	default:
		return c.Free
	}
}

// EffectiveTier returns the tier whose cap applies right now.
// past_due drops to free immediately; canceled keeps the paid tier until the paid-through date.
func EffectiveTier(now time.Time, sub *subscriptions.Subscription) string {
	if sub == nil {
		return TierFree
	}
	tier := NormalizeTier(sub.Plan)

	switch sub.Status {
	case subscriptions.StatusActive:
		return tier
	case subscriptions.StatusPastDue:
		return TierFree
	case subscriptions.StatusCanceled:
		if sub.CurrentPeriodEnd != nil && now.Before(*sub.CurrentPeriodEnd) {
			return tier
		}
		return TierFree
	default:
		return TierFree
	}
}
