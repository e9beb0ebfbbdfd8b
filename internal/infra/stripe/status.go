package stripe

import (
	"strings"

	"tubelens-api/internal/domain/plans"
	"tubelens-api/internal/domain/subscriptions"
)

// NormalizeStripeStatus folds Stripe's subscription statuses into the three we store.
func NormalizeStripeStatus(s string) subscriptions.Status {
	switch strings.TrimSpace(s) {
	case "active", "trialing":
		return subscriptions.StatusActive
	case "past_due", "unpaid", "incomplete":
		return subscriptions.StatusPastDue
	case "canceled", "incomplete_expired", "paused":
		return subscriptions.StatusCanceled
	default:
		return subscriptions.StatusPastDue
	}
}

// PriceMap resolves Stripe price IDs to plan tiers and back.
type PriceMap struct {
	Basic string
	Pro   string
}

func (m PriceMap) TierForPrice(priceID string) (string, bool) {
	switch {
	case priceID == "":
		return "", false
	case priceID == m.Basic:
		return plans.TierBasic, true
	case priceID == m.Pro:
		return plans.TierPro, true
	}
	return "", false
}

func (m PriceMap) PriceForTier(tier string) (string, bool) {
	switch tier {
	case plans.TierBasic:
		return m.Basic, m.Basic != ""
	case plans.TierPro:
		return m.Pro, m.Pro != ""
	}
	return "", false
}
