package stripewebhooks

import (
	"context"
	"fmt"
	"time"

	"tubelens-api/internal/domain/subscriptions"

	"github.com/stripe/stripe-go/v75"
)

// The plan is kept; the effective tier drops to free once current_period_end has passed.
func (h *Handler) handleSubscriptionDeleted(ctx context.Context, sub *stripe.Subscription) error {
	if sub.ID == "" {
		return fmt.Errorf("%w: subscription missing id", errIgnored)
	}

	row, err := h.findSubscription(ctx, sub)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"status": subscriptions.StatusCanceled,
	}
	switch {
	case sub.EndedAt > 0:
		updates["current_period_end"] = time.Unix(sub.EndedAt, 0).UTC()
	case sub.CurrentPeriodEnd > 0:
		updates["current_period_end"] = time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	}

	return h.db.WithContext(ctx).
		Model(&subscriptions.Subscription{}).
		Where("id = ?", row.ID).
		Updates(updates).Error
}
