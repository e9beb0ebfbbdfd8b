package stripewebhooks

import (
	"context"
	"errors"
	"fmt"

	"tubelens-api/internal/domain/subscriptions"

	"github.com/stripe/stripe-go/v75"
	"gorm.io/gorm"
)

func (h *Handler) handleSubscriptionUpdated(ctx context.Context, sub *stripe.Subscription) error {
	if sub.ID == "" {
		return fmt.Errorf("%w: subscription missing id", errIgnored)
	}

	row, err := h.findSubscription(ctx, sub)
	if err != nil {
		return err
	}

	return h.db.WithContext(ctx).
		Model(&subscriptions.Subscription{}).
		Where("id = ?", row.ID).
		Updates(h.subscriptionUpdates(sub)).Error
}

// findSubscription resolves the local row by metadata.user_id, then by Stripe subscription id.
func (h *Handler) findSubscription(ctx context.Context, sub *stripe.Subscription) (*subscriptions.Subscription, error) {
	db := h.db.WithContext(ctx)
	var row subscriptions.Subscription

	if userID, err := userIDFromRefs(sub.Metadata, ""); err == nil {
		err := db.Where("user_id = ?", userID).First(&row).Error
		if err == nil {
			return &row, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	err := db.Where("stripe_subscription_id = ?", sub.ID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no subscription for %s", errIgnored, sub.ID)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
