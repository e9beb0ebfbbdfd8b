package stripewebhooks

import (
	"context"
	"errors"
	"fmt"

	"tubelens-api/internal/domain/billing"
	"tubelens-api/internal/domain/subscriptions"

	"github.com/stripe/stripe-go/v75"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// handleInvoicePaid records the payment once; Stripe redeliveries hit the unique invoice id.
func (h *Handler) handleInvoicePaid(ctx context.Context, inv *stripe.Invoice) error {
	if inv.ID == "" {
		return fmt.Errorf("%w: invoice missing id", errIgnored)
	}

	row, err := h.subscriptionForInvoice(ctx, inv)
	if err != nil {
		return err
	}

	payment := billing.Payment{
		UserID:          row.UserID,
		Plan:            row.Plan,
		StripeInvoiceID: inv.ID,
		AmountCents:     inv.AmountPaid,
		Currency:        string(inv.Currency),
		Status:          "paid",
	}
	if inv.Subscription != nil && inv.Subscription.ID != "" {
		id := inv.Subscription.ID
		payment.StripeSubscriptionID = &id
	}
	if inv.Lines != nil && len(inv.Lines.Data) > 0 && inv.Lines.Data[0].Price != nil {
		if tier, ok := h.prices.TierForPrice(inv.Lines.Data[0].Price.ID); ok {
			payment.Plan = tier
		}
	}
	if inv.HostedInvoiceURL != "" {
		url := inv.HostedInvoiceURL
		payment.ReceiptURL = &url
	}

	return h.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "stripe_invoice_id"}}, DoNothing: true}).
		Create(&payment).Error
}

func (h *Handler) subscriptionForInvoice(ctx context.Context, inv *stripe.Invoice) (*subscriptions.Subscription, error) {
	db := h.db.WithContext(ctx)
	var row subscriptions.Subscription

	if inv.Subscription != nil && inv.Subscription.ID != "" {
		err := db.Where("stripe_subscription_id = ?", inv.Subscription.ID).First(&row).Error
		if err == nil {
			return &row, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if inv.Customer != nil && inv.Customer.ID != "" {
		err := db.Where("stripe_customer_id = ?", inv.Customer.ID).First(&row).Error
		if err == nil {
			return &row, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: no subscription for invoice %s", errIgnored, inv.ID)
}
