package billing

import (
	"tubelens-api/internal/domain/common"
	"tubelens-api/internal/domain/users"

	"github.com/google/uuid"
)

// Payment is one paid Stripe invoice.
type Payment struct {
	common.BaseModel

	UserID uuid.UUID  `gorm:"type:uuid;not null;index"`
	User   users.User `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Plan                 string  `gorm:"type:varchar(20)"`
	StripeInvoiceID      string  `gorm:"not null;uniqueIndex:idx_payments_stripe_invoice_id"`
	StripeSubscriptionID *string `gorm:"index"`
	AmountCents          int64   `gorm:"not null;default:0"`
	Currency             string  `gorm:"type:varchar(10)"`
	Status               string  `gorm:"type:varchar(20);not null"`
	ReceiptURL           *string
}
