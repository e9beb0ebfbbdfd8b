package subscriptions

import (
	"time"

	"tubelens-api/internal/domain/common"
	"tubelens-api/internal/domain/users"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
	StatusPastDue  Status = "past_due"
)

type Subscription struct {
	common.BaseModel

	UserID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_subscriptions_user_id"`
	User   users.User `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Plan   string `gorm:"type:varchar(20);not null;default:'free'"`
	Status Status `gorm:"type:varchar(20);not null;default:'active'"`

	StripeSubscriptionID *string `gorm:"column:stripe_subscription_id;uniqueIndex:idx_subscriptions_stripe_subscription_id"`
	StripeCustomerID     *string `gorm:"column:stripe_customer_id;uniqueIndex:idx_subscriptions_stripe_customer_id"`
	CurrentPeriodEnd     *time.Time
}

// UsageLimit counts analyses against the cap for the current period.
type UsageLimit struct {
	common.BaseModel

	UserID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_usage_limits_user_id"`
	User   users.User `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	AnalysesUsed  int       `gorm:"not null;default:0"`
	AnalysesLimit int       `gorm:"not null;default:5"`
	ResetAt       time.Time `gorm:"not null"`
}

func (u UsageLimit) Remaining() int {
	if u.AnalysesUsed >= u.AnalysesLimit {
		return 0
	}
	return u.AnalysesLimit - u.AnalysesUsed
}
