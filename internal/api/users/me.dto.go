package users

import (
	"time"

	"github.com/google/uuid"
)

type MeResponse struct {
	UserDTO
	Subscription *SubscriptionDTO `json:"subscription"`
	Usage        UsageDTO         `json:"usage"`
}

type UserDTO struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	AuthProvider string    `json:"auth_provider"`
	IsStaff      bool      `json:"is_staff"`
}

type SubscriptionDTO struct {
	Plan             string     `json:"plan"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end"`
}

type UsageDTO struct {
	Tier      string    `json:"tier"`
	Used      int       `json:"used"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}
