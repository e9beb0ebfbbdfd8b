package users

import (
	"tubelens-api/internal/app/analyzer"
	"tubelens-api/internal/domain/subscriptions"
	"tubelens-api/internal/domain/users"
)

func BuildUserDTO(u users.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		AuthProvider: u.AuthProvider,
		IsStaff:      u.IsStaff,
	}
}

func BuildSubscriptionDTO(s *subscriptions.Subscription) *SubscriptionDTO {
	if s == nil {
		return nil
	}
	return &SubscriptionDTO{
		Plan:             s.Plan,
		Status:           string(s.Status),
		CurrentPeriodEnd: s.CurrentPeriodEnd,
	}
}

func BuildUsageDTO(s analyzer.UsageSnapshot) UsageDTO {
	return UsageDTO{
		Tier:      s.Tier,
		Used:      s.AnalysesUsed,
		Limit:     s.AnalysesLimit,
		Remaining: s.Remaining(),
		ResetAt:   s.ResetAt,
	}
}
