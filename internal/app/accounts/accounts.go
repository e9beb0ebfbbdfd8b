// Package accounts creates and removes users together with the records they own.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tubelens-api/internal/domain/analysis"
	"tubelens-api/internal/domain/billing"
	"tubelens-api/internal/domain/plans"
	"tubelens-api/internal/domain/subscriptions"
	"tubelens-api/internal/domain/users"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")
)

type Service struct {
	db          *gorm.DB
	caps        plans.Caps
	usagePeriod time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(db *gorm.DB, caps plans.Caps, usagePeriod time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, caps: caps, usagePeriod: usagePeriod, logger: logger.Named("accounts"), now: time.Now}
}

// Provision stores u along with a free subscription and a fresh usage counter, all or nothing.
func (s *Service) Provision(ctx context.Context, u *users.User) error {
	u.Email = NormalizeEmail(u.Email)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&users.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}

		if err := tx.Create(u).Error; err != nil {
			return err
		}

		sub := subscriptions.Subscription{
			UserID: u.ID,
			Plan:   plans.TierFree,
			Status: subscriptions.StatusActive,
		}
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}

		limit := subscriptions.UsageLimit{
			UserID:        u.ID,
			AnalysesUsed:  0,
			AnalysesLimit: s.caps.For(plans.TierFree),
			ResetAt:       s.now().UTC().Add(s.usagePeriod),
		}
		return tx.Create(&limit).Error
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return err
		}
		// A concurrent signup can pass the count check and lose on the unique index.
		// google_sub is the only other unique column a new user can collide on.
		if errors.Is(err, gorm.ErrDuplicatedKey) && (u.GoogleSub == nil || s.emailExists(ctx, u.Email)) {
			return ErrEmailTaken
		}
		return fmt.Errorf("provision user %s: %w", u.Email, err)
	}

	s.logger.Info("user provisioned", zap.String("user_id", u.ID.String()), zap.String("provider", u.AuthProvider))
	return nil
}

func (s *Service) emailExists(ctx context.Context, email string) bool {
	var count int64
	err := s.db.WithContext(ctx).Model(&users.User{}).Where("email = ?", email).Count(&count).Error
	return err == nil && count > 0
}

// Delete removes the user and everything the user owns.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", userID).Limit(1).Find(&users.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		owned := tx.Model(&analysis.YoutubeAnalysis{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("analysis_id IN (?)", owned).Delete(&analysis.AnalysisQuestion{}).Error; err != nil {
			return err
		}
		for _, model := range []any{
			&analysis.YoutubeAnalysis{},
			&billing.Payment{},
			&subscriptions.UsageLimit{},
			&subscriptions.Subscription{},
		} {
			if err := tx.Where("user_id = ?", userID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", userID).Delete(&users.User{}).Error
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("delete user %s: %w", userID, err)
	}

	s.logger.Info("user deleted", zap.String("user_id", userID.String()))
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
