package accounts

import (
	"context"
	"testing"
	"time"

	"tubelens-api/database/dbtest"
	"tubelens-api/internal/domain/analysis"
	"tubelens-api/internal/domain/plans"
	"tubelens-api/internal/domain/subscriptions"
	"tubelens-api/internal/domain/users"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(dbtest.New(t), plans.Caps{Free: 5, Basic: 50, Pro: 500}, 24*time.Hour, nil)
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestProvisionCreatesOwnedRecords(t *testing.T) {
	svc := newService(t)
	u := &users.User{Email: "  Ada@Example.com ", AuthProvider: users.ProviderLocal, IsActive: true}

	require.NoError(t, svc.Provision(context.Background(), u))
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, "ada@example.com", u.Email)

	var sub subscriptions.Subscription
	require.NoError(t, svc.db.Where("user_id = ?", u.ID).First(&sub).Error)
	assert.Equal(t, plans.TierFree, sub.Plan)
	assert.Equal(t, subscriptions.StatusActive, sub.Status)

	var limit subscriptions.UsageLimit
	require.NoError(t, svc.db.Where("user_id = ?", u.ID).First(&limit).Error)
	assert.Equal(t, 0, limit.AnalysesUsed)
	assert.Equal(t, 5, limit.AnalysesLimit)
	assert.True(t, limit.ResetAt.Equal(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)))
}

func TestProvisionRejectsDuplicateEmail(t *testing.T) {
	svc := newService(t)
	require.NoError(t, svc.Provision(context.Background(), &users.User{Email: "ada@example.com"}))

	err := svc.Provision(context.Background(), &users.User{Email: "ADA@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	var count int64
	svc.db.Model(&subscriptions.Subscription{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDeleteCascades(t *testing.T) {
	svc := newService(t)
	u := &users.User{Email: "ada@example.com"}
	require.NoError(t, svc.Provision(context.Background(), u))

	a := analysis.YoutubeAnalysis{UserID: u.ID, YoutubeType: analysis.TypeVideo, YoutubeID: "abc123", Summary: "s"}
	require.NoError(t, svc.db.Create(&a).Error)
	require.NoError(t, svc.db.Create(&analysis.AnalysisQuestion{AnalysisID: a.ID, Question: "why?"}).Error)

	require.NoError(t, svc.Delete(context.Background(), u.ID))

	for _, model := range []any{&users.User{}, &subscriptions.Subscription{}, &subscriptions.UsageLimit{}, &analysis.YoutubeAnalysis{}, &analysis.AnalysisQuestion{}} {
		var count int64
		require.NoError(t, svc.db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T left behind", model)
	}

	assert.ErrorIs(t, svc.Delete(context.Background(), u.ID), ErrUserNotFound)
}

func TestProvisionLosingUniqueIndexRaceReportsEmailTaken(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	// another signup for the same address commits after the count check but before the insert
	raced := false
	require.NoError(t, svc.db.Callback().Create().Before("gorm:create").Register("accounts_test:concurrent_signup", func(tx *gorm.DB) {
		u, ok := tx.Statement.Dest.(*users.User)
		if !ok || raced {
			return
		}
		raced = true
		now := time.Now().UTC()
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO users (id, email, auth_provider, is_active, is_staff, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			uuid.New().String(), u.Email, users.ProviderLocal, true, false, now, now,
		)
	}))

	err := svc.Provision(ctx, &users.User{Email: "race@example.com", AuthProvider: users.ProviderLocal, IsActive: true})
	require.ErrorIs(t, err, ErrEmailTaken)
	assert.True(t, raced)

	var subs int64
	require.NoError(t, svc.db.Model(&subscriptions.Subscription{}).Count(&subs).Error)
	assert.Zero(t, subs)
}

func TestProvisionDuplicateGoogleSubIsNotEmailTaken(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	sub := "google-sub-1"

	require.NoError(t, svc.Provision(ctx, &users.User{Email: "a@example.com", AuthProvider: users.ProviderGoogle, GoogleSub: &sub, IsActive: true}))
	err := svc.Provision(ctx, &users.User{Email: "b@example.com", AuthProvider: users.ProviderGoogle, GoogleSub: &sub, IsActive: true})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailTaken)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
