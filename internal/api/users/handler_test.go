package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tubelens-api/database/dbtest"
	"tubelens-api/internal/app/accounts"
	"tubelens-api/internal/app/analyzer"
	"tubelens-api/internal/app/http/middleware"
	"tubelens-api/internal/domain/plans"
	"tubelens-api/internal/domain/subscriptions"
	"tubelens-api/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(t *testing.T) (*gin.Engine, *gorm.DB, users.User, string) {
	t.Helper()
	db := dbtest.New(t)
	caps := plans.Caps{Free: 5, Basic: 50, Pro: 500}
	acc := accounts.NewService(db, caps, 24*time.Hour, zap.NewNop())
	an := analyzer.NewService(db, nil, nil, analyzer.Options{Caps: caps, UsagePeriod: 24 * time.Hour}, zap.NewNop())

	u := users.User{Email: "ada@example.com", FirstName: "Ada", AuthProvider: users.ProviderLocal, IsActive: true}
	require.NoError(t, acc.Provision(context.Background(), &u))
	token, err := middleware.IssueToken(secret, u.ID, u.Email, false)
	require.NoError(t, err)

	h := NewHandler(db, acc, an, zap.NewNop())
	r := gin.New()
	r.Use(middleware.AuthMiddleware(secret))
	r.GET("/me", h.GetCurrentUser)
	r.DELETE("/me", h.DeleteCurrentUser)
	return r, db, u, token
}

func do(r http.Handler, method, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetCurrentUser(t *testing.T) {
	r, db, u, token := setup(t)
	require.NoError(t, db.Model(&subscriptions.UsageLimit{}).
		Where("user_id = ?", u.ID).Update("analyses_used", 2).Error)

	w := do(r, http.MethodGet, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, u.ID, resp.ID)
	assert.Equal(t, "ada@example.com", resp.Email)
	require.NotNil(t, resp.Subscription)
	assert.Equal(t, plans.TierFree, resp.Subscription.Plan)
	assert.Equal(t, "active", resp.Subscription.Status)
	assert.Equal(t, plans.TierFree, resp.Usage.Tier)
	assert.Equal(t, 2, resp.Usage.Used)
	assert.Equal(t, 5, resp.Usage.Limit)
	assert.Equal(t, 3, resp.Usage.Remaining)
}

func TestDeleteCurrentUser(t *testing.T) {
	r, db, u, token := setup(t)

	w := do(r, http.MethodDelete, token)
	require.Equal(t, http.StatusNoContent, w.Code)

	var n int64
	require.NoError(t, db.Model(&users.User{}).Where("id = ?", u.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&subscriptions.Subscription{}).Where("user_id = ?", u.ID).Count(&n).Error)
	assert.Zero(t, n)

	w = do(r, http.MethodGet, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodDelete, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
