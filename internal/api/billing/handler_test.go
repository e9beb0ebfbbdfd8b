package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"tubelens-api/database/dbtest"
	"tubelens-api/internal/app/accounts"
	"tubelens-api/internal/app/http/middleware"
	"tubelens-api/internal/domain/plans"
	"tubelens-api/internal/domain/subscriptions"
	"tubelens-api/internal/domain/users"
	stripeinfra "tubelens-api/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const secret = "test-secret"

var caps = plans.Caps{Free: 5, Basic: 50, Pro: 500}

var periodEnd = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeStripe answers the handful of Stripe endpoints billing calls.
type fakeStripe struct {
	mu    sync.Mutex
	forms map[string][]string
}

func (f *fakeStripe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	f.mu.Lock()
	f.forms[r.URL.Path] = append(f.forms[r.URL.Path], r.PostForm.Encode())
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/v1/customers":
		_, _ = w.Write([]byte(`{"id":"cus_test","object":"customer"}`))
	case "/v1/checkout/sessions":
		_, _ = w.Write([]byte(`{"id":"cs_test","object":"checkout.session","url":"https://checkout.stripe.test/cs_test"}`))
	case "/v1/billing_portal/sessions":
		_, _ = w.Write([]byte(`{"id":"bps_test","object":"billing_portal.session","url":"https://billing.stripe.test/portal"}`))
	case "/v1/subscriptions/sub_1":
		price := "price_basic"
		if r.Method == http.MethodPost {
			price = "price_pro"
		}
		_, _ = w.Write([]byte(`{"id":"sub_1","object":"subscription","status":"active","current_period_end":` +
			strconv.FormatInt(periodEnd.Unix(), 10) +
			`,"items":{"object":"list","data":[{"id":"si_1","object":"subscription_item","price":{"id":"` + price + `","object":"price"}}]}}`))
	case "/v1/prices/price_basic":
		_, _ = w.Write([]byte(`{"id":"price_basic","object":"price","currency":"eur","unit_amount":900,"recurring":{"interval":"month"}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"no such resource"}}`))
	}
}

func newStripeClient(t *testing.T) (*client.API, *fakeStripe) {
	t.Helper()
	fake := &fakeStripe{forms: map[string][]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return client.New("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend}), fake
}

type env struct {
	r     *gin.Engine
	db    *gorm.DB
	user  users.User
	token string
}

func setup(t *testing.T, sc *client.API) *env {
	t.Helper()
	db := dbtest.New(t)
	acc := accounts.NewService(db, caps, 24*time.Hour, zap.NewNop())
	u := users.User{Email: "ada@example.com", AuthProvider: users.ProviderLocal, IsActive: true}
	require.NoError(t, acc.Provision(context.Background(), &u))
	token, err := middleware.IssueToken(secret, u.ID, u.Email, false)
	require.NoError(t, err)

	h := NewHandler(db, sc, Options{
		Prices: stripeinfra.PriceMap{Basic: "price_basic", Pro: "price_pro"},
		Caps:   caps,
		AppURL: "http://app.test",
		AppEnv: "test",
	}, zap.NewNop())

	r := gin.New()
	r.GET("/plans", h.ListPlans)
	g := r.Group("/", middleware.AuthMiddleware(secret))
	g.POST("/create-checkout-session", h.CreateCheckoutSession)
	g.POST("/billing-portal", h.CreateBillingPortal)
	g.POST("/billing/change-plan", h.ChangePlan)
	g.POST("/billing/cancel", h.CancelSubscription)
	return &env{r: r, db: db, user: u, token: token}
}

func (e *env) send(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func TestListPlansWithoutStripe(t *testing.T) {
	e := setup(t, nil)

	w := e.send(http.MethodGet, "/plans", "")
	require.Equal(t, http.StatusOK, w.Code)

	var out []PlanDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 3)
	assert.Equal(t, PlanDTO{Tier: "free", AnalysesLimit: 5}, out[0])
	assert.Equal(t, "price_basic", out[1].PriceID)
	assert.Equal(t, 500, out[2].AnalysesLimit)
}

func TestListPlansWithStripePrices(t *testing.T) {
	sc, _ := newStripeClient(t)
	e := setup(t, sc)

	w := e.send(http.MethodGet, "/plans", "")
	require.Equal(t, http.StatusOK, w.Code)

	var out []PlanDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 3)
	assert.Equal(t, "eur", out[1].Currency)
	assert.InDelta(t, 9.0, out[1].UnitAmount, 0.001)
	assert.Equal(t, "month", out[1].Interval)
	// price_pro is unknown to the fake; the tier is still listed
	assert.Equal(t, "pro", out[2].Tier)
	assert.Empty(t, out[2].Currency)
}

func TestCheckoutValidation(t *testing.T) {
	e := setup(t, nil)

	w := e.send(http.MethodPost, "/create-checkout-session", `{"plan":"enterprise"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.send(http.MethodPost, "/create-checkout-session", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.send(http.MethodPost, "/create-checkout-session", `{"plan":"basic"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCheckoutCreatesCustomerAndSession(t *testing.T) {
	sc, fake := newStripeClient(t)
	e := setup(t, sc)

	w := e.send(http.MethodPost, "/create-checkout-session", `{"plan":"Basic"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"url":"https://checkout.stripe.test/cs_test"}`, w.Body.String())

	var sub subscriptions.Subscription
	require.NoError(t, e.db.Where("user_id = ?", e.user.ID).First(&sub).Error)
	require.NotNil(t, sub.StripeCustomerID)
	assert.Equal(t, "cus_test", *sub.StripeCustomerID)

	require.Len(t, fake.forms["/v1/checkout/sessions"], 1)
	form := fake.forms["/v1/checkout/sessions"][0]
	assert.Contains(t, form, "price_basic")
	assert.Contains(t, form, e.user.ID.String())

	// the stored customer is reused
	w = e.send(http.MethodPost, "/create-checkout-session", `{"plan":"pro"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, fake.forms["/v1/customers"], 1)
}

func TestBillingPortal(t *testing.T) {
	sc, _ := newStripeClient(t)
	e := setup(t, sc)

	w := e.send(http.MethodPost, "/billing-portal", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	require.NoError(t, e.db.Model(&subscriptions.Subscription{}).
		Where("user_id = ?", e.user.ID).Update("stripe_customer_id", "cus_test").Error)

	w = e.send(http.MethodPost, "/billing-portal", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "billing.stripe.test")
}

func TestCancelWithoutSubscription(t *testing.T) {
	sc, _ := newStripeClient(t)
	e := setup(t, sc)

	w := e.send(http.MethodPost, "/billing/cancel", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No subscription")
}

func (e *env) subscribe(t *testing.T, stripeSubID string) {
	t.Helper()
	require.NoError(t, e.db.Model(&subscriptions.Subscription{}).
		Where("user_id = ?", e.user.ID).
		Updates(map[string]interface{}{
			"plan":                   plans.TierBasic,
			"stripe_customer_id":     "cus_test",
			"stripe_subscription_id": stripeSubID,
		}).Error)
}

func TestChangePlanValidation(t *testing.T) {
	sc, fake := newStripeClient(t)
	e := setup(t, sc)

	for _, body := range []string{`{}`, `{"plan":"free"}`, `{"plan":"enterprise"}`} {
		w := e.send(http.MethodPost, "/billing/change-plan", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	w := e.send(http.MethodPost, "/billing/change-plan", `{"plan":"pro"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Use checkout first")

	e.subscribe(t, "sub_gone")
	w = e.send(http.MethodPost, "/billing/change-plan", `{"plan":"pro"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	assert.Empty(t, fake.forms["/v1/subscriptions/sub_1"])
}

func TestChangePlanWithoutStripe(t *testing.T) {
	e := setup(t, nil)
	w := e.send(http.MethodPost, "/billing/change-plan", `{"plan":"pro"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestChangePlanAlreadyOnPlan(t *testing.T) {
	sc, fake := newStripeClient(t)
	e := setup(t, sc)
	e.subscribe(t, "sub_1")

	w := e.send(http.MethodPost, "/billing/change-plan", `{"plan":"Basic"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"message":"Already on this plan","plan":"basic"}`, w.Body.String())

	// only the lookup reached Stripe
	assert.Len(t, fake.forms["/v1/subscriptions/sub_1"], 1)
}

func TestChangePlanSwapsPrice(t *testing.T) {
	sc, fake := newStripeClient(t)
	e := setup(t, sc)
	e.subscribe(t, "sub_1")

	w := e.send(http.MethodPost, "/billing/change-plan", `{"plan":"pro"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Message          string    `json:"message"`
		Plan             string    `json:"plan"`
		CurrentPeriodEnd time.Time `json:"current_period_end"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Plan changed", resp.Message)
	assert.Equal(t, plans.TierPro, resp.Plan)
	assert.True(t, periodEnd.Equal(resp.CurrentPeriodEnd))

	calls := fake.forms["/v1/subscriptions/sub_1"]
	require.Len(t, calls, 2)
	update := calls[1]
	assert.Contains(t, update, "price_pro")
	assert.Contains(t, update, "si_1")
	assert.Contains(t, update, "create_prorations")

	var sub subscriptions.Subscription
	require.NoError(t, e.db.Where("user_id = ?", e.user.ID).First(&sub).Error)
	assert.Equal(t, plans.TierPro, sub.Plan)
	assert.Equal(t, subscriptions.StatusActive, sub.Status)
	require.NotNil(t, sub.CurrentPeriodEnd)
	assert.True(t, periodEnd.Equal(*sub.CurrentPeriodEnd))
}
