package admin

import (
	"errors"
	"net/http"
	"time"

	"tubelens-api/internal/domain/analysis"
	"tubelens-api/internal/domain/billing"
	"tubelens-api/internal/domain/subscriptions"
	"tubelens-api/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewHandler(db *gorm.DB, logger *zap.Logger) *Handler {
	return &Handler{db: db, logger: logger.Named("admin"), now: time.Now}
}

type AdminUser struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	AuthProvider     string     `json:"auth_provider"`
	IsActive         bool       `json:"is_active"`
	IsStaff          bool       `json:"is_staff"`
	Plan             *string    `json:"plan,omitempty"`
	Status           *string    `json:"status,omitempty"`
	StripeCustomerID *string    `json:"stripe_customer_id,omitempty"`
	StripeSubID      *string    `json:"stripe_subscription_id,omitempty"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type AdminUsage struct {
	AnalysesUsed  int       `json:"analyses_used"`
	AnalysesLimit int       `json:"analyses_limit"`
	ResetAt       time.Time `json:"reset_at"`
}

type AdminAnalysis struct {
	ID          uuid.UUID `json:"id"`
	YoutubeType string    `json:"youtube_type"`
	YoutubeID   string    `json:"youtube_id"`
	Title       string    `json:"title"`
	CreatedAt   string    `json:"created_at"`
}

type AdminPayment struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Plan       string    `json:"plan"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	Status     string    `json:"status"`
	InvoiceID  string    `json:"invoice_id"`
	ReceiptURL *string   `json:"receipt_url,omitempty"`
	CreatedAt  string    `json:"created_at"`
}

type AdminStats struct {
	TotalUsers     int            `json:"total_users"`
	TotalAnalyses  int            `json:"total_analyses"`
	RecentAnalyses int            `json:"recent_analyses"`
	TotalRevenue   float64        `json:"total_revenue"`
	RecentRevenue  float64        `json:"recent_revenue"`
	UsersPerPlan   map[string]int `json:"users_per_plan"`
}

func toAdminUser(u users.User, sub *subscriptions.Subscription) AdminUser {
	out := AdminUser{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		AuthProvider: u.AuthProvider,
		IsActive:     u.IsActive,
		IsStaff:      u.IsStaff,
		CreatedAt:    u.CreatedAt,
	}
	if sub != nil {
		plan, status := sub.Plan, string(sub.Status)
		out.Plan = &plan
		out.Status = &status
		out.StripeCustomerID = sub.StripeCustomerID
		out.StripeSubID = sub.StripeSubscriptionID
		out.CurrentPeriodEnd = sub.CurrentPeriodEnd
	}
	return out
}

// GET /admin/users
func (h *Handler) ListAllUsers(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())

	var all []users.User
	if err := db.Order("created_at DESC").Find(&all).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	var subs []subscriptions.Subscription
	if err := db.Find(&subs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscriptions"})
		return
	}
	byUser := make(map[uuid.UUID]*subscriptions.Subscription, len(subs))
	for i := range subs {
		byUser[subs[i].UserID] = &subs[i]
	}

	adminUsers := make([]AdminUser, 0, len(all))
	for _, u := range all {
		adminUsers = append(adminUsers, toAdminUser(u, byUser[u.ID]))
	}

	c.JSON(http.StatusOK, adminUsers)
}

// GET /admin/payments
func (h *Handler) ListAllPayments(c *gin.Context) {
	var payments []billing.Payment
	if err := h.db.WithContext(c.Request.Context()).
		Preload("User").
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	result := make([]AdminPayment, 0, len(payments))
	for _, p := range payments {
		result = append(result, AdminPayment{
			ID:         p.ID,
			Email:      p.User.Email,
			Plan:       p.Plan,
			Amount:     float64(p.AmountCents) / 100.0,
			Currency:   p.Currency,
			Status:     p.Status,
			InvoiceID:  p.StripeInvoiceID,
			ReceiptURL: p.ReceiptURL,
			CreatedAt:  p.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	c.JSON(http.StatusOK, result)
}

// GET /admin/stats
func (h *Handler) GetAdminStats(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())
	var stats AdminStats

	var totalUsers, totalAnalyses, recentAnalyses int64
	if err := db.Model(&users.User{}).Count(&totalUsers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}
	if err := db.Model(&analysis.YoutubeAnalysis{}).Count(&totalAnalyses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count analyses"})
		return
	}
	thirtyDaysAgo := h.now().AddDate(0, 0, -30)
	if err := db.Model(&analysis.YoutubeAnalysis{}).
		Where("created_at >= ?", thirtyDaysAgo).
		Count(&recentAnalyses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count analyses"})
		return
	}

	var totalCents, recentCents int64
	if err := db.Model(&billing.Payment{}).
		Where("status = ?", "paid").
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&totalCents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sum payments"})
		return
	}
	if err := db.Model(&billing.Payment{}).
		Where("status = ? AND created_at >= ?", "paid", thirtyDaysAgo).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&recentCents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sum payments"})
		return
	}

	stats.TotalUsers = int(totalUsers)
	stats.TotalRevenue = float64(totalCents) / 100.0
	stats.RecentRevenue = float64(recentCents) / 100.0
	stats.TotalAnalyses = int(totalAnalyses)
	stats.RecentAnalyses = int(recentAnalyses)

	type planCount struct {
		Plan  *string
		Count int
	}
	var counts []planCount
	if err := db.
		Table("users").
		Select("subscriptions.plan AS plan, COUNT(users.id) AS count").
		Joins("LEFT JOIN subscriptions ON subscriptions.user_id = users.id").
		Group("subscriptions.plan").
		Scan(&counts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to group users"})
		return
	}

	stats.UsersPerPlan = map[string]int{}
	for _, pc := range counts {
		name := "none"
		if pc.Plan != nil {
			name = *pc.Plan
		}
		stats.UsersPerPlan[name] = pc.Count
	}

	c.JSON(http.StatusOK, stats)
}

// GET /admin/user/:id
func (h *Handler) GetUserDetails(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	db := h.db.WithContext(c.Request.Context())

	var user users.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	var sub *subscriptions.Subscription
	var subRow subscriptions.Subscription
	if res := db.Where("user_id = ?", userID).Limit(1).Find(&subRow); res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	} else if res.RowsAffected > 0 {
		sub = &subRow
	}

	var usage *AdminUsage
	var limit subscriptions.UsageLimit
	if res := db.Where("user_id = ?", userID).Limit(1).Find(&limit); res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load usage"})
		return
	} else if res.RowsAffected > 0 {
		usage = &AdminUsage{
			AnalysesUsed:  limit.AnalysesUsed,
			AnalysesLimit: limit.AnalysesLimit,
			ResetAt:       limit.ResetAt,
		}
	}

	var rows []analysis.YoutubeAnalysis
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analyses"})
		return
	}
	analyses := make([]AdminAnalysis, 0, len(rows))
	for _, a := range rows {
		analyses = append(analyses, AdminAnalysis{
			ID:          a.ID,
			YoutubeType: string(a.YoutubeType),
			YoutubeID:   a.YoutubeID,
			Title:       a.Title,
			CreatedAt:   a.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     toAdminUser(user, sub),
		"usage":    usage,
		"analyses": analyses,
	})
}
