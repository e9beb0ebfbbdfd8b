package routes

import (
	"net/http"

	adminapi "tubelens-api/internal/api/admin"
	analysesapi "tubelens-api/internal/api/analyses"
	authapi "tubelens-api/internal/api/auth"
	"tubelens-api/internal/api/billing"
	stripewebhooks "tubelens-api/internal/api/stripewebhook"
	"tubelens-api/internal/api/users"
	"tubelens-api/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	JWTSecret string

	Auth     *authapi.Handler
	Users    *users.Handler
	Analyses *analysesapi.Handler
	Billing  *billing.Handler
	Webhook  *stripewebhooks.Handler
	Admin    *adminapi.Handler
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	// raw body is needed for the signature check, so no sanitizer here
	r.POST("/webhook", h.Webhook.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/register", h.Auth.Register)
	public.POST("/login", h.Auth.Login)
	public.GET("/plans", h.Billing.ListPlans)

	public.GET("/auth/google", h.Auth.GoogleStart)
	public.GET("/auth/google/callback", h.Auth.GoogleCallback)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(h.JWTSecret), middleware.SanitizeAndCleanInputMiddleware())
	auth.GET("/me", h.Users.GetCurrentUser)
	auth.DELETE("/me", h.Users.DeleteCurrentUser)
	auth.POST("/change-password", h.Auth.ChangePassword)

	auth.POST("/analyses", h.Analyses.Create)
	auth.GET("/analyses", h.Analyses.List)
	auth.GET("/analyses/:id", h.Analyses.Get)
	auth.DELETE("/analyses/:id", h.Analyses.Delete)
	auth.POST("/analyses/:id/questions", h.Analyses.AddQuestion)
	auth.PUT("/analyses/:id/questions/:qid", h.Analyses.AnswerQuestion)

	auth.GET("/payments", h.Billing.GetPaymentHistory)
	auth.POST("/create-checkout-session", h.Billing.CreateCheckoutSession)
	auth.POST("/billing-portal", h.Billing.CreateBillingPortal)
	auth.POST("/billing/change-plan", h.Billing.ChangePlan)
	auth.POST("/billing/cancel", h.Billing.CancelSubscription)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(h.JWTSecret), middleware.RequireStaff())
	admin.GET("/users", h.Admin.ListAllUsers)
	admin.GET("/user/:id", h.Admin.GetUserDetails)
	admin.GET("/payments", h.Admin.ListAllPayments)
	admin.GET("/stats", h.Admin.GetAdminStats)
}
