package main

import (
	"context"
	"log"
	"time"

	"tubelens-api/config"
	"tubelens-api/database"
	adminapi "tubelens-api/internal/api/admin"
	analysesapi "tubelens-api/internal/api/analyses"
	authapi "tubelens-api/internal/api/auth"
	"tubelens-api/internal/api/billing"
	stripewebhooks "tubelens-api/internal/api/stripewebhook"
	"tubelens-api/internal/api/users"
	"tubelens-api/internal/app/accounts"
	"tubelens-api/internal/app/analyzer"
	routes "tubelens-api/internal/app/http"
	"tubelens-api/internal/app/http/middleware"
	"tubelens-api/internal/domain/plans"
	stripeinfra "tubelens-api/internal/infra/stripe"
	"tubelens-api/internal/infra/summarizer"
	"tubelens-api/internal/infra/youtube"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75/client"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	return logger
}

func main() {
	cfg := config.LoadEnv()
	logger := newLogger(cfg)
	defer logger.Sync() //nolint:errcheck

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.DBURL, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	ctx := context.Background()

	yt, err := youtube.NewClient(ctx, cfg.YouTubeAPIKey, logger)
	if err != nil {
		logger.Fatal("youtube client", zap.Error(err))
	}

	var sum summarizer.Summarizer = summarizer.Metadata{}
	if cfg.GeminiAPIKey != "" {
		gem, err := summarizer.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			logger.Fatal("gemini summarizer", zap.Error(err))
		}
		sum = gem
		logger.Info("using gemini summarizer", zap.String("model", cfg.GeminiModel))
	}

	var sc *client.API
	if cfg.StripeSecretKey != "" {
		sc = client.New(cfg.StripeSecretKey, nil)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, billing endpoints disabled")
	}

	caps := plans.Caps{Free: cfg.PlanLimitFree, Basic: cfg.PlanLimitBasic, Pro: cfg.PlanLimitPro}
	prices := stripeinfra.PriceMap{Basic: cfg.StripePriceBasic, Pro: cfg.StripePricePro}

	accountSvc := accounts.NewService(db, caps, cfg.UsagePeriod, logger)
	analyzerSvc := analyzer.NewService(db, yt, sum, analyzer.Options{
		Caps:            caps,
		UsagePeriod:     cfg.UsagePeriod,
		UpstreamTimeout: cfg.UpstreamTimeout,
		MaxComments:     cfg.MaxComments,
		MaxQuestions:    cfg.MaxQuestions,
	}, logger)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger.Named("http")))

	// CORS must be registered before the routes
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Handlers{
		JWTSecret: cfg.JWTSecret,
		Auth:      authapi.NewHandler(db, accountSvc, cfg, logger),
		Users:     users.NewHandler(db, accountSvc, analyzerSvc, logger),
		Analyses:  analysesapi.NewHandler(analyzerSvc, logger),
		Billing: billing.NewHandler(db, sc, billing.Options{
			Prices: prices,
			Caps:   caps,
			AppURL: cfg.AppURL,
			AppEnv: cfg.AppEnv,
		}, logger),
		Webhook: stripewebhooks.NewHandler(db, sc, cfg.StripeWebhookSecret, prices, logger),
		Admin:   adminapi.NewHandler(db, logger),
	})

	logger.Info("listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
