package database

import (
	"fmt"

	"tubelens-api/internal/domain/analysis"
	"tubelens-api/internal/domain/billing"
	"tubelens-api/internal/domain/subscriptions"
	"tubelens-api/internal/domain/users"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"moul.io/zapgorm2"
)

// Open connects to Postgres and routes gorm's logging through zap.
func Open(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: NewGormLogger(logger),
		// unique violations come back as gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

func NewGormLogger(logger *zap.Logger) zapgorm2.Logger {
	l := zapgorm2.New(logger.Named("gorm"))
	l.IgnoreRecordNotFoundError = true
	return l
}

// Migrate creates or updates every table the service owns. Users go first so the
// foreign keys of the dependent tables resolve.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&users.User{},
		&subscriptions.Subscription{},
		&subscriptions.UsageLimit{},
		&analysis.YoutubeAnalysis{},
		&analysis.AnalysisQuestion{},
		&billing.Payment{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
