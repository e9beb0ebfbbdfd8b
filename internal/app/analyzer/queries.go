package analyzer

import (
	"context"
	"errors"
	"strings"

	"tubelens-api/internal/domain/analysis"
	"tubelens-api/internal/domain/plans"
	"tubelens-api/internal/domain/subscriptions"
	"tubelens-api/internal/domain/usage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrAnalysisNotFound is returned for unknown ids and for analyses owned by someone else.
var ErrAnalysisNotFound = errors.New("analysis not found")

// UsageSnapshot is the counter as the next request would see it.
type UsageSnapshot struct {
	subscriptions.UsageLimit
	Tier string
}

func (s *Service) Usage(ctx context.Context, userID uuid.UUID) (UsageSnapshot, error) {
	now := s.now()
	db := s.db.WithContext(ctx)

	var limit subscriptions.UsageLimit
	err := db.Where("user_id = ?", userID).First(&limit).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		limit = subscriptions.UsageLimit{UserID: userID, ResetAt: now.UTC().Add(s.opts.UsagePeriod)}
	case err != nil:
		return UsageSnapshot{}, &StorageError{Op: "load usage", Err: err}
	}

	sub, err := loadSubscription(db, userID)
	if err != nil {
		return UsageSnapshot{}, &StorageError{Op: "load subscription", Err: err}
	}

	tier := plans.EffectiveTier(now, sub)
	limit = usage.Effective(now, limit, s.opts.UsagePeriod)
	limit.AnalysesLimit = s.opts.Caps.For(tier)
	return UsageSnapshot{UsageLimit: limit, Tier: tier}, nil
}

func (s *Service) ListAnalyses(ctx context.Context, userID uuid.UUID) ([]analysis.YoutubeAnalysis, error) {
	var out []analysis.YoutubeAnalysis
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, &StorageError{Op: "list analyses", Err: err}
	}
	return out, nil
}

func (s *Service) GetAnalysis(ctx context.Context, userID, analysisID uuid.UUID) (*analysis.YoutubeAnalysis, error) {
	var a analysis.YoutubeAnalysis
	err := s.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ? AND user_id = ?", analysisID, userID).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAnalysisNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "get analysis", Err: err}
	}
	return &a, nil
}

// DeleteAnalysis removes the analysis and its questions. Usage already spent is not refunded.
func (s *Service) DeleteAnalysis(ctx context.Context, userID, analysisID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", analysisID, userID).Limit(1).Find(&analysis.YoutubeAnalysis{})
		if res.Error != nil {
			return &StorageError{Op: "find analysis", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			return ErrAnalysisNotFound
		}
		if err := tx.Where("analysis_id = ?", analysisID).Delete(&analysis.AnalysisQuestion{}).Error; err != nil {
			return &StorageError{Op: "delete questions", Err: err}
		}
		if err := tx.Where("id = ?", analysisID).Delete(&analysis.YoutubeAnalysis{}).Error; err != nil {
			return &StorageError{Op: "delete analysis", Err: err}
		}
		return nil
	})
}

func (s *Service) AddQuestion(ctx context.Context, userID, analysisID uuid.UUID, question string) (*analysis.AnalysisQuestion, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &ValidationError{Field: "question", Message: "is required"}
	}
	if _, err := s.owned(ctx, userID, analysisID); err != nil {
		return nil, err
	}

	q := analysis.AnalysisQuestion{AnalysisID: analysisID, Question: truncateRunes(question, maxQuestionLen)}
	if err := s.db.WithContext(ctx).Create(&q).Error; err != nil {
		return nil, &StorageError{Op: "create question", Err: err}
	}
	return &q, nil
}

func (s *Service) AnswerQuestion(ctx context.Context, userID, analysisID, questionID uuid.UUID, answer string) (*analysis.AnalysisQuestion, error) {
	if _, err := s.owned(ctx, userID, analysisID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var q analysis.AnalysisQuestion
	err := db.Where("id = ? AND analysis_id = ?", questionID, analysisID).First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAnalysisNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "get question", Err: err}
	}

	q.Answer = strings.TrimSpace(answer)
	if err := db.Model(&q).Update("answer", q.Answer).Error; err != nil {
		return nil, &StorageError{Op: "answer question", Err: err}
	}
	return &q, nil
}

func (s *Service) owned(ctx context.Context, userID, analysisID uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&analysis.YoutubeAnalysis{}).
		Where("id = ? AND user_id = ?", analysisID, userID).
		Count(&count).Error; err != nil {
		return false, &StorageError{Op: "check owner", Err: err}
	}
	if count == 0 {
		return false, ErrAnalysisNotFound
	}
	return true, nil
}
