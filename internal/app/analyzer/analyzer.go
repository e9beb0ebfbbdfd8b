// Package analyzer enforces the usage policy and turns a YouTube identifier into a
// stored analysis.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tubelens-api/internal/domain/analysis"
	"tubelens-api/internal/domain/plans"
	"tubelens-api/internal/domain/subscriptions"
	"tubelens-api/internal/domain/usage"
	"tubelens-api/internal/domain/users"
	"tubelens-api/internal/infra/summarizer"
	"tubelens-api/internal/infra/youtube"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// YouTube is the part of the YouTube client the analyzer calls.
type YouTube interface {
	GetVideoDetails(ctx context.Context, videoID string) (*youtube.VideoDetails, error)
	GetChannelDetails(ctx context.Context, channelID string) (*youtube.ChannelDetails, error)
	GetComments(ctx context.Context, videoID string, maxResults int) ([]youtube.Comment, error)
}

type Options struct {
	Caps            plans.Caps
	UsagePeriod     time.Duration
	UpstreamTimeout time.Duration
	MaxComments     int
	MaxQuestions    int
}

type Service struct {
	db         *gorm.DB
	yt         YouTube
	summarizer summarizer.Summarizer
	opts       Options
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(db *gorm.DB, yt YouTube, sum summarizer.Summarizer, opts Options, logger *zap.Logger) *Service {
	if sum == nil {
		sum = summarizer.Metadata{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:         db,
		yt:         yt,
		summarizer: sum,
		opts:       opts,
		logger:     logger.Named("analyzer"),
		now:        time.Now,
	}
}

type Request struct {
	UserID      uuid.UUID
	YoutubeType analysis.YoutubeType
	YoutubeID   string
}

func (r *Request) normalize() error {
	r.YoutubeType = analysis.YoutubeType(strings.ToLower(strings.TrimSpace(string(r.YoutubeType))))
	r.YoutubeID = strings.TrimSpace(r.YoutubeID)

	if r.UserID == uuid.Nil {
		return &ValidationError{Field: "user_id", Message: "is required"}
	}
	if !r.YoutubeType.Valid() {
		return &ValidationError{Field: "youtube_type", Message: `must be "video" or "channel"`}
	}
	if r.YoutubeID == "" {
		return &ValidationError{Field: "youtube_id", Message: "is required"}
	}
	if len(r.YoutubeID) > 255 {
		return &ValidationError{Field: "youtube_id", Message: "must be at most 255 characters"}
	}
	return nil
}

type Result struct {
	Analysis analysis.YoutubeAnalysis
	Usage    subscriptions.UsageLimit
}

// CreateAnalysis checks the caller's quota, fetches the resource from YouTube, summarizes
// it and stores the analysis together with the usage increment and derived questions.
// Nothing is written unless every step succeeds.
func (s *Service) CreateAnalysis(ctx context.Context, req Request) (res *Result, err error) {
	if err := req.normalize(); err != nil {
		observe("invalid", err)
		return nil, err
	}
	defer func() { observe(string(req.YoutubeType), err) }()

	log := s.logger.With(
		zap.String("user_id", req.UserID.String()),
		zap.String("youtube_type", string(req.YoutubeType)),
		zap.String("youtube_id", req.YoutubeID),
	)

	if err := s.precheckQuota(ctx, req.UserID); err != nil {
		log.Info("analysis rejected before upstream call", zap.Error(err))
		return nil, err
	}

	in, err := s.fetch(ctx, req)
	if err != nil {
		log.Warn("youtube fetch failed", zap.Error(err))
		return nil, err
	}

	summary, err := s.summarize(ctx, in)
	if err != nil {
		log.Warn("summarize failed", zap.Error(err))
		return nil, err
	}

	questions := questionsFromComments(in.Comments, s.opts.MaxQuestions)

	res, err = s.persist(ctx, req, in.Title(), summary, questions)
	if err != nil {
		log.Warn("analysis not stored", zap.Error(err))
		return nil, err
	}

	log.Info("analysis created",
		zap.String("analysis_id", res.Analysis.ID.String()),
		zap.Int("questions", len(res.Analysis.Questions)),
		zap.Int("analyses_used", res.Usage.AnalysesUsed),
		zap.Int("analyses_limit", res.Usage.AnalysesLimit),
	)
	return res, nil
}

// precheckQuota rejects a request that cannot fit before any upstream call is made.
// persist repeats the check under a row lock; this read only saves the upstream quota.
func (s *Service) precheckQuota(ctx context.Context, userID uuid.UUID) error {
	if err := checkAccount(s.db.WithContext(ctx), userID); err != nil {
		return err
	}
	snap, err := s.Usage(ctx, userID)
	if err != nil {
		return err
	}
	if usage.AtCap(snap.UsageLimit, snap.AnalysesLimit) {
		return &QuotaExceededError{Limit: snap.AnalysesLimit, Used: snap.AnalysesUsed, ResetAt: snap.ResetAt}
	}
	return nil
}

func (s *Service) fetch(ctx context.Context, req Request) (summarizer.Input, error) {
	if s.opts.UpstreamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.UpstreamTimeout)
		defer cancel()
	}

	var in summarizer.Input
	switch req.YoutubeType {
	case analysis.TypeVideo:
		video, err := s.yt.GetVideoDetails(ctx, req.YoutubeID)
		if err != nil {
			return in, upstreamError(req, err)
		}
		comments, err := s.yt.GetComments(ctx, req.YoutubeID, s.opts.MaxComments)
		if err != nil {
			return in, upstreamError(req, err)
		}
		in.Video, in.Comments = video, comments
	case analysis.TypeChannel:
		channel, err := s.yt.GetChannelDetails(ctx, req.YoutubeID)
		if err != nil {
			return in, upstreamError(req, err)
		}
		in.Channel = channel
	}
	return in, nil
}

func upstreamError(req Request, err error) error {
	if errors.Is(err, youtube.ErrNotFound) {
		return fmt.Errorf("%w: %s %q", ErrUpstreamNotFound, req.YoutubeType, req.YoutubeID)
	}
	return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
}

func (s *Service) summarize(ctx context.Context, in summarizer.Input) (string, error) {
	if s.opts.UpstreamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.UpstreamTimeout)
		defer cancel()
	}

	summary, err := s.summarizer.Summarize(ctx, in)
	if err != nil {
		return "", fmt.Errorf("%w: summarizer: %w", ErrUpstreamUnavailable, err)
	}
	if strings.TrimSpace(summary) == "" {
		return summarizer.Metadata{}.Summarize(ctx, in)
	}
	return summary, nil
}

func (s *Service) persist(ctx context.Context, req Request, title, summary string, questions []string) (*Result, error) {
	now := s.now()
	var out Result

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkAccount(tx, req.UserID); err != nil {
			return err
		}
		limit, err := s.lockUsage(tx, req.UserID, now)
		if err != nil {
			return &StorageError{Op: "lock usage", Err: err}
		}
		sub, err := loadSubscription(tx, req.UserID)
		if err != nil {
			return &StorageError{Op: "load subscription", Err: err}
		}
		limitCap := s.opts.Caps.For(plans.EffectiveTier(now, sub))

		if usage.ResetDue(now, limit) {
			next := usage.NextReset(now, limit.ResetAt, s.opts.UsagePeriod)
			if err := tx.Model(&subscriptions.UsageLimit{}).
				Where("id = ?", limit.ID).
				Updates(map[string]interface{}{"analyses_used": 0, "reset_at": next}).Error; err != nil {
				return &StorageError{Op: "reset usage", Err: err}
			}
			limit.AnalysesUsed, limit.ResetAt = 0, next
		}

		// compare-and-swap: only one request can take the last slot
		upd := tx.Model(&subscriptions.UsageLimit{}).
			Where("id = ? AND analyses_used < ?", limit.ID, limitCap).
			Updates(map[string]interface{}{
				"analyses_used":  gorm.Expr("analyses_used + ?", 1),
				"analyses_limit": limitCap,
			})
		if upd.Error != nil {
			return &StorageError{Op: "increment usage", Err: upd.Error}
		}
		if upd.RowsAffected == 0 {
			return &QuotaExceededError{Limit: limitCap, Used: limit.AnalysesUsed, ResetAt: limit.ResetAt}
		}
		limit.AnalysesUsed++
		limit.AnalysesLimit = limitCap

		rec := analysis.YoutubeAnalysis{
			UserID:      req.UserID,
			YoutubeType: req.YoutubeType,
			YoutubeID:   req.YoutubeID,
			Title:       truncateRunes(title, 255),
			Summary:     summary,
		}
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return &StorageError{Op: "create analysis", Err: err}
		}

		if len(questions) > 0 {
			rows := make([]analysis.AnalysisQuestion, 0, len(questions))
			for _, q := range questions {
				rows = append(rows, analysis.AnalysisQuestion{AnalysisID: rec.ID, Question: q})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return &StorageError{Op: "create questions", Err: err}
			}
			rec.Questions = rows
		}

		out = Result{Analysis: rec, Usage: limit}
		return nil
	})
	if err != nil {
		var quota *QuotaExceededError
		var storage *StorageError
		if errors.As(err, &quota) || errors.As(err, &storage) || errors.Is(err, ErrAccountInactive) {
			return nil, err
		}
		// commit failures surface here
		return nil, &StorageError{Op: "commit", Err: err}
	}
	return &out, nil
}

// lockUsage reads the caller's counter with a row lock, creating it on first use.
func (s *Service) lockUsage(tx *gorm.DB, userID uuid.UUID, now time.Time) (subscriptions.UsageLimit, error) {
	var limit subscriptions.UsageLimit
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&limit).Error
	if err == nil {
		return limit, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return limit, err
	}

	limit = subscriptions.UsageLimit{
		UserID:        userID,
		AnalysesLimit: s.opts.Caps.For(plans.TierFree),
		ResetAt:       now.UTC().Add(s.opts.UsagePeriod),
	}
	if err := tx.Omit(clause.Associations).Create(&limit).Error; err != nil {
		return limit, err
	}
	return limit, nil
}

// checkAccount rejects callers whose user row is gone or deactivated. A valid token
// alone does not grant quota.
func checkAccount(db *gorm.DB, userID uuid.UUID) error {
	var u users.User
	err := db.Select("id", "is_active").Where("id = ?", userID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAccountInactive
	}
	if err != nil {
		return &StorageError{Op: "load account", Err: err}
	}
	if !u.IsActive {
		return ErrAccountInactive
	}
	return nil
}

func loadSubscription(db *gorm.DB, userID uuid.UUID) (*subscriptions.Subscription, error) {
	var sub subscriptions.Subscription
	err := db.Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
