package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ai-blog-writer/internal/models"
	"github.com/ai-blog-writer/internal/repository"
	"github.com/ai-blog-writer/internal/validation"
	"github.com/rs/zerolog"
)

const dayLayout = "2006-01-02"

// analyticsService is the concrete implementation of AnalyticsService
type analyticsService struct {
	analytics repository.AnalyticsRepository
	articles  repository.ArticleRepository
	log       zerolog.Logger
}

func newAnalyticsService(repos *repository.Repositories, log zerolog.Logger) *analyticsService {
	return &analyticsService{
		analytics: repos.Analytics,
		articles:  repos.Article,
		log:       log.With().Str("service", "analytics").Logger(),
	}
}

// Record stores one day of metrics for an article, replacing earlier values
func (s *analyticsService) Record(ctx context.Context, articleID string, in *models.AnalyticsInput) (*models.Analytics, error) {
	if err := s.requireArticle(ctx, articleID); err != nil {
		return nil, err
	}

	day, err := time.Parse(dayLayout, in.Day)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, validation.NewFieldError("day", "day must match 2006-01-02"))
	}

	row := &models.Analytics{
		ArticleID:      articleID,
		Day:            day,
		Views:          in.Views,
		Likes:          in.Likes,
		Comments:       in.Comments,
		Shares:         in.Shares,
		AvgReadSeconds: in.AvgReadSeconds,
	}
	if err := s.analytics.Upsert(ctx, row); err != nil {
		return nil, fmt.Errorf("record analytics: %w", err)
	}
	return row, nil
}

// Range returns daily rows within [from, to] and their totals
func (s *analyticsService) Range(ctx context.Context, articleID string, from, to *time.Time) ([]*models.Analytics, models.AnalyticsSummary, error) {
	if err := s.requireArticle(ctx, articleID); err != nil {
		return nil, models.AnalyticsSummary{}, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, models.AnalyticsSummary{}, fmt.Errorf("%w: %w", ErrValidation, validation.NewFieldError("to", "to must not be before from"))
	}

	rows, err := s.analytics.ListRange(ctx, articleID, from, to)
	if err != nil {
		return nil, models.AnalyticsSummary{}, fmt.Errorf("list analytics: %w", err)
	}
	return rows, models.Summarize(articleID, rows), nil
}

func (s *analyticsService) requireArticle(ctx context.Context, articleID string) error {
	exists, err := s.articles.Exists(ctx, articleID)
	if err != nil {
		return fmt.Errorf("check article: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}
