package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ai-blog-writer/internal/config"
	"github.com/ai-blog-writer/internal/demo"
	"github.com/ai-blog-writer/internal/models"
	"github.com/ai-blog-writer/internal/provider"
	"github.com/ai-blog-writer/internal/repository"
	"github.com/rs/zerolog"
)

var (
	// ErrNotFound is returned when the addressed resource does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned for disallowed status changes
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrValidation wraps a *validation.ValidationError for domain rule failures
	ErrValidation = errors.New("validation failed")
)

// TextGenerator is the provider adapter as seen by the generation service
type TextGenerator interface {
	Generate(ctx context.Context, p provider.Provider, prompt, apiKey string, params provider.Params) (*provider.Result, error)
	Spec(p provider.Provider) (provider.Spec, bool)
}

// GenerationService drafts content through a provider, falling back to demo content
type GenerationService interface {
	CheckKeys() map[string]bool
	GenerateSubKeywords(ctx context.Context, req *models.SubKeywordRequest) (*models.SubKeywordResponse, error)
	GenerateArticle(ctx context.Context, req *models.ArticleRequest) (*models.ArticleResponse, error)
}

// ArticleService defines the interface for article management
type ArticleService interface {
	Create(ctx context.Context, in *models.ArticleInput) (*models.Article, error)
	Get(ctx context.Context, id string) (*models.Article, error)
	List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error)
	Update(ctx context.Context, id string, in *models.ArticleInput) (*models.Article, error)
	Delete(ctx context.Context, id string) error
	AttachTags(ctx context.Context, id string, tags []models.TagAttachment) ([]*models.ArticleTagView, error)
	DetachTag(ctx context.Context, id, tagID string) error
	ListTags(ctx context.Context, id string) ([]*models.ArticleTagView, error)
}

// SeriesService defines the interface for series management
type SeriesService interface {
	Create(ctx context.Context, in *models.SeriesInput) (*models.Series, error)
	Get(ctx context.Context, id string) (*models.Series, error)
	List(ctx context.Context, status models.SeriesStatus, limit, offset int) ([]*models.Series, error)
	Update(ctx context.Context, id string, in *models.SeriesInput) (*models.Series, error)
	Delete(ctx context.Context, id string) error
	Articles(ctx context.Context, id string) ([]*models.Article, error)
}

// ScheduleService defines the interface for publication scheduling
type ScheduleService interface {
	Create(ctx context.Context, in *models.ScheduleInput) (*models.Schedule, error)
	Get(ctx context.Context, id string) (*models.Schedule, error)
	List(ctx context.Context, filter models.ScheduleFilter) ([]*models.Schedule, error)
	UpdateStatus(ctx context.Context, id string, in *models.ScheduleStatusInput) (*models.ScheduleTransition, error)
	Reschedule(ctx context.Context, id string, in *models.RescheduleInput) (*models.Schedule, error)
	Delete(ctx context.Context, id string) error
	StatusLogs(ctx context.Context, id string) ([]*models.ScheduleStatusLog, error)
	StreamAll(ctx context.Context, callback func(*models.Schedule) error) error
}

// ExportService streams the publication calendar to a client
type ExportService interface {
	StreamSchedules(ctx context.Context, w http.ResponseWriter, format string) error
}

// TagService defines the interface for tag management
type TagService interface {
	Create(ctx context.Context, in *models.TagInput) (*models.Tag, error)
	Get(ctx context.Context, id string) (*models.Tag, error)
	List(ctx context.Context, category string, limit int) ([]*models.Tag, error)
}

// AnalyticsService defines the interface for article analytics
type AnalyticsService interface {
	Record(ctx context.Context, articleID string, in *models.AnalyticsInput) (*models.Analytics, error)
	Range(ctx context.Context, articleID string, from, to *time.Time) ([]*models.Analytics, models.AnalyticsSummary, error)
}

// IdeaService defines the interface for the idea backlog
type IdeaService interface {
	Create(ctx context.Context, in *models.IdeaInput) (*models.Idea, error)
	Get(ctx context.Context, id string) (*models.Idea, error)
	List(ctx context.Context, status models.IdeaStatus, limit, offset int) ([]*models.Idea, error)
	Update(ctx context.Context, id string, in *models.IdeaInput) (*models.Idea, error)
	Delete(ctx context.Context, id string) error
	Promote(ctx context.Context, id string) (*models.Idea, *models.Article, error)
}

// StatsService reports row counts per table
type StatsService interface {
	Counts(ctx context.Context) (map[string]int, error)
}

// Services holds all service interfaces
type Services struct {
	Generation GenerationService
	Article    ArticleService
	Series     SeriesService
	Schedule   ScheduleService
	Export     ExportService
	Tag        TagService
	Analytics  AnalyticsService
	Idea       IdeaService
	Stats      StatsService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, gen TextGenerator, cfg *config.Config, log zerolog.Logger) *Services {
	tagSvc := newTagService(repos.Tag, log)
	articleSvc := newArticleService(repos, tagSvc, log)

	return &Services{
		Generation: newGenerationService(gen, demo.MustNew(), articleSvc, &cfg.Providers, log),
		Article:    articleSvc,
		Series:     newSeriesService(repos, log),
		Schedule:   newScheduleService(repos, log),
		Export:     newExportService(repos.Schedule, log),
		Tag:        tagSvc,
		Analytics:  newAnalyticsService(repos, log),
		Idea:       newIdeaService(repos.Idea, articleSvc, log),
		Stats:      newStatsService(repos),
	}
}
