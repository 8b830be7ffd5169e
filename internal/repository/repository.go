package repository

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/ai-blog-writer/internal/database"
	"github.com/ai-blog-writer/internal/models"
)

// ErrNotFound is returned by writes that target a missing row. Reads keep
// returning (nil, nil) for a missing row.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a write violates a unique constraint
var ErrDuplicate = errors.New("duplicate record")

// ErrStatusConflict is returned when the locked row's status no longer
// allows the requested change.
var ErrStatusConflict = errors.New("status changed concurrently")

// psql builds queries with PostgreSQL $n placeholders
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func clampLimit(limit int) uint64 {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return uint64(limit)
}

func clampOffset(offset int) uint64 {
	if offset < 0 {
		return 0
	}
	return uint64(offset)
}

// ArticleRepository defines the interface for article data operations.
// Create, Update and Delete keep series.current_articles in step; Delete
// also releases the tag usage held by the article's relations.
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error)
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// SeriesRepository defines the interface for series data operations
type SeriesRepository interface {
	Create(ctx context.Context, series *models.Series) error
	GetByID(ctx context.Context, id string) (*models.Series, error)
	List(ctx context.Context, status models.SeriesStatus, limit, offset int) ([]*models.Series, error)
	Update(ctx context.Context, series *models.Series) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// TagRepository defines the interface for tag data operations.
// Attach increments the tag's usage_count and stamps last_used_at; Detach
// reverses the increment.
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, id string) (*models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tag, error)
	List(ctx context.Context, category string, limit int) ([]*models.Tag, error)
	Attach(ctx context.Context, rel *models.ArticleTag) (bool, error)
	Detach(ctx context.Context, articleID, tagID string) (bool, error)
	ListForArticle(ctx context.Context, articleID string) ([]*models.ArticleTagView, error)
	Count(ctx context.Context) (int, error)
}

// ScheduleRepository defines the interface for scheduled publication data
// operations. Update refreshes updated_at and appends a status log row when
// the status changes.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *models.Schedule) error
	GetByID(ctx context.Context, id string) (*models.Schedule, error)
	List(ctx context.Context, filter models.ScheduleFilter) ([]*models.Schedule, error)
	Update(ctx context.Context, schedule *models.Schedule) (bool, error)
	Delete(ctx context.Context, id string) error
	StatusLogs(ctx context.Context, scheduleID string) ([]*models.ScheduleStatusLog, error)
	StreamAll(ctx context.Context, callback func(*models.Schedule) error) error
	Count(ctx context.Context) (int, error)
}

// AnalyticsRepository defines the interface for article analytics
type AnalyticsRepository interface {
	Upsert(ctx context.Context, row *models.Analytics) error
	ListRange(ctx context.Context, articleID string, from, to *time.Time) ([]*models.Analytics, error)
	Count(ctx context.Context) (int, error)
}

// IdeaRepository defines the interface for idea data operations
type IdeaRepository interface {
	Create(ctx context.Context, idea *models.Idea) error
	GetByID(ctx context.Context, id string) (*models.Idea, error)
	List(ctx context.Context, status models.IdeaStatus, limit, offset int) ([]*models.Idea, error)
	Update(ctx context.Context, idea *models.Idea) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article   ArticleRepository
	Series    SeriesRepository
	Tag       TagRepository
	Schedule  ScheduleRepository
	Analytics AnalyticsRepository
	Idea      IdeaRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Article:   NewArticleRepo(db),
		Series:    NewSeriesRepo(db),
		Tag:       NewTagRepo(db),
		Schedule:  NewScheduleRepo(db),
		Analytics: NewAnalyticsRepo(db),
		Idea:      NewIdeaRepo(db),
	}
}
