package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ai-blog-writer/internal/models"
	"github.com/ai-blog-writer/internal/repository"
	"github.com/ai-blog-writer/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	articles repository.ArticleRepository
	series   repository.SeriesRepository
	tags     repository.TagRepository
	tagSvc   *tagService
	log      zerolog.Logger
}

func newArticleService(repos *repository.Repositories, tagSvc *tagService, log zerolog.Logger) *articleService {
	return &articleService{
		articles: repos.Article,
		series:   repos.Series,
		tags:     repos.Tag,
		tagSvc:   tagSvc,
		log:      log.With().Str("service", "article").Logger(),
	}
}

// Create stores a new article. A referenced series must exist.
func (s *articleService) Create(ctx context.Context, in *models.ArticleInput) (*models.Article, error) {
	if err := s.checkSeries(ctx, in.SeriesID); err != nil {
		return nil, err
	}

	article := &models.Article{ID: uuid.New().String()}
	applyArticleInput(article, in)
	if article.Status == "" {
		article.Status = models.ArticleStatusDraft
	}
	if article.Status == models.ArticleStatusPublished {
		now := time.Now().UTC()
		article.PublishedAt = &now
	}

	if err := s.articles.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}

	s.log.Info().Str("article_id", article.ID).Str("ai_model", article.AIModel).Msg("Article created")
	return article, nil
}

// Get returns an article or ErrNotFound
func (s *articleService) Get(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return nil, ErrNotFound
	}
	return article, nil
}

// List returns articles matching filter
func (s *articleService) List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, error) {
	return s.articles.List(ctx, filter)
}

// Update replaces the editable fields of an article
func (s *articleService) Update(ctx context.Context, id string, in *models.ArticleInput) (*models.Article, error) {
	article, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkSeries(ctx, in.SeriesID); err != nil {
		return nil, err
	}

	wasPublished := article.Status == models.ArticleStatusPublished
	applyArticleInput(article, in)
	if article.Status == "" {
		article.Status = models.ArticleStatusDraft
	}
	if article.Status == models.ArticleStatusPublished && !wasPublished {
		now := time.Now().UTC()
		article.PublishedAt = &now
	}

	if err := s.articles.Update(ctx, article); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update article: %w", err)
	}
	return article, nil
}

// Delete removes an article together with its tag relations and schedules
func (s *articleService) Delete(ctx context.Context, id string) error {
	if err := s.articles.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete article: %w", err)
	}
	s.log.Info().Str("article_id", id).Msg("Article deleted")
	return nil
}

// AttachTags relates tags to an article. Tags given by name are created on
// first use. Re-attaching an existing relation leaves usage counts alone.
func (s *articleService) AttachTags(ctx context.Context, id string, tags []models.TagAttachment) ([]*models.ArticleTagView, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	for i, att := range tags {
		tag, err := s.resolveTag(ctx, att)
		if err != nil {
			return nil, fmt.Errorf("tag %d: %w", i, err)
		}
		if _, err := s.tags.Attach(ctx, &models.ArticleTag{
			ArticleID:      id,
			TagID:          tag.ID,
			RelevanceScore: att.Relevance,
		}); err != nil {
			return nil, fmt.Errorf("attach tag %s: %w", tag.ID, err)
		}
	}
	return s.tags.ListForArticle(ctx, id)
}

// DetachTag removes one relation
func (s *articleService) DetachTag(ctx context.Context, id, tagID string) error {
	removed, err := s.tags.Detach(ctx, id, tagID)
	if err != nil {
		return fmt.Errorf("detach tag: %w", err)
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

// ListTags returns the tags attached to an article
func (s *articleService) ListTags(ctx context.Context, id string) ([]*models.ArticleTagView, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.tags.ListForArticle(ctx, id)
}

func (s *articleService) resolveTag(ctx context.Context, att models.TagAttachment) (*models.Tag, error) {
	if att.TagID != "" {
		tag, err := s.tags.GetByID(ctx, att.TagID)
		if err != nil {
			return nil, err
		}
		if tag == nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, validation.NewFieldError("tag_id", "tag not found"))
		}
		return tag, nil
	}
	if strings.TrimSpace(att.Name) == "" {
		return nil, fmt.Errorf("%w: %w", ErrValidation, validation.NewFieldError("tags", "each tag needs a tag_id or a name"))
	}
	return s.tagSvc.ensure(ctx, att.Name, att.Category)
}

func (s *articleService) checkSeries(ctx context.Context, seriesID *string) error {
	if seriesID == nil || *seriesID == "" {
		return nil
	}
	exists, err := s.series.Exists(ctx, *seriesID)
	if err != nil {
		return fmt.Errorf("check series: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %w", ErrValidation, validation.NewFieldError("series_id", "series not found"))
	}
	return nil
}

func applyArticleInput(article *models.Article, in *models.ArticleInput) {
	article.Title = strings.TrimSpace(in.Title)
	article.Content = in.Content
	article.Topic = strings.TrimSpace(in.Topic)
	article.Style = in.Style
	article.Audience = in.Audience
	article.Tone = in.Tone
	article.AIModel = strings.ToLower(strings.TrimSpace(in.AIModel))
	article.Keywords = cleanList(in.Keywords)
	article.Status = in.Status
	article.WordCount = models.CountWords(in.Content)
	article.SeriesID = nil
	if in.SeriesID != nil && *in.SeriesID != "" {
		sid := *in.SeriesID
		article.SeriesID = &sid
	}
	article.SeriesOrder = in.SeriesOrder
}

// cleanList trims entries and drops blanks and duplicates
func cleanList(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
