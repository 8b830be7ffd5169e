package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ai-blog-writer/internal/models"
	"github.com/ai-blog-writer/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ideaService is the concrete implementation of IdeaService
type ideaService struct {
	ideas    repository.IdeaRepository
	articles ArticleService
	log      zerolog.Logger
}

func newIdeaService(ideas repository.IdeaRepository, articles ArticleService, log zerolog.Logger) *ideaService {
	return &ideaService{
		ideas:    ideas,
		articles: articles,
		log:      log.With().Str("service", "idea").Logger(),
	}
}

// Create stores a new idea
func (s *ideaService) Create(ctx context.Context, in *models.IdeaInput) (*models.Idea, error) {
	idea := &models.Idea{ID: uuid.New().String(), Status: models.IdeaStatusNew, Priority: "medium"}
	applyIdeaInput(idea, in)

	if err := s.ideas.Create(ctx, idea); err != nil {
		return nil, fmt.Errorf("create idea: %w", err)
	}
	return idea, nil
}

// Get returns an idea or ErrNotFound
func (s *ideaService) Get(ctx context.Context, id string) (*models.Idea, error) {
	idea, err := s.ideas.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get idea: %w", err)
	}
	if idea == nil {
		return nil, ErrNotFound
	}
	return idea, nil
}

// List returns ideas, optionally by status
func (s *ideaService) List(ctx context.Context, status models.IdeaStatus, limit, offset int) ([]*models.Idea, error) {
	return s.ideas.List(ctx, status, limit, offset)
}

// Update edits an idea. Converted ideas are frozen.
func (s *ideaService) Update(ctx context.Context, id string, in *models.IdeaInput) (*models.Idea, error) {
	idea, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if idea.Status == models.IdeaStatusConverted {
		return nil, fmt.Errorf("%w: idea already converted", ErrInvalidTransition)
	}
	applyIdeaInput(idea, in)

	if err := s.ideas.Update(ctx, idea); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update idea: %w", err)
	}
	return idea, nil
}

// Delete removes an idea
func (s *ideaService) Delete(ctx context.Context, id string) error {
	if err := s.ideas.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete idea: %w", err)
	}
	return nil
}

// Promote turns an idea into a draft article and marks the idea converted
func (s *ideaService) Promote(ctx context.Context, id string) (*models.Idea, *models.Article, error) {
	idea, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	switch idea.Status {
	case models.IdeaStatusConverted:
		return nil, nil, fmt.Errorf("%w: idea already converted", ErrInvalidTransition)
	case models.IdeaStatusDiscarded:
		return nil, nil, fmt.Errorf("%w: idea was discarded", ErrInvalidTransition)
	}

	article, err := s.articles.Create(ctx, &models.ArticleInput{
		Title:    idea.Title,
		Content:  idea.Description,
		Topic:    idea.Title,
		Keywords: idea.Keywords,
		Status:   models.ArticleStatusDraft,
	})
	if err != nil {
		return nil, nil, err
	}

	articleID := article.ID
	idea.Status = models.IdeaStatusConverted
	idea.ArticleID = &articleID
	if err := s.ideas.Update(ctx, idea); err != nil {
		return nil, nil, fmt.Errorf("mark idea converted: %w", err)
	}

	s.log.Info().Str("idea_id", idea.ID).Str("article_id", articleID).Msg("Idea promoted to article")
	return idea, article, nil
}

func applyIdeaInput(idea *models.Idea, in *models.IdeaInput) {
	idea.Title = strings.TrimSpace(in.Title)
	idea.Description = in.Description
	idea.Keywords = cleanList(in.Keywords)
	if in.Priority != "" {
		idea.Priority = in.Priority
	}
	if in.Status != "" {
		idea.Status = in.Status
	}
}
