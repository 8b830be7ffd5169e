package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ai-blog-writer/internal/models"
	"github.com/ai-blog-writer/internal/repository"
	"github.com/ai-blog-writer/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// tagService is the concrete implementation of TagService
type tagService struct {
	tags repository.TagRepository
	log  zerolog.Logger
}

func newTagService(tags repository.TagRepository, log zerolog.Logger) *tagService {
	return &tagService{
		tags: tags,
		log:  log.With().Str("service", "tag").Logger(),
	}
}

// Create stores a new tag. The slug is derived from the name when omitted;
// a name or slug already in use is a validation error.
func (s *tagService) Create(ctx context.Context, in *models.TagInput) (*models.Tag, error) {
	name := strings.TrimSpace(in.Name)
	existing, err := s.tags.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup tag: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, validation.NewFieldError("name", "tag already exists"))
	}

	slug, err := tagSlug(name, in.Slug)
	if err != nil {
		return nil, err
	}
	existing, err = s.tags.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("lookup tag slug: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, validation.NewFieldError("slug", "slug already used by tag "+existing.Name))
	}

	tag := &models.Tag{ID: uuid.New().String(), Name: name, Slug: slug, Category: strings.TrimSpace(in.Category)}
	if err := s.tags.Create(ctx, tag); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %w", ErrValidation, validation.NewFieldError("name", "tag already exists"))
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return tag, nil
}

func tagSlug(name, slug string) (string, error) {
	if slug == "" {
		slug = validation.Slugify(name)
	}
	if !validation.IsValidSlug(slug) {
		return "", fmt.Errorf("%w: %w", ErrValidation, validation.NewFieldError("slug", "could not derive a slug from name"))
	}
	return slug, nil
}

// Get returns a tag or ErrNotFound
func (s *tagService) Get(ctx context.Context, id string) (*models.Tag, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	if tag == nil {
		return nil, ErrNotFound
	}
	return tag, nil
}

// List returns tags by usage, most used first
func (s *tagService) List(ctx context.Context, category string, limit int) ([]*models.Tag, error) {
	return s.tags.List(ctx, strings.TrimSpace(category), limit)
}

// ensure returns the tag called name, or the tag sharing its slug, creating
// one when neither exists
func (s *tagService) ensure(ctx context.Context, name, category string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	tag, err := s.tags.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup tag: %w", err)
	}
	if tag != nil {
		return tag, nil
	}

	slug, err := tagSlug(name, "")
	if err != nil {
		return nil, err
	}
	tag, err = s.tags.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("lookup tag slug: %w", err)
	}
	if tag != nil {
		return tag, nil
	}

	tag, err = s.Create(ctx, &models.TagInput{Name: name, Slug: slug, Category: category})
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("tag_id", tag.ID).Str("name", name).Msg("Tag created on first use")
	return tag, nil
}
