package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ai-blog-writer/internal/config"
	"github.com/ai-blog-writer/internal/demo"
	"github.com/ai-blog-writer/internal/metrics"
	"github.com/ai-blog-writer/internal/models"
	"github.com/ai-blog-writer/internal/provider"
	"github.com/ai-blog-writer/internal/validation"
	"github.com/rs/zerolog"
)

const (
	kindSubKeywords = "subkeywords"
	kindArticle     = "article"
)

// generationService is the concrete implementation of GenerationService
type generationService struct {
	gen      TextGenerator
	demo     *demo.Generator
	articles ArticleService
	cfg      *config.ProvidersConfig
	log      zerolog.Logger
}

func newGenerationService(gen TextGenerator, d *demo.Generator, articles ArticleService, cfg *config.ProvidersConfig, log zerolog.Logger) *generationService {
	return &generationService{
		gen:      gen,
		demo:     d,
		articles: articles,
		cfg:      cfg,
		log:      log.With().Str("service", "generation").Logger(),
	}
}

// CheckKeys reports which providers have an API key configured
func (s *generationService) CheckKeys() map[string]bool {
	keys := make(map[string]bool, len(provider.All))
	for _, p := range provider.All {
		keys[p.String()] = strings.TrimSpace(s.cfg.APIKey(p.String())) != ""
	}
	return keys
}

// GenerateSubKeywords asks the selected provider for related keywords
func (s *generationService) GenerateSubKeywords(ctx context.Context, req *models.SubKeywordRequest) (*models.SubKeywordResponse, error) {
	p, err := s.resolveProvider(req.AIModel)
	if err != nil {
		return nil, err
	}

	resp := &models.SubKeywordResponse{Success: true, Provider: p.String(), Model: s.model(p)}

	res, reason := s.call(ctx, kindSubKeywords, p, subKeywordPrompt(req.Topic), req.MaxTokens)
	if res != nil {
		if keywords := parseSubKeywords(res.Text); len(keywords) > 0 {
			resp.Content = res.Text
			resp.SubKeywords = keywords
			resp.Model = res.Model
			metrics.RecordGeneration(kindSubKeywords, p.String(), "live")
			return resp, nil
		}
		reason = models.FallbackProviderError
	}

	keywords := s.demo.SubKeywords(req.Topic)
	resp.SubKeywords = keywords
	resp.Content = strings.Join(keywords, "\n")
	resp.IsDemo = true
	resp.FallbackReason = reason
	s.recordFallback(kindSubKeywords, p, reason)
	return resp, nil
}

// GenerateArticle drafts a full article and optionally stores it as a draft
func (s *generationService) GenerateArticle(ctx context.Context, req *models.ArticleRequest) (*models.ArticleResponse, error) {
	p, err := s.resolveProvider(req.AIModel)
	if err != nil {
		return nil, err
	}

	resp := &models.ArticleResponse{Success: true, Provider: p.String(), Model: s.model(p)}

	res, reason := s.call(ctx, kindArticle, p, articlePrompt(req), req.MaxTokens)
	if res != nil {
		resp.Content = res.Text
		resp.Model = res.Model
		resp.Title = extractTitle(res.Text, strings.TrimSpace(req.Topic))
		metrics.RecordGeneration(kindArticle, p.String(), "live")
	} else {
		resp.Title, resp.Content = s.demo.Article(demo.ArticleData{
			Topic:      req.Topic,
			SubKeyword: req.SubKeyword,
			Audience:   req.Audience,
			Tone:       req.Tone,
			Style:      req.Style,
			Length:     req.Length,
			Keywords:   req.Keywords,
		})
		resp.IsDemo = true
		resp.FallbackReason = reason
		s.recordFallback(kindArticle, p, reason)
	}

	if req.Save {
		keywords := append([]string{}, req.Keywords...)
		if req.SubKeyword != "" {
			keywords = append(keywords, req.SubKeyword)
		}
		article, err := s.articles.Create(ctx, &models.ArticleInput{
			Title:    resp.Title,
			Content:  resp.Content,
			Topic:    req.Topic,
			Style:    req.Style,
			Audience: req.Audience,
			Tone:     req.Tone,
			AIModel:  p.String(),
			Keywords: keywords,
			Status:   models.ArticleStatusDraft,
			SeriesID: req.SeriesID,
		})
		if err != nil {
			return nil, fmt.Errorf("save generated article: %w", err)
		}
		resp.ArticleID = article.ID
	}

	return resp, nil
}

// resolveProvider maps aiModel to a provider; blank selects the default
func (s *generationService) resolveProvider(name string) (provider.Provider, error) {
	if strings.TrimSpace(name) == "" {
		name = s.cfg.DefaultProvider
	}
	if strings.TrimSpace(name) == "" {
		return provider.Claude, nil
	}
	p, err := provider.Parse(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, validation.NewFieldError(
			"aiModel", fmt.Sprintf("aiModel must be one of: %s", strings.Join(validation.ProviderNames, ", ")),
		))
	}
	return p, nil
}

func (s *generationService) model(p provider.Provider) string {
	if spec, ok := s.gen.Spec(p); ok {
		return spec.Model
	}
	return ""
}

// call performs the live request. A nil result comes with the fallback reason.
func (s *generationService) call(ctx context.Context, kind string, p provider.Provider, prompt string, maxTokens int) (*provider.Result, string) {
	key := s.cfg.APIKey(p.String())
	if strings.TrimSpace(key) == "" {
		s.log.Info().Str("provider", p.String()).Str("kind", kind).Msg("No API key configured, serving demo content")
		return nil, models.FallbackMissingKey
	}

	if maxTokens <= 0 {
		maxTokens = s.cfg.MaxTokens
	}
	res, err := s.gen.Generate(ctx, p, prompt, key, provider.Params{
		MaxTokens:   maxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("provider", p.String()).Str("kind", kind).Msg("Provider call failed, serving demo content")
		return nil, models.FallbackProviderError
	}
	return res, ""
}

func (s *generationService) recordFallback(kind string, p provider.Provider, reason string) {
	metrics.RecordGeneration(kind, p.String(), "demo")
	metrics.RecordDemoFallback(p.String(), reason)
}
