package api

import (
	"net/http"

	"github.com/ai-blog-writer/internal/models"
	"github.com/ai-blog-writer/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// GenerationHandler serves the endpoints the editor UI calls directly
type GenerationHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewGenerationHandler creates a new GenerationHandler
func NewGenerationHandler(services *service.Services, log zerolog.Logger) *GenerationHandler {
	return &GenerationHandler{
		services: services,
		log:      log.With().Str("handler", "generation").Logger(),
	}
}

// CheckKeys handles GET /api/check-keys
func (h *GenerationHandler) CheckKeys(c *gin.Context) {
	keys := h.services.Generation.CheckKeys()

	anyKey := false
	for _, ok := range keys {
		anyKey = anyKey || ok
	}
	c.JSON(http.StatusOK, gin.H{
		"keys":     keys,
		"demoMode": !anyKey,
	})
}

// GenerateSubKeywords handles POST /api/generate-subkeywords
func (h *GenerationHandler) GenerateSubKeywords(c *gin.Context) {
	var req models.SubKeywordRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.services.Generation.GenerateSubKeywords(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GenerateArticle handles POST /api/generate-article
func (h *GenerationHandler) GenerateArticle(c *gin.Context) {
	var req models.ArticleRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.services.Generation.GenerateArticle(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info().
		Str("provider", resp.Provider).
		Str("model", resp.Model).
		Bool("is_demo", resp.IsDemo).
		Str("article_id", resp.ArticleID).
		Msg("Article generated")
	c.JSON(http.StatusOK, resp)
}
