package api

import (
	"net/http"

	"github.com/ai-blog-writer/internal/models"
	"github.com/ai-blog-writer/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// IdeaHandler handles the idea backlog endpoints
type IdeaHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewIdeaHandler creates a new IdeaHandler
func NewIdeaHandler(services *service.Services, log zerolog.Logger) *IdeaHandler {
	return &IdeaHandler{
		services: services,
		log:      log.With().Str("handler", "idea").Logger(),
	}
}

// List handles GET /v1/ideas?status=&limit=&offset=
func (h *IdeaHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	ideas, err := h.services.Idea.List(c.Request.Context(), models.IdeaStatus(c.Query("status")), limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ideas": ideas, "count": len(ideas)})
}

// Create handles POST /v1/ideas
func (h *IdeaHandler) Create(c *gin.Context) {
	var in models.IdeaInput
	if !bindJSON(c, &in) {
		return
	}

	idea, err := h.services.Idea.Create(c.Request.Context(), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, idea)
}

// Get handles GET /v1/ideas/:id
func (h *IdeaHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	idea, err := h.services.Idea.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, idea)
}

// Update handles PUT /v1/ideas/:id
func (h *IdeaHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var in models.IdeaInput
	if !bindJSON(c, &in) {
		return
	}

	idea, err := h.services.Idea.Update(c.Request.Context(), id, &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, idea)
}

// Delete handles DELETE /v1/ideas/:id
func (h *IdeaHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Idea.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Promote handles POST /v1/ideas/:id/promote
func (h *IdeaHandler) Promote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	idea, article, err := h.services.Idea.Promote(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info().Str("idea_id", idea.ID).Str("article_id", article.ID).Msg("Idea promoted")
	c.JSON(http.StatusCreated, gin.H{"idea": idea, "article": article})
}
