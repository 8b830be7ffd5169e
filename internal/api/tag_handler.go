package api

import (
	"net/http"
	"strconv"

	"github.com/ai-blog-writer/internal/models"
	"github.com/ai-blog-writer/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// TagHandler handles tag endpoints
type TagHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewTagHandler creates a new TagHandler
func NewTagHandler(services *service.Services, log zerolog.Logger) *TagHandler {
	return &TagHandler{
		services: services,
		log:      log.With().Str("handler", "tag").Logger(),
	}
}

// List handles GET /v1/tags?category=&limit=
// Tags come back most used first.
func (h *TagHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	tags, err := h.services.Tag.List(c.Request.Context(), c.Query("category"), limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags, "count": len(tags)})
}

// Create handles POST /v1/tags
func (h *TagHandler) Create(c *gin.Context) {
	var in models.TagInput
	if !bindJSON(c, &in) {
		return
	}

	tag, err := h.services.Tag.Create(c.Request.Context(), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// Get handles GET /v1/tags/:id
func (h *TagHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	tag, err := h.services.Tag.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}
