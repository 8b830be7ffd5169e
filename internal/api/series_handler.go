package api

import (
	"net/http"

	"github.com/ai-blog-writer/internal/models"
	"github.com/ai-blog-writer/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SeriesHandler handles series endpoints
type SeriesHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewSeriesHandler creates a new SeriesHandler
func NewSeriesHandler(services *service.Services, log zerolog.Logger) *SeriesHandler {
	return &SeriesHandler{
		services: services,
		log:      log.With().Str("handler", "series").Logger(),
	}
}

// List handles GET /v1/series?status=&limit=&offset=
func (h *SeriesHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	series, err := h.services.Series.List(c.Request.Context(), models.SeriesStatus(c.Query("status")), limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": series, "count": len(series)})
}

// Create handles POST /v1/series
func (h *SeriesHandler) Create(c *gin.Context) {
	var in models.SeriesInput
	if !bindJSON(c, &in) {
		return
	}

	series, err := h.services.Series.Create(c.Request.Context(), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, series)
}

// Get handles GET /v1/series/:id
func (h *SeriesHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	series, err := h.services.Series.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

// Update handles PUT /v1/series/:id
func (h *SeriesHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var in models.SeriesInput
	if !bindJSON(c, &in) {
		return
	}

	series, err := h.services.Series.Update(c.Request.Context(), id, &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

// Delete handles DELETE /v1/series/:id
func (h *SeriesHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Series.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Articles handles GET /v1/series/:id/articles
func (h *SeriesHandler) Articles(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	articles, err := h.services.Series.Articles(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles, "count": len(articles)})
}
