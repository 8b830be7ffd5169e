package api

import (
	"net/http"

	"github.com/ai-blog-writer/internal/models"
	"github.com/ai-blog-writer/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ArticleHandler handles article, article tag and analytics endpoints
type ArticleHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// List handles GET /v1/articles?status=&series_id=&q=&limit=&offset=
func (h *ArticleHandler) List(c *gin.Context) {
	status := models.ArticleStatus(c.Query("status"))
	if status != "" && !models.ValidStatuses[status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of: draft, scheduled, published, archived"})
		return
	}
	seriesID, ok := uuidQuery(c, "series_id")
	if !ok {
		return
	}

	limit, offset := pagination(c)
	articles, err := h.services.Article.List(c.Request.Context(), models.ArticleFilter{
		Status:   status,
		SeriesID: seriesID,
		Search:   c.Query("q"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles, "count": len(articles)})
}

// Create handles POST /v1/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var in models.ArticleInput
	if !bindJSON(c, &in) {
		return
	}

	article, err := h.services.Article.Create(c.Request.Context(), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

// Get handles GET /v1/articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	article, err := h.services.Article.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Update handles PUT /v1/articles/:id
func (h *ArticleHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var in models.ArticleInput
	if !bindJSON(c, &in) {
		return
	}

	article, err := h.services.Article.Update(c.Request.Context(), id, &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Delete handles DELETE /v1/articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Article.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListTags handles GET /v1/articles/:id/tags
func (h *ArticleHandler) ListTags(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	tags, err := h.services.Article.ListTags(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// AttachTags handles POST /v1/articles/:id/tags
func (h *ArticleHandler) AttachTags(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Tags []models.TagAttachment `json:"tags" binding:"required,min=1,dive"`
	}
	if !bindJSON(c, &req) {
		return
	}

	tags, err := h.services.Article.AttachTags(c.Request.Context(), id, req.Tags)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// DetachTag handles DELETE /v1/articles/:id/tags/:tag_id
func (h *ArticleHandler) DetachTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tagID, ok := pathID(c, "tag_id")
	if !ok {
		return
	}

	if err := h.services.Article.DetachTag(c.Request.Context(), id, tagID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Analytics handles GET /v1/articles/:id/analytics?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *ArticleHandler) Analytics(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	from, ok := dayQuery(c, "from")
	if !ok {
		return
	}
	to, ok := dayQuery(c, "to")
	if !ok {
		return
	}

	rows, summary, err := h.services.Analytics.Range(c.Request.Context(), id, from, to)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": rows, "summary": summary})
}

// RecordAnalytics handles POST /v1/articles/:id/analytics
func (h *ArticleHandler) RecordAnalytics(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var in models.AnalyticsInput
	if !bindJSON(c, &in) {
		return
	}

	row, err := h.services.Analytics.Record(c.Request.Context(), id, &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, row)
}
