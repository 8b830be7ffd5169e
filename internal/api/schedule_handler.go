package api

import (
	"net/http"
	"time"

	"github.com/ai-blog-writer/internal/models"
	"github.com/ai-blog-writer/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ScheduleHandler handles publication schedule endpoints
type ScheduleHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewScheduleHandler creates a new ScheduleHandler
func NewScheduleHandler(services *service.Services, log zerolog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		services: services,
		log:      log.With().Str("handler", "schedule").Logger(),
	}
}

// List handles GET /v1/schedules?status=&article_id=&due_before=RFC3339
func (h *ScheduleHandler) List(c *gin.Context) {
	articleID, ok := uuidQuery(c, "article_id")
	if !ok {
		return
	}
	filter := models.ScheduleFilter{
		Status:    models.ScheduleStatus(c.Query("status")),
		ArticleID: articleID,
	}
	if filter.Status != "" && !models.ValidScheduleStatuses[filter.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of: scheduled, published, failed, cancelled"})
		return
	}
	if raw := c.Query("due_before"); raw != "" {
		due, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "due_before must be an RFC3339 timestamp"})
			return
		}
		filter.DueBefore = &due
	}
	filter.Limit, filter.Offset = pagination(c)

	schedules, err := h.services.Schedule.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": schedules, "count": len(schedules)})
}

// Create handles POST /v1/schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	var in models.ScheduleInput
	if !bindJSON(c, &in) {
		return
	}

	schedule, err := h.services.Schedule.Create(c.Request.Context(), &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, schedule)
}

// Get handles GET /v1/schedules/:id
func (h *ScheduleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	schedule, err := h.services.Schedule.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// UpdateStatus handles PATCH /v1/schedules/:id/status
func (h *ScheduleHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var in models.ScheduleStatusInput
	if !bindJSON(c, &in) {
		return
	}

	result, err := h.services.Schedule.UpdateStatus(c.Request.Context(), id, &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Reschedule handles POST /v1/schedules/:id/reschedule
func (h *ScheduleHandler) Reschedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var in models.RescheduleInput
	if !bindJSON(c, &in) {
		return
	}

	schedule, err := h.services.Schedule.Reschedule(c.Request.Context(), id, &in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// Delete handles DELETE /v1/schedules/:id
func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Schedule.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Logs handles GET /v1/schedules/:id/logs
func (h *ScheduleHandler) Logs(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	logs, err := h.services.Schedule.StatusLogs(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// Export handles GET /v1/schedules/export?format=ndjson|json|csv
// The calendar is streamed straight to the response.
func (h *ScheduleHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "ndjson")
	if format != "ndjson" && format != "json" && format != "csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of: ndjson, json, csv"})
		return
	}

	if err := h.services.Export.StreamSchedules(c.Request.Context(), c.Writer, format); err != nil {
		if !c.Writer.Written() {
			respondError(c, h.log, err)
			return
		}
		// Headers are already out once streaming has started
		h.log.Error().Err(err).Str("format", format).Msg("Schedule export failed")
	}
}
