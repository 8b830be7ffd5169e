package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ai-blog-writer/internal/service"
	"github.com/ai-blog-writer/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const dayLayout = "2006-01-02"

// respondError maps service errors onto HTTP statuses. Anything unrecognised
// is logged and reported as a 500 without leaking the cause.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var verr *validation.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": verr.Errors})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON decodes and validates the body into dst, writing a 400 on failure
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		verr := validation.FromError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": verr.Errors})
		return false
	}
	return true
}

// pagination reads limit and offset query parameters; bad values fall back to zero
func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	return limit, offset
}

// dayQuery parses an optional YYYY-MM-DD query parameter
func dayQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	day, err := time.Parse(dayLayout, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": map[string]string{name: name + " must match " + dayLayout},
		})
		return nil, false
	}
	return &day, true
}

// pathID reads a UUID path parameter. A malformed id cannot address a stored
// row, so it is answered with 404 before reaching the database.
func pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return "", false
	}
	return id, true
}

// uuidQuery reads an optional UUID query parameter used as a filter
func uuidQuery(c *gin.Context, name string) (string, bool) {
	raw := c.Query(name)
	if raw == "" {
		return "", true
	}
	if _, err := uuid.Parse(raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": map[string]string{name: name + " must be a valid UUID"},
		})
		return "", false
	}
	return raw, true
}
