package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ai-blog-writer/internal/config"
	"github.com/ai-blog-writer/internal/metrics"
	"github.com/ai-blog-writer/internal/service"
	"github.com/ai-blog-writer/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const serviceName = "ai-blog-writer"

var registerValidators sync.Once

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	registerValidators.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			validation.Register(v)
		}
	})

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(metricsMiddleware())
	router.Use(corsMiddleware())

	// Handlers
	generation := NewGenerationHandler(services, log)
	articles := NewArticleHandler(services, log)
	series := NewSeriesHandler(services, log)
	schedules := NewScheduleHandler(services, log)
	tags := NewTagHandler(services, log)
	ideas := NewIdeaHandler(services, log)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Endpoints used by the editor UI
	ui := router.Group("/api")
	{
		ui.GET("/health", healthCheck)
		ui.GET("/check-keys", generation.CheckKeys)
		ui.POST("/generate-subkeywords", generation.GenerateSubKeywords)
		ui.POST("/generate-article", generation.GenerateArticle)
	}

	// API v1
	v1 := router.Group("/v1")
	{
		v1.GET("/stats", statsHandler(services, log))

		a := v1.Group("/articles")
		{
			a.GET("", articles.List)
			a.POST("", articles.Create)
			a.GET("/:id", articles.Get)
			a.PUT("/:id", articles.Update)
			a.DELETE("/:id", articles.Delete)
			a.GET("/:id/tags", articles.ListTags)
			a.POST("/:id/tags", articles.AttachTags)
			a.DELETE("/:id/tags/:tag_id", articles.DetachTag)
			a.GET("/:id/analytics", articles.Analytics)
			a.POST("/:id/analytics", articles.RecordAnalytics)
		}

		s := v1.Group("/series")
		{
			s.GET("", series.List)
			s.POST("", series.Create)
			s.GET("/:id", series.Get)
			s.PUT("/:id", series.Update)
			s.DELETE("/:id", series.Delete)
			s.GET("/:id/articles", series.Articles)
		}

		sch := v1.Group("/schedules")
		{
			sch.GET("", schedules.List)
			sch.POST("", schedules.Create)
			sch.GET("/export", schedules.Export)
			sch.GET("/:id", schedules.Get)
			sch.DELETE("/:id", schedules.Delete)
			sch.PATCH("/:id/status", schedules.UpdateStatus)
			sch.POST("/:id/reschedule", schedules.Reschedule)
			sch.GET("/:id/logs", schedules.Logs)
		}

		t := v1.Group("/tags")
		{
			t.GET("", tags.List)
			t.POST("", tags.Create)
			t.GET("/:id", tags.Get)
		}

		i := v1.Group("/ideas")
		{
			i.GET("", ideas.List)
			i.POST("", ideas.Create)
			i.GET("/:id", ideas.Get)
			i.PUT("/:id", ideas.Update)
			i.DELETE("/:id", ideas.Delete)
			i.POST("/:id/promote", ideas.Promote)
		}
	}

	log.Debug().Str("port", cfg.Server.Port).Int("routes", len(router.Routes())).Msg("Router configured")
	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   serviceName,
	})
}

// statsHandler returns row counts per table
func statsHandler(services *service.Services, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := services.Stats.Counts(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"database":  counts,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// metricsMiddleware records request counts and latency per route template
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
