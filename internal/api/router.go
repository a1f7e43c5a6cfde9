package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shorlog-studio/internal/auth"
	"github.com/shorlog-studio/internal/config"
	"github.com/shorlog-studio/internal/service"
)

const userIDKey = "user_id"

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, authSvc *auth.Service, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	imageHandler := NewImageHandler(services, cfg, log)
	draftHandler := NewDraftHandler(services, log)
	aiHandler := NewAIHandler(services, log)
	contentHandler := NewContentHandler(services, log)

	router.GET("/health", healthCheck)

	// Stored renditions are public; their URLs are built from PUBLIC_BASE_URL
	if cfg.Upload.Dir != "" {
		router.Static("/media", cfg.Upload.Dir)
	}

	v1 := router.Group("/v1")
	v1.Use(authMiddleware(authSvc))
	{
		v1.POST("/images/batch", imageHandler.UploadBatch)

		drafts := v1.Group("/drafts")
		{
			drafts.GET("", draftHandler.ListDrafts)
			drafts.POST("", draftHandler.CreateDraft)
			drafts.GET("/:id", draftHandler.GetDraft)
			drafts.DELETE("/:id", draftHandler.DeleteDraft)
		}

		v1.POST("/ai/suggest", aiHandler.Suggest)

		shorlogs := v1.Group("/shorlogs")
		{
			shorlogs.POST("", contentHandler.CreateShorlog)
			shorlogs.GET("/recent", contentHandler.RecentShorlogs)
			shorlogs.GET("/:id", contentHandler.GetShorlog)
		}

		blogs := v1.Group("/blogs")
		{
			blogs.POST("", contentHandler.CreateBlog)
			blogs.GET("/recent", contentHandler.RecentBlogs)
		}

		v1.POST("/links", contentHandler.CreateLink)
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "shorlog-studio",
	})
}

// authMiddleware resolves the bearer token into the caller's user id
func authMiddleware(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := authSvc.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(userIDKey, claims.UserID())
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
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
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("user_id", currentUser(c)).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
