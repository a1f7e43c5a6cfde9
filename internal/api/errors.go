package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shorlog-studio/internal/models"
	"github.com/shorlog-studio/internal/service"
	"github.com/shorlog-studio/internal/storage"
	"github.com/shorlog-studio/internal/validation"
)

// respondError maps service errors onto status codes. Anything unrecognised
// is logged and reported as a 500 without detail.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": verrs})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrDraftLimitReached):
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("draft limit reached (max %d)", models.MaxDrafts)})
	case errors.Is(err, service.ErrAlreadyLinked):
		c.JSON(http.StatusConflict, gin.H{"error": "content is already linked"})
	case errors.Is(err, service.ErrPayloadTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAINotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI assistant is not configured"})
	case errors.Is(err, storage.ErrUnsupportedImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
