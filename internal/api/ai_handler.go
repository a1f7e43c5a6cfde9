package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shorlog-studio/internal/models"
	"github.com/shorlog-studio/internal/service"
)

// AIHandler handles writing-assistant requests
type AIHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(services *service.Services, log zerolog.Logger) *AIHandler {
	return &AIHandler{
		services: services,
		log:      log.With().Str("handler", "ai").Logger(),
	}
}

// Suggest handles POST /v1/ai/suggest
func (h *AIHandler) Suggest(c *gin.Context) {
	var req models.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	resp, err := h.services.Suggestion.Suggest(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
