package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shorlog-studio/internal/models"
	"github.com/shorlog-studio/internal/service"
)

// DraftHandler handles draft endpoints
type DraftHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewDraftHandler creates a new DraftHandler
func NewDraftHandler(services *service.Services, log zerolog.Logger) *DraftHandler {
	return &DraftHandler{
		services: services,
		log:      log.With().Str("handler", "drafts").Logger(),
	}
}

// ListDrafts handles GET /v1/drafts
func (h *DraftHandler) ListDrafts(c *gin.Context) {
	drafts, err := h.services.Draft.List(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, models.DraftListResponse{Drafts: drafts})
}

// GetDraft handles GET /v1/drafts/:id
func (h *DraftHandler) GetDraft(c *gin.Context) {
	draft, err := h.services.Draft.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// CreateDraft handles POST /v1/drafts
func (h *DraftHandler) CreateDraft(c *gin.Context) {
	var req models.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	draft, err := h.services.Draft.Create(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

// DeleteDraft handles DELETE /v1/drafts/:id
func (h *DraftHandler) DeleteDraft(c *gin.Context) {
	if err := h.services.Draft.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
