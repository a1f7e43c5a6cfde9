package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shorlog-studio/internal/models"
	"github.com/shorlog-studio/internal/service"
)

// ContentHandler handles shorlog, blog and link endpoints
type ContentHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(services *service.Services, log zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		services: services,
		log:      log.With().Str("handler", "content").Logger(),
	}
}

// CreateShorlog handles POST /v1/shorlogs
func (h *ContentHandler) CreateShorlog(c *gin.Context) {
	var req models.CreateShorlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	shorlog, err := h.services.Content.CreateShorlog(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, shorlog)
}

// GetShorlog handles GET /v1/shorlogs/:id
func (h *ContentHandler) GetShorlog(c *gin.Context) {
	shorlog, err := h.services.Content.GetShorlog(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, shorlog)
}

// CreateBlog handles POST /v1/blogs
func (h *ContentHandler) CreateBlog(c *gin.Context) {
	var req models.CreateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	blog, err := h.services.Content.CreateBlog(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, blog)
}

// RecentShorlogs handles GET /v1/shorlogs/recent
func (h *ContentHandler) RecentShorlogs(c *gin.Context) {
	h.recent(c, models.ContentShorlog)
}

// RecentBlogs handles GET /v1/blogs/recent
func (h *ContentHandler) RecentBlogs(c *gin.Context) {
	h.recent(c, models.ContentBlog)
}

func (h *ContentHandler) recent(c *gin.Context, contentType models.ContentType) {
	limit := models.RecentCandidateLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a number"})
			return
		}
		limit = parsed
	}

	items, err := h.services.Content.RecentCandidates(c.Request.Context(), currentUser(c), contentType, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, models.CandidateListResponse{Items: items})
}

// CreateLink handles POST /v1/links
func (h *ContentHandler) CreateLink(c *gin.Context) {
	var req models.LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	link, err := h.services.Content.Link(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}
