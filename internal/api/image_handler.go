package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shorlog-studio/internal/config"
	"github.com/shorlog-studio/internal/models"
	"github.com/shorlog-studio/internal/service"
)

// multipartOverhead is headroom for part headers and the orders field on top
// of the file payload cap.
const multipartOverhead = 1 << 20

// ImageHandler handles image batch uploads
type ImageHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewImageHandler creates a new ImageHandler
func NewImageHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ImageHandler {
	return &ImageHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "images").Logger(),
	}
}

// UploadBatch handles POST /v1/images/batch
// Expects an "orders" JSON field and "files" parts in fileIndex order
func (h *ImageHandler) UploadBatch(c *gin.Context) {
	maxBytes := h.cfg.Upload.MaxBatchBytes
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)

	form, err := c.MultipartForm()
	if err != nil {
		if isBodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("batch too large, max size is %d MB", maxBytes/(1024*1024)),
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form with orders and files is required"})
		return
	}
	defer form.RemoveAll()

	rawOrders := form.Value["orders"]
	if len(rawOrders) != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orders field is required"})
		return
	}

	var orders []models.OrderDescriptor
	if err := json.Unmarshal([]byte(rawOrders[0]), &orders); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orders must be a JSON array"})
		return
	}

	headers := form.File["files"]
	files := make([]service.BatchFile, len(headers))
	for i, fh := range headers {
		files[i] = service.BatchFile{
			Filename: fh.Filename,
			Size:     fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		}
	}

	images, err := h.services.Image.UploadBatch(c.Request.Context(), currentUser(c), orders, files)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, models.BatchResponse{Images: images})
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	// multipart wraps the reader error as text in some paths
	return strings.Contains(err.Error(), "request body too large")
}
