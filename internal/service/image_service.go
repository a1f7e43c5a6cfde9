package service

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shorlog-studio/internal/config"
	"github.com/shorlog-studio/internal/models"
	"github.com/shorlog-studio/internal/repository"
	"github.com/shorlog-studio/internal/storage"
	"github.com/shorlog-studio/internal/validation"
)

// imageService is the concrete implementation of ImageService
type imageService struct {
	imageRepo     repository.ImageRepository
	store         storage.ImageStore
	maxBatchBytes int64
	log           zerolog.Logger
}

func newImageService(imageRepo repository.ImageRepository, store storage.ImageStore, cfg config.UploadConfig, log zerolog.Logger) *imageService {
	return &imageService{
		imageRepo:     imageRepo,
		store:         store,
		maxBatchBytes: cfg.MaxBatchBytes,
		log:           log.With().Str("service", "image").Logger(),
	}
}

// UploadBatch stores a whole batch or nothing. The result follows the
// descriptors' order field, not the order the parts arrived in.
func (s *imageService) UploadBatch(ctx context.Context, ownerID string, orders []models.OrderDescriptor, files []BatchFile) ([]models.UploadedImage, error) {
	if errs := validation.ValidateOrders(orders, len(files)); len(errs) > 0 {
		return nil, errs
	}

	var total int64
	for _, f := range files {
		total += f.Size
	}
	if total > s.maxBatchBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, total, s.maxBatchBytes)
	}

	sorted := make([]models.OrderDescriptor, len(orders))
	copy(sorted, orders)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	start := time.Now()
	now := start.UTC()
	images := make([]*models.Image, 0, len(sorted))
	var storedPaths []string

	cleanup := func() {
		for _, p := range storedPaths {
			if err := s.store.Delete(p); err != nil {
				s.log.Error().Err(err).Str("path", p).Msg("Failed to remove stored image after batch failure")
			}
		}
	}

	for _, o := range sorted {
		img := &models.Image{
			ID:          uuid.New().String(),
			OwnerID:     ownerID,
			SourceType:  o.Type,
			AspectRatio: o.AspectRatio,
			CreatedAt:   now,
		}

		switch o.Type {
		case models.SourceFile:
			file := files[*o.FileIndex]
			stored, err := s.storeFile(ctx, ownerID, file, o.AspectRatio)
			if err != nil {
				cleanup()
				return nil, fmt.Errorf("image %d (%s): %w", o.Order+1, file.Filename, err)
			}
			storedPaths = append(storedPaths, stored.Path)
			img.ImageURL = stored.URL
			img.FilePath = stored.Path
			img.OriginalFilename = file.Filename
			img.FileSize = file.Size
		case models.SourceURL:
			img.ImageURL = *o.URL
			img.OriginalFilename = filenameFromURL(*o.URL)
		}

		images = append(images, img)
	}

	if err := s.imageRepo.CreateBatch(ctx, images); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to save image batch: %w", err)
	}

	uploaded := make([]models.UploadedImage, len(images))
	for i, img := range images {
		uploaded[i] = img.ToUploaded()
	}

	s.log.Info().
		Str("owner_id", ownerID).
		Int("images", len(images)).
		Int("files", len(files)).
		Int64("bytes", total).
		Dur("duration", time.Since(start)).
		Msg("Image batch stored")

	return uploaded, nil
}

func (s *imageService) storeFile(ctx context.Context, ownerID string, file BatchFile, ratio models.AspectRatio) (*storage.StoredImage, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer rc.Close()

	return s.store.Save(ctx, ownerID, rc, ratio)
}

func filenameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
