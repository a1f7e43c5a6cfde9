package wizard

import (
	"context"
	"fmt"

	"github.com/shorlog-studio/internal/models"
)

// Uploader sends one image batch and returns the stored images in order
type Uploader interface {
	UploadImages(ctx context.Context, orders []models.OrderDescriptor, files []models.FilePart) ([]models.UploadedImage, error)
}

// BuildOrders describes images for the batch endpoint. fileIndex counts FILE
// entries only, so [FILE, URL, FILE] yields 0, nil, 1. The returned parts are
// in fileIndex order.
func BuildOrders(images []LocalImage) ([]models.OrderDescriptor, []models.FilePart) {
	orders := make([]models.OrderDescriptor, len(images))
	var files []models.FilePart
	fileIndex := 0

	for i, img := range images {
		d := models.OrderDescriptor{
			Order:       i,
			AspectRatio: img.AspectRatio,
		}
		switch img.Source {
		case SourceFile:
			idx := fileIndex
			d.Type = models.SourceFile
			d.FileIndex = &idx
			files = append(files, *img.File)
			fileIndex++
		case SourceURL:
			remote := img.RemoteURL
			d.Type = models.SourceURL
			d.URL = &remote
		}
		orders[i] = d
	}
	return orders, files
}

// BatchSize is the combined size of the file parts
func BatchSize(files []models.FilePart) int64 {
	var total int64
	for _, f := range files {
		total += f.Size()
	}
	return total
}

// UploadBatch uploads images in one request. Either every image comes back
// with a server id or an error is returned.
func UploadBatch(ctx context.Context, up Uploader, images []LocalImage) ([]models.UploadedImage, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	orders, files := BuildOrders(images)
	if BatchSize(files) > models.MaxBatchBytes {
		return nil, ErrPayloadTooLarge
	}

	resp, err := up.UploadImages(ctx, orders, files)
	if err != nil {
		return nil, fmt.Errorf("image upload failed: %w", err)
	}
	if len(resp) != len(orders) {
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrBatchMismatch, len(orders), len(resp))
	}

	// The endpoint answers in descriptor order
	uploaded := make([]models.UploadedImage, len(orders))
	for i, d := range orders {
		uploaded[d.Order] = resp[i]
	}
	return uploaded, nil
}
