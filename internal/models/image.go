package models

import (
	"time"
)

// Limits shared by the wizard and the platform API.
const (
	MaxFiles             = 10
	MaxContentLength     = 800
	MaxHashtags          = 10
	MaxDrafts            = 5
	MaxBatchBytes        = 100 * 1024 * 1024
	RecentCandidateLimit = 7
)

// AspectRatio is the crop ratio requested for an image.
type AspectRatio string

const (
	AspectOriginal  AspectRatio = "ORIGINAL"
	AspectSquare    AspectRatio = "1:1"
	AspectPortrait  AspectRatio = "4:5"
	AspectLandscape AspectRatio = "16:9"
)

// ValidAspectRatios holds the accepted ratio values
var ValidAspectRatios = map[AspectRatio]bool{
	AspectOriginal:  true,
	AspectSquare:    true,
	AspectPortrait:  true,
	AspectLandscape: true,
}

// Valid reports whether r is one of the accepted ratios.
func (r AspectRatio) Valid() bool {
	return ValidAspectRatios[r]
}

// Dimensions returns the width:height pair for a fixed ratio. ok is false for
// ORIGINAL, which keeps the source dimensions.
func (r AspectRatio) Dimensions() (w, h int, ok bool) {
	switch r {
	case AspectSquare:
		return 1, 1, true
	case AspectPortrait:
		return 4, 5, true
	case AspectLandscape:
		return 16, 9, true
	default:
		return 0, 0, false
	}
}

// SourceType is the wire name of an image origin inside an order descriptor.
type SourceType string

const (
	SourceFile SourceType = "file"
	SourceURL  SourceType = "url"
)

// OrderDescriptor describes one entry of an upload batch. FileIndex counts
// file entries only and is null for url entries; URL is null for file entries.
type OrderDescriptor struct {
	Order       int         `json:"order"`
	Type        SourceType  `json:"type"`
	FileIndex   *int        `json:"fileIndex"`
	URL         *string     `json:"url"`
	AspectRatio AspectRatio `json:"aspectRatio"`
}

// FilePart is a binary payload sent as one multipart part of a batch.
type FilePart struct {
	Name string
	Data []byte
}

// Size returns the payload length in bytes.
func (p FilePart) Size() int64 {
	return int64(len(p.Data))
}

// UploadedImage is the server's view of an image after a successful batch.
type UploadedImage struct {
	ID               string `json:"id"`
	ImageURL         string `json:"imageUrl"`
	OriginalFilename string `json:"originalFilename"`
	FileSize         int64  `json:"fileSize"`
}

// Image is the stored image record.
type Image struct {
	ID               string      `json:"id" db:"id"`
	OwnerID          string      `json:"owner_id" db:"owner_id"`
	SourceType       SourceType  `json:"source_type" db:"source_type"`
	ImageURL         string      `json:"image_url" db:"image_url"`
	FilePath         string      `json:"-" db:"file_path"`
	OriginalFilename string      `json:"original_filename" db:"original_filename"`
	FileSize         int64       `json:"file_size" db:"file_size"`
	AspectRatio      AspectRatio `json:"aspect_ratio" db:"aspect_ratio"`
	Attached         bool        `json:"attached" db:"attached"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
}

// ToUploaded converts the record into the batch response shape.
func (i *Image) ToUploaded() UploadedImage {
	return UploadedImage{
		ID:               i.ID,
		ImageURL:         i.ImageURL,
		OriginalFilename: i.OriginalFilename,
		FileSize:         i.FileSize,
	}
}

// BatchResponse is the body returned by the batch upload endpoint
type BatchResponse struct {
	Images []UploadedImage `json:"images"`
}
