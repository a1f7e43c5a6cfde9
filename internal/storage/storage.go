package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shorlog-studio/internal/config"
	"github.com/shorlog-studio/internal/models"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned when a file part cannot be decoded as an image
var ErrUnsupportedImage = errors.New("unsupported image format")

// StoredImage describes a processed file written to the store
type StoredImage struct {
	Path   string
	URL    string
	Width  int
	Height int
}

// ImageStore persists processed image files
type ImageStore interface {
	Save(ctx context.Context, ownerID string, src io.Reader, ratio models.AspectRatio) (*StoredImage, error)
	Delete(path string) error
}

// LocalStore writes JPEG renditions under a date-partitioned directory tree
// and serves them from PublicBaseURL.
type LocalStore struct {
	dir      string
	baseURL  string
	maxWidth int
	quality  int
	now      func() time.Time
	log      zerolog.Logger
}

// NewLocalStore creates a store rooted at cfg.Dir
func NewLocalStore(cfg config.UploadConfig, log zerolog.Logger) *LocalStore {
	return &LocalStore{
		dir:      cfg.Dir,
		baseURL:  strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxWidth: cfg.MaxImageWidth,
		quality:  cfg.JPEGQuality,
		now:      time.Now,
		log:      log.With().Str("component", "storage").Logger(),
	}
}

// Save decodes src, crops it to ratio, scales it down to the configured width
// and writes it as JPEG.
func (s *LocalStore) Save(ctx context.Context, ownerID string, src io.Reader, ratio models.AspectRatio) (*StoredImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	processed := Resize(CropToRatio(img, ratio), s.maxWidth)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	datePath := s.now().UTC().Format("2006/01/02")
	relPath := path.Join(datePath, uuid.New().String()+".jpg")
	fullPath := filepath.Join(s.dir, filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}

	b := processed.Bounds()
	s.log.Debug().
		Str("owner_id", ownerID).
		Str("path", relPath).
		Int("width", b.Dx()).
		Int("height", b.Dy()).
		Msg("Image stored")

	return &StoredImage{
		Path:   fullPath,
		URL:    s.baseURL + "/" + relPath,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// Delete removes a stored file. A missing file is not an error.
func (s *LocalStore) Delete(p string) error {
	if p == "" {
		return nil
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// CropToRatio returns the largest centered region of img with the given
// ratio. ORIGINAL returns img unchanged.
func CropToRatio(img image.Image, ratio models.AspectRatio) image.Image {
	rw, rh, ok := ratio.Dimensions()
	if !ok {
		return img
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	cropW, cropH := w, w*rh/rw
	if cropH > h {
		cropW, cropH = h*rw/rh, h
	}
	if cropW == w && cropH == h {
		return img
	}

	x0 := b.Min.X + (w-cropW)/2
	y0 := b.Min.Y + (h-cropH)/2
	rect := image.Rect(0, 0, cropW, cropH)

	dst := image.NewRGBA(rect)
	draw.Draw(dst, rect, img, image.Pt(x0, y0), draw.Src)
	return dst
}

// Resize scales img down to maxWidth keeping its proportions. Narrower
// images and a non-positive maxWidth leave img untouched.
func Resize(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}

	newHeight := b.Dy() * maxWidth / b.Dx()
	if newHeight < 1 {
		newHeight = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
