package wizard

import (
	"net/url"
	"path"

	"github.com/google/uuid"
	"github.com/shorlog-studio/internal/models"
)

// Source tells where a staged image comes from
type Source string

const (
	SourceFile Source = "FILE"
	SourceURL  Source = "URL"
)

// LocalImage is an image staged in the wizard but not yet confirmed by the server
type LocalImage struct {
	ID               string
	Source           Source
	PreviewURL       string
	RemoteURL        string
	File             *models.FilePart
	AspectRatio      models.AspectRatio
	OriginalFilename string
}

func newFileImage(part models.FilePart) LocalImage {
	id := uuid.New().String()
	file := part
	return LocalImage{
		ID:               id,
		Source:           SourceFile,
		PreviewURL:       "local://" + id + "/" + url.PathEscape(part.Name),
		File:             &file,
		AspectRatio:      models.AspectOriginal,
		OriginalFilename: part.Name,
	}
}

func newURLImage(remote string) LocalImage {
	name := ""
	if u, err := url.Parse(remote); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" {
			name = base
		}
	}
	return LocalImage{
		ID:               uuid.New().String(),
		Source:           SourceURL,
		PreviewURL:       remote,
		RemoteURL:        remote,
		AspectRatio:      models.AspectOriginal,
		OriginalFilename: name,
	}
}

// ImageSet is the ordered list of staged images. Position in the list is the
// display and submission order. It is not safe for concurrent use.
type ImageSet struct {
	items []LocalImage
}

// Len returns the number of staged images
func (s *ImageSet) Len() int {
	return len(s.items)
}

// Remaining returns how many more images fit
func (s *ImageSet) Remaining() int {
	return models.MaxFiles - len(s.items)
}

// Items returns a copy of the staged images in order
func (s *ImageSet) Items() []LocalImage {
	out := make([]LocalImage, len(s.items))
	copy(out, s.items)
	return out
}

// append adds as many images as fit and drops the rest
func (s *ImageSet) append(images []LocalImage) int {
	n := len(images)
	if r := s.Remaining(); n > r {
		n = r
	}
	if n <= 0 {
		return 0
	}
	s.items = append(s.items, images[:n]...)
	return n
}

func (s *ImageSet) indexOf(id string) int {
	for i, img := range s.items {
		if img.ID == id {
			return i
		}
	}
	return -1
}

// setAspectRatio updates one image in place and reports whether it changed
func (s *ImageSet) setAspectRatio(id string, ratio models.AspectRatio) (bool, error) {
	if !ratio.Valid() {
		return false, ErrInvalidAspectRatio
	}
	i := s.indexOf(id)
	if i < 0 {
		return false, ErrImageNotFound
	}
	if s.items[i].AspectRatio == ratio {
		return false, nil
	}
	s.items[i].AspectRatio = ratio
	return true, nil
}

// remove deletes by id and returns the index it held
func (s *ImageSet) remove(id string) (int, error) {
	i := s.indexOf(id)
	if i < 0 {
		return -1, ErrImageNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return i, nil
}

// move splices the image at from into position to
func (s *ImageSet) move(from, to int) error {
	if from < 0 || from >= len(s.items) || to < 0 || to >= len(s.items) {
		return ErrIndexOutOfRange
	}
	if from == to {
		return nil
	}
	img := s.items[from]
	s.items = append(s.items[:from], s.items[from+1:]...)
	s.items = append(s.items[:to], append([]LocalImage{img}, s.items[to:]...)...)
	return nil
}
