package wizard

import (
	"github.com/shorlog-studio/internal/models"
	"github.com/shorlog-studio/internal/validation"
)

// HashtagSet is an ordered, case-sensitive set of at most MaxHashtags tags
// stored without the leading '#'.
type HashtagSet struct {
	tags []string
}

// NewHashtagSet builds a set from tags, skipping invalid and surplus ones
func NewHashtagSet(tags ...string) *HashtagSet {
	s := &HashtagSet{}
	s.Merge(tags)
	return s
}

// Add normalizes raw and appends it
func (s *HashtagSet) Add(raw string) (string, error) {
	tag := validation.NormalizeHashtag(raw)
	if tag == "" {
		return "", ErrEmptyHashtag
	}
	if s.Contains(tag) {
		return "", ErrDuplicateHashtag
	}
	if len(s.tags) >= models.MaxHashtags {
		return "", ErrTooManyHashtags
	}
	s.tags = append(s.tags, tag)
	return tag, nil
}

// Remove deletes tag and reports whether it was present
func (s *HashtagSet) Remove(tag string) bool {
	tag = validation.NormalizeHashtag(tag)
	for i, t := range s.tags {
		if t == tag {
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
			return true
		}
	}
	return false
}

// Merge appends new suggestions after the existing tags until the set is
// full and returns how many were added.
func (s *HashtagSet) Merge(suggestions []string) int {
	added := 0
	for _, raw := range suggestions {
		if len(s.tags) >= models.MaxHashtags {
			break
		}
		if _, err := s.Add(raw); err == nil {
			added++
		}
	}
	return added
}

// Contains reports membership of an already normalized tag
func (s *HashtagSet) Contains(tag string) bool {
	for _, t := range s.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Tags returns a copy of the tags in insertion order
func (s *HashtagSet) Tags() []string {
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

// Len returns the number of tags
func (s *HashtagSet) Len() int {
	return len(s.tags)
}
