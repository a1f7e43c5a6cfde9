package ai

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/shorlog-studio/internal/models"
)

func TestParseList(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{
			name:  "one per line",
			text:  "travel\nsunset\nbeach",
			limit: 10,
			want:  []string{"travel", "sunset", "beach"},
		},
		{
			name:  "numbered with hashes",
			text:  "1. #travel\n2) #sunset\n- #beach",
			limit: 10,
			want:  []string{"travel", "sunset", "beach"},
		},
		{
			name:  "comma separated with duplicates",
			text:  "travel, sunset, travel, \"beach\"",
			limit: 10,
			want:  []string{"travel", "sunset", "beach"},
		},
		{
			name:  "limit applied",
			text:  "a\nb\nc\nd",
			limit: 2,
			want:  []string{"a", "b"},
		},
		{
			name:  "leading digits kept without list marker",
			text:  "2026trip",
			limit: 10,
			want:  []string{"2026trip"},
		},
		{
			name:  "blank answer",
			text:  "  \n ",
			limit: 10,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseList(tt.text, tt.limit)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseList() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(&models.SuggestRequest{
		Mode:    models.AIModeHashtag,
		Content: "golden hour at the pier",
		Message: "prefer english tags",
	})

	for _, want := range []string{"hashtags", "golden hour at the pier", "prefer english tags"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	title := BuildPrompt(&models.SuggestRequest{Mode: models.AIModeTitle, Content: "x"})
	if !strings.Contains(title, "title") {
		t.Errorf("title prompt missing instruction:\n%s", title)
	}
}

func TestCompactHashtag(t *testing.T) {
	if got := CompactHashtag(" street  photo "); got != "streetphoto" {
		t.Errorf("CompactHashtag() = %q", got)
	}
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("Error 429, Message: quota exceeded"), true},
		{errors.New("RESOURCE_EXHAUSTED"), true},
		{errors.New("Error 400: invalid argument"), false},
	}
	for _, tt := range tests {
		if got := isRateLimited(tt.err); got != tt.want {
			t.Errorf("isRateLimited(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
