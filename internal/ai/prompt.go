package ai

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shorlog-studio/internal/models"
)

// BuildPrompt renders the instruction sent to the model for a suggestion request
func BuildPrompt(req *models.SuggestRequest) string {
	var sb strings.Builder

	switch req.Mode {
	case models.AIModeHashtag:
		fmt.Fprintf(&sb, "Suggest up to %d short hashtags for the following social media post. ", models.MaxHashtags)
		sb.WriteString("Answer with one hashtag per line, without the # sign, numbering or explanations.")
	case models.AIModeKeyword:
		sb.WriteString("Extract up to 10 search keywords from the following text. ")
		sb.WriteString("Answer with one keyword per line, without numbering or explanations.")
	case models.AIModeTitle:
		sb.WriteString("Write one short, catchy title for the following text. Answer with the title only.")
	case models.AIModeSummary:
		sb.WriteString("Summarize the following text in two or three sentences. Answer with the summary only.")
	}

	if msg := strings.TrimSpace(req.Message); msg != "" {
		sb.WriteString("\nAdditional instruction: ")
		sb.WriteString(msg)
	}

	sb.WriteString("\n\nText:\n")
	sb.WriteString(req.Content)
	return sb.String()
}

// ParseList splits a model answer into items. Bullets, numbering, '#' and
// surrounding quotes are stripped; comma separated answers are split too.
// Duplicates are dropped keeping the first occurrence; at most limit items
// are returned.
func ParseList(text string, limit int) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == ','
	})

	if limit <= 0 || limit > len(fields) {
		limit = len(fields)
	}

	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, limit)
	for _, field := range fields {
		item := cleanItem(field)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
		if len(out) >= limit {
			break
		}
	}
	return out
}

var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

func cleanItem(s string) string {
	s = listMarker.ReplaceAllString(s, "")
	s = strings.Trim(strings.TrimSpace(s), "\"'`")
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	return strings.TrimSpace(s)
}

// CompactHashtag removes inner whitespace so a multi-word answer still forms one tag
func CompactHashtag(s string) string {
	return strings.Join(strings.Fields(s), "")
}
