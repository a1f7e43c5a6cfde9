package models

// AIMode selects the kind of suggestion requested from the assistant.
type AIMode string

const (
	AIModeHashtag AIMode = "hashtag"
	AIModeTitle   AIMode = "title"
	AIModeKeyword AIMode = "keyword"
	AIModeSummary AIMode = "summary"
)

// ValidAIModes holds the accepted modes
var ValidAIModes = map[AIMode]bool{
	AIModeHashtag: true,
	AIModeTitle:   true,
	AIModeKeyword: true,
	AIModeSummary: true,
}

// ListResult reports whether the mode answers with a list of results.
func (m AIMode) ListResult() bool {
	return m == AIModeHashtag || m == AIModeKeyword
}

// SuggestRequest is the body of an AI suggestion call
type SuggestRequest struct {
	Mode    AIMode `json:"mode"`
	Content string `json:"content"`
	Message string `json:"message,omitempty"`
}

// SuggestResponse carries either a list of results or a single result,
// depending on the mode.
type SuggestResponse struct {
	Results []string `json:"results,omitempty"`
	Result  string   `json:"result,omitempty"`
}
