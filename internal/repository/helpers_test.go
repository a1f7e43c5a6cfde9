package repository

import "testing"

func TestSnippet(t *testing.T) {
	tests := []struct {
		name    string
		content string
		max     int
		want    string
	}{
		{name: "short", content: "hello", max: 10, want: "hello"},
		{name: "first line only", content: "title\nbody text", max: 10, want: "title"},
		{name: "truncated", content: "abcdefghij", max: 4, want: "abcd…"},
		{name: "multibyte", content: "가나다라마", max: 3, want: "가나다…"},
		{name: "empty", content: "", max: 5, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := snippet(tt.content, tt.max); got != tt.want {
				t.Errorf("snippet(%q, %d) = %q, want %q", tt.content, tt.max, got, tt.want)
			}
		})
	}
}

func TestNullString(t *testing.T) {
	if nullString("").Valid {
		t.Error("Empty string should be NULL")
	}
	if ns := nullString("x"); !ns.Valid || ns.String != "x" {
		t.Errorf("Unexpected value: %+v", ns)
	}
}
