package slides_tools

import (
	"strings"
	"testing"

	"github.com/letterrip/letterrip/internal/slides"
)

func TestPreviewText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{
			name:     "short text unchanged",
			input:    "Hello",
			max:      10,
			expected: "Hello",
		},
		{
			name:     "long text truncated",
			input:    "abcdefghij",
			max:      5,
			expected: "abcde...",
		},
		{
			name:     "newlines collapsed",
			input:    "line one\nline two",
			max:      80,
			expected: "line one line two",
		},
		{
			name:     "exact length unchanged",
			input:    "abcde",
			max:      5,
			expected: "abcde",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := previewText(tt.input, tt.max); got != tt.expected {
				t.Errorf("previewText(%q, %d) = %q, expected %q", tt.input, tt.max, got, tt.expected)
			}
		})
	}
}

func TestFormatSlideList(t *testing.T) {
	slideList := []slides.Slide{
		{
			ObjectID: "slide-1",
			Elements: []slides.Element{
				{ObjectID: "el-1", Type: "SHAPE", Text: "Title text"},
				{ObjectID: "el-2", Type: "IMAGE"},
			},
		},
		{ObjectID: "slide-2"},
	}

	result := formatSlideList(slideList)

	if !strings.Contains(result, "Found 2 slide(s)") {
		t.Errorf("expected count header, got:\n%s", result)
	}
	for _, want := range []string{"slide-1", "SHAPE: Title text", "IMAGE", "slide-2", "(0 element(s))"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected result to contain %q, got:\n%s", want, result)
		}
	}
}

func TestFormatSlideList_Empty(t *testing.T) {
	if got := formatSlideList(nil); got != "Presentation has no slides." {
		t.Errorf("expected empty message, got %q", got)
	}
}
