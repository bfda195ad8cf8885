package searchclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFragment(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{
			name:     "plain text untouched",
			fragment: "wooden chair",
			want:     "wooden chair",
		},
		{
			name:     "strong emphasis preserved",
			fragment: "wooden <strong>chair</strong> legs",
			want:     "wooden <strong>chair</strong> legs",
		},
		{
			name:     "unexpected markup stripped",
			fragment: `<a href="http://evil.example">chair</a>`,
			want:     "chair",
		},
		{
			name:     "script content dropped entirely",
			fragment: "<script>alert(1)</script>safe",
			want:     "safe",
		},
		{
			name:     "emphasis survives inside stripped markup",
			fragment: "<div>a <strong>b</strong></div>",
			want:     "a <strong>b</strong>",
		},
		{
			name:     "text is entity escaped",
			fragment: "fish & chips",
			want:     "fish &amp; chips",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFragment(tt.fragment))
		})
	}
}

func TestSanitizeHighlights(t *testing.T) {
	out := SanitizeHighlights(map[string][]string{
		"title": {"<em>a</em> <strong>b</strong>"},
		"url":   {"/shop/<strong>chairs</strong>"},
	})
	assert.Equal(t, []string{"a <strong>b</strong>"}, out["title"])
	assert.Equal(t, []string{"/shop/<strong>chairs</strong>"}, out["url"])

	assert.Nil(t, SanitizeHighlights(nil))
}
