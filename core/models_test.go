package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "persian content", content: "آموزش پایتون"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, IDFromContent(tt.content), IDFromContent(tt.content))
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	assert.NotEqual(t, IDFromContent("content1"), IDFromContent("content2"))
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"single word", "python", "python"},
		{"trims outer whitespace", "  python  ", "python"},
		{"internal spaces become plus", "python tutorial for beginners", "python+tutorial+for+beginners"},
		{"each space is replaced", "seo  tools", "seo++tools"},
		{"tabs are trimmed", "\tseo tools\n", "seo+tools"},
		{"blank", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeQuery(tt.query))
		})
	}
}

func TestWeightFor(t *testing.T) {
	assert.Equal(t, 3.0, WeightFor(3, 1))
	assert.Equal(t, 8.0, WeightFor(2, 2))
	assert.Equal(t, 27.0, WeightFor(3, 3))
	assert.Equal(t, 0.0, WeightFor(0, 2))
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "complete", StatusComplete.String())
	assert.Equal(t, "partial", StatusPartial.String())
	assert.Equal(t, "unknown", Status(0).String())
}

func TestExpansion_Partial(t *testing.T) {
	assert.False(t, (&Expansion{Status: StatusComplete}).Partial())
	assert.True(t, (&Expansion{Status: StatusPartial}).Partial())
}

func TestCacheKey(t *testing.T) {
	// Raw and normalized forms share a key
	assert.Equal(t, CacheKey("fa", "seo tools"), CacheKey("fa", "seo+tools"))
	assert.NotEqual(t, CacheKey("fa", "seo tools"), CacheKey("en", "seo tools"))
}
