package ngram

import (
	"testing"

	"github.com/poiesic/relsearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"spaces", "SEO Tools Free", []string{"seo", "tools", "free"}},
		{"punctuation", "seo, tools! (free)", []string{"seo", "tools", "free"}},
		{"apostrophe", "don't stop", []string{"dont", "stop"}},
		{"curly apostrophe", "don’t stop", []string{"dont", "stop"}},
		{"plus separated", "python+tutorial", []string{"python", "tutorial"}},
		{"numbers", "python 3.12 tutorial", []string{"python", "3", "12", "tutorial"}},
		{"persian with zwnj", "آموزش می\u200cخواهم", []string{"آموزش", "می\u200cخواهم"}},
		{"empty", "   ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenize_InvalidUTF8(t *testing.T) {
	_, err := Tokenize("seo \xff")
	assert.ErrorIs(t, err, core.ErrTokenization)
}

func TestRemoveStopWords(t *testing.T) {
	stop := map[string]bool{"the": true, "for": true}
	assert.Equal(t, []string{"best", "seo"}, removeStopWords([]string{"the", "best", "for", "seo"}, stop))
	assert.Equal(t, []string{"a"}, removeStopWords([]string{"a"}, nil))
}
