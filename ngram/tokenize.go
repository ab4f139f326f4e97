package ngram

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/poiesic/relsearch/core"
)

const zeroWidthNonJoiner = '\u200c'

// DefaultStopWords are common English function words dropped when stop-word
// filtering is enabled.
var DefaultStopWords = []string{
	"the", "a", "an", "be", "is", "are", "was", "to", "of", "and", "in", "that",
	"have", "it", "for", "not", "on", "with", "as", "you", "do", "at", "this",
	"but", "by", "from", "or",
}

// Tokenize splits text into lowercase words.
//
// Apostrophes inside words are removed ("don't" becomes "dont"). Every rune
// that is not a letter, number, combining mark or zero-width non-joiner
// separates words, including '+', so normalized queries tokenize the same as
// their spaced form. Invalid UTF-8 yields core.ErrTokenization.
func Tokenize(text string) ([]string, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: invalid UTF-8", core.ErrTokenization)
	}

	text = strings.ToLower(text)
	text = strings.NewReplacer("'", "", "\u2019", "").Replace(text)

	words := strings.FieldsFunc(text, func(r rune) bool {
		return !isWordRune(r)
	})
	return words, nil
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) || r == zeroWidthNonJoiner
}

// removeStopWords filters words in place.
func removeStopWords(words []string, stop map[string]bool) []string {
	if len(stop) == 0 {
		return words
	}
	filtered := words[:0]
	for _, w := range words {
		if !stop[w] {
			filtered = append(filtered, w)
		}
	}
	return filtered
}
