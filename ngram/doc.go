// Package ngram ranks the word phrases of a text corpus by weighted frequency.
//
// Every corpus item is tokenized independently and all contiguous k-word
// windows for k = 1..max are counted. A phrase's weighted frequency is its
// absolute frequency multiplied by the square of its length, so a two-word
// phrase seen twice (weight 8) outranks a single word seen three times
// (weight 3).
//
// Basic usage:
//
//	analyzer, err := ngram.NewAnalyzer(ngram.WithMaxPhraseLength(3))
//	if err != nil {
//		log.Fatal(err)
//	}
//	records, err := analyzer.Analyze(queries)
package ngram
