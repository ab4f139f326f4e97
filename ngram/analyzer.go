package ngram

import (
	"log/slog"
	"runtime"
	"slices"
	"strings"

	"github.com/poiesic/relsearch/core"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxPhraseLength is the longest phrase counted unless configured.
const DefaultMaxPhraseLength = 2

// Analyzer counts and ranks phrases across a corpus.
// It holds no per-run state and is safe for concurrent use.
type Analyzer struct {
	maxLen       int
	minFrequency int
	stopWords    map[string]bool
	logger       *slog.Logger
}

// Analysis is the detailed outcome of a run.
type Analysis struct {
	Records []core.NGramRecord
	Items   int // Corpus items analyzed
	Skipped int // Items that could not be tokenized
}

// Option configures an Analyzer.
type Option func(*Analyzer) error

// WithMaxPhraseLength sets the longest phrase length counted.
// Default is DefaultMaxPhraseLength.
func WithMaxPhraseLength(n int) Option {
	return func(a *Analyzer) error {
		if err := core.ValidatePhraseLength(n); err != nil {
			return err
		}
		a.maxLen = n
		return nil
	}
}

// WithStopWords drops the given words before phrases are formed.
// Passing no words uses DefaultStopWords. Filtering is off by default.
func WithStopWords(words ...string) Option {
	return func(a *Analyzer) error {
		if len(words) == 0 {
			words = DefaultStopWords
		}
		a.stopWords = make(map[string]bool, len(words))
		for _, w := range words {
			a.stopWords[strings.ToLower(w)] = true
		}
		return nil
	}
}

// WithMinFrequency drops records whose absolute frequency is below n.
// Default is 1, which keeps everything.
func WithMinFrequency(n int) Option {
	return func(a *Analyzer) error {
		if n < 1 {
			return ErrInvalidMinFrequency
		}
		a.minFrequency = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger.With("component", "ngram")
		return nil
	}
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(opts ...Option) (*Analyzer, error) {
	a := &Analyzer{
		maxLen:       DefaultMaxPhraseLength,
		minFrequency: 1,
		logger:       slog.Default().With("component", "ngram"),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// MaxPhraseLength returns the longest phrase length counted.
func (a *Analyzer) MaxPhraseLength() int {
	return a.maxLen
}

// Analyze returns every phrase of 1..MaxPhraseLength words ranked by weighted
// frequency, then absolute frequency. Ties keep first-seen order, shorter
// phrases first. An empty corpus yields an empty result.
func (a *Analyzer) Analyze(corpus []string) ([]core.NGramRecord, error) {
	analysis, err := a.AnalyzeDetailed(corpus)
	if err != nil {
		return nil, err
	}
	return analysis.Records, nil
}

// AnalyzeDetailed is Analyze that also reports how many items were skipped.
func (a *Analyzer) AnalyzeDetailed(corpus []string) (*Analysis, error) {
	docs, skipped := a.tokenizeCorpus(corpus)

	// Lengths past the longest item cannot produce a window
	maxLen := min(a.maxLen, longestDoc(docs))

	// One counter per phrase length, each reading docs only
	tables := make([]*phraseTable, maxLen)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for k := 1; k <= maxLen; k++ {
		g.Go(func() error {
			tables[k-1] = countPhrases(docs, k)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := []core.NGramRecord{}
	for k, table := range tables {
		for _, phrase := range table.order {
			abs := table.counts[phrase]
			if abs < a.minFrequency {
				continue
			}
			records = append(records, core.NGramRecord{
				Phrase:            phrase,
				Length:            k + 1,
				AbsoluteFrequency: abs,
				WeightedFrequency: core.WeightFor(abs, k+1),
			})
		}
	}

	slices.SortStableFunc(records, compareRecords)

	a.logger.Debug("corpus analyzed",
		"items", len(corpus),
		"skipped", skipped,
		"max_length", a.maxLen,
		"phrases", len(records))

	return &Analysis{
		Records: records,
		Items:   len(corpus),
		Skipped: skipped,
	}, nil
}

func (a *Analyzer) tokenizeCorpus(corpus []string) ([][]string, int) {
	docs := make([][]string, 0, len(corpus))
	skipped := 0
	for i, item := range corpus {
		words, err := Tokenize(item)
		if err != nil {
			skipped++
			a.logger.Warn("skipping corpus item", "index", i, "err", err)
			continue
		}
		words = removeStopWords(words, a.stopWords)
		if len(words) > 0 {
			docs = append(docs, words)
		}
	}
	return docs, skipped
}

func longestDoc(docs [][]string) int {
	longest := 0
	for _, words := range docs {
		longest = max(longest, len(words))
	}
	return longest
}

// phraseTable counts phrases of one length in first-seen order.
type phraseTable struct {
	counts map[string]int
	order  []string
}

func countPhrases(docs [][]string, k int) *phraseTable {
	t := &phraseTable{counts: make(map[string]int)}
	for _, words := range docs {
		// Windows never cross item boundaries
		for i := 0; i+k <= len(words); i++ {
			phrase := strings.Join(words[i:i+k], " ")
			if _, seen := t.counts[phrase]; !seen {
				t.order = append(t.order, phrase)
			}
			t.counts[phrase]++
		}
	}
	return t
}

func compareRecords(a, b core.NGramRecord) int {
	switch {
	case a.WeightedFrequency > b.WeightedFrequency:
		return -1
	case a.WeightedFrequency < b.WeightedFrequency:
		return 1
	case a.AbsoluteFrequency > b.AbsoluteFrequency:
		return -1
	case a.AbsoluteFrequency < b.AbsoluteFrequency:
		return 1
	default:
		return 0
	}
}
