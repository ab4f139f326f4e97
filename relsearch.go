// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package relsearch discovers the related searches around a seed query and
// ranks the phrases they share.
//
// A Toolkit wires the suggestion client, optional badger cache, rate limiter,
// expansion engine, n-gram analyzer, organic results client and query
// clusterer from a single config.Config:
//
//	tk, err := relsearch.NewToolkit(config.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer tk.Close()
//
//	report, err := tk.Related(ctx, "python", 1, nil)
package relsearch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/poiesic/relsearch/ai"
	"github.com/poiesic/relsearch/ai/openai"
	"github.com/poiesic/relsearch/cluster"
	"github.com/poiesic/relsearch/config"
	"github.com/poiesic/relsearch/core"
	"github.com/poiesic/relsearch/expansion"
	"github.com/poiesic/relsearch/ngram"
	"github.com/poiesic/relsearch/ratelimit"
	"github.com/poiesic/relsearch/serp"
	"github.com/poiesic/relsearch/storage"
	"github.com/poiesic/relsearch/storage/badger"
	"github.com/poiesic/relsearch/suggest"
)

var (
	// ErrConfigRequired indicates a nil config was passed.
	ErrConfigRequired = errors.New("config is required")

	// ErrCacheDisabled indicates a cache operation on a toolkit without a cache.
	ErrCacheDisabled = errors.New("suggestion cache is disabled")

	// ErrClusteringDisabled indicates clustering was requested without an AI provider.
	ErrClusteringDisabled = errors.New("clustering is disabled")
)

// Toolkit owns the shared collaborators of a relsearch run.
type Toolkit struct {
	cfg      *config.Config
	backend  *badger.Backend
	cache    storage.SuggestionCache
	fetcher  suggest.Fetcher
	limiter  ratelimit.Limiter
	provider ai.Provider
	logger   *slog.Logger
}

// ToolkitOption configures a Toolkit.
type ToolkitOption func(*toolkitOptions)

type toolkitOptions struct {
	logger        *slog.Logger
	fetcher       suggest.Fetcher
	limiter       ratelimit.Limiter
	provider      ai.Provider
	httpClient    *http.Client
	inMemoryCache bool
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) ToolkitOption {
	return func(o *toolkitOptions) {
		o.logger = logger
	}
}

// WithFetcher replaces the autocomplete client. The cache, when enabled,
// still wraps it.
func WithFetcher(fetcher suggest.Fetcher) ToolkitOption {
	return func(o *toolkitOptions) {
		o.fetcher = fetcher
	}
}

// WithLimiter replaces the limiter built from config.
func WithLimiter(limiter ratelimit.Limiter) ToolkitOption {
	return func(o *toolkitOptions) {
		o.limiter = limiter
	}
}

// WithAIProvider replaces the embedding provider built from config.
// The toolkit takes ownership and closes it.
func WithAIProvider(provider ai.Provider) ToolkitOption {
	return func(o *toolkitOptions) {
		o.provider = provider
	}
}

// WithHTTPClient sets the HTTP client for the suggestion and organic results clients.
func WithHTTPClient(client *http.Client) ToolkitOption {
	return func(o *toolkitOptions) {
		o.httpClient = client
	}
}

// WithInMemoryCache keeps the suggestion cache in memory instead of cfg.Cache.Path.
func WithInMemoryCache() ToolkitOption {
	return func(o *toolkitOptions) {
		o.inMemoryCache = true
	}
}

// NewToolkit validates cfg and builds the collaborators it describes.
func NewToolkit(cfg *config.Config, opts ...ToolkitOption) (*Toolkit, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &toolkitOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	tk := &Toolkit{
		cfg:    cfg,
		logger: options.logger,
	}

	// Suggestion client
	fetcher := options.fetcher
	if fetcher == nil {
		httpClient := options.httpClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: cfg.Suggest.Timeout}
		}
		client, err := suggest.NewGoogleClient(
			suggest.WithEndpoint(cfg.Suggest.Endpoint),
			suggest.WithLocale(cfg.Suggest.Locale),
			suggest.WithUserAgent(cfg.Suggest.UserAgent),
			suggest.WithRetries(cfg.Suggest.Attempts, cfg.Suggest.RetryDelay),
			suggest.WithHTTPClient(httpClient),
			suggest.WithLogger(options.logger),
		)
		if err != nil {
			return nil, err
		}
		fetcher = client
	}

	// Cache
	if cfg.Cache.Enabled {
		backend, err := badger.OpenBackend(cfg.Cache.Path, options.inMemoryCache)
		if err != nil {
			return nil, err
		}
		tk.backend = backend

		cache, err := badger.NewSuggestionCache(backend)
		if err != nil {
			tk.Close()
			return nil, err
		}
		tk.cache = cache

		cached, err := suggest.NewCachedFetcher(fetcher, cache, cfg.Suggest.Locale,
			suggest.WithTTL(cfg.Cache.TTL),
			suggest.WithCacheLogger(options.logger),
		)
		if err != nil {
			tk.Close()
			return nil, err
		}
		fetcher = cached
	}
	tk.fetcher = fetcher

	// Limiter
	tk.limiter = options.limiter
	if tk.limiter == nil {
		limiter, err := NewLimiter(cfg.RateLimit)
		if err != nil {
			tk.Close()
			return nil, err
		}
		tk.limiter = limiter
	}

	// Embeddings, only when clustering is on
	tk.provider = options.provider
	if tk.provider == nil && cfg.Cluster.Enabled {
		provider, err := openai.NewProvider(&cfg.AI)
		if err != nil {
			tk.Close()
			return nil, err
		}
		tk.provider = provider
	}

	return tk, nil
}

// NewLimiter builds the limiter selected by cfg.Mode.
func NewLimiter(cfg config.RateLimitConfig) (ratelimit.Limiter, error) {
	switch cfg.Mode {
	case config.LimiterToken:
		return ratelimit.NewTokenBucket(cfg.PerSecond, cfg.Burst)
	case config.LimiterNone:
		return ratelimit.Nop{}, nil
	default:
		return ratelimit.NewJitter(cfg.MinDelay, cfg.MaxDelay)
	}
}

// Close releases the AI provider and the cache backend.
func (tk *Toolkit) Close() error {
	if tk.provider != nil {
		if err := tk.provider.Close(); err != nil {
			tk.logger.Error("error closing AI provider", "err", err)
		}
	}

	if tk.cache != nil {
		if err := tk.cache.Close(); err != nil {
			tk.logger.Error("error closing suggestion cache", "err", err)
			return err
		}
	}

	if tk.backend != nil {
		if err := tk.backend.Close(); err != nil {
			tk.logger.Error("error closing backend storage", "err", err)
			return err
		}
	}
	return nil
}

// Config returns the toolkit's configuration.
func (tk *Toolkit) Config() *config.Config {
	return tk.cfg
}

// Fetcher returns the suggestion fetcher, cache included.
func (tk *Toolkit) Fetcher() suggest.Fetcher {
	return tk.fetcher
}

// Limiter returns the configured limiter. Each expansion paces with its own
// session of it (see ratelimit.ForRun).
func (tk *Toolkit) Limiter() ratelimit.Limiter {
	return tk.limiter
}

// NewExpander creates an expander from the expansion config. Extra options
// are applied after the configured ones. Callers must Release it.
func (tk *Toolkit) NewExpander(opts ...expansion.Option) (*expansion.Expander, error) {
	base := []expansion.Option{
		expansion.WithWorkers(tk.cfg.Expansion.Workers),
		expansion.WithCallTimeout(tk.cfg.Expansion.CallTimeout),
		expansion.WithLogger(tk.logger),
	}
	return expansion.NewExpander(tk.fetcher, tk.limiter, append(base, opts...)...)
}

// NewAnalyzer creates an analyzer from the analysis config.
func (tk *Toolkit) NewAnalyzer(opts ...ngram.Option) (*ngram.Analyzer, error) {
	base := []ngram.Option{
		ngram.WithMaxPhraseLength(tk.cfg.Analysis.MaxPhraseLength),
		ngram.WithMinFrequency(tk.cfg.Analysis.MinFrequency),
		ngram.WithLogger(tk.logger),
	}
	if tk.cfg.Analysis.StopWords {
		base = append(base, ngram.WithStopWords(tk.cfg.Analysis.StopWordList...))
	}
	return ngram.NewAnalyzer(append(base, opts...)...)
}

// NewSERPClient creates an organic results client from the serp config.
func (tk *Toolkit) NewSERPClient(opts ...serp.Option) (*serp.Client, error) {
	base := []serp.Option{
		serp.WithEndpoint(tk.cfg.SERP.Endpoint),
		serp.WithLanguage(tk.cfg.SERP.Language),
		serp.WithCountry(tk.cfg.SERP.Country),
		serp.WithMaxResults(tk.cfg.SERP.MaxResults),
		serp.WithHTTPClient(&http.Client{Timeout: tk.cfg.SERP.Timeout}),
		serp.WithLogger(tk.logger),
	}
	return serp.NewClient(tk.cfg.SERP.APIKey, tk.cfg.SERP.EngineID, append(base, opts...)...)
}

// NewClusterer creates a clusterer on the toolkit's embedding provider.
func (tk *Toolkit) NewClusterer(opts ...cluster.Option) (*cluster.Clusterer, error) {
	if tk.provider == nil {
		return nil, ErrClusteringDisabled
	}
	base := []cluster.Option{
		cluster.WithThreshold(tk.cfg.Cluster.Threshold),
		cluster.WithLogger(tk.logger),
	}
	return cluster.NewClusterer(tk.provider.Embedder(), append(base, opts...)...)
}

// PurgeCache removes every cached suggestion response.
func (tk *Toolkit) PurgeCache(ctx context.Context) (int, error) {
	if tk.cache == nil {
		return 0, ErrCacheDisabled
	}
	return tk.cache.Purge(ctx)
}

// Report is the outcome of Related.
type Report struct {
	Expansion *core.Expansion
	Records   []core.NGramRecord
	Clusters  []cluster.Cluster // Nil unless clustering is enabled
}

// Related expands seed to depth and ranks the phrases of the discovered
// queries. A cancelled expansion still yields a report over the partial
// result, returned together with the cancellation error.
func (tk *Toolkit) Related(ctx context.Context, seed string, depth int, monitor expansion.Monitor) (*Report, error) {
	expander, err := tk.NewExpander()
	if err != nil {
		return nil, err
	}
	defer expander.Release()

	result, expandErr := expander.ExpandWithMonitor(ctx, seed, depth, monitor)
	if result == nil {
		return nil, expandErr
	}

	analyzer, err := tk.NewAnalyzer()
	if err != nil {
		return nil, err
	}
	records, err := analyzer.Analyze(result.Queries)
	if err != nil {
		return nil, err
	}

	report := &Report{Expansion: result, Records: records}
	if tk.provider != nil && tk.cfg.Cluster.Enabled && expandErr == nil {
		clusterer, err := tk.NewClusterer()
		if err != nil {
			return nil, err
		}
		report.Clusters, err = clusterer.Cluster(ctx, result.Queries)
		if err != nil {
			return report, err
		}
	}

	return report, expandErr
}

// SERPReport is the outcome of AnalyzeSERP.
type SERPReport struct {
	Results  *serp.ResultSet
	Titles   []core.NGramRecord
	Snippets []core.NGramRecord
}

// AnalyzeSERP fetches organic results for query and ranks the phrases of
// their titles and snippets separately.
func (tk *Toolkit) AnalyzeSERP(ctx context.Context, query string) (*SERPReport, error) {
	client, err := tk.NewSERPClient()
	if err != nil {
		return nil, err
	}
	results, err := client.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	analyzer, err := tk.NewAnalyzer()
	if err != nil {
		return nil, err
	}
	report := &SERPReport{Results: results}
	if report.Titles, err = analyzer.Analyze(results.Titles()); err != nil {
		return nil, err
	}
	if report.Snippets, err = analyzer.Analyze(results.Snippets()); err != nil {
		return nil, err
	}
	return report, nil
}
