/*
Package config loads relsearch settings from TOML or YAML files.

Every section has defaults, so a file only needs the values it changes.
Command-line flags override file values.
*/
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/poiesic/relsearch/ai"
	"github.com/poiesic/relsearch/core"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnsupportedFormat indicates a config file extension other than .toml, .yaml or .yml.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrInvalidConfig indicates a config value out of range.
	ErrInvalidConfig = errors.New("invalid config")
)

// Rate limiter modes.
const (
	LimiterJitter = "jitter"
	LimiterToken  = "token"
	LimiterNone   = "none"
)

// Config holds the entire config structure
type Config struct {
	Suggest   SuggestConfig   `toml:"suggest" yaml:"suggest"`
	Expansion ExpansionConfig `toml:"expansion" yaml:"expansion"`
	RateLimit RateLimitConfig `toml:"ratelimit" yaml:"ratelimit"`
	Analysis  AnalysisConfig  `toml:"analysis" yaml:"analysis"`
	SERP      SERPConfig      `toml:"serp" yaml:"serp"`
	Cache     CacheConfig     `toml:"cache" yaml:"cache"`
	Cluster   ClusterConfig   `toml:"cluster" yaml:"cluster"`
	AI        ai.Config       `toml:"ai" yaml:"ai"`
}

// SuggestConfig configures the autocomplete client.
type SuggestConfig struct {
	Endpoint   string        `toml:"endpoint" yaml:"endpoint"`
	Locale     string        `toml:"locale" yaml:"locale"`
	UserAgent  string        `toml:"user_agent" yaml:"user_agent"`
	Timeout    time.Duration `toml:"timeout" yaml:"timeout"`
	Attempts   int           `toml:"attempts" yaml:"attempts"`
	RetryDelay time.Duration `toml:"retry_delay" yaml:"retry_delay"`
}

// ExpansionConfig configures the expansion engine.
type ExpansionConfig struct {
	Depth       int           `toml:"depth" yaml:"depth"`
	Workers     int           `toml:"workers" yaml:"workers"`
	CallTimeout time.Duration `toml:"call_timeout" yaml:"call_timeout"`
}

// RateLimitConfig selects and configures the limiter shared by all fetches.
type RateLimitConfig struct {
	Mode      string        `toml:"mode" yaml:"mode"`
	MinDelay  time.Duration `toml:"min_delay" yaml:"min_delay"`
	MaxDelay  time.Duration `toml:"max_delay" yaml:"max_delay"`
	PerSecond float64       `toml:"per_second" yaml:"per_second"`
	Burst     int           `toml:"burst" yaml:"burst"`
}

// AnalysisConfig configures the n-gram analyzer.
type AnalysisConfig struct {
	MaxPhraseLength int      `toml:"max_phrase_length" yaml:"max_phrase_length"`
	MinFrequency    int      `toml:"min_frequency" yaml:"min_frequency"`
	StopWords       bool     `toml:"stop_words" yaml:"stop_words"`
	StopWordList    []string `toml:"stop_word_list" yaml:"stop_word_list"`
	Limit           int      `toml:"limit" yaml:"limit"` // Rows shown by the CLI; 0 shows all
}

// SERPConfig configures the organic results client.
type SERPConfig struct {
	Endpoint   string        `toml:"endpoint" yaml:"endpoint"`
	APIKey     string        `toml:"api_key" yaml:"api_key"`
	EngineID   string        `toml:"engine_id" yaml:"engine_id"`
	Language   string        `toml:"language" yaml:"language"`
	Country    string        `toml:"country" yaml:"country"`
	MaxResults int           `toml:"max_results" yaml:"max_results"`
	Timeout    time.Duration `toml:"timeout" yaml:"timeout"`
}

// CacheConfig configures the suggestion cache.
type CacheConfig struct {
	Enabled bool          `toml:"enabled" yaml:"enabled"`
	Path    string        `toml:"path" yaml:"path"`
	TTL     time.Duration `toml:"ttl" yaml:"ttl"`
}

// ClusterConfig configures query clustering.
type ClusterConfig struct {
	Enabled   bool    `toml:"enabled" yaml:"enabled"`
	Threshold float64 `toml:"threshold" yaml:"threshold"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Suggest: SuggestConfig{
			Endpoint:   "http://suggestqueries.google.com/complete/search",
			Locale:     "fa",
			UserAgent:  "relsearch/1.0",
			Timeout:    30 * time.Second,
			Attempts:   1,
			RetryDelay: time.Second,
		},
		Expansion: ExpansionConfig{
			Depth:       1,
			Workers:     1,
			CallTimeout: 10 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Mode:      LimiterJitter,
			MinDelay:  time.Second,
			MaxDelay:  6 * time.Second,
			PerSecond: 1,
			Burst:     1,
		},
		Analysis: AnalysisConfig{
			MaxPhraseLength: 2,
			MinFrequency:    1,
			Limit:           50,
		},
		SERP: SERPConfig{
			Endpoint:   "https://www.googleapis.com/customsearch/v1",
			Language:   "en",
			MaxResults: 10,
			Timeout:    30 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    defaultCachePath(),
			TTL:     24 * time.Hour,
		},
		Cluster: ClusterConfig{
			Enabled:   false,
			Threshold: 0.80,
		},
		AI: *ai.DefaultConfig(),
	}
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "relsearch")
	}
	return filepath.Join(dir, "relsearch")
}

// Load reads a TOML (.toml) or YAML (.yaml, .yml) file over the defaults.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parsing %s: unknown keys %v", path, undecoded)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	return cfg, nil
}

// Validate checks that values are in range.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Suggest.Endpoint) == "" {
		return fmt.Errorf("%w: suggest.endpoint is required", ErrInvalidConfig)
	}
	if c.Suggest.Attempts < 1 {
		return fmt.Errorf("%w: suggest.attempts must be at least 1", ErrInvalidConfig)
	}
	if err := core.ValidateDepth(c.Expansion.Depth); err != nil {
		return fmt.Errorf("%w: expansion.depth: %w", ErrInvalidConfig, err)
	}
	if c.Expansion.Workers < 1 {
		return fmt.Errorf("%w: expansion.workers must be at least 1", ErrInvalidConfig)
	}
	if c.Expansion.CallTimeout <= 0 {
		return fmt.Errorf("%w: expansion.call_timeout must be positive", ErrInvalidConfig)
	}

	switch c.RateLimit.Mode {
	case LimiterJitter:
		if c.RateLimit.MinDelay < 0 || c.RateLimit.MaxDelay < c.RateLimit.MinDelay {
			return fmt.Errorf("%w: ratelimit delays must satisfy 0 <= min_delay <= max_delay", ErrInvalidConfig)
		}
	case LimiterToken:
		if c.RateLimit.PerSecond <= 0 || c.RateLimit.Burst < 1 {
			return fmt.Errorf("%w: ratelimit.per_second and ratelimit.burst must be positive", ErrInvalidConfig)
		}
	case LimiterNone:
	default:
		return fmt.Errorf("%w: unknown ratelimit.mode %q", ErrInvalidConfig, c.RateLimit.Mode)
	}

	if err := core.ValidatePhraseLength(c.Analysis.MaxPhraseLength); err != nil {
		return fmt.Errorf("%w: analysis.max_phrase_length: %w", ErrInvalidConfig, err)
	}
	if c.Analysis.MinFrequency < 1 {
		return fmt.Errorf("%w: analysis.min_frequency must be at least 1", ErrInvalidConfig)
	}
	if c.Analysis.Limit < 0 {
		return fmt.Errorf("%w: analysis.limit cannot be negative", ErrInvalidConfig)
	}
	if c.SERP.MaxResults < 1 || c.SERP.MaxResults > 100 {
		return fmt.Errorf("%w: serp.max_results must be between 1 and 100", ErrInvalidConfig)
	}
	if c.Cache.Enabled {
		if c.Cache.Path == "" {
			return fmt.Errorf("%w: cache.path is required when the cache is enabled", ErrInvalidConfig)
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("%w: cache.ttl must be positive", ErrInvalidConfig)
		}
	}
	if c.Cluster.Enabled {
		if c.Cluster.Threshold <= 0 || c.Cluster.Threshold > 1 {
			return fmt.Errorf("%w: cluster.threshold must be in (0, 1]", ErrInvalidConfig)
		}
		if err := c.AI.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}
