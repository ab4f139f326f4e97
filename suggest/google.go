package suggest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/poiesic/relsearch/core"
	"golang.org/x/text/language"
)

const (
	// DefaultEndpoint is the public autocomplete endpoint.
	DefaultEndpoint = "http://suggestqueries.google.com/complete/search"

	// DefaultLocale is the interface language sent with each request.
	DefaultLocale = "fa"

	defaultUserAgent = "relsearch/1.0"
)

// GoogleClient fetches suggestions from the autocomplete endpoint in
// toolbar (XML) format.
type GoogleClient struct {
	endpoint   string
	locale     string
	userAgent  string
	httpClient *http.Client
	attempts   int
	retryDelay time.Duration
	logger     *slog.Logger
}

var _ Fetcher = (*GoogleClient)(nil)

// Option configures a GoogleClient.
type Option func(*GoogleClient) error

// WithEndpoint overrides the autocomplete endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(c *GoogleClient) error {
		u, err := url.Parse(endpoint)
		if err != nil {
			return err
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("endpoint %q must be http or https", endpoint)
		}
		c.endpoint = endpoint
		return nil
	}
}

// WithLocale sets the interface language (hl parameter).
// The locale must be a valid BCP 47 tag such as "fa" or "en-US".
// Default is DefaultLocale.
func WithLocale(locale string) Option {
	return func(c *GoogleClient) error {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidLocale, locale, err)
		}
		c.locale = tag.String()
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *GoogleClient) error {
		if client != nil {
			c.httpClient = client
		}
		return nil
	}
}

// WithRetries sets how many times a failed request is attempted in total and
// the base delay for exponential backoff between attempts.
// Default is a single attempt.
func WithRetries(attempts int, baseDelay time.Duration) Option {
	return func(c *GoogleClient) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		c.attempts = attempts
		c.retryDelay = baseDelay
		return nil
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *GoogleClient) error {
		if ua != "" {
			c.userAgent = ua
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *GoogleClient) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "google-suggest")
		return nil
	}
}

// NewGoogleClient creates a suggestion client.
func NewGoogleClient(opts ...Option) (*GoogleClient, error) {
	c := &GoogleClient{
		endpoint:   DefaultEndpoint,
		locale:     DefaultLocale,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		attempts:   1,
		retryDelay: time.Second,
		logger:     slog.Default().With("component", "google-suggest"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Locale returns the configured interface language.
func (c *GoogleClient) Locale() string {
	return c.locale
}

// FetchSuggestions implements Fetcher.
// The query is normalized before sending; the normalized form (with '+'
// between words) is sent as the literal q value.
func (c *GoogleClient) FetchSuggestions(ctx context.Context, query string) ([]string, error) {
	query = core.NormalizeQuery(query)
	if query == "" {
		return nil, core.ErrEmptyInput
	}

	var suggestions []string
	err := RetryWithBackoff(ctx, func() error {
		var err error
		suggestions, err = c.fetchOnce(ctx, query)
		return err
	}, c.attempts, c.retryDelay)
	if err != nil {
		c.logger.Debug("suggestion fetch failed", "query", query, "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrCollaboratorUnavailable, err)
	}

	c.logger.Debug("fetched suggestions", "query", query, "count", len(suggestions))
	return suggestions, nil
}

func (c *GoogleClient) fetchOnce(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("output", "toolbar")
	params.Set("hl", c.locale)
	params.Set("oe", "utf-8")
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, permanent(err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, permanent(err)
		}
		return nil, err
	}

	return ParseToolbar(resp.Body)
}

// ParseToolbar extracts suggestion strings from a toolbar-format response:
//
//	<toplevel>
//	  <CompleteSuggestion><suggestion data="python tutorial"/></CompleteSuggestion>
//	</toplevel>
//
// Suggestions are returned in document order, trimmed, with blanks dropped.
func ParseToolbar(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	suggestions := []string{}
	doc.Find("suggestion").Each(func(_ int, s *goquery.Selection) {
		data, ok := s.Attr("data")
		if !ok {
			return
		}
		data = strings.TrimSpace(data)
		if data != "" {
			suggestions = append(suggestions, data)
		}
	})
	return suggestions, nil
}
