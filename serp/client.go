package serp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/relsearch/core"
	"golang.org/x/text/language"
)

const (
	// DefaultEndpoint is the Custom Search JSON API endpoint.
	DefaultEndpoint = "https://www.googleapis.com/customsearch/v1"

	// PageSize is the most results the API returns per request.
	PageSize = 10

	// MaxPageDepth is the deepest result the API will page to.
	MaxPageDepth = 100
)

// Client fetches organic results from the Custom Search JSON API.
type Client struct {
	endpoint   string
	apiKey     string
	engineID   string
	language   string
	country    string
	maxResults int
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client) error

// WithEndpoint overrides the API endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) error {
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return err
		}
		c.endpoint = endpoint
		return nil
	}
}

// WithLanguage sets the interface language (hl parameter) as a BCP 47 tag.
func WithLanguage(lang string) Option {
	return func(c *Client) error {
		tag, err := language.Parse(lang)
		if err != nil {
			return fmt.Errorf("invalid language %q: %w", lang, err)
		}
		c.language = tag.String()
		return nil
	}
}

// WithCountry boosts results from a country (gl parameter, two-letter code).
func WithCountry(country string) Option {
	return func(c *Client) error {
		if country == "" {
			c.country = ""
			return nil
		}
		region, err := language.ParseRegion(country)
		if err != nil {
			return fmt.Errorf("invalid country %q: %w", country, err)
		}
		c.country = strings.ToLower(region.String())
		return nil
	}
}

// WithMaxResults sets how many results Search collects.
// Default is PageSize.
func WithMaxResults(n int) Option {
	return func(c *Client) error {
		if n < 1 || n > MaxPageDepth {
			return ErrInvalidMaxResults
		}
		c.maxResults = n
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) error {
		if client != nil {
			c.httpClient = client
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "serp")
		return nil
	}
}

// NewClient creates a client for the given API key and search engine id.
func NewClient(apiKey, engineID string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if engineID == "" {
		return nil, ErrEngineIDRequired
	}

	c := &Client{
		endpoint:   DefaultEndpoint,
		apiKey:     apiKey,
		engineID:   engineID,
		maxResults: PageSize,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default().With("component", "serp"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

type apiItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	DisplayLink string `json:"displayLink"`
	Snippet     string `json:"snippet"`
}

type apiResponse struct {
	Items             []apiItem `json:"items"`
	SearchInformation struct {
		TotalResults string `json:"totalResults"`
	} `json:"searchInformation"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Search returns up to the configured number of organic results for query.
// Paging stops early when the API runs out of results.
func (c *Client) Search(ctx context.Context, query string) (*ResultSet, error) {
	if err := core.ValidateSeed(query); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)

	set := &ResultSet{Query: query, Results: []Result{}}
	for start := 1; len(set.Results) < c.maxResults; start += PageSize {
		num := min(PageSize, c.maxResults-len(set.Results))

		page, err := c.fetchPage(ctx, query, start, num)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrCollaboratorUnavailable, err)
		}
		if start == 1 {
			set.TotalResults, _ = strconv.ParseInt(page.SearchInformation.TotalResults, 10, 64)
		}

		for _, item := range page.Items {
			set.Results = append(set.Results, Result{
				Rank:        len(set.Results) + 1,
				Title:       strings.TrimSpace(item.Title),
				Snippet:     strings.TrimSpace(item.Snippet),
				Link:        item.Link,
				DisplayLink: item.DisplayLink,
			})
		}

		if len(page.Items) < num {
			break
		}
	}

	c.logger.Debug("organic results fetched", "query", query, "results", len(set.Results))
	return set, nil
}

func (c *Client) fetchPage(ctx context.Context, query string, start, num int) (*apiResponse, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))
	params.Set("start", strconv.Itoa(start))
	if c.language != "" {
		params.Set("hl", c.language)
	}
	if c.country != "" {
		params.Set("gl", c.country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}

	var page apiResponse
	if err := json.Unmarshal(body, &page); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: %s", ErrAPI, resp.Status)
		}
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if page.Error != nil {
		return nil, fmt.Errorf("%w: %d %s", ErrAPI, page.Error.Code, page.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrAPI, resp.Status)
	}
	return &page, nil
}
