package serp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/poiesic/relsearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves total numbered results, honoring start and num.
func fakeAPI(t *testing.T, total int, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "test-cx", q.Get("cx"))

		start, _ := strconv.Atoi(q.Get("start"))
		num, _ := strconv.Atoi(q.Get("num"))

		items := []map[string]string{}
		for i := start; i < start+num && i <= total; i++ {
			items = append(items, map[string]string{
				"title":       fmt.Sprintf(" Result %d ", i),
				"snippet":     fmt.Sprintf("snippet %d", i),
				"link":        fmt.Sprintf("https://example.com/%d", i),
				"displayLink": "example.com",
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"items":             items,
			"searchInformation": map[string]string{"totalResults": strconv.Itoa(total)},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("", "cx")
	assert.ErrorIs(t, err, ErrAPIKeyRequired)

	_, err = NewClient("key", "")
	assert.ErrorIs(t, err, ErrEngineIDRequired)

	_, err = NewClient("key", "cx", WithMaxResults(0))
	assert.ErrorIs(t, err, ErrInvalidMaxResults)

	_, err = NewClient("key", "cx", WithMaxResults(101))
	assert.ErrorIs(t, err, ErrInvalidMaxResults)

	_, err = NewClient("key", "cx", WithLanguage("not a tag!"))
	assert.Error(t, err)

	_, err = NewClient("key", "cx", WithCountry("zz9"))
	assert.Error(t, err)
}

func TestSearch_SinglePage(t *testing.T) {
	var requests atomic.Int32
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{
			"searchInformation": {"totalResults": "1230000"},
			"items": [
				{"title": "Best SEO Tools", "snippet": "free seo tools", "link": "https://a.example", "displayLink": "a.example"},
				{"title": "SEO Tools Compared", "snippet": "seo tools list", "link": "https://b.example", "displayLink": "b.example"}
			]
		}`)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", "test-cx",
		WithEndpoint(srv.URL),
		WithLanguage("en"),
		WithCountry("us"),
	)
	require.NoError(t, err)

	set, err := c.Search(context.Background(), " seo tools ")
	require.NoError(t, err)

	assert.Equal(t, "seo tools", set.Query)
	assert.Equal(t, int64(1230000), set.TotalResults)
	require.Len(t, set.Results, 2)
	assert.Equal(t, Result{Rank: 1, Title: "Best SEO Tools", Snippet: "free seo tools", Link: "https://a.example", DisplayLink: "a.example"}, set.Results[0])
	assert.Equal(t, []string{"Best SEO Tools", "SEO Tools Compared"}, set.Titles())
	assert.Equal(t, []string{"free seo tools", "seo tools list"}, set.Snippets())
	assert.Equal(t, int32(1), requests.Load(), "short page ends paging")

	assert.Contains(t, gotQuery, "hl=en")
	assert.Contains(t, gotQuery, "gl=us")
	assert.Contains(t, gotQuery, "q=seo+tools")
	assert.Contains(t, gotQuery, "start=1")
	assert.Contains(t, gotQuery, "num=10")
}

func TestSearch_Paging(t *testing.T) {
	var requests atomic.Int32
	srv := fakeAPI(t, 100, &requests)

	c, err := NewClient("test-key", "test-cx", WithEndpoint(srv.URL), WithMaxResults(25))
	require.NoError(t, err)

	set, err := c.Search(context.Background(), "python")
	require.NoError(t, err)

	require.Len(t, set.Results, 25)
	assert.Equal(t, int32(3), requests.Load())
	for i, r := range set.Results {
		assert.Equal(t, i+1, r.Rank)
		assert.Equal(t, fmt.Sprintf("Result %d", i+1), r.Title)
	}
}

func TestSearch_StopsWhenResultsRunOut(t *testing.T) {
	var requests atomic.Int32
	srv := fakeAPI(t, 13, &requests)

	c, err := NewClient("test-key", "test-cx", WithEndpoint(srv.URL), WithMaxResults(50))
	require.NoError(t, err)

	set, err := c.Search(context.Background(), "python")
	require.NoError(t, err)
	assert.Len(t, set.Results, 13)
	assert.Equal(t, int32(2), requests.Load())
}

func TestSearch_NoResults(t *testing.T) {
	var requests atomic.Int32
	srv := fakeAPI(t, 0, &requests)

	c, err := NewClient("test-key", "test-cx", WithEndpoint(srv.URL))
	require.NoError(t, err)

	set, err := c.Search(context.Background(), "zzqqxx")
	require.NoError(t, err)
	assert.Empty(t, set.Results)
	assert.Empty(t, set.Titles())
}

func TestSearch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": {"code": 403, "message": "Daily limit exceeded"}}`)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", "test-cx", WithEndpoint(srv.URL))
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "python")
	assert.ErrorIs(t, err, core.ErrCollaboratorUnavailable)
	assert.ErrorIs(t, err, ErrAPI)
	assert.ErrorContains(t, err, "Daily limit exceeded")
}

func TestSearch_NonJSONFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", "test-cx", WithEndpoint(srv.URL))
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "python")
	assert.ErrorIs(t, err, ErrAPI)
	assert.ErrorContains(t, err, "502")
}

func TestSearch_EmptyQuery(t *testing.T) {
	c, err := NewClient("test-key", "test-cx")
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "  ")
	assert.ErrorIs(t, err, core.ErrEmptyInput)
}

func TestSearch_ContextCancelled(t *testing.T) {
	var requests atomic.Int32
	srv := fakeAPI(t, 10, &requests)

	c, err := NewClient("test-key", "test-cx", WithEndpoint(srv.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Search(ctx, "python")
	assert.ErrorIs(t, err, context.Canceled)
}
