package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// suggestServer answers toolbar-format autocomplete requests from responses,
// keyed by the q parameter.
func suggestServer(t *testing.T, responses map[string][]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var b strings.Builder
		b.WriteString(`<?xml version="1.0"?><toplevel>`)
		for _, s := range responses[r.URL.Query().Get("q")] {
			fmt.Fprintf(&b, `<CompleteSuggestion><suggestion data="%s"/></CompleteSuggestion>`, s)
		}
		b.WriteString(`</toplevel>`)
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		fmt.Fprint(w, b.String())
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runApp(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	exitCode := 0
	oldExiter := cli.OsExiter
	cli.OsExiter = func(code int) { exitCode = code }
	t.Cleanup(func() { cli.OsExiter = oldExiter })

	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader(stdin)

	err := app.Run(append([]string{"relsearch", "--no-color"}, args...))
	if err == nil && exitCode != 0 {
		err = fmt.Errorf("exit code %d", exitCode)
	}
	return stdout.String(), stderr.String(), err
}

func TestRelatedCommand(t *testing.T) {
	srv := suggestServer(t, map[string][]string{
		"python":          {"python tutorial", "python jobs"},
		"python+tutorial": {"python tutorial for beginners"},
	})

	stdout, stderr, err := runApp(t, "",
		"related", "--endpoint", srv.URL, "--limiter", "none", "--depth", "1", "python")
	require.NoError(t, err)

	assert.Contains(t, stdout, `Related searches for "python" (depth 1): 3`)
	assert.Contains(t, stdout, "python tutorial for beginners")
	assert.Contains(t, stdout, "RANK")
	assert.Regexp(t, `1\s+python tutorial\s+2\s+2\s+8`, stdout)
	assert.Contains(t, stderr, "Done: 3 queries, 3 calls, 0 failures")
}

func TestRelatedCommand_Quiet(t *testing.T) {
	srv := suggestServer(t, map[string][]string{"seo": {"seo tools"}})

	_, stderr, err := runApp(t, "",
		"related", "--endpoint", srv.URL, "--limiter", "none", "--depth", "0", "--quiet", "seo")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "Done:")
}

func TestRelatedCommand_PartialWarning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "python":
			fmt.Fprint(w, `<toplevel><CompleteSuggestion><suggestion data="python jobs"/></CompleteSuggestion></toplevel>`)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	stdout, stderr, err := runApp(t, "",
		"related", "--endpoint", srv.URL, "--limiter", "none", "--depth", "1", "python")
	require.NoError(t, err)
	assert.Contains(t, stdout, "python jobs")
	assert.Contains(t, stderr, "warning: 1 of 2 suggestion calls failed")
}

func TestRelatedCommand_SeedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, _, err := runApp(t, "",
		"related", "--endpoint", srv.URL, "--limiter", "none", "python")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collaborator unavailable")
}

func TestRelatedCommand_Validation(t *testing.T) {
	_, _, err := runApp(t, "", "related")
	assert.Error(t, err)

	_, _, err = runApp(t, "", "related", "--limiter", "none", "--depth", "-1", "python")
	assert.Error(t, err)

	_, _, err = runApp(t, "", "--log-level", "loud", "related", "python")
	assert.Error(t, err)
}

func TestRelatedCommand_ConfigFile(t *testing.T) {
	srv := suggestServer(t, map[string][]string{"go": {"golang", "go tutorial"}})

	path := filepath.Join(t.TempDir(), "relsearch.toml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(`
[suggest]
endpoint = %q
locale = "en"

[expansion]
depth = 0

[ratelimit]
mode = "none"
`, srv.URL)), 0o644))

	stdout, _, err := runApp(t, "", "--config", path, "related", "--quiet", "go")
	require.NoError(t, err)
	assert.Contains(t, stdout, `Related searches for "go" (depth 0): 2`)
}

func TestAnalyzeCommand_Stdin(t *testing.T) {
	stdout, _, err := runApp(t, "seo tools\nseo tools free\n\nseo\n", "analyze")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Phrases: 5")
	lines := strings.Split(stdout, "\n")
	require.Greater(t, len(lines), 2)
	assert.Regexp(t, `^1\s+seo tools\s+2\s+2\s+8$`, lines[2])
}

func TestAnalyzeCommand_FileAndLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.txt")
	require.NoError(t, os.WriteFile(path, []byte("seo tools\nseo tools free\nseo\n"), 0o644))

	stdout, _, err := runApp(t, "", "analyze", "--file", path, "--limit", "2", "--phrase-length", "1")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Phrases: 3")
	assert.Regexp(t, `1\s+seo\s+1\s+3\s+3`, stdout)
	assert.NotContains(t, stdout, "free")
}

func TestAnalyzeCommand_MissingFile(t *testing.T) {
	_, _, err := runApp(t, "", "analyze", "--file", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestSerpCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		fmt.Fprint(w, `{"searchInformation": {"totalResults": "42"}, "items": [
			{"title": "Best SEO Tools", "snippet": "seo tools reviewed", "link": "https://a.example"},
			{"title": "SEO Tools List", "snippet": "top tools", "link": "https://b.example"}
		]}`)
	}))
	defer srv.Close()

	stdout, _, err := runApp(t, "",
		"serp", "--serp-endpoint", srv.URL, "--api-key", "k", "--engine-id", "cx", "seo", "tools")
	require.NoError(t, err)

	assert.Contains(t, stdout, `Organic results for "seo tools": 2 of about 42`)
	assert.Contains(t, stdout, "https://a.example")
	assert.Contains(t, stdout, "Title phrases:")
	assert.Contains(t, stdout, "Snippet phrases:")
}

func TestSerpCommand_MissingCredentials(t *testing.T) {
	t.Setenv("RELSEARCH_SERP_API_KEY", "")
	t.Setenv("RELSEARCH_SERP_ENGINE_ID", "")

	_, _, err := runApp(t, "", "serp", "seo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key is required")
}

func TestCachePurgeCommand(t *testing.T) {
	srv := suggestServer(t, map[string][]string{"seo": {"seo tools"}})
	dir := filepath.Join(t.TempDir(), "cache")

	_, _, err := runApp(t, "",
		"related", "--endpoint", srv.URL, "--limiter", "none", "--depth", "1", "--cache", "--cache-dir", dir, "--quiet", "seo")
	require.NoError(t, err)

	stdout, _, err := runApp(t, "", "cache", "purge", "--cache-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Purged 2 cached responses")

	stdout, _, err = runApp(t, "", "cache", "purge", "--cache-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Purged 0 cached responses")
}
