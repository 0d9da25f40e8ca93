package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinchtab/pinchtab.com/internal/config"
	"github.com/pinchtab/pinchtab.com/internal/docerr"
)

// docsServer serves a fake content repository: a manifest under
// /docs/index.json and source files at arbitrary paths.
func docsServer(t *testing.T, manifestBody string, files map[string]string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/docs/index.json" {
			_, _ = w.Write([]byte(manifestBody))
			return
		}
		if body, ok := files[r.URL.Path]; ok {
			_, _ = w.Write([]byte(body))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testConfig(ts *httptest.Server, skip ...string) *config.Config {
	cfg := config.Defaults()
	cfg.Content.ManifestURL = ts.URL + "/docs/index.json"
	cfg.Content.Skip = skip
	return cfg
}

func TestBuildEndToEnd(t *testing.T) {
	ts := docsServer(t, `{
		"getting-started": "readme.md",
		"guides": ["guides/install.md", "guides/usage.md"]
	}`, map[string]string{
		"/readme.md":             "# Welcome\n\nHello.",
		"/docs/guides/install.md": "# Install\n\nRun this:\n\n```bash\n# fetch\ncurl -fsSL https://x/install.sh | sh\n```\n",
		"/docs/guides/usage.md":   "No heading here.",
	})

	data, report, err := Build(context.Background(), testConfig(ts), ts.Client(), nil)
	require.NoError(t, err)
	require.NotNil(t, data)

	require.Len(t, data.Sections, 2)
	assert.Equal(t, "Getting Started", data.Sections[0].Label)
	assert.Equal(t, "Guides", data.Sections[1].Label)
	require.Len(t, data.Pages, 3)

	// readme.md only resolves at the repo root; sourceUrl reflects that.
	home := data.PageBySlug("home")
	require.NotNil(t, home)
	assert.Equal(t, ts.URL+"/readme.md", home.SourceURL)
	assert.Equal(t, "Welcome", home.Title)

	install := data.PageBySlug("install")
	require.NotNil(t, install)
	assert.Contains(t, install.HTML, "code-terminal")
	assert.Contains(t, install.HTML, "term-comment")

	usage := data.PageBySlug("usage")
	require.NotNil(t, usage)
	assert.Equal(t, "Usage", usage.Title) // filename fallback

	assert.Equal(t, "home", data.FirstSlug)
	assert.Equal(t, "success", report.Outcome)
	assert.Equal(t, 3, report.Pages)
}

func TestBuildDedupAcrossSections(t *testing.T) {
	ts := docsServer(t, `{
		"a": "shared.md",
		"b": ["shared.md", "other.md"]
	}`, map[string]string{
		"/docs/shared.md": "# Shared",
		"/docs/other.md":  "# Other",
	})

	data, _, err := Build(context.Background(), testConfig(ts), ts.Client(), nil)
	require.NoError(t, err)

	// One page, referenced from both sections with the same slug and title.
	require.Len(t, data.Pages, 2)
	require.Len(t, data.Sections, 2)
	assert.Equal(t, data.Sections[0].Items[0], data.Sections[1].Items[0])
}

func TestBuildSlugCollision(t *testing.T) {
	ts := docsServer(t, `{
		"a": "alpha/guide/readme.md",
		"b": "beta/guide/readme.md"
	}`, map[string]string{
		"/docs/alpha/guide/readme.md": "# Alpha",
		"/docs/beta/guide/readme.md":  "# Beta",
	})

	data, _, err := Build(context.Background(), testConfig(ts), ts.Client(), nil)
	require.NoError(t, err)
	require.Len(t, data.Pages, 2)
	assert.Equal(t, "guide", data.Pages[0].Slug)
	assert.Equal(t, "guide-2", data.Pages[1].Slug)
}

func TestBuildAPIReferenceSource(t *testing.T) {
	ts := docsServer(t, `{"api": "docs/api-reference.json"}`, map[string]string{
		"/docs/api-reference.json": `{"endpoints": [
			{"method": "GET", "path": "/health", "cli": true},
			{"method": "POST", "path": "/tabs", "curl": true}
		]}`,
	})

	data, _, err := Build(context.Background(), testConfig(ts), ts.Client(), nil)
	require.NoError(t, err)
	require.Len(t, data.Pages, 1)

	page := data.Pages[0]
	assert.Equal(t, "api-reference", page.Slug)
	assert.Equal(t, "API Reference", page.Title)
	// Synthesized index table became an API table with method badges.
	assert.Contains(t, page.HTML, "api-table")
	assert.Contains(t, page.HTML, "method-badge method-get")
}

func TestBuildSkipListAndEmptyResult(t *testing.T) {
	ts := docsServer(t, `{"a": "broken.md"}`, map[string]string{
		"/docs/broken.md": "# Broken",
	})

	_, report, err := Build(context.Background(), testConfig(ts, "broken.md"), ts.Client(), nil)
	var empty *docerr.EmptyResultError
	require.True(t, errors.As(err, &empty), "got %v", err)
	assert.Equal(t, []string{"broken.md"}, report.Skipped)
	assert.Equal(t, "failed", report.Outcome)
}

func TestBuildSkipListCaseInsensitive(t *testing.T) {
	ts := docsServer(t, `{"a": ["Broken.md", "ok.md"]}`, map[string]string{
		"/docs/ok.md": "# OK",
	})

	data, _, err := Build(context.Background(), testConfig(ts, "./broken.md"), ts.Client(), nil)
	require.NoError(t, err)
	require.Len(t, data.Pages, 1)
	assert.Equal(t, "ok", data.Pages[0].Slug)
}

func TestBuildFailsOnUnresolvableSource(t *testing.T) {
	ts := docsServer(t, `{"a": ["ok.md", "missing.md"]}`, map[string]string{
		"/docs/ok.md": "# OK",
	})

	_, _, err := Build(context.Background(), testConfig(ts), ts.Client(), nil)
	var fetchErr *docerr.SourceFetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "missing.md", fetchErr.Path)
}

func TestBuildRejectsTraversalPath(t *testing.T) {
	ts := docsServer(t, `{"a": "../secret.md"}`, nil)

	_, _, err := Build(context.Background(), testConfig(ts), ts.Client(), nil)
	var invalid *docerr.InvalidPathError
	require.True(t, errors.As(err, &invalid))
}

func TestBuildEmptySectionOmitted(t *testing.T) {
	ts := docsServer(t, `{
		"broken-section": "broken.md",
		"good": "ok.md"
	}`, map[string]string{
		"/docs/ok.md": "# OK",
	})

	data, _, err := Build(context.Background(), testConfig(ts, "broken.md"), ts.Client(), nil)
	require.NoError(t, err)
	require.Len(t, data.Sections, 1)
	assert.Equal(t, "good", data.Sections[0].ID)
	assert.Equal(t, "ok", data.FirstSlug)
}

func TestBuildIdempotent(t *testing.T) {
	manifest := `{"guides": ["guides/a.md", "guides/b.md"]}`
	files := map[string]string{
		"/docs/guides/a.md": "# A\n\n## Sub\n",
		"/docs/guides/b.md": "# B\n",
	}
	ts := docsServer(t, manifest, files)

	first, _, err := Build(context.Background(), testConfig(ts), ts.Client(), nil)
	require.NoError(t, err)
	second, _, err := Build(context.Background(), testConfig(ts), ts.Client(), nil)
	require.NoError(t, err)

	assert.Equal(t, first.Sections, second.Sections)
	require.Len(t, second.Pages, len(first.Pages))
	for i := range first.Pages {
		assert.Equal(t, first.Pages[i].Slug, second.Pages[i].Slug)
		assert.Equal(t, first.Pages[i].HTML, second.Pages[i].HTML)
	}
}

func TestLoaderMemoizesResult(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/docs/index.json" {
			calls++
			_, _ = w.Write([]byte(`{"a": "readme.md"}`))
			return
		}
		_, _ = w.Write([]byte("# Home"))
	}))
	t.Cleanup(ts.Close)

	loader := NewLoader(testConfig(ts), ts.Client(), nil)
	first, err := loader.Load(context.Background())
	require.NoError(t, err)
	second, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls, "manifest must be fetched once per process")
	assert.NotNil(t, loader.Report())
}

func TestLoaderCachesFailure(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)

	loader := NewLoader(testConfig(ts), ts.Client(), nil)
	_, err1 := loader.Load(context.Background())
	require.Error(t, err1)
	_, err2 := loader.Load(context.Background())

	// The failed run is cached; no silent retry.
	assert.Same(t, err1.(*docerr.ConfigFetchError), err2.(*docerr.ConfigFetchError))
	assert.Equal(t, 1, calls)
}

func TestPageSlug(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"guides/install.md", "install"},
		{"readme.md", "home"},
		{"guide/readme.md", "guide"},
		{"docs/API-Reference.json", "api-reference"},
		{"weird..md", "weird"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PageSlug(tc.path), "path %s", tc.path)
	}
}

func TestSectionLabel(t *testing.T) {
	cases := []struct {
		id   string
		want string
	}{
		{"getting-started", "Getting Started"},
		{"api_reference", "Api Reference"},
		{"guides", "Guides"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SectionLabel(tc.id))
	}
}
