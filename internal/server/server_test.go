package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinchtab/pinchtab.com/internal/docmodel"
)

func testData() *docmodel.DocsData {
	page := &docmodel.Page{
		ManifestItem: docmodel.ManifestItem{Slug: "home", Title: "Home", SourcePath: "readme.md"},
		SectionID:    "getting-started",
		SectionLabel: "Getting Started",
		HTML:         "<h1>Welcome</h1>",
	}
	return &docmodel.DocsData{
		Name:   "Pinchtab",
		Branch: "main",
		Sections: []docmodel.ManifestSection{{
			ID:    "getting-started",
			Label: "Getting Started",
			Items: []docmodel.ManifestItem{page.ManifestItem},
		}},
		Pages:     []*docmodel.Page{page},
		FirstSlug: "home",
	}
}

func newTestServer(t *testing.T, withMetrics bool) *httptest.Server {
	t.Helper()
	var reg *prom.Registry
	if withMetrics {
		reg = prom.NewRegistry()
	}
	ts := httptest.NewServer(New(testData(), reg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, false)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["pages"])
}

func TestDocsJSON(t *testing.T) {
	ts := newTestServer(t, false)
	resp, err := http.Get(ts.URL + "/docs.json")
	require.NoError(t, err)
	defer resp.Body.Close()

	var data docmodel.DocsData
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	assert.Equal(t, "home", data.FirstSlug)
	require.Len(t, data.Pages, 1)
}

func TestPageServed(t *testing.T) {
	ts := newTestServer(t, false)
	resp, err := http.Get(ts.URL + "/docs/home")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "<h1>Welcome</h1>")
	assert.Contains(t, string(body), "Getting Started")
}

func TestPageNotFound(t *testing.T) {
	ts := newTestServer(t, false)
	resp, err := http.Get(ts.URL + "/docs/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIndexRedirectsToFirstSlug(t *testing.T) {
	ts := newTestServer(t, false)
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/docs/home", resp.Header.Get("Location"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, true)
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsDisabledWithoutRegistry(t *testing.T) {
	ts := newTestServer(t, false)
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
