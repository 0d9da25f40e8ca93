// Package resolver turns logical source paths from the docs manifest into
// fetched document bodies. Each path gets an ordered, de-duplicated list of
// candidate URLs (docs-relative, then repo-root-relative) tried sequentially;
// the first success wins.
package resolver

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pinchtab/pinchtab.com/internal/docerr"
	"github.com/pinchtab/pinchtab.com/internal/logfields"
	"github.com/pinchtab/pinchtab.com/internal/manifest"
)

// Result is a successfully resolved source document.
type Result struct {
	// URL is the candidate that succeeded; relative assets inside the
	// document resolve against it.
	URL  string
	Body string
}

// Normalize canonicalizes a source path: backslashes become slashes, leading
// "./" and "/" are stripped. Empty paths and paths containing a ".." segment
// fail with *docerr.InvalidPathError before any fetch is attempted.
func Normalize(path string) (string, error) {
	p := strings.ReplaceAll(path, "\\", "/")
	for {
		if strings.HasPrefix(p, "./") {
			p = p[2:]
			continue
		}
		if strings.HasPrefix(p, "/") {
			p = p[1:]
			continue
		}
		break
	}
	if p == "" {
		return "", &docerr.InvalidPathError{Path: path, Reason: "empty path"}
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", &docerr.InvalidPathError{Path: path, Reason: "path traversal segment"}
		}
	}
	return p, nil
}

// IsAbsolute reports whether the path is already an absolute http(s) URL.
func IsAbsolute(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Candidates builds the ordered, de-duplicated candidate URL list for a
// source path. An absolute URL is its own sole candidate. Otherwise the
// docs-relative URL comes first and the repo-root-relative URL second; the
// repo-root candidate is present exactly once even for docs/-prefixed paths.
func Candidates(path string, bases manifest.BaseURLs) ([]string, error) {
	if IsAbsolute(path) {
		return []string{path}, nil
	}
	p, err := Normalize(path)
	if err != nil {
		return nil, err
	}
	encoded := encodeSegments(p)
	raw := []string{
		bases.Docs + encoded,
		bases.RepoRoot + encoded,
	}
	var out []string
	seen := make(map[string]struct{}, len(raw))
	for _, c := range raw {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// encodeSegments percent-encodes each path segment independently so special
// characters survive while slashes keep their structural meaning.
func encodeSegments(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// Fetch resolves a source path by trying each candidate in order. The first
// response with a 2xx status is accepted. When every candidate fails it
// returns *docerr.SourceFetchError carrying each attempt's failure status.
func Fetch(ctx context.Context, client *http.Client, path string, bases manifest.BaseURLs) (*Result, error) {
	if client == nil {
		client = http.DefaultClient
	}
	candidates, err := Candidates(path, bases)
	if err != nil {
		return nil, err
	}

	var attempts []docerr.Attempt
	for _, candidate := range candidates {
		body, status, err := fetchOne(ctx, client, candidate)
		if err != nil {
			attempts = append(attempts, docerr.Attempt{URL: candidate, Err: err})
			continue
		}
		if status < 200 || status > 299 {
			slog.Debug("source candidate miss", logfields.URL(candidate), logfields.Status(status))
			attempts = append(attempts, docerr.Attempt{URL: candidate, Status: status})
			continue
		}
		return &Result{URL: candidate, Body: body}, nil
	}
	return nil, &docerr.SourceFetchError{Path: path, Attempts: attempts}
}

func fetchOne(ctx context.Context, client *http.Client, url string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, err
	}
	return string(body), resp.StatusCode, nil
}
