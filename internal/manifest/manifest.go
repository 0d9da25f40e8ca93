// Package manifest loads the remote docs manifest: a JSON document mapping
// section identifiers to one or more source file paths. Key order in the
// document defines section order, so decoding goes through a token-level
// reader rather than a Go map.
package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pinchtab/pinchtab.com/internal/docerr"
)

// RelPath is the manifest's path relative to the root of the content
// repository. Stripping it from the manifest URL yields the repo-root base
// used by the source resolver.
const RelPath = "docs/index.json"

// Section is one ordered entry of the docs config.
type Section struct {
	ID      string
	Sources []string
}

// BaseURLs are the two candidate bases source paths resolve against.
// Both always end with a slash.
type BaseURLs struct {
	Docs     string // directory containing the manifest
	RepoRoot string // root of the content repository hosting the manifest
}

// Config is the validated docs manifest plus derived resolution bases.
type Config struct {
	URL      string
	Sections []Section
	BaseURLs BaseURLs
}

// Fetch retrieves and validates the manifest at url. It fails with
// *docerr.ConfigFetchError when the HTTP fetch does not succeed and
// *docerr.ConfigSchemaError when the document fails shape validation.
func Fetch(ctx context.Context, client *http.Client, url string) (*Config, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &docerr.ConfigFetchError{URL: url, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &docerr.ConfigFetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &docerr.ConfigFetchError{URL: url, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &docerr.ConfigFetchError{URL: url, Err: err}
	}

	sections, err := Parse(body)
	if err != nil {
		return nil, err
	}
	return &Config{URL: url, Sections: sections, BaseURLs: DeriveBases(url)}, nil
}

// Parse decodes the manifest body into ordered sections. Every value must be
// a string or an array of strings; anything else is a schema error.
func Parse(body []byte) ([]Section, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil, &docerr.ConfigSchemaError{Reason: fmt.Sprintf("not valid JSON: %v", err)}
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, &docerr.ConfigSchemaError{Reason: "document must be a JSON object"}
	}

	var sections []Section
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &docerr.ConfigSchemaError{Reason: fmt.Sprintf("truncated document: %v", err)}
		}
		key := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, &docerr.ConfigSchemaError{Key: key, Reason: fmt.Sprintf("unreadable value: %v", err)}
		}
		sources, err := parseSources(key, raw)
		if err != nil {
			return nil, err
		}
		sections = append(sections, Section{ID: key, Sources: sources})
	}
	return sections, nil
}

// parseSources accepts a single string or an array of strings.
func parseSources(key string, raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &docerr.ConfigSchemaError{Key: key, Reason: "empty value"}
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, &docerr.ConfigSchemaError{Key: key, Reason: "value must be a string or array of strings"}
		}
		return []string{s}, nil
	case '[':
		var list []string
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, &docerr.ConfigSchemaError{Key: key, Reason: "value must be a string or array of strings"}
		}
		if len(list) == 0 {
			return nil, &docerr.ConfigSchemaError{Key: key, Reason: "array value must not be empty"}
		}
		return list, nil
	default:
		return nil, &docerr.ConfigSchemaError{Key: key, Reason: "value must be a string or array of strings"}
	}
}

// DeriveBases computes the two resolution bases from the manifest URL: the
// manifest's own directory, and the repository root obtained by stripping the
// manifest's repo-relative suffix. When the URL does not end with that suffix
// the repo root falls back to the docs base.
func DeriveBases(url string) BaseURLs {
	docs := url
	if i := strings.LastIndex(docs, "/"); i >= 0 {
		docs = docs[:i+1]
	}
	root := docs
	if strings.HasSuffix(url, "/"+RelPath) {
		root = strings.TrimSuffix(url, RelPath)
	}
	return BaseURLs{Docs: docs, RepoRoot: root}
}
