// Package docerr provides the typed error taxonomy of the docs ingestion
// pipeline. Every error carries a category used for CLI exit-code mapping;
// none of them are recovered locally; any pipeline error fails the build.
package docerr

import (
	"fmt"
	"strings"
)

// Category classifies a pipeline error for presentation and exit codes.
type Category string

const (
	CategoryConfig     Category = "config"     // manifest unreachable or misconfigured tool
	CategoryNetwork    Category = "network"    // source fetch failures
	CategoryValidation Category = "validation" // bad source paths, schema violations
	CategoryContent    Category = "content"    // malformed content documents
	CategoryInternal   Category = "internal"   // everything else
)

// Classified is implemented by all pipeline errors.
type Classified interface {
	error
	Category() Category
}

// ConfigFetchError reports that the remote manifest could not be fetched.
type ConfigFetchError struct {
	URL    string
	Status int // 0 when the transport failed before a response
	Err    error
}

func (e *ConfigFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch docs config %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch docs config %s: status %d", e.URL, e.Status)
}

func (e *ConfigFetchError) Unwrap() error      { return e.Err }
func (e *ConfigFetchError) Category() Category { return CategoryConfig }

// ConfigSchemaError reports that the manifest parsed but failed shape
// validation (values must be a string or a sequence of strings).
type ConfigSchemaError struct {
	Key    string // offending manifest key, empty for document-level problems
	Reason string
}

func (e *ConfigSchemaError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("docs config key %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("docs config: %s", e.Reason)
}

func (e *ConfigSchemaError) Category() Category { return CategoryConfig }

// InvalidPathError reports a source path rejected before any fetch: empty, or
// containing a traversal segment.
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid source path %q: %s", e.Path, e.Reason)
}

func (e *InvalidPathError) Category() Category { return CategoryValidation }

// Attempt records one failed resolution candidate for diagnostics.
type Attempt struct {
	URL    string
	Status int // 0 when the transport failed before a response
	Err    error
}

func (a Attempt) String() string {
	if a.Err != nil {
		return fmt.Sprintf("%s (%v)", a.URL, a.Err)
	}
	return fmt.Sprintf("%s (status %d)", a.URL, a.Status)
}

// SourceFetchError reports that every resolution candidate for a source path
// failed. It carries the attempted candidates and their failure statuses.
type SourceFetchError struct {
	Path     string
	Attempts []Attempt
}

func (e *SourceFetchError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.String())
	}
	return fmt.Sprintf("fetch source %q: all candidates failed: %s", e.Path, strings.Join(parts, "; "))
}

func (e *SourceFetchError) Category() Category { return CategoryNetwork }

// MalformedReferenceError reports an API-reference document that is not valid
// JSON or lacks the required endpoints array.
type MalformedReferenceError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedReferenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("api reference %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("api reference %s: %s", e.Path, e.Reason)
}

func (e *MalformedReferenceError) Unwrap() error      { return e.Err }
func (e *MalformedReferenceError) Category() Category { return CategoryContent }

// EmptyResultError reports a manifest that resolved to zero total pages.
// An empty docs set is a build failure, never an empty result.
type EmptyResultError struct {
	ManifestURL string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("docs config %s resolved to zero pages", e.ManifestURL)
}

func (e *EmptyResultError) Category() Category { return CategoryContent }

// CategoryOf extracts the category of err, walking wrapped errors.
// Unclassified errors report CategoryInternal.
func CategoryOf(err error) Category {
	for err != nil {
		if c, ok := err.(Classified); ok {
			return c.Category()
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return CategoryInternal
}
