// Package apiref synthesizes a Markdown API-reference page from the content
// repository's structured endpoint schema. Unlike every other source kind,
// the document is not Markdown on the wire: it is parsed as JSON and rebuilt
// deterministically, independent of manifest order.
package apiref

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pinchtab/pinchtab.com/internal/docerr"
	"github.com/pinchtab/pinchtab.com/internal/slug"
)

// SourceFile is the distinguished file name that marks a manifest source as
// the API-reference schema instead of plain Markdown.
const SourceFile = "api-reference.json"

// IsReference reports whether a source path names the API-reference schema.
func IsReference(path string) bool {
	p := strings.ReplaceAll(path, "\\", "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	return strings.EqualFold(p, SourceFile)
}

// Endpoint is one validated entry of the schema. Entries without a string
// method and path are dropped during parsing rather than failing the
// document.
type Endpoint struct {
	Method      string
	Path        string
	Handler     string
	Description string
	TLDR        string
	Parameters  string // pre-rendered summary
	Payload     string // raw payload JSON (pretty-printed best-effort at render)
	Curl        bool
	CLI         bool
	CurlExample string
	CLIExample  string
}

var titleCaser = cases.Title(language.English)

// Parse decodes the schema body, dropping malformed endpoint entries and
// HTML-only endpoints. It fails with *docerr.MalformedReferenceError when the
// document is not a JSON object with an endpoints array.
func Parse(sourcePath string, body []byte) ([]Endpoint, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &docerr.MalformedReferenceError{Path: sourcePath, Reason: "not a JSON object", Err: err}
	}
	rawEndpoints, ok := doc["endpoints"]
	if !ok {
		return nil, &docerr.MalformedReferenceError{Path: sourcePath, Reason: "missing endpoints array"}
	}
	var entries []map[string]any
	if err := json.Unmarshal(rawEndpoints, &entries); err != nil {
		return nil, &docerr.MalformedReferenceError{Path: sourcePath, Reason: "endpoints is not an array of objects", Err: err}
	}

	endpoints := make([]Endpoint, 0, len(entries))
	for _, entry := range entries {
		method, okM := stringField(entry, "method")
		path, okP := stringField(entry, "path")
		if !okM || !okP {
			continue // tolerate partial records
		}
		if b, _ := entry["html"].(bool); b {
			continue // HTML-only endpoints stay out of the synthesized index
		}
		ep := Endpoint{
			Method:     strings.ToUpper(method),
			Path:       path,
			Parameters: summarizeParameters(entry["parameters"]),
		}
		ep.Handler, _ = stringField(entry, "handler")
		ep.Description, _ = stringField(entry, "description")
		ep.TLDR, _ = stringField(entry, "tldr")
		ep.Payload, _ = stringField(entry, "payload")
		ep.Curl, _ = entry["curl"].(bool)
		ep.CLI, _ = entry["cli"].(bool)
		ep.CurlExample, _ = stringField(entry, "curlExample")
		ep.CLIExample, _ = stringField(entry, "cliExample")
		if examples, ok := entry["examples"].(map[string]any); ok {
			if ep.CurlExample == "" {
				ep.CurlExample, _ = stringField(examples, "curl")
			}
			if ep.CLIExample == "" {
				ep.CLIExample, _ = stringField(examples, "cli")
			}
		}
		endpoints = append(endpoints, ep)
	}

	// Deterministic order regardless of schema order: path, then method.
	sort.SliceStable(endpoints, func(i, j int) bool {
		if endpoints[i].Path != endpoints[j].Path {
			return endpoints[i].Path < endpoints[j].Path
		}
		return endpoints[i].Method < endpoints[j].Method
	})
	return endpoints, nil
}

func stringField(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	s = strings.TrimSpace(s)
	return s, ok && s != ""
}

// summarizeParameters flattens the loosely-specified parameters field into a
// one-line summary.
func summarizeParameters(v any) string {
	switch p := v.(type) {
	case string:
		return strings.TrimSpace(p)
	case map[string]any:
		names := make([]string, 0, len(p))
		for name := range p {
			names = append(names, "`"+name+"`")
		}
		sort.Strings(names)
		return strings.Join(names, ", ")
	case []any:
		var names []string
		for _, item := range p {
			if m, ok := item.(map[string]any); ok {
				if name, ok := stringField(m, "name"); ok {
					names = append(names, "`"+name+"`")
				}
			} else if s, ok := item.(string); ok {
				names = append(names, "`"+s+"`")
			}
		}
		return strings.Join(names, ", ")
	default:
		return ""
	}
}

// Synthesize converts the schema body into the Markdown for the API-reference
// page: an index table first, then per-group, per-path, per-method detail
// blocks. Each distinct path gets one anchor, shared by all of its methods.
func Synthesize(sourcePath string, body []byte) (string, error) {
	endpoints, err := Parse(sourcePath, body)
	if err != nil {
		return "", err
	}

	anchors := assignAnchors(endpoints)

	var b strings.Builder
	b.WriteString("# API Reference\n\n")
	writeIndex(&b, endpoints, anchors)
	writeGroups(&b, endpoints, anchors)
	return b.String(), nil
}

// assignAnchors gives each distinct path one slug, suffixing on collision.
// Order follows the sorted endpoint list, so anchors are deterministic.
func assignAnchors(endpoints []Endpoint) map[string]string {
	dedupe := slug.NewDeduper()
	anchors := make(map[string]string)
	for _, ep := range endpoints {
		if _, done := anchors[ep.Path]; done {
			continue
		}
		anchors[ep.Path] = dedupe.Claim(slug.Make(ep.Path))
	}
	return anchors
}

func writeIndex(b *strings.Builder, endpoints []Endpoint, anchors map[string]string) {
	b.WriteString("| Method | Endpoint | CLI |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, ep := range endpoints {
		cli := "✗"
		if ep.CLIExample != "" {
			cli = "✓"
		}
		fmt.Fprintf(b, "| `%s` | [`%s`](#%s) | %s |\n", ep.Method, ep.Path, anchors[ep.Path], cli)
	}
	b.WriteString("\n")
}

func writeGroups(b *strings.Builder, endpoints []Endpoint, anchors map[string]string) {
	var groupOrder []string
	grouped := make(map[string][]Endpoint)
	for _, ep := range endpoints {
		g := GroupLabel(ep.Path)
		if _, seen := grouped[g]; !seen {
			groupOrder = append(groupOrder, g)
		}
		grouped[g] = append(grouped[g], ep)
	}

	for _, group := range groupOrder {
		fmt.Fprintf(b, "## %s\n\n", group)
		lastPath := ""
		for _, ep := range grouped[group] {
			if ep.Path != lastPath {
				// One shared anchor per path, ahead of its first method block.
				fmt.Fprintf(b, "<a id=%q></a>\n\n", anchors[ep.Path])
				lastPath = ep.Path
			}
			writeEndpoint(b, ep)
		}
	}
}

func writeEndpoint(b *strings.Builder, ep Endpoint) {
	fmt.Fprintf(b, "### `%s %s`\n\n", ep.Method, ep.Path)

	if ep.TLDR != "" {
		fmt.Fprintf(b, "%s\n\n", ep.TLDR)
	}
	if ep.Description != "" && ep.Description != ep.TLDR {
		fmt.Fprintf(b, "%s\n\n", ep.Description)
	}
	if ep.Handler != "" {
		fmt.Fprintf(b, "- **Handler:** `%s`\n", ep.Handler)
	}
	if ep.Parameters != "" {
		fmt.Fprintf(b, "- **Parameters:** %s\n", ep.Parameters)
	}
	if support := supportFlags(ep); support != "" {
		fmt.Fprintf(b, "- **Supports:** %s\n", support)
	}
	if ep.Handler != "" || ep.Parameters != "" || supportFlags(ep) != "" {
		b.WriteString("\n")
	}

	if ep.Payload != "" {
		b.WriteString("**Payload**\n\n```json\n")
		b.WriteString(prettyJSON(ep.Payload))
		b.WriteString("\n```\n\n")
	}
	if ep.CurlExample != "" {
		b.WriteString("**curl**\n\n```bash\n")
		b.WriteString(strings.TrimRight(ep.CurlExample, "\n"))
		b.WriteString("\n```\n\n")
	}
	if ep.CLIExample != "" {
		b.WriteString("**CLI**\n\n```bash\n")
		b.WriteString(strings.TrimRight(ep.CLIExample, "\n"))
		b.WriteString("\n```\n\n")
	}
}

func supportFlags(ep Endpoint) string {
	var flags []string
	if ep.Curl {
		flags = append(flags, "curl")
	}
	if ep.CLI {
		flags = append(flags, "cli")
	}
	return strings.Join(flags, ", ")
}

// GroupLabel derives the display group for an endpoint path: its first
// segment, braces stripped and title-cased. Paths without a segment fall
// into "General".
func GroupLabel(path string) string {
	p := strings.Trim(path, "/")
	if i := strings.Index(p, "/"); i >= 0 {
		p = p[:i]
	}
	p = strings.NewReplacer("{", "", "}", "").Replace(p)
	if p == "" {
		return "General"
	}
	return titleCaser.String(strings.ReplaceAll(p, "-", " "))
}

// prettyJSON indents a payload string best-effort: invalid JSON is preserved
// verbatim rather than rejected.
func prettyJSON(payload string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(payload), "", "  "); err != nil {
		return strings.TrimRight(payload, "\n")
	}
	return buf.String()
}
