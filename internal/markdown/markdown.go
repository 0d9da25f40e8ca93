// Package markdown converts normalized Markdown into HTML plus a heading
// outline. A single shared goldmark instance is constructed lazily and reused
// for every page; syntax highlighting is not applied at this layer because
// the HTML post-processor re-styles code blocks itself.
package markdown

import (
	"bytes"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/pinchtab/pinchtab.com/internal/docmodel"
)

var (
	rendererOnce sync.Once
	renderer     goldmark.Markdown
)

// Renderer returns the shared goldmark instance, constructing it on first
// use. Exactly one instance exists per process.
func Renderer() goldmark.Markdown {
	rendererOnce.Do(func() {
		renderer = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		)
	})
	return renderer
}

// Render converts Markdown to HTML and extracts the ordered heading outline.
func Render(content string) (string, []docmodel.Heading, error) {
	md := Renderer()
	source := []byte(content)

	root := md.Parser().Parse(text.NewReader(source))

	var headings []docmodel.Heading
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		id := ""
		if v, found := h.AttributeString("id"); found {
			if b, ok := v.([]byte); ok {
				id = string(b)
			}
		}
		headings = append(headings, docmodel.Heading{
			Depth: h.Level,
			Slug:  id,
			Text:  nodeText(h, source),
		})
		return gmast.WalkContinue, nil
	})

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, source, root); err != nil {
		return "", nil, err
	}
	return buf.String(), headings, nil
}

// nodeText collects the plain text content of a node's subtree.
func nodeText(n gmast.Node, source []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(source))
		case *gmast.String:
			b.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
