// Package htmlproc post-processes rendered page HTML. It runs a fixed-order
// pipeline of named structural passes (code blocks, then tables, then image
// URLs), each scanning the document and rewriting matched blocks into the
// site's styled markup. Passes are independent: nothing a pass emits is
// reconsidered by a later one.
package htmlproc

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Context carries per-page data the passes need.
type Context struct {
	// SourceURL is the absolute URL the page was fetched from; relative
	// image references resolve against it.
	SourceURL string
}

// Pass is one named transform over the parsed document.
type Pass struct {
	Name  string
	Apply func(doc *goquery.Document, ctx Context)
}

// Passes returns the pipeline in its fixed execution order.
func Passes() []Pass {
	return []Pass{
		{Name: "code_blocks", Apply: codeBlockPass},
		{Name: "tables", Apply: tablePass},
		{Name: "images", Apply: imagePass},
	}
}

// Process applies all passes to an HTML fragment and returns the rewritten
// fragment.
func Process(fragment string, ctx Context) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}
	for _, pass := range Passes() {
		pass.Apply(doc, ctx)
	}
	return doc.Find("body").Html()
}
