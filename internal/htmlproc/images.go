package htmlproc

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// imagePass rewrites relative <img src> attributes against the page's
// resolved source URL, so assets referenced relative to the content file keep
// working from the rendered site. Absolute URLs, root-relative paths, anchor
// fragments, and unparseable sources are left untouched.
func imagePass(doc *goquery.Document, ctx Context) {
	base, err := url.Parse(ctx.SourceURL)
	if err != nil || ctx.SourceURL == "" {
		return
	}
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || src == "" {
			return
		}
		if strings.HasPrefix(src, "/") || strings.HasPrefix(src, "#") {
			return
		}
		ref, err := url.Parse(src)
		if err != nil || ref.IsAbs() {
			return
		}
		img.SetAttr("src", base.ResolveReference(ref).String())
	})
}
