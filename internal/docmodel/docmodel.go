// Package docmodel defines the render-ready documentation graph produced by
// the ingestion pipeline and consumed by the site's page-rendering layer.
package docmodel

// Heading is one entry of a page's heading outline.
type Heading struct {
	Depth int    `json:"depth"`
	Slug  string `json:"slug"`
	Text  string `json:"text"`
}

// ManifestItem is a lightweight reference to a page, usable in navigation
// without carrying rendered content.
type ManifestItem struct {
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	SourcePath string `json:"sourcePath"`
}

// ManifestSection groups the pages of one manifest section. Label is derived
// from ID by replacing separators with spaces and title-casing words.
type ManifestSection struct {
	ID    string         `json:"id"`
	Label string         `json:"label"`
	Items []ManifestItem `json:"items"`
}

// Page is a fully rendered documentation page. A page referenced from several
// sections exists once and is shared by reference; SectionID and SectionLabel
// record the first section that pulled it in.
type Page struct {
	ManifestItem

	SectionID    string    `json:"sectionId"`
	SectionLabel string    `json:"sectionLabel"`
	Content      string    `json:"content"`
	HTML         string    `json:"html"`
	Headings     []Heading `json:"headings"`

	// SourceURL is the absolute URL the page body was fetched from. Relative
	// asset references inside the page resolve against it.
	SourceURL string `json:"sourceUrl"`
}

// DocsData is the full resolved result of one ingestion run.
type DocsData struct {
	Name        string            `json:"name"`
	Branch      string            `json:"branch"`
	DocsJSONURL string            `json:"docsJsonUrl"`
	Sections    []ManifestSection `json:"sections"`
	Pages       []*Page           `json:"pages"`

	// FirstSlug is the slug of the first item of the first section. It is
	// empty only when no sections exist, which cannot happen on a successful
	// load (zero resolved pages is a fatal error).
	FirstSlug string `json:"firstSlug,omitempty"`
}

// PageBySlug returns the page with the given slug, or nil.
func (d *DocsData) PageBySlug(slug string) *Page {
	for _, p := range d.Pages {
		if p.Slug == slug {
			return p
		}
	}
	return nil
}
