package htmlproc

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// tablePass restyles every table with a thead and tbody. Tables whose first
// two header columns read "method" and "endpoint"/"path" are API tables and
// get per-column badge rendering.
func tablePass(doc *goquery.Document, _ Context) {
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		thead := table.Find("thead")
		tbody := table.Find("tbody")
		if thead.Length() == 0 || tbody.Length() == 0 {
			return
		}

		table.AddClass("doc-table")
		thead.Find("tr").AddClass("doc-table-head")
		tbody.Find("tr").AddClass("doc-table-row")

		if isAPITable(thead) {
			table.AddClass("api-table")
			tbody.Find("tr").Each(func(_ int, row *goquery.Selection) {
				restyleAPIRow(row)
			})
		}
	})
}

// isAPITable checks the header row's first two columns case-insensitively.
func isAPITable(thead *goquery.Selection) bool {
	cells := thead.Find("tr").First().Find("th")
	if cells.Length() < 2 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(cells.Eq(0).Text()))
	second := strings.ToLower(strings.TrimSpace(cells.Eq(1).Text()))
	return first == "method" && (second == "endpoint" || second == "path")
}

func restyleAPIRow(row *goquery.Selection) {
	cells := row.Find("td")
	if cells.Length() < 2 {
		return
	}
	renderMethodCell(cells.Eq(0))
	renderEndpointCell(cells.Eq(1))
	if cells.Length() > 2 {
		renderFlagCell(cells.Eq(2))
	}
}

// renderMethodCell replaces the cell content with a method badge colored by
// HTTP verb.
func renderMethodCell(cell *goquery.Selection) {
	method := strings.ToUpper(strings.TrimSpace(cell.Text()))
	cell.SetHtml(fmt.Sprintf(`<span class="method-badge %s">%s</span>`,
		methodBadgeClass(method), html.EscapeString(method)))
}

func methodBadgeClass(method string) string {
	switch method {
	case "GET":
		return "method-get"
	case "POST":
		return "method-post"
	case "PUT", "PATCH":
		return "method-put"
	case "DELETE":
		return "method-delete"
	default:
		return "method-other"
	}
}

// renderEndpointCell rewrites the cell as a monospace endpoint chip,
// preserving a link when one is present.
func renderEndpointCell(cell *goquery.Selection) {
	text := strings.TrimSpace(cell.Text())
	link := cell.Find("a").First()
	if link.Length() > 0 {
		href, _ := link.Attr("href")
		cell.SetHtml(fmt.Sprintf(`<a class="endpoint-chip" href=%q><code>%s</code></a>`,
			href, html.EscapeString(text)))
		return
	}
	cell.SetHtml(fmt.Sprintf(`<code class="endpoint-chip">%s</code>`, html.EscapeString(text)))
}

// renderFlagCell turns yes/no markers into colored chips. Unrecognized text
// is left alone.
func renderFlagCell(cell *goquery.Selection) {
	switch strings.ToLower(strings.TrimSpace(cell.Text())) {
	case "✓", "yes", "true":
		cell.SetHtml(`<span class="check-chip check-yes">✓</span>`)
	case "✗", "x", "no":
		cell.SetHtml(`<span class="check-chip check-no">✗</span>`)
	}
}
