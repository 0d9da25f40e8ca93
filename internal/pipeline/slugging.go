package pipeline

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pinchtab/pinchtab.com/internal/slug"
)

var titleCaser = cases.Title(language.English)

// PageSlug derives the base slug for a source path: the last path segment
// minus its extension. A base of "readme" (or nothing) falls back to the
// parent directory name, or "home" when there is no parent. Uniqueness is
// enforced separately by the registry.
func PageSlug(sourcePath string) string {
	p := strings.ReplaceAll(sourcePath, "\\", "/")
	p = strings.Trim(p, "/")
	segs := strings.Split(p, "/")

	last := segs[len(segs)-1]
	if i := strings.LastIndex(last, "."); i > 0 {
		last = last[:i]
	}
	base := slug.Make(last)
	if base != "" && base != "readme" {
		return base
	}
	if len(segs) >= 2 {
		if parent := slug.Make(segs[len(segs)-2]); parent != "" {
			return parent
		}
	}
	return "home"
}

// SectionLabel derives the display label for a section identifier by
// replacing separators with spaces and title-casing words.
func SectionLabel(id string) string {
	label := strings.NewReplacer("-", " ", "_", " ").Replace(id)
	label = strings.Join(strings.Fields(label), " ")
	if label == "" {
		return id
	}
	return titleCaser.String(label)
}
