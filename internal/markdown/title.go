package markdown

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	titleCaser = cases.Title(language.English)

	setextRe = regexp.MustCompile(`^=+$`)

	imageRe    = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkRe     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	emphasisRe = regexp.MustCompile("[*_`]+")
)

// Title derives the page title from normalized Markdown: the first level-1
// heading wins, whether ATX ("# Title") or setext ("Title" underlined with
// "="), with inline emphasis, code, and link markup stripped. Without one,
// the title falls back to a title-cased version of the source file name; a
// document literally named "readme" maps to "Home".
func Title(content, sourcePath string) string {
	inFence := false
	prev := ""
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			prev = ""
			continue
		}
		if inFence {
			continue
		}
		if rest, ok := strings.CutPrefix(trimmed, "# "); ok {
			if t := stripInline(rest); t != "" {
				return t
			}
		}
		if setextRe.MatchString(trimmed) && prev != "" && !strings.HasPrefix(prev, "#") {
			if t := stripInline(prev); t != "" {
				return t
			}
		}
		prev = trimmed
	}
	return TitleFromFilename(sourcePath)
}

// TitleFromFilename derives a fallback title from a source path's base name.
func TitleFromFilename(sourcePath string) string {
	base := strings.ReplaceAll(sourcePath, "\\", "/")
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	if strings.EqualFold(base, "readme") {
		return "Home"
	}
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	base = strings.TrimSpace(base)
	if base == "" {
		return "Untitled"
	}
	return titleCaser.String(base)
}

func stripInline(s string) string {
	s = imageRe.ReplaceAllString(s, "$1")
	s = linkRe.ReplaceAllString(s, "$1")
	s = emphasisRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
