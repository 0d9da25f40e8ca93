package htmlproc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	shellLangRe = regexp.MustCompile(`^(bash|sh|zsh|shell|console)$`)
	jsonLangRe  = regexp.MustCompile(`^(json|jsonc|geojson)$`)
)

// shellCommands are the command words whose presence as a line prefix
// disqualifies a block from diagram classification.
var shellCommands = map[string]struct{}{
	"curl": {}, "npm": {}, "pnpm": {}, "bun": {}, "node": {}, "go": {},
	"git": {}, "docker": {}, "kubectl": {}, "python": {}, "pip": {},
	"cd": {}, "ls": {}, "cp": {}, "mv": {}, "rm": {}, "cat": {},
	"echo": {}, "export": {}, "sudo": {},
}

// Characters treated as diagram connectors.
const (
	boxChars   = "─━│┃┄┅┆┇┈┉┊┋┌┍┎┏┐┑┒┓└┕┖┗┘┙┚┛├┝┞┟┠┡┢┣┤┥┦┧┨┩┪┫┬┭┮┯┰┱┲┳┴┵┶┷┸┹┺┻┼═║╔╗╚╝╠╣╦╩╬╭╮╯╰╱╲╳"
	arrowChars = "→←↑↓↔↕⇒⇐⇑⇓⇔▲▼◀▶►◄"
)

// codeBlockPass classifies every <pre><code> block and rewrites matched ones
// into styled markup. Classification priority: diagram, shell, JSON; anything
// else is left untouched.
func codeBlockPass(doc *goquery.Document, _ Context) {
	doc.Find("pre > code").Each(func(_ int, code *goquery.Selection) {
		raw := code.Text() // goquery decodes entities for us
		lang := codeLanguage(code)
		pre := code.Parent()

		switch {
		case isDiagram(raw):
			pre.ReplaceWithHtml(renderDiagram(raw))
		case shellLangRe.MatchString(lang):
			pre.ReplaceWithHtml(renderTerminal(raw))
		case jsonLangRe.MatchString(lang):
			pre.ReplaceWithHtml(renderJSON(raw))
		}
	})
}

// codeLanguage extracts the fence language from the code element's
// "language-*" class, lowercased.
func codeLanguage(code *goquery.Selection) string {
	class, _ := code.Attr("class")
	for _, c := range strings.Fields(class) {
		if lang, ok := strings.CutPrefix(c, "language-"); ok {
			return strings.ToLower(lang)
		}
	}
	return ""
}

// isDiagram reports whether a block renders as an ASCII diagram: at least
// four lines, enough connector glyphs (>=6 box characters or >=2 arrows),
// and no line that looks like a shell command.
func isDiagram(raw string) bool {
	lines := strings.Split(strings.TrimRight(raw, "\n"), "\n")
	if len(lines) < 4 {
		return false
	}
	boxes, arrows := 0, 0
	for _, r := range raw {
		if strings.ContainsRune(boxChars, r) {
			boxes++
		}
		if strings.ContainsRune(arrowChars, r) {
			arrows++
		}
	}
	if boxes < 6 && arrows < 2 {
		return false
	}
	for _, line := range lines {
		if looksLikeShellCommand(line) {
			return false
		}
	}
	return true
}

func looksLikeShellCommand(line string) bool {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, "$ ")
	word, _, _ := strings.Cut(trimmed, " ")
	_, ok := shellCommands[word]
	return ok
}

// renderDiagram emits a figure where connector glyphs and plain text carry
// distinct styling and blank lines become fixed-height spacers.
func renderDiagram(raw string) string {
	var b strings.Builder
	b.WriteString(`<figure class="ascii-diagram"><pre class="diagram-body">`)
	for _, line := range strings.Split(strings.TrimRight(raw, "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			b.WriteString(`<span class="diagram-spacer"></span>` + "\n")
			continue
		}
		b.WriteString(`<span class="diagram-row">`)
		writeDiagramLine(&b, line)
		b.WriteString("</span>\n")
	}
	b.WriteString(`</pre></figure>`)
	return b.String()
}

// writeDiagramLine groups consecutive runes of the same kind into one span.
func writeDiagramLine(b *strings.Builder, line string) {
	flush := func(run []rune, connector bool) {
		if len(run) == 0 {
			return
		}
		class := "diagram-text"
		if connector {
			class = "diagram-glyph"
		}
		fmt.Fprintf(b, `<span class=%q>%s</span>`, class, html.EscapeString(string(run)))
	}
	var run []rune
	connector := false
	for _, r := range line {
		isConn := strings.ContainsRune(boxChars, r) || strings.ContainsRune(arrowChars, r)
		if len(run) > 0 && isConn != connector {
			flush(run, connector)
			run = run[:0]
		}
		connector = isConn
		run = append(run, r)
	}
	flush(run, connector)
}

// renderTerminal emits a terminal-window figure. Lines starting with "#"
// (after trimming) are comments; everything else is a command line.
func renderTerminal(raw string) string {
	var b strings.Builder
	b.WriteString(`<figure class="code-terminal">`)
	b.WriteString(`<figcaption class="terminal-bar"><span class="terminal-dot"></span><span class="terminal-dot"></span><span class="terminal-dot"></span></figcaption>`)
	b.WriteString(`<pre class="terminal-body"><code>`)
	for _, line := range strings.Split(strings.TrimRight(raw, "\n"), "\n") {
		class := "term-command"
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			class = "term-comment"
		}
		fmt.Fprintf(&b, `<span class=%q>%s</span>`+"\n", class, html.EscapeString(line))
	}
	b.WriteString(`</code></pre></figure>`)
	return b.String()
}

// renderJSON pretty-prints the block best-effort and token-highlights
// strings (keys distinguished from values by a following colon), booleans,
// null, and numbers.
func renderJSON(raw string) string {
	text := raw
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(raw), "", "  "); err == nil {
		text = buf.String()
	}
	var b strings.Builder
	b.WriteString(`<figure class="code-json"><pre class="json-body"><code>`)
	highlightJSON(&b, text)
	b.WriteString(`</code></pre></figure>`)
	return b.String()
}

// highlightJSON is a small scanner over (possibly invalid) JSON text.
func highlightJSON(b *strings.Builder, text string) {
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case r == '"':
			j := i + 1
			for j < len(runes) {
				if runes[j] == '\\' {
					j += 2
					continue
				}
				if runes[j] == '"' {
					j++
					break
				}
				j++
			}
			if j > len(runes) {
				j = len(runes)
			}
			lit := string(runes[i:j])
			class := "json-string"
			if colonFollows(runes, j) {
				class = "json-key"
			}
			fmt.Fprintf(b, `<span class=%q>%s</span>`, class, html.EscapeString(lit))
			i = j
		case matchWord(runes, i, "true"), matchWord(runes, i, "false"):
			n := 4
			if r == 'f' {
				n = 5
			}
			fmt.Fprintf(b, `<span class="json-bool">%s</span>`, string(runes[i:i+n]))
			i += n
		case matchWord(runes, i, "null"):
			b.WriteString(`<span class="json-null">null</span>`)
			i += 4
		case r == '-' || (r >= '0' && r <= '9'):
			j := i
			if runes[j] == '-' {
				j++
			}
			for j < len(runes) && strings.ContainsRune("0123456789.eE+-", runes[j]) {
				j++
			}
			fmt.Fprintf(b, `<span class="json-number">%s</span>`, string(runes[i:j]))
			i = j
		default:
			b.WriteString(html.EscapeString(string(r)))
			i++
		}
	}
}

func colonFollows(runes []rune, i int) bool {
	for ; i < len(runes); i++ {
		switch runes[i] {
		case ' ', '\t':
			continue
		case ':':
			return true
		default:
			return false
		}
	}
	return false
}

func matchWord(runes []rune, i int, word string) bool {
	if i+len(word) > len(runes) {
		return false
	}
	return string(runes[i:i+len(word)]) == word
}
