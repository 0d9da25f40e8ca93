// Package slug derives URL-safe identifiers and enforces their uniqueness.
package slug

import (
	"strconv"
	"strings"
)

// Make lowercases s and collapses every run of non-alphanumeric characters
// into a single hyphen.
func Make(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingDash = b.Len() > 0
			continue
		}
		if pendingDash {
			b.WriteByte('-')
			pendingDash = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Deduper issues globally unique slugs. The first claim of a base yields the
// base itself; later claims get deterministic numeric suffixes (-2, -3, ...).
type Deduper struct {
	taken map[string]struct{}
	next  map[string]int
}

// NewDeduper creates an empty Deduper.
func NewDeduper() *Deduper {
	return &Deduper{
		taken: make(map[string]struct{}),
		next:  make(map[string]int),
	}
}

// Claim returns a unique slug for base, suffixing on collision.
func (d *Deduper) Claim(base string) string {
	if base == "" {
		base = "page"
	}
	if _, used := d.taken[base]; !used {
		d.taken[base] = struct{}{}
		d.next[base] = 2
		return base
	}
	for {
		n := d.next[base]
		d.next[base] = n + 1
		candidate := base + "-" + strconv.Itoa(n)
		if _, used := d.taken[candidate]; !used {
			d.taken[candidate] = struct{}{}
			return candidate
		}
	}
}
