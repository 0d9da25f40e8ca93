package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeySection    = "section"
	KeySlug       = "slug"
	KeyPath       = "source_path"
	KeyURL        = "url"
	KeyStatus     = "status"
	KeyPages      = "pages"
	KeySections   = "sections"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }
func Sections(n int) slog.Attr        { return slog.Int(KeySections, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
