package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyBuilder    = "builder"
	KeyEvent      = "event"
	KeyExtension  = "extension"
	KeyDocName    = "docname"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyCount      = "count"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Builder(name string) slog.Attr   { return slog.String(KeyBuilder, name) }
func Event(name string) slog.Attr     { return slog.String(KeyEvent, name) }
func Extension(name string) slog.Attr { return slog.String(KeyExtension, name) }
func DocName(name string) slog.Attr   { return slog.String(KeyDocName, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
