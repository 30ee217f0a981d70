package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyPass       = "pass"
	KeyStage      = "stage"
	KeyPath       = "path"
	KeyLayout     = "layout"
	KeyCollection = "collection"
	KeyOutput     = "output"
	KeyRendered   = "rendered"
	KeyRemoved    = "removed"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Pass(kind string) slog.Attr       { return slog.String(KeyPass, kind) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Layout(name string) slog.Attr     { return slog.String(KeyLayout, name) }
func Collection(name string) slog.Attr { return slog.String(KeyCollection, name) }
func Output(p string) slog.Attr        { return slog.String(KeyOutput, p) }
func Rendered(n int) slog.Attr         { return slog.Int(KeyRendered, n) }
func Removed(n int) slog.Attr          { return slog.Int(KeyRemoved, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
