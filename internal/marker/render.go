package marker

import (
	"path/filepath"
	"strings"
	"time"
)

// TimeLayout is the stamped time format, YYYY-MM-DD HH:mm:ss.
const TimeLayout = "2006-01-02 15:04:05"

// Placeholders substituted by Render.
const (
	PlaceholderMarker = "{marker}"
	PlaceholderTime   = "{time}"
)

// Formatter renders the current time shifted by an offset in minutes.
type Formatter struct {
	now func() time.Time
}

// NewFormatter creates a formatter using now as its clock (time.Now if nil).
func NewFormatter(now func() time.Time) *Formatter {
	if now == nil {
		now = time.Now
	}
	return &Formatter{now: now}
}

// Format returns now+offsetMinutes in the local time zone.
func (f *Formatter) Format(offsetMinutes int) string {
	t := f.now().Add(time.Duration(offsetMinutes) * time.Minute)
	return t.Local().Format(TimeLayout)
}

// Render substitutes the first {marker} and the first {time} in template.
// Repeated placeholders are left as-is.
func Render(template, marker, stamp string) string {
	out := strings.Replace(template, PlaceholderMarker, marker, 1)
	return strings.Replace(out, PlaceholderTime, stamp, 1)
}

// RenderFor renders the template configured for ext, or reports false when
// there is none.
func RenderFor(ext string, cfg Config, stamp string) (string, bool) {
	tmpl, ok := cfg.Template(ext)
	if !ok {
		return "", false
	}
	return Render(tmpl, cfg.Marker, stamp), true
}

// Extension returns the lowercase text after the last dot of the file's base
// name, or "" when there is none.
func Extension(fileName string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
}
