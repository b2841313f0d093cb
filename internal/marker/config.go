package marker

import (
	"strings"

	"github.com/spf13/cast"
)

// Setting keys read by the Resolver.
const (
	Section       = "fileAutoComment"
	KeyMarker     = Section + ".commentMarker"
	KeyTimeOffset = Section + ".timeOffset"
	KeyTemplates  = Section + ".templates"
)

// DefaultMarker is used when no marker is configured.
const DefaultMarker = "vantagemarekts"

// Config is the configuration snapshot for one synchronization attempt.
type Config struct {
	// Marker identifies the line owned by the stamper. Empty disables stamping.
	Marker string
	// TimeOffsetMinutes shifts the stamped time; negative moves it back.
	TimeOffsetMinutes int
	// Templates maps a lowercase extension without the dot to a template
	// containing {marker} and {time}.
	Templates map[string]string
}

// Template returns the template for ext. Empty templates count as missing.
func (c Config) Template(ext string) (string, bool) {
	t, ok := c.Templates[ext]
	if !ok || t == "" {
		return "", false
	}
	return t, true
}

// Settings is a read-only, hierarchical key/value source.
// Get returns nil for unset keys.
type Settings interface {
	Get(key string) any
}

// Snapshotter is implemented by Settings sources that can be read once and
// then queried without seeing later changes.
type Snapshotter interface {
	Snapshot() Settings
}

// Resolver builds a Config from Settings.
type Resolver struct {
	settings Settings
}

// NewResolver creates a resolver. A nil settings source yields defaults.
func NewResolver(settings Settings) *Resolver {
	return &Resolver{settings: settings}
}

// Resolve reads the three settings from a single snapshot when the source
// supports one. Each one falls back to its default on its
// own when unset or of the wrong type. It never fails.
func (r *Resolver) Resolve() Config {
	cfg := Config{
		Marker:    DefaultMarker,
		Templates: map[string]string{},
	}
	if r == nil || r.settings == nil {
		return cfg
	}

	settings := r.settings
	if s, ok := settings.(Snapshotter); ok {
		settings = s.Snapshot()
	}

	if v, ok := settings.Get(KeyMarker).(string); ok {
		cfg.Marker = v
	}

	if v := settings.Get(KeyTimeOffset); v != nil {
		if offset, err := cast.ToIntE(v); err == nil {
			cfg.TimeOffsetMinutes = offset
		}
	}

	cfg.Templates = templatesFrom(settings.Get(KeyTemplates))
	return cfg
}

func templatesFrom(v any) map[string]string {
	out := map[string]string{}
	switch m := v.(type) {
	case map[string]string:
		for k, t := range m {
			out[strings.ToLower(k)] = t
		}
	case map[string]any:
		for k, raw := range m {
			if t, ok := raw.(string); ok {
				out[strings.ToLower(k)] = t
			}
		}
	}
	return out
}
