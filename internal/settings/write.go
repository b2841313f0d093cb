package settings

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/fileautocomment/autocomment/internal/marker"
)

// File is the on-disk layout of a config file.
type File struct {
	FileAutoComment Section `toml:"fileAutoComment" yaml:"fileAutoComment"`
}

// Section holds the fileAutoComment settings.
type Section struct {
	CommentMarker string            `toml:"commentMarker" yaml:"commentMarker"`
	TimeOffset    int               `toml:"timeOffset" yaml:"timeOffset"`
	Templates     map[string]string `toml:"templates" yaml:"templates"`
}

// StarterTemplates are written by WriteDefault.
var StarterTemplates = map[string]string{
	"css":  "/* {marker} {time} */",
	"go":   "// {marker} {time}",
	"html": "<!-- {marker} {time} -->",
	"js":   "// {marker} {time}",
	"php":  "<?php # {marker}|{time} ?>",
	"py":   "# {marker} {time}",
	"sh":   "# {marker} {time}",
	"ts":   "// {marker} {time}",
	"vue":  "<!-- {marker} {time} -->",
}

// DefaultFile returns the starter configuration.
func DefaultFile() File {
	templates := make(map[string]string, len(StarterTemplates))
	for ext, tmpl := range StarterTemplates {
		templates[ext] = tmpl
	}
	return File{FileAutoComment: Section{
		CommentMarker: marker.DefaultMarker,
		Templates:     templates,
	}}
}

// FileFrom converts a resolved configuration to the file layout.
func FileFrom(cfg marker.Config) File {
	return File{FileAutoComment: Section{
		CommentMarker: cfg.Marker,
		TimeOffset:    cfg.TimeOffsetMinutes,
		Templates:     cfg.Templates,
	}}
}

// FormatOf returns the encoding implied by path's extension.
func FormatOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// Encode writes f to w as yaml or toml.
func Encode(w io.Writer, f File, format string) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "toml":
		if err := toml.NewEncoder(w).Encode(f); err != nil {
			return fmt.Errorf("failed to encode toml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteDefault writes the starter configuration to path, choosing the
// encoding from the extension. It refuses to overwrite unless force is set.
func WriteDefault(path string, force bool) error {
	format := FormatOf(path)

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}

	// Validate the format before touching the filesystem.
	if err := Encode(io.Discard, File{}, format); err != nil {
		return err
	}

	f, err := os.OpenFile(path, flags, 0644)
	if os.IsExist(err) {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	if err := Encode(f, DefaultFile(), format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Dump writes the effective configuration of s to w.
func (s *Store) Dump(w io.Writer, format string) error {
	return Encode(w, FileFrom(marker.NewResolver(s).Resolve()), format)
}
