package marker

import (
	"fmt"
	"strings"

	"github.com/fileautocomment/autocomment/internal/document"
)

// Lines is the read surface the locator scans.
type Lines interface {
	LineCount() int
	LineAt(i int) document.Line
}

// Locate returns the index of the first line containing marker as a plain
// substring. An empty marker never matches.
func Locate(lines Lines, marker string) (int, bool) {
	if marker == "" {
		return 0, false
	}
	for i := 0; i < lines.LineCount(); i++ {
		if strings.Contains(lines.LineAt(i).Text, marker) {
			return i, true
		}
	}
	return 0, false
}

// IntentKind distinguishes replacing the marker line from appending one.
type IntentKind int

const (
	// IntentReplace overwrites the whole line that holds the marker.
	IntentReplace IntentKind = iota
	// IntentAppend adds the comment at the end of the document.
	IntentAppend
)

// String returns "replace" or "append".
func (k IntentKind) String() string {
	switch k {
	case IntentReplace:
		return "replace"
	case IntentAppend:
		return "append"
	default:
		return "unknown"
	}
}

// EditIntent is the single edit produced for one synchronization attempt.
type EditIntent struct {
	Kind IntentKind
	// Line is the line the edit touches: the marker line for a replace, the
	// last line for an append.
	Line  int
	Range document.Range
	Text  string
}

// TextEdit converts the intent into an edit the host can apply.
func (i EditIntent) TextEdit() document.TextEdit {
	return document.TextEdit{Range: i.Range, NewText: i.Text}
}

// String describes the intent for logs.
func (i EditIntent) String() string {
	return fmt.Sprintf("%s line %d", i.Kind, i.Line)
}

// Plan decides the edit for snap under cfg, with stamp as the rendered time.
// It returns nil when the document is not synchronized: no extension, no
// template for the extension, or an empty marker.
func Plan(snap document.Snapshot, cfg Config, stamp string) *EditIntent {
	if cfg.Marker == "" {
		return nil
	}
	ext := Extension(snap.FileName)
	if ext == "" {
		return nil
	}
	content, ok := RenderFor(ext, cfg, stamp)
	if !ok {
		return nil
	}

	if idx, found := Locate(snap, cfg.Marker); found {
		line := snap.LineAt(idx)
		return &EditIntent{Kind: IntentReplace, Line: idx, Range: line.Range, Text: content}
	}

	last, ok := snap.LastLine()
	if !ok {
		return &EditIntent{Kind: IntentAppend, Text: content}
	}

	// A blank last line is reused so no trailing blank line follows the marker.
	if strings.TrimSpace(last.Text) == "" {
		return &EditIntent{Kind: IntentAppend, Line: last.Index, Range: last.Range, Text: content}
	}

	end := last.Range.End
	return &EditIntent{
		Kind:  IntentAppend,
		Line:  last.Index,
		Range: document.Range{Start: end, End: end},
		Text:  "\n" + content,
	}
}
