package document

import "fmt"

// Position is a zero-based line/character address inside a buffer.
// Character counts bytes within the line text, excluding the line ending.
type Position struct {
	Line      int
	Character int
}

// String returns "line:character".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

// Before reports whether p sorts strictly before other.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Character < other.Character
}

// Range is a half-open span [Start, End) of a buffer.
type Range struct {
	Start Position
	End   Position
}

// IsEmpty reports whether the range covers no text (an insertion point).
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Line is a single line of a buffer.
type Line struct {
	// Index is the zero-based line number.
	Index int
	// Text is the literal line content without its line ending.
	Text string
	// Range spans the text of the line, excluding the line ending.
	Range Range
}

// TextEdit replaces the text in Range with NewText.
// An empty range is an insertion.
type TextEdit struct {
	Range   Range
	NewText string
}

// WorkspaceEdit is a batch of edits against one document, identified by key.
// Version is the buffer version the edits were computed against.
type WorkspaceEdit struct {
	Key     string
	Version int
	Edits   []TextEdit
}
