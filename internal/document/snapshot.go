package document

// Snapshot is an immutable view of a buffer at a specific version.
type Snapshot struct {
	Key      string
	FileName string
	Version  int
	Lines    []Line
}

// LineCount returns the number of lines in the snapshot.
func (s Snapshot) LineCount() int {
	return len(s.Lines)
}

// LineAt returns line i of the snapshot.
func (s Snapshot) LineAt(i int) Line {
	return s.Lines[i]
}

// LastLine returns the final line and true, or false for an empty snapshot.
func (s Snapshot) LastLine() (Line, bool) {
	if len(s.Lines) == 0 {
		return Line{}, false
	}
	return s.Lines[len(s.Lines)-1], true
}
