// Package document provides the file-backed text buffers that marker
// synchronization reads and edits.
//
// A Buffer holds the content of one file split into lines with addressable
// ranges. Edits are applied atomically against a buffer version, so an edit
// computed from an old snapshot is rejected instead of corrupting the file.
// The Workspace owns open buffers and remembers what this process last wrote
// to each path, which is what makes a buffer "dirty".
package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Buffer is an in-memory copy of a text file.
type Buffer struct {
	mu sync.RWMutex

	path    string
	content string
	lines   []Line
	starts  []int
	eol     string
	version int

	// loadedDigest is the digest of the disk content the buffer was built from
	// (or last saved). savedDigest is what this process last wrote to the path.
	loadedDigest string
	savedDigest  string

	onSave func(key, digest string)
}

// Load reads path from disk into a new Buffer.
func Load(path string) (*Buffer, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", absPath, err)
	}

	return NewBuffer(absPath, string(data)), nil
}

// NewBuffer creates a buffer for path with the given content without touching
// the disk. The buffer starts at version 1 and is dirty until saved.
func NewBuffer(path, content string) *Buffer {
	b := &Buffer{
		path:         filepath.Clean(path),
		version:      1,
		loadedDigest: Digest(content),
	}
	b.setContent(content)
	return b
}

// Digest returns the hex SHA-256 of content.
func Digest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Key returns the stable identity of the buffer (its absolute, cleaned path).
func (b *Buffer) Key() string {
	return b.path
}

// FileName returns the file path backing the buffer.
func (b *Buffer) FileName() string {
	return b.path
}

// Version increases by one on every applied edit.
func (b *Buffer) Version() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.content
}

// EOL returns the line ending used when inserting new lines.
func (b *Buffer) EOL() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.eol
}

// LineCount returns the number of lines. A buffer always has at least one.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// LineAt returns line i. It panics if i is out of range, like slice indexing.
func (b *Buffer) LineAt(i int) Line {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lines[i]
}

// IsDirty reports whether the content differs from what this process last
// saved to the path. A buffer that was never saved by us is dirty.
func (b *Buffer) IsDirty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.savedDigest == "" || Digest(b.content) != b.savedDigest
}

// Snapshot returns an immutable copy of the buffer's current lines.
func (b *Buffer) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	lines := make([]Line, len(b.lines))
	copy(lines, b.lines)
	return Snapshot{
		Key:      b.path,
		FileName: b.path,
		Version:  b.version,
		Lines:    lines,
	}
}

// Apply applies edits atomically if version matches the buffer version.
// Edits must not overlap. Newlines in inserted text are normalized to the
// buffer's line ending.
func (b *Buffer) Apply(version int, edits []TextEdit) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if version != b.version {
		return fmt.Errorf("%w: edit computed against version %d, buffer is at %d", ErrStale, version, b.version)
	}
	if len(edits) == 0 {
		return nil
	}

	type span struct {
		start, end int
		text       string
	}
	spans := make([]span, 0, len(edits))
	for _, e := range edits {
		start, err := b.offset(e.Range.Start)
		if err != nil {
			return err
		}
		end, err := b.offset(e.Range.End)
		if err != nil {
			return err
		}
		if end < start {
			return fmt.Errorf("%w: range end %s before start %s", ErrOutOfRange, e.Range.End, e.Range.Start)
		}
		spans = append(spans, span{start: start, end: end, text: b.normalize(e.NewText)})
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			return fmt.Errorf("%w: overlapping edits", ErrOutOfRange)
		}
	}

	var sb strings.Builder
	prev := 0
	for _, s := range spans {
		sb.WriteString(b.content[prev:s.start])
		sb.WriteString(s.text)
		prev = s.end
	}
	sb.WriteString(b.content[prev:])

	b.setContent(sb.String())
	b.version++
	return nil
}

// Save writes the buffer to disk in place, keeping the file mode. It returns
// ErrStale, and writes nothing, if the file no longer holds the content the
// buffer was loaded from.
func (b *Buffer) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	data, err := os.ReadFile(b.path)
	if err != nil {
		b.mu.Unlock()
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s was removed", ErrStale, b.path)
		}
		return fmt.Errorf("failed to read %s: %w", b.path, err)
	}
	if Digest(string(data)) != b.loadedDigest {
		b.mu.Unlock()
		return fmt.Errorf("%w: %s changed on disk", ErrStale, b.path)
	}

	content := b.content
	mode := os.FileMode(0o644)
	if info, err := os.Stat(b.path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(b.path, []byte(content), mode); err != nil {
		b.mu.Unlock()
		return fmt.Errorf("failed to write %s: %w", b.path, err)
	}
	digest := Digest(content)
	b.loadedDigest = digest
	b.savedDigest = digest
	onSave := b.onSave
	b.mu.Unlock()

	if onSave != nil {
		onSave(b.path, digest)
	}
	return nil
}

// offset converts a position into a byte offset of content.
// A position past the last line clamps to the end of the content.
func (b *Buffer) offset(p Position) (int, error) {
	if p.Line < 0 || p.Character < 0 {
		return 0, fmt.Errorf("%w: negative position %s", ErrOutOfRange, p)
	}
	if p.Line >= len(b.lines) {
		return len(b.content), nil
	}
	line := b.lines[p.Line]
	if p.Character > len(line.Text) {
		return 0, fmt.Errorf("%w: character %d beyond line %d length %d", ErrOutOfRange, p.Character, p.Line, len(line.Text))
	}
	return b.starts[p.Line] + p.Character, nil
}

func (b *Buffer) normalize(text string) string {
	if b.eol == "\n" {
		return strings.ReplaceAll(text, "\r\n", "\n")
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\n", b.eol)
}

func (b *Buffer) setContent(content string) {
	b.content = content
	b.eol = "\n"
	if i := strings.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		b.eol = "\r\n"
	}

	raw := strings.Split(content, "\n")
	lines := make([]Line, len(raw))
	starts := make([]int, len(raw))
	offset := 0
	for i, text := range raw {
		starts[i] = offset
		offset += len(text) + 1
		if i < len(raw)-1 {
			text = strings.TrimSuffix(text, "\r")
		}
		lines[i] = Line{
			Index: i,
			Text:  text,
			Range: Range{
				Start: Position{Line: i},
				End:   Position{Line: i, Character: len(text)},
			},
		}
	}
	b.lines = lines
	b.starts = starts
}
