package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Workspace tracks open buffers and what this process last saved to disk.
//
// It plays the role of the edit application host: ApplyEdit applies a batch of
// edits to one buffer atomically, and rejects it when the buffer or the file
// on disk has moved on since the edit was computed.
type Workspace struct {
	mu      sync.Mutex
	buffers map[string]*Buffer
	saved   map[string]string // key -> digest of content we wrote
}

// NewWorkspace creates an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{
		buffers: make(map[string]*Buffer),
		saved:   make(map[string]string),
	}
}

// Open loads path from disk, replacing any buffer already open for it.
// The returned buffer is clean if its content is exactly what this workspace
// last saved to the path.
func (w *Workspace) Open(path string) (*Buffer, error) {
	buf, err := Load(path)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	buf.savedDigest = w.saved[buf.Key()]
	buf.onSave = w.recordSave
	w.buffers[buf.Key()] = buf
	return buf, nil
}

// Buffer returns the open buffer for key.
func (w *Workspace) Buffer(key string) (*Buffer, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	buf, ok := w.buffers[key]
	return buf, ok
}

// Close forgets the open buffer for key. The saved digest is kept so a later
// Open of the same unchanged file is still clean.
func (w *Workspace) Close(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.buffers, key)
}

// Forget drops everything known about key, including its saved digest.
func (w *Workspace) Forget(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.buffers, key)
	delete(w.saved, key)
}

// Len returns the number of open buffers.
func (w *Workspace) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.buffers)
}

// ApplyEdit applies edit to the buffer identified by edit.Key.
//
// It returns (false, nil) when the edit is rejected because the buffer version
// moved or the file on disk no longer matches the buffer. Other failures,
// including an unknown key or an invalid range, are returned as errors.
func (w *Workspace) ApplyEdit(ctx context.Context, edit WorkspaceEdit) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	buf, ok := w.Buffer(edit.Key)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotOpen, edit.Key)
	}

	changed, err := buf.diskChanged()
	if err != nil {
		return false, err
	}
	if changed {
		return false, nil
	}

	if err := buf.Apply(edit.Version, edit.Edits); err != nil {
		if errors.Is(err, ErrStale) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (w *Workspace) recordSave(key, digest string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.saved[key] = digest
}

// diskChanged reports whether the file no longer holds the content the buffer
// was loaded from.
func (b *Buffer) diskChanged() (bool, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", filepath.Base(b.path), err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	return Digest(string(data)) != b.loadedDigest, nil
}
