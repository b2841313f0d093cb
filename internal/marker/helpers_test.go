package marker

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/fileautocomment/autocomment/internal/document"
)

// fixedNow is 2024-01-01 00:00:00 in local time.
func fixedNow() time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
}

// mapSettings is a Settings backed by a plain map.
type mapSettings map[string]any

func (m mapSettings) Get(key string) any { return m[key] }

// phpSettings configures a php and a js template.
func phpSettings() mapSettings {
	return mapSettings{
		KeyTemplates: map[string]any{
			"php": "<?php # {marker}|{time} ?>",
			"js":  "// {marker} {time}",
		},
	}
}

// testDoc is a buffer whose Save only counts calls.
type testDoc struct {
	*document.Buffer
	mu      sync.Mutex
	saves   int
	saveErr error
	clean   bool
}

func newTestDoc(path, content string) *testDoc {
	return &testDoc{Buffer: document.NewBuffer(path, content)}
}

func (d *testDoc) IsDirty() bool { return !d.clean }

func (d *testDoc) Save(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.saves++
	return d.saveErr
}

func (d *testDoc) saveCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saves
}

// bufEditor applies edits straight to the document buffer.
type bufEditor struct {
	doc    *testDoc
	reject bool
	err    error
	panic  bool
	calls  int
}

func (e *bufEditor) ApplyEdit(ctx context.Context, edit document.WorkspaceEdit) (bool, error) {
	e.calls++
	if e.panic {
		panic("editor exploded")
	}
	if e.err != nil {
		return false, e.err
	}
	if e.reject {
		return false, nil
	}
	if err := e.doc.Apply(edit.Version, edit.Edits); err != nil {
		return false, err
	}
	return true, nil
}

// recordingNotifier captures user-facing messages.
type recordingNotifier struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (n *recordingNotifier) Info(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, msg)
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *recordingNotifier) errorCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.errors)
}

// recordingObserver captures stamps.
type recordingObserver struct {
	keys []string
}

func (o *recordingObserver) Stamped(key string, intent EditIntent) {
	o.keys = append(o.keys, key)
}

// testOptions returns quiet options with a fixed clock and no delays.
func testOptions(n Notifier) *Options {
	return &Options{
		ReleaseDelay: 50 * time.Millisecond,
		Now:          fixedNow,
		Logger:       log.New(io.Discard, "", 0),
		Notifier:     n,
	}
}

// newTestEngine builds an engine over doc with the given settings.
func newTestEngine(t *testing.T, settings Settings, editor Editor, n Notifier) *Engine {
	t.Helper()

	engine, err := NewEngine(NewResolver(settings), editor, testOptions(n))
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	return engine
}
