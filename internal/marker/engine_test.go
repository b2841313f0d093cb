package marker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fileautocomment/autocomment/internal/document"
)

func TestNewEngine(t *testing.T) {
	tests := []struct {
		name     string
		resolver *Resolver
		editor   Editor
		wantErr  error
	}{
		{name: "valid", resolver: NewResolver(nil), editor: &bufEditor{}},
		{name: "nil resolver", editor: &bufEditor{}, wantErr: ErrNilResolver},
		{name: "nil editor", resolver: NewResolver(nil), wantErr: ErrNilEditor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(tt.resolver, tt.editor, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewEngine() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && engine == nil {
				t.Fatal("NewEngine() returned nil engine")
			}
		})
	}
}

func TestSynchronize_AppendsAndSaves(t *testing.T) {
	doc := newTestDoc("/src/index.php", "<?php\necho 1;")
	editor := &bufEditor{doc: doc}
	obs := &recordingObserver{}
	engine := newTestEngine(t, phpSettings(), editor, &recordingNotifier{})
	engine.opts.Observer = obs

	res := engine.Synchronize(context.Background(), doc)
	if res.Outcome != OutcomeAppended || res.Err != nil {
		t.Fatalf("Synchronize() = %+v, want appended", res)
	}
	if doc.saveCount() != 1 {
		t.Errorf("saves = %d, want 1", doc.saveCount())
	}
	if want := "<?php\necho 1;\n<?php # vantagemarekts|2024-01-01 00:00:00 ?>"; doc.Text() != want {
		t.Errorf("Text() = %q, want %q", doc.Text(), want)
	}
	if len(obs.keys) != 1 || obs.keys[0] != "/src/index.php" {
		t.Errorf("observer keys = %v", obs.keys)
	}
}

func TestSynchronize_ReplacesExisting(t *testing.T) {
	doc := newTestDoc("/src/a.js", "// vantagemarekts 1999-01-01 00:00:00 extra\nrun();\n")
	engine := newTestEngine(t, phpSettings(), &bufEditor{doc: doc}, &recordingNotifier{})

	res := engine.Synchronize(context.Background(), doc)
	if res.Outcome != OutcomeReplaced {
		t.Fatalf("Outcome = %s, want replaced", res.Outcome)
	}
	if want := "// vantagemarekts 2024-01-01 00:00:00\nrun();\n"; doc.Text() != want {
		t.Errorf("Text() = %q, want %q", doc.Text(), want)
	}
}

func TestSynchronize_UsesFreshConfig(t *testing.T) {
	doc := newTestDoc("/src/a.js", "x")
	settings := phpSettings()
	engine := newTestEngine(t, settings, &bufEditor{doc: doc}, &recordingNotifier{})

	engine.Synchronize(context.Background(), doc)
	settings[KeyMarker] = "acme"
	engine.Synchronize(context.Background(), doc)

	if !strings.HasSuffix(doc.Text(), "// acme 2024-01-01 00:00:00") {
		t.Errorf("second stamp should use the new marker: %q", doc.Text())
	}
}

func TestSynchronize_MissingTemplateIsSilent(t *testing.T) {
	doc := newTestDoc("/src/main.py", "print(1)")
	editor := &bufEditor{doc: doc}
	notifier := &recordingNotifier{}
	engine := newTestEngine(t, phpSettings(), editor, notifier)

	res := engine.Synchronize(context.Background(), doc)
	if res.Outcome != OutcomeSkipped || res.Err != nil {
		t.Fatalf("Synchronize() = %+v, want skipped", res)
	}
	if editor.calls != 0 || doc.saveCount() != 0 || notifier.errorCount() != 0 {
		t.Errorf("calls=%d saves=%d errors=%d, want all zero", editor.calls, doc.saveCount(), notifier.errorCount())
	}
}

func TestSynchronize_Failures(t *testing.T) {
	tests := []struct {
		name        string
		editor      func(doc *testDoc) *bufEditor
		saveErr     error
		wantOutcome Outcome
		wantErr     error
	}{
		{
			name:        "rejected",
			editor:      func(doc *testDoc) *bufEditor { return &bufEditor{doc: doc, reject: true} },
			wantOutcome: OutcomeRejected,
			wantErr:     ErrEditRejected,
		},
		{
			name:        "apply error",
			editor:      func(doc *testDoc) *bufEditor { return &bufEditor{doc: doc, err: errors.New("host down")} },
			wantOutcome: OutcomeFailed,
		},
		{
			name:        "save error",
			editor:      func(doc *testDoc) *bufEditor { return &bufEditor{doc: doc} },
			saveErr:     errors.New("disk full"),
			wantOutcome: OutcomeFailed,
		},
		{
			name:        "file changed before save",
			editor:      func(doc *testDoc) *bufEditor { return &bufEditor{doc: doc} },
			saveErr:     fmt.Errorf("%w: index.php changed on disk", document.ErrStale),
			wantOutcome: OutcomeRejected,
			wantErr:     document.ErrStale,
		},
		{
			name:        "panic",
			editor:      func(doc *testDoc) *bufEditor { return &bufEditor{doc: doc, panic: true} },
			wantOutcome: OutcomeFailed,
			wantErr:     ErrPanic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newTestDoc("/src/index.php", "<?php")
			doc.saveErr = tt.saveErr
			notifier := &recordingNotifier{}
			engine := newTestEngine(t, phpSettings(), tt.editor(doc), notifier)

			res := engine.Synchronize(context.Background(), doc)
			if res.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %s, want %s", res.Outcome, tt.wantOutcome)
			}
			if res.Err == nil {
				t.Error("Err = nil, want an error")
			}
			if tt.wantErr != nil && !errors.Is(res.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", res.Err, tt.wantErr)
			}
			if notifier.errorCount() != 1 {
				t.Fatalf("error messages = %d, want 1", notifier.errorCount())
			}
			if !strings.Contains(notifier.errors[0], ".php") {
				t.Errorf("message %q should name the extension", notifier.errors[0])
			}
		})
	}
}

func TestSynchronize_PanicKeepsIntent(t *testing.T) {
	doc := newTestDoc("/src/index.php", "<?php")
	engine := newTestEngine(t, phpSettings(), &bufEditor{doc: doc, panic: true}, &recordingNotifier{})

	res := engine.Synchronize(context.Background(), doc)
	if res.Outcome != OutcomeFailed || !errors.Is(res.Err, ErrPanic) {
		t.Fatalf("Synchronize() = %+v, want failed with ErrPanic", res)
	}
	if res.Intent == nil || res.Intent.Kind != IntentAppend {
		t.Errorf("Intent = %v, want the planned append", res.Intent)
	}
}
