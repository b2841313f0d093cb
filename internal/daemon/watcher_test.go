package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// startWatcher starts a watcher on a fresh temp tree.
func startWatcher(t *testing.T) (*FileWatcher, string) {
	t.Helper()

	root := t.TempDir()
	for _, dir := range []string{"src", ".git", "node_modules/pkg"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	fw, err := NewFileWatcher(DefaultIgnore)
	if err != nil {
		t.Fatalf("NewFileWatcher() failed: %v", err)
	}
	if err := fw.Start(root); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(func() { _ = fw.Stop() })
	return fw, root
}

// nextEvent waits for an event on path, skipping others.
func nextEvent(t *testing.T, fw *FileWatcher, path string) FileEvent {
	t.Helper()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case event := <-fw.Events():
			if event.Path == path {
				return event
			}
		case <-timeout:
			t.Fatalf("Timeout waiting for event on %s", path)
			return FileEvent{}
		}
	}
}

func TestFileWatcher_StartStop(t *testing.T) {
	fw, err := NewFileWatcher(nil)
	if err != nil {
		t.Fatalf("NewFileWatcher() failed: %v", err)
	}
	if fw.IsRunning() {
		t.Error("Newly created watcher should not be running")
	}

	if err := fw.Start(t.TempDir()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !fw.IsRunning() {
		t.Error("Watcher should be running after Start()")
	}
	if err := fw.Start(t.TempDir()); err == nil {
		t.Error("Second Start() should fail when watcher is already running")
	}

	if err := fw.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if fw.IsRunning() {
		t.Error("Watcher should not be running after Stop()")
	}
	if _, ok := <-fw.Events(); ok {
		t.Error("Events() should be closed after Stop()")
	}
}

func TestFileWatcher_SkipsIgnoredDirectories(t *testing.T) {
	fw, root := startWatcher(t)

	for _, dir := range fw.WatchList() {
		rel, _ := filepath.Rel(root, dir)
		if rel == ".git" || rel == "node_modules" || rel == filepath.Join("node_modules", "pkg") {
			t.Errorf("ignored directory %s is watched", rel)
		}
	}

	if err := os.WriteFile(filepath.Join(root, ".git", "HEAD"), []byte("ref"), 0644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(root, "src", "a.js")
	if err := os.WriteFile(target, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	// The first event must be for the non-ignored file.
	select {
	case event := <-fw.Events():
		if event.Path != target {
			t.Errorf("got event for %s, want %s", event.Path, target)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for event")
	}
}

func TestFileWatcher_Operations(t *testing.T) {
	fw, root := startWatcher(t)
	path := filepath.Join(root, "src", "index.php")

	if err := os.WriteFile(path, []byte("<?php"), 0644); err != nil {
		t.Fatal(err)
	}
	if event := nextEvent(t, fw, path); event.Op != OpCreate {
		t.Errorf("Op = %v, want create", event.Op)
	}

	time.Sleep(50 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("\necho 1;")
	_ = f.Close()
	if event := nextEvent(t, fw, path); event.Op != OpModify {
		t.Errorf("Op = %v, want modify", event.Op)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	// Drain any trailing writes until the delete shows up.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-fw.Events():
			if event.Path == path && event.Op == OpDelete {
				return
			}
		case <-deadline:
			t.Fatal("Timeout waiting for delete event")
		}
	}
}

func TestFileWatcher_WatchesNewDirectories(t *testing.T) {
	fw, root := startWatcher(t)

	dir := filepath.Join(root, "src", "fresh")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}

	// Wait until the new directory is in the watch list.
	deadline := time.Now().Add(2 * time.Second)
	for !contains(fw.WatchList(), dir) {
		if time.Now().After(deadline) {
			t.Fatalf("%s was never watched", dir)
		}
		time.Sleep(10 * time.Millisecond)
	}

	path := filepath.Join(dir, "a.go")
	if err := os.WriteFile(path, []byte("package a"), 0644); err != nil {
		t.Fatal(err)
	}
	nextEvent(t, fw, path)
}

func TestEventOpString(t *testing.T) {
	tests := map[EventOp]string{OpCreate: "create", OpModify: "modify", OpDelete: "delete", EventOp(9): "unknown"}
	for op, want := range tests {
		if got := op.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", op, got, want)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
