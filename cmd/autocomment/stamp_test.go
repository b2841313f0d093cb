package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fileautocomment/autocomment/internal/marker"
	"github.com/fileautocomment/autocomment/internal/settings"
)

func newTestSession(t *testing.T, dir string, toggle marker.Switch) *session {
	t.Helper()

	opts := marker.DefaultOptions()
	opts.ReleaseDelay = 0
	opts.SaveDelay = 0
	opts.Now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local) }
	opts.Notifier = cliNotifier{out: &bytes.Buffer{}, err: &bytes.Buffer{}}

	sess, err := newSession(settings.New(dir, ""), toggle, opts)
	if err != nil {
		t.Fatalf("newSession() failed: %v", err)
	}
	return sess
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestStampFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".autocomment.yaml"), "fileAutoComment:\n  templates:\n    go: \"// {marker} {time}\"\n")
	goFile := filepath.Join(dir, "main.go")
	txtFile := filepath.Join(dir, "notes.txt")
	writeFile(t, goFile, "package main\n")
	writeFile(t, txtFile, "hello")

	sess := newTestSession(t, dir, marker.AlwaysOn)
	var out bytes.Buffer

	if err := stampFiles(context.Background(), sess, []string{goFile, txtFile}, &out); err != nil {
		t.Fatalf("stampFiles() failed: %v", err)
	}

	data, _ := os.ReadFile(goFile)
	if want := "package main\n// vantagemarekts 2024-01-01 00:00:00"; string(data) != want {
		t.Errorf("main.go = %q, want %q", data, want)
	}
	if data, _ := os.ReadFile(txtFile); string(data) != "hello" {
		t.Errorf("notes.txt changed: %q", data)
	}
	if !strings.Contains(out.String(), "appended") || !strings.Contains(out.String(), "no template for .txt") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	// The workspace remembers what it saved, so the unchanged file is clean.
	out.Reset()
	if err := stampFiles(context.Background(), sess, []string{goFile}, &out); err != nil {
		t.Fatalf("second stampFiles() failed: %v", err)
	}
	if !strings.Contains(out.String(), "filtered") {
		t.Errorf("clean file should be filtered:\n%s", out.String())
	}
	data, _ = os.ReadFile(goFile)
	if strings.Count(string(data), "vantagemarekts") != 1 {
		t.Errorf("marker duplicated: %q", data)
	}
}

func TestStampFiles_Disabled(t *testing.T) {
	dir := t.TempDir()
	jsFile := filepath.Join(dir, "a.js")
	writeFile(t, jsFile, "x")

	off := marker.SwitchFunc(func(context.Context) (bool, error) { return false, nil })
	var out bytes.Buffer
	if err := stampFiles(context.Background(), newTestSession(t, dir, off), []string{jsFile}, &out); err != nil {
		t.Fatalf("stampFiles() failed: %v", err)
	}
	if !strings.Contains(out.String(), "stamping is disabled") {
		t.Errorf("output = %q", out.String())
	}
	if data, _ := os.ReadFile(jsFile); string(data) != "x" {
		t.Errorf("a.js changed while disabled: %q", data)
	}
}

func TestStampFiles_MissingFile(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	err := stampFiles(context.Background(), newTestSession(t, dir, marker.AlwaysOn), []string{filepath.Join(dir, "gone.js")}, &out)
	if err == nil || !strings.Contains(err.Error(), "1 of 1") {
		t.Errorf("stampFiles() error = %v", err)
	}
}

func TestParseWhen(t *testing.T) {
	base := time.Date(2024, 3, 4, 12, 0, 0, 0, time.Local)

	got, err := parseWhen("tomorrow", base)
	if err != nil {
		t.Fatalf("parseWhen() failed: %v", err)
	}
	if got.Year() != 2024 || got.Month() != time.March || got.Day() != 5 {
		t.Errorf("parseWhen(tomorrow) = %v, want 2024-03-05", got)
	}

	if _, err := parseWhen("banana", base); err == nil {
		t.Error("parseWhen(banana) should fail")
	}
}
