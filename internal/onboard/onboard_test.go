package onboard

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		last, current string
		want          Change
	}{
		{last: "v1.2.0", current: "v1.2.0", want: ChangeNone},
		{last: "1.2.0", current: "v1.2.0", want: ChangeNone},
		{last: "", current: "v0.1.0", want: ChangeInstalled},
		{last: "v0.1.0", current: "v0.2.0", want: ChangeUpgraded},
		{last: "v0.10.0", current: "v0.9.0", want: ChangeDowngraded},
		{last: "v1.0.0-rc.1", current: "v1.0.0", want: ChangeUpgraded},
		{last: "dev", current: "v1.0.0", want: ChangeOther},
		{last: "v1.0.0+a", current: "v1.0.0+b", want: ChangeOther},
	}
	for _, tt := range tests {
		if got := Compare(tt.last, tt.current); got != tt.want {
			t.Errorf("Compare(%q, %q) = %s, want %s", tt.last, tt.current, got, tt.want)
		}
	}
}

type memStore struct {
	version string
	err     error
}

func (m *memStore) LastVersion(context.Context) (string, error) { return m.version, m.err }

func (m *memStore) SetLastVersion(_ context.Context, v string) error {
	m.version = v
	return nil
}

type fakePrompter struct {
	answer bool
	err    error
	asked  []string
}

func (p *fakePrompter) Confirm(title, _, _ string) (bool, error) {
	p.asked = append(p.asked, title)
	return p.answer, p.err
}

func TestChecker_Run(t *testing.T) {
	tests := []struct {
		name        string
		last        string
		interactive bool
		answer      bool
		wantChange  Change
		wantAsked   int
		wantReadme  bool
		wantHint    bool
	}{
		{name: "same version", last: "v0.3.0", interactive: true, wantChange: ChangeNone},
		{name: "upgrade accepted", last: "v0.2.0", interactive: true, answer: true, wantChange: ChangeUpgraded, wantAsked: 1, wantReadme: true},
		{name: "upgrade ignored", last: "v0.2.0", interactive: true, wantChange: ChangeUpgraded, wantAsked: 1},
		{name: "fresh install without terminal", interactive: false, wantChange: ChangeInstalled, wantHint: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{version: tt.last}
			prompter := &fakePrompter{answer: tt.answer}
			var out bytes.Buffer

			c := &Checker{Store: store, Version: "0.3.0", Prompter: prompter, Interactive: tt.interactive, Out: &out}
			change, err := c.Run(context.Background())
			if err != nil {
				t.Fatalf("Run() failed: %v", err)
			}
			if change != tt.wantChange {
				t.Errorf("change = %s, want %s", change, tt.wantChange)
			}
			if store.version != "v0.3.0" {
				t.Errorf("recorded version = %q, want v0.3.0", store.version)
			}
			if len(prompter.asked) != tt.wantAsked {
				t.Errorf("asked %d times, want %d", len(prompter.asked), tt.wantAsked)
			}
			if got := strings.Contains(out.String(), "# File Auto Comment"); got != tt.wantReadme {
				t.Errorf("README shown = %v, want %v", got, tt.wantReadme)
			}
			if got := strings.Contains(out.String(), "autocomment readme"); got != tt.wantHint {
				t.Errorf("hint shown = %v, want %v", got, tt.wantHint)
			}
		})
	}
}

func TestChecker_Errors(t *testing.T) {
	boom := errors.New("boom")

	c := &Checker{Store: &memStore{err: boom}, Version: "v1.0.0", Out: &bytes.Buffer{}}
	if _, err := c.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("store error = %v, want boom", err)
	}

	store := &memStore{}
	c = &Checker{Store: store, Version: "v1.0.0", Prompter: &fakePrompter{err: boom}, Interactive: true, Out: &bytes.Buffer{}}
	if _, err := c.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("prompt error = %v, want boom", err)
	}
	if store.version != "v1.0.0" {
		t.Error("version should be recorded before prompting")
	}
}

func TestReadmeEmbedded(t *testing.T) {
	if !strings.HasPrefix(Readme, "# File Auto Comment") {
		t.Errorf("Readme starts with %q", Readme[:20])
	}
}
