// Package onboard runs the first-run and upgrade prompt.
//
// The release that last ran is kept in the state store. When the running
// release differs, the new version is recorded and the user is asked whether
// to read the README.
package onboard

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/mod/semver"
	"golang.org/x/term"
)

// Readme is the user guide shown by the prompt.
//
//go:embed README.md
var Readme string

// Change classifies the running release against the recorded one.
type Change int

const (
	// ChangeNone means the same release ran before.
	ChangeNone Change = iota
	// ChangeInstalled means no release was recorded.
	ChangeInstalled
	// ChangeUpgraded means the running release is newer.
	ChangeUpgraded
	// ChangeDowngraded means the running release is older.
	ChangeDowngraded
	// ChangeOther means the versions differ but cannot be ordered.
	ChangeOther
)

// String returns the change name.
func (c Change) String() string {
	switch c {
	case ChangeNone:
		return "none"
	case ChangeInstalled:
		return "installed"
	case ChangeUpgraded:
		return "upgraded"
	case ChangeDowngraded:
		return "downgraded"
	default:
		return "changed"
	}
}

// Canonical adds the leading "v" semver expects.
func Canonical(version string) string {
	version = strings.TrimSpace(version)
	if version != "" && !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version
}

// Compare classifies current against last.
func Compare(last, current string) Change {
	last, current = Canonical(last), Canonical(current)
	switch {
	case last == current:
		return ChangeNone
	case last == "":
		return ChangeInstalled
	case !semver.IsValid(last) || !semver.IsValid(current):
		return ChangeOther
	}

	switch semver.Compare(current, last) {
	case 1:
		return ChangeUpgraded
	case -1:
		return ChangeDowngraded
	default:
		// Equal precedence, different build metadata.
		return ChangeOther
	}
}

// VersionStore records the release that last ran.
type VersionStore interface {
	LastVersion(ctx context.Context) (string, error)
	SetLastVersion(ctx context.Context, version string) error
}

// Prompter asks a yes/no question.
type Prompter interface {
	Confirm(title, affirmative, negative string) (bool, error)
}

// HuhPrompter asks through a huh form on the terminal.
type HuhPrompter struct{}

// Confirm shows a confirm field and returns the answer.
func (HuhPrompter) Confirm(title, affirmative, negative string) (bool, error) {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative(affirmative).
			Negative(negative).
			Value(&ok),
	))
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}

// IsInteractive reports whether stdin and stdout are terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Checker runs the version check.
type Checker struct {
	Store   VersionStore
	Version string

	// Prompter is used only when Interactive is true.
	Prompter    Prompter
	Interactive bool

	// Out receives the README or a one-line hint.
	Out io.Writer
}

// Run records the running release and, if it changed, offers the README.
func (c *Checker) Run(ctx context.Context) (Change, error) {
	last, err := c.Store.LastVersion(ctx)
	if err != nil {
		return ChangeNone, fmt.Errorf("failed to read last version: %w", err)
	}

	current := Canonical(c.Version)
	change := Compare(last, current)
	if change == ChangeNone {
		return change, nil
	}

	if err := c.Store.SetLastVersion(ctx, current); err != nil {
		return change, fmt.Errorf("failed to record version: %w", err)
	}

	if !c.Interactive || c.Prompter == nil {
		fmt.Fprintf(c.Out, "File Auto Comment %s %s. Run 'autocomment readme' to see what it does.\n", change, current)
		return change, nil
	}

	show, err := c.Prompter.Confirm(
		fmt.Sprintf("File Auto Comment has been updated to %s. View the README?", current),
		"View README",
		"Ignore",
	)
	if err != nil {
		return change, fmt.Errorf("prompt failed: %w", err)
	}
	if show {
		fmt.Fprint(c.Out, Readme)
	}
	return change, nil
}
