package marker

import "errors"

// Errors reported in Result.Err.
var (
	// ErrEditRejected is returned when the editor declined the edit, usually
	// because the document changed after the snapshot was taken.
	ErrEditRejected = errors.New("edit rejected by host")

	// ErrPanic wraps a panic recovered during a synchronization attempt.
	ErrPanic = errors.New("synchronization panicked")

	// ErrNilEditor is returned by NewEngine when no editor is supplied.
	ErrNilEditor = errors.New("editor cannot be nil")

	// ErrNilResolver is returned by NewEngine when no resolver is supplied.
	ErrNilResolver = errors.New("resolver cannot be nil")
)
