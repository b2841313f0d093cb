package document

import "errors"

// Errors returned by buffer and workspace operations.
//
// Check them with errors.Is:
//
//	if errors.Is(err, document.ErrStale) {
//	    // recompute the edit against the current buffer
//	}
var (
	// ErrStale is returned when an edit was computed against an older
	// buffer version or the file changed on disk after it was loaded.
	ErrStale = errors.New("document changed since edit was computed")

	// ErrOutOfRange is returned when an edit addresses a position that does
	// not exist in the buffer, or when edits overlap.
	ErrOutOfRange = errors.New("position out of range")

	// ErrNotOpen is returned when an edit targets a key with no open buffer.
	ErrNotOpen = errors.New("document not open")
)
