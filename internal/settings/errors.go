package settings

import "errors"

// Errors returned by settings operations.
//
// Check them with errors.Is:
//
//	if errors.Is(err, settings.ErrNoRoot) {
//	    // fall back to the working directory
//	}
var (
	// ErrNoRoot is returned by FindRoot when no workspace marker is found
	// between the path and the filesystem root.
	ErrNoRoot = errors.New("no workspace root found")

	// ErrUnsupportedFormat is returned for config formats other than yaml
	// and toml.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrExists is returned by WriteDefault when the target file exists and
	// overwriting was not requested.
	ErrExists = errors.New("config file already exists")
)
