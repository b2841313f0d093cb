package settings

import (
	"os"
	"path/filepath"
)

// ConfigName is the base name of the workspace config file.
const ConfigName = ".autocomment"

// configExts are the extensions FindRoot and the Store look for, in order.
var configExts = []string{"yaml", "yml", "toml", "json"}

// FindRoot returns the workspace root for path: the nearest directory, walking
// up, that holds a config file, a .jj directory, or a .git entry. A config
// file wins over VCS metadata found in the same directory or below it.
//
// Returns ErrNoRoot if nothing is found before the filesystem root.
func FindRoot(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
		absPath = filepath.Dir(absPath)
	}

	current := absPath
	for {
		if configIn(current) != "" {
			return current, nil
		}
		if info, err := os.Stat(filepath.Join(current, ".jj")); err == nil && info.IsDir() {
			return current, nil
		}
		// .git may be a file in worktrees
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrNoRoot
		}
		current = parent
	}
}

// configIn returns the config file in dir, or "" if there is none.
func configIn(dir string) string {
	for _, ext := range configExts {
		path := filepath.Join(dir, ConfigName+"."+ext)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}
