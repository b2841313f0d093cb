// Package settings is the user-facing configuration store.
//
// Settings live in a .autocomment.{yaml,toml,json} file at the workspace root,
// an explicit file given with --config, or AUTOCOMMENT_* environment
// variables (dots become underscores, so fileAutoComment.commentMarker is
// AUTOCOMMENT_FILEAUTOCOMMENT_COMMENTMARKER).
//
// Every Get re-reads the sources, so edits to the file apply to the next save
// without a restart.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/fileautocomment/autocomment/internal/marker"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "AUTOCOMMENT"

// Store reads settings through viper. It satisfies marker.Settings.
type Store struct {
	root string
	file string

	mu      sync.Mutex
	last    *viper.Viper
	lastErr error
}

// New returns a store for the workspace at root. If file is non-empty it is
// used instead of searching root for a config file.
func New(root, file string) *Store {
	return &Store{root: root, file: file}
}

// Root returns the workspace root.
func (s *Store) Root() string {
	return s.root
}

// Get re-reads the configuration and returns the value for key, or nil.
// If the file cannot be parsed the last good configuration is used.
func (s *Store) Get(key string) any {
	return s.load().Get(key)
}

var _ marker.Snapshotter = (*Store)(nil)

// Snapshot loads the configuration once. The result does not change when the
// file is edited afterwards.
func (s *Store) Snapshot() marker.Settings {
	return s.load()
}

// AllSettings returns the effective configuration as a nested map.
func (s *Store) AllSettings() map[string]any {
	return s.load().AllSettings()
}

// ConfigFile returns the file the last load read, or "" if none was found.
func (s *Store) ConfigFile() string {
	return s.load().ConfigFileUsed()
}

// Err returns the error from the most recent load, if any.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Store) load() *viper.Viper {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.read()
	s.lastErr = err
	if err != nil {
		if s.last != nil {
			return s.last
		}
		return v
	}
	s.last = v
	return v
}

// read builds a fresh viper instance from the current sources.
func (s *Store) read() (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch {
	case s.file != "":
		v.SetConfigFile(s.file)
	case s.root != "":
		if path := configIn(s.root); path != "" {
			v.SetConfigFile(path)
		} else {
			return v, nil
		}
	default:
		return v, nil
	}

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		return v, fmt.Errorf("failed to read config: %w", err)
	}
	return v, nil
}
