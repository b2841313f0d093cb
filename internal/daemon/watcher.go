package daemon

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// EventOp represents the type of file system operation.
type EventOp int

const (
	// OpCreate indicates a new file was created.
	OpCreate EventOp = iota
	// OpModify indicates an existing file was written.
	OpModify
	// OpDelete indicates a file was deleted or renamed away.
	OpDelete
)

// String returns a human-readable representation of the operation.
func (op EventOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// FileEvent is a file system event for a regular file in the watched tree.
type FileEvent struct {
	// Path is the absolute path to the file that changed.
	Path string
	// Op is the operation that occurred.
	Op EventOp
}

// DefaultIgnore lists directory names that are never watched.
var DefaultIgnore = []string{".git", ".jj", ".hg", ".svn", "node_modules", "vendor", ".idea", ".vscode"}

// FileWatcher watches a directory tree recursively. Directories created
// after Start are added as they appear.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	ignore  map[string]bool
	events  chan FileEvent
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	root    string
}

// NewFileWatcher creates a watcher that skips directories named in ignore.
// The watcher must be started with Start() before it will emit events.
func NewFileWatcher(ignore []string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	skip := make(map[string]bool, len(ignore))
	for _, name := range ignore {
		skip[name] = true
	}

	return &FileWatcher{
		watcher: watcher,
		ignore:  skip,
		events:  make(chan FileEvent, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching root and every directory below it.
func (fw *FileWatcher) Start(root string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.running {
		return fmt.Errorf("watcher already running")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	fw.root = absRoot

	if err := fw.addTree(absRoot); err != nil {
		return fmt.Errorf("failed to watch %s: %w", absRoot, err)
	}

	fw.running = true
	fw.wg.Add(1)
	go fw.processEvents()

	return nil
}

// Stop stops watching and closes the Events() and Errors() channels.
// It blocks until the event processing goroutine has exited.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return fw.watcher.Close()
	}
	fw.running = false
	fw.mu.Unlock()

	close(fw.done)

	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	fw.wg.Wait()

	close(fw.events)
	close(fw.errors)

	return nil
}

// Events returns the channel that emits FileEvent notifications.
func (fw *FileWatcher) Events() <-chan FileEvent {
	return fw.events
}

// Errors returns the channel that emits watcher errors.
func (fw *FileWatcher) Errors() <-chan error {
	return fw.errors
}

// IsRunning returns true if the watcher is currently running.
func (fw *FileWatcher) IsRunning() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.running
}

// WatchList returns the directories currently watched.
func (fw *FileWatcher) WatchList() []string {
	return fw.watcher.WatchList()
}

// addTree adds dir and its subdirectories, skipping ignored names.
func (fw *FileWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Vanished or unreadable subdirectories are skipped.
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && fw.ignore[d.Name()] {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			if path == dir {
				return err
			}
			fw.sendError(fmt.Errorf("failed to watch %s: %w", path, err))
		}
		return nil
	})
}

func (fw *FileWatcher) processEvents() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.done:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if fileEvent, ok := fw.convertEvent(event); ok {
				select {
				case fw.events <- fileEvent:
				case <-fw.done:
					return
				}
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.sendError(err)
		}
	}
}

func (fw *FileWatcher) sendError(err error) {
	select {
	case fw.errors <- err:
	case <-fw.done:
	default:
		// Drop when nobody is draining errors.
	}
}

// convertEvent maps an fsnotify event to a FileEvent. New directories are
// added to the watch and produce no event.
func (fw *FileWatcher) convertEvent(event fsnotify.Event) (FileEvent, bool) {
	if fw.ignored(event.Name) {
		return FileEvent{}, false
	}

	var op EventOp
	switch {
	case event.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			return FileEvent{}, false
		}
		if info.IsDir() {
			if err := fw.addTree(event.Name); err != nil {
				fw.sendError(err)
			}
			return FileEvent{}, false
		}
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// A rename shows up again as a create under the new name.
		op = OpDelete
	default:
		return FileEvent{}, false
	}

	return FileEvent{Path: event.Name, Op: op}, true
}

// ignored reports whether path lies under an ignored directory of the root.
func (fw *FileWatcher) ignored(path string) bool {
	rel, err := filepath.Rel(fw.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return true
	}
	dirs := strings.Split(filepath.Dir(rel), string(filepath.Separator))
	for _, name := range dirs {
		if fw.ignore[name] {
			return true
		}
	}
	return fw.ignore[filepath.Base(rel)]
}
