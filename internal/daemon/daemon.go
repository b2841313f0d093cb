package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/fileautocomment/autocomment/internal/document"
	"github.com/fileautocomment/autocomment/internal/marker"
)

// StatusSink is told when the enabled flag changes.
type StatusSink interface {
	Status(enabled bool)
}

// Config holds configuration for the daemon.
type Config struct {
	// DebounceInterval is how long a path must stay quiet before its save is
	// delivered. Editors often write a file in several steps.
	DebounceInterval time.Duration

	// StatusInterval is how often the enabled flag is polled.
	StatusInterval time.Duration

	// Ignore lists directory names that are not watched.
	Ignore []string

	// Filter, if set, drops paths before they are opened.
	Filter func(path string) bool

	// Switch is polled for the status indicator (optional).
	Switch marker.Switch

	// Status receives enabled flag changes (optional).
	Status StatusSink

	// Logger for daemon activity
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 200 * time.Millisecond,
		StatusInterval:   time.Second,
		Ignore:           DefaultIgnore,
		Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// Stats counts what happened to delivered saves.
type Stats struct {
	Delivered int
	Outcomes  map[marker.Outcome]int
}

// Daemon turns file writes under a root into save events for a Hook.
type Daemon struct {
	root      string
	workspace *document.Workspace
	hook      *marker.Hook
	config    *Config

	watcher       *FileWatcher
	changeQueue   map[string]time.Time // path -> last event
	changeQueueMu sync.Mutex

	statsMu sync.Mutex
	stats   Stats

	lastEnabled *bool

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a daemon that watches root and delivers saves to hook, with
// documents opened in workspace. config may be nil for defaults.
func New(root string, workspace *document.Workspace, hook *marker.Hook, config *Config) (*Daemon, error) {
	if root == "" {
		return nil, fmt.Errorf("root cannot be empty")
	}
	if workspace == nil {
		return nil, fmt.Errorf("workspace cannot be nil")
	}
	if hook == nil {
		return nil, fmt.Errorf("hook cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = DefaultConfig().Logger
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = DefaultConfig().DebounceInterval
	}
	if config.StatusInterval <= 0 {
		config.StatusInterval = DefaultConfig().StatusInterval
	}

	watcher, err := NewFileWatcher(config.Ignore)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		root:        root,
		workspace:   workspace,
		hook:        hook,
		config:      config,
		watcher:     watcher,
		changeQueue: make(map[string]time.Time),
		stats:       Stats{Outcomes: make(map[marker.Outcome]int)},
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Start watches the root and blocks until ctx is cancelled or Stop is called.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting daemon")

	if err := d.watcher.Start(d.root); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	d.config.Logger.Printf("Watching: %s", d.root)

	d.pollStatus()

	d.wg.Add(3)
	go d.watchFileEvents()
	go d.processChangeQueue()
	go d.watchStatus()

	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon. It is safe to call more than once.
func (d *Daemon) Stop() error {
	d.stopOnce.Do(func() {
		d.config.Logger.Println("Stopping daemon")
		d.cancel()

		if err := d.watcher.Stop(); err != nil {
			d.config.Logger.Printf("Error closing watcher: %v", err)
		}

		d.wg.Wait()
		d.hook.Guard().Wait()
		d.config.Logger.Println("Daemon stopped")
	})
	return nil
}

// Stats returns a copy of the delivery counters.
func (d *Daemon) Stats() Stats {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()

	out := Stats{Delivered: d.stats.Delivered, Outcomes: make(map[marker.Outcome]int, len(d.stats.Outcomes))}
	for k, v := range d.stats.Outcomes {
		out.Outcomes[k] = v
	}
	return out
}

// Pending returns the number of paths waiting out the debounce interval.
func (d *Daemon) Pending() int {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()
	return len(d.changeQueue)
}

func (d *Daemon) watchFileEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events():
			if !ok {
				return
			}

			if event.Op == OpDelete {
				d.dropChange(event.Path)
				d.workspace.Forget(event.Path)
				continue
			}
			if d.config.Filter != nil && !d.config.Filter(event.Path) {
				continue
			}
			d.queueChange(event.Path)

		case err, ok := <-d.watcher.Errors():
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

func (d *Daemon) queueChange(path string) {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()

	d.changeQueue[path] = time.Now()
}

func (d *Daemon) dropChange(path string) {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()

	delete(d.changeQueue, path)
}

func (d *Daemon) processChangeQueue() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.DebounceInterval / 2)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			for _, path := range d.settledChanges() {
				d.deliver(path)
			}
		}
	}
}

// settledChanges removes and returns the paths that have been quiet for the
// debounce interval.
func (d *Daemon) settledChanges() []string {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()

	now := time.Now()
	var ready []string
	for path, queuedAt := range d.changeQueue {
		if now.Sub(queuedAt) < d.config.DebounceInterval {
			continue
		}
		ready = append(ready, path)
		delete(d.changeQueue, path)
	}
	return ready
}

// deliver opens path and hands it to the hook as a manual save.
func (d *Daemon) deliver(path string) {
	buf, err := d.workspace.Open(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			d.config.Logger.Printf("Error opening %s: %v", path, err)
		}
		return
	}
	defer d.workspace.Close(buf.Key())

	res := d.hook.OnWillSave(d.ctx, marker.SaveEvent{Document: buf, Reason: marker.SaveManual})

	d.statsMu.Lock()
	d.stats.Delivered++
	d.stats.Outcomes[res.Outcome]++
	d.statsMu.Unlock()

	switch res.Outcome {
	case marker.OutcomeReplaced, marker.OutcomeAppended:
		d.config.Logger.Printf("Stamped %s (%s)", path, res.Outcome)
	case marker.OutcomeFailed, marker.OutcomeRejected:
		d.config.Logger.Printf("Could not stamp %s: %v", path, res.Err)
	}
}

func (d *Daemon) watchStatus() {
	defer d.wg.Done()

	if d.config.Switch == nil || d.config.Status == nil {
		return
	}

	ticker := time.NewTicker(d.config.StatusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			d.pollStatus()
		}
	}
}

// pollStatus reports the enabled flag to the sink when it changes.
func (d *Daemon) pollStatus() {
	if d.config.Switch == nil || d.config.Status == nil {
		return
	}

	enabled, err := d.config.Switch.Enabled(d.ctx)
	if err != nil {
		d.config.Logger.Printf("Error reading enabled state: %v", err)
		return
	}
	if d.lastEnabled != nil && *d.lastEnabled == enabled {
		return
	}

	d.lastEnabled = &enabled
	d.config.Logger.Printf("Stamping enabled: %v", enabled)
	d.config.Status.Status(enabled)
}
