package marker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fileautocomment/autocomment/internal/document"
)

// Document is the host document the engine synchronizes.
type Document interface {
	Snapshot() document.Snapshot
	IsDirty() bool
	Save(ctx context.Context) error
}

// Editor applies a batch of edits to a document atomically. It returns false
// when it declines the edit, for example because the document changed.
type Editor interface {
	ApplyEdit(ctx context.Context, edit document.WorkspaceEdit) (bool, error)
}

// Notifier shows messages to the user. Calls must not block.
type Notifier interface {
	Info(msg string)
	Error(msg string)
}

// Observer is told about every marker written to disk.
type Observer interface {
	Stamped(key string, intent EditIntent)
}

// Options configures the Engine and Hook.
type Options struct {
	// SaveDelay is how long to wait after a successful edit before saving.
	SaveDelay time.Duration

	// ReleaseDelay is how long a document stays claimed in the Guard after an
	// attempt completes. It must outlast the echo of the engine's own save.
	ReleaseDelay time.Duration

	// Now is the clock used for stamps (time.Now if nil).
	Now func() time.Time

	// Logger for synchronization activity.
	Logger *log.Logger

	// Notifier receives user-facing messages (logged only if nil).
	Notifier Notifier

	// Observer is told about successful stamps (optional).
	Observer Observer
}

// DefaultOptions returns the stock delays and a stderr logger.
func DefaultOptions() *Options {
	return &Options{
		SaveDelay:    50 * time.Millisecond,
		ReleaseDelay: 1000 * time.Millisecond,
		Logger:       log.New(os.Stderr, "[marker] ", log.LstdFlags),
	}
}

func (o *Options) withDefaults() *Options {
	def := DefaultOptions()
	if o == nil {
		o = def
	}
	out := *o
	if out.Logger == nil {
		out.Logger = def.Logger
	}
	if out.Notifier == nil {
		out.Notifier = logNotifier{logger: out.Logger}
	}
	return &out
}

// Outcome classifies what happened to one save notification.
type Outcome int

const (
	// OutcomeSkipped means no template applied; nothing was edited.
	OutcomeSkipped Outcome = iota
	// OutcomeReplaced means the existing marker line was rewritten.
	OutcomeReplaced
	// OutcomeAppended means a new marker comment was added at the end.
	OutcomeAppended
	// OutcomeRejected means the editor declined the edit.
	OutcomeRejected
	// OutcomeFailed means an error or panic ended the attempt.
	OutcomeFailed
	// OutcomeDisabled means stamping is switched off.
	OutcomeDisabled
	// OutcomeFiltered means the save was automatic or the document clean.
	OutcomeFiltered
	// OutcomeInFlight means the document is already claimed by the guard.
	OutcomeInFlight
)

var outcomeNames = map[Outcome]string{
	OutcomeSkipped:  "skipped",
	OutcomeReplaced: "replaced",
	OutcomeAppended: "appended",
	OutcomeRejected: "rejected",
	OutcomeFailed:   "failed",
	OutcomeDisabled: "disabled",
	OutcomeFiltered: "filtered",
	OutcomeInFlight: "in-flight",
}

// String returns the outcome name.
func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Result reports one synchronization attempt.
type Result struct {
	Outcome Outcome
	Intent  *EditIntent
	Err     error
}

// Engine runs locate, render, edit and save for one document.
type Engine struct {
	resolver  *Resolver
	editor    Editor
	formatter *Formatter
	opts      *Options
}

// NewEngine creates an engine. opts may be nil for defaults.
func NewEngine(resolver *Resolver, editor Editor, opts *Options) (*Engine, error) {
	if resolver == nil {
		return nil, ErrNilResolver
	}
	if editor == nil {
		return nil, ErrNilEditor
	}
	opts = opts.withDefaults()

	return &Engine{
		resolver:  resolver,
		editor:    editor,
		formatter: NewFormatter(opts.Now),
		opts:      opts,
	}, nil
}

// Synchronize stamps doc once. It never panics and never retries: failures
// are logged, reported to the Notifier, and returned in the Result.
func (e *Engine) Synchronize(ctx context.Context, doc Document) (res Result) {
	var (
		snap   document.Snapshot
		ext    string
		intent *EditIntent
	)
	defer func() {
		if r := recover(); r != nil {
			res = e.fail(snap.Key, ext, intent, fmt.Errorf("%w: %v", ErrPanic, r))
		}
	}()

	snap = doc.Snapshot()
	ext = Extension(snap.FileName)
	cfg := e.resolver.Resolve()
	intent = Plan(snap, cfg, e.formatter.Format(cfg.TimeOffsetMinutes))
	if intent == nil {
		return Result{Outcome: OutcomeSkipped}
	}
	e.opts.Logger.Printf("%s %s", snap.Key, intent)

	ok, err := e.editor.ApplyEdit(ctx, document.WorkspaceEdit{
		Key:     snap.Key,
		Version: snap.Version,
		Edits:   []document.TextEdit{intent.TextEdit()},
	})
	if err != nil {
		return e.fail(snap.Key, ext, intent, fmt.Errorf("failed to apply edit: %w", err))
	}
	if !ok {
		return e.reject(snap.Key, ext, intent, ErrEditRejected)
	}

	if e.opts.SaveDelay > 0 {
		time.Sleep(e.opts.SaveDelay)
	}
	if err := doc.Save(ctx); err != nil {
		if errors.Is(err, document.ErrStale) {
			return e.reject(snap.Key, ext, intent, err)
		}
		return e.fail(snap.Key, ext, intent, fmt.Errorf("failed to save: %w", err))
	}
	e.opts.Logger.Printf("Saved %s", snap.Key)

	if e.opts.Observer != nil {
		e.opts.Observer.Stamped(snap.Key, *intent)
	}

	outcome := OutcomeReplaced
	if intent.Kind == IntentAppend {
		outcome = OutcomeAppended
	}
	return Result{Outcome: outcome, Intent: intent}
}

// reject reports a document that changed under the edit. It is not retried.
func (e *Engine) reject(key, ext string, intent *EditIntent, err error) Result {
	e.opts.Logger.Printf("Edit rejected for %s: %v", key, err)
	e.opts.Notifier.Error(fmt.Sprintf("File Auto Comment: the .%s file changed before it could be stamped", ext))
	return Result{Outcome: OutcomeRejected, Intent: intent, Err: err}
}

func (e *Engine) fail(key, ext string, intent *EditIntent, err error) Result {
	e.opts.Logger.Printf("Error processing %s: %v", key, err)
	e.opts.Notifier.Error(fmt.Sprintf("File Auto Comment: failed to process .%s file, see the log for details", ext))
	return Result{Outcome: OutcomeFailed, Intent: intent, Err: err}
}

// logNotifier is the Notifier used when none is configured.
type logNotifier struct {
	logger *log.Logger
}

func (n logNotifier) Info(msg string)  { n.logger.Printf("info: %s", msg) }
func (n logNotifier) Error(msg string) { n.logger.Printf("error: %s", msg) }
