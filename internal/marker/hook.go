package marker

import (
	"context"
)

// SaveReason says why a document is being saved.
type SaveReason int

const (
	// SaveManual is an explicit save by the user.
	SaveManual SaveReason = iota
	// SaveAfterDelay is an automatic save after an idle timeout.
	SaveAfterDelay
	// SaveFocusOut is an automatic save when the editor loses focus.
	SaveFocusOut
)

// String returns the reason name.
func (r SaveReason) String() string {
	switch r {
	case SaveManual:
		return "manual"
	case SaveAfterDelay:
		return "after-delay"
	case SaveFocusOut:
		return "focus-out"
	default:
		return "unknown"
	}
}

// SaveEvent is a save-intent notification for one document.
type SaveEvent struct {
	Document Document
	Reason   SaveReason
}

// Switch reports whether stamping is enabled.
type Switch interface {
	Enabled(ctx context.Context) (bool, error)
}

// SwitchFunc adapts a function to Switch.
type SwitchFunc func(ctx context.Context) (bool, error)

// Enabled calls f.
func (f SwitchFunc) Enabled(ctx context.Context) (bool, error) {
	return f(ctx)
}

// AlwaysOn is a Switch that is always enabled.
var AlwaysOn Switch = SwitchFunc(func(context.Context) (bool, error) { return true, nil })

// Hook is the save-intent entry point.
type Hook struct {
	engine *Engine
	guard  *Guard
	toggle Switch
}

// NewHook wires an engine to a guard. A nil toggle means always enabled; a nil
// guard gets a fresh one.
func NewHook(engine *Engine, guard *Guard, toggle Switch) *Hook {
	if guard == nil {
		guard = NewGuard()
	}
	if toggle == nil {
		toggle = AlwaysOn
	}
	return &Hook{engine: engine, guard: guard, toggle: toggle}
}

// Guard returns the guard used by the hook.
func (h *Hook) Guard() *Guard {
	return h.guard
}

// OnWillSave handles one save notification. The engine runs only if stamping
// is enabled, the save was manual, the document is dirty, and no other attempt
// holds the document. The document stays claimed for ReleaseDelay after the
// attempt ends, whatever its outcome.
func (h *Hook) OnWillSave(ctx context.Context, ev SaveEvent) Result {
	logger := h.engine.opts.Logger

	enabled, err := h.toggle.Enabled(ctx)
	if err != nil {
		logger.Printf("Failed to read enabled state: %v", err)
		return Result{Outcome: OutcomeDisabled, Err: err}
	}
	if !enabled {
		return Result{Outcome: OutcomeDisabled}
	}
	if ev.Reason != SaveManual || !ev.Document.IsDirty() {
		return Result{Outcome: OutcomeFiltered}
	}

	key := ev.Document.Snapshot().Key
	if !h.guard.TryEnter(key) {
		logger.Printf("Skipping %s: already in flight", key)
		return Result{Outcome: OutcomeInFlight}
	}
	defer func() {
		h.guard.LeaveAfter(key, h.engine.opts.ReleaseDelay)
	}()

	return h.engine.Synchronize(ctx, ev.Document)
}
