// Package marker stamps a single marker comment into a document on save.
//
// A marker comment is one line rendered from a per-extension template that
// carries an identity token (the marker) and a timestamp. On every qualifying
// save the line holding the marker is replaced in place; when no line holds
// it, the rendered comment is appended at the end of the document.
//
// # Components
//
//   - Resolver: reads marker, time offset and templates from Settings, fresh
//     for every attempt, defaulting each value independently.
//   - Formatter: "YYYY-MM-DD HH:mm:ss" in local time, shifted by the offset.
//   - Render / Locate / Plan: pure functions from a document snapshot and a
//     configuration to a single EditIntent (or none).
//   - Engine: applies the intent through an Editor, waits SaveDelay, then
//     saves the document. Failures are logged and reported to a Notifier and
//     never returned to the caller's dispatch loop.
//   - Guard: the set of document keys in flight. The engine's own save raises
//     another save notification for the same document; the guard keeps the key
//     claimed for ReleaseDelay after the attempt so that echo is dropped.
//   - Hook: the save-intent entry point. It runs the engine only when the
//     feature is enabled, the save was manual and the document is dirty.
//
// # Example
//
//	guard := marker.NewGuard()
//	engine, err := marker.NewEngine(marker.NewResolver(settings), workspace, nil)
//	if err != nil {
//	    return err
//	}
//	hook := marker.NewHook(engine, guard, store)
//
//	res := hook.OnWillSave(ctx, marker.SaveEvent{Document: buf, Reason: marker.SaveManual})
//	log.Printf("%s: %s", buf.Key(), res.Outcome)
//
// # Known limitations
//
// Only the first occurrence of {marker} and {time} in a template is
// substituted. An empty marker disables stamping entirely, since no line could
// ever be located and every save would append another comment.
package marker
