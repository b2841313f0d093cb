// Package daemon watches a directory tree and turns file writes into save
// events for the marker hook.
//
// # Architecture
//
//   - FileWatcher: recursive fsnotify watch of a root, skipping VCS metadata
//     and other ignored directories, adding new directories as they appear
//   - Daemon: debounces write events per path, opens each settled path in a
//     document.Workspace and delivers it to a marker.Hook as a manual save
//
// A write that lands on disk is the user's save. The daemon's own stamp is
// saved back to the same file, which raises another write event; the hook's
// guard and the workspace's saved-content tracking both drop that echo.
//
// # Usage
//
//	ws := document.NewWorkspace()
//	engine, _ := marker.NewEngine(marker.NewResolver(store), ws, nil)
//	hook := marker.NewHook(engine, nil, state)
//
//	d, err := daemon.New(root, ws, hook, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := d.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Status
//
// When Config.Switch and Config.Status are both set, the daemon polls the
// enabled flag every StatusInterval and reports changes to the sink. The
// current value is reported once at startup.
package daemon
