package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fileautocomment/autocomment/internal/document"
	"github.com/fileautocomment/autocomment/internal/marker"
	"github.com/fileautocomment/autocomment/internal/settings"
	"github.com/fileautocomment/autocomment/internal/state"
	"github.com/fileautocomment/autocomment/internal/ui"
)

// rootOptions holds the persistent flags and per-run resources.
type rootOptions struct {
	configFile string
	statePath  string
	logFile    string
	verbose    bool
	noColor    bool

	// workDir resolves relative paths; the process working directory if empty.
	workDir string

	logSink io.WriteCloser
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "autocomment",
		Short: "Stamp a marker comment with the save time into files",
		Long: `autocomment keeps a one-line marker comment in your files up to date.

On every deliberate save, the first line containing the marker is replaced
with a comment rendered from the template for the file's extension. Files
without a marker line get the comment appended at the end.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				ui.DisableColor()
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.close()
		},
	}

	root.AddGroup(
		&cobra.Group{ID: "stamp", Title: "Stamping:"},
		&cobra.Group{ID: "state", Title: "Enable and status:"},
		&cobra.Group{ID: "setup", Title: "Setup:"},
	)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default: .autocomment.* in the workspace root)")
	flags.StringVar(&opts.statePath, "state", "", "state database (default: user config dir)")
	flags.StringVar(&opts.logFile, "log-file", "", "also write logs to this file, rotated by size")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log activity to stderr")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newWatchCmd(opts),
		newStampCmd(opts),
		newRenderCmd(opts),
		newToggleCmd(opts),
		newSetCmd(opts, true),
		newSetCmd(opts, false),
		newStatusCmd(opts),
		newConfigCmd(opts),
		newReadmeCmd(opts),
	)
	return root
}

// abs resolves path against the working directory.
func (o *rootOptions) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	dir := o.workDir
	if dir == "" {
		dir, _ = os.Getwd()
	}
	return filepath.Join(dir, path)
}

// logger returns a logger with prefix. Logs go to stderr when verbose or
// always is set, and to the rotating log file when one is configured.
func (o *rootOptions) logger(prefix string, always bool, stderr io.Writer) *log.Logger {
	var writers []io.Writer
	if o.verbose || always {
		writers = append(writers, stderr)
	}
	if o.logFile != "" {
		if o.logSink == nil {
			o.logSink = &lumberjack.Logger{
				Filename:   o.abs(o.logFile),
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
			}
		}
		writers = append(writers, o.logSink)
	}
	if len(writers) == 0 {
		return log.New(io.Discard, prefix, log.LstdFlags)
	}
	return log.New(io.MultiWriter(writers...), prefix, log.LstdFlags)
}

func (o *rootOptions) close() {
	if o.logSink != nil {
		_ = o.logSink.Close()
		o.logSink = nil
	}
}

// openState opens the state database from --state or the default location.
func (o *rootOptions) openState() (*state.Store, error) {
	path := o.statePath
	if path == "" {
		var err error
		if path, err = state.DefaultPath(); err != nil {
			return nil, err
		}
	} else {
		path = o.abs(path)
	}
	return state.Open(path)
}

// openSettings returns the settings store for the workspace containing dir.
func (o *rootOptions) openSettings(dir string) *settings.Store {
	dir = o.abs(dir)
	root, err := settings.FindRoot(dir)
	if err != nil {
		root = dir
	}
	file := o.configFile
	if file != "" {
		file = o.abs(file)
	}
	return settings.New(root, file)
}

// session is the engine stack shared by watch and stamp.
type session struct {
	settings  *settings.Store
	workspace *document.Workspace
	engine    *marker.Engine
	hook      *marker.Hook
}

// newSession wires settings, workspace, engine and hook for dir.
func newSession(s *settings.Store, toggle marker.Switch, engineOpts *marker.Options) (*session, error) {
	ws := document.NewWorkspace()
	engine, err := marker.NewEngine(marker.NewResolver(s), ws, engineOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return &session{
		settings:  s,
		workspace: ws,
		engine:    engine,
		hook:      marker.NewHook(engine, nil, toggle),
	}, nil
}

// cliNotifier prints user-facing messages.
type cliNotifier struct {
	out, err io.Writer
}

func (n cliNotifier) Info(msg string) {
	fmt.Fprintf(n.out, "%s %s\n", ui.RenderAccent("ℹ"), msg)
}

func (n cliNotifier) Error(msg string) {
	fmt.Fprintf(n.err, "%s %s\n", ui.RenderFail("✗"), msg)
}
