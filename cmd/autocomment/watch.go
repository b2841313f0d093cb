package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fileautocomment/autocomment/internal/daemon"
	"github.com/fileautocomment/autocomment/internal/dashboard"
	"github.com/fileautocomment/autocomment/internal/marker"
	"github.com/fileautocomment/autocomment/internal/onboard"
	"github.com/fileautocomment/autocomment/internal/ui"
)

type watchOptions struct {
	dashboardPort int
	dashboardHost string
	debounce      time.Duration
	ignore        []string
	noReadme      bool
}

func newWatchCmd(root *rootOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:     "watch [dir]",
		GroupID: "stamp",
		Short:   "Watch a workspace and stamp files as they are saved",
		Long: `Watch a workspace directory and stamp each file when it is saved.

A write to a file counts as a manual save. The file is stamped only when
stamping is enabled, its extension has a template, and its content differs
from what autocomment last saved. The stamper's own write is ignored.

Examples:
  autocomment watch
  autocomment watch ./src --dashboard-port 7777
  autocomment watch --ignore dist --ignore build`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runWatch(cmd, root, opts, dir)
		},
	}

	cmd.Flags().IntVar(&opts.dashboardPort, "dashboard-port", 0, "serve the status dashboard on this port (0 = off)")
	cmd.Flags().StringVar(&opts.dashboardHost, "dashboard-host", "127.0.0.1", "dashboard bind address")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 200*time.Millisecond, "quiet period before a write counts as a save")
	cmd.Flags().StringSliceVar(&opts.ignore, "ignore", nil, "additional directory names to skip")
	cmd.Flags().BoolVar(&opts.noReadme, "no-readme", false, "skip the release notes check")
	return cmd
}

func runWatch(cmd *cobra.Command, root *rootOptions, opts *watchOptions, dir string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := root.openState()
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if !opts.noReadme {
		checker := &onboard.Checker{
			Store:       store,
			Version:     Version,
			Prompter:    onboard.HuhPrompter{},
			Interactive: onboard.IsInteractive(),
			Out:         out,
		}
		if _, err := checker.Run(ctx); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", ui.RenderWarn("⚠"), err)
		}
	}

	var (
		server      *dashboard.Server
		broadcaster dashboard.Broadcaster
		handler     *dashboard.Handler
	)
	if opts.dashboardPort > 0 {
		server = dashboard.NewServer(&dashboard.Config{
			Host:   opts.dashboardHost,
			Port:   opts.dashboardPort,
			Status: func() dashboard.StatusData { return handler.CurrentStatus() },
			Logger: root.logger("[dashboard] ", false, cmd.ErrOrStderr()),
		})
		broadcaster = server
	}
	handler = dashboard.NewHandler(broadcaster, root.logger("", true, cmd.ErrOrStderr()))

	settingsStore := root.openSettings(dir)
	engineOpts := marker.DefaultOptions()
	engineOpts.Logger = root.logger("[marker] ", false, cmd.ErrOrStderr())
	engineOpts.Notifier = handler
	engineOpts.Observer = handler

	sess, err := newSession(settingsStore, store, engineOpts)
	if err != nil {
		return err
	}
	resolver := marker.NewResolver(settingsStore)

	config := daemon.DefaultConfig()
	config.DebounceInterval = opts.debounce
	config.Ignore = append(append([]string{}, daemon.DefaultIgnore...), opts.ignore...)
	config.Filter = func(path string) bool {
		_, ok := resolver.Resolve().Template(marker.Extension(path))
		return ok
	}
	config.Switch = store
	config.Status = handler
	config.Logger = root.logger("[daemon] ", false, cmd.ErrOrStderr())

	d, err := daemon.New(root.abs(dir), sess.workspace, sess.hook, config)
	if err != nil {
		return err
	}

	if server != nil {
		if err := server.Start(); err != nil {
			return fmt.Errorf("failed to start dashboard: %w", err)
		}
		defer server.Stop()
		fmt.Fprintf(out, "Dashboard at %s\n", ui.RenderAccent("http://"+server.GetAddr()))
	}

	fmt.Fprintf(out, "Watching %s (%s)\n", settingsStore.Root(), ui.RenderMuted("Ctrl+C to stop"))

	if err := d.Start(ctx); err != nil {
		return err
	}
	stats := d.Stats()
	fmt.Fprintf(out, "\nStopped after %d saves (%d stamped)\n",
		stats.Delivered, stats.Outcomes[marker.OutcomeAppended]+stats.Outcomes[marker.OutcomeReplaced])
	return nil
}
