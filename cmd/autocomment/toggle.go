package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fileautocomment/autocomment/internal/marker"
	"github.com/fileautocomment/autocomment/internal/ui"
)

func newToggleCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "toggle",
		GroupID: "state",
		Short:   "Switch stamping on or off",
		Long: `Flip the persisted enabled flag. A running 'watch' picks up the change
within a second.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := root.openState()
			if err != nil {
				return err
			}
			defer store.Close()

			enabled, err := store.Toggle(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to toggle: %w", err)
			}
			printEnabled(cmd, enabled)
			return nil
		},
	}
}

// newSetCmd builds 'enable' (on=true) or 'disable'.
func newSetCmd(root *rootOptions, on bool) *cobra.Command {
	use, short := "disable", "Turn stamping off"
	if on {
		use, short = "enable", "Turn stamping on"
	}

	return &cobra.Command{
		Use:     use,
		GroupID: "state",
		Short:   short,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := root.openState()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SetEnabled(cmd.Context(), on); err != nil {
				return fmt.Errorf("failed to %s: %w", use, err)
			}
			printEnabled(cmd, on)
			return nil
		},
	}
}

func printEnabled(cmd *cobra.Command, enabled bool) {
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "File Auto Comment is now %s\n%s\n", state, ui.StatusIndicator(enabled))
}

func newStatusCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "status [dir]",
		GroupID: "state",
		Short:   "Show whether stamping is on and the resolved configuration",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			store, err := root.openState()
			if err != nil {
				return err
			}
			defer store.Close()

			enabled, err := store.Enabled(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read enabled state: %w", err)
			}

			s := root.openSettings(dir)
			cfg := marker.NewResolver(s).Resolve()
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, ui.StatusIndicator(enabled))
			fmt.Fprintf(out, "\n%s %s\n", ui.RenderMuted("Workspace:"), s.Root())
			if file := s.ConfigFile(); file != "" {
				fmt.Fprintf(out, "%s %s\n", ui.RenderMuted("Config:   "), file)
			} else {
				fmt.Fprintf(out, "%s %s\n", ui.RenderMuted("Config:   "), "(none, run 'autocomment config init')")
			}
			if err := s.Err(); err != nil {
				fmt.Fprintf(out, "%s config not reloaded: %v\n", ui.RenderWarn("⚠"), err)
			}
			fmt.Fprintf(out, "%s %s\n", ui.RenderMuted("State:    "), store.Path())
			fmt.Fprintf(out, "%s %q\n", ui.RenderMuted("Marker:   "), cfg.Marker)
			fmt.Fprintf(out, "%s %d minutes\n", ui.RenderMuted("Offset:   "), cfg.TimeOffsetMinutes)

			exts := make([]string, 0, len(cfg.Templates))
			for ext := range cfg.Templates {
				exts = append(exts, ext)
			}
			sort.Strings(exts)
			if len(exts) == 0 {
				fmt.Fprintf(out, "%s none\n", ui.RenderMuted("Templates:"))
				return nil
			}
			fmt.Fprintf(out, "%s %s\n", ui.RenderMuted("Templates:"), strings.Join(exts, ", "))
			return nil
		},
	}
}
