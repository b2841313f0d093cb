package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/fileautocomment/autocomment/internal/marker"
)

func newRenderCmd(root *rootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:     "render <ext>",
		GroupID: "stamp",
		Short:   "Print the marker comment a file with this extension would get",
		Long: `Render the marker comment for an extension using the workspace config,
without touching any file. --at takes a natural-language time such as
"tomorrow 9am" or "in 2 hours"; the configured offset is applied on top.

Examples:
  autocomment render php
  autocomment render .vue --at "next friday 17:00"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext := strings.ToLower(strings.TrimPrefix(args[0], "."))
			cfg := marker.NewResolver(root.openSettings(".")).Resolve()

			now := time.Now
			if at != "" {
				t, err := parseWhen(at, time.Now())
				if err != nil {
					return err
				}
				now = func() time.Time { return t }
			}

			stamp := marker.NewFormatter(now).Format(cfg.TimeOffsetMinutes)
			comment, ok := marker.RenderFor(ext, cfg, stamp)
			if !ok {
				return fmt.Errorf("no template for .%s", ext)
			}
			fmt.Fprintln(cmd.OutOrStdout(), comment)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "render for this time instead of now")
	return cmd
}

// parseWhen parses a natural-language time relative to base.
func parseWhen(text string, base time.Time) (time.Time, error) {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(text, base)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse --at %q: %w", text, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not understand --at %q", text)
	}
	return r.Time, nil
}
