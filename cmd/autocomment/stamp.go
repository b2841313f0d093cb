package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fileautocomment/autocomment/internal/marker"
	"github.com/fileautocomment/autocomment/internal/ui"
)

func newStampCmd(root *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "stamp <file>...",
		GroupID: "stamp",
		Short:   "Stamp files once, as if each had just been saved",
		Long: `Stamp each file as if it had been saved from an editor.

The same rules as 'watch' apply: nothing happens while stamping is disabled
unless --force is given, and files whose extension has no template are left
untouched.

Examples:
  autocomment stamp index.php
  autocomment stamp --force src/*.js`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := make([]string, len(args))
			for i, arg := range args {
				paths[i] = root.abs(arg)
			}

			var toggle marker.Switch = marker.AlwaysOn
			if !force {
				store, err := root.openState()
				if err != nil {
					return err
				}
				defer store.Close()
				toggle = store
			}

			engineOpts := marker.DefaultOptions()
			engineOpts.ReleaseDelay = 0
			engineOpts.Logger = root.logger("[marker] ", false, cmd.ErrOrStderr())
			engineOpts.Notifier = cliNotifier{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()}

			sess, err := newSession(root.openSettings(filepath.Dir(paths[0])), toggle, engineOpts)
			if err != nil {
				return err
			}
			return stampFiles(cmd.Context(), sess, paths, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "stamp even when stamping is disabled")
	return cmd
}

// stampFiles runs each path through the save hook and reports the outcome.
// It returns an error if any file could not be stamped.
func stampFiles(ctx context.Context, sess *session, paths []string, out io.Writer) error {
	failed := 0
	for _, path := range paths {
		buf, err := sess.workspace.Open(path)
		if err != nil {
			fmt.Fprintf(out, "%s %s: %v\n", ui.RenderFail("✗"), path, err)
			failed++
			continue
		}

		res := sess.hook.OnWillSave(ctx, marker.SaveEvent{Document: buf, Reason: marker.SaveManual})
		sess.workspace.Close(buf.Key())

		switch res.Outcome {
		case marker.OutcomeAppended, marker.OutcomeReplaced:
			fmt.Fprintf(out, "%s %s %s (line %d)\n", ui.RenderPass("✓"), res.Outcome, path, res.Intent.Line+1)
		case marker.OutcomeDisabled:
			if res.Err != nil {
				return res.Err
			}
			fmt.Fprintf(out, "%s stamping is disabled; run 'autocomment enable' or pass --force\n", ui.RenderWarn("⚠"))
			return nil
		case marker.OutcomeSkipped:
			fmt.Fprintf(out, "%s skipped %s (no template for .%s)\n",
				ui.RenderMuted("-"), path, marker.Extension(path))
		case marker.OutcomeFailed, marker.OutcomeRejected:
			failed++
		default:
			fmt.Fprintf(out, "%s %s %s\n", ui.RenderMuted("-"), res.Outcome, path)
		}
	}
	sess.hook.Guard().Wait()

	if failed > 0 {
		return fmt.Errorf("%d of %d files not stamped", failed, len(paths))
	}
	return nil
}
