package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fileautocomment/autocomment/internal/onboard"
	"github.com/fileautocomment/autocomment/internal/settings"
	"github.com/fileautocomment/autocomment/internal/ui"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		GroupID: "setup",
		Short:   "Create or inspect the workspace config file",
	}
	cmd.AddCommand(newConfigInitCmd(root), newConfigShowCmd(root))
	return cmd
}

func newConfigInitCmd(root *rootOptions) *cobra.Command {
	var (
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter .autocomment config",
		Long: `Write a starter config with the default marker and templates for common
languages to <dir>/.autocomment.<format>.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path := filepath.Join(root.abs(dir), settings.ConfigName+"."+format)

			if err := settings.WriteDefault(path, force); err != nil {
				if errors.Is(err, settings.ErrExists) {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", ui.RenderPass("✓"), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "file format: yaml or toml")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show [dir]",
		Short: "Print the resolved configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return root.openSettings(dir).Dump(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or toml")
	return cmd
}

func newReadmeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "readme",
		GroupID: "setup",
		Short:   "Show what File Auto Comment does and how to configure it",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), onboard.Readme)
		},
	}
}
