package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/mediamatch/internal/logging"
)

func newTagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tag <path> <kind> <id>",
		Short: "Record the catalog entry a file belongs to",
		Long: `Tag a file with a catalog entry. Tagged files skip all heuristics and
are classified as the tagged kind.

Examples:
  mediamatch tag /downloads/Untitled.mkv movie 603
  mediamatch tag "/downloads/Show 01.mkv" series 81189`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			entry, err := findEntry(a.catalog, args[1], args[2])
			if err != nil {
				return err
			}
			if err := a.db.Tag(cmd.Context(), path, *entry); err != nil {
				return fmt.Errorf("failed to tag file: %w", err)
			}
			a.logger.Debug("tag", "File tagged", logging.F("path", path), logging.F("entry", entry.String()))
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Tagged %s as %s\n", path, entry)
			return nil
		},
	}
}

func newUntagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "untag <path>",
		Short: "Remove a file's tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.db.Untag(cmd.Context(), path); err != nil {
				return fmt.Errorf("failed to untag file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Untagged %s\n", path)
			return nil
		},
	}
}
