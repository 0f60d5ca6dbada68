package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/mediamatch/internal/naming"
)

func newNormalizeCmd() *cobra.Command {
	var (
		strict  bool
		episode bool
	)

	cmd := &cobra.Command{
		Use:   "normalize <name>...",
		Short: "Strip release clutter from file names",
		Long: `Print the normalized form of each name, one per line.

Without --strict, bracketed content, checksums and release tags are removed.
With --strict, only the extension and separators are cleaned up.

Examples:
  mediamatch normalize "The.Matrix.1999.1080p.BluRay.x264-GROUP.mkv"
  mediamatch normalize --episode "[SubsPlease] Frieren - 05 (1080p).mkv"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range args {
				normalized := naming.NormalizeRelease(name, strict)
				if !episode {
					fmt.Fprintln(out, normalized)
					continue
				}
				ep, ok := naming.ParseEpisode(normalized, false)
				switch {
				case !ok:
					fmt.Fprintf(out, "%s\t-\n", normalized)
				case ep.AirDate != "":
					fmt.Fprintf(out, "%s\t%s\n", normalized, ep.AirDate)
				default:
					fmt.Fprintf(out, "%s\tS%02dE%02d\n", naming.SeriesName(normalized), ep.Season, ep.Episode)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "keep bracketed content and release tags")
	cmd.Flags().BoolVar(&episode, "episode", false, "also print the parsed episode marker")

	return cmd
}
