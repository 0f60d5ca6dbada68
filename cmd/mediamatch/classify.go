package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Nomadcxx/mediamatch/internal/grouping"
	"github.com/Nomadcxx/mediamatch/internal/logging"
	"github.com/Nomadcxx/mediamatch/internal/naming"
)

type classifyOutput struct {
	Groups       []grouping.Group `json:"groups"`
	Failed       []failureOutput  `json:"failed"`
	Unclassified []string         `json:"unclassified"`
}

type failureOutput struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

func newClassifyCmd() *cobra.Command {
	var (
		workers int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "classify <path>...",
		Short: "Group media files by content type",
		Long: `Classify files as movie, series, anime or music.

Directories are walked for video and audio files. Files that look like
both a movie and a series are listed under both types.

Examples:
  mediamatch classify /downloads/complete
  mediamatch classify --workers 8 --json /downloads/*.mkv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			paths, err := collectPaths(afero.NewOsFs(), args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no media files found")
			}

			grouper, err := a.grouper()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Grouping.Workers
			}

			a.logger.Info("classify", "Classifying files",
				logging.F("files", len(paths)),
				logging.F("workers", workers))
			res := grouper.ClassifyBatch(cmd.Context(), paths, batchPool(workers))

			if asJSON {
				return printClassifyJSON(cmd, res)
			}
			printClassifyTable(cmd, res)
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "parallel classification workers (1 = sequential)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print groups as JSON")

	return cmd
}

// collectPaths makes args absolute, so they agree with tagged paths, and
// expands directories into the media files below them. Files given
// explicitly are kept even when their extension is unknown.
func collectPaths(fs afero.Fs, args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		arg, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		info, err := fs.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		var found []string
		err = afero.Walk(fs, arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if path != arg && strings.HasPrefix(info.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if naming.IsVideo(path) || naming.IsAudio(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}

func printClassifyJSON(cmd *cobra.Command, res grouping.Result) error {
	out := classifyOutput{
		Groups:       res.Groups,
		Failed:       make([]failureOutput, len(res.Failed)),
		Unclassified: res.Unclassified(),
	}
	if out.Groups == nil {
		out.Groups = []grouping.Group{}
	}
	for i, f := range res.Failed {
		out.Failed[i] = failureOutput{Path: f.Path, Error: f.Err.Error()}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printClassifyTable(cmd *cobra.Command, res grouping.Result) {
	var rows [][]string
	for _, grp := range res.Groups {
		types := grp.Types()
		if len(types) == 0 {
			continue
		}
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = t.String()
		}
		rows = append(rows, []string{strings.Join(names, "|"), groupMatch(grp), grp.Path})
	}
	if len(rows) > 0 {
		fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Type", "Match", "File"}, rows, nil))
	}

	errOut := cmd.ErrOrStderr()
	for _, f := range res.Failed {
		fmt.Fprintf(errOut, "✗ %s: %v\n", f.Path, f.Err)
	}
	if unclassified := res.Unclassified(); len(unclassified) > 0 {
		fmt.Fprintf(errOut, "%d file(s) could not be classified\n", len(unclassified))
	}
}

// groupMatch returns the first candidate or value name of grp.
func groupMatch(grp grouping.Group) string {
	for _, t := range grp.Types() {
		v, _ := grp.Get(t)
		if len(v.Candidates) > 0 {
			return v.Candidates[0].String()
		}
		if v.Name != "" {
			return v.Name
		}
	}
	return "-"
}
