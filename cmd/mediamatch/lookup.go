package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/mediamatch/internal/catalog"
)

func newLookupCmd() *cobra.Command {
	var (
		kindName string
		strict   bool
		maxStart int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "lookup <query>...",
		Short: "Find catalog entries whose name appears in a query",
		Long: `Look a file or folder name up in the reference catalog.

Arguments are joined with spaces into a single query. Matches are ranked by
match length, then similarity, then the longer matched name, then ID.

Examples:
  mediamatch lookup "The.Matrix.1999.1080p.BluRay.mkv"
  mediamatch lookup --kind series --strict "Breaking Bad (2008) S01E01"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := catalog.ParseKind(kindName)
			if err != nil {
				return err
			}
			if maxStart < -1 {
				return fmt.Errorf("--max-start must be -1 or greater")
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("max-start") {
				maxStart = a.cfg.Matching.MaxStartIndex
			}
			if !cmd.Flags().Changed("strict") {
				strict = a.cfg.Matching.Strict
			}

			matches := a.catalog.Lookup(strings.Join(args, " "), catalog.LookupOptions{
				Kind:          kind,
				Strict:        strict,
				MaxStartIndex: maxStart,
			})
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(matches)
			}
			printMatches(cmd, matches)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindName, "kind", "k", "movie", "catalog to search: movie, series, anime")
	cmd.Flags().BoolVar(&strict, "strict", false, "only accept strict name matches")
	cmd.Flags().IntVar(&maxStart, "max-start", 2, "leading tokens allowed before a title (-1 = unbounded)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print matches as JSON")

	return cmd
}

func printMatches(cmd *cobra.Command, matches []catalog.Match) {
	if len(matches) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matches")
		return
	}
	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		year := "-"
		if m.Entry.Year > 0 {
			year = strconv.Itoa(m.Entry.Year)
		}
		rows = append(rows, []string{
			strconv.Itoa(m.Entry.ID),
			m.Entry.Name,
			year,
			m.MatchedName,
			strconv.Itoa(m.Length),
			strconv.FormatBool(m.Strict),
			fmt.Sprintf("%.2f", m.Similarity),
		})
	}
	fmt.Fprint(cmd.OutOrStdout(), renderTable(
		[]string{"ID", "Name", "Year", "Matched", "Length", "Strict", "Similarity"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignRight, alignLeft, alignRight},
	))
}
