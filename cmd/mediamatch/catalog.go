package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Nomadcxx/mediamatch/internal/catalog"
	"github.com/Nomadcxx/mediamatch/internal/logging"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the reference catalog",
		Long: `Commands for the reference catalog of movies, series and anime.

Examples:
  mediamatch catalog import catalog.json   # Store a snapshot in the database
  mediamatch catalog status                # Show the last import and index sizes
  mediamatch catalog show movie 603        # Print one entry`,
	}

	cmd.AddCommand(newCatalogImportCmd())
	cmd.AddCommand(newCatalogStatusCmd())
	cmd.AddCommand(newCatalogShowCmd())

	return cmd
}

func newCatalogImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <snapshot.json>",
		Short: "Replace the stored catalog with a JSON snapshot",
		Long: `Import a catalog snapshot into the database. Existing entries are
replaced; tagged files are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := catalog.ReadSnapshot(afero.NewOsFs(), args[0])
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.db.ImportSnapshot(cmd.Context(), snap)
			if err != nil {
				return fmt.Errorf("failed to import catalog: %w", err)
			}
			a.logger.Info("catalog", "Snapshot imported",
				logging.F("file", args[0]),
				logging.F("movies", rec.Movies),
				logging.F("series", rec.Series),
				logging.F("anime", rec.Anime))

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d movies, %d series, %d anime into %s\n",
				rec.Movies, rec.Series, rec.Anime, a.db.Path())
			if a.cfg.Catalog.Snapshot != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Note: catalog.snapshot is set, lookups read %s instead of the database\n",
					a.cfg.Catalog.Snapshot)
			}
			return nil
		},
	}
}

func newCatalogStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the catalog source and index sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if a.cfg.Catalog.Snapshot != "" {
				fmt.Fprintf(out, "Source:   snapshot %s\n", a.cfg.Catalog.Snapshot)
			} else {
				fmt.Fprintf(out, "Source:   database %s\n", a.db.Path())
				rec, err := a.db.LastImport(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to read import history: %w", err)
				}
				if rec == nil {
					fmt.Fprintln(out, "Imported: never (run 'mediamatch catalog import')")
				} else {
					fmt.Fprintf(out, "Imported: %s (snapshot v%d)\n", rec.ImportedAt.Format("2006-01-02 15:04:05"), rec.SnapshotVersion)
				}
			}

			a.catalog.Preload(cmd.Context())
			rows := make([][]string, 0, len(catalog.Kinds))
			for _, kind := range catalog.Kinds {
				idx := a.catalog.Index(kind)
				rows = append(rows, []string{kind.String(), strconv.Itoa(len(idx.Entries)), strconv.Itoa(idx.Len())})
			}
			fmt.Fprint(out, renderTable([]string{"Kind", "Entries", "Names"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignRight}))
			return nil
		},
	}
}

func newCatalogShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <kind> <id>",
		Short: "Print a catalog entry and its aliases",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			entry, err := findEntry(a.catalog, args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, entry.String())
			for _, alias := range entry.Aliases {
				fmt.Fprintf(out, "  aka %s\n", alias)
			}
			return nil
		},
	}
}

// findEntry resolves a kind name and numeric id against the catalog.
func findEntry(cat *catalog.Catalog, kindName, idArg string) (*catalog.Entry, error) {
	kind, err := catalog.ParseKind(kindName)
	if err != nil {
		return nil, err
	}
	id, err := strconv.Atoi(idArg)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q", idArg)
	}
	for _, e := range cat.Index(kind).Entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, fmt.Errorf("no %s with id %d in catalog", kind, id)
}
