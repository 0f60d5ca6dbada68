package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/mediamatch/internal/arr"
	"github.com/Nomadcxx/mediamatch/internal/catalog"
	"github.com/Nomadcxx/mediamatch/internal/config"
)

func newArrCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arr",
		Short: "Query Radarr and Sonarr",
		Long: `Commands for the online search services used to corroborate catalog
matches.

Examples:
  mediamatch arr ping                          # Test both connections
  mediamatch arr search movie "Heat" --year 1995
  mediamatch arr search series "Breaking Bad"`,
	}

	cmd.AddCommand(newArrPingCmd())
	cmd.AddCommand(newArrSearchCmd())

	return cmd
}

func newArrPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test the Radarr and Sonarr connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			out := cmd.OutOrStdout()
			failed := 0
			check := func(name string, c config.ArrConfig, ping func(context.Context) (*arr.SystemStatus, error)) {
				if !c.Enabled {
					fmt.Fprintf(out, "- %s: disabled\n", name)
					return
				}
				status, err := ping(cmd.Context())
				if err != nil {
					failed++
					fmt.Fprintf(out, "✗ %s: %v\n", name, err)
					return
				}
				fmt.Fprintf(out, "✓ %s: %s %s\n", name, status.AppName, status.Version)
			}

			check("Radarr", cfg.Radarr, func(ctx context.Context) (*arr.SystemStatus, error) {
				client, err := arr.NewRadarrClient(arrConfig(cfg.Radarr))
				if err != nil {
					return nil, err
				}
				return client.Ping(ctx)
			})
			check("Sonarr", cfg.Sonarr, func(ctx context.Context) (*arr.SystemStatus, error) {
				client, err := arr.NewSonarrClient(arrConfig(cfg.Sonarr))
				if err != nil {
					return nil, err
				}
				return client.Ping(ctx)
			})

			if failed > 0 {
				return fmt.Errorf("%d connection(s) failed", failed)
			}
			return nil
		},
	}
}

func newArrSearchCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "search <movie|series> <term>...",
		Short: "Search Radarr or Sonarr",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := catalog.ParseKind(args[0])
			if err != nil {
				return err
			}
			term := strings.Join(args[1:], " ")

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			var entries []catalog.Entry
			switch kind {
			case catalog.KindMovie:
				client, cerr := arr.NewRadarrClient(arrConfig(cfg.Radarr))
				if cerr != nil {
					return arrError("radarr", cerr)
				}
				entries, err = client.SearchMovie(cmd.Context(), term, year)
			default:
				client, cerr := arr.NewSonarrClient(arrConfig(cfg.Sonarr))
				if cerr != nil {
					return arrError("sonarr", cerr)
				}
				entries, err = client.SearchSeries(cmd.Context(), term)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No results")
				return nil
			}
			for i := range entries {
				fmt.Fprintln(out, entries[i].String())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "only keep movies from this year")

	return cmd
}

func arrError(name string, err error) error {
	if errors.Is(err, arr.ErrNotConfigured) {
		return fmt.Errorf("%s url and api_key must be set in the config", name)
	}
	return fmt.Errorf("%s: %w", name, err)
}
