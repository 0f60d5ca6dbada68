package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Nomadcxx/mediamatch/internal/grouping"
	"github.com/Nomadcxx/mediamatch/internal/logging"
	"github.com/Nomadcxx/mediamatch/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var (
		serve  bool
		noTag  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "watch [directory...]",
		Short: "Classify new files as they appear",
		Long: `Watch directories and classify media files once they stop changing.

Directories default to watch.directories from the config. Unambiguous
results with a catalog match are tagged in the database unless --no-tag is
given.

Examples:
  mediamatch watch /downloads/complete
  mediamatch watch --serve          # Also run the API server`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			dirs := args
			if len(dirs) == 0 {
				dirs = a.cfg.Watch.Directories
			}
			if len(dirs) == 0 {
				return fmt.Errorf("no watch directories configured")
			}

			grouper, err := a.grouper()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			hcfg := watcher.HandlerConfig{
				Classifier: grouper,
				Debounce:   a.cfg.Watch.Debounce,
				Logger:     a.logger,
				OnResult: func(path string, grp grouping.Group, err error) {
					if err != nil {
						return
					}
					if asJSON {
						fmt.Fprintln(out, mustJSON(grp))
						return
					}
					fmt.Fprintf(out, "%s\t%s\n", groupMatch(grp), filepath.Base(path))
				},
			}
			if !noTag {
				hcfg.Tagger = a.db
			}
			handler := watcher.NewClassifyHandler(hcfg)
			defer handler.Shutdown()

			w, err := watcher.NewWatcher(handler, watcher.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer w.Close()

			if err := w.Watch(dirs); err != nil {
				return fmt.Errorf("unable to watch directories: %w", err)
			}

			a.logger.Info("watch", "Watching for new media",
				logging.F("dirs", len(dirs)),
				logging.F("debounce", a.cfg.Watch.Debounce.String()),
				logging.F("tagging", !noTag))

			var srv *http.Server
			if serve {
				if srv, err = a.httpServer(); err != nil {
					return err
				}
			}

			eg, ctx := errgroup.WithContext(cmd.Context())
			eg.Go(func() error {
				return w.Start(ctx)
			})
			if srv != nil {
				eg.Go(func() error {
					return runHTTPServer(ctx, srv, a.logger)
				})
			}
			err = eg.Wait()

			stats := handler.Stats()
			a.logger.Info("watch", "Watcher stopped",
				logging.F("classified", stats.Classified),
				logging.F("ambiguous", stats.Ambiguous),
				logging.F("unclassified", stats.Unclassified),
				logging.F("errors", stats.Errors))
			return err
		},
	}

	cmd.Flags().BoolVar(&serve, "serve", false, "also run the API server")
	cmd.Flags().BoolVar(&noTag, "no-tag", false, "do not tag classified files")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print each result as a JSON line")

	return cmd
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(b)
}
