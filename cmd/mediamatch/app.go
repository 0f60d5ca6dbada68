package main

import (
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/Nomadcxx/mediamatch/internal/arr"
	"github.com/Nomadcxx/mediamatch/internal/catalog"
	"github.com/Nomadcxx/mediamatch/internal/collation"
	"github.com/Nomadcxx/mediamatch/internal/config"
	"github.com/Nomadcxx/mediamatch/internal/database"
	"github.com/Nomadcxx/mediamatch/internal/grouping"
	"github.com/Nomadcxx/mediamatch/internal/logging"
	"github.com/Nomadcxx/mediamatch/internal/probe"
)

// app bundles what most commands need: config, logger, the tag/catalog
// database and the catalog built on top of it.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	db      *database.DB
	catalog *catalog.Catalog
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFrom(cfgFile)
	}
	return config.Load()
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("unable to create logger: %w", err)
	}

	collator, err := newCollator(cfg.Catalog.Locale)
	if err != nil {
		logger.Close()
		return nil, err
	}

	db, err := database.OpenPath(cfg.DatabasePath())
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var provider catalog.Provider = db
	if cfg.Catalog.Snapshot != "" {
		provider = catalog.NewFileProvider(cfg.Catalog.Snapshot)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		catalog: catalog.New(provider, catalog.WithLogger(logger), catalog.WithCollator(collator)),
	}, nil
}

func (a *app) Close() error {
	err := a.db.Close()
	a.logger.Close()
	return err
}

func newCollator(locale string) (*collation.Collator, error) {
	if locale == "" {
		return collation.Default(), nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog locale %q: %w", locale, err)
	}
	return collation.New(tag), nil
}

// grouper builds a Grouper with the optional probe and Radarr searcher the
// config enables.
func (a *app) grouper() (*grouping.Grouper, error) {
	opts := []grouping.Option{
		grouping.WithLogger(a.logger),
		grouping.WithMetadataStore(a.db),
		grouping.WithMaxStartIndex(a.cfg.Matching.MaxStartIndex),
		grouping.WithStrictLookups(a.cfg.Matching.Strict),
	}
	if a.cfg.Grouping.MinProbeSizeMB > 0 {
		opts = append(opts, grouping.WithMinProbeSize(int64(a.cfg.Grouping.MinProbeSizeMB)<<20))
	}

	if a.cfg.Probe.Enabled {
		opts = append(opts, grouping.WithProbe(probe.New(a.cfg.Probe.Binary, a.cfg.Probe.Timeout)))
		a.logger.Debug("app", "Media probe enabled", logging.F("binary", a.cfg.Probe.Binary))
	}

	if a.cfg.Radarr.Enabled {
		client, err := arr.NewRadarrClient(arrConfig(a.cfg.Radarr))
		if err != nil {
			return nil, fmt.Errorf("radarr: %w", err)
		}
		opts = append(opts, grouping.WithSearcher(client))
		a.logger.Info("app", "Radarr search enabled", logging.F("url", a.cfg.Radarr.URL))
	}

	return grouping.New(a.catalog, opts...), nil
}

func arrConfig(c config.ArrConfig) arr.Config {
	return arr.Config{URL: c.URL, APIKey: c.APIKey, Timeout: c.Timeout}
}

// batchPool returns an errgroup limited to workers, or nil for sequential
// classification.
func batchPool(workers int) grouping.Pool {
	if workers <= 1 {
		return nil
	}
	eg := new(errgroup.Group)
	eg.SetLimit(workers)
	return eg
}
