package grouping

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/Nomadcxx/mediamatch/internal/catalog"
	"github.com/Nomadcxx/mediamatch/internal/classify"
	"github.com/Nomadcxx/mediamatch/internal/logging"
	"github.com/Nomadcxx/mediamatch/internal/naming"
	"github.com/Nomadcxx/mediamatch/internal/probe"
)

// DefaultMinProbeSize is the smallest video file worth probing.
const DefaultMinProbeSize = 50 << 20

// maxAnimeEpisode is the longest runtime the probe heuristic treats as an
// anime episode.
const maxAnimeEpisode = 30 * time.Minute

var (
	movieFolderRegex   = regexp.MustCompile(`(?i)^(movies?|films?|cinema)$`)
	seriesFolderRegex  = regexp.MustCompile(`(?i)^(tv shows?|tv series|series|season \d+)$`)
	seasonFolderRegex  = regexp.MustCompile(`(?i)^(season \d+|specials)$`)
	animeFolderRegex   = regexp.MustCompile(`(?i)^animes?$`)
	animeSubgroupRegex = regexp.MustCompile(`^\[[^\]]+\]\s*.+?\s-\s\d{1,4}`)
)

// MetadataStore returns a previously tagged catalog entry for a file, or
// nil when the file was never tagged.
type MetadataStore interface {
	Lookup(ctx context.Context, path string) (*catalog.Entry, error)
}

// Probe reads media characteristics of a video file.
type Probe interface {
	Probe(ctx context.Context, path string) (probe.Info, error)
}

// Grouper classifies files against a catalog.
type Grouper struct {
	catalog      *catalog.Catalog
	metadata     MetadataStore
	probe        Probe
	searcher     classify.MovieSearcher
	fs           afero.Fs
	logger       *logging.Logger
	minProbeSize int64
	maxStart     int
	strict       bool
}

// Option configures a Grouper.
type Option func(*Grouper)

// WithMetadataStore makes tagged metadata authoritative.
func WithMetadataStore(store MetadataStore) Option {
	return func(g *Grouper) { g.metadata = store }
}

// WithProbe enables the probe based anime heuristic.
func WithProbe(p Probe) Option {
	return func(g *Grouper) { g.probe = p }
}

// WithSearcher enables the online exactMovieMatch rule.
func WithSearcher(s classify.MovieSearcher) Option {
	return func(g *Grouper) { g.searcher = s }
}

// WithFs sets the filesystem used for sibling listings and file sizes.
func WithFs(fs afero.Fs) Option {
	return func(g *Grouper) { g.fs = fs }
}

func WithLogger(logger *logging.Logger) Option {
	return func(g *Grouper) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMinProbeSize sets the size, in bytes, a video must exceed before it
// is probed.
func WithMinProbeSize(size int64) Option {
	return func(g *Grouper) { g.minProbeSize = size }
}

// WithMaxStartIndex bounds how many leading tokens a file name may carry
// before a catalog title; collation.Unbounded lifts the limit.
func WithMaxStartIndex(n int) Option {
	return func(g *Grouper) { g.maxStart = n }
}

// WithStrictLookups restricts every catalog lookup to strict name matches.
func WithStrictLookups(strict bool) Option {
	return func(g *Grouper) { g.strict = strict }
}

// New returns a Grouper backed by cat.
func New(cat *catalog.Catalog, opts ...Option) *Grouper {
	g := &Grouper{
		catalog:      cat,
		fs:           afero.NewOsFs(),
		logger:       logging.Nop(),
		minProbeSize: DefaultMinProbeSize,
		maxStart:     catalog.DefaultMaxStartIndex,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Classify classifies a single file. Siblings are listed from the file's
// folder.
func (g *Grouper) Classify(ctx context.Context, path string) (Group, error) {
	siblings := g.siblings([]string{path})
	return g.classify(ctx, path, siblings[filepath.Dir(path)])
}

func (g *Grouper) classify(ctx context.Context, path string, siblings []string) (Group, error) {
	grp := NewGroup(path)
	if err := ctx.Err(); err != nil {
		return grp, err
	}

	if g.metadata != nil {
		entry, err := g.metadata.Lookup(ctx, path)
		if err != nil {
			return grp, fmt.Errorf("tagged metadata lookup: %w", err)
		}
		if entry != nil {
			return grp.Decide(kindType(entry.Kind), Value{Candidates: []*catalog.Entry{entry}, Name: entry.Name}), nil
		}
	}

	if naming.IsAudio(path) && !naming.IsVideo(path) {
		return grp.Decide(Music, Value{Name: filepath.Dir(path)}), nil
	}

	name := naming.BaseName(path)
	folders := ancestors(path)

	if anyFolder(folders, movieFolderRegex) {
		return grp.Decide(Movie, Value{Candidates: catalog.Entries(g.lookup(catalog.KindMovie, name, false))}), nil
	}
	if naming.ExtractYear(naming.NormalizeRelease(name, false)) != 0 {
		if matches := g.lookup(catalog.KindMovie, name, true); len(matches) > 0 {
			return grp.Decide(Movie, Value{Candidates: catalog.Entries(matches)}), nil
		}
	}

	if _, ok := naming.ParseEpisode(naming.NormalizeRelease(name, false), true); ok || anyFolder(folders, seriesFolderRegex) {
		return grp.Decide(Series, Value{Name: g.seriesName(name, folders)}), nil
	}

	anime, err := g.isAnime(ctx, path, name, folders)
	if err != nil {
		return grp, err
	}
	if anime {
		return grp.Decide(Anime, Value{Candidates: catalog.Entries(g.lookup(catalog.KindAnime, name, false))}), nil
	}

	return g.disambiguate(ctx, grp.Without(Music).Without(Anime), name, siblings)
}

func (g *Grouper) lookupOptions(kind catalog.Kind, strict bool) catalog.LookupOptions {
	return catalog.LookupOptions{Kind: kind, Strict: strict || g.strict, MaxStartIndex: g.maxStart}
}

func (g *Grouper) lookup(kind catalog.Kind, name string, strict bool) []catalog.Match {
	return g.catalog.Lookup(name, g.lookupOptions(kind, strict))
}

// disambiguate is the expensive path: independent movie and series
// detection, with the rule engine breaking ties.
func (g *Grouper) disambiguate(ctx context.Context, grp Group, name string, siblings []string) (Group, error) {
	movies := g.lookup(catalog.KindMovie, name, false)
	series := naming.SeriesName(name)
	if series == "" {
		if names := g.catalog.SeriesNames(name, g.lookupOptions(catalog.KindSeries, false)); len(names) > 0 {
			series = names[0]
		}
	}

	movieValue := Value{Candidates: catalog.Entries(movies)}
	seriesValue := Value{Name: series}
	switch {
	case len(movies) == 0 && series == "":
		return grp, nil
	case series == "":
		return grp.Decide(Movie, movieValue), nil
	case len(movies) == 0:
		return grp.Decide(Series, seriesValue), nil
	}

	d, err := classify.Classify(ctx, classify.Evidence{
		Path:       grp.Path,
		SeriesName: series,
		Movie:      movies[0].Entry,
		Siblings:   siblings,
		Searcher:   g.searcher,
	})
	if err != nil {
		return grp, err
	}
	g.logger.Debug("grouping", "Rule engine decided",
		logging.F("path", grp.Path),
		logging.F("outcome", d.Outcome),
		logging.F("last_rule", d.Last()),
		logging.F("evaluated", d.Evaluated))

	grp = grp.WithDecision(d)
	switch d.Outcome {
	case classify.Series:
		return grp.Decide(Series, seriesValue), nil
	case classify.Movie:
		return grp.Decide(Movie, movieValue), nil
	default:
		return grp.With(Movie, movieValue).With(Series, seriesValue), nil
	}
}

func (g *Grouper) isAnime(ctx context.Context, path, name string, folders []string) (bool, error) {
	if anyFolder(folders, animeFolderRegex) || animeSubgroupRegex.MatchString(name) {
		return true, nil
	}
	if g.probe == nil || !naming.IsVideo(path) {
		return false, nil
	}
	fi, err := g.fs.Stat(path)
	if err != nil || fi.Size() <= g.minProbeSize {
		return false, nil
	}

	info, err := g.probe.Probe(ctx, path)
	if errors.Is(err, probe.ErrNotFound) {
		g.logger.Warn("grouping", "ffprobe unavailable, skipping anime probe", logging.F("path", path))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("probe: %w", err)
	}
	return info.Duration > 0 && info.Duration < maxAnimeEpisode &&
		info.HasAudioLanguage("ja", "jpn", "japanese") &&
		info.HasSubtitleCodec("ass", "ssa"), nil
}

// seriesName prefers the name in front of the episode marker and falls
// back to the nearest folder that is not a season or library root.
func (g *Grouper) seriesName(name string, folders []string) string {
	if s := naming.SeriesName(name); s != "" {
		return s
	}
	for _, f := range folders {
		if seasonFolderRegex.MatchString(f) || seriesFolderRegex.MatchString(f) {
			continue
		}
		if n := naming.NormalizeRelease(f, false); naming.SignificantChars(n) >= naming.MinSignificantChars {
			return n
		}
	}
	return ""
}

// ancestors returns the folder names above path, nearest first.
func ancestors(path string) []string {
	var out []string
	dir := filepath.Dir(filepath.Clean(path))
	for {
		base := filepath.Base(dir)
		if base == "." || base == string(filepath.Separator) || base == "" {
			return out
		}
		out = append(out, strings.TrimSpace(base))
		parent := filepath.Dir(dir)
		if parent == dir {
			return out
		}
		dir = parent
	}
}

func anyFolder(folders []string, re *regexp.Regexp) bool {
	for _, f := range folders {
		if re.MatchString(f) {
			return true
		}
	}
	return false
}

func kindType(k catalog.Kind) Type {
	switch k {
	case catalog.KindSeries:
		return Series
	case catalog.KindAnime:
		return Anime
	default:
		return Movie
	}
}
