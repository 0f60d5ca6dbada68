package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/Nomadcxx/mediamatch/internal/collation"
	"github.com/Nomadcxx/mediamatch/internal/logging"
	"github.com/Nomadcxx/mediamatch/internal/naming"
)

// DefaultMaxStartIndex tolerates a couple of leading junk tokens, such as
// a release group tag, in front of the title.
const DefaultMaxStartIndex = 2

// Catalog owns the movie, series and anime indexes. Each index is built
// from the provider on first use and is read-only afterwards.
type Catalog struct {
	provider Provider
	collator *collation.Collator
	logger   *logging.Logger

	indexes [3]lazyIndex
}

type lazyIndex struct {
	once sync.Once
	idx  *Index
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger used to report load failures.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCollator sets the collator used to key names.
func WithCollator(collator *collation.Collator) Option {
	return func(c *Catalog) {
		if collator != nil {
			c.collator = collator
		}
	}
}

// New creates a Catalog backed by provider. A nil provider yields empty
// indexes.
func New(provider Provider, opts ...Option) *Catalog {
	c := &Catalog{
		provider: provider,
		collator: collation.Default(),
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Preload builds all three indexes now instead of on first lookup.
func (c *Catalog) Preload(ctx context.Context) {
	for _, kind := range Kinds {
		c.index(ctx, kind)
	}
}

// Index returns the index for kind, building it on first use.
func (c *Catalog) Index(kind Kind) *Index {
	return c.index(context.Background(), kind)
}

func (c *Catalog) index(ctx context.Context, kind Kind) *Index {
	if kind < KindMovie || kind > KindAnime {
		return &Index{Kind: kind}
	}
	li := &c.indexes[kind]
	li.once.Do(func() {
		li.idx = c.build(ctx, kind)
	})
	return li.idx
}

func (c *Catalog) build(ctx context.Context, kind Kind) *Index {
	if c.provider == nil {
		return &Index{Kind: kind}
	}
	entries, err := c.provider.Load(ctx, kind)
	if err != nil {
		c.logger.Error("catalog", "Failed to load catalog snapshot, index left empty", err,
			logging.F("kind", kind))
		return &Index{Kind: kind}
	}
	idx := BuildIndex(kind, entries, c.collator)
	c.logger.Info("catalog", "Index built",
		logging.F("kind", kind),
		logging.F("entries", len(idx.Entries)),
		logging.F("rows", idx.Len()))
	return idx
}

// LookupOptions selects the index and how tolerant matching is.
type LookupOptions struct {
	Kind Kind
	// Strict requires the strict name (with year or qualifier) to match.
	Strict bool
	// MaxStartIndex bounds where the match may start; collation.Unbounded
	// lifts the limit.
	MaxStartIndex int
}

// Match is one ranked candidate.
type Match struct {
	Entry *Entry `json:"entry"`
	// MatchedName is the effective name of the row that matched.
	MatchedName string `json:"matched_name"`
	// Length is the number of tokens in the matched key sequence.
	Length     int     `json:"length"`
	Strict     bool    `json:"strict"`
	Similarity float64 `json:"similarity"`
}

// Lookup ranks catalog entries whose full name appears in query. Strict
// matches are always kept; lenient matches only when opts.Strict is false.
// Each entry appears at most once. Queries with fewer than three
// significant characters return nothing.
func (c *Catalog) Lookup(query string, opts LookupOptions) []Match {
	normalized := naming.NormalizeRelease(query, opts.Strict)
	if naming.SignificantChars(normalized) < naming.MinSignificantChars {
		return nil
	}
	idx := c.Index(opts.Kind)
	if idx.Len() == 0 {
		return nil
	}

	qk := c.collator.Keys(normalized)
	best := make(map[*Entry]*Match)
	for _, row := range idx.Rows {
		m, ok := matchRow(qk, row, opts)
		if !ok {
			continue
		}
		if prev, seen := best[row.Entry]; seen && !stronger(m, prev) {
			continue
		}
		best[row.Entry] = &m
	}

	out := make([]Match, 0, len(best))
	for _, m := range best {
		m.Similarity = Similarity(normalized, m.MatchedName, m.Entry.Year)
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Length != b.Length {
			return a.Length > b.Length
		}
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if len(a.MatchedName) != len(b.MatchedName) {
			return len(a.MatchedName) > len(b.MatchedName)
		}
		return a.Entry.ID < b.Entry.ID
	})
	return out
}

func matchRow(qk []collation.Key, row *IndexEntry, opts LookupOptions) (Match, bool) {
	if collation.FullMatch(qk, row.StrictKey(), opts.MaxStartIndex) {
		return Match{Entry: row.Entry, MatchedName: row.Name, Length: len(row.StrictKey()), Strict: true}, true
	}
	if !opts.Strict && collation.FullMatch(qk, row.LenientKey(), opts.MaxStartIndex) {
		return Match{Entry: row.Entry, MatchedName: row.Name, Length: len(row.LenientKey())}, true
	}
	return Match{}, false
}

// stronger orders two matches of the same entry: longer runs, then strict
// over lenient, then the longer name.
func stronger(a Match, b *Match) bool {
	if a.Length != b.Length {
		return a.Length > b.Length
	}
	if a.Strict != b.Strict {
		return a.Strict
	}
	return len(a.MatchedName) > len(b.MatchedName)
}

// LookupMovie is Lookup against the movie index.
func (c *Catalog) LookupMovie(query string, strict bool) []Match {
	return c.Lookup(query, LookupOptions{Kind: KindMovie, Strict: strict, MaxStartIndex: DefaultMaxStartIndex})
}

// LookupSeries is Lookup against the series index.
func (c *Catalog) LookupSeries(query string, strict bool) []Match {
	return c.Lookup(query, LookupOptions{Kind: KindSeries, Strict: strict, MaxStartIndex: DefaultMaxStartIndex})
}

// LookupAnime is Lookup against the anime index.
func (c *Catalog) LookupAnime(query string, strict bool) []Match {
	return c.Lookup(query, LookupOptions{Kind: KindAnime, Strict: strict, MaxStartIndex: DefaultMaxStartIndex})
}

// SeriesNames returns the primary names of the series matching query, best
// match first. opts.Kind is ignored.
func (c *Catalog) SeriesNames(query string, opts LookupOptions) []string {
	opts.Kind = KindSeries
	matches := c.Lookup(query, opts)
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Entry.Name
	}
	return names
}

// Entries returns the entries behind a match list, in order.
func Entries(matches []Match) []*Entry {
	out := make([]*Entry, len(matches))
	for i, m := range matches {
		out[i] = m.Entry
	}
	return out
}
