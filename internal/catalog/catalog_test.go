package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/mediamatch/internal/collation"
)

func testCatalog() *Catalog {
	return New(StaticProvider{
		KindMovie: {
			{ID: 603, Name: "The Matrix", Year: 1999},
			{ID: 348, Name: "Alien", Year: 1979},
			{ID: 679, Name: "Aliens", Year: 1986},
			{ID: 8078, Name: "Alien Resurrection", Year: 1997},
			{ID: 194, Name: "Amélie", Aliases: []string{"Le Fabuleux Destin d'Amélie Poulain"}, Year: 2001},
			{ID: 14836, Name: "Up", Year: 2009},
		},
		KindSeries: {
			{ID: 81189, Name: "Breaking Bad", Aliases: []string{"Breaking Bad (2008)"}, Database: "tvdb"},
			{ID: 73244, Name: "The Office (US)", Database: "tvdb"},
			{ID: 79349, Name: "Dexter", Database: "tvdb"},
		},
		KindAnime: {
			{ID: 17617, Name: "Frieren", Aliases: []string{"Sousou no Frieren"}, Database: "anidb"},
		},
	})
}

func TestLookup_DedupesAliasRows(t *testing.T) {
	c := testCatalog()

	got := c.LookupSeries("Breaking Bad", true)
	require.Len(t, got, 1)
	assert.Equal(t, 81189, got[0].Entry.ID)
	assert.True(t, got[0].Strict)

	got = c.LookupSeries("Breaking Bad 2008", true)
	require.Len(t, got, 1)
	assert.Equal(t, 81189, got[0].Entry.ID)
	assert.Equal(t, "Breaking Bad (2008)", got[0].MatchedName)
	assert.Equal(t, 3, got[0].Length)
}

func TestLookup_StrictMovieNeedsYear(t *testing.T) {
	c := testCatalog()

	got := c.LookupMovie("The.Matrix.1999.1080p.BluRay.x264-GROUP.mkv", true)
	require.Len(t, got, 1)
	assert.Equal(t, 603, got[0].Entry.ID)
	assert.True(t, got[0].Strict)

	assert.Empty(t, c.LookupMovie("The.Matrix.1080p.BluRay", true))

	lenient := c.LookupMovie("The.Matrix.1080p.BluRay", false)
	require.Len(t, lenient, 1)
	assert.False(t, lenient[0].Strict)
}

func TestLookup_SeriesQualifier(t *testing.T) {
	c := testCatalog()

	got := c.LookupSeries("The.Office.US.S01E01", true)
	require.Len(t, got, 1)
	assert.Equal(t, 73244, got[0].Entry.ID)

	assert.Empty(t, c.LookupSeries("The.Office.S01E01", true))
	assert.Len(t, c.LookupSeries("The.Office.S01E01", false), 1)
}

func TestLookup_Ranking(t *testing.T) {
	c := testCatalog()

	got := c.LookupMovie("Alien.Resurrection.1997.DVDRip", false)
	require.GreaterOrEqual(t, len(got), 2)
	assert.Equal(t, 8078, got[0].Entry.ID)
	assert.Equal(t, 348, got[1].Entry.ID)
	for _, m := range got {
		assert.NotEqual(t, 679, m.Entry.ID, "Aliens must not match Alien Resurrection")
	}
}

func TestLookup_AccentsAndAliases(t *testing.T) {
	c := testCatalog()

	got := c.LookupMovie("Amelie.2001.720p", true)
	require.Len(t, got, 1)
	assert.Equal(t, 194, got[0].Entry.ID)

	got = c.LookupMovie("Le.Fabuleux.Destin.dAmelie.Poulain.2001", true)
	require.Len(t, got, 1)
	assert.Equal(t, "Le Fabuleux Destin d'Amélie Poulain", got[0].MatchedName)
}

func TestLookup_MaxStartIndex(t *testing.T) {
	c := testCatalog()
	query := "foo bar baz qux The Matrix 1999"

	assert.Empty(t, c.Lookup(query, LookupOptions{Kind: KindMovie, Strict: true, MaxStartIndex: 2}))
	assert.Len(t, c.Lookup(query, LookupOptions{Kind: KindMovie, Strict: true, MaxStartIndex: collation.Unbounded}), 1)
}

func TestLookup_RejectsShortQueries(t *testing.T) {
	c := testCatalog()
	assert.Empty(t, c.LookupMovie("Up", false))
	assert.Empty(t, c.LookupMovie("1080p.x264", false))
	assert.Empty(t, c.LookupMovie("", false))
}

func TestLookup_IndexesAreIndependent(t *testing.T) {
	c := testCatalog()
	assert.Empty(t, c.LookupMovie("Breaking Bad", false))
	assert.Empty(t, c.LookupAnime("The Matrix 1999", false))
	assert.Len(t, c.LookupAnime("[SubsPlease] Sousou no Frieren - 05 (1080p)", false), 1)
}

func TestLookup_CorruptSnapshotYieldsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/catalog.json", []byte("{not json"), 0644))

	c := New(&FileProvider{Fs: fs, Path: "/catalog.json"})
	assert.Empty(t, c.LookupSeries("Breaking Bad", false))
	assert.Equal(t, 0, c.Index(KindSeries).Len())
}

func TestLookup_MissingSnapshotYieldsEmpty(t *testing.T) {
	c := New(&FileProvider{Fs: afero.NewMemMapFs(), Path: "/missing.json"})
	assert.Empty(t, c.LookupSeries("Breaking Bad", false))
}

func TestLookup_FailedIndexDoesNotAffectOthers(t *testing.T) {
	base := testCatalog().provider
	c := New(ProviderFunc(func(ctx context.Context, kind Kind) ([]Entry, error) {
		if kind == KindAnime {
			return nil, errors.New("anime snapshot unavailable")
		}
		return base.Load(ctx, kind)
	}))

	assert.Empty(t, c.LookupAnime("Frieren 01", false))
	assert.Len(t, c.LookupMovie("The Matrix 1999", true), 1)
}

func TestCatalog_BuildsIndexOnce(t *testing.T) {
	var loads atomic.Int32
	c := New(ProviderFunc(func(_ context.Context, kind Kind) ([]Entry, error) {
		loads.Add(1)
		return []Entry{{ID: 1, Name: "Breaking Bad"}}, nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, c.LookupSeries("Breaking.Bad.S01E01", false), 1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), loads.Load())
}

func TestFileProvider_Snapshot(t *testing.T) {
	fs := afero.NewMemMapFs()
	snap := &Snapshot{
		Movies: []Entry{{ID: 603, Name: "The Matrix", Year: 1999}},
		Series: []Entry{{ID: 81189, Name: "Breaking Bad", Database: "tvdb"}},
	}
	require.NoError(t, WriteSnapshot(fs, "/catalog.json", snap))

	p := &FileProvider{Fs: fs, Path: "/catalog.json"}
	series, err := p.Load(context.Background(), KindSeries)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, KindSeries, series[0].Kind)

	anime, err := p.Load(context.Background(), KindAnime)
	require.NoError(t, err)
	assert.Empty(t, anime)
}

func TestDecodeSnapshot_RejectsOtherVersions(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/v2.json", []byte(`{"version": 2}`), 0644))

	_, err := ReadSnapshot(fs, "/v2.json")
	assert.ErrorIs(t, err, ErrSnapshotVersion)
}

func TestIndexEntry_KeysAreCached(t *testing.T) {
	idx := BuildIndex(KindSeries, []Entry{{ID: 1, Name: "Breaking Bad (2008)"}}, collation.Default())
	require.Equal(t, 1, idx.Len())

	row := idx.Rows[0]
	assert.Equal(t, "Breaking Bad", row.LenientName)
	assert.Equal(t, "Breaking Bad 2008", row.StrictName)
	assert.Len(t, row.StrictKey(), 3)
	assert.Len(t, row.LenientKey(), 2)
	assert.Equal(t, row.StrictKey(), row.StrictKey())
}

func TestRowNames_Movie(t *testing.T) {
	tests := []struct {
		name        string
		entry       Entry
		wantLenient string
		wantStrict  string
	}{
		{"with year", Entry{Kind: KindMovie, Name: "The Matrix", Year: 1999}, "The Matrix", "The Matrix 1999"},
		{"year in name", Entry{Kind: KindMovie, Name: "Dune (2021)", Year: 2021}, "Dune", "Dune 2021"},
		{"no year", Entry{Kind: KindMovie, Name: "Heat"}, "Heat", "Heat"},
		{"numeric title", Entry{Kind: KindMovie, Name: "1917", Year: 2019}, "1917", "1917 2019"},
		{"audio word in title", Entry{Kind: KindMovie, Name: "Mr. Holland's Opus", Year: 1995}, "Mr Hollands Opus", "Mr Hollands Opus 1995"},
		{"decimal in title", Entry{Kind: KindMovie, Name: "Jackass 2.5", Year: 2007}, "Jackass 2 5", "Jackass 2 5 2007"},
		{"release vocabulary only", Entry{Kind: KindMovie, Name: "3D", Year: 2011}, "3D", "3D 2011"},
		{"series qualifier", Entry{Kind: KindSeries, Name: "The Office (US)"}, "The Office", "The Office US"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lenient, strict := rowNames(&tt.entry, tt.entry.Name)
			assert.Equal(t, tt.wantLenient, lenient)
			assert.Equal(t, tt.wantStrict, strict)
		})
	}
}

func TestLookup_TitlesSharingReleaseVocabulary(t *testing.T) {
	c := New(StaticProvider{
		KindMovie: {
			{ID: 2059, Name: "Mr. Holland's Opus", Year: 1995},
			{ID: 287084, Name: "Stereo", Year: 2014},
			{ID: 14119, Name: "Jackass 2.5", Year: 2007},
		},
	})

	tests := []struct {
		query  string
		wantID int
	}{
		{"Mr.Hollands.Opus.1995.1080p.BluRay.x264-GROUP.mkv", 2059},
		{"Stereo.2014.1080p.BluRay.x264-GROUP.mkv", 287084},
		{"Jackass.2.5.2007.DVDRip.XviD.mkv", 14119},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			for _, strict := range []bool{true, false} {
				got := c.LookupMovie(tt.query, strict)
				require.NotEmpty(t, got, "strict=%v", strict)
				assert.Equal(t, tt.wantID, got[0].Entry.ID)
				assert.True(t, got[0].Strict)
			}
		})
	}
}

func TestSimilarity_YearMatchScoresHigher(t *testing.T) {
	withYear := Similarity("Dune 2021", "Dune", 2021)
	wrongYear := Similarity("Dune 1984", "Dune", 2021)
	assert.Greater(t, withYear, wrongYear)
	assert.InDelta(t, 5.0, Similarity("Heat", "Heat", 0), 0.0001)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("TV")
	require.NoError(t, err)
	assert.Equal(t, KindSeries, k)

	_, err = ParseKind("music")
	assert.Error(t, err)
}

func TestSeriesNames(t *testing.T) {
	c := testCatalog()

	strict := LookupOptions{Kind: KindMovie, Strict: true, MaxStartIndex: DefaultMaxStartIndex}
	lenient := LookupOptions{MaxStartIndex: DefaultMaxStartIndex}

	assert.Equal(t, []string{"Breaking Bad"}, c.SeriesNames("Breaking.Bad.2008.S02E03", strict))
	assert.Equal(t, []string{"The Office (US)"}, c.SeriesNames("The.Office.S01E01", lenient))
	assert.Empty(t, c.SeriesNames("The.Office.S01E01", strict))
	assert.Empty(t, c.SeriesNames("Complete.Season.Pack.The.Office.S01E01", lenient))
	assert.Equal(t, []string{"The Office (US)"}, c.SeriesNames("Complete.Season.Pack.The.Office.S01E01",
		LookupOptions{MaxStartIndex: collation.Unbounded}))
}
