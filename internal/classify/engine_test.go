package classify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/mediamatch/internal/catalog"
)

// countingRule returns a rule that always reports fires and counts calls.
func countingRule(name string, series, movie int, fires bool, calls *int) Rule {
	return Rule{Name: name, SeriesScore: series, MovieScore: movie, Predicate: func() (bool, error) {
		*calls++
		return fires, nil
	}}
}

func TestDecide_StopsAtDecisiveMargin(t *testing.T) {
	calls := make([]int, 4)
	rules := []Rule{
		countingRule("a", -1, 0, true, &calls[0]),
		countingRule("b", 0, 1, true, &calls[1]),
		countingRule("c", 5, -1, true, &calls[2]),
		countingRule("d", 5, -1, true, &calls[3]),
	}

	d, err := Decide(rules)
	require.NoError(t, err)
	assert.Equal(t, Movie, d.Outcome)
	assert.Equal(t, 2, d.Evaluated)
	assert.Equal(t, []int{1, 1, 0, 0}, calls)
	assert.Equal(t, "b", d.Last())
}

func TestDecide_OrderIsSignificant(t *testing.T) {
	var seriesCalls, movieCalls, softCalls int
	series := countingRule("containsEpisodeNumbers", 5, -1, true, &seriesCalls)
	movie := countingRule("exactMovieMatch", -1, 5, true, &movieCalls)
	soft := countingRule("similarNameYear", -1, 1, true, &softCalls)

	first, err := Decide([]Rule{series, movie, soft})
	require.NoError(t, err)
	second, err := Decide([]Rule{movie, series, soft})
	require.NoError(t, err)

	assert.Equal(t, Series, first.Outcome)
	assert.Equal(t, Movie, second.Outcome)
	assert.Equal(t, 1, first.Evaluated)
	assert.Equal(t, 1, second.Evaluated)
	assert.NotEqual(t, first.Last(), second.Last())
	assert.Equal(t, 0, softCalls)
}

func TestDecide_Ambiguous(t *testing.T) {
	var calls int
	rules := []Rule{
		countingRule("a", 1, 0, true, &calls),
		countingRule("b", 0, 1, true, &calls),
		countingRule("c", -1, -1, false, &calls),
	}

	d, err := Decide(rules)
	require.NoError(t, err)
	assert.Equal(t, Ambiguous, d.Outcome)
	assert.Equal(t, 3, d.Evaluated)
	assert.Equal(t, 1, d.SeriesScore)
	assert.Equal(t, 1, d.MovieScore)
}

func TestDecide_PredicateErrorAborts(t *testing.T) {
	boom := errors.New("search timed out")
	var after int
	rules := []Rule{
		{Name: "failing", Predicate: func() (bool, error) { return false, boom }},
		countingRule("after", 5, -1, true, &after),
	}

	_, err := Decide(rules)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var ruleErr *RuleError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, "failing", ruleErr.Rule)
	assert.Equal(t, 0, after)
}

type fakeSearcher struct {
	results []catalog.Entry
	err     error
	calls   int
}

func (f *fakeSearcher) SearchMovie(_ context.Context, name string, year int) ([]catalog.Entry, error) {
	f.calls++
	return f.results, f.err
}

func ruleNames(rules []Rule) []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	return names
}

func TestRules_Order(t *testing.T) {
	rules := Rules(context.Background(), Evidence{Path: "/x/y.mkv"})
	assert.Equal(t, []string{
		"equalsMovieName",
		"containsMovieYear",
		"containsMovieNameYear",
		"containsEpisodeNumbers",
		"commonNumberPattern",
		"episodeWithoutNumbers",
		"episodeNumbers",
		"hasImdbId",
		"nonNumberName",
		"exactMovieMatch",
		"parentFolderMovieName",
		"similarNameYear",
		"similarNameNoNumbers",
		"aliasNameMatch",
	}, ruleNames(rules))
}

func TestClassify_SeasonMarkerDecidesSeries(t *testing.T) {
	ev := Evidence{
		Path:       "/downloads/Dexter.S01.mkv",
		SeriesName: "Dexter",
		Movie:      &catalog.Entry{ID: 1, Kind: catalog.KindMovie, Name: "Dexter", Year: 2010},
	}

	d, err := Classify(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, Series, d.Outcome)
	assert.Equal(t, []string{"containsEpisodeNumbers"}, d.Fired)
	assert.Equal(t, 4, d.Evaluated)
}

func TestClassify_YearEvidenceDecidesMovie(t *testing.T) {
	ev := Evidence{
		Path:       "/downloads/Heat.1995.1080p.BluRay.mkv",
		SeriesName: "Heat",
		Movie:      &catalog.Entry{ID: 949, Kind: catalog.KindMovie, Name: "Heat", Year: 1995},
	}

	d, err := Classify(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, Movie, d.Outcome)
	assert.Equal(t, []string{"containsMovieYear", "containsMovieNameYear", "nonNumberName"}, d.Fired)
	assert.Equal(t, 9, d.Evaluated)
}

func TestClassify_NumberedSiblingsDecideSeries(t *testing.T) {
	siblings := make([]string, 0, 12)
	for i := 1; i <= 12; i++ {
		siblings = append(siblings, fmt.Sprintf("Some Show %02d", i))
	}
	ev := Evidence{
		Path:       "/tv/Some Show 05.mkv",
		SeriesName: "Some Show",
		Movie:      &catalog.Entry{ID: 7, Kind: catalog.KindMovie, Name: "Some Show", Year: 2001},
		Siblings:   siblings,
	}

	d, err := Classify(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, Series, d.Outcome)
	assert.Equal(t, "commonNumberPattern", d.Last())
}

func heatPartTwo(searcher MovieSearcher) Evidence {
	return Evidence{
		Path:       "/downloads/Heat.1995.Part.2.mkv",
		SeriesName: "Heat",
		Movie:      &catalog.Entry{ID: 949, Kind: catalog.KindMovie, Name: "Heat", Year: 1995},
		Searcher:   searcher,
	}
}

func TestClassify_ExactMovieMatch(t *testing.T) {
	searcher := &fakeSearcher{results: []catalog.Entry{{ID: 949, Name: "Heat", Year: 1995}}}

	d, err := Classify(context.Background(), heatPartTwo(searcher))
	require.NoError(t, err)
	assert.Equal(t, Movie, d.Outcome)
	assert.Equal(t, "exactMovieMatch", d.Last())
	assert.Equal(t, 10, d.Evaluated)
	assert.Equal(t, 1, searcher.calls)
}

func TestClassify_SearchFailurePropagates(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("radarr unreachable")}

	_, err := Classify(context.Background(), heatPartTwo(searcher))
	var ruleErr *RuleError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, "exactMovieMatch", ruleErr.Rule)
}

func TestClassify_NoSearcherFallsBackToSimilarity(t *testing.T) {
	d, err := Classify(context.Background(), heatPartTwo(nil))
	require.NoError(t, err)
	assert.Equal(t, Movie, d.Outcome)
	assert.Equal(t, "similarNameYear", d.Last())
	assert.Equal(t, 12, d.Evaluated)
}

func TestClassify_NoCandidateMovieStaysUndecided(t *testing.T) {
	d, err := Classify(context.Background(), Evidence{Path: "/x/Random Clip 42.mkv", SeriesName: "Other"})
	require.NoError(t, err)
	assert.Equal(t, 14, d.Evaluated)
	assert.Equal(t, Ambiguous, d.Outcome)
}

func TestClassify_Deterministic(t *testing.T) {
	ev := heatPartTwo(&fakeSearcher{results: []catalog.Entry{{Name: "Heat", Year: 1995}}})
	first, err := Classify(context.Background(), ev)
	require.NoError(t, err)
	second, err := Classify(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
