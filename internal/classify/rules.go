package classify

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Nomadcxx/mediamatch/internal/catalog"
	"github.com/Nomadcxx/mediamatch/internal/naming"
)

const (
	// minEpisodeSiblings is how many numbered siblings make a folder look
	// like an episode set.
	minEpisodeSiblings = 10
	// similarityThreshold is the Jaro-Winkler score the soft movie rules need.
	similarityThreshold = 0.8
	maxEpisodeNumber    = 999
)

// MovieSearcher looks movies up in an online service.
type MovieSearcher interface {
	SearchMovie(ctx context.Context, name string, year int) ([]catalog.Entry, error)
}

// Evidence is everything the rules know about one file.
type Evidence struct {
	Path string
	// SeriesName is the best series-name candidate.
	SeriesName string
	// Movie is the best movie candidate.
	Movie *catalog.Entry
	// Siblings are the base names of the video files in the same folder.
	Siblings []string
	// Searcher is optional; without it exactMovieMatch never fires.
	Searcher MovieSearcher
}

// facts are the derived strings shared by several rules.
type facts struct {
	raw    string // file name without extension
	name   string // normalized file name
	parent string // normalized parent folder name
	rest   string // normalized name after the series prefix
	year   int    // year found in the file name
}

func deriveFacts(ev Evidence) facts {
	f := facts{raw: naming.BaseName(ev.Path)}
	f.name = naming.NormalizeRelease(f.raw, false)
	if dir := filepath.Dir(ev.Path); dir != "." && dir != string(filepath.Separator) {
		f.parent = naming.NormalizeRelease(filepath.Base(dir), false)
	}
	f.rest = naming.StripSeriesPrefix(f.name, ev.SeriesName)
	f.year = naming.ExtractYear(f.name)
	return f
}

// Rules returns the standard rule list bound to ev. The order is part of
// the behaviour: earlier rules can decide a file before later ones run.
func Rules(ctx context.Context, ev Evidence) []Rule {
	f := deriveFacts(ev)
	movie := ev.Movie
	if movie == nil {
		movie = &catalog.Entry{}
	}

	return []Rule{
		{"equalsMovieName", -1, 0, func() (bool, error) {
			return equalsAnyName(f.name, movie), nil
		}},
		{"containsMovieYear", -1, 0, func() (bool, error) {
			return containsMovieYear(ev.Path, movie.Year), nil
		}},
		{"containsMovieNameYear", -1, 0, func() (bool, error) {
			return containsMovieNameYear(f, movie), nil
		}},
		{"containsEpisodeNumbers", 5, -1, func() (bool, error) {
			_, ok := naming.ParseEpisode(f.rest, false)
			return ok, nil
		}},
		{"commonNumberPattern", 5, -1, func() (bool, error) {
			return commonNumberPattern(ev.SeriesName, ev.Siblings), nil
		}},
		{"episodeWithoutNumbers", 1, -1, func() (bool, error) {
			return naming.HasEpisodeWord(f.name), nil
		}},
		{"episodeNumbers", 1, -1, func() (bool, error) {
			return f.rest != f.name && leadingEpisodeNumber(f.rest) > 0, nil
		}},
		{"hasImdbId", -1, 1, func() (bool, error) {
			return naming.ImdbID(f.raw) != "" || naming.ImdbID(filepath.Base(filepath.Dir(ev.Path))) != "", nil
		}},
		{"nonNumberName", -1, 1, func() (bool, error) {
			for _, n := range naming.Numbers(f.name) {
				if n != movie.Year {
					return false, nil
				}
			}
			return true, nil
		}},
		{"exactMovieMatch", -1, 5, func() (bool, error) {
			return exactMovieMatch(ctx, ev.Searcher, f, movie)
		}},
		{"parentFolderMovieName", -1, 1, func() (bool, error) {
			if f.parent == "" {
				return false, nil
			}
			return equalsAnyName(f.parent, movie) || equalsAnyName(stripYear(f.parent, movie.Year), movie), nil
		}},
		{"similarNameYear", -1, 1, func() (bool, error) {
			if movie.Year == 0 || f.year != movie.Year {
				return false, nil
			}
			return catalog.NameSimilarity(f.name, movie.Name+" "+strconv.Itoa(movie.Year)) >= similarityThreshold, nil
		}},
		{"similarNameNoNumbers", -1, 1, func() (bool, error) {
			a, b := naming.StripNumbers(f.name), naming.StripNumbers(naming.NormalizeTitle(movie.Name))
			if a == "" || b == "" {
				return false, nil
			}
			return catalog.NameSimilarity(a, b) >= similarityThreshold, nil
		}},
		{"aliasNameMatch", -1, 1, func() (bool, error) {
			bare := stripYear(f.name, movie.Year)
			for _, alias := range movie.Aliases {
				if naming.SameTitle(bare, alias) {
					return true, nil
				}
			}
			return false, nil
		}},
	}
}

// Classify runs the standard rules for ev.
func Classify(ctx context.Context, ev Evidence) (Decision, error) {
	return Decide(Rules(ctx, ev))
}

func equalsAnyName(name string, movie *catalog.Entry) bool {
	for _, n := range movie.Names() {
		if naming.SameTitle(name, n) {
			return true
		}
	}
	return false
}

// containsMovieYear looks for the movie year in the file name and its
// parent folder. Whatever follows the year must not be an episode marker.
func containsMovieYear(path string, year int) bool {
	if year == 0 {
		return false
	}
	want := strconv.Itoa(year)
	segments := []string{naming.BaseName(path), filepath.Base(filepath.Dir(path))}
	for _, seg := range segments {
		tokens := strings.Fields(naming.NormalizeRelease(seg, false))
		for i, tok := range tokens {
			if tok != want {
				continue
			}
			if _, ok := naming.ParseEpisode(strings.Join(tokens[i+1:], " "), true); !ok {
				return true
			}
		}
	}
	return false
}

func containsMovieNameYear(f facts, movie *catalog.Entry) bool {
	if movie.Year == 0 {
		return false
	}
	haystack := " " + naming.Fold(f.parent+" "+f.name) + " "
	for _, n := range movie.Names() {
		needle := naming.Fold(naming.NormalizeTitle(n) + " " + strconv.Itoa(movie.Year))
		if strings.Contains(haystack, " "+needle+" ") {
			return true
		}
	}
	return false
}

// commonNumberPattern reports whether enough siblings share the series
// prefix and each carries a distinct small number.
func commonNumberPattern(series string, siblings []string) bool {
	if series == "" || len(siblings) < minEpisodeSiblings {
		return false
	}
	numbers := make(map[int]bool)
	for _, sib := range siblings {
		name := naming.NormalizeRelease(sib, false)
		rest := naming.StripSeriesPrefix(name, series)
		if rest == name {
			continue
		}
		for _, n := range naming.Numbers(rest) {
			if n > 0 && n <= maxEpisodeNumber {
				numbers[n] = true
				break
			}
		}
	}
	return len(numbers) >= minEpisodeSiblings
}

// leadingEpisodeNumber returns the first token of rest when it is a small
// number that is not a year, or 0.
func leadingEpisodeNumber(rest string) int {
	tokens := strings.Fields(rest)
	if len(tokens) == 0 || len(tokens[0]) > 3 {
		return 0
	}
	n, err := strconv.Atoi(tokens[0])
	if err != nil || n > maxEpisodeNumber {
		return 0
	}
	return n
}

func exactMovieMatch(ctx context.Context, searcher MovieSearcher, f facts, movie *catalog.Entry) (bool, error) {
	if searcher == nil || movie.Name == "" || movie.Year == 0 || f.year != movie.Year {
		return false, nil
	}
	results, err := searcher.SearchMovie(ctx, stripYear(f.name, f.year), f.year)
	if err != nil {
		return false, err
	}
	for i := range results {
		if results[i].Year == movie.Year && equalsAnyName(results[i].Name, movie) {
			return true, nil
		}
	}
	return false, nil
}

func stripYear(name string, year int) string {
	if year == 0 {
		return name
	}
	want := strconv.Itoa(year)
	tokens := strings.Fields(name)
	out := tokens[:0:0]
	for _, tok := range tokens {
		if tok != want {
			out = append(out, tok)
		}
	}
	return strings.Join(out, " ")
}
