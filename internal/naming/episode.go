package naming

import (
	"regexp"
	"strconv"
	"strings"
)

// Episode is a parsed season/episode or air-date marker.
type Episode struct {
	Season  int
	Episode int
	// AirDate is set for date-based episodes, formatted YYYY-MM-DD.
	AirDate string
	// Index is the byte offset of the marker in the parsed string.
	Index int
}

type episodePattern struct {
	re    *regexp.Regexp
	parse func(m []string) (Episode, bool)
}

var (
	strictEpisodePatterns = []episodePattern{
		{regexp.MustCompile(`(?i)\bS(\d{1,2})[ ._-]?E(\d{1,3})\b`), seasonEpisode},
		{regexp.MustCompile(`(?i)\b(\d{1,2})x(\d{2,3})\b`), seasonEpisode},
		{regexp.MustCompile(`\b((?:19|20)\d{2})[ ._-](\d{2})[ ._-](\d{2})\b`), dateYMD},
		{regexp.MustCompile(`\b(\d{2})[ ._-](\d{2})[ ._-]((?:19|20)\d{2})\b`), dateDMY},
	}
	looseEpisodePatterns = []episodePattern{
		{regexp.MustCompile(`(?i)\bS(\d{1,2})\b`), seasonOnly},
		{regexp.MustCompile(`(?i)\bSeason[ ._-]?(\d{1,2})\b`), seasonOnly},
		{regexp.MustCompile(`(?i)\b(?:Episode|Ep)[ ._-]?(\d{1,3})\b`), episodeOnly},
		{regexp.MustCompile(`(?i)\bE(\d{2,3})\b`), episodeOnly},
	}
	episodeWordRegex = regexp.MustCompile(`(?i)\b(?:Episode|Ep|Folge|Capitulo|Episodio)\b`)
)

func seasonEpisode(m []string) (Episode, bool) {
	s, _ := strconv.Atoi(m[1])
	e, _ := strconv.Atoi(m[2])
	return Episode{Season: s, Episode: e}, true
}

func seasonOnly(m []string) (Episode, bool) {
	s, _ := strconv.Atoi(m[1])
	return Episode{Season: s}, true
}

func episodeOnly(m []string) (Episode, bool) {
	e, _ := strconv.Atoi(m[1])
	return Episode{Episode: e}, true
}

func dateYMD(m []string) (Episode, bool) {
	return airDate(m[1], m[2], m[3])
}

func dateDMY(m []string) (Episode, bool) {
	return airDate(m[3], m[2], m[1])
}

func airDate(year, month, day string) (Episode, bool) {
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return Episode{}, false
	}
	return Episode{AirDate: year + "-" + month + "-" + day}, true
}

// ParseEpisode finds the earliest episode marker in name. Strict parsing
// accepts SxxEyy, NxMM and air dates only; non-strict parsing also accepts
// season-only and episode-only markers such as "S01", "Season 2" or "Ep 5".
func ParseEpisode(name string, strict bool) (Episode, bool) {
	best, found := earliestEpisode(name, strictEpisodePatterns)
	if strict {
		return best, found
	}
	loose, ok := earliestEpisode(name, looseEpisodePatterns)
	if ok && (!found || loose.Index < best.Index) {
		return loose, true
	}
	return best, found
}

func earliestEpisode(name string, patterns []episodePattern) (Episode, bool) {
	var best Episode
	found := false
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(name, -1) {
			if found && loc[0] >= best.Index {
				break
			}
			m := make([]string, len(loc)/2)
			for i := range m {
				if loc[2*i] >= 0 {
					m[i] = name[loc[2*i]:loc[2*i+1]]
				}
			}
			ep, ok := p.parse(m)
			if !ok {
				continue
			}
			ep.Index = loc[0]
			best, found = ep, true
			break
		}
	}
	return best, found
}

// HasEpisodeWord reports whether name contains an episode marker word
// without requiring a number next to it.
func HasEpisodeWord(name string) bool {
	return episodeWordRegex.MatchString(name)
}

// SeriesName returns the title prefix in front of the first episode marker,
// or "" when there is no marker or the prefix is too short to be a title.
func SeriesName(name string) string {
	normalized := NormalizeRelease(name, false)
	ep, ok := ParseEpisode(normalized, false)
	if !ok {
		return ""
	}
	prefix := strings.TrimSpace(normalized[:ep.Index])
	if SignificantChars(prefix) < MinSignificantChars {
		return ""
	}
	return prefix
}

// StripSeriesPrefix removes the series name tokens from the front of a
// normalized name. Comparison is case and accent insensitive. The name is
// returned unchanged when it does not start with the series.
func StripSeriesPrefix(name, series string) string {
	tokens := strings.Fields(name)
	prefix := strings.Fields(NormalizeTitle(series))
	if len(prefix) == 0 || len(prefix) > len(tokens) {
		return name
	}
	for i, p := range prefix {
		if Fold(tokens[i]) != Fold(p) {
			return name
		}
	}
	return strings.Join(tokens[len(prefix):], " ")
}
