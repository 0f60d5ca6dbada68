// Package catalog holds the reference catalog of movies, series and anime
// and the lazily built indexes used to look candidates up by name.
package catalog

import (
	"fmt"
	"strings"
)

// Kind tags which index a catalog entry belongs to.
type Kind int

const (
	KindMovie Kind = iota
	KindSeries
	KindAnime
)

// Kinds lists every kind in index order.
var Kinds = []Kind{KindMovie, KindSeries, KindAnime}

func (k Kind) String() string {
	switch k {
	case KindMovie:
		return "movie"
	case KindSeries:
		return "series"
	case KindAnime:
		return "anime"
	default:
		return "unknown"
	}
}

// ParseKind converts a kind name such as "movie" or "tv" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies", "film":
		return KindMovie, nil
	case "series", "tv", "show":
		return KindSeries, nil
	case "anime":
		return KindAnime, nil
	default:
		return 0, fmt.Errorf("unknown catalog kind %q", s)
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	if k < KindMovie || k > KindAnime {
		return nil, fmt.Errorf("invalid catalog kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Entry is an immutable reference record from a catalog snapshot.
type Entry struct {
	ID       int      `json:"id"`
	Kind     Kind     `json:"kind"`
	Name     string   `json:"name"`
	Aliases  []string `json:"aliases,omitempty"`
	Year     int      `json:"year,omitempty"`
	Database string   `json:"database,omitempty"`
}

// Names returns the primary name followed by the aliases, skipping blanks
// and exact duplicates.
func (e *Entry) Names() []string {
	seen := make(map[string]bool, len(e.Aliases)+1)
	names := make([]string, 0, len(e.Aliases)+1)
	for _, n := range append([]string{e.Name}, e.Aliases...) {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	return names
}

func (e *Entry) String() string {
	if e.Year > 0 {
		return fmt.Sprintf("%s (%d) [%s:%d]", e.Name, e.Year, e.Kind, e.ID)
	}
	return fmt.Sprintf("%s [%s:%d]", e.Name, e.Kind, e.ID)
}
