package arr

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Nomadcxx/mediamatch/internal/catalog"
)

// Movie is a Radarr lookup result.
type Movie struct {
	Title           string           `json:"title"`
	OriginalTitle   string           `json:"originalTitle"`
	Year            int              `json:"year"`
	ImdbID          string           `json:"imdbId"`
	TmdbID          int              `json:"tmdbId"`
	AlternateTitles []AlternateTitle `json:"alternateTitles"`
}

type AlternateTitle struct {
	Title        string `json:"title"`
	SeasonNumber int    `json:"seasonNumber,omitempty"`
}

// Entry converts the lookup result to a movie catalog entry keyed by TMDB
// id.
func (m Movie) Entry() catalog.Entry {
	e := catalog.Entry{
		ID:       m.TmdbID,
		Kind:     catalog.KindMovie,
		Name:     m.Title,
		Year:     m.Year,
		Database: "tmdb",
	}
	if m.OriginalTitle != "" && m.OriginalTitle != m.Title {
		e.Aliases = append(e.Aliases, m.OriginalTitle)
	}
	for _, alt := range m.AlternateTitles {
		e.Aliases = append(e.Aliases, alt.Title)
	}
	return e
}

type RadarrClient struct {
	*client
}

// NewRadarrClient returns ErrNotConfigured when cfg lacks a URL or key.
func NewRadarrClient(cfg Config) (*RadarrClient, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &RadarrClient{client: c}, nil
}

func (c *RadarrClient) Ping(ctx context.Context) (*SystemStatus, error) {
	return c.ping(ctx)
}

func (c *RadarrClient) LookupMovie(ctx context.Context, term string) ([]Movie, error) {
	var movies []Movie
	if err := c.get(ctx, "/api/v3/movie/lookup", url.Values{"term": {term}}, &movies); err != nil {
		return nil, fmt.Errorf("looking up movie %q: %w", term, err)
	}
	return movies, nil
}

func (c *RadarrClient) LookupMovieByImdbID(ctx context.Context, imdbID string) (*Movie, error) {
	var movie Movie
	if err := c.get(ctx, "/api/v3/movie/lookup/imdb", url.Values{"imdbId": {imdbID}}, &movie); err != nil {
		return nil, fmt.Errorf("looking up movie by IMDB ID %s: %w", imdbID, err)
	}
	return &movie, nil
}

// SearchMovie looks name up online. A non-zero year is appended to the
// search term and results from other years are dropped.
func (c *RadarrClient) SearchMovie(ctx context.Context, name string, year int) ([]catalog.Entry, error) {
	term := strings.TrimSpace(name)
	if year > 0 {
		term += " " + strconv.Itoa(year)
	}
	movies, err := c.LookupMovie(ctx, term)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Entry, 0, len(movies))
	for _, m := range movies {
		if year > 0 && m.Year != year {
			continue
		}
		out = append(out, m.Entry())
	}
	return out, nil
}
