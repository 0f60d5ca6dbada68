package arr

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Nomadcxx/mediamatch/internal/catalog"
)

// Series is a Sonarr lookup result.
type Series struct {
	Title           string           `json:"title"`
	Year            int              `json:"year"`
	TvdbID          int              `json:"tvdbId"`
	ImdbID          string           `json:"imdbId"`
	SeriesType      string           `json:"seriesType"`
	AlternateTitles []AlternateTitle `json:"alternateTitles"`
}

// Entry converts the lookup result to a catalog entry keyed by TVDB id.
// Sonarr's "anime" series type maps to the anime kind.
func (s Series) Entry() catalog.Entry {
	kind := catalog.KindSeries
	if strings.EqualFold(s.SeriesType, "anime") {
		kind = catalog.KindAnime
	}
	e := catalog.Entry{
		ID:       s.TvdbID,
		Kind:     kind,
		Name:     s.Title,
		Database: "tvdb",
	}
	for _, alt := range s.AlternateTitles {
		e.Aliases = append(e.Aliases, alt.Title)
	}
	return e
}

type SonarrClient struct {
	*client
}

// NewSonarrClient returns ErrNotConfigured when cfg lacks a URL or key.
func NewSonarrClient(cfg Config) (*SonarrClient, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &SonarrClient{client: c}, nil
}

func (c *SonarrClient) Ping(ctx context.Context) (*SystemStatus, error) {
	return c.ping(ctx)
}

func (c *SonarrClient) LookupSeries(ctx context.Context, term string) ([]Series, error) {
	var series []Series
	if err := c.get(ctx, "/api/v3/series/lookup", url.Values{"term": {term}}, &series); err != nil {
		return nil, fmt.Errorf("looking up series %q: %w", term, err)
	}
	return series, nil
}

// SearchSeries is LookupSeries converted to catalog entries.
func (c *SonarrClient) SearchSeries(ctx context.Context, name string) ([]catalog.Entry, error) {
	series, err := c.LookupSeries(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Entry, len(series))
	for i, s := range series {
		out[i] = s.Entry()
	}
	return out, nil
}
