package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/mediamatch/internal/catalog"
	"github.com/Nomadcxx/mediamatch/internal/config"
	"github.com/Nomadcxx/mediamatch/internal/grouping"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()
	cat := catalog.New(catalog.StaticProvider{
		catalog.KindMovie: {
			{ID: 603, Kind: catalog.KindMovie, Name: "The Matrix", Year: 1999},
			{ID: 1402, Kind: catalog.KindMovie, Name: "Dexter", Year: 2010},
		},
		catalog.KindSeries: {
			{ID: 81189, Kind: catalog.KindSeries, Name: "Breaking Bad", Aliases: []string{"Breaking Bad (2008)"}},
			{ID: 79349, Kind: catalog.KindSeries, Name: "Dexter"},
		},
	})
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	grouper := grouping.New(cat, grouping.WithFs(afero.NewMemMapFs()))

	srv := httptest.NewServer(NewServer(cat, grouper, cfg, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, header http.Header, out interface{}) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestGetHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	var health HealthResponse
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/v1/health", nil, &health))
	assert.Equal(t, "ok", health.Status)
}

func TestGetNormalize(t *testing.T) {
	srv := newTestServer(t, nil)

	var resp NormalizeResponse
	status := getJSON(t, srv.URL+"/api/v1/normalize?name=The.Matrix.1999.1080p.BluRay.x264-GROUP.mkv", nil, &resp)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "The Matrix 1999", resp.Normalized)
	assert.False(t, resp.Strict)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/v1/normalize", nil, nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/v1/normalize?name=x&strict=maybe", nil, nil))
}

func TestGetLookup(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name   string
		query  string
		status int
		ids    []int
	}{
		{"series dedupes aliases", "?q=Breaking+Bad&kind=series&strict=true", http.StatusOK, []int{81189}},
		{"movie default kind", "?q=The.Matrix.1999.mkv", http.StatusOK, []int{603}},
		{"too short", "?q=ab&kind=movie", http.StatusOK, nil},
		{"missing query", "", http.StatusBadRequest, nil},
		{"bad kind", "?q=Dexter&kind=podcast", http.StatusBadRequest, nil},
		{"bad max start", "?q=Dexter&max_start=-2", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp LookupResponse
			var out interface{}
			if tt.status == http.StatusOK {
				out = &resp
			}
			assert.Equal(t, tt.status, getJSON(t, srv.URL+"/api/v1/lookup"+tt.query, nil, out))
			var ids []int
			for _, m := range resp.Matches {
				ids = append(ids, m.Entry.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestPostClassify(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) { cfg.Grouping.Workers = 3 })

	body := `{"paths": [
		"/downloads/Breaking.Bad.S01E01.720p.BluRay.x264-GROUP.mkv",
		"/downloads/The.Matrix.1999.1080p.BluRay.x264-GROUP.mkv",
		"/downloads/Dexter.S01.mkv",
		"/downloads/holiday video.mkv"
	]}`
	resp, err := http.Post(srv.URL+"/api/v1/classify", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Groups []struct {
			Path     string   `json:"path"`
			Types    []string `json:"types"`
			Excluded []string `json:"excluded"`
			Decision *struct {
				Outcome string   `json:"outcome"`
				Fired   []string `json:"fired"`
			} `json:"decision"`
		} `json:"groups"`
		Failed       []FailureResponse `json:"failed"`
		Unclassified []string          `json:"unclassified"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	require.Len(t, out.Groups, 4)
	assert.Equal(t, []string{"series"}, out.Groups[0].Types)
	assert.Equal(t, []string{"movie", "anime", "music"}, out.Groups[0].Excluded)
	assert.Equal(t, []string{"movie"}, out.Groups[1].Types)
	assert.Equal(t, []string{"series"}, out.Groups[2].Types)
	require.NotNil(t, out.Groups[2].Decision)
	assert.Equal(t, "series", out.Groups[2].Decision.Outcome)
	assert.Empty(t, out.Groups[3].Types)
	assert.Empty(t, out.Failed)
	assert.Equal(t, []string{"/downloads/holiday video.mkv"}, out.Unclassified)
}

func TestPostClassify_BadRequests(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, body := range []string{`not json`, `{"paths": []}`, `{"paths": ["/a.mkv"], "extra": 1}`} {
		resp, err := http.Post(srv.URL+"/api/v1/classify", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) { cfg.Server.APIKey = "secret" })

	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/v1/health", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, getJSON(t, srv.URL+"/api/v1/normalize?name=abc", nil, nil))
	assert.Equal(t, http.StatusUnauthorized,
		getJSON(t, srv.URL+"/api/v1/normalize?name=abc", http.Header{"X-Api-Key": {"wrong"}}, nil))
	assert.Equal(t, http.StatusOK,
		getJSON(t, srv.URL+"/api/v1/normalize?name=abc", http.Header{"X-Api-Key": {"secret"}}, nil))
}

func TestAuthEnabled(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"no key - auth disabled", "", false},
		{"key set - auth enabled", "secret", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Server.APIKey = tt.key
			assert.Equal(t, tt.want, NewServer(nil, nil, cfg, nil).AuthEnabled())
		})
	}
}
