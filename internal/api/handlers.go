package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Nomadcxx/mediamatch/internal/catalog"
	"github.com/Nomadcxx/mediamatch/internal/collation"
	"github.com/Nomadcxx/mediamatch/internal/grouping"
	"github.com/Nomadcxx/mediamatch/internal/naming"
)

type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// GetHealth reports liveness.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(s.startedAt).Round(time.Second).String(),
	})
}

type NormalizeResponse struct {
	Input      string `json:"input"`
	Normalized string `json:"normalized"`
	Strict     bool   `json:"strict"`
}

// GetNormalize strips release clutter from ?name=.
func (s *Server) GetNormalize(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		writeError(w, http.StatusBadRequest, "missing_name", "query parameter name is required")
		return
	}
	strict, err := boolParam(r, "strict", false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_strict", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, NormalizeResponse{
		Input:      name,
		Normalized: naming.NormalizeRelease(name, strict),
		Strict:     strict,
	})
}

type MatchResponse struct {
	Entry       *catalog.Entry `json:"entry"`
	MatchedName string         `json:"matched_name"`
	Length      int            `json:"length"`
	Strict      bool           `json:"strict"`
	Similarity  float64        `json:"similarity"`
}

type LookupResponse struct {
	Query   string          `json:"query"`
	Kind    catalog.Kind    `json:"kind"`
	Matches []MatchResponse `json:"matches"`
}

// GetLookup ranks catalog candidates for ?q= in the ?kind= index.
func (s *Server) GetLookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "missing_query", "query parameter q is required")
		return
	}

	kind := catalog.KindMovie
	if k := q.Get("kind"); k != "" {
		parsed, err := catalog.ParseKind(k)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_kind", err.Error())
			return
		}
		kind = parsed
	}

	strict, err := boolParam(r, "strict", s.cfg.Matching.Strict)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_strict", err.Error())
		return
	}
	maxStart := s.cfg.Matching.MaxStartIndex
	if v := q.Get("max_start"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < collation.Unbounded {
			writeError(w, http.StatusBadRequest, "invalid_max_start", fmt.Sprintf("invalid max_start %q", v))
			return
		}
		maxStart = n
	}

	matches := s.catalog.Lookup(query, catalog.LookupOptions{Kind: kind, Strict: strict, MaxStartIndex: maxStart})
	resp := LookupResponse{Query: query, Kind: kind, Matches: make([]MatchResponse, len(matches))}
	for i, m := range matches {
		resp.Matches[i] = MatchResponse{
			Entry:       m.Entry,
			MatchedName: m.MatchedName,
			Length:      m.Length,
			Strict:      m.Strict,
			Similarity:  m.Similarity,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type ClassifyRequest struct {
	Paths []string `json:"paths"`
}

type FailureResponse struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type ClassifyResponse struct {
	Groups       []grouping.Group  `json:"groups"`
	Failed       []FailureResponse `json:"failed"`
	Unclassified []string          `json:"unclassified"`
}

// PostClassify classifies a batch of paths.
func (s *Server) PostClassify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if len(req.Paths) == 0 {
		writeError(w, http.StatusBadRequest, "missing_paths", "paths must not be empty")
		return
	}
	if len(req.Paths) > maxClassifyPaths {
		writeError(w, http.StatusRequestEntityTooLarge, "too_many_paths",
			fmt.Sprintf("at most %d paths per request", maxClassifyPaths))
		return
	}

	var pool grouping.Pool
	if workers := s.cfg.Grouping.Workers; workers > 1 {
		eg, _ := errgroup.WithContext(r.Context())
		eg.SetLimit(workers)
		pool = eg
	}
	res := s.grouper.ClassifyBatch(r.Context(), req.Paths, pool)

	resp := ClassifyResponse{
		Groups:       res.Groups,
		Failed:       make([]FailureResponse, len(res.Failed)),
		Unclassified: res.Unclassified(),
	}
	if resp.Groups == nil {
		resp.Groups = []grouping.Group{}
	}
	for i, f := range res.Failed {
		resp.Failed[i] = FailureResponse{Path: f.Path, Error: f.Err.Error()}
	}
	writeJSON(w, http.StatusOK, resp)
}

func boolParam(r *http.Request, name string, def bool) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", name, v)
	}
	return b, nil
}

// parseJSONBody is a helper to parse JSON request body
func parseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}
