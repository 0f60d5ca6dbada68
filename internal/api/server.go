// Package api exposes normalization, catalog lookup and classification over
// HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Nomadcxx/mediamatch/internal/catalog"
	"github.com/Nomadcxx/mediamatch/internal/config"
	"github.com/Nomadcxx/mediamatch/internal/grouping"
	"github.com/Nomadcxx/mediamatch/internal/logging"
)

// Limits for a single POST /classify request.
const (
	maxClassifyPaths = 10000
	maxBodyBytes     = 8 << 20
)

// Server implements the API
type Server struct {
	catalog   *catalog.Catalog
	grouper   *grouping.Grouper
	cfg       *config.Config
	logger    *logging.Logger
	startedAt time.Time
}

// NewServer creates a new API server
func NewServer(cat *catalog.Catalog, grouper *grouping.Grouper, cfg *config.Config, logger *logging.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{
		catalog:   cat,
		grouper:   grouper,
		cfg:       cfg,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Handler returns the HTTP handler with CORS and the API routes.
func (s *Server) Handler() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Api-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Mount("/api/v1", s.apiRouter())
	return r
}

func (s *Server) apiRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.SetHeader("Content-Type", "application/json"))
	r.Use(s.authMiddleware)

	r.Get("/health", s.GetHealth)
	r.Get("/normalize", s.GetNormalize)
	r.Get("/lookup", s.GetLookup)
	r.Post("/classify", s.PostClassify)

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("api", "Request",
			logging.F("method", r.Method),
			logging.F("path", r.URL.Path),
			logging.F("status", ww.Status()),
			logging.F("duration", time.Since(start)),
			logging.F("request_id", middleware.GetReqID(r.Context())))
	})
}
