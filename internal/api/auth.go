package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthEnabled reports whether requests need an API key.
func (s *Server) AuthEnabled() bool {
	return s.cfg != nil && s.cfg.Server.APIKey != ""
}

// authMiddleware checks the X-Api-Key header. /health is always public.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/health") || !s.AuthEnabled() {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get("X-Api-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.Server.APIKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
