package httpapi

import (
	"net/http"
	"time"
)

// recoverMiddleware converts a panicking handler into a 500 response
// instead of taking the whole process down, matching spec.md §7's "internal
// errors must never crash the server."
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("recovered from panic")
				writeJSON(w, 500, errResp("internal error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware emits one structured log line per request, grounded on
// the teacher's zerolog usage in internal/server.go.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
