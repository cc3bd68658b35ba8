package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"mercator-hq/ganymede/pkg/config"
)

// CORSMiddleware adds Cross-Origin Resource Sharing headers according to
// the server CORS configuration and answers preflight OPTIONS requests
// with 204. With CORS disabled or no Origin header on the request it is
// a passthrough.
func CORSMiddleware(cfg *config.CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg == nil || !cfg.Enabled {
			return next
		}

		wildcard := slices.Contains(cfg.AllowedOrigins, "*")

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			switch {
			case wildcard:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case originAllowed(origin, cfg.AllowedOrigins):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				// The response depends on the Origin header, so caches
				// must key on it.
				w.Header().Add("Vary", "Origin")
			default:
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if r.Method == http.MethodOptions {
				if len(cfg.AllowedMethods) > 0 {
					w.Header().Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
				}
				if len(cfg.AllowedHeaders) > 0 {
					w.Header().Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
				}
				if cfg.MaxAge > 0 {
					w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed checks if an origin is in the allowed list. Origins
// compare case-insensitively because scheme and host are.
func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}
