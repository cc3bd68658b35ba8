package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"mercator-hq/ganymede/pkg/server/types"
	"mercator-hq/ganymede/pkg/telemetry/logging"
)

// RecoveryMiddleware recovers from handler panics, logs the panic value
// with a stack trace, and returns a JSON 500. http.ErrAbortHandler is
// re-raised so deliberate connection aborts keep their net/http
// semantics.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.ErrorContext(r.Context(), "panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", logging.GetRequestID(r.Context()),
					"stack", string(debug.Stack()),
				)

				// If the handler already started the response there is
				// nothing left to salvage; the write below turns into a
				// superfluous-header log line at worst.
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(types.NewServerError("internal server error"))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
