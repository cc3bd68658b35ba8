package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"mercator-hq/ganymede/pkg/telemetry/logging"
)

const (
	// RequestIDHeader is the HTTP header for request ID.
	RequestIDHeader = "X-Request-ID"

	// maxRequestIDLength caps accepted client-supplied request IDs.
	// Longer values are discarded and replaced with a generated one.
	maxRequestIDLength = 128
)

// RequestIDMiddleware assigns every request an ID and stores it in the
// request context, where the logging helpers and the usage recorder pick
// it up. A client-supplied X-Request-ID is honored when it is printable
// ASCII of reasonable length; anything else is replaced with a generated
// ID. The ID is echoed back in the X-Request-ID response header.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := sanitizeRequestID(r.Header.Get(RequestIDHeader))
		if requestID == "" {
			requestID = generateRequestID()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sanitizeRequestID returns the ID unchanged when it is safe to log and
// echo, and "" when it should be regenerated. Control characters and
// spaces are rejected so the ID can never split a log line or smuggle a
// header.
func sanitizeRequestID(id string) string {
	if id == "" || len(id) > maxRequestIDLength {
		return ""
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= 0x20 || id[i] >= 0x7f {
			return ""
		}
	}
	return id
}

// generateRequestID generates a unique request ID using cryptographic
// random bytes. Format: 16 bytes (32 hex characters).
func generateRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the platform is broken in ways a
		// request ID will not fix.
		return "fallback-request-id"
	}
	return hex.EncodeToString(b)
}
