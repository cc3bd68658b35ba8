package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"mercator-hq/ganymede/pkg/server/types"
)

// TimeoutMiddleware bounds request handling. The handler runs in its own
// goroutine against a buffered response writer; when the deadline
// passes first, the client receives a JSON 504 and whatever the handler
// writes afterwards is discarded. The handler's context is cancelled at
// the deadline, so context-aware work stops promptly.
//
// Buffering means the timeout applies to whole responses, not streams.
// Every endpoint here returns small JSON or text bodies, which is
// exactly the shape this trades for.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := newTimeoutWriter()
			done := make(chan struct{})
			panicChan := make(chan any, 1)

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicChan <- p
					}
				}()
				next.ServeHTTP(tw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case p := <-panicChan:
				panic(p)

			case <-done:
				tw.flushTo(w)

			case <-ctx.Done():
				tw.markTimedOut()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusGatewayTimeout)
				_ = json.NewEncoder(w).Encode(types.NewGatewayTimeoutError(
					"request timed out before a response was produced"))
			}
		})
	}
}

// timeoutWriter buffers the handler's response so a late handler and the
// timeout response can never interleave on the real connection.
type timeoutWriter struct {
	header http.Header

	mu          sync.Mutex
	buf         bytes.Buffer
	statusCode  int
	wroteHeader bool
	timedOut    bool
}

func newTimeoutWriter() *timeoutWriter {
	return &timeoutWriter{
		header:     make(http.Header),
		statusCode: http.StatusOK,
	}
}

// Header returns the shadow header map. Only the handler goroutine
// touches it before the done signal, and only flushTo reads it after.
func (tw *timeoutWriter) Header() http.Header {
	return tw.header
}

// WriteHeader records the status code. The first call wins; writes after
// a timeout are dropped.
func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.wroteHeader || tw.timedOut {
		return
	}
	tw.statusCode = code
	tw.wroteHeader = true
}

// Write buffers the body. Writes after a timeout report the deadline
// error so handlers can stop producing output.
func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, context.DeadlineExceeded
	}
	if !tw.wroteHeader {
		tw.statusCode = http.StatusOK
		tw.wroteHeader = true
	}
	return tw.buf.Write(b)
}

// markTimedOut switches the writer into discard mode.
func (tw *timeoutWriter) markTimedOut() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.timedOut = true
}

// flushTo replays the buffered response onto the real writer. Called
// only after the handler goroutine finished.
func (tw *timeoutWriter) flushTo(w http.ResponseWriter) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	dst := w.Header()
	for k, vv := range tw.header {
		dst[k] = vv
	}
	w.WriteHeader(tw.statusCode)
	_, _ = w.Write(tw.buf.Bytes())
}
