package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mercator-hq/ganymede/pkg/server/types"
)

func TestRecoveryMiddleware(t *testing.T) {
	t.Run("passes through normal requests", func(t *testing.T) {
		handler := RecoveryMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/resolve", nil))

		if w.Code != http.StatusCreated {
			t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
		}
	})

	t.Run("converts panic to JSON 500", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		handler := RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("catalog exploded")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/styles", nil))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", w.Code)
		}

		var resp types.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("response is not the error envelope: %v", err)
		}
		if resp.Error.Type != types.ErrorTypeServerError {
			t.Errorf("error type = %q, want %q", resp.Error.Type, types.ErrorTypeServerError)
		}
		if resp.Error.Code != types.CodeInternalError {
			t.Errorf("error code = %q, want %q", resp.Error.Code, types.CodeInternalError)
		}

		out := buf.String()
		if !strings.Contains(out, "panic recovered") || !strings.Contains(out, "catalog exploded") {
			t.Errorf("panic not logged:\n%s", out)
		}
		if !strings.Contains(out, "stack") {
			t.Errorf("stack trace not logged:\n%s", out)
		}
	})

	t.Run("repanics on ErrAbortHandler", func(t *testing.T) {
		handler := RecoveryMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		}))

		defer func() {
			if rec := recover(); rec != http.ErrAbortHandler {
				t.Errorf("recovered %v, want http.ErrAbortHandler", rec)
			}
		}()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		t.Error("ErrAbortHandler was swallowed")
	})
}
