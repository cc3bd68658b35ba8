package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"mercator-hq/ganymede/pkg/server/types"
)

// MaxRequestBodySize caps request bodies at 1MB. Resolution requests
// carry a prompt and a few selector fields; anything near the cap is not
// a legitimate request.
const MaxRequestBodySize = 1 << 20

// decodeJSON reads and unmarshals a request body into dst. A non-nil
// return is the error response to send; the request is not usable.
func decodeJSON(r *http.Request, dst any) *types.ErrorResponse {
	if r.Body == nil {
		return types.NewInvalidRequestError("request body is required", "", types.CodeMissingField)
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		return types.NewInvalidRequestError("failed to read request body", "", types.CodeInvalidJSON)
	}
	if len(body) > MaxRequestBodySize {
		return types.NewInvalidRequestError(
			fmt.Sprintf("request body exceeds %d bytes", MaxRequestBodySize), "", types.CodeRequestTooLarge)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return types.NewInvalidRequestError("request body is empty", "", types.CodeMissingField)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return types.NewInvalidRequestError(
			fmt.Sprintf("request body is not valid JSON: %v", err), "", types.CodeInvalidJSON)
	}

	return nil
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error envelope with its type's status code.
func writeError(w http.ResponseWriter, resp *types.ErrorResponse) {
	writeJSON(w, resp.Error.HTTPStatusCode(), resp)
}

// NotFound is the fallback handler for unmatched routes. It keeps 404s
// in the same JSON envelope as every other error.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, types.NewRouteNotFoundError(
		fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path)))
}
