// Package middleware provides the HTTP middleware chain of the API
// server: request IDs, request logging, panic recovery, per-request
// timeouts, CORS, and Prometheus request metrics.
//
// The server applies them so that, from the outside in, a request passes
// metrics, request ID assignment, logging, recovery, CORS, and finally
// the timeout guard before reaching a handler. Request IDs live in the
// request context via the logging package helpers, so handlers and the
// usage recorder read them without importing this package.
package middleware
