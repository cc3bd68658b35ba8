// Package handlers contains the HTTP request handlers of the API server:
// prompt resolution, style listings, and catalog inspection and reload.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/ganymede/pkg/server/types"
	"mercator-hq/ganymede/pkg/styler"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
	"mercator-hq/ganymede/pkg/telemetry/tracing"
	"mercator-hq/ganymede/pkg/usage"
)

// ResolveHandler handles POST /v1/resolve: it decodes a resolution
// request, runs it through the styler, and maps typed resolution errors
// to their status codes. Every request is observed regardless of
// outcome: resolution metrics, the usage recorder, and trace attributes
// all see the same classification.
type ResolveHandler struct {
	styler    *styler.Styler
	recorder  *usage.Recorder
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewResolveHandler creates a resolve handler. The recorder and
// collector may be nil, which disables usage recording and metrics for
// this handler.
func NewResolveHandler(st *styler.Styler, recorder *usage.Recorder, collector *metrics.Collector, logger *slog.Logger) *ResolveHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResolveHandler{
		styler:    st,
		recorder:  recorder,
		collector: collector,
		logger:    logger.With("component", "server.resolve"),
	}
}

// ServeHTTP implements http.Handler.
func (h *ResolveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req styler.Request
	if errResp := decodeJSON(r, &req); errResp != nil {
		writeError(w, errResp)
		return
	}

	start := time.Now()
	res, err := h.styler.Resolve(r.Context(), &req)
	h.observe(r.Context(), &req, res, err, time.Since(start))

	if err != nil {
		writeError(w, mapResolveError(err))
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// observe reports one resolution to metrics, the usage recorder, and the
// active trace span. Failed resolutions are observed with the style id
// the request asked for, so misses are attributable.
func (h *ResolveHandler) observe(ctx context.Context, req *styler.Request, res *styler.Result, err error, duration time.Duration) {
	outcome := usage.Classify(res, err)
	fellBack := res != nil && res.Applied && req.Variant != "" && res.Variant != req.Variant

	if h.collector != nil {
		h.collector.RecordResolution(styleLabel(res, err), outcome, selectorSource(req), duration)
		if fellBack {
			h.collector.RecordVariantFallback(req.Variant)
		}
	}

	if h.recorder != nil {
		if recErr := h.recorder.Record(ctx, req, res, err); recErr != nil && !errors.Is(recErr, usage.ErrRecorderClosed) {
			h.logger.WarnContext(ctx, "usage recording failed", "error", recErr)
		}
	}

	tracing.SetResolveAttributes(ctx, selectorSource(req), outcome, fellBack)
	if res != nil && res.Applied {
		tracing.SetStyleAttributes(ctx, res.MatchedStyleID, "", res.StyleName)
		tracing.SetVariantAttribute(ctx, res.Variant)
	}
}

// mapResolveError converts typed resolution errors into the API error
// envelope: unknown style ids are 404 with suggestions, styles without a
// usable template are 422, everything else is a plain 500.
func mapResolveError(err error) *types.ErrorResponse {
	var notFound *styler.StyleNotFoundError
	if errors.As(err, &notFound) {
		return types.NewStyleNotFoundError(notFound.Error(), notFound.Suggestions)
	}

	var unavailable *styler.TemplateUnavailableError
	if errors.As(err, &unavailable) {
		return types.NewTemplateUnavailableError(unavailable.Error())
	}

	return types.NewServerError("style resolution failed")
}

// styleLabel picks the metric label for a resolution: the matched id on
// success, the requested id on a miss, "none" when no style was in play.
func styleLabel(res *styler.Result, err error) string {
	var notFound *styler.StyleNotFoundError
	if errors.As(err, &notFound) {
		if notFound.StyleID != "" {
			return notFound.StyleID
		}
		return "none"
	}

	var unavailable *styler.TemplateUnavailableError
	if errors.As(err, &unavailable) {
		return unavailable.StyleID
	}

	if res != nil && res.MatchedStyleID != "" {
		return res.MatchedStyleID
	}
	return "none"
}

// selectorSource classifies where the request's style selector came
// from: "override", "dropdown", or "none".
func selectorSource(req *styler.Request) string {
	switch {
	case req.StyleIDOverride != "":
		return "override"
	case req.StyleChoice != "":
		return "dropdown"
	default:
		return "none"
	}
}
