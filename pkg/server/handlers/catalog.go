package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/ganymede/pkg/catalog"
	"mercator-hq/ganymede/pkg/server/types"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

// CatalogHandler serves catalog inspection and reload.
type CatalogHandler struct {
	store     *catalog.Store
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewCatalogHandler creates a catalog handler. The collector may be
// nil, which disables reload metrics.
func NewCatalogHandler(store *catalog.Store, collector *metrics.Collector, logger *slog.Logger) *CatalogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogHandler{
		store:     store,
		collector: collector,
		logger:    logger.With("component", "server.catalog"),
	}
}

// Info handles GET /v1/catalog: version, size, source flags, and the
// load diagnostics of the current build.
func (h *CatalogHandler) Info(w http.ResponseWriter, r *http.Request) {
	cat, err := h.store.Get(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "catalog unavailable", "error", err)
		writeError(w, types.NewServiceUnavailableError("style catalog is unavailable"))
		return
	}

	writeJSON(w, http.StatusOK, catalogResponse(cat))
}

// Reload handles POST /v1/catalog/reload: it forces a rebuild from the
// sources regardless of signature state and reports the result. A
// reload that merges zero styles still succeeds; an empty catalog is a
// degraded state, not an error.
func (h *CatalogHandler) Reload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	cat, err := h.store.Rebuild(r.Context())
	duration := time.Since(start)

	if err != nil {
		if h.collector != nil {
			h.collector.RecordCatalogLoad("reload", "error", duration)
		}
		h.logger.ErrorContext(r.Context(), "catalog reload failed", "error", err)
		writeError(w, types.NewServiceUnavailableError("catalog reload failed"))
		return
	}

	if h.collector != nil {
		h.collector.RecordCatalogLoad("reload", "success", duration)
	}
	h.logger.InfoContext(r.Context(), "catalog reloaded",
		"version", cat.Version(),
		"styles", cat.Count(),
		"diagnostics", len(cat.Diagnostics()),
		"duration_ms", duration.Milliseconds(),
	)

	writeJSON(w, http.StatusOK, types.ReloadResponse{
		Status:          "reloaded",
		Version:         cat.Version(),
		StyleCount:      cat.Count(),
		DiagnosticCount: len(cat.Diagnostics()),
		DurationMs:      duration.Milliseconds(),
	})
}

// catalogResponse flattens a catalog into its API shape.
func catalogResponse(cat *catalog.Catalog) types.CatalogResponse {
	diags := cat.Diagnostics()
	infos := make([]types.DiagnosticInfo, 0, len(diags))
	packFiles := 0
	for _, d := range diags {
		if d.Outcome == catalog.OutcomeLoaded {
			packFiles++
		}
		infos = append(infos, types.DiagnosticInfo{
			File:    d.File,
			Outcome: string(d.Outcome),
			StyleID: d.StyleID,
			Detail:  d.Detail,
		})
	}

	return types.CatalogResponse{
		Version:       cat.Version(),
		BuiltAt:       cat.BuiltAt(),
		StyleCount:    cat.Count(),
		CategoryCount: len(cat.Categories()),
		PackFileCount: packFiles,
		FromLegacy:    cat.FromLegacy(),
		Empty:         cat.IsEmpty(),
		Diagnostics:   infos,
	}
}
