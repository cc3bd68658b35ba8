package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"mercator-hq/ganymede/pkg/catalog"
	"mercator-hq/ganymede/pkg/pack"
	"mercator-hq/ganymede/pkg/server/types"
	"mercator-hq/ganymede/pkg/styler"
)

// StylesHandler serves the style listing endpoints. Listings come from
// the current catalog; the first request after an invalidation pays for
// the rebuild.
type StylesHandler struct {
	store          *catalog.Store
	maxSuggestions int
	logger         *slog.Logger
}

// NewStylesHandler creates a styles handler. maxSuggestions caps the
// near-miss suggestions on unknown-id 404s; zero disables them.
func NewStylesHandler(store *catalog.Store, maxSuggestions int, logger *slog.Logger) *StylesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StylesHandler{
		store:          store,
		maxSuggestions: maxSuggestions,
		logger:         logger.With("component", "server.styles"),
	}
}

// List handles GET /v1/styles. An optional ?category= parameter filters
// to a category subtree; matching is case-insensitive and
// segment-aware. An empty catalog returns an empty listing, not an
// error.
func (h *StylesHandler) List(w http.ResponseWriter, r *http.Request) {
	cat, err := h.store.Get(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "catalog unavailable", "error", err)
		writeError(w, types.NewServiceUnavailableError("style catalog is unavailable"))
		return
	}

	category := r.URL.Query().Get("category")
	var entries []*pack.StyleEntry
	if category != "" {
		entries = cat.ByCategoryPrefix(category)
	} else {
		entries = cat.Entries()
	}

	styles := make([]types.StyleSummary, 0, len(entries))
	for _, entry := range entries {
		styles = append(styles, summarize(entry))
	}

	writeJSON(w, http.StatusOK, types.StyleListResponse{
		Styles:         styles,
		Count:          len(styles),
		Category:       category,
		CatalogVersion: cat.Version(),
	})
}

// GetByID handles GET /v1/styles/{id}. Unknown ids return 404 with the
// closest known ids as suggestions.
func (h *StylesHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	cat, err := h.store.Get(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "catalog unavailable", "error", err)
		writeError(w, types.NewServiceUnavailableError("style catalog is unavailable"))
		return
	}

	id := r.PathValue("id")
	entry, ok := cat.Get(id)
	if !ok {
		suggestions := styler.Suggest(id, cat.IDs(), h.maxSuggestions)
		writeError(w, types.NewStyleNotFoundError(
			fmt.Sprintf("style not found: %q", id), suggestions))
		return
	}

	writeJSON(w, http.StatusOK, summarize(entry))
}

// summarize converts a catalog entry into its API shape. Template text
// stays server-side.
func summarize(entry *pack.StyleEntry) types.StyleSummary {
	return types.StyleSummary{
		ID:       entry.ID,
		Name:     entry.Name,
		Category: entry.Category,
		Label:    catalog.DisplayLabel(entry.Category, entry.Name, entry.ID),
		Variants: entry.Variants(),
		Tags:     entry.Tags,
		Source:   entry.Source,
	}
}
