package catalog

import (
	"sort"
	"strings"

	"mercator-hq/ganymede/pkg/pack"
)

const (
	// PlaceholderID is the id carried by the placeholder choice shown
	// when the catalog is empty. It never resolves.
	PlaceholderID = "__none__"

	// placeholder display parts for an empty catalog.
	placeholderCategory = "(no styles found)"
	placeholderName     = "(no styles)"
)

// Choice is one row of the display listing: the style's sort keys plus
// the rendered "<category> | <name> | <id>" label that selection
// surfaces show and hand back.
type Choice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Label    string `json:"label"`
}

// DisplayLabel renders the listing label for a style entry.
func DisplayLabel(category, name, id string) string {
	return category + " | " + name + " | " + id
}

// ParseChoiceID extracts the style id from a display label by taking the
// segment after the last "|". A bare id without separators passes
// through unchanged, so callers may supply either form.
func ParseChoiceID(label string) string {
	if i := strings.LastIndex(label, "|"); i >= 0 {
		return strings.TrimSpace(label[i+1:])
	}
	return strings.TrimSpace(label)
}

func placeholderChoice() Choice {
	return Choice{
		ID:       PlaceholderID,
		Name:     placeholderName,
		Category: placeholderCategory,
		Label:    DisplayLabel(placeholderCategory, placeholderName, PlaceholderID),
	}
}

// buildIndex derives the display ordering from a merged entry map: sort
// by category, then name, both case-insensitive, with id as the final
// tiebreaker so the ordering is total and stable across rebuilds.
func buildIndex(entries map[string]*pack.StyleEntry) []Choice {
	choices := make([]Choice, 0, len(entries))
	for _, entry := range entries {
		choices = append(choices, Choice{
			ID:       entry.ID,
			Name:     entry.Name,
			Category: entry.Category,
			Label:    DisplayLabel(entry.Category, entry.Name, entry.ID),
		})
	}

	sort.Slice(choices, func(i, j int) bool {
		ci, cj := strings.ToLower(choices[i].Category), strings.ToLower(choices[j].Category)
		if ci != cj {
			return ci < cj
		}
		ni, nj := strings.ToLower(choices[i].Name), strings.ToLower(choices[j].Name)
		if ni != nj {
			return ni < nj
		}
		return choices[i].ID < choices[j].ID
	})

	return choices
}

// categoryHasPrefix reports whether category equals prefix or lies under
// it in the slash-delimited path, comparing segments case-insensitively.
func categoryHasPrefix(category, prefix string) bool {
	catSegs := strings.Split(category, "/")
	preSegs := strings.Split(prefix, "/")
	if len(preSegs) > len(catSegs) {
		return false
	}
	for i, seg := range preSegs {
		if !strings.EqualFold(strings.TrimSpace(catSegs[i]), strings.TrimSpace(seg)) {
			return false
		}
	}
	return true
}
