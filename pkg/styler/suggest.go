package styler

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

// suggestMaxDistance caps how far an id may be from the unknown input and
// still count as a plausible typo. Anything further apart is noise.
const suggestMaxDistance = 4

// Suggest returns up to max known ids ordered by edit distance from the
// unknown id, nearest first, ties broken alphabetically. Ids beyond the
// typo threshold are excluded, so the result may be empty.
func Suggest(unknown string, known []string, max int) []string {
	if unknown == "" || len(known) == 0 || max <= 0 {
		return nil
	}

	type candidate struct {
		id       string
		distance int
	}

	candidates := make([]candidate, 0, len(known))
	for _, id := range known {
		dist := levenshtein.ComputeDistance(unknown, id)
		if dist > suggestMaxDistance {
			continue
		}
		candidates = append(candidates, candidate{id: id, distance: dist})
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].id < candidates[j].id
	})

	if len(candidates) > max {
		candidates = candidates[:max]
	}
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
	}
	return ids
}
