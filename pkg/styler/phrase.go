package styler

import (
	"strings"

	"mercator-hq/ganymede/pkg/pack"
)

// MergePhrases combines ordered prefix phrases, the user text, and
// ordered suffix phrases into one phrase sequence. The user text is
// split on the exact ", " delimiter; each phrase is trimmed but not
// otherwise normalized. The combined sequence keeps relative order
// within each group, drops case-insensitive duplicates keeping the
// first occurrence's casing, and is rejoined with ", ".
func MergePhrases(prefix []string, userText string, suffix []string) string {
	userPhrases := pack.SplitPhrases(userText)

	combined := make([]string, 0, len(prefix)+len(userPhrases)+len(suffix))
	combined = append(combined, prefix...)
	combined = append(combined, userPhrases...)
	combined = append(combined, suffix...)

	return pack.JoinPhrases(DedupePhrases(combined))
}

// DedupePhrases removes case-insensitive duplicate phrases, preserving
// order and the casing of each phrase's first occurrence.
func DedupePhrases(phrases []string) []string {
	seen := make(map[string]struct{}, len(phrases))
	out := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		key := strings.ToLower(phrase)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, phrase)
	}
	return out
}

// ProseText wraps the user text in prose fragments: prefix, text, suffix
// joined by single spaces with blank segments omitted, whitespace
// collapsed. No phrase splitting or de-duplication applies.
func ProseText(prose pack.ProseTemplate, userText string) string {
	segments := make([]string, 0, 3)
	for _, segment := range []string{prose.Prefix, userText, prose.Suffix} {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		segments = append(segments, segment)
	}
	return pack.NormalizeSpace(strings.Join(segments, " "))
}
