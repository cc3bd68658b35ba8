package pack

import "strings"

// NormalizeSpace collapses runs of whitespace, including CR and LF, into
// single spaces and trims the ends. Applied to authored template strings
// at decode time and to prose output, never to user phrase content.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SplitPhrases splits s on the exact PhraseSeparator and trims each
// phrase. Phrases are not otherwise normalized: inner whitespace and
// casing survive. Empty phrases are dropped, so "a, , b" yields two
// phrases and a blank string yields none.
func SplitPhrases(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	parts := strings.Split(s, PhraseSeparator)
	phrases := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		phrases = append(phrases, part)
	}
	return phrases
}

// JoinPhrases joins phrases with PhraseSeparator.
func JoinPhrases(phrases []string) string {
	return strings.Join(phrases, PhraseSeparator)
}
