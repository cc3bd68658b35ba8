package pack

import (
	"sort"
	"strings"
)

const (
	// VariantDefault is the phrase-based variant every resolution falls
	// back to when the requested variant is not registered on a style.
	VariantDefault = "default"

	// CategoryUncategorized is assigned to entries that omit a category.
	CategoryUncategorized = "Uncategorized"

	// PhraseSeparator is the exact delimiter between phrases in phrase
	// template strings and in user prompt text. The space is significant:
	// "a,b" is one phrase, "a, b" is two.
	PhraseSeparator = ", "
)

// TemplateKind discriminates the concrete template types.
type TemplateKind string

const (
	// KindPhrase marks a template whose prefix and suffix are ordered
	// phrase sequences merged with the user prompt phrase-by-phrase.
	KindPhrase TemplateKind = "phrase"

	// KindProse marks a template whose prefix and suffix are sentence
	// fragments wrapped around the user prompt verbatim.
	KindProse TemplateKind = "prose"
)

// Template is the tagged variant over PhraseTemplate and ProseTemplate.
// Consumers type-switch on the concrete type and must treat an unknown
// kind as unusable rather than guessing.
type Template interface {
	// Kind reports the template discriminator.
	Kind() TemplateKind
}

// PhraseTemplate is a phrase-based template: ordered prefix phrases placed
// before the user prompt and ordered suffix phrases placed after it, with
// case-insensitive de-duplication applied across the combined sequence.
type PhraseTemplate struct {
	// Prefix is the ordered phrase sequence prepended to the user prompt.
	Prefix []string

	// Suffix is the ordered phrase sequence appended to the user prompt.
	Suffix []string
}

// Kind implements Template.
func (PhraseTemplate) Kind() TemplateKind { return KindPhrase }

// IsZero reports whether the template contributes no phrases at all.
func (t PhraseTemplate) IsZero() bool {
	return len(t.Prefix) == 0 && len(t.Suffix) == 0
}

// ProseTemplate is a prose-based template: free-text fragments joined
// around the user prompt with single spaces, no phrase splitting.
type ProseTemplate struct {
	// Prefix is the sentence fragment placed before the user prompt.
	Prefix string

	// Suffix is the sentence fragment placed after the user prompt.
	Suffix string
}

// Kind implements Template.
func (ProseTemplate) Kind() TemplateKind { return KindProse }

// IsZero reports whether both fragments are blank.
func (t ProseTemplate) IsZero() bool {
	return strings.TrimSpace(t.Prefix) == "" && strings.TrimSpace(t.Suffix) == ""
}

// StyleEntry is one named, categorized style definition with its variant
// templates. Entries are immutable once constructed; the catalog shares
// them across concurrent readers without copying.
type StyleEntry struct {
	// ID is the stable, unique style identifier (snake_case by
	// convention; uniqueness is enforced at merge time, casing is not).
	ID string

	// Name is the human-readable display name.
	Name string

	// Category is a slash-delimited path such as "Photography/Alt Process".
	// Entries without a category load under CategoryUncategorized.
	Category string

	// Templates maps variant name to its template. The VariantDefault
	// key, when present, always holds a PhraseTemplate.
	Templates map[string]Template

	// Tags carries informational labels. Never consulted by resolution.
	Tags []string

	// Source is the path of the document the entry was loaded from.
	// Later documents replace earlier ones on ID collision, so Source
	// identifies the winning definition.
	Source string
}

// Template returns the template registered for the given variant.
func (e *StyleEntry) Template(variant string) (Template, bool) {
	t, ok := e.Templates[variant]
	return t, ok
}

// HasVariant reports whether the variant is registered on this entry.
func (e *StyleEntry) HasVariant(variant string) bool {
	_, ok := e.Templates[variant]
	return ok
}

// Variants returns the registered variant names in sorted order.
func (e *StyleEntry) Variants() []string {
	names := make([]string, 0, len(e.Templates))
	for name := range e.Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Document is one decoded, validated pack document. Styles preserves the
// document's authoring order, which matters only for duplicate-ID
// precedence within a single file (later entries win, same as across
// files).
type Document struct {
	// Version is the document format version marker.
	Version int

	// Source is the file path the document was decoded from.
	Source string

	// Styles holds the entries that passed validation, in document order.
	Styles []StyleEntry
}
