package styler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mercator-hq/ganymede/pkg/catalog"
	"mercator-hq/ganymede/pkg/pack"
)

// Config contains styler configuration.
type Config struct {
	// DefaultVariant is the variant applied when a request names none.
	DefaultVariant string `yaml:"default_variant" json:"default_variant"`

	// MaxSuggestions caps how many near-miss ids a StyleNotFoundError
	// carries. Zero disables suggestions.
	MaxSuggestions int `yaml:"max_suggestions" json:"max_suggestions"`
}

// DefaultConfig returns the default styler configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultVariant: pack.VariantDefault,
		MaxSuggestions: 3,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.DefaultVariant == "" {
		return fmt.Errorf("default_variant cannot be empty")
	}
	if c.MaxSuggestions < 0 {
		return fmt.Errorf("max_suggestions cannot be negative: %d", c.MaxSuggestions)
	}
	return nil
}

// Request is one prompt resolution request.
type Request struct {
	// Prompt is the user's free-text prompt.
	Prompt string `json:"prompt"`

	// ApplyStyle toggles styling. When false the prompt passes through
	// unchanged and no lookup of any kind happens.
	ApplyStyle bool `json:"apply_style"`

	// StyleChoice is the dropdown selection: either a display label of
	// the form "<category> | <name> | <id>" or a bare id.
	StyleChoice string `json:"style_choice,omitempty"`

	// StyleIDOverride is an explicit style id that bypasses the dropdown
	// choice entirely when non-empty.
	StyleIDOverride string `json:"style_id_override,omitempty"`

	// Variant names the template variant to resolve. Empty means the
	// configured default.
	Variant string `json:"variant,omitempty"`
}

// Result is the outcome of a prompt resolution.
type Result struct {
	// FinalPrompt is the text handed to downstream encoding.
	FinalPrompt string `json:"final_prompt"`

	// MatchedStyleID is the id of the applied style, empty when styling
	// was disabled.
	MatchedStyleID string `json:"matched_style_id"`

	// StyleName is the display name of the applied style.
	StyleName string `json:"style_name,omitempty"`

	// Variant is the variant whose template produced the output, which
	// is the default when the requested variant fell back.
	Variant string `json:"variant,omitempty"`

	// TemplateKind reports which template family produced the output.
	// Empty when no transformation was applied.
	TemplateKind pack.TemplateKind `json:"template_kind,omitempty"`

	// Applied reports whether a style was resolved for this request.
	Applied bool `json:"applied"`

	// CatalogVersion is the content version of the catalog the request
	// resolved against.
	CatalogVersion string `json:"catalog_version,omitempty"`
}

// Styler resolves prompts against the style catalog.
type Styler struct {
	store  *catalog.Store
	logger *slog.Logger
	config *Config
}

// New creates a styler backed by the given catalog store.
func New(store *catalog.Store, logger *slog.Logger, config *Config) (*Styler, error) {
	if store == nil {
		return nil, fmt.Errorf("catalog store cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid styler config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Styler{store: store, logger: logger, config: config}, nil
}

// Resolve applies the requested style to the prompt and returns the
// final text. A disabled ApplyStyle toggle returns the prompt unchanged
// without consulting the catalog; an enabled toggle with an unresolvable
// id fails with StyleNotFoundError, and a resolvable style without a
// usable variant fails with TemplateUnavailableError.
func (s *Styler) Resolve(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}

	if !req.ApplyStyle {
		return &Result{FinalPrompt: req.Prompt}, nil
	}

	cat, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog unavailable: %w", err)
	}

	styleID := s.effectiveStyleID(req)
	entry, ok := cat.Get(styleID)
	if styleID == "" || styleID == catalog.PlaceholderID || !ok {
		return nil, &StyleNotFoundError{
			StyleID:      styleID,
			Suggestions:  Suggest(styleID, cat.IDs(), s.config.MaxSuggestions),
			CatalogEmpty: cat.IsEmpty(),
		}
	}

	variant := req.Variant
	if variant == "" {
		variant = s.config.DefaultVariant
	}
	tmpl, resolvedVariant, err := ResolveTemplate(entry, variant)
	if err != nil {
		return nil, err
	}

	final, kind, appliedVariant := applyTemplate(entry, tmpl, resolvedVariant, req.Prompt)

	s.logger.Debug("prompt resolved",
		"style_id", entry.ID,
		"variant", appliedVariant,
		"kind", string(kind),
		"catalog_version", cat.Version(),
	)

	return &Result{
		FinalPrompt:    final,
		MatchedStyleID: entry.ID,
		StyleName:      entry.Name,
		Variant:        appliedVariant,
		TemplateKind:   kind,
		Applied:        true,
		CatalogVersion: cat.Version(),
	}, nil
}

// effectiveStyleID determines the id a request addresses: a non-empty
// override always wins over the dropdown choice.
func (s *Styler) effectiveStyleID(req *Request) string {
	if id := strings.TrimSpace(req.StyleIDOverride); id != "" {
		return id
	}
	return catalog.ParseChoiceID(req.StyleChoice)
}

// applyTemplate renders the resolved template against the prompt and
// reports the output, the template family that produced it, and the
// variant that ended up applying.
//
// A prose template without a suffix fragment is treated as unusable:
// resolution degrades to the style's default phrase template when one is
// registered, otherwise the prompt passes through unchanged. That is a
// graceful degradation, not an error, so misauthored prose variants
// never break prompt flow.
func applyTemplate(entry *pack.StyleEntry, tmpl pack.Template, variant, prompt string) (string, pack.TemplateKind, string) {
	switch t := tmpl.(type) {
	case pack.PhraseTemplate:
		return MergePhrases(t.Prefix, prompt, t.Suffix), pack.KindPhrase, variant

	case pack.ProseTemplate:
		if strings.TrimSpace(t.Suffix) == "" {
			if def, ok := entry.Template(pack.VariantDefault); ok {
				if phrase, ok := def.(pack.PhraseTemplate); ok {
					return MergePhrases(phrase.Prefix, prompt, phrase.Suffix), pack.KindPhrase, pack.VariantDefault
				}
			}
			return prompt, "", variant
		}
		return ProseText(t, prompt), pack.KindProse, variant

	default:
		// Unknown template kinds pass the prompt through rather than
		// guessing at semantics.
		return prompt, "", variant
	}
}

// Config returns the styler's configuration.
func (s *Styler) Config() *Config {
	return s.config
}
