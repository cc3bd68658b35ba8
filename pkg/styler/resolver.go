package styler

import (
	"mercator-hq/ganymede/pkg/pack"
)

// variantChain returns the ordered variant names to try for a request.
// Two levels only: the requested variant, then the default. Additional
// fallback levels would be a change to this list, not new control flow.
func variantChain(requested string) []string {
	if requested == "" || requested == pack.VariantDefault {
		return []string{pack.VariantDefault}
	}
	return []string{requested, pack.VariantDefault}
}

// ResolveTemplate walks the variant fallback chain over a style's
// registered templates and returns the first hit together with the
// variant name that supplied it. An exhausted chain is a
// TemplateUnavailableError.
func ResolveTemplate(entry *pack.StyleEntry, variant string) (pack.Template, string, error) {
	for _, name := range variantChain(variant) {
		if tmpl, ok := entry.Template(name); ok {
			return tmpl, name, nil
		}
	}
	return nil, "", &TemplateUnavailableError{
		StyleID:   entry.ID,
		Variant:   variant,
		Available: entry.Variants(),
	}
}
