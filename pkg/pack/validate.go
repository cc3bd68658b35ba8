package pack

import "strings"

// buildEntry validates one raw entry and converts it into its immutable
// form. Required fields are id and name; category defaults to
// CategoryUncategorized; the entry must register at least one usable
// template (a default phrase object or a non-blank prose variant).
func buildEntry(raw rawEntry, path string, index int) (StyleEntry, error) {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return StyleEntry{}, &EntryError{
			FilePath: path,
			Index:    index,
			Field:    "id",
			Message:  "missing required field",
		}
	}

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return StyleEntry{}, &EntryError{
			FilePath: path,
			Index:    index,
			StyleID:  id,
			Field:    "name",
			Message:  "missing required field",
		}
	}

	category := strings.TrimSpace(raw.Category)
	if category == "" {
		category = CategoryUncategorized
	}

	templates := make(map[string]Template)

	// Prose variants. Blank variants are authoring noise, not errors:
	// they are skipped so resolution falls through to default. The
	// "default" name is reserved for the phrase template and never
	// registers as prose.
	for variant, body := range raw.Models {
		variant = strings.TrimSpace(variant)
		if variant == "" || variant == VariantDefault {
			continue
		}
		prose := ProseTemplate{
			Prefix: NormalizeSpace(body.Prefix),
			Suffix: NormalizeSpace(body.Suffix),
		}
		if prose.IsZero() {
			continue
		}
		templates[variant] = prose
	}

	if raw.Default != nil {
		templates[VariantDefault] = PhraseTemplate{
			Prefix: SplitPhrases(NormalizeSpace(raw.Default.Prefix)),
			Suffix: SplitPhrases(NormalizeSpace(raw.Default.Suffix)),
		}
	}

	if len(templates) == 0 {
		return StyleEntry{}, &EntryError{
			FilePath: path,
			Index:    index,
			StyleID:  id,
			Field:    "default",
			Message:  "entry defines no usable template",
		}
	}

	var tags []string
	for _, tag := range raw.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}

	return StyleEntry{
		ID:        id,
		Name:      name,
		Category:  category,
		Templates: templates,
		Tags:      tags,
		Source:    path,
	}, nil
}
