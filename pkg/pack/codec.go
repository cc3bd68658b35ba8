package pack

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Codec identifies the on-disk encoding of a pack document.
type Codec string

const (
	// CodecJSON decodes documents with encoding/json.
	CodecJSON Codec = "json"

	// CodecYAML decodes documents with gopkg.in/yaml.v3.
	CodecYAML Codec = "yaml"
)

var packExtensions = map[string]Codec{
	".json": CodecJSON,
	".yaml": CodecYAML,
	".yml":  CodecYAML,
}

// CodecForPath returns the codec implied by the path's extension and
// whether the extension is a recognized pack extension at all.
func CodecForPath(path string) (Codec, bool) {
	codec, ok := packExtensions[strings.ToLower(filepath.Ext(path))]
	return codec, ok
}

// rawEntry is the wire shape of one style entry before validation.
// Unknown fields are ignored by both codecs.
type rawEntry struct {
	ID       string                 `json:"id" yaml:"id"`
	Name     string                 `json:"name" yaml:"name"`
	Category string                 `json:"category" yaml:"category"`
	Default  *rawTemplate           `json:"default" yaml:"default"`
	Models   map[string]rawTemplate `json:"models" yaml:"models"`
	Tags     []string               `json:"tags" yaml:"tags"`
}

// rawTemplate is the wire shape of a template body: comma-joined phrase
// strings for the default template, sentence fragments for prose variants.
type rawTemplate struct {
	Prefix string `json:"prefix" yaml:"prefix"`
	Suffix string `json:"suffix" yaml:"suffix"`
}

// Decode parses data as a pack document located at path, selecting the
// codec by extension. The returned issues hold one *EntryError per entry
// that failed validation; those entries are skipped while their siblings
// load. A document-level failure is returned as a *ParseError and yields
// no document at all.
func Decode(path string, data []byte) (*Document, []error, error) {
	codec, ok := CodecForPath(path)
	if !ok {
		return nil, nil, &ParseError{
			FilePath: path,
			Format:   string(CodecJSON),
			Message:  "unrecognized pack file extension",
		}
	}

	switch codec {
	case CodecYAML:
		return decodeYAML(path, data)
	default:
		return decodeJSON(path, data)
	}
}

type jsonEnvelope struct {
	Version int               `json:"version"`
	Styles  []json.RawMessage `json:"styles"`
}

func decodeJSON(path string, data []byte) (*Document, []error, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, &ParseError{
			FilePath: path,
			Format:   string(CodecJSON),
			Message:  "invalid pack document",
			Cause:    err,
		}
	}

	doc := &Document{Version: env.Version, Source: path}
	var issues []error

	for i, raw := range env.Styles {
		var entry rawEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			issues = append(issues, &EntryError{
				FilePath: path,
				Index:    i,
				Message:  "entry is not a style object",
				Cause:    err,
			})
			continue
		}

		style, err := buildEntry(entry, path, i)
		if err != nil {
			issues = append(issues, err)
			continue
		}
		doc.Styles = append(doc.Styles, style)
	}

	return doc, issues, nil
}

type yamlEnvelope struct {
	Version int         `yaml:"version"`
	Styles  []yaml.Node `yaml:"styles"`
}

func decodeYAML(path string, data []byte) (*Document, []error, error) {
	var env yamlEnvelope
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, nil, &ParseError{
			FilePath: path,
			Format:   string(CodecYAML),
			Message:  "invalid pack document",
			Cause:    err,
		}
	}

	doc := &Document{Version: env.Version, Source: path}
	var issues []error

	for i, node := range env.Styles {
		var entry rawEntry
		if err := node.Decode(&entry); err != nil {
			issues = append(issues, &EntryError{
				FilePath: path,
				Index:    i,
				Message:  "entry is not a style object",
				Cause:    err,
			})
			continue
		}

		style, err := buildEntry(entry, path, i)
		if err != nil {
			issues = append(issues, err)
			continue
		}
		doc.Styles = append(doc.Styles, style)
	}

	return doc, issues, nil
}

// Encode serializes a document for the codec implied by path. Used by
// authoring tools; the engine itself only reads packs.
func Encode(path string, doc *Document) ([]byte, error) {
	type wireTemplate struct {
		Prefix string `json:"prefix" yaml:"prefix"`
		Suffix string `json:"suffix" yaml:"suffix"`
	}
	type wireEntry struct {
		ID       string                  `json:"id" yaml:"id"`
		Name     string                  `json:"name" yaml:"name"`
		Category string                  `json:"category" yaml:"category"`
		Default  *wireTemplate           `json:"default,omitempty" yaml:"default,omitempty"`
		Models   map[string]wireTemplate `json:"models,omitempty" yaml:"models,omitempty"`
		Tags     []string                `json:"tags,omitempty" yaml:"tags,omitempty"`
	}
	type wireEnvelope struct {
		Version int         `json:"version" yaml:"version"`
		Styles  []wireEntry `json:"styles" yaml:"styles"`
	}

	env := wireEnvelope{Version: doc.Version, Styles: make([]wireEntry, 0, len(doc.Styles))}
	for _, style := range doc.Styles {
		entry := wireEntry{
			ID:       style.ID,
			Name:     style.Name,
			Category: style.Category,
			Tags:     style.Tags,
		}
		for variant, tmpl := range style.Templates {
			switch t := tmpl.(type) {
			case PhraseTemplate:
				entry.Default = &wireTemplate{
					Prefix: JoinPhrases(t.Prefix),
					Suffix: JoinPhrases(t.Suffix),
				}
			case ProseTemplate:
				if entry.Models == nil {
					entry.Models = make(map[string]wireTemplate)
				}
				entry.Models[variant] = wireTemplate{Prefix: t.Prefix, Suffix: t.Suffix}
			}
		}
		env.Styles = append(env.Styles, entry)
	}

	codec, ok := CodecForPath(path)
	if !ok {
		codec = CodecJSON
	}
	if codec == CodecYAML {
		return yaml.Marshal(&env)
	}
	return json.MarshalIndent(&env, "", "  ")
}
