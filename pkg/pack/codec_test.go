package pack

import (
	"errors"
	"testing"
)

func TestDecode_JSON_Success(t *testing.T) {
	data := []byte(`{
		"version": 1,
		"styles": [
			{
				"id": "cinematic_noir",
				"name": "Cinematic Noir",
				"category": "Cinema/Classic",
				"default": {
					"prefix": "film noir still, dramatic shadows",
					"suffix": "high contrast, 35mm grain"
				},
				"models": {
					"flux_2_klein": {
						"prefix": "A film noir still of",
						"suffix": "lit with hard chiaroscuro shadows."
					}
				},
				"tags": ["cinema", "bw"]
			}
		]
	}`)

	doc, issues, err := Decode("packs/10_cinema.json", data)
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}
	if len(issues) != 0 {
		t.Fatalf("Decode() issues = %v, want none", issues)
	}
	if doc.Version != 1 {
		t.Errorf("Version = %d, want 1", doc.Version)
	}
	if len(doc.Styles) != 1 {
		t.Fatalf("Decode() loaded %d styles, want 1", len(doc.Styles))
	}

	style := doc.Styles[0]
	if style.ID != "cinematic_noir" {
		t.Errorf("ID = %q, want %q", style.ID, "cinematic_noir")
	}
	if style.Category != "Cinema/Classic" {
		t.Errorf("Category = %q, want %q", style.Category, "Cinema/Classic")
	}
	if style.Source != "packs/10_cinema.json" {
		t.Errorf("Source = %q, want %q", style.Source, "packs/10_cinema.json")
	}

	tmpl, ok := style.Template(VariantDefault)
	if !ok {
		t.Fatal("Template(default) not registered")
	}
	phrase, ok := tmpl.(PhraseTemplate)
	if !ok {
		t.Fatalf("default template type = %T, want PhraseTemplate", tmpl)
	}
	if len(phrase.Prefix) != 2 || phrase.Prefix[0] != "film noir still" || phrase.Prefix[1] != "dramatic shadows" {
		t.Errorf("Prefix = %v, want [film noir still, dramatic shadows]", phrase.Prefix)
	}

	tmpl, ok = style.Template("flux_2_klein")
	if !ok {
		t.Fatal("Template(flux_2_klein) not registered")
	}
	prose, ok := tmpl.(ProseTemplate)
	if !ok {
		t.Fatalf("flux_2_klein template type = %T, want ProseTemplate", tmpl)
	}
	if prose.Prefix != "A film noir still of" {
		t.Errorf("ProsePrefix = %q, want %q", prose.Prefix, "A film noir still of")
	}
}

func TestDecode_YAML_Success(t *testing.T) {
	data := []byte(`version: 1
styles:
  - id: gouache_sketch
    name: Gouache Sketch
    category: Painting
    default:
      prefix: "gouache painting, soft matte texture"
      suffix: "loose brushwork"
`)

	doc, issues, err := Decode("packs/20_painting.yaml", data)
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}
	if len(issues) != 0 {
		t.Fatalf("Decode() issues = %v, want none", issues)
	}
	if len(doc.Styles) != 1 {
		t.Fatalf("Decode() loaded %d styles, want 1", len(doc.Styles))
	}
	if doc.Styles[0].ID != "gouache_sketch" {
		t.Errorf("ID = %q, want %q", doc.Styles[0].ID, "gouache_sketch")
	}
}

func TestDecode_InvalidDocument(t *testing.T) {
	_, _, err := Decode("packs/broken.json", []byte(`{"styles": [`))
	if err == nil {
		t.Fatal("Decode() error = nil, want *ParseError")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Decode() error type = %T, want *ParseError", err)
	}
	if parseErr.FilePath != "packs/broken.json" {
		t.Errorf("ParseError.FilePath = %q, want %q", parseErr.FilePath, "packs/broken.json")
	}
}

func TestDecode_WrongEnvelopeShape(t *testing.T) {
	// A styles field that is not a sequence fails the whole document.
	_, _, err := Decode("packs/odd.json", []byte(`{"version": 1, "styles": "nope"}`))
	if err == nil {
		t.Fatal("Decode() error = nil, want *ParseError")
	}
}

func TestDecode_UnrecognizedExtension(t *testing.T) {
	_, _, err := Decode("packs/styles.toml", []byte(`anything`))
	if err == nil {
		t.Fatal("Decode() error = nil, want *ParseError")
	}
}

func TestDecode_MalformedEntrySkipped(t *testing.T) {
	data := []byte(`{
		"version": 1,
		"styles": [
			"not an object",
			{"id": "kept", "name": "Kept", "default": {"prefix": "a", "suffix": "b"}},
			{"name": "No ID", "default": {"prefix": "x", "suffix": "y"}}
		]
	}`)

	doc, issues, err := Decode("packs/mixed.json", data)
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}
	if len(doc.Styles) != 1 || doc.Styles[0].ID != "kept" {
		t.Fatalf("Decode() styles = %+v, want only id 'kept'", doc.Styles)
	}
	if len(issues) != 2 {
		t.Fatalf("Decode() recorded %d issues, want 2", len(issues))
	}

	var entryErr *EntryError
	if !errors.As(issues[1], &entryErr) {
		t.Fatalf("issue type = %T, want *EntryError", issues[1])
	}
	if entryErr.Index != 2 {
		t.Errorf("EntryError.Index = %d, want 2", entryErr.Index)
	}
	if entryErr.Field != "id" {
		t.Errorf("EntryError.Field = %q, want %q", entryErr.Field, "id")
	}
}

func TestDecode_UnknownFieldsIgnored(t *testing.T) {
	data := []byte(`{
		"version": 2,
		"generator": "some-authoring-tool",
		"styles": [
			{"id": "s1", "name": "S1", "default": {"prefix": "p", "suffix": "s"}, "weight": 3}
		]
	}`)

	doc, issues, err := Decode("packs/future.json", data)
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}
	if len(issues) != 0 {
		t.Fatalf("Decode() issues = %v, want none", issues)
	}
	if len(doc.Styles) != 1 {
		t.Errorf("Decode() loaded %d styles, want 1", len(doc.Styles))
	}
}

func TestDecode_EmptyStylesDocument(t *testing.T) {
	doc, issues, err := Decode("packs/empty.json", []byte(`{"version": 1, "styles": []}`))
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}
	if len(issues) != 0 || len(doc.Styles) != 0 {
		t.Errorf("Decode() = %d styles, %d issues; want 0, 0", len(doc.Styles), len(issues))
	}
}

func TestCodecForPath(t *testing.T) {
	tests := []struct {
		path  string
		codec Codec
		ok    bool
	}{
		{"styles/packs/10_core.json", CodecJSON, true},
		{"styles/packs/20_extra.yaml", CodecYAML, true},
		{"styles/packs/30_more.YML", CodecYAML, true},
		{"styles/packs/readme.md", "", false},
		{"styles/packs/noext", "", false},
	}

	for _, tt := range tests {
		codec, ok := CodecForPath(tt.path)
		if ok != tt.ok || (ok && codec != tt.codec) {
			t.Errorf("CodecForPath(%q) = (%q, %v), want (%q, %v)", tt.path, codec, ok, tt.codec, tt.ok)
		}
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	doc := &Document{
		Version: 1,
		Styles: []StyleEntry{
			{
				ID:       "round_trip",
				Name:     "Round Trip",
				Category: "Test",
				Templates: map[string]Template{
					VariantDefault: PhraseTemplate{Prefix: []string{"alpha", "beta"}, Suffix: []string{"gamma"}},
					"flux_2_klein":  ProseTemplate{Prefix: "A picture of", Suffix: "in the alpha style."},
				},
				Tags: []string{"test"},
			},
		},
	}

	data, err := Encode("out.json", doc)
	if err != nil {
		t.Fatalf("Encode() error = %v, want nil", err)
	}

	decoded, issues, err := Decode("out.json", data)
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}
	if len(issues) != 0 {
		t.Fatalf("Decode() issues = %v, want none", issues)
	}
	if len(decoded.Styles) != 1 {
		t.Fatalf("Decode() loaded %d styles, want 1", len(decoded.Styles))
	}

	style := decoded.Styles[0]
	tmpl, _ := style.Template(VariantDefault)
	phrase, ok := tmpl.(PhraseTemplate)
	if !ok {
		t.Fatalf("default template type = %T, want PhraseTemplate", tmpl)
	}
	if JoinPhrases(phrase.Prefix) != "alpha, beta" || JoinPhrases(phrase.Suffix) != "gamma" {
		t.Errorf("round-tripped phrases = %v / %v", phrase.Prefix, phrase.Suffix)
	}
	if !style.HasVariant("flux_2_klein") {
		t.Error("round-tripped entry lost the prose variant")
	}
}
