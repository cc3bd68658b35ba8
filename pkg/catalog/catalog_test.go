package catalog

import (
	"errors"
	"path/filepath"
	"testing"

	"mercator-hq/ganymede/pkg/pack"
)

func docFromJSON(t *testing.T, path, body string) *pack.Document {
	t.Helper()
	doc, issues, err := pack.Decode(path, []byte(body))
	if err != nil {
		t.Fatalf("Decode(%s) error = %v, want nil", path, err)
	}
	if len(issues) != 0 {
		t.Fatalf("Decode(%s) issues = %v, want none", path, issues)
	}
	return doc
}

func TestBuild_LastWinsAcrossFiles(t *testing.T) {
	a := docFromJSON(t, "10_a.json", `{"version": 1, "styles": [
		{"id": "x", "name": "From A", "category": "One", "default": {"prefix": "a", "suffix": ""}}
	]}`)
	b := docFromJSON(t, "20_b.json", `{"version": 1, "styles": [
		{"id": "x", "name": "From B", "category": "Two", "default": {"prefix": "b", "suffix": ""}}
	]}`)

	catalog := Build(&LoadResult{Documents: []*pack.Document{a, b}})

	entry, ok := catalog.Get("x")
	if !ok {
		t.Fatal("Get(x) not found")
	}
	if entry.Name != "From B" {
		t.Errorf("winning entry name = %q, want %q", entry.Name, "From B")
	}
	if entry.Source != "20_b.json" {
		t.Errorf("winning entry source = %q, want %q", entry.Source, "20_b.json")
	}

	var dupErr *DuplicateIDError
	found := false
	for _, diag := range catalog.Diagnostics() {
		if diag.Outcome == OutcomeDuplicateID && errors.As(diag.Err, &dupErr) {
			found = true
		}
	}
	if !found {
		t.Fatal("no duplicate_id diagnostic recorded")
	}
	if dupErr.PreviousSource != "10_a.json" || dupErr.WinningSource != "20_b.json" {
		t.Errorf("DuplicateIDError = %+v, want 10_a.json replaced by 20_b.json", dupErr)
	}
}

func TestBuild_LastWinsWithinOneFile(t *testing.T) {
	doc := docFromJSON(t, "10_dupes.json", `{"version": 1, "styles": [
		{"id": "d", "name": "First", "default": {"prefix": "1", "suffix": ""}},
		{"id": "d", "name": "Second", "default": {"prefix": "2", "suffix": ""}}
	]}`)

	catalog := Build(&LoadResult{Documents: []*pack.Document{doc}})

	entry, _ := catalog.Get("d")
	if entry.Name != "Second" {
		t.Errorf("entry name = %q, want %q", entry.Name, "Second")
	}
	if catalog.Count() != 1 {
		t.Errorf("Count() = %d, want 1", catalog.Count())
	}
}

func TestBuild_VersionTracksContent(t *testing.T) {
	mk := func(name string) *Catalog {
		doc := docFromJSON(t, "10_a.json", `{"version": 1, "styles": [
			{"id": "v", "name": "`+name+`", "default": {"prefix": "p", "suffix": ""}}
		]}`)
		return Build(&LoadResult{Documents: []*pack.Document{doc}})
	}

	c1, c2, c3 := mk("Same"), mk("Same"), mk("Changed")

	if c1.Version() != c2.Version() {
		t.Errorf("identical content versions differ: %q vs %q", c1.Version(), c2.Version())
	}
	if c1.Version() == c3.Version() {
		t.Errorf("changed content kept version %q", c1.Version())
	}
	if len(c1.Version()) != 16 {
		t.Errorf("version length = %d, want 16", len(c1.Version()))
	}
}

func TestCatalog_ChoicesPlaceholderWhenEmpty(t *testing.T) {
	catalog := Empty()

	choices := catalog.Choices()
	if len(choices) != 1 {
		t.Fatalf("Choices() = %d entries, want 1 placeholder", len(choices))
	}
	if choices[0].ID != PlaceholderID {
		t.Errorf("placeholder ID = %q, want %q", choices[0].ID, PlaceholderID)
	}
	if choices[0].Label != "(no styles found) | (no styles) | __none__" {
		t.Errorf("placeholder label = %q", choices[0].Label)
	}
	if !catalog.IsEmpty() {
		t.Error("IsEmpty() = false, want true")
	}
}

func TestCatalog_ByCategoryPrefix(t *testing.T) {
	doc := docFromJSON(t, "10_cats.json", `{"version": 1, "styles": [
		{"id": "a", "name": "A", "category": "Photography/Alt Process", "default": {"prefix": "p", "suffix": ""}},
		{"id": "b", "name": "B", "category": "Photography", "default": {"prefix": "p", "suffix": ""}},
		{"id": "c", "name": "C", "category": "Photo", "default": {"prefix": "p", "suffix": ""}},
		{"id": "d", "name": "D", "category": "Painting", "default": {"prefix": "p", "suffix": ""}}
	]}`)
	catalog := Build(&LoadResult{Documents: []*pack.Document{doc}})

	got := catalog.ByCategoryPrefix("Photography")
	if len(got) != 2 {
		t.Fatalf("ByCategoryPrefix(Photography) = %d entries, want 2", len(got))
	}
	for _, entry := range got {
		if entry.ID == "c" {
			t.Error("prefix matched 'Photo' against 'Photography', want segment-aware match")
		}
	}

	if got := catalog.ByCategoryPrefix("photography/alt process"); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("case-insensitive nested prefix = %v, want entry a", got)
	}

	if got := catalog.ByCategoryPrefix(""); len(got) != 4 {
		t.Errorf("ByCategoryPrefix(\"\") = %d entries, want all 4", len(got))
	}
}

func TestCatalog_Categories(t *testing.T) {
	doc := docFromJSON(t, "10_cats.json", `{"version": 1, "styles": [
		{"id": "a", "name": "A", "category": "Two", "default": {"prefix": "p", "suffix": ""}},
		{"id": "b", "name": "B", "category": "One", "default": {"prefix": "p", "suffix": ""}},
		{"id": "c", "name": "C", "category": "Two", "default": {"prefix": "p", "suffix": ""}}
	]}`)
	catalog := Build(&LoadResult{Documents: []*pack.Document{doc}})

	cats := catalog.Categories()
	if len(cats) != 2 {
		t.Fatalf("Categories() = %d, want 2", len(cats))
	}
	if cats[0].Category != "One" || cats[0].Count != 1 {
		t.Errorf("Categories()[0] = %+v, want One/1", cats[0])
	}
	if cats[1].Category != "Two" || cats[1].Count != 2 {
		t.Errorf("Categories()[1] = %+v, want Two/2", cats[1])
	}
}

func TestCatalog_StatsAndAccessors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "styles", "packs", "10_a.json"), packJSON("s1", "s2"))

	result := testLoader(t, root).Load()
	catalog := Build(result)

	stats := catalog.Stats()
	if stats.StyleCount != 2 {
		t.Errorf("Stats().StyleCount = %d, want 2", stats.StyleCount)
	}
	if stats.Version != catalog.Version() {
		t.Errorf("Stats().Version = %q, want %q", stats.Version, catalog.Version())
	}
	if stats.FromLegacy {
		t.Error("Stats().FromLegacy = true, want false")
	}
	if ids := catalog.IDs(); len(ids) != 2 || ids[0] != "s1" || ids[1] != "s2" {
		t.Errorf("IDs() = %v, want [s1 s2]", ids)
	}
	if !catalog.Has("s1") || catalog.Has("nope") {
		t.Error("Has() misreported membership")
	}
}
