package handlers

import (
	"os"
	"path/filepath"
	"testing"

	"mercator-hq/ganymede/pkg/catalog"
	"mercator-hq/ganymede/pkg/styler"
)

// fixturePack is the catalog served by the handler tests: a phrase
// style with a prose variant, a phrase-only style in a nested category,
// and a style that registers no default template.
const fixturePack = `{
  "version": 1,
  "styles": [
    {
      "id": "cinematic",
      "name": "Cinematic",
      "category": "Film",
      "default": {"prefix": "cinematic still, dramatic lighting", "suffix": "shallow depth of field"},
      "models": {"claude": {"prefix": "Render as a cinematic still:", "suffix": "Emphasize dramatic lighting."}},
      "tags": ["film", "drama"]
    },
    {
      "id": "watercolor",
      "name": "Watercolor",
      "category": "Painting/Traditional",
      "default": {"prefix": "watercolor painting", "suffix": "soft washes"}
    },
    {
      "id": "prose_only",
      "name": "Prose Only",
      "category": "Painting",
      "models": {"claude": {"prefix": "Describe in prose:", "suffix": "Keep it painterly."}}
    }
  ]
}`

func writeFixture(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// newTestStore builds a catalog store over a temp packs directory
// seeded with fixturePack. The returned root lets tests add packs.
func newTestStore(t testing.TB) (*catalog.Store, string) {
	t.Helper()
	root := t.TempDir()
	writeFixture(t, filepath.Join(root, "packs", "10_base.json"), fixturePack)

	cfg := catalog.DefaultLoaderConfig()
	cfg.PacksDir = filepath.Join(root, "packs")
	cfg.LegacyPath = ""

	return catalog.NewStore(catalog.NewLoader(cfg, nil), nil, catalog.StoreOptions{}), root
}

func newTestStyler(t *testing.T, store *catalog.Store) *styler.Styler {
	t.Helper()
	st, err := styler.New(store, nil, nil)
	if err != nil {
		t.Fatalf("styler.New() error = %v", err)
	}
	return st
}
