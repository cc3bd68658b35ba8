package main

import (
	"os"
	"path/filepath"
	"testing"

	"mercator-hq/ganymede/pkg/catalog"
	"mercator-hq/ganymede/pkg/cli"
)

// writeCatalogFixture writes a pack directory plus a config file that
// points at it, and returns the config path.
func writeCatalogFixture(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	packsDir := filepath.Join(tmpDir, "packs")
	if err := os.Mkdir(packsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writePackFile(t, packsDir, "10_base.json", cleanPackDoc)

	cfgPath := filepath.Join(tmpDir, "config.yaml")
	content := "catalog:\n  packs_dir: \"" + packsDir + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func TestListStyles(t *testing.T) {
	setConfigFile(t, writeCatalogFixture(t))

	listFlags.category = ""
	listFlags.format = "text"

	if err := listStyles(nil, []string{}); err != nil {
		t.Errorf("listStyles() returned error: %v", err)
	}
}

func TestListStylesCategoryFilter(t *testing.T) {
	setConfigFile(t, writeCatalogFixture(t))

	listFlags.category = "Cinema"
	listFlags.format = "json"

	if err := listStyles(nil, []string{}); err != nil {
		t.Errorf("listStyles() with category filter returned error: %v", err)
	}
}

func TestListStylesCSVFormat(t *testing.T) {
	setConfigFile(t, writeCatalogFixture(t))

	listFlags.category = ""
	listFlags.format = "csv"

	if err := listStyles(nil, []string{}); err != nil {
		t.Errorf("listStyles() with csv format returned error: %v", err)
	}
}

func TestListStylesBadFormat(t *testing.T) {
	listFlags.category = ""
	listFlags.format = "xml"

	err := listStyles(nil, []string{})
	if err == nil {
		t.Fatal("listStyles() with unsupported format should return error")
	}
	if cli.ExitCode(err) != 2 {
		t.Errorf("ExitCode = %d, want 2", cli.ExitCode(err))
	}
}

func TestListStylesMissingConfig(t *testing.T) {
	setConfigFile(t, filepath.Join(t.TempDir(), "nope.yaml"))

	listFlags.category = ""
	listFlags.format = "text"

	err := listStyles(nil, []string{})
	if err == nil {
		t.Fatal("listStyles() with missing explicit config should return error")
	}
	if cli.ExitCode(err) != 2 {
		t.Errorf("ExitCode = %d, want 2", cli.ExitCode(err))
	}
}

func TestStyleListingString(t *testing.T) {
	listing := styleListing{
		Count: 2,
		Styles: []styleRow{
			{ID: "film_noir", Name: "Film Noir", Category: "Cinema"},
			{ID: "soft_pastel", Name: "Soft Pastel", Category: "Illustration"},
		},
	}

	want := "Cinema | Film Noir | film_noir\nIllustration | Soft Pastel | soft_pastel"
	if got := listing.String(); got != want {
		t.Errorf("styleListing.String() = %q, want %q", got, want)
	}
}

func TestStyleListingStringEmpty(t *testing.T) {
	listing := styleListing{}
	want := catalog.DisplayLabel("(no styles found)", "(no styles)", catalog.PlaceholderID)
	if got := listing.String(); got != want {
		t.Errorf("empty styleListing.String() = %q, want %q", got, want)
	}
}

func TestStyleListingCSV(t *testing.T) {
	listing := styleListing{
		Styles: []styleRow{
			{
				ID:       "film_noir",
				Name:     "Film Noir",
				Category: "Cinema",
				Variants: []string{"default", "flux_2_klein"},
				Tags:     []string{"cinema"},
			},
		},
	}

	header := listing.CSVHeader()
	if len(header) != 5 || header[0] != "id" {
		t.Errorf("CSVHeader() = %v, want five columns starting with id", header)
	}

	records := listing.CSVRecords()
	if len(records) != 1 {
		t.Fatalf("CSVRecords() returned %d records, want 1", len(records))
	}
	if records[0][3] != "default, flux_2_klein" {
		t.Errorf("variants column = %q, want joined variant list", records[0][3])
	}
}
