package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/pack"
	"mercator-hq/ganymede/pkg/telemetry/logging"
)

// userPackName is the pack the add command writes by default. The 99_
// prefix sorts it last so user entries win id collisions at merge time.
const userPackName = "99_user_custom.json"

var addFlags struct {
	name           string
	category       string
	core           string
	details        string
	tags           string
	id             string
	idPrefix       string
	prose          string
	proseVariant   string
	pack           string
	force          bool
	csvFile        string
	listCategories bool
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a style to the user pack",
	Long: `Add a style entry to the user pack without editing JSON by hand.

The core phrases become the default template prefix and the detail
phrases its suffix. A prose variant is generated from the same phrases
unless --prose supplies one. The id is derived from the name unless
--id overrides it, and adding an id that already exists anywhere in the
pack sources is refused unless --force is set.

Examples:
  # Add one style
  ganymede add --name "Anime Style (Soft Shading)" --category "Anime/Manga" \
    --core "soft cel shading, warm palette" --details "clean line weight" \
    --tags "anime, illustration"

  # Replace an existing entry
  ganymede add --name "Gritty Noir" --category Cinema --id user_gritty_noir \
    --core "film noir, harsh shadows" --force

  # Bulk add from CSV (columns: name,category,core,details,tags,id,prose)
  ganymede add --csv new_styles.csv

  # List existing categories
  ganymede add --list-categories`,
	RunE: addStyles,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addFlags.name, "name", "n", "", "style display name")
	addCmd.Flags().StringVar(&addFlags.category, "category", "", "style category (slash-delimited path)")
	addCmd.Flags().StringVar(&addFlags.core, "core", "", "core phrases, comma-separated (become the prefix)")
	addCmd.Flags().StringVar(&addFlags.details, "details", "", "detail phrases, comma-separated (become the suffix)")
	addCmd.Flags().StringVar(&addFlags.tags, "tags", "", "tags, comma-separated (default: user)")
	addCmd.Flags().StringVar(&addFlags.id, "id", "", "explicit style id (default: derived from name)")
	addCmd.Flags().StringVar(&addFlags.idPrefix, "id-prefix", "user", "prefix for derived ids")
	addCmd.Flags().StringVar(&addFlags.prose, "prose", "", "explicit prose variant text (default: generated)")
	addCmd.Flags().StringVar(&addFlags.proseVariant, "prose-variant", "flux_2_klein", "variant name the prose template is written under")
	addCmd.Flags().StringVar(&addFlags.pack, "pack", "", "target pack file (default: <packs-dir>/"+userPackName+")")
	addCmd.Flags().BoolVar(&addFlags.force, "force", false, "replace an existing entry with the same id")
	addCmd.Flags().StringVar(&addFlags.csvFile, "csv", "", "bulk add from a CSV file")
	addCmd.Flags().BoolVar(&addFlags.listCategories, "list-categories", false, "list existing categories and exit")
}

func addStyles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	scan, err := loadRawStyles(effectivePacksDir(cfg), cfg.Catalog.LegacyPath, cfg.Catalog.Extensions)
	if err != nil {
		return cli.NewCommandError("add", err)
	}

	if addFlags.listCategories {
		printCategories(scan)
		return nil
	}

	target := addFlags.pack
	if target == "" {
		target = filepath.Join(cfg.Catalog.PacksDir, userPackName)
	}
	if strings.ToLower(filepath.Ext(target)) != ".json" {
		return cli.NewUsageError("add", fmt.Sprintf("target pack must be a .json file: %s", target))
	}
	if cfg.Catalog.Git.Enabled && addFlags.pack == "" {
		fmt.Fprintf(os.Stderr, "⚠  git pack source is enabled; %s is not served until committed to %s\n",
			target, logging.RedactRemoteURL(cfg.Catalog.Git.Repository))
	}

	doc, err := loadOrInitRawPack(target)
	if err != nil {
		return cli.NewCommandError("add", err)
	}

	existingIDs := make(map[string]bool)
	existingNames := make(map[string]bool)
	for _, style := range scan.Styles {
		if style.Fields == nil {
			continue
		}
		if id := style.str("id"); id != "" {
			existingIDs[id] = true
		}
		if name := style.str("name"); name != "" {
			existingNames[name] = true
		}
	}
	// The target pack may sit outside the served directory.
	for _, item := range packStyles(doc) {
		if fields, ok := item.(map[string]interface{}); ok {
			if id, _ := fields["id"].(string); id != "" {
				existingIDs[id] = true
			}
			if name, _ := fields["name"].(string); name != "" {
				existingNames[name] = true
			}
		}
	}

	if addFlags.csvFile != "" {
		if addFlags.name != "" || addFlags.category != "" {
			return cli.NewUsageError("add", "cannot combine --csv with --name/--category")
		}
		return addBulk(doc, target, existingIDs, existingNames)
	}

	if addFlags.name == "" || addFlags.category == "" {
		return cli.NewUsageError("add", "--name and --category are required (or use --csv / --list-categories)")
	}

	entry, replaced, err := composeEntry(doc, styleInput{
		Name:     addFlags.name,
		Category: addFlags.category,
		Core:     splitPhraseList(addFlags.core),
		Details:  splitPhraseList(addFlags.details),
		Tags:     splitPhraseList(addFlags.tags),
		ID:       strings.TrimSpace(addFlags.id),
		Prose:    addFlags.prose,
	}, existingIDs, existingNames)
	if err != nil {
		return cli.NewCommandError("add", err)
	}

	if err := writeRawPack(target, doc); err != nil {
		return cli.NewCommandError("add", err)
	}

	verb := "Added"
	if replaced {
		verb = "Replaced"
	}
	fmt.Printf("%s: %s | %s | %s\n", verb, entry["category"], entry["name"], entry["id"])
	fmt.Printf("Pack: %s\n", target)
	return nil
}

// styleInput is one style to compose, from flags or a CSV row.
type styleInput struct {
	Name     string
	Category string
	Core     []string
	Details  []string
	Tags     []string
	ID       string
	Prose    string
}

// composeEntry builds the entry and places it in the pack document,
// either appending or, with --force, replacing an entry with the same
// id. The caller's id/name sets are updated in place.
func composeEntry(doc map[string]interface{}, in styleInput, existingIDs, existingNames map[string]bool) (map[string]interface{}, bool, error) {
	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)

	id := in.ID
	if id == "" {
		id = addFlags.idPrefix + "_" + slugify(name)
	}

	if existingIDs[id] && !addFlags.force {
		return nil, false, fmt.Errorf("style id %q already exists (use --force to replace)", id)
	}
	if existingNames[name] {
		fmt.Fprintf(os.Stderr, "⚠  name %q is already used by another style\n", name)
	}

	tags := in.Tags
	if len(tags) == 0 {
		tags = []string{"user"}
	}

	prose := strings.TrimSpace(in.Prose)
	if prose == "" {
		prose = buildProse(name, in.Core, in.Details)
	} else {
		prose = ensureTerminalPunctuation(prose)
	}

	entry := map[string]interface{}{
		"id":       id,
		"name":     name,
		"category": category,
		"default": map[string]interface{}{
			"prefix": joinUnique(in.Core),
			"suffix": joinUnique(in.Details),
		},
		"models": map[string]interface{}{
			addFlags.proseVariant: map[string]interface{}{
				"prefix": "",
				"suffix": prose,
			},
		},
		"tags": tags,
	}

	replaced := false
	styles := packStyles(doc)
	if addFlags.force {
		for i, item := range styles {
			fields, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			if existing, _ := fields["id"].(string); existing == id {
				styles[i] = entry
				replaced = true
				break
			}
		}
	}
	if !replaced {
		styles = append(styles, entry)
	}
	doc["styles"] = sortRawStyles(styles)

	existingIDs[id] = true
	existingNames[name] = true
	return entry, replaced, nil
}

func addBulk(doc map[string]interface{}, target string, existingIDs, existingNames map[string]bool) error {
	rows, err := readBulkCSV(addFlags.csvFile)
	if err != nil {
		return cli.NewCommandError("add", err)
	}

	added, skipped := 0, 0
	for _, row := range rows {
		if row.Name == "" || row.Category == "" {
			skipped++
			continue
		}
		_, _, err := composeEntry(doc, row, existingIDs, existingNames)
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠  skipping %q: %v\n", row.Name, err)
			skipped++
			continue
		}
		added++
	}

	if err := writeRawPack(target, doc); err != nil {
		return cli.NewCommandError("add", err)
	}

	fmt.Printf("Added %d styles to %s\n", added, target)
	if skipped > 0 {
		fmt.Printf("Skipped %d row(s)\n", skipped)
	}
	return nil
}

// readBulkCSV reads styles from a CSV with a header row. Recognized
// columns: name, category, core, details, tags, id, prose.
func readBulkCSV(path string) ([]styleInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("%s has no name column", path)
	}

	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rows := make([]styleInput, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, styleInput{
			Name:     field(record, "name"),
			Category: field(record, "category"),
			Core:     splitPhraseList(field(record, "core")),
			Details:  splitPhraseList(field(record, "details")),
			Tags:     splitPhraseList(field(record, "tags")),
			ID:       field(record, "id"),
			Prose:    field(record, "prose"),
		})
	}
	return rows, nil
}

func printCategories(scan *rawScan) {
	counts := make(map[string]int)
	for _, style := range scan.Styles {
		if style.Fields == nil {
			continue
		}
		category := style.str("category")
		if category == "" {
			category = pack.CategoryUncategorized
		}
		counts[category]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	for _, name := range names {
		fmt.Printf("%s (%d)\n", name, counts[name])
	}
}

// loadOrInitRawPack reads the target pack or starts an empty document.
func loadOrInitRawPack(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]interface{}{
				"version": 1,
				"styles":  []interface{}{},
			}, nil
		}
		return nil, err
	}

	doc, err := decodeRawDocument(path, data)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", path, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("pack %s is not a JSON object", path)
	}
	if _, ok := doc["styles"]; !ok {
		doc["styles"] = []interface{}{}
	}
	if _, ok := doc["version"]; !ok {
		doc["version"] = 1
	}
	return doc, nil
}

func packStyles(doc map[string]interface{}) []interface{} {
	styles, _ := doc["styles"].([]interface{})
	return styles
}

// writeRawPack writes the document as indented JSON with a trailing
// newline, matching the format the packs are authored in.
func writeRawPack(path string, doc map[string]interface{}) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// sortRawStyles orders entries by category, name (both case-insensitive),
// then id, so regenerated packs diff cleanly.
func sortRawStyles(styles []interface{}) []interface{} {
	key := func(item interface{}) (string, string, string) {
		fields, ok := item.(map[string]interface{})
		if !ok {
			return "", "", ""
		}
		category, _ := fields["category"].(string)
		name, _ := fields["name"].(string)
		id, _ := fields["id"].(string)
		return strings.ToLower(category), strings.ToLower(name), id
	}
	sort.SliceStable(styles, func(i, j int) bool {
		ci, ni, ii := key(styles[i])
		cj, nj, ij := key(styles[j])
		if ci != cj {
			return ci < cj
		}
		if ni != nj {
			return ni < nj
		}
		return ii < ij
	})
	return styles
}

// splitPhraseList splits a comma-separated flag value into trimmed,
// non-empty phrases.
func splitPhraseList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	phrases := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			phrases = append(phrases, part)
		}
	}
	return phrases
}

// joinUnique joins phrases with the pack separator, dropping
// case-insensitive repeats while keeping first-seen order.
func joinUnique(phrases []string) string {
	seen := make(map[string]bool, len(phrases))
	out := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		key := strings.ToLower(phrase)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, phrase)
	}
	return pack.JoinPhrases(out)
}

// slugify derives a style id fragment from a display name: lowercase
// alphanumerics with single underscores between runs.
func slugify(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "style"
	}
	return slug
}

// buildProse composes the generated prose variant from the entry name
// and its phrase lists.
func buildProse(name string, core, details []string) string {
	const hintLimit = 12

	parts := []string{"Style: " + name}
	if hint := joinUnique(limitPhrases(core, hintLimit)); hint != "" {
		parts = append(parts, "Core cues: "+hint)
	}
	if hint := joinUnique(limitPhrases(details, hintLimit)); hint != "" {
		parts = append(parts, "Details: "+hint)
	}
	parts = append(parts,
		"Lighting: coherent and intentional",
		"Mood: consistent with the user prompt",
	)
	return joinSentences(parts)
}

func limitPhrases(phrases []string, n int) []string {
	if len(phrases) > n {
		return phrases[:n]
	}
	return phrases
}

// joinSentences joins parts into prose: one period-terminated sentence
// per part, blanks dropped.
func joinSentences(parts []string) string {
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimRight(strings.TrimSpace(part), ".")
		if part != "" {
			cleaned = append(cleaned, part)
		}
	}
	if len(cleaned) == 0 {
		return ""
	}
	return strings.Join(cleaned, ". ") + "."
}

func ensureTerminalPunctuation(s string) string {
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}
