package main

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/pack"
)

var auditFlags struct {
	packsDir     string
	format       string
	proseVariant string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report pack hygiene statistics",
	Long: `Report hygiene statistics over the pack sources.

The audit command summarizes the catalog the way an author sees it:
category distribution, ids that break the snake_case convention, empty
or comma-tight templates, missing tags, and entries without a prose
variant. It is informational and always exits 0; use validate as the
commit gate.

Examples:
  # Audit the configured pack sources
  ganymede audit

  # Audit a specific directory
  ganymede audit --packs-dir styles/packs

  # Check for a different prose variant
  ganymede audit --prose-variant sdxl_prose

  # JSON output
  ganymede audit --format json`,
	RunE: auditPacks,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().StringVarP(&auditFlags.packsDir, "packs-dir", "d", "", "pack directory (default from config)")
	auditCmd.Flags().StringVar(&auditFlags.format, "format", "text", "output format: text, json")
	auditCmd.Flags().StringVar(&auditFlags.proseVariant, "prose-variant", "flux_2_klein", "prose variant every style should carry")
}

// snakeCaseID is the id convention packs are expected to follow.
var snakeCaseID = regexp.MustCompile(`^[a-z0-9_]+$`)

type categoryTally struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type commaFinding struct {
	StyleID string `json:"style_id"`
	Field   string `json:"field"`
}

// auditReport aggregates pack hygiene over one scan.
type auditReport struct {
	Styles         int             `json:"styles"`
	Packs          int             `json:"packs"`
	FromLegacy     bool            `json:"from_legacy,omitempty"`
	ProseVariant   string          `json:"prose_variant"`
	Categories     []categoryTally `json:"categories,omitempty"`
	BadPacks       []badPack       `json:"bad_packs,omitempty"`
	BadIDs         []string        `json:"bad_ids,omitempty"`
	BadDefaults    []string        `json:"bad_defaults,omitempty"`
	EmptyPrefix    []string        `json:"empty_prefix,omitempty"`
	EmptySuffix    []string        `json:"empty_suffix,omitempty"`
	TightCommas    []commaFinding  `json:"tight_commas,omitempty"`
	MissingTags    []string        `json:"missing_tags,omitempty"`
	MissingProse   []string        `json:"missing_prose,omitempty"`
	DuplicateIDs   []string        `json:"duplicate_ids,omitempty"`
	DuplicateNames []string        `json:"duplicate_names,omitempty"`
}

func auditPacks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	packsDir := auditFlags.packsDir
	if packsDir == "" {
		packsDir = effectivePacksDir(cfg)
	}

	scan, err := loadRawStyles(packsDir, cfg.Catalog.LegacyPath, cfg.Catalog.Extensions)
	if err != nil {
		return cli.NewCommandError("audit", err)
	}

	report := buildAuditReport(scan, auditFlags.proseVariant)

	if auditFlags.format == "json" {
		return (&cli.JSONFormatter{Indent: true}).FormatTo(os.Stdout, report)
	}
	fmt.Print(report.String())
	return nil
}

func buildAuditReport(scan *rawScan, proseVariant string) auditReport {
	report := auditReport{
		Styles:       len(scan.Styles),
		Packs:        len(scan.Files),
		FromLegacy:   scan.FromLegacy,
		ProseVariant: proseVariant,
		BadPacks:     scan.BadPacks,
	}

	categories := make(map[string]int)
	seenIDs := make(map[string]bool)
	seenNames := make(map[string]bool)
	dupIDs := make(map[string]bool)
	dupNames := make(map[string]bool)

	for _, style := range scan.Styles {
		if style.Fields == nil {
			continue
		}

		id := style.str("id")
		name := style.str("name")

		if !snakeCaseID.MatchString(id) {
			report.BadIDs = append(report.BadIDs, id)
		}
		if seenIDs[id] {
			dupIDs[id] = true
		}
		seenIDs[id] = true
		if name != "" {
			if seenNames[name] {
				dupNames[name] = true
			}
			seenNames[name] = true
		}

		category := style.str("category")
		if category == "" {
			category = pack.CategoryUncategorized
		}
		categories[category]++

		def, present, isMap := style.section("default")
		if !present || !isMap {
			report.BadDefaults = append(report.BadDefaults, id)
		} else {
			prefix, _ := def["prefix"].(string)
			suffix, _ := def["suffix"].(string)
			if strings.TrimSpace(prefix) == "" {
				report.EmptyPrefix = append(report.EmptyPrefix, id)
			}
			if strings.TrimSpace(suffix) == "" {
				report.EmptySuffix = append(report.EmptySuffix, id)
			}
			if commaWithoutSpace(prefix) {
				report.TightCommas = append(report.TightCommas, commaFinding{StyleID: id, Field: "prefix"})
			}
			if commaWithoutSpace(suffix) {
				report.TightCommas = append(report.TightCommas, commaFinding{StyleID: id, Field: "suffix"})
			}
		}

		if !hasUsableTags(style.Fields["tags"]) {
			report.MissingTags = append(report.MissingTags, id)
		}

		models, modelsPresent, modelsIsMap := style.section("models")
		if !modelsPresent || !modelsIsMap {
			report.MissingProse = append(report.MissingProse, id)
		} else if _, ok := models[proseVariant]; !ok {
			report.MissingProse = append(report.MissingProse, id)
		}
	}

	report.Categories = sortTallies(categories)
	report.DuplicateIDs = sortedKeys(dupIDs)
	report.DuplicateNames = sortedKeys(dupNames)
	return report
}

// hasUsableTags reports whether the raw tags value is a list with at
// least one non-blank string.
func hasUsableTags(v interface{}) bool {
	list, ok := v.([]interface{})
	if !ok {
		return false
	}
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// sortTallies orders categories by count descending, name ascending.
func sortTallies(counts map[string]int) []categoryTally {
	tallies := make([]categoryTally, 0, len(counts))
	for category, count := range counts {
		tallies = append(tallies, categoryTally{Category: category, Count: count})
	}
	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].Count != tallies[j].Count {
			return tallies[i].Count > tallies[j].Count
		}
		return tallies[i].Category < tallies[j].Category
	})
	return tallies
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (r auditReport) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "styles: %d  packs: %d", r.Styles, r.Packs)
	if r.FromLegacy {
		b.WriteString("  (legacy source)")
	}
	b.WriteString("\n")

	if len(r.Categories) > 0 {
		b.WriteString("categories:\n")
		for _, tally := range r.Categories {
			fmt.Fprintf(&b, "  %4d  %s\n", tally.Count, tally.Category)
		}
	}

	var warnings []string
	if n := len(r.BadPacks); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d pack(s) could not be decoded", n))
	}
	if n := len(r.BadIDs); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d id(s) not snake_case", n))
	}
	if n := len(r.BadDefaults); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d default template(s) missing or not an object", n))
	}
	if n := len(r.EmptyPrefix); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d empty prefix(es)", n))
	}
	if n := len(r.EmptySuffix); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d empty suffix(es)", n))
	}
	if n := len(r.TightCommas); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d comma(s) without following space", n))
	}
	if n := len(r.MissingTags); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d style(s) without tags", n))
	}
	if n := len(r.MissingProse); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d style(s) missing prose variant %q", n, r.ProseVariant))
	}
	if len(r.DuplicateIDs) > 0 {
		warnings = append(warnings, "duplicate ids detected")
	}
	if len(r.DuplicateNames) > 0 {
		warnings = append(warnings, "duplicate names detected")
	}

	if len(warnings) == 0 {
		b.WriteString("warnings: none\n")
	} else {
		b.WriteString("warnings:\n")
		for _, warning := range warnings {
			fmt.Fprintf(&b, "  - %s\n", warning)
		}
	}

	return b.String()
}
