package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"mercator-hq/ganymede/pkg/cli"
)

var validateFlags struct {
	packsDir string
	format   string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate style pack documents",
	Long: `Validate style pack documents before committing them.

The validate command scans the pack sources and reports structural
problems the server would tolerate but authors should fix:
  - entries that are not objects
  - entries missing id or name
  - duplicate ids and duplicate names across all packs
  - default templates that are not objects or lack prefix/suffix
  - documents that cannot be decoded at all

Examples:
  # Validate the configured pack sources
  ganymede validate

  # Validate a specific directory
  ganymede validate --packs-dir styles/packs

  # JSON output for CI/CD
  ganymede validate --format json`,
	RunE: validatePacks,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.packsDir, "packs-dir", "d", "", "pack directory (default from config)")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// packFinding is one validation problem tied to its authoring location.
type packFinding struct {
	File    string `json:"file"`
	Index   int    `json:"index"`
	StyleID string `json:"style_id,omitempty"`
	Message string `json:"message"`
}

// validationReport is the result of one validation run.
type validationReport struct {
	Valid       bool          `json:"valid"`
	Styles      int           `json:"styles"`
	UniqueIDs   int           `json:"unique_ids"`
	UniqueNames int           `json:"unique_names"`
	Findings    []packFinding `json:"findings,omitempty"`
	BadPacks    []badPack     `json:"bad_packs,omitempty"`
}

func validatePacks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	packsDir := validateFlags.packsDir
	if packsDir == "" {
		packsDir = effectivePacksDir(cfg)
	}

	scan, err := loadRawStyles(packsDir, cfg.Catalog.LegacyPath, cfg.Catalog.Extensions)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	report := buildValidationReport(scan)

	if validateFlags.format == "json" {
		if err := outputValidateJSON(report); err != nil {
			return err
		}
	} else {
		outputValidateText(report)
	}

	if !report.Valid {
		return cli.NewCommandError("validate", fmt.Errorf("%d finding(s)", len(report.Findings)+len(report.BadPacks)))
	}
	return nil
}

func buildValidationReport(scan *rawScan) validationReport {
	report := validationReport{
		Styles:   len(scan.Styles),
		BadPacks: scan.BadPacks,
	}

	seenIDs := make(map[string]bool)
	seenNames := make(map[string]bool)

	for _, style := range scan.Styles {
		add := func(id, message string) {
			report.Findings = append(report.Findings, packFinding{
				File:    style.File,
				Index:   style.Index,
				StyleID: id,
				Message: message,
			})
		}

		if style.Fields == nil {
			add("", "entry must be an object")
			continue
		}

		id := style.str("id")
		name := style.str("name")
		if id == "" || name == "" {
			add(id, "missing id or name")
			continue
		}

		if seenIDs[id] {
			add(id, fmt.Sprintf("duplicate id: %s", id))
		}
		seenIDs[id] = true

		if seenNames[name] {
			add(id, fmt.Sprintf("duplicate name: %q", name))
		}
		seenNames[name] = true

		// A missing default section reads as an empty object so both
		// template halves get reported.
		def, present, isMap := style.section("default")
		if present && !isMap {
			add(id, "default template must be an object")
			continue
		}
		if _, ok := def["prefix"]; !ok {
			add(id, `default template missing "prefix"`)
		}
		if _, ok := def["suffix"]; !ok {
			add(id, `default template missing "suffix"`)
		}
	}

	report.UniqueIDs = len(seenIDs)
	report.UniqueNames = len(seenNames)
	report.Valid = len(report.Findings) == 0 && len(report.BadPacks) == 0
	return report
}

func outputValidateText(report validationReport) {
	for _, bp := range report.BadPacks {
		fmt.Printf("⚠  %s: %s\n", filepath.Base(bp.File), bp.Err)
	}

	for _, f := range report.Findings {
		if f.StyleID != "" {
			fmt.Printf("✗ %s[%d] %s: %s\n", filepath.Base(f.File), f.Index, f.StyleID, f.Message)
		} else {
			fmt.Printf("✗ %s[%d]: %s\n", filepath.Base(f.File), f.Index, f.Message)
		}
	}

	if report.Valid {
		fmt.Printf("OK: %d styles; %d unique ids; %d unique names\n",
			report.Styles, report.UniqueIDs, report.UniqueNames)
		return
	}

	fmt.Println("Summary:")
	fmt.Printf("  %d finding(s), %d undecodable pack(s)\n", len(report.Findings), len(report.BadPacks))
}

func outputValidateJSON(report validationReport) error {
	return (&cli.JSONFormatter{Indent: true}).FormatTo(os.Stdout, report)
}
