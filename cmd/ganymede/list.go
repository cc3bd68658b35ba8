package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"mercator-hq/ganymede/pkg/catalog"
	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/pack"
)

var listFlags struct {
	category string
	format   string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog styles",
	Long: `List the styles of the merged catalog.

The listing uses the same loader as the server, so it shows exactly
what a running instance would serve: packs merged in filename order,
duplicate ids resolved last-wins, entries sorted by category and name.

Examples:
  # List everything
  ganymede list

  # List one category subtree
  ganymede list --category Photography

  # Machine-readable output
  ganymede list --format json
  ganymede list --format csv`,
	RunE: listStyles,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listFlags.category, "category", "", "filter by category prefix")
	listCmd.Flags().StringVar(&listFlags.format, "format", "text", "output format: text, json, csv")
}

type styleRow struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Variants []string `json:"variants"`
	Tags     []string `json:"tags,omitempty"`
}

// styleListing is the list command's report. Text shows the display
// labels the selection UI uses; JSON and CSV carry the full rows.
type styleListing struct {
	Count          int        `json:"count"`
	CatalogVersion string     `json:"catalog_version"`
	Styles         []styleRow `json:"styles"`
}

func (l styleListing) String() string {
	if len(l.Styles) == 0 {
		return catalog.DisplayLabel("(no styles found)", "(no styles)", catalog.PlaceholderID)
	}
	labels := make([]string, len(l.Styles))
	for i, row := range l.Styles {
		labels[i] = catalog.DisplayLabel(row.Category, row.Name, row.ID)
	}
	return strings.Join(labels, "\n")
}

func (l styleListing) CSVHeader() []string {
	return []string{"id", "name", "category", "variants", "tags"}
}

func (l styleListing) CSVRecords() [][]string {
	records := make([][]string, len(l.Styles))
	for i, row := range l.Styles {
		records[i] = []string{
			row.ID,
			row.Name,
			row.Category,
			strings.Join(row.Variants, ", "),
			strings.Join(row.Tags, ", "),
		}
	}
	return records
}

func listStyles(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(listFlags.format)
	if err != nil {
		return cli.NewUsageError("list", err.Error())
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := commandLogger()
	loader := catalog.NewLoader(&catalog.LoaderConfig{
		PacksDir:    effectivePacksDir(cfg),
		LegacyPath:  cfg.Catalog.LegacyPath,
		Extensions:  cfg.Catalog.Extensions,
		MaxFileSize: cfg.Catalog.MaxFileSize,
	}, logger)
	store := catalog.NewStore(loader, logger, catalog.StoreOptions{})

	cat, err := store.Get(context.Background())
	if err != nil {
		return cli.NewCommandError("list", err)
	}

	listing := styleListing{CatalogVersion: cat.Version()}

	if listFlags.category != "" {
		for _, entry := range cat.ByCategoryPrefix(listFlags.category) {
			listing.Styles = append(listing.Styles, entryRow(entry))
		}
	} else {
		for _, choice := range cat.Choices() {
			if choice.ID == catalog.PlaceholderID {
				continue
			}
			if entry, ok := cat.Get(choice.ID); ok {
				listing.Styles = append(listing.Styles, entryRow(entry))
			}
		}
	}
	listing.Count = len(listing.Styles)

	return cli.NewFormatter(format).FormatTo(os.Stdout, listing)
}

func entryRow(entry *pack.StyleEntry) styleRow {
	return styleRow{
		ID:       entry.ID,
		Name:     entry.Name,
		Category: entry.Category,
		Variants: entry.Variants(),
		Tags:     entry.Tags,
	}
}
