package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"mercator-hq/ganymede/pkg/catalog"
	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/styler"
)

var resolveFlags struct {
	prompt  string
	style   string
	styleID string
	variant string
	noStyle bool
	format  string
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a prompt against the catalog",
	Long: `Resolve a prompt through the style engine, exactly as the server would.

The styled prompt is printed to stdout, so the command composes with
shell pipelines. With --format json the full resolution result is
emitted, including the matched style and the variant that produced it.

Examples:
  # Apply a style by id
  ganymede resolve --prompt "a lighthouse at dusk" --style cinematic_noir

  # Styles accept the display label the selection UI shows
  ganymede resolve -p "a lighthouse" --style "Cinema | Film Noir | film_noir"

  # Resolve a model-specific variant
  ganymede resolve -p "a lighthouse" --style film_noir --variant flux_2_klein

  # Pass the prompt through unstyled
  ganymede resolve -p "a lighthouse" --no-style`,
	RunE: resolvePrompt,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVarP(&resolveFlags.prompt, "prompt", "p", "", "prompt text to resolve")
	resolveCmd.Flags().StringVar(&resolveFlags.style, "style", "", "style choice: display label or bare id")
	resolveCmd.Flags().StringVar(&resolveFlags.styleID, "style-id", "", "explicit style id, bypassing --style")
	resolveCmd.Flags().StringVar(&resolveFlags.variant, "variant", "", "template variant (default from config)")
	resolveCmd.Flags().BoolVar(&resolveFlags.noStyle, "no-style", false, "pass the prompt through unstyled")
	resolveCmd.Flags().StringVar(&resolveFlags.format, "format", "text", "output format: text, json")
}

func resolvePrompt(cmd *cobra.Command, args []string) error {
	if !resolveFlags.noStyle && resolveFlags.style == "" && resolveFlags.styleID == "" {
		return cli.NewUsageError("resolve", "either --style, --style-id, or --no-style is required")
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

	engine, err := styler.New(store, logger, &styler.Config{
		DefaultVariant: cfg.Styler.DefaultVariant,
		MaxSuggestions: cfg.Styler.MaxSuggestions,
	})
	if err != nil {
		return cli.NewCommandError("resolve", err)
	}

	result, err := engine.Resolve(context.Background(), &styler.Request{
		Prompt:          resolveFlags.prompt,
		ApplyStyle:      !resolveFlags.noStyle,
		StyleChoice:     resolveFlags.style,
		StyleIDOverride: resolveFlags.styleID,
		Variant:         resolveFlags.variant,
	})
	if err != nil {
		return cli.NewCommandError("resolve", err)
	}

	if resolveFlags.format == "json" {
		return (&cli.JSONFormatter{Indent: true}).FormatTo(os.Stdout, result)
	}
	fmt.Println(result.FinalPrompt)
	return nil
}
