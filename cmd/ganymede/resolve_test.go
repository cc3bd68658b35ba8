package main

import (
	"testing"

	"mercator-hq/ganymede/pkg/cli"
)

func resetResolveFlags() {
	resolveFlags.prompt = ""
	resolveFlags.style = ""
	resolveFlags.styleID = ""
	resolveFlags.variant = ""
	resolveFlags.noStyle = false
	resolveFlags.format = "text"
}

func TestResolvePromptRequiresStyle(t *testing.T) {
	resetResolveFlags()
	resolveFlags.prompt = "a lighthouse at dusk"

	err := resolvePrompt(nil, []string{})
	if err == nil {
		t.Fatal("resolvePrompt() without style selection should return error")
	}
	if cli.ExitCode(err) != 2 {
		t.Errorf("ExitCode = %d, want 2", cli.ExitCode(err))
	}
}

func TestResolveStyledPrompt(t *testing.T) {
	setConfigFile(t, writeCatalogFixture(t))
	resetResolveFlags()

	resolveFlags.prompt = "a lighthouse at dusk"
	resolveFlags.styleID = "film_noir"

	if err := resolvePrompt(nil, []string{}); err != nil {
		t.Errorf("resolvePrompt() returned error: %v", err)
	}
}

func TestResolveDisplayLabelChoice(t *testing.T) {
	setConfigFile(t, writeCatalogFixture(t))
	resetResolveFlags()

	resolveFlags.prompt = "a lighthouse at dusk"
	resolveFlags.style = "Cinema | Film Noir | film_noir"

	if err := resolvePrompt(nil, []string{}); err != nil {
		t.Errorf("resolvePrompt() with display label returned error: %v", err)
	}
}

func TestResolveProseVariant(t *testing.T) {
	setConfigFile(t, writeCatalogFixture(t))
	resetResolveFlags()

	resolveFlags.prompt = "a lighthouse at dusk"
	resolveFlags.styleID = "film_noir"
	resolveFlags.variant = "flux_2_klein"
	resolveFlags.format = "json"

	if err := resolvePrompt(nil, []string{}); err != nil {
		t.Errorf("resolvePrompt() with prose variant returned error: %v", err)
	}
}

func TestResolveNoStyle(t *testing.T) {
	setConfigFile(t, writeCatalogFixture(t))
	resetResolveFlags()

	resolveFlags.prompt = "a lighthouse at dusk"
	resolveFlags.noStyle = true

	if err := resolvePrompt(nil, []string{}); err != nil {
		t.Errorf("resolvePrompt() with --no-style returned error: %v", err)
	}
}

func TestResolveUnknownStyle(t *testing.T) {
	setConfigFile(t, writeCatalogFixture(t))
	resetResolveFlags()

	resolveFlags.prompt = "a lighthouse at dusk"
	resolveFlags.styleID = "does_not_exist"

	err := resolvePrompt(nil, []string{})
	if err == nil {
		t.Fatal("resolvePrompt() with unknown style should return error")
	}
	if cli.ExitCode(err) != 1 {
		t.Errorf("ExitCode = %d, want 1", cli.ExitCode(err))
	}
}
