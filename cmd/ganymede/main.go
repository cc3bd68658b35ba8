// Mercator Ganymede is a style catalog server and prompt resolution engine.
//
// It serves a hot-reloadable catalog of prompt style packs, providing:
//   - Pack discovery, merging, and validation across local and git sources
//   - Template resolution that wraps user prompts in style templates
//   - Usage recording with per-style rollup statistics
//   - Authoring tools for validating, auditing, and extending packs
//
// Usage:
//
//	# Start the server with default configuration
//	ganymede run
//
//	# Start with a custom configuration file
//	ganymede run --config /path/to/config.yaml
//
//	# Resolve a prompt against the catalog
//	ganymede resolve --prompt "a lighthouse at dusk" --style cinematic_noir
//
//	# Validate pack documents before committing them
//	ganymede validate --packs-dir styles/packs
//
//	# Audit pack hygiene (naming, templates, tags)
//	ganymede audit
//
//	# Add a style to the user pack
//	ganymede add --name "Gritty Noir" --category "Cinema" --core "film noir, harsh shadows"
//
// For complete documentation, see: https://github.com/mercator-hq/ganymede
package main

func main() {
	Execute()
}
