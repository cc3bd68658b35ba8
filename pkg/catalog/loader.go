package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"mercator-hq/ganymede/pkg/pack"
)

// LoaderConfig contains configuration for the pack loader.
type LoaderConfig struct {
	// PacksDir is the directory holding pack documents. Files merge in
	// lexicographic filename order.
	PacksDir string

	// LegacyPath is the single-document fallback source used when the
	// directory is missing or yields no styles. Empty disables it.
	LegacyPath string

	// Extensions is the list of recognized pack file extensions
	// (default: ".json", ".yaml", ".yml").
	Extensions []string

	// MaxFileSize is the maximum pack file size in bytes (default: 10MB).
	MaxFileSize int64
}

// DefaultLoaderConfig returns the default loader configuration.
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		PacksDir:    filepath.Join("styles", "packs"),
		LegacyPath:  filepath.Join("styles", "styles_v1.json"),
		Extensions:  []string{".json", ".yaml", ".yml"},
		MaxFileSize: 10 * 1024 * 1024, // 10MB
	}
}

// Loader reads pack documents from the configured sources. It recovers
// from per-file and per-entry failures, recording diagnostics instead of
// aborting, so one corrupt pack never takes down the catalog.
type Loader struct {
	config *LoaderConfig
	logger *slog.Logger
}

// NewLoader creates a new pack loader.
func NewLoader(config *LoaderConfig, logger *slog.Logger) *Loader {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{config: config, logger: logger}
}

// LoadResult contains the outcome of one load cycle across all sources.
type LoadResult struct {
	// Documents holds the parsed documents in merge order.
	Documents []*pack.Document

	// Diagnostics holds one entry per observable load event.
	Diagnostics []Diagnostic

	// Issues aggregates the typed errors behind the diagnostics.
	Issues ErrorList

	// Signature is the source modification signature at load time.
	Signature Signature

	// FromLegacy reports whether the legacy fallback source was used.
	FromLegacy bool

	// FileCount is the number of files that contributed documents.
	FileCount int

	// StyleCount is the total number of entries across all documents,
	// before duplicate-id resolution.
	StyleCount int

	// LoadTime is the duration of the load operation.
	LoadTime time.Duration
}

// Load reads the source chain and returns every usable document. Sources
// are tried in order: the packs directory first, then the legacy document.
// The first source yielding at least one style wins; a source that exists
// but contains nothing usable passes through to the next. Running out of
// sources is not an error, it is an empty catalog.
func (l *Loader) Load() *LoadResult {
	start := time.Now()
	result := &LoadResult{}

	sources := []func(*LoadResult) bool{
		l.loadPacksDir,
		l.loadLegacy,
	}
	for _, source := range sources {
		if source(result) {
			break
		}
	}

	for _, diag := range result.Diagnostics {
		if diag.Err != nil {
			result.Issues.Add(diag.Err)
		}
	}

	result.Signature = ComputeSignature(l.config.PacksDir, l.config.LegacyPath, l.config.Extensions)
	result.LoadTime = time.Since(start)

	l.logger.Info("style packs loaded",
		"files", result.FileCount,
		"styles", result.StyleCount,
		"diagnostics", len(result.Diagnostics),
		"legacy", result.FromLegacy,
		"duration_ms", result.LoadTime.Milliseconds(),
	)

	return result
}

// loadPacksDir loads every pack file in the directory, sorted by
// filename. Dot-files are skipped. Returns false when the directory is
// missing or contributes zero styles, handing over to the next source.
func (l *Loader) loadPacksDir(result *LoadResult) bool {
	dir := l.config.PacksDir
	if dir == "" {
		return false
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Debug("packs directory missing", "dir", dir)
		} else {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				File:    dir,
				Outcome: OutcomeSkippedFile,
				Detail:  "failed to read packs directory",
				Err:     &SourceError{Path: dir, Message: "failed to read directory", Cause: err},
			})
		}
		return false
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// Editor droppings and sync temp files arrive hidden; the
		// watcher ignores them too.
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !l.hasValidExtension(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		doc, diags := l.loadFile(path)
		result.Diagnostics = append(result.Diagnostics, diags...)
		if doc == nil {
			continue
		}
		result.Documents = append(result.Documents, doc)
		result.FileCount++
		result.StyleCount += len(doc.Styles)
	}

	if result.StyleCount == 0 {
		// Nothing usable in the directory; let the legacy source decide.
		result.Documents = nil
		result.FileCount = 0
		return false
	}

	return true
}

// loadLegacy loads the single legacy document. Only reached when the
// packs directory produced nothing usable.
func (l *Loader) loadLegacy(result *LoadResult) bool {
	path := l.config.LegacyPath
	if path == "" {
		return false
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				File:    path,
				Outcome: OutcomeSkippedFile,
				Detail:  "failed to access legacy styles file",
				Err:     &SourceError{Path: path, Message: "failed to access file", Cause: err},
			})
		}
		return false
	}

	doc, diags := l.loadFile(path)
	result.Diagnostics = append(result.Diagnostics, diags...)
	if doc == nil {
		return false
	}

	result.Documents = []*pack.Document{doc}
	result.FromLegacy = true
	result.FileCount = 1
	result.StyleCount = len(doc.Styles)
	result.Diagnostics = append(result.Diagnostics, Diagnostic{
		File:    path,
		Outcome: OutcomeLegacyFallback,
		Detail:  "packs directory yielded no styles, using legacy document",
	})

	return true
}

// loadFile reads and decodes one pack file. A nil document means the
// whole file was rejected; the reason is in the diagnostics.
func (l *Loader) loadFile(path string) (*pack.Document, []Diagnostic) {
	var diags []Diagnostic

	skip := func(detail string, err error) (*pack.Document, []Diagnostic) {
		diags = append(diags, Diagnostic{
			File:    path,
			Outcome: OutcomeSkippedFile,
			Detail:  detail,
			Err:     err,
		})
		return nil, diags
	}

	info, err := os.Stat(path)
	if err != nil {
		return skip("failed to access file", &SourceError{Path: path, Message: "failed to access file", Cause: err})
	}
	if !info.Mode().IsRegular() {
		return skip("not a regular file", &SourceError{Path: path, Message: "not a regular file"})
	}
	if info.Size() > l.config.MaxFileSize {
		msg := fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", info.Size(), l.config.MaxFileSize)
		return skip(msg, &SourceError{Path: path, Message: msg})
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return skip("failed to read file", &SourceError{Path: path, Message: "failed to read file", Cause: err})
	}
	if !utf8.Valid(data) {
		return skip("file contains invalid UTF-8 encoding", &SourceError{Path: path, Message: "file contains invalid UTF-8 encoding"})
	}

	doc, issues, err := pack.Decode(path, data)
	if err != nil {
		l.logger.Warn("skipping unparseable pack", "file", path, "error", err)
		return skip("failed to parse document", err)
	}

	for _, issue := range issues {
		diag := Diagnostic{
			File:    path,
			Outcome: OutcomeSkippedEntry,
			Detail:  "entry failed schema validation",
			Err:     issue,
		}
		var entryErr *pack.EntryError
		if errors.As(issue, &entryErr) {
			diag.StyleID = entryErr.StyleID
			diag.Detail = entryErr.Message
		}
		diags = append(diags, diag)
	}

	diags = append(diags, Diagnostic{
		File:    path,
		Outcome: OutcomeLoaded,
		Detail:  fmt.Sprintf("loaded %d styles", len(doc.Styles)),
	})

	return doc, diags
}

func (l *Loader) hasValidExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, validExt := range l.config.Extensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}

// Config returns the loader's configuration.
func (l *Loader) Config() *LoaderConfig {
	return l.config
}
