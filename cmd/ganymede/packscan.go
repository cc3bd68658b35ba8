package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// The authoring commands (validate, audit, add) read pack documents in
// their raw authored shape rather than through the catalog loader. The
// loader tolerates and normalizes malformed entries to keep the server
// up; the authoring tools exist to report exactly those problems before
// the packs are committed.

// rawStyle is one style entry as authored.
type rawStyle struct {
	// File is the pack document the entry came from.
	File string
	// Index is the position within the document's styles array.
	Index int
	// Fields holds the entry's decoded key set. Nil when the array
	// element was not an object.
	Fields map[string]interface{}
}

// str returns the named field when it is a string, "" otherwise.
func (s rawStyle) str(key string) string {
	v, ok := s.Fields[key]
	if !ok {
		return ""
	}
	str, _ := v.(string)
	return str
}

// section returns the named field when it is an object. The second
// result reports presence, the third whether the value was an object.
func (s rawStyle) section(key string) (map[string]interface{}, bool, bool) {
	v, ok := s.Fields[key]
	if !ok {
		return nil, false, false
	}
	m, isMap := v.(map[string]interface{})
	return m, true, isMap
}

// badPack records a document that could not be decoded at all.
type badPack struct {
	File string `json:"file"`
	Err  string `json:"error"`
}

// rawScan is the result of scanning the pack sources.
type rawScan struct {
	Styles     []rawStyle
	Files      []string
	BadPacks   []badPack
	FromLegacy bool
}

// listPackFiles returns the pack documents in dir in merge order:
// direct children only, dot-files skipped, recognized extensions,
// sorted by filename.
func listPackFiles(dir string, extensions []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !hasPackExtension(name, extensions) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

func hasPackExtension(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// loadRawStyles scans the pack directory and decodes every document,
// falling back to the legacy single document when the directory is
// missing or contributes no files. Undecodable documents are collected
// rather than failing the scan.
func loadRawStyles(packsDir, legacyPath string, extensions []string) (*rawScan, error) {
	scan := &rawScan{}

	files, err := listPackFiles(packsDir, extensions)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading pack directory %s: %w", packsDir, err)
	}

	if len(files) == 0 && legacyPath != "" {
		if _, statErr := os.Stat(legacyPath); statErr == nil {
			files = []string{legacyPath}
			scan.FromLegacy = true
		}
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			scan.BadPacks = append(scan.BadPacks, badPack{File: file, Err: err.Error()})
			continue
		}
		doc, err := decodeRawDocument(file, data)
		if err != nil {
			scan.BadPacks = append(scan.BadPacks, badPack{File: file, Err: err.Error()})
			continue
		}
		scan.Files = append(scan.Files, file)

		styles, _ := doc["styles"].([]interface{})
		for i, item := range styles {
			fields, _ := item.(map[string]interface{})
			scan.Styles = append(scan.Styles, rawStyle{
				File:   file,
				Index:  i,
				Fields: fields,
			})
		}
	}

	return scan, nil
}

func decodeRawDocument(path string, data []byte) (map[string]interface{}, error) {
	var doc map[string]interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// commaWithoutSpace reports whether text contains a comma not followed
// by whitespace. Phrase joining downstream expects ", " separators, so
// a tight comma survives into the final prompt.
func commaWithoutSpace(text string) bool {
	for i, r := range text {
		if r != ',' {
			continue
		}
		next, size := utf8.DecodeRuneInString(text[i+1:])
		if size == 0 || !unicode.IsSpace(next) {
			return true
		}
	}
	return false
}
