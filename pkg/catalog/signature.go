package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileSig is the modification signature of one source file: enough to
// detect edits cheaply without reading content. A missing file is
// represented by a zero ModTime and Size of -1 so that creating or
// deleting it changes the signature.
type FileSig struct {
	Path    string
	ModTime int64 // unix nanoseconds
	Size    int64
}

// Signature is the ordered modification signature of every catalog source:
// each candidate pack file in the directory plus the legacy document path,
// which always participates so that creating or removing it invalidates
// the catalog even while the directory is in use.
type Signature []FileSig

// Equal reports whether two signatures describe identical source states.
func (s Signature) Equal(other Signature) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// ComputeSignature stats the pack directory and the legacy path and
// returns the combined signature. Directory entries are filtered the
// way the loader filters them (recognized extensions, no dot-files)
// and sorted by filename, matching load order. Stat failures degrade
// to missing-file marks rather than errors; the signature's job is
// change detection, not validation.
func ComputeSignature(packsDir, legacyPath string, extensions []string) Signature {
	var sig Signature

	extSet := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		extSet[strings.ToLower(ext)] = true
	}

	entries, err := os.ReadDir(packsDir)
	if err == nil {
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			if !extSet[strings.ToLower(filepath.Ext(entry.Name()))] {
				continue
			}
			names = append(names, entry.Name())
		}
		sort.Strings(names)

		for _, name := range names {
			sig = append(sig, statSig(filepath.Join(packsDir, name)))
		}
	}

	if legacyPath != "" {
		sig = append(sig, statSig(legacyPath))
	}

	return sig
}

func statSig(path string) FileSig {
	info, err := os.Stat(path)
	if err != nil {
		return FileSig{Path: path, ModTime: 0, Size: -1}
	}
	return FileSig{
		Path:    path,
		ModTime: info.ModTime().UnixNano(),
		Size:    info.Size(),
	}
}
