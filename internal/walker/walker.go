// Package walker enumerates files under a skill root, applying the
// extension-glob and ignore-path discipline spec.md §4.1 requires. It
// owns no rule logic; analyzers decide what to do with the bytes it
// returns.
package walker

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize is the per-file read cap. Content above the cap is not
// read; the byte is the boundary (exactly MaxFileSize is read in full,
// MaxFileSize+1 is skipped).
const MaxFileSize = 1 << 20

// ScriptExtensions is the "script set" from spec.md §4.1.
var ScriptExtensions = []string{
	".js", ".mjs", ".cjs", ".py", ".sh", ".bash", ".rb", ".pl", ".ps1", ".bat", ".cmd",
}

// BroadExtensions is the script set plus markdown/config extensions,
// consumed by the network, credentials, and obfuscation analyzers.
var BroadExtensions = append(append([]string{}, ScriptExtensions...),
	".md", ".json", ".yaml", ".yml", ".toml", ".cfg", ".ini", ".env",
)

var ignoredDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
}

// File is a single walked file: its path relative to the skill root and
// its content, truncated at MaxFileSize.
type File struct {
	RelPath string
	Content string
}

// matchesExt reports whether name matches one of exts. ".env" in the
// broad set is a prefix match (".env", ".env.local", ...); every other
// extension is an exact suffix match.
func matchesExt(name string, exts []string) bool {
	lower := strings.ToLower(name)
	base := filepath.Base(lower)
	for _, ext := range exts {
		if ext == ".env" {
			if base == ".env" || strings.HasPrefix(base, ".env.") {
				return true
			}
			continue
		}
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Walk enumerates files under root whose name matches one of exts,
// skipping any path component named node_modules or .git, and skipping
// (silently) any file exceeding MaxFileSize or unreadable. The returned
// slice is deduplicated by relative path and ordered by filepath.WalkDir's
// lexical traversal.
func Walk(root string, exts []string) ([]File, error) {
	var out []File
	seen := map[string]struct{}{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// I/O error on this single entry: skip it, keep walking.
			return nil
		}
		if d.IsDir() {
			if _, ignore := ignoredDirs[d.Name()]; ignore && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		for _, part := range strings.Split(rel, string(filepath.Separator)) {
			if _, ignore := ignoredDirs[part]; ignore {
				return nil
			}
		}
		if !matchesExt(d.Name(), exts) {
			return nil
		}
		if _, dup := seen[rel]; dup {
			return nil
		}

		info, statErr := d.Info()
		if statErr != nil {
			return nil
		}
		if info.Size() > MaxFileSize {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		seen[rel] = struct{}{}
		out = append(out, File{RelPath: filepath.ToSlash(rel), Content: string(data)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Oversized reports the files under root matching exts that exceed
// MaxFileSize, so callers (the Script Analyzer) can surface a finding
// for a file the walker otherwise skips silently.
func Oversized(root string, exts []string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if _, ignore := ignoredDirs[d.Name()]; ignore && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		for _, part := range strings.Split(rel, string(filepath.Separator)) {
			if _, ignore := ignoredDirs[part]; ignore {
				return nil
			}
		}
		if !matchesExt(d.Name(), exts) {
			return nil
		}
		info, statErr := d.Info()
		if statErr != nil {
			return nil
		}
		if info.Size() > MaxFileSize {
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WalkNoExtension enumerates files with no extension at all (no "." in
// the base name), the candidate set for the Script Analyzer's
// extension-less-executable check. A shebanged file with no suffix looks
// nothing like the script glob set, so it needs its own walk.
func WalkNoExtension(root string) ([]File, error) {
	var out []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if _, ignore := ignoredDirs[d.Name()]; ignore && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.Contains(d.Name(), ".") {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		for _, part := range strings.Split(rel, string(filepath.Separator)) {
			if _, ignore := ignoredDirs[part]; ignore {
				return nil
			}
		}
		info, statErr := d.Info()
		if statErr != nil || info.Size() > MaxFileSize {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		out = append(out, File{RelPath: filepath.ToSlash(rel), Content: string(data)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
