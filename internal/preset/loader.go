// Package preset loads named presets and resolves their inheritance chains.
//
// A preset is a configuration document loaded by name via the extends
// mechanism. Resolution is depth-first with ancestors inserted before
// descendants, so later merge steps see ancestor contributions first and the
// last-inserted layer wins on scalar conflicts.
package preset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"agentconf/internal/config"
)

// ErrNotFound indicates no candidate file exists for a preset name.
var ErrNotFound = errors.New("preset not found")

// Loader resolves a preset name to a parsed document. Implementations return
// ErrNotFound (wrapped) when nothing matches the name.
type Loader interface {
	Load(ctx context.Context, name string) (*config.Document, error)
}

// documentExts are probed in order when resolving a name to a file.
var documentExts = []string{".json", ".jsonc", ".yaml", ".yml", ".toml"}

// manifestName is the package-style manifest probed for named presets; its
// "entry" field points at the preset document within the package directory.
const manifestName = "agentconf.json"

// FSLoader resolves presets from the filesystem.
//
// Relative and absolute path names probe the document extensions directly.
// Bare names try the builtin directories first, then package-style
// resolution under the search directories: a directory carrying an
// agentconf.json manifest resolves through its entry field, otherwise the
// extension probes run inside the directory root.
type FSLoader struct {
	// BaseDir anchors relative path names, usually the directory holding
	// the user's configuration document.
	BaseDir string
	// BuiltinDirs is the fixed ordered candidate list for builtin presets:
	// the installed presets directory, then the local development path.
	BuiltinDirs []string
	// SearchDirs is where package-style names resolve from.
	SearchDirs []string
}

// Load finds, decodes, key-normalizes, and structurally parses one preset.
// Structural problems inside a preset are returned as an error; the resolver
// decides whether that is fatal.
func (l *FSLoader) Load(ctx context.Context, name string) (*config.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := l.locate(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset %q: %w", name, err)
	}
	raw, err := config.DecodeFile(path, data)
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", name, err)
	}
	normalized, _ := config.NormalizeKeys(raw)
	doc, problems := config.FromMap(normalized)
	if len(problems) > 0 {
		return doc, fmt.Errorf("preset %q: %s", name, strings.Join(problems, "; "))
	}
	return doc, nil
}

// locate maps a preset name to a document path.
func (l *FSLoader) locate(name string) (string, error) {
	if isPathName(name) {
		base := name
		if !filepath.IsAbs(base) && l.BaseDir != "" {
			base = filepath.Join(l.BaseDir, base)
		}
		if path, ok := probe(base); ok {
			return path, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	for _, dir := range l.BuiltinDirs {
		if path, ok := probe(filepath.Join(dir, name)); ok {
			return path, nil
		}
	}
	for _, dir := range l.SearchDirs {
		pkgDir := filepath.Join(dir, name)
		if path, ok := resolvePackage(pkgDir); ok {
			return path, nil
		}
		if path, ok := probe(pkgDir); ok {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// isPathName reports whether the name addresses the filesystem directly
// instead of naming a builtin or package preset.
func isPathName(name string) bool {
	return filepath.IsAbs(name) ||
		strings.HasPrefix(name, "./") ||
		strings.HasPrefix(name, "../") ||
		strings.ContainsRune(name, os.PathSeparator) ||
		strings.ContainsRune(name, '/')
}

// probe tries the document extensions against a base path, then the
// directory-index form base/preset.json.
func probe(base string) (string, bool) {
	if info, err := os.Stat(base); err == nil && !info.IsDir() {
		return base, true
	}
	for _, ext := range documentExts {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	index := filepath.Join(base, "preset.json")
	if info, err := os.Stat(index); err == nil && !info.IsDir() {
		return index, true
	}
	return "", false
}

// resolvePackage reads a package manifest and returns its entry document.
func resolvePackage(dir string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return "", false
	}
	raw, err := config.Decode(data, config.FormatJSON)
	if err != nil {
		return "", false
	}
	entry, _ := raw["entry"].(string)
	if entry == "" {
		return "", false
	}
	path := filepath.Join(dir, entry)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path, true
	}
	return "", false
}
