package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"agentconf/internal/config"
)

// PresetLoader loads a command preset's inline definitions by name. The
// compiler wires this to the shared preset loader so command presets are
// memoized in the same session cache.
type PresetLoader func(ctx context.Context, name string) (map[string]config.CommandSpec, error)

// Resolver builds the final name → SlashCommand map.
type Resolver struct {
	// BaseDir anchors relative file globs in the user configuration.
	BaseDir string
	// LoadPreset resolves command presets referenced by name. Nil disables
	// the source.
	LoadPreset PresetLoader
}

// Resolve applies sources in ascending priority: preset-declared commands,
// plugin-declared commands, then the user configuration's own sources
// (command presets by name, glob-matched files, inline definitions). Each
// source replaces same-named commands from earlier sources wholesale.
// Recoverable problems (unreadable files, unknown command presets) come back
// as warnings.
func (r *Resolver) Resolve(
	ctx context.Context,
	presetCommands []map[string]config.CommandSpec,
	pluginCommands []map[string]config.CommandSpec,
	user config.CommandsSpec,
) (map[string]SlashCommand, []string) {
	resolved := make(map[string]SlashCommand)
	var warnings []string

	for _, source := range presetCommands {
		applyInline(resolved, source)
	}
	for _, source := range pluginCommands {
		applyInline(resolved, source)
	}

	for _, name := range user.Presets {
		if r.LoadPreset == nil {
			warnings = append(warnings, fmt.Sprintf("commands: no loader for command preset %q", name))
			continue
		}
		specs, err := r.LoadPreset(ctx, name)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("commands: loading command preset %q: %v", name, err))
			continue
		}
		applyInline(resolved, specs)
	}

	fileWarnings := r.applyFiles(resolved, user.Files)
	warnings = append(warnings, fileWarnings...)

	applyInline(resolved, user.Inline)

	if len(resolved) == 0 {
		return nil, warnings
	}
	return resolved, warnings
}

// applyInline sets each definition, iterating names in sorted order so
// resolution is deterministic.
func applyInline(resolved map[string]SlashCommand, specs map[string]config.CommandSpec) {
	for _, name := range config.SortedKeys(specs) {
		resolved[name] = fromSpec(name, specs[name])
	}
}

// applyFiles expands each glob pattern and parses every matched file.
func (r *Resolver) applyFiles(resolved map[string]SlashCommand, patterns []string) []string {
	var warnings []string
	for _, pattern := range patterns {
		if !filepath.IsAbs(pattern) && r.BaseDir != "" {
			pattern = filepath.Join(r.BaseDir, pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("commands: bad file pattern %q: %v", pattern, err))
			continue
		}
		if len(matches) == 0 {
			warnings = append(warnings, fmt.Sprintf("commands: no files match %q", pattern))
			continue
		}
		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("commands: reading %s: %v", path, err))
				continue
			}
			cmd := ParseCommandFile(path, string(data))
			resolved[cmd.Name] = cmd
		}
	}
	return warnings
}
