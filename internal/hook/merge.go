// Package hook merges event-hook declarations from presets, plugins, and the
// user configuration into the canonical settings shape.
//
// Merging is two-pass. The collection pass appends declarations source by
// source, suppressing exact duplicates. The normalization pass canonicalizes
// matchers and groups entries that share one, concatenating their commands in
// collection order.
package hook

import (
	"sort"
	"strings"

	"agentconf/internal/config"
)

// DefaultTimeoutMs is applied to hook commands that do not set a timeout.
const DefaultTimeoutMs = 3000

// Entry is one canonical hook entry as written to the output document.
type Entry struct {
	Matcher string    `json:"matcher"`
	Hooks   []Command `json:"hooks"`
}

// Command is the canonical command shape inside an Entry.
type Command struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout"`
}

// Merge combines hook declarations from sources in ascending precedence
// order (presets, then plugins, then user) and returns the canonical
// event → entries map.
func Merge(sources ...map[string][]config.HookDecl) map[string][]Entry {
	collected := collect(sources)
	if len(collected) == 0 {
		return nil
	}
	out := make(map[string][]Entry, len(collected))
	for event, decls := range collected {
		out[event] = normalize(decls)
	}
	return out
}

// collect appends declarations per event type, skipping entries already
// present with the same duplicate-suppression key.
func collect(sources []map[string][]config.HookDecl) map[string][]config.HookDecl {
	merged := make(map[string][]config.HookDecl)
	seen := make(map[string]map[string]bool)
	for _, source := range sources {
		for event, decls := range source {
			if seen[event] == nil {
				seen[event] = make(map[string]bool)
			}
			for _, decl := range decls {
				key := dedupeKey(decl)
				if seen[event][key] {
					continue
				}
				seen[event][key] = true
				merged[event] = append(merged[event], decl)
			}
		}
	}
	return merged
}

// dedupeKey identifies a declaration for exact-duplicate suppression:
// the matcher plus the sorted command strings, or just the bare command
// string for a legacy simple-form hook.
func dedupeKey(decl config.HookDecl) string {
	if decl.Matcher == "" && len(decl.Commands) == 1 {
		return decl.Commands[0].Command
	}
	cmds := make([]string, len(decl.Commands))
	for i, c := range decl.Commands {
		cmds[i] = c.Command
	}
	sort.Strings(cmds)
	return decl.Matcher + "\x00" + strings.Join(cmds, "\x00")
}

// normalize converts collected declarations to canonical entries, grouping
// by normalized matcher. Entry order follows the first appearance of each
// matcher; command order within an entry follows collection order.
func normalize(decls []config.HookDecl) []Entry {
	var order []string
	grouped := make(map[string][]Command)
	for _, decl := range decls {
		matcher := NormalizeMatcher(decl.Matcher)
		if _, ok := grouped[matcher]; !ok {
			order = append(order, matcher)
		}
		for _, c := range decl.Commands {
			timeout := c.TimeoutMs
			if timeout <= 0 {
				timeout = DefaultTimeoutMs
			}
			grouped[matcher] = append(grouped[matcher], Command{
				Type:    "command",
				Command: c.Command,
				Timeout: timeout,
			})
		}
	}
	entries := make([]Entry, 0, len(order))
	for _, matcher := range order {
		entries = append(entries, Entry{Matcher: matcher, Hooks: grouped[matcher]})
	}
	return entries
}

// NormalizeMatcher canonicalizes a hook matcher. Only tool-level matching is
// supported downstream, so a parenthesized argument suffix like
// "Bash(git *)" reduces to "Bash". An empty matcher or the regex ".*" maps
// to the wildcard "*".
func NormalizeMatcher(matcher string) string {
	matcher = strings.TrimSpace(matcher)
	if idx := strings.Index(matcher, "("); idx >= 0 {
		matcher = matcher[:idx]
	}
	if matcher == "" || matcher == ".*" {
		return "*"
	}
	return matcher
}
