package permission

import (
	"fmt"
	"regexp"

	"agentconf/internal/config"
)

// toolNameRE matches the tool-name portion of a permission pattern: an
// uppercase letter followed by letters.
var toolNameRE = regexp.MustCompile(`^[A-Z][A-Za-z]*$`)

// Merge produces the final permission set from contributions ordered by
// ascending precedence: resolved presets first, then plugins, then the user
// configuration. Each list is concatenated in that order and deduplicated
// preserving first-seen position. Conflicts across lists resolve with strict
// deny > ask > allow priority: a pattern in deny is dropped from ask and
// allow, and a pattern in ask is dropped from allow.
func Merge(sources ...config.PermissionSet) config.PermissionSet {
	var allow, ask, deny []string
	for _, src := range sources {
		allow = append(allow, src.Allow...)
		ask = append(ask, src.Ask...)
		deny = append(deny, src.Deny...)
	}

	deny = dedupe(deny, nil)
	ask = dedupe(ask, toSet(deny))

	exclude := toSet(deny)
	for _, p := range ask {
		exclude[p] = true
	}
	allow = dedupe(allow, exclude)

	return config.PermissionSet{Allow: allow, Ask: ask, Deny: deny}
}

// Validate checks every pattern in the set against the permission syntax and
// returns one message per violation. Invalid entries are reported, never
// removed; the caller decides whether the violations are fatal.
func Validate(set config.PermissionSet) []string {
	var errs []string
	check := func(list []string, name string) {
		for _, pattern := range list {
			if !ValidPattern(pattern) {
				errs = append(errs, fmt.Sprintf("permissions.%s: invalid pattern %q", name, pattern))
			}
		}
	}
	check(set.Allow, "allow")
	check(set.Ask, "ask")
	check(set.Deny, "deny")
	return errs
}

// ValidPattern reports whether a pattern is a well-formed Tool or
// Tool(suffix) string. The suffix itself is free-form.
func ValidPattern(pattern string) bool {
	rule := ParseRule(pattern)
	return toolNameRE.MatchString(rule.Tool)
}

// dedupe keeps the first occurrence of each pattern, skipping anything in
// the exclude set.
func dedupe(list []string, exclude map[string]bool) []string {
	var out []string
	seen := make(map[string]bool, len(list))
	for _, p := range list {
		if seen[p] || exclude[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, p := range list {
		set[p] = true
	}
	return set
}
