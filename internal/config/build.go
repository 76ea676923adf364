package config

import (
	"fmt"
	"sort"
	"strings"
)

// FromMap builds a Document from a key-normalized map, collecting structural
// validation problems instead of failing fast. The returned document is
// always usable: fields that failed validation are left unset so compilation
// can continue with defaults in non-strict mode.
func FromMap(raw map[string]any) (*Document, []string) {
	var errs []string
	doc := &Document{}

	if v, ok := raw["extends"]; ok {
		doc.Extends = stringOrList(v, "extends", &errs)
	}
	if v, ok := raw["plugins"]; ok {
		doc.Plugins = stringOrList(v, "plugins", &errs)
	}
	if v, ok := raw["env"]; ok {
		doc.Env = stringMap(v, "env", &errs)
	}
	if v, ok := raw["permissions"]; ok {
		doc.Permissions = parsePermissions(v, &errs)
	}
	if v, ok := raw["hooks"]; ok {
		doc.Hooks = parseHooks(v, &errs)
	}
	if v, ok := raw["commands"]; ok {
		doc.Commands = parseCommands(v, &errs)
	}

	doc.Model = scalarString(raw, "model", &errs)
	doc.APIKeyHelper = scalarString(raw, "apiKeyHelper", &errs)
	doc.ForceLoginMethod = scalarString(raw, "forceLoginMethod", &errs)
	doc.ForceLoginOrgUUID = scalarString(raw, "forceLoginOrgUUID", &errs)
	doc.AWSAuthRefresh = scalarString(raw, "awsAuthRefresh", &errs)
	doc.AWSCredentialExport = scalarString(raw, "awsCredentialExport", &errs)

	if v, ok := raw["cleanupPeriodDays"]; ok {
		if n, ok := asInt(v); ok {
			doc.CleanupPeriodDays = &n
		} else {
			errs = append(errs, fmt.Sprintf("cleanupPeriodDays: expected number, got %T", v))
		}
	}
	if v, ok := raw["includeCoAuthoredBy"]; ok {
		if b, ok := v.(bool); ok {
			doc.IncludeCoAuthoredBy = &b
		} else {
			errs = append(errs, fmt.Sprintf("includeCoAuthoredBy: expected bool, got %T", v))
		}
	}
	if v, ok := raw["enableAllProjectMcpServers"]; ok {
		if b, ok := v.(bool); ok {
			doc.EnableAllProjectMcpServers = &b
		} else {
			errs = append(errs, fmt.Sprintf("enableAllProjectMcpServers: expected bool, got %T", v))
		}
	}
	if v, ok := raw["enabledMcpjsonServers"]; ok {
		doc.EnabledMcpjsonServers = stringOrList(v, "enabledMcpjsonServers", &errs)
	}
	if v, ok := raw["disabledMcpjsonServers"]; ok {
		doc.DisabledMcpjsonServers = stringOrList(v, "disabledMcpjsonServers", &errs)
	}
	if v, ok := raw["statusLine"]; ok {
		doc.StatusLine = v
	}

	return doc, errs
}

// scalarString pulls an optional string field out of the map.
func scalarString(raw map[string]any, key string, errs *[]string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		*errs = append(*errs, fmt.Sprintf("%s: expected string, got %T", key, v))
		return ""
	}
	return s
}

// stringOrList accepts either a single string or a list of strings.
func stringOrList(v any, field string, errs *[]string) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				*errs = append(*errs, fmt.Sprintf("%s[%d]: expected string, got %T", field, i, item))
				continue
			}
			out = append(out, s)
		}
		return out
	case []string:
		return t
	default:
		*errs = append(*errs, fmt.Sprintf("%s: expected string or list of strings, got %T", field, v))
		return nil
	}
}

// stringMap accepts a map with string values.
func stringMap(v any, field string, errs *[]string) map[string]string {
	m, ok := v.(map[string]any)
	if !ok {
		*errs = append(*errs, fmt.Sprintf("%s: expected map, got %T", field, v))
		return nil
	}
	out := make(map[string]string, len(m))
	for key, value := range m {
		s, ok := value.(string)
		if !ok {
			*errs = append(*errs, fmt.Sprintf("%s.%s: expected string, got %T", field, key, value))
			continue
		}
		out[key] = s
	}
	return out
}

func parsePermissions(v any, errs *[]string) PermissionSet {
	m, ok := v.(map[string]any)
	if !ok {
		*errs = append(*errs, fmt.Sprintf("permissions: expected map with allow/ask/deny, got %T", v))
		return PermissionSet{}
	}
	set := PermissionSet{}
	for key, value := range m {
		switch strings.ToLower(key) {
		case "allow":
			set.Allow = stringOrList(value, "permissions.allow", errs)
		case "ask":
			set.Ask = stringOrList(value, "permissions.ask", errs)
		case "deny":
			set.Deny = stringOrList(value, "permissions.deny", errs)
		default:
			*errs = append(*errs, fmt.Sprintf("permissions.%s: unknown list", key))
		}
	}
	return set
}

func parseHooks(v any, errs *[]string) map[string][]HookDecl {
	m, ok := v.(map[string]any)
	if !ok {
		*errs = append(*errs, fmt.Sprintf("hooks: expected map of event type to declarations, got %T", v))
		return nil
	}
	out := make(map[string][]HookDecl, len(m))
	for event, value := range m {
		entries, ok := value.([]any)
		if !ok {
			*errs = append(*errs, fmt.Sprintf("hooks.%s: expected list, got %T", event, value))
			continue
		}
		var decls []HookDecl
		for i, entry := range entries {
			decl, ok := parseHookDecl(entry)
			if !ok {
				*errs = append(*errs, fmt.Sprintf("hooks.%s[%d]: expected command string or hook object, got %T", event, i, entry))
				continue
			}
			decls = append(decls, decl)
		}
		if len(decls) > 0 {
			out[event] = decls
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parseHookDecl accepts the three authored shapes: a bare command string,
// a flat {matcher, command, timeout} object, and the canonical
// {matcher, hooks: [{type, command, timeout}]} object.
func parseHookDecl(entry any) (HookDecl, bool) {
	if s, ok := entry.(string); ok {
		return HookDecl{Commands: []HookCommand{{Command: s}}}, true
	}
	m, ok := entry.(map[string]any)
	if !ok {
		return HookDecl{}, false
	}
	decl := HookDecl{}
	if matcher, ok := m["matcher"].(string); ok {
		decl.Matcher = matcher
	}
	if cmd, ok := m["command"].(string); ok {
		hc := HookCommand{Command: cmd}
		if n, ok := asInt(firstPresent(m, "timeoutMs", "timeout")); ok {
			hc.TimeoutMs = n
		}
		decl.Commands = append(decl.Commands, hc)
	}
	for _, listKey := range []string{"hooks", "commands"} {
		list, ok := m[listKey].([]any)
		if !ok {
			continue
		}
		for _, item := range list {
			switch t := item.(type) {
			case string:
				decl.Commands = append(decl.Commands, HookCommand{Command: t})
			case map[string]any:
				cmd, _ := t["command"].(string)
				if cmd == "" {
					continue
				}
				hc := HookCommand{Command: cmd}
				if n, ok := asInt(firstPresent(t, "timeoutMs", "timeout")); ok {
					hc.TimeoutMs = n
				}
				decl.Commands = append(decl.Commands, hc)
			}
		}
	}
	if len(decl.Commands) == 0 {
		return HookDecl{}, false
	}
	return decl, true
}

func parseCommands(v any, errs *[]string) CommandsSpec {
	switch t := v.(type) {
	case []any:
		// A bare list names command presets.
		return CommandsSpec{Presets: stringOrList(t, "commands", errs)}
	case map[string]any:
		if isStructuredCommands(t) {
			spec := CommandsSpec{}
			if pv, ok := t["presets"]; ok {
				spec.Presets = stringOrList(pv, "commands.presets", errs)
			}
			if fv, ok := t["files"]; ok {
				spec.Files = stringOrList(fv, "commands.files", errs)
			}
			if cv, ok := t["commands"]; ok {
				if m, ok := cv.(map[string]any); ok {
					spec.Inline = parseInlineCommands(m, errs)
				} else {
					*errs = append(*errs, fmt.Sprintf("commands.commands: expected map, got %T", cv))
				}
			}
			return spec
		}
		return CommandsSpec{Inline: parseInlineCommands(t, errs)}
	default:
		*errs = append(*errs, fmt.Sprintf("commands: expected map or list, got %T", v))
		return CommandsSpec{}
	}
}

// isStructuredCommands reports whether the map is the {presets, files,
// commands} form rather than an inline name → command map. The structured
// form is assumed whenever every key is one of the three section names;
// an inline command that happens to be named "presets" must use the
// structured form explicitly.
func isStructuredCommands(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for key := range m {
		switch key {
		case "presets", "files", "commands":
		default:
			return false
		}
	}
	return true
}

func parseInlineCommands(m map[string]any, errs *[]string) map[string]CommandSpec {
	out := make(map[string]CommandSpec, len(m))
	for name, value := range m {
		switch t := value.(type) {
		case string:
			out[name] = CommandSpec{Content: t}
		case map[string]any:
			spec := CommandSpec{}
			spec.Content, _ = t["content"].(string)
			spec.Description, _ = t["description"].(string)
			spec.Category, _ = t["category"].(string)
			spec.Model, _ = t["model"].(string)
			if hint, ok := firstPresent(t, "argumentHint", "argument-hint").(string); ok {
				spec.ArgumentHint = hint
			}
			if tools := firstPresent(t, "allowedTools", "allowed-tools"); tools != nil {
				spec.AllowedTools = stringOrList(tools, "commands."+name+".allowedTools", errs)
			}
			out[name] = spec
		default:
			*errs = append(*errs, fmt.Sprintf("commands.%s: expected string or map, got %T", name, value))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return nil
}

// asInt coerces the numeric types the three decoders produce.
func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case uint64:
		return int(t), true
	}
	return 0, false
}

// SortedKeys returns map keys in sorted order, for deterministic iteration
// where authoring order is unavailable.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
