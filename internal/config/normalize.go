package config

import "strings"

// canonicalKeys is the recognized top-level key set, in canonical
// lower-camel-case spelling. Incoming keys match case-insensitively.
var canonicalKeys = []string{
	"extends",
	"plugins",
	"env",
	"permissions",
	"hooks",
	"commands",
	"model",
	"apiKeyHelper",
	"cleanupPeriodDays",
	"includeCoAuthoredBy",
	"statusLine",
	"forceLoginMethod",
	"forceLoginOrgUUID",
	"enableAllProjectMcpServers",
	"enabledMcpjsonServers",
	"disabledMcpjsonServers",
	"awsAuthRefresh",
	"awsCredentialExport",
}

var canonicalByLower = func() map[string]string {
	m := make(map[string]string, len(canonicalKeys))
	for _, k := range canonicalKeys {
		m[strings.ToLower(k)] = k
	}
	return m
}()

// NormalizeKeys rewrites every recognized top-level key to its canonical
// spelling and returns the names of keys it did not recognize. Unknown keys
// are dropped from the result; the caller decides whether to warn or fail.
// When two spellings of the same key collide, the later map iteration wins;
// authors should not do that and it is not worth preserving.
func NormalizeKeys(raw map[string]any) (map[string]any, []string) {
	out := make(map[string]any, len(raw))
	var unknown []string
	for key, value := range raw {
		// Schema annotations like "$schema" pass through compilation
		// silently; re-compiling a compiled document must not warn.
		if strings.HasPrefix(key, "$") {
			continue
		}
		canonical, ok := canonicalByLower[strings.ToLower(key)]
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		out[canonical] = value
	}
	return out, unknown
}
