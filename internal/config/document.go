// Package config defines the configuration document model and the steps that
// prepare a raw user document for compilation: sanitizing, field-name
// normalization, structural validation, and scalar/env merging.
//
// A Document is the working shape every later stage operates on. Presets are
// Documents loaded by name; the user's own settings file is a Document; plugin
// transforms receive and return Documents.
package config

// Document holds one configuration layer after key normalization and
// structural parsing. All fields are optional; zero values mean "not set".
type Document struct {
	Extends     []string              `json:"extends,omitempty"`
	Plugins     []string              `json:"plugins,omitempty"`
	Env         map[string]string     `json:"env,omitempty"`
	Permissions PermissionSet         `json:"permissions,omitempty"`
	Hooks       map[string][]HookDecl `json:"hooks,omitempty"`
	Commands    CommandsSpec          `json:"commands,omitempty"`

	Model                      string   `json:"model,omitempty"`
	APIKeyHelper               string   `json:"apiKeyHelper,omitempty"`
	CleanupPeriodDays          *int     `json:"cleanupPeriodDays,omitempty"`
	IncludeCoAuthoredBy        *bool    `json:"includeCoAuthoredBy,omitempty"`
	StatusLine                 any      `json:"statusLine,omitempty"`
	ForceLoginMethod           string   `json:"forceLoginMethod,omitempty"`
	ForceLoginOrgUUID          string   `json:"forceLoginOrgUUID,omitempty"`
	EnableAllProjectMcpServers *bool    `json:"enableAllProjectMcpServers,omitempty"`
	EnabledMcpjsonServers      []string `json:"enabledMcpjsonServers,omitempty"`
	DisabledMcpjsonServers     []string `json:"disabledMcpjsonServers,omitempty"`
	AWSAuthRefresh             string   `json:"awsAuthRefresh,omitempty"`
	AWSCredentialExport        string   `json:"awsCredentialExport,omitempty"`
}

// PermissionSet holds the three ordered permission pattern lists.
type PermissionSet struct {
	Allow []string `json:"allow,omitempty"`
	Ask   []string `json:"ask,omitempty"`
	Deny  []string `json:"deny,omitempty"`
}

// IsZero reports whether no list has any entries.
func (p PermissionSet) IsZero() bool {
	return len(p.Allow) == 0 && len(p.Ask) == 0 && len(p.Deny) == 0
}

// HookDecl is one hook declaration as authored: a matcher plus one or more
// commands. The legacy simple form (a bare command string) parses into a
// HookDecl with an empty matcher.
type HookDecl struct {
	Matcher  string        `json:"matcher,omitempty"`
	Commands []HookCommand `json:"commands"`
}

// HookCommand is a single shell command with an optional timeout.
// TimeoutMs zero means "use the default".
type HookCommand struct {
	Command   string `json:"command"`
	TimeoutMs int    `json:"timeoutMs,omitempty"`
}

// CommandsSpec holds the slash-command sources a configuration layer declares:
// named command presets, markdown file globs, and inline definitions.
type CommandsSpec struct {
	Presets []string               `json:"presets,omitempty"`
	Files   []string               `json:"files,omitempty"`
	Inline  map[string]CommandSpec `json:"commands,omitempty"`
}

// IsZero reports whether no command source is declared.
func (c CommandsSpec) IsZero() bool {
	return len(c.Presets) == 0 && len(c.Files) == 0 && len(c.Inline) == 0
}

// CommandSpec is one inline slash-command definition.
type CommandSpec struct {
	Content      string   `json:"content,omitempty"`
	Description  string   `json:"description,omitempty"`
	Category     string   `json:"category,omitempty"`
	ArgumentHint string   `json:"argumentHint,omitempty"`
	Model        string   `json:"model,omitempty"`
	AllowedTools []string `json:"allowedTools,omitempty"`
}

// Clone returns a deep copy of the document. Plugin transforms receive clones
// so a failed transform cannot corrupt the working configuration.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Extends = append([]string(nil), d.Extends...)
	out.Plugins = append([]string(nil), d.Plugins...)
	out.EnabledMcpjsonServers = append([]string(nil), d.EnabledMcpjsonServers...)
	out.DisabledMcpjsonServers = append([]string(nil), d.DisabledMcpjsonServers...)
	out.Permissions = PermissionSet{
		Allow: append([]string(nil), d.Permissions.Allow...),
		Ask:   append([]string(nil), d.Permissions.Ask...),
		Deny:  append([]string(nil), d.Permissions.Deny...),
	}
	if d.Env != nil {
		out.Env = make(map[string]string, len(d.Env))
		for k, v := range d.Env {
			out.Env[k] = v
		}
	}
	if d.Hooks != nil {
		out.Hooks = make(map[string][]HookDecl, len(d.Hooks))
		for event, decls := range d.Hooks {
			copied := make([]HookDecl, len(decls))
			for i, decl := range decls {
				copied[i] = HookDecl{
					Matcher:  decl.Matcher,
					Commands: append([]HookCommand(nil), decl.Commands...),
				}
			}
			out.Hooks[event] = copied
		}
	}
	out.Commands = CommandsSpec{
		Presets: append([]string(nil), d.Commands.Presets...),
		Files:   append([]string(nil), d.Commands.Files...),
	}
	if d.Commands.Inline != nil {
		out.Commands.Inline = make(map[string]CommandSpec, len(d.Commands.Inline))
		for name, spec := range d.Commands.Inline {
			spec.AllowedTools = append([]string(nil), spec.AllowedTools...)
			out.Commands.Inline[name] = spec
		}
	}
	return &out
}
