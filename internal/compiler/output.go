package compiler

import (
	"encoding/json"
	"fmt"

	"agentconf/internal/command"
	"agentconf/internal/config"
	"agentconf/internal/hook"
)

// SchemaURL is stamped into every compiled document.
const SchemaURL = "https://json.schemastore.org/claude-code-settings.json"

// Compiled is the final settings document. It is produced once per Compile
// call and never mutated afterward.
type Compiled struct {
	Schema      string                     `json:"$schema"`
	Permissions config.PermissionSet       `json:"permissions"`
	Hooks       map[string][]hook.Entry    `json:"hooks,omitempty"`
	Env         map[string]string          `json:"env,omitempty"`
	Commands    map[string]CompiledCommand `json:"commands,omitempty"`

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

	// Warnings collected during compilation; not part of the document.
	Warnings []string `json:"-"`
}

// CompiledCommand is the serialized slash-command shape.
type CompiledCommand struct {
	Content      string   `json:"content,omitempty"`
	Description  string   `json:"description,omitempty"`
	Category     string   `json:"category,omitempty"`
	ArgumentHint string   `json:"argumentHint,omitempty"`
	Model        string   `json:"model,omitempty"`
	AllowedTools []string `json:"allowedTools,omitempty"`
}

func compiledCommands(resolved map[string]command.SlashCommand) map[string]CompiledCommand {
	if len(resolved) == 0 {
		return nil
	}
	out := make(map[string]CompiledCommand, len(resolved))
	for name, cmd := range resolved {
		out[name] = CompiledCommand{
			Content:      cmd.Content,
			Description:  cmd.Description,
			Category:     cmd.Category,
			ArgumentHint: cmd.ArgumentHint,
			Model:        cmd.Model,
			AllowedTools: cmd.AllowedTools,
		}
	}
	return out
}

// Marshal renders the compiled document as indented JSON with a trailing
// newline, ready to write to disk.
func (c *Compiled) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling settings: %w", err)
	}
	return append(data, '\n'), nil
}

// validateOutput runs the structural checks on the assembled document and
// returns one message per violation.
func validateOutput(c *Compiled) []string {
	var errs []string

	errs = append(errs, checkDisjoint("deny", c.Permissions.Deny, "ask", c.Permissions.Ask)...)
	errs = append(errs, checkDisjoint("deny", c.Permissions.Deny, "allow", c.Permissions.Allow)...)
	errs = append(errs, checkDisjoint("ask", c.Permissions.Ask, "allow", c.Permissions.Allow)...)

	for event, entries := range c.Hooks {
		seen := make(map[string]bool, len(entries))
		for _, entry := range entries {
			if entry.Matcher == "" {
				errs = append(errs, fmt.Sprintf("hooks.%s: entry with empty matcher", event))
			}
			if seen[entry.Matcher] {
				errs = append(errs, fmt.Sprintf("hooks.%s: duplicate matcher %q", event, entry.Matcher))
			}
			seen[entry.Matcher] = true
			for _, cmd := range entry.Hooks {
				if cmd.Type != "command" {
					errs = append(errs, fmt.Sprintf("hooks.%s[%s]: unsupported hook type %q", event, entry.Matcher, cmd.Type))
				}
				if cmd.Command == "" {
					errs = append(errs, fmt.Sprintf("hooks.%s[%s]: empty command", event, entry.Matcher))
				}
				if cmd.Timeout <= 0 {
					errs = append(errs, fmt.Sprintf("hooks.%s[%s]: non-positive timeout", event, entry.Matcher))
				}
			}
		}
	}

	for name := range c.Commands {
		if name == "" {
			errs = append(errs, "commands: command with empty name")
		}
	}

	return errs
}

func checkDisjoint(nameA string, a []string, nameB string, b []string) []string {
	inA := make(map[string]bool, len(a))
	for _, p := range a {
		inA[p] = true
	}
	var errs []string
	for _, p := range b {
		if inA[p] {
			errs = append(errs, fmt.Sprintf("permissions: %q present in both %s and %s", p, nameA, nameB))
		}
	}
	return errs
}
