// Package command resolves slash-command definitions from presets, plugins,
// inline configuration, and markdown files into a single name-keyed map.
//
// Sources apply in ascending priority; a later source replaces an earlier
// command of the same name entirely, with no field-level merging.
package command

import "agentconf/internal/config"

// SlashCommand is a fully resolved command definition.
type SlashCommand struct {
	Name         string
	Content      string
	Description  string
	Category     string
	ArgumentHint string
	Model        string
	AllowedTools []string
}

// fromSpec builds a SlashCommand from an inline definition.
func fromSpec(name string, spec config.CommandSpec) SlashCommand {
	return SlashCommand{
		Name:         name,
		Content:      spec.Content,
		Description:  spec.Description,
		Category:     spec.Category,
		ArgumentHint: spec.ArgumentHint,
		Model:        spec.Model,
		AllowedTools: append([]string(nil), spec.AllowedTools...),
	}
}
