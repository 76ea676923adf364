package command

import (
	"path/filepath"
	"strings"
)

// ParseCommandFile parses a command file into a SlashCommand. Markdown files
// (.md, .markdown) may start with a frontmatter block delimited by two "---"
// lines; recognized keys map onto command fields. Files with any other
// extension, or markdown files without a frontmatter block, use the whole
// trimmed content as the command body. The command name defaults to the file
// name without its extension when frontmatter does not set one.
func ParseCommandFile(path, content string) SlashCommand {
	cmd := SlashCommand{}

	ext := strings.ToLower(filepath.Ext(path))
	if (ext == ".md" || ext == ".markdown") && strings.HasPrefix(content, "---") {
		// Expected format: ---\nkey: value\n---\nbody
		parts := strings.SplitN(content, "---", 3)
		if len(parts) == 3 {
			parseFrontmatter(parts[1], &cmd)
			cmd.Content = strings.TrimSpace(parts[2])
		} else {
			cmd.Content = strings.TrimSpace(content)
		}
	} else {
		cmd.Content = strings.TrimSpace(content)
	}

	if cmd.Name == "" {
		base := filepath.Base(path)
		cmd.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return cmd
}

// parseFrontmatter reads flat "key: value" lines. Values wrapped in square
// brackets parse as comma-separated lists.
func parseFrontmatter(block string, cmd *SlashCommand) {
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "name":
			cmd.Name = value
		case "description":
			cmd.Description = value
		case "category":
			cmd.Category = value
		case "argument-hint", "argumentHint":
			cmd.ArgumentHint = value
		case "model":
			cmd.Model = value
		case "allowed-tools", "allowedTools":
			cmd.AllowedTools = parseBracketList(value)
		}
	}
}

// parseBracketList parses "[a, b, c]" (or a bare comma-separated string)
// into its elements.
func parseBracketList(value string) []string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "[")
	value = strings.TrimSuffix(value, "]")
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.Trim(strings.TrimSpace(item), `"'`)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
