package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Format identifies the on-disk encoding of a configuration document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatTOML
)

// DetectFormat picks a decoder from the file extension, falling back to
// content sniffing for extensionless input: a document starting with '{'
// or '[' is JSON, one containing a top-level "key =" line is TOML, and
// anything else is treated as YAML (a superset of JSON for our purposes).
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return FormatJSON
	}
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") || strings.Contains(line, " = ") {
			return FormatTOML
		}
		break
	}
	return FormatYAML
}

// Decode parses a raw document into a generic key map. The input is
// sanitized first. JSON input is comment- and trailing-comma-tolerant.
func Decode(data []byte, format Format) (map[string]any, error) {
	clean := []byte(Sanitize(string(data)))
	raw := make(map[string]any)
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(jsonc.ToJSON(clean), &raw); err != nil {
			return nil, fmt.Errorf("parsing JSON document: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(clean, &raw); err != nil {
			return nil, fmt.Errorf("parsing YAML document: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(clean, &raw); err != nil {
			return nil, fmt.Errorf("parsing TOML document: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown document format %d", format)
	}
	return raw, nil
}

// DecodeFile decodes file contents using the format implied by its path.
func DecodeFile(path string, data []byte) (map[string]any, error) {
	return Decode(data, DetectFormat(path, data))
}
