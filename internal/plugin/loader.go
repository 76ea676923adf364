package plugin

import (
	"context"

	"agentconf/internal/config"
	"agentconf/internal/preset"
)

// Loader resolves plugin names. The in-process registry is consulted first
// (those plugins can carry transform and validate functions); names not
// registered fall back to filesystem manifests, which contribute static
// fragments only.
type Loader struct {
	Registry *Registry
	// Files loads manifest plugins from disk; nil disables the fallback.
	Files preset.Loader
}

// Load resolves one plugin by name. Returns preset.ErrNotFound (wrapped)
// when neither source knows the name.
func (l *Loader) Load(ctx context.Context, name string) (*Plugin, error) {
	if l.Registry != nil {
		if p := l.Registry.Lookup(name); p != nil {
			return p, nil
		}
	}
	if l.Files == nil {
		return nil, preset.ErrNotFound
	}
	doc, err := l.Files.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return FromDocument(name, doc), nil
}

// FromDocument builds a manifest-only plugin from a configuration document:
// its permission, hook, env, and inline command sections become the plugin's
// static contributions.
func FromDocument(name string, doc *config.Document) *Plugin {
	return &Plugin{
		Name:        name,
		Permissions: doc.Permissions,
		Hooks:       doc.Hooks,
		Env:         doc.Env,
		Commands:    doc.Commands.Inline,
	}
}
