// Package plugin defines the plugin unit, the in-process registry, and the
// sequential transform pipeline.
//
// A plugin contributes static configuration fragments (permissions, hooks,
// env, commands) and may carry a transform that rewrites the working
// configuration plus a validate check that runs after all transforms.
// Plugins load once and apply once, in declaration order.
package plugin

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"agentconf/internal/config"
)

// TransformFunc rewrites the working configuration. Returning nil with a nil
// error is treated as a no-op for the plugin.
type TransformFunc func(ctx context.Context, doc *config.Document) (*config.Document, error)

// TransformResult carries an asynchronous transform's outcome.
type TransformResult struct {
	Doc *config.Document
	Err error
}

// AsyncTransformFunc starts a transform and delivers its result on the
// returned channel. The pipeline always waits for the result before moving
// to the next plugin; sequencing is never relaxed.
type AsyncTransformFunc func(ctx context.Context, doc *config.Document) <-chan TransformResult

// ValidateFunc inspects the final working configuration and returns one
// message per problem found.
type ValidateFunc func(doc *config.Document) []string

// Plugin is one named unit.
type Plugin struct {
	Name string

	// Static contributions, merged by the corresponding components.
	Permissions config.PermissionSet
	Hooks       map[string][]config.HookDecl
	Env         map[string]string
	Commands    map[string]config.CommandSpec

	Transform      TransformFunc
	TransformAsync AsyncTransformFunc
	Validate       ValidateFunc
}

// Registry holds in-process plugins by name. Go-native plugins register here
// (typically from an init function); manifest-only plugins come from the
// filesystem loader instead.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]*Plugin
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]*Plugin)}
}

// Register adds or replaces a plugin by name.
func (r *Registry) Register(p *Plugin) error {
	if p == nil || p.Name == "" {
		return fmt.Errorf("plugin must have a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[p.Name] = p
	return nil
}

// Lookup returns the named plugin, or nil.
func (r *Registry) Lookup(name string) *Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.plugins[name]
}

// Names returns registered plugin names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
