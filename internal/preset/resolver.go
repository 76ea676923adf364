package preset

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"agentconf/internal/config"
	"agentconf/internal/graph"
)

// CycleError is raised when the extends chain loops back on itself. Cycles
// are always fatal: no sound merge order exists for them.
type CycleError struct {
	Cycle *graph.Cycle
}

func (e *CycleError) Error() string {
	return "preset inheritance cycle: " + e.Cycle.Path()
}

// Resolved pairs a preset's load name with its document.
type Resolved struct {
	Name string
	Doc  *config.Document
}

// Resolver loads the extends chain. Fully resolved presets are memoized for
// the life of the resolver so diamond-shaped inheritance loads each shared
// ancestor once; cycle detection uses a separate visiting set copied per
// branch so diamonds are never misreported as cycles.
type Resolver struct {
	Loader Loader
	Strict bool
	Log    logrus.FieldLogger

	cache map[string]*config.Document
	order []string
}

// NewResolver creates a resolver with a fresh memo.
func NewResolver(loader Loader, strict bool, log logrus.FieldLogger) *Resolver {
	if log == nil {
		log = logrus.New()
	}
	return &Resolver{
		Loader: loader,
		Strict: strict,
		Log:    log,
		cache:  make(map[string]*config.Document),
	}
}

// Resolve loads every named preset and, recursively, everything each one
// extends. The result is in depth-first order with ancestors before
// descendants, so callers merging in order get last-wins semantics for
// descendant values. A preset that fails to load resolves as an empty
// document with a warning unless the resolver is strict.
func (r *Resolver) Resolve(ctx context.Context, names []string) ([]Resolved, error) {
	if err := r.resolveAll(ctx, names, map[string]bool{}, nil); err != nil {
		return nil, err
	}
	out := make([]Resolved, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, Resolved{Name: name, Doc: r.cache[name]})
	}
	return out, nil
}

// resolveAll handles one ordered extends list. visiting is the per-branch
// "currently resolving" set; path mirrors it in order for cycle reporting.
func (r *Resolver) resolveAll(ctx context.Context, names []string, visiting map[string]bool, path []string) error {
	for _, name := range names {
		if visiting[name] {
			chain := append(append([]string{}, path...), name)
			// Trim the chain to start at the repeated preset.
			for i, n := range chain[:len(chain)-1] {
				if n == name {
					chain = chain[i:]
					break
				}
			}
			return &CycleError{Cycle: &graph.Cycle{Nodes: chain}}
		}
		if _, done := r.cache[name]; done {
			continue
		}

		doc, err := r.Loader.Load(ctx, name)
		if err != nil {
			if r.Strict {
				return fmt.Errorf("resolving preset %q: %w", name, err)
			}
			r.Log.WithField("preset", name).WithError(err).Warn("preset failed to load, using empty configuration")
			doc = &config.Document{}
		}

		// Copy the visiting set per branch: siblings sharing an ancestor
		// must not see each other's in-progress state.
		branch := make(map[string]bool, len(visiting)+1)
		for k := range visiting {
			branch[k] = true
		}
		branch[name] = true

		// Ancestors resolve (and insert) before this preset.
		if err := r.resolveAll(ctx, doc.Extends, branch, append(path, name)); err != nil {
			return err
		}

		if _, done := r.cache[name]; !done {
			r.cache[name] = doc
			r.order = append(r.order, name)
		}
	}
	return nil
}

// LoadCached loads a single preset by name through the session memo without
// resolving its extends chain. Command presets resolve through this path.
func (r *Resolver) LoadCached(ctx context.Context, name string) (*config.Document, error) {
	if doc, ok := r.cache[name]; ok {
		return doc, nil
	}
	doc, err := r.Loader.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	r.cache[name] = doc
	return doc, nil
}
