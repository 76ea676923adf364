package plugin

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"agentconf/internal/config"
)

// Pipeline applies plugin transforms sequentially, in declaration order.
// Plugin i's output is plugin i+1's input; synchronous and asynchronous
// transforms share one code path because the pipeline always waits for the
// result before continuing. A transform that fails or produces nil is a
// no-op for that plugin: the working configuration stays as it was, a
// warning is recorded, and the next plugin runs.
type Pipeline struct {
	Strict bool
	Log    logrus.FieldLogger
}

// Run executes every transform, then every validate check against the final
// configuration. Validate messages are fatal in strict mode and warnings
// otherwise. The returned warnings cover skipped transforms and, in
// non-strict mode, validation failures.
func (p *Pipeline) Run(ctx context.Context, doc *config.Document, plugins []*Plugin) (*config.Document, []string, error) {
	log := p.Log
	if log == nil {
		log = logrus.New()
	}

	working := doc
	var warnings []string
	for _, plug := range plugins {
		result, applied, err := p.apply(ctx, plug, working)
		if err != nil {
			if ctx.Err() != nil {
				return nil, warnings, ctx.Err()
			}
			msg := fmt.Sprintf("plugin %q: transform failed: %v", plug.Name, err)
			warnings = append(warnings, msg)
			log.WithField("plugin", plug.Name).WithError(err).Warn("transform failed, configuration unchanged")
			continue
		}
		if !applied {
			continue
		}
		if result == nil {
			msg := fmt.Sprintf("plugin %q: transform returned no configuration", plug.Name)
			warnings = append(warnings, msg)
			log.WithField("plugin", plug.Name).Warn("transform returned nil, configuration unchanged")
			continue
		}
		working = result
	}

	var problems []string
	for _, plug := range plugins {
		if plug.Validate == nil {
			continue
		}
		for _, msg := range plug.Validate(working) {
			problems = append(problems, fmt.Sprintf("plugin %q: %s", plug.Name, msg))
		}
	}
	if len(problems) > 0 {
		if p.Strict {
			return nil, warnings, fmt.Errorf("plugin validation failed: %s", strings.Join(problems, "; "))
		}
		for _, msg := range problems {
			log.Warn(msg)
		}
		warnings = append(warnings, problems...)
	}

	return working, warnings, nil
}

// apply runs one plugin's transform against a clone of the working
// configuration, so a failing transform cannot leave partial mutations
// behind. applied is false when the plugin has no transform at all.
func (p *Pipeline) apply(ctx context.Context, plug *Plugin, working *config.Document) (doc *config.Document, applied bool, err error) {
	input := working.Clone()
	switch {
	case plug.Transform != nil:
		defer func() {
			if r := recover(); r != nil {
				doc, applied, err = nil, true, fmt.Errorf("panic: %v", r)
			}
		}()
		doc, err = plug.Transform(ctx, input)
		return doc, true, err
	case plug.TransformAsync != nil:
		select {
		case result := <-plug.TransformAsync(ctx, input):
			return result.Doc, true, result.Err
		case <-ctx.Done():
			return nil, true, ctx.Err()
		}
	default:
		return nil, false, nil
	}
}
