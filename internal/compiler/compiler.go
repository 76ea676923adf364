// Package compiler orchestrates settings compilation: it sanitizes and
// normalizes the user document, resolves the preset inheritance chain, loads
// and runs plugins, merges the permission, hook, env, and command sections,
// and validates the assembled output.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"agentconf/internal/command"
	"agentconf/internal/config"
	"agentconf/internal/hook"
	"agentconf/internal/permission"
	"agentconf/internal/plugin"
	"agentconf/internal/preset"
)

// Options configures a Compiler.
type Options struct {
	// Strict raises otherwise-recoverable problems as errors.
	Strict bool
	// Log receives warnings; defaults to a fresh logrus logger.
	Log logrus.FieldLogger
	// BaseDir anchors relative preset paths and command file globs,
	// usually the directory holding the input document.
	BaseDir string
	// BuiltinPresetDirs is the fixed ordered candidate list for builtin
	// preset names.
	BuiltinPresetDirs []string
	// SearchDirs is where package-style preset and plugin names resolve.
	SearchDirs []string
	// Registry supplies in-process plugins; defaults to an empty registry.
	Registry *plugin.Registry
}

// Compiler compiles configuration documents. Each Compile call owns a fresh
// session: preset cache, plugin list, and compiled-command-preset cache are
// never shared across calls.
type Compiler struct {
	opts Options
	log  logrus.FieldLogger
}

// New creates a Compiler.
func New(opts Options) *Compiler {
	log := opts.Log
	if log == nil {
		log = logrus.New()
	}
	if opts.Registry == nil {
		opts.Registry = plugin.NewRegistry()
	}
	return &Compiler{opts: opts, log: log}
}

// session holds the mutable state of one compilation. It is owned by exactly
// one Compile call, so no locking is needed.
type session struct {
	presets        *preset.Resolver
	plugins        *plugin.Loader
	commandPresets map[string]map[string]config.CommandSpec
	warnings       []string
}

func (s *session) warnf(format string, args ...any) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

// Compile parses raw document bytes and compiles them. sourcePath selects
// the decoder by extension and may be empty for content sniffing.
func (c *Compiler) Compile(ctx context.Context, data []byte, sourcePath string) (*Compiled, error) {
	raw, err := config.Decode(data, config.DetectFormat(sourcePath, data))
	if err != nil {
		return nil, err
	}
	return c.CompileMap(ctx, raw)
}

// CompileMap compiles an already-decoded document.
func (c *Compiler) CompileMap(ctx context.Context, raw map[string]any) (*Compiled, error) {
	sess := &session{
		commandPresets: make(map[string]map[string]config.CommandSpec),
	}

	normalized, unknown := config.NormalizeKeys(raw)
	for _, key := range unknown {
		sess.warnf("unknown configuration key %q", key)
		c.log.WithField("key", key).Warn("unknown configuration key")
	}

	user, problems := config.FromMap(normalized)
	if len(problems) > 0 {
		if c.opts.Strict {
			return nil, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
		}
		for _, msg := range problems {
			sess.warnf("%s", msg)
			c.log.Warn(msg)
		}
	}

	fsLoader := &preset.FSLoader{
		BaseDir:     c.opts.BaseDir,
		BuiltinDirs: c.opts.BuiltinPresetDirs,
		SearchDirs:  c.opts.SearchDirs,
	}
	sess.presets = preset.NewResolver(fsLoader, c.opts.Strict, c.log)
	sess.plugins = &plugin.Loader{Registry: c.opts.Registry, Files: fsLoader}

	// Cycle errors are fatal in every mode; other resolution failures obey
	// strict mode inside the resolver.
	resolved, err := sess.presets.Resolve(ctx, user.Extends)
	if err != nil {
		return nil, err
	}

	working := buildWorking(resolved, user)

	plugins := c.loadPlugins(ctx, sess, resolved, user)

	pipe := &plugin.Pipeline{Strict: c.opts.Strict, Log: c.log}
	final, pipeWarnings, err := pipe.Run(ctx, working, plugins)
	if err != nil {
		return nil, err
	}
	sess.warnings = append(sess.warnings, pipeWarnings...)

	out, err := c.assemble(ctx, sess, resolved, plugins, final)
	if err != nil {
		return nil, err
	}

	if problems := validateOutput(out); len(problems) > 0 {
		if c.opts.Strict {
			return nil, fmt.Errorf("compiled settings invalid: %s", strings.Join(problems, "; "))
		}
		for _, msg := range problems {
			sess.warnf("%s", msg)
			c.log.Warn(msg)
		}
	}

	out.Warnings = sess.warnings
	return out, nil
}

// buildWorking layers preset scalars under the user document, producing the
// configuration plugin transforms will see. Permission, hook, env, and
// command sections stay per-source; their mergers run after the pipeline so
// the preset < plugin < user precedence holds even for values plugins
// contribute.
func buildWorking(resolved []preset.Resolved, user *config.Document) *config.Document {
	fold := &config.Document{}
	for _, p := range resolved {
		fold = config.MergeScalars(fold, p.Doc)
	}
	working := config.MergeScalars(fold, user)

	userCopy := user.Clone()
	working.Permissions = userCopy.Permissions
	working.Hooks = userCopy.Hooks
	working.Commands = userCopy.Commands
	working.Plugins = userCopy.Plugins
	working.Env = userCopy.Env
	return working
}

// loadPlugins loads the plugin list: preset-declared plugins in resolution
// order, then user-declared ones, first occurrence of a name winning. Load
// failures are never fatal; a failed plugin becomes an empty unit.
func (c *Compiler) loadPlugins(ctx context.Context, sess *session, resolved []preset.Resolved, user *config.Document) []*plugin.Plugin {
	var names []string
	seen := make(map[string]bool)
	add := func(list []string) {
		for _, name := range list {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	for _, p := range resolved {
		add(p.Doc.Plugins)
	}
	add(user.Plugins)

	plugins := make([]*plugin.Plugin, 0, len(names))
	for _, name := range names {
		p, err := sess.plugins.Load(ctx, name)
		if err != nil {
			sess.warnf("plugin %q failed to load: %v", name, err)
			c.log.WithField("plugin", name).WithError(err).Warn("plugin failed to load, using empty unit")
			p = &plugin.Plugin{Name: name}
		}
		plugins = append(plugins, p)
	}
	return plugins
}

// assemble computes the output sections from presets, plugins, and the final
// working configuration, in that precedence order.
func (c *Compiler) assemble(ctx context.Context, sess *session, resolved []preset.Resolved, plugins []*plugin.Plugin, final *config.Document) (*Compiled, error) {
	permSources := make([]config.PermissionSet, 0, len(resolved)+len(plugins)+1)
	hookSources := make([]map[string][]config.HookDecl, 0, len(resolved)+len(plugins)+1)
	envLayers := make([]map[string]string, 0, len(resolved)+len(plugins)+1)
	presetCommands := make([]map[string]config.CommandSpec, 0, len(resolved))
	pluginCommands := make([]map[string]config.CommandSpec, 0, len(plugins))

	for _, p := range resolved {
		permSources = append(permSources, p.Doc.Permissions)
		hookSources = append(hookSources, p.Doc.Hooks)
		envLayers = append(envLayers, p.Doc.Env)
		presetCommands = append(presetCommands, p.Doc.Commands.Inline)
	}
	for _, p := range plugins {
		permSources = append(permSources, p.Permissions)
		hookSources = append(hookSources, p.Hooks)
		envLayers = append(envLayers, p.Env)
		pluginCommands = append(pluginCommands, p.Commands)
	}
	permSources = append(permSources, final.Permissions)
	hookSources = append(hookSources, final.Hooks)
	envLayers = append(envLayers, final.Env)

	merged := permission.Merge(permSources...)
	if problems := permission.Validate(merged); len(problems) > 0 {
		if c.opts.Strict {
			return nil, fmt.Errorf("invalid permissions: %s", strings.Join(problems, "; "))
		}
		for _, msg := range problems {
			sess.warnf("%s", msg)
			c.log.Warn(msg)
		}
	}

	cmdResolver := &command.Resolver{
		BaseDir:    c.opts.BaseDir,
		LoadPreset: sess.loadCommandPreset,
	}
	commands, cmdWarnings := cmdResolver.Resolve(ctx, presetCommands, pluginCommands, final.Commands)
	for _, msg := range cmdWarnings {
		sess.warnf("%s", msg)
		c.log.Warn(msg)
	}

	env := config.MergeEnv(envLayers...)
	if len(env) == 0 {
		env = nil
	}

	return &Compiled{
		Schema:      SchemaURL,
		Permissions: merged,
		Hooks:       hook.Merge(hookSources...),
		Env:         env,
		Commands:    compiledCommands(commands),

		Model:                      final.Model,
		APIKeyHelper:               final.APIKeyHelper,
		CleanupPeriodDays:          final.CleanupPeriodDays,
		IncludeCoAuthoredBy:        final.IncludeCoAuthoredBy,
		StatusLine:                 final.StatusLine,
		ForceLoginMethod:           final.ForceLoginMethod,
		ForceLoginOrgUUID:          final.ForceLoginOrgUUID,
		EnableAllProjectMcpServers: final.EnableAllProjectMcpServers,
		EnabledMcpjsonServers:      final.EnabledMcpjsonServers,
		DisabledMcpjsonServers:     final.DisabledMcpjsonServers,
		AWSAuthRefresh:             final.AWSAuthRefresh,
		AWSCredentialExport:        final.AWSCredentialExport,
	}, nil
}

// loadCommandPreset resolves a command preset by name through the session
// caches: the compiled-commands memo first, then the shared preset cache.
func (s *session) loadCommandPreset(ctx context.Context, name string) (map[string]config.CommandSpec, error) {
	if specs, ok := s.commandPresets[name]; ok {
		return specs, nil
	}
	doc, err := s.presets.LoadCached(ctx, name)
	if err != nil {
		return nil, err
	}
	specs := doc.Commands.Inline
	if specs == nil {
		return nil, errors.New("preset declares no commands")
	}
	s.commandPresets[name] = specs
	return specs, nil
}
