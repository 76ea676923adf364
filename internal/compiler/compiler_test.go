package compiler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"agentconf/internal/config"
	"agentconf/internal/plugin"
	"agentconf/internal/preset"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// writePreset drops a JSON preset file into dir.
func writePreset(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func compileJSON(t *testing.T, opts Options, doc string) *Compiled {
	t.Helper()
	if opts.Log == nil {
		opts.Log = quietLogger()
	}
	c := New(opts)
	compiled, err := c.Compile(context.Background(), []byte(doc), "settings.json")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return compiled
}

func TestCompileMinimal(t *testing.T) {
	compiled := compileJSON(t, Options{}, `{"model": "opus"}`)
	if compiled.Model != "opus" {
		t.Errorf("Model = %q, want opus", compiled.Model)
	}
	if compiled.Schema != SchemaURL {
		t.Errorf("Schema = %q", compiled.Schema)
	}
}

func TestCompileEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "base", `{"env": {"A": "1"}}`)

	registry := plugin.NewRegistry()
	registry.Register(&plugin.Plugin{
		Name: "envplug",
		Env:  map[string]string{"A": "2", "B": "2"},
	})

	compiled := compileJSON(t, Options{
		BuiltinPresetDirs: []string{dir},
		Registry:          registry,
	}, `{
		"extends": "base",
		"plugins": ["envplug"],
		"env": {"A": "3"}
	}`)

	want := map[string]string{"A": "3", "B": "2"}
	if !reflect.DeepEqual(compiled.Env, want) {
		t.Errorf("Env = %v, want %v", compiled.Env, want)
	}
}

func TestCompileCommandPriority(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "base", `{"commands": {"test": "from preset"}}`)

	registry := plugin.NewRegistry()
	registry.Register(&plugin.Plugin{
		Name:     "cmdplug",
		Commands: map[string]config.CommandSpec{"test": {Content: "from plugin"}},
	})

	compiled := compileJSON(t, Options{
		BuiltinPresetDirs: []string{dir},
		Registry:          registry,
	}, `{
		"extends": "base",
		"plugins": ["cmdplug"],
		"commands": {"test": "from user"}
	}`)

	if got := compiled.Commands["test"].Content; got != "from user" {
		t.Errorf("test.Content = %q, want %q", got, "from user")
	}
}

func TestCompilePermissionMergeAndPriority(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "base", `{"permissions": {"allow": ["Read", "Bash(rm *)"]}}`)

	compiled := compileJSON(t, Options{
		BuiltinPresetDirs: []string{dir},
	}, `{
		"extends": "base",
		"permissions": {"deny": ["Bash(rm *)"], "allow": ["Grep"]}
	}`)

	if !reflect.DeepEqual(compiled.Permissions.Deny, []string{"Bash(rm *)"}) {
		t.Errorf("Deny = %v", compiled.Permissions.Deny)
	}
	if !reflect.DeepEqual(compiled.Permissions.Allow, []string{"Read", "Grep"}) {
		t.Errorf("Allow = %v, want [Read Grep]", compiled.Permissions.Allow)
	}
}

func TestCompileHooksCanonical(t *testing.T) {
	compiled := compileJSON(t, Options{}, `{
		"hooks": {
			"PreToolUse": [
				{"matcher": "Bash(git *)", "command": "c1"},
				{"matcher": "Bash", "command": "c2"}
			]
		}
	}`)
	entries := compiled.Hooks["PreToolUse"]
	if len(entries) != 1 {
		t.Fatalf("entries = %+v, want 1", entries)
	}
	if entries[0].Matcher != "Bash" {
		t.Errorf("Matcher = %q, want Bash", entries[0].Matcher)
	}
	if len(entries[0].Hooks) != 2 || entries[0].Hooks[0].Command != "c1" || entries[0].Hooks[1].Command != "c2" {
		t.Errorf("Hooks = %+v, want [c1 c2]", entries[0].Hooks)
	}
	if entries[0].Hooks[0].Timeout != 3000 {
		t.Errorf("Timeout = %d, want 3000", entries[0].Hooks[0].Timeout)
	}
}

func TestCompileFailedTransformLeavesConfigUnchanged(t *testing.T) {
	registry := plugin.NewRegistry()
	registry.Register(&plugin.Plugin{
		Name: "bad",
		Transform: func(ctx context.Context, doc *config.Document) (*config.Document, error) {
			doc.Env["INJECTED"] = "yes"
			doc.Permissions.Allow = append(doc.Permissions.Allow, "Everything")
			return nil, errors.New("boom")
		},
	})

	compiled := compileJSON(t, Options{Registry: registry}, `{
		"plugins": ["bad"],
		"env": {"KEEP": "1"},
		"permissions": {"allow": ["Read"]}
	}`)

	want := map[string]string{"KEEP": "1"}
	if !reflect.DeepEqual(compiled.Env, want) {
		t.Errorf("Env = %v, want %v", compiled.Env, want)
	}
	if !reflect.DeepEqual(compiled.Permissions.Allow, []string{"Read"}) {
		t.Errorf("Allow = %v, want [Read]", compiled.Permissions.Allow)
	}
	if len(compiled.Warnings) == 0 {
		t.Error("expected a transform warning")
	}
}

func TestCompileCycleAlwaysFatal(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "a", `{"extends": "b"}`)
	writePreset(t, dir, "b", `{"extends": "a"}`)

	c := New(Options{BuiltinPresetDirs: []string{dir}, Log: quietLogger()})
	_, err := c.Compile(context.Background(), []byte(`{"extends": "a"}`), "settings.json")
	if err == nil {
		t.Fatal("expected cycle error")
	}
	var cycleErr *preset.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("err = %T (%v), want *preset.CycleError", err, err)
	}
	if !strings.Contains(err.Error(), "a -> b -> a") {
		t.Errorf("err = %q, want chain a -> b -> a", err.Error())
	}
}

func TestCompileMissingPresetNonStrict(t *testing.T) {
	compiled := compileJSON(t, Options{}, `{"extends": "nope", "model": "opus"}`)
	if compiled.Model != "opus" {
		t.Errorf("Model = %q, want opus", compiled.Model)
	}
}

func TestCompileScalarPrecedence(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "older", `{"model": "haiku", "apiKeyHelper": "preset.sh"}`)
	writePreset(t, dir, "newer", `{"model": "sonnet"}`)

	compiled := compileJSON(t, Options{
		BuiltinPresetDirs: []string{dir},
	}, `{"extends": ["older", "newer"]}`)

	// Later preset wins among presets; preset-only values survive.
	if compiled.Model != "sonnet" {
		t.Errorf("Model = %q, want sonnet", compiled.Model)
	}
	if compiled.APIKeyHelper != "preset.sh" {
		t.Errorf("APIKeyHelper = %q, want preset.sh", compiled.APIKeyHelper)
	}
}

func TestCompileUserScalarWins(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "base", `{"model": "haiku"}`)
	compiled := compileJSON(t, Options{
		BuiltinPresetDirs: []string{dir},
	}, `{"extends": "base", "model": "opus"}`)
	if compiled.Model != "opus" {
		t.Errorf("Model = %q, want opus", compiled.Model)
	}
}

func TestCompileUnknownKeyWarns(t *testing.T) {
	compiled := compileJSON(t, Options{}, `{"model": "opus", "mystery": 1}`)
	found := false
	for _, w := range compiled.Warnings {
		if strings.Contains(w, "mystery") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want unknown-key warning", compiled.Warnings)
	}
}

func TestCompileStrictStructuralError(t *testing.T) {
	c := New(Options{Strict: true, Log: quietLogger()})
	_, err := c.Compile(context.Background(), []byte(`{"extends": 42}`), "settings.json")
	if err == nil {
		t.Fatal("expected structural error in strict mode")
	}
}

func TestCompileStrictPermissionFormat(t *testing.T) {
	c := New(Options{Strict: true, Log: quietLogger()})
	_, err := c.Compile(context.Background(), []byte(`{"permissions": {"allow": ["not valid"]}}`), "settings.json")
	if err == nil {
		t.Fatal("expected permission format error in strict mode")
	}
}

func TestCompileNonStrictPermissionPassthrough(t *testing.T) {
	compiled := compileJSON(t, Options{}, `{"permissions": {"allow": ["not valid"]}}`)
	if !reflect.DeepEqual(compiled.Permissions.Allow, []string{"not valid"}) {
		t.Errorf("Allow = %v, want offending entry passed through", compiled.Permissions.Allow)
	}
}

func TestCompileRoundTripIdempotent(t *testing.T) {
	first := compileJSON(t, Options{}, `{
		"model": "opus",
		"env": {"A": "1"},
		"permissions": {"allow": ["Read"], "deny": ["Bash(rm *)"]},
		"hooks": {"Stop": [{"matcher": "Bash", "command": "c1", "timeout": 500}]},
		"commands": {"test": {"content": "body", "description": "desc"}}
	}`)

	out1, err := first.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	second := compileJSON(t, Options{}, string(out1))
	out2, err := second.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var a, b map[string]any
	if err := json.Unmarshal(out1, &a); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(out2, &b); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("recompilation not idempotent:\nfirst:  %s\nsecond: %s", out1, out2)
	}
}

func TestCompileOutputIsValid(t *testing.T) {
	compiled := compileJSON(t, Options{}, `{
		"permissions": {"allow": ["Read"], "ask": ["Write"], "deny": ["Bash(rm *)"]},
		"hooks": {"Stop": ["echo done"]}
	}`)
	if problems := validateOutput(compiled); len(problems) != 0 {
		t.Errorf("validateOutput = %v, want none", problems)
	}
}
