package config

import (
	"reflect"
	"testing"
)

func TestFromMapExtendsShapes(t *testing.T) {
	doc, errs := FromMap(map[string]any{"extends": "base"})
	if len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
	if !reflect.DeepEqual(doc.Extends, []string{"base"}) {
		t.Errorf("Extends = %v, want [base]", doc.Extends)
	}

	doc, errs = FromMap(map[string]any{"extends": []any{"a", "b"}})
	if len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
	if !reflect.DeepEqual(doc.Extends, []string{"a", "b"}) {
		t.Errorf("Extends = %v, want [a b]", doc.Extends)
	}

	_, errs = FromMap(map[string]any{"extends": 42})
	if len(errs) == 0 {
		t.Error("expected a validation error for numeric extends")
	}
}

func TestFromMapPermissions(t *testing.T) {
	doc, errs := FromMap(map[string]any{
		"permissions": map[string]any{
			"allow": []any{"Bash(npm *)"},
			"deny":  []any{"Bash(rm *)"},
		},
	})
	if len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
	if !reflect.DeepEqual(doc.Permissions.Allow, []string{"Bash(npm *)"}) {
		t.Errorf("Allow = %v", doc.Permissions.Allow)
	}
	if !reflect.DeepEqual(doc.Permissions.Deny, []string{"Bash(rm *)"}) {
		t.Errorf("Deny = %v", doc.Permissions.Deny)
	}
}

func TestFromMapHookForms(t *testing.T) {
	doc, errs := FromMap(map[string]any{
		"hooks": map[string]any{
			"PreToolUse": []any{
				"echo legacy",
				map[string]any{"matcher": "Bash", "command": "c1", "timeout": float64(500)},
				map[string]any{
					"matcher": "Edit",
					"hooks": []any{
						map[string]any{"type": "command", "command": "c2", "timeout": float64(1000)},
					},
				},
			},
		},
	})
	if len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
	decls := doc.Hooks["PreToolUse"]
	if len(decls) != 3 {
		t.Fatalf("decls = %d, want 3", len(decls))
	}
	if decls[0].Matcher != "" || decls[0].Commands[0].Command != "echo legacy" {
		t.Errorf("legacy decl = %+v", decls[0])
	}
	if decls[1].Commands[0].TimeoutMs != 500 {
		t.Errorf("flat form timeout = %d, want 500", decls[1].Commands[0].TimeoutMs)
	}
	if decls[2].Commands[0].Command != "c2" || decls[2].Commands[0].TimeoutMs != 1000 {
		t.Errorf("canonical form = %+v", decls[2])
	}
}

func TestFromMapCommandShapes(t *testing.T) {
	// Bare list = command preset names.
	doc, _ := FromMap(map[string]any{"commands": []any{"git-helpers"}})
	if !reflect.DeepEqual(doc.Commands.Presets, []string{"git-helpers"}) {
		t.Errorf("Presets = %v", doc.Commands.Presets)
	}

	// Inline map.
	doc, _ = FromMap(map[string]any{
		"commands": map[string]any{
			"deploy": map[string]any{
				"content":       "run deploy",
				"argument-hint": "<env>",
				"allowed-tools": []any{"Bash"},
			},
			"test": "run tests",
		},
	})
	if doc.Commands.Inline["test"].Content != "run tests" {
		t.Errorf("test content = %q", doc.Commands.Inline["test"].Content)
	}
	deploy := doc.Commands.Inline["deploy"]
	if deploy.ArgumentHint != "<env>" {
		t.Errorf("argumentHint = %q, want <env>", deploy.ArgumentHint)
	}
	if !reflect.DeepEqual(deploy.AllowedTools, []string{"Bash"}) {
		t.Errorf("allowedTools = %v", deploy.AllowedTools)
	}

	// Structured form.
	doc, _ = FromMap(map[string]any{
		"commands": map[string]any{
			"presets": []any{"p1"},
			"files":   []any{"commands/*.md"},
			"commands": map[string]any{
				"inline": "body",
			},
		},
	})
	if !reflect.DeepEqual(doc.Commands.Presets, []string{"p1"}) {
		t.Errorf("Presets = %v", doc.Commands.Presets)
	}
	if !reflect.DeepEqual(doc.Commands.Files, []string{"commands/*.md"}) {
		t.Errorf("Files = %v", doc.Commands.Files)
	}
	if doc.Commands.Inline["inline"].Content != "body" {
		t.Errorf("inline content = %q", doc.Commands.Inline["inline"].Content)
	}
}

func TestFromMapScalars(t *testing.T) {
	doc, errs := FromMap(map[string]any{
		"model":               "opus",
		"cleanupPeriodDays":   float64(14),
		"includeCoAuthoredBy": false,
	})
	if len(errs) != 0 {
		t.Fatalf("errs = %v", errs)
	}
	if doc.Model != "opus" {
		t.Errorf("Model = %q", doc.Model)
	}
	if doc.CleanupPeriodDays == nil || *doc.CleanupPeriodDays != 14 {
		t.Errorf("CleanupPeriodDays = %v, want 14", doc.CleanupPeriodDays)
	}
	if doc.IncludeCoAuthoredBy == nil || *doc.IncludeCoAuthoredBy {
		t.Errorf("IncludeCoAuthoredBy = %v, want false", doc.IncludeCoAuthoredBy)
	}
}

func TestFromMapBadTypesCollected(t *testing.T) {
	_, errs := FromMap(map[string]any{
		"model": 5,
		"env":   "not a map",
	})
	if len(errs) != 2 {
		t.Errorf("errs = %v, want 2 problems", errs)
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc, _ := FromMap(map[string]any{
		"env": map[string]any{"A": "1"},
		"permissions": map[string]any{
			"allow": []any{"Bash"},
		},
		"hooks": map[string]any{
			"Stop": []any{"echo done"},
		},
	})
	clone := doc.Clone()
	clone.Env["A"] = "changed"
	clone.Permissions.Allow[0] = "changed"
	clone.Hooks["Stop"][0].Commands[0].Command = "changed"

	if doc.Env["A"] != "1" {
		t.Error("clone shares env map")
	}
	if doc.Permissions.Allow[0] != "Bash" {
		t.Error("clone shares permission slice")
	}
	if doc.Hooks["Stop"][0].Commands[0].Command != "echo done" {
		t.Error("clone shares hook commands")
	}
}
