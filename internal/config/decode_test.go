package config

import "testing"

func TestDecodeJSONWithComments(t *testing.T) {
	data := []byte(`{
		// primary model
		"model": "opus",
	}`)
	out, err := Decode(data, FormatJSON)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out["model"] != "opus" {
		t.Errorf("model = %v, want opus", out["model"])
	}
}

func TestDecodeYAML(t *testing.T) {
	data := []byte("model: opus\nenv:\n  FOO: bar\n")
	out, err := Decode(data, FormatYAML)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	env, ok := out["env"].(map[string]any)
	if !ok {
		t.Fatalf("env = %T, want map", out["env"])
	}
	if env["FOO"] != "bar" {
		t.Errorf("env.FOO = %v, want bar", env["FOO"])
	}
}

func TestDecodeTOML(t *testing.T) {
	data := []byte("model = \"opus\"\n\n[env]\nFOO = \"bar\"\n")
	out, err := Decode(data, FormatTOML)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out["model"] != "opus" {
		t.Errorf("model = %v, want opus", out["model"])
	}
}

func TestDetectFormatByExtension(t *testing.T) {
	cases := []struct {
		path string
		want Format
	}{
		{"settings.json", FormatJSON},
		{"settings.jsonc", FormatJSON},
		{"settings.yaml", FormatYAML},
		{"settings.yml", FormatYAML},
		{"settings.toml", FormatTOML},
	}
	for _, tc := range cases {
		if got := DetectFormat(tc.path, nil); got != tc.want {
			t.Errorf("DetectFormat(%s) = %d, want %d", tc.path, got, tc.want)
		}
	}
}

func TestDetectFormatSniffing(t *testing.T) {
	if got := DetectFormat("", []byte(`  {"model":"opus"}`)); got != FormatJSON {
		t.Errorf("JSON sniff = %d, want %d", got, FormatJSON)
	}
	if got := DetectFormat("", []byte("model = \"opus\"\n")); got != FormatTOML {
		t.Errorf("TOML sniff = %d, want %d", got, FormatTOML)
	}
	if got := DetectFormat("", []byte("model: opus\n")); got != FormatYAML {
		t.Errorf("YAML sniff = %d, want %d", got, FormatYAML)
	}
}
