package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTOMLLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "settings.toml")

	content := `
[editor]
indentWidth = 2
historyCoalesceDelay = "800ms"

[translation]
enabled = true
autoDelay = "700ms"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewTOMLLoader(path)
	config, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	editor, ok := config["editor"].(map[string]any)
	if !ok {
		t.Fatal("editor section missing or wrong type")
	}
	if editor["indentWidth"] != int64(2) {
		t.Errorf("indentWidth = %v (%T), want int64(2)", editor["indentWidth"], editor["indentWidth"])
	}
	if editor["historyCoalesceDelay"] != "800ms" {
		t.Errorf("historyCoalesceDelay = %v, want '800ms'", editor["historyCoalesceDelay"])
	}

	translation, ok := config["translation"].(map[string]any)
	if !ok {
		t.Fatal("translation section missing or wrong type")
	}
	if translation["enabled"] != true {
		t.Errorf("enabled = %v, want true", translation["enabled"])
	}
}

func TestTOMLMissingFile(t *testing.T) {
	l := NewTOMLLoader(filepath.Join(t.TempDir(), "absent.toml"))
	config, err := l.Load()
	if err != nil {
		t.Errorf("Load() on missing file error = %v, want nil", err)
	}
	if config != nil {
		t.Errorf("Load() on missing file = %v, want nil", config)
	}
}

func TestTOMLParseError(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "broken.toml")
	if err := os.WriteFile(path, []byte("[editor\nbroken ="), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewTOMLLoader(path).Load()
	if err == nil {
		t.Fatal("Load() on malformed TOML should return error")
	}

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if pe.Path != path {
		t.Errorf("ParseError.Path = %q, want %q", pe.Path, path)
	}
	if pe.Unwrap() == nil {
		t.Error("ParseError.Unwrap() = nil, want wrapped toml error")
	}
}

func TestTOMLLoadFromReader(t *testing.T) {
	l := NewTOMLLoader("")
	config, err := l.LoadFromReader(strings.NewReader("[ui]\ntheme = \"dark\"\n"))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}

	ui, ok := config["ui"].(map[string]any)
	if !ok {
		t.Fatal("ui section missing")
	}
	if ui["theme"] != "dark" {
		t.Errorf("theme = %v, want 'dark'", ui["theme"])
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"editor": map[string]any{
			"indentWidth":  4,
			"historyDepth": 100,
		},
		"kept": "unchanged",
	}
	src := map[string]any{
		"editor": map[string]any{
			"indentWidth": 2,
		},
		"added": "new",
	}

	merged := DeepMerge(dst, src)

	editor := merged["editor"].(map[string]any)
	if editor["indentWidth"] != 2 {
		t.Errorf("indentWidth = %v, want 2 (src overrides)", editor["indentWidth"])
	}
	if editor["historyDepth"] != 100 {
		t.Errorf("historyDepth = %v, want 100 (dst preserved)", editor["historyDepth"])
	}
	if merged["kept"] != "unchanged" {
		t.Errorf("kept = %v, want 'unchanged'", merged["kept"])
	}
	if merged["added"] != "new" {
		t.Errorf("added = %v, want 'new'", merged["added"])
	}
}

func TestDeepMergeReplacesNonMaps(t *testing.T) {
	dst := map[string]any{"value": map[string]any{"nested": 1}}
	src := map[string]any{"value": "flat"}

	merged := DeepMerge(dst, src)
	if merged["value"] != "flat" {
		t.Errorf("value = %v, want 'flat' (non-map src replaces map)", merged["value"])
	}
}

func TestDeepMergeNil(t *testing.T) {
	merged := DeepMerge(nil, map[string]any{"a": 1})
	if merged["a"] != 1 {
		t.Errorf("merge into nil dst: a = %v, want 1", merged["a"])
	}

	dst := map[string]any{"b": 2}
	merged = DeepMerge(dst, nil)
	if merged["b"] != 2 {
		t.Errorf("merge nil src: b = %v, want 2", merged["b"])
	}
}

func TestClone(t *testing.T) {
	src := map[string]any{
		"editor": map[string]any{"indentWidth": 4},
		"list":   []any{"a", map[string]any{"k": "v"}},
	}

	cloned := Clone(src)

	cloned["editor"].(map[string]any)["indentWidth"] = 99
	cloned["list"].([]any)[0] = "changed"
	cloned["list"].([]any)[1].(map[string]any)["k"] = "changed"

	if src["editor"].(map[string]any)["indentWidth"] != 4 {
		t.Error("mutating clone changed source map")
	}
	if src["list"].([]any)[0] != "a" {
		t.Error("mutating clone changed source slice")
	}
	if src["list"].([]any)[1].(map[string]any)["k"] != "v" {
		t.Error("mutating clone changed nested map in slice")
	}
}

func TestCloneNil(t *testing.T) {
	if Clone(nil) != nil {
		t.Error("Clone(nil) should be nil")
	}
}
