package project

import (
	"os"
	"path/filepath"
	"testing"
)

const manifestBody = `[patch]
else_lookahead = 3
default_loop_bound = 16
clock_names = ["sys_clk", "clk"]
hints_file = "rtl/reference.v"
`

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindManifest_WalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, manifestBody)

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, ok, err := FindManifest(nested)
	if err != nil {
		t.Fatalf("FindManifest: %v", err)
	}
	if !ok {
		t.Fatal("manifest not found from nested dir")
	}
	if filepath.Dir(path) != root {
		t.Errorf("found %q, want manifest in %q", path, root)
	}
}

func TestFindManifest_AbsentIsNotAnError(t *testing.T) {
	_, ok, err := FindManifest(t.TempDir())
	if err != nil {
		t.Fatalf("FindManifest: %v", err)
	}
	if ok {
		t.Error("unexpected manifest in empty temp dir")
	}
}

func TestLoadManifest_ParsesPatchSection(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, manifestBody)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Patch.ElseLookahead != 3 {
		t.Errorf("ElseLookahead = %d, want 3", m.Patch.ElseLookahead)
	}
	if m.Patch.DefaultLoopBound != 16 {
		t.Errorf("DefaultLoopBound = %d, want 16", m.Patch.DefaultLoopBound)
	}
	if len(m.Patch.ClockNames) != 2 || m.Patch.ClockNames[0] != "sys_clk" {
		t.Errorf("ClockNames = %v", m.Patch.ClockNames)
	}
	if m.Dir != dir {
		t.Errorf("Dir = %q, want %q", m.Dir, dir)
	}
}

func TestLoadManifest_RejectsBadTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[patch\nbroken")

	if _, err := LoadManifest(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadOptions_ResolvesHintsRelativeToManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, manifestBody)

	opts, hintsPath, err := LoadOptions(root)
	if err != nil {
		t.Fatalf("LoadOptions: %v", err)
	}
	if opts.ElseLookahead != 3 {
		t.Errorf("ElseLookahead = %d, want 3", opts.ElseLookahead)
	}
	want := filepath.Join(root, "rtl", "reference.v")
	if hintsPath != want {
		t.Errorf("hintsPath = %q, want %q", hintsPath, want)
	}
}

func TestLoadOptions_DefaultsWithoutManifest(t *testing.T) {
	opts, hintsPath, err := LoadOptions(t.TempDir())
	if err != nil {
		t.Fatalf("LoadOptions: %v", err)
	}
	if opts.ElseLookahead != 0 || hintsPath != "" {
		t.Errorf("expected zero options, got %+v / %q", opts, hintsPath)
	}
}

func TestCollectFiles_FiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.v":          "module b; endmodule\n",
		"a.sv":         "module a; endmodule\n",
		"notes.txt":    "not rtl\n",
		"sub/c.vh":     "`define C 1\n",
		"build/d.v":    "module d; endmodule\n",
		".hidden/e.sv": "module e; endmodule\n",
	}
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := CollectFiles(dir)
	if err != nil {
		t.Fatalf("CollectFiles: %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.sv"),
		filepath.Join(dir, "b.v"),
		filepath.Join(dir, "sub", "c.vh"),
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
