package driver

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestPatchText_RepairsAndReports(t *testing.T) {
	res := PatchText("<stdin>", "assign a =\n  (sel) ?\n  1'b1 :\n  1'b0\n", Options{})

	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Text != "assign a = (sel) ? 1'b1 : 1'b0;\n" {
		t.Errorf("Text:\n%s", res.Text)
	}
	if !res.Changed {
		t.Error("Changed = false, want true")
	}
	if res.Report.TotalFixes() == 0 {
		t.Error("expected fixes to be reported")
	}
}

func TestPatchText_CleanInputUnchanged(t *testing.T) {
	input := "module top;\nassign a = b;\nendmodule\n"
	res := PatchText("<stdin>", input, Options{})

	if res.Changed {
		t.Error("clean input marked as changed")
	}
	if res.Text != input {
		t.Errorf("Text:\n%s", res.Text)
	}
}

func TestPatchFile_DryRunLeavesFileAlone(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.v")
	original := "assign a = b\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	res := PatchFile(path, Options{DryRun: true})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if !res.Changed {
		t.Error("Changed = false, want true")
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(onDisk) != original {
		t.Errorf("dry run modified the file: %q", onDisk)
	}
}

func TestPatchFile_RewritesInPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.v")
	if err := os.WriteFile(path, []byte("assign a = b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := PatchFile(path, Options{})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(onDisk) != "assign a = b;\n" {
		t.Errorf("on disk: %q", onDisk)
	}
}

func TestPatchFile_OutputDirRedirectsWrite(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	path := filepath.Join(srcDir, "broken.v")
	original := "assign a = b\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	res := PatchFile(path, Options{OutputDir: outDir})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(onDisk) != original {
		t.Errorf("source was modified: %q", onDisk)
	}

	redirected, err := os.ReadFile(filepath.Join(outDir, "broken.v"))
	if err != nil {
		t.Fatalf("redirected output missing: %v", err)
	}
	if string(redirected) != "assign a = b;\n" {
		t.Errorf("redirected: %q", redirected)
	}
}

func TestPatchDir_OutputDirKeepsRelativePaths(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	inputs := map[string]string{
		"a/x.v": "assign a = b\n",
		"b/x.v": "assign c = d\n",
	}
	for name, body := range inputs {
		path := filepath.Join(srcDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	results, err := PatchDir(context.Background(), srcDir, Options{OutputDir: outDir})
	if err != nil {
		t.Fatalf("PatchDir: %v", err)
	}
	for _, res := range results {
		if res.Err != nil {
			t.Fatalf("%s: %v", res.Path, res.Err)
		}
	}

	// одинаковые имена в разных каталогах не должны затирать друг друга
	want := map[string]string{
		"a/x.v": "assign a = b;\n",
		"b/x.v": "assign c = d;\n",
	}
	for name, body := range want {
		got, err := os.ReadFile(filepath.Join(outDir, filepath.FromSlash(name)))
		if err != nil {
			t.Fatalf("%s missing from output dir: %v", name, err)
		}
		if string(got) != body {
			t.Errorf("%s: got %q, want %q", name, got, body)
		}
	}
}

func TestPatchFile_MissingFile(t *testing.T) {
	res := PatchFile(filepath.Join(t.TempDir(), "absent.v"), Options{})
	if res.Err == nil {
		t.Error("expected load error")
	}
}

func TestPatchDir_ProcessesAllFiles(t *testing.T) {
	dir := t.TempDir()
	inputs := map[string]string{
		"a.v":  "assign a = b\n",
		"b.sv": "else if (x)\n  y <= 1;\n",
		"c.v":  "module top;\nendmodule\n",
	}
	for name, body := range inputs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	results, err := PatchDir(context.Background(), dir, Options{Jobs: 2})
	if err != nil {
		t.Fatalf("PatchDir: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}

	changed := 0
	for _, res := range results {
		if res.Err != nil {
			t.Errorf("%s: %v", res.Path, res.Err)
		}
		if res.Changed {
			changed++
		}
	}
	if changed != 2 {
		t.Errorf("changed = %d, want 2", changed)
	}
}

func TestPatchDir_EmptyDir(t *testing.T) {
	results, err := PatchDir(context.Background(), t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("PatchDir: %v", err)
	}
	if results != nil {
		t.Errorf("expected no results, got %d", len(results))
	}
}

// collectSink накапливает события; потокобезопасен для параллельного драйвера.
type collectSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *collectSink) OnEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func TestPatchDir_EmitsProgressEvents(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.v"), []byte("assign a = b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	sink := &collectSink{}
	if _, err := PatchDir(context.Background(), dir, Options{Progress: sink, DryRun: true}); err != nil {
		t.Fatalf("PatchDir: %v", err)
	}

	var sawQueued, sawDone bool
	for _, ev := range sink.events {
		if ev.Status == StatusQueued {
			sawQueued = true
		}
		if ev.Stage == StagePatch && ev.Status == StatusDone {
			sawDone = true
		}
	}
	if !sawQueued || !sawDone {
		t.Errorf("missing lifecycle events: queued=%v done=%v", sawQueued, sawDone)
	}
}

func TestPatchDir_Timings(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.v"), []byte("assign a = b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	results, err := PatchDir(context.Background(), dir, Options{Timings: true, DryRun: true})
	if err != nil {
		t.Fatalf("PatchDir: %v", err)
	}
	if len(results) != 1 || results[0].Timing == nil {
		t.Fatal("expected timing report")
	}
	if len(results[0].Timing.Phases) != 6 {
		t.Errorf("phases = %d, want 6", len(results[0].Timing.Phases))
	}
}
