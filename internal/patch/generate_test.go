package patch

import (
	"strings"
	"testing"

	"rtlpatch/internal/source"
)

func runGenerate(t *testing.T, input string, opts Options) ([]source.Line, PassStats) {
	t.Helper()
	p := NewGeneratePatcher(opts)
	out := p.Repair(source.SplitLines(input))
	return out, p.Stats()
}

func TestGenerateRepair_WrapsIndexedBlocksWithLoop(t *testing.T) {
	input := strings.Join([]string{
		"parameter WIDTH = 4;",
		"begin: blk0",
		"  buf u0(out[i], in[i]);",
		"end",
		"begin: blk1",
		"  buf u1(q[i], d[i]);",
		"end",
	}, "\n") + "\n"

	out, stats := runGenerate(t, input, Options{})
	text := source.JoinLines(out)

	for _, want := range []string{
		"genvar i;",
		"generate",
		"for (i = 0; i < WIDTH; i = i + 1) begin",
		"endgenerate",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if stats.Fixed != 2 {
		t.Errorf("Fixed = %d, want 2 wrapped blocks", stats.Fixed)
	}
	if stats.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1 genvar declaration", stats.Inserted)
	}

	// оба блока внутри одного региона
	opens, closes := 0, 0
	for _, l := range out {
		switch l.Trimmed {
		case "generate":
			opens++
		case "endgenerate":
			closes++
		}
	}
	if opens != 1 || closes != 1 {
		t.Errorf("expected a single generate region, got %d/%d:\n%s", opens, closes, text)
	}
}

func TestGenerateRepair_BlockWithoutEndStopsAtNextLabel(t *testing.T) {
	input := strings.Join([]string{
		"begin: blk0",
		"  buf u0(out0, in0);",
		"begin: blk1",
		"  buf u1(out1, in1);",
		"end",
	}, "\n") + "\n"

	out, stats := runGenerate(t, input, Options{})
	text := source.JoinLines(out)

	if stats.Fixed != 2 {
		t.Errorf("Fixed = %d, want 2 wrapped blocks", stats.Fixed)
	}
	for _, want := range []string{"begin: blk0", "begin: blk1", "endgenerate"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}

	// оба блока в одном регионе, без потери строк
	opens := 0
	for _, l := range out {
		if l.Trimmed == "generate" {
			opens++
		}
	}
	if opens != 1 {
		t.Errorf("expected a single generate region, got %d:\n%s", opens, text)
	}
}

func TestGenerateRepair_NoLoopWithoutIndexUsage(t *testing.T) {
	input := strings.Join([]string{
		"begin: init_regs",
		"  initial q = 0;",
		"end",
	}, "\n") + "\n"

	out, stats := runGenerate(t, input, Options{})
	text := source.JoinLines(out)

	if strings.Contains(text, "genvar") || strings.Contains(text, "for (") {
		t.Errorf("unexpected loop scaffolding:\n%s", text)
	}
	if !strings.Contains(text, "generate") || !strings.Contains(text, "endgenerate") {
		t.Errorf("block not wrapped:\n%s", text)
	}
	if stats.Inserted != 0 {
		t.Errorf("Inserted = %d, want 0", stats.Inserted)
	}
}

func TestGenerateRepair_DefaultLoopBound(t *testing.T) {
	input := strings.Join([]string{
		"begin: lanes",
		"  buf u(out[i], in[i]);",
		"end",
	}, "\n") + "\n"

	out, _ := runGenerate(t, input, Options{})

	if !strings.Contains(source.JoinLines(out), "i < 8;") {
		t.Errorf("expected default loop bound 8:\n%s", source.JoinLines(out))
	}
}

func TestGenerateRepair_SkipsBlocksInsideGenerate(t *testing.T) {
	input := strings.Join([]string{
		"generate",
		"begin: blk0",
		"  buf u(out[i], in[i]);",
		"end",
		"endgenerate",
	}, "\n") + "\n"

	out, stats := runGenerate(t, input, Options{})

	if source.JoinLines(out) != input {
		t.Errorf("block inside generate was modified:\n%s", source.JoinLines(out))
	}
	if !stats.IsZero() {
		t.Errorf("clean input reported fixes: %+v", stats)
	}
}

func TestGenerateRepair_Idempotent(t *testing.T) {
	input := strings.Join([]string{
		"begin: blk0",
		"  buf u(out[i], in[i]);",
		"end",
	}, "\n") + "\n"

	first := NewGeneratePatcher(Options{})
	repaired := first.Repair(source.SplitLines(input))

	second := NewGeneratePatcher(Options{})
	out := second.Repair(repaired)

	if source.JoinLines(out) != source.JoinLines(repaired) {
		t.Errorf("second run changed output:\nfirst:\n%ssecond:\n%s",
			source.JoinLines(repaired), source.JoinLines(out))
	}
	if !second.Stats().IsZero() {
		t.Errorf("second run reported fixes: %+v", second.Stats())
	}
}
