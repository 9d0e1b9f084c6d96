package patch

import (
	"strings"
	"testing"

	"rtlpatch/internal/observ"
	"rtlpatch/internal/source"
	"rtlpatch/internal/testkit"
)

func runPipeline(t *testing.T, input string) (string, Report) {
	t.Helper()
	text, report := New(Options{}).RepairText(input)
	return text, report
}

func TestPipeline_MultiLineAssign(t *testing.T) {
	got, report := runPipeline(t, "assign a =\n  (sel) ?\n  1'b1 :\n  1'b0\n")

	if got != "assign a = (sel) ? 1'b1 : 1'b0;\n" {
		t.Fatalf("got:\n%s", got)
	}
	if report.Assign.Merged != 1 {
		t.Errorf("Assign.Merged = %d, want 1", report.Assign.Merged)
	}
}

func TestPipeline_DanglingElseIf(t *testing.T) {
	got, report := runPipeline(t, "else if (x)\n  y <= 1;\n")

	if got != "if (x)\n  y <= 1;\n" {
		t.Fatalf("got:\n%s", got)
	}
	if report.IfElse.Fixed != 1 {
		t.Errorf("IfElse.Fixed = %d, want 1", report.IfElse.Fixed)
	}
}

func TestPipeline_MissingEndcase(t *testing.T) {
	input := strings.Join([]string{
		"case (sel)",
		"  2'b00: y = a;",
		"  default: y = b;",
		"end",
	}, "\n") + "\n"

	got, report := runPipeline(t, input)

	if !strings.Contains(got, "endcase\n") {
		t.Fatalf("endcase not inserted:\n%s", got)
	}
	if report.Case.Inserted != 1 {
		t.Errorf("Case.Inserted = %d, want 1", report.Case.Inserted)
	}
}

func TestPipeline_IncompleteAlwaysHeader(t *testing.T) {
	input := strings.Join([]string{
		"input clk;",
		"always",
		"  if (rst) y <= 0; else y <= x;",
	}, "\n") + "\n"

	got, report := runPipeline(t, input)

	if !strings.Contains(got, "always @(posedge clk) begin\n") {
		t.Fatalf("header not completed:\n%s", got)
	}
	if report.Always.Fixed != 1 {
		t.Errorf("Always.Fixed = %d, want 1", report.Always.Fixed)
	}
}

func TestPipeline_GenerateWrapping(t *testing.T) {
	input := strings.Join([]string{
		"parameter WIDTH = 4;",
		"begin: blk0",
		"  buf u0(out[i], in[i]);",
		"end",
		"begin: blk1",
		"  buf u1(q[i], d[i]);",
		"end",
	}, "\n") + "\n"

	got, report := runPipeline(t, input)

	for _, want := range []string{"genvar i;", "generate", "for (i = 0; i < WIDTH; i = i + 1) begin", "endgenerate"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if report.Generate.Fixed != 2 {
		t.Errorf("Generate.Fixed = %d, want 2", report.Generate.Fixed)
	}
}

func TestPipeline_CleanupDropsStrayOperators(t *testing.T) {
	input := strings.Join([]string{
		"module top;",
		"&",
		"?",
		"endmodule",
	}, "\n") + "\n"

	got, report := runPipeline(t, input)

	if got != "module top;\nendmodule\n" {
		t.Fatalf("got:\n%s", got)
	}
	if report.Cleanup.Removed != 2 {
		t.Errorf("Cleanup.Removed = %d, want 2", report.Cleanup.Removed)
	}
}

func TestPipeline_CleanupInjectsGenvar(t *testing.T) {
	input := "if (genvar_idx < 4) begin\nend\n"

	got, report := runPipeline(t, input)

	if !strings.HasPrefix(got, "genvar i;\n") {
		t.Fatalf("genvar not injected:\n%s", got)
	}
	if report.Cleanup.Inserted != 1 {
		t.Errorf("Cleanup.Inserted = %d, want 1", report.Cleanup.Inserted)
	}
}

func TestPipeline_CleanInputReportsNothing(t *testing.T) {
	input := strings.Join([]string{
		"module top(input clk, input d, output reg q);",
		"always @(posedge clk) begin",
		"  q <= d;",
		"end",
		"endmodule",
	}, "\n") + "\n"

	got, report := runPipeline(t, input)

	if got != input {
		t.Fatalf("clean input was modified:\n%s", got)
	}
	if report.TotalFixes() != 0 {
		t.Errorf("TotalFixes = %d, want 0", report.TotalFixes())
	}
}

func TestPipeline_Idempotent(t *testing.T) {
	inputs := []string{
		"assign a =\n  (sel) ?\n  1'b1 :\n  1'b0\n",
		"else if (x)\n  y <= 1;\n",
		"case (sel)\n  2'b00: y = a;\nend\n",
		"input clk;\nalways\n  q <= d;\n",
		"begin: blk0\n  buf u(out[i], in[i]);\nend\n",
	}

	for _, input := range inputs {
		first, _ := New(Options{}).RepairText(input)
		second, report := New(Options{}).RepairText(first)

		if second != first {
			t.Errorf("input %q: second run changed output:\nfirst:\n%ssecond:\n%s", input, first, second)
		}
		if report.TotalFixes() != 0 {
			t.Errorf("input %q: second run reported %d fixes", input, report.TotalFixes())
		}
	}
}

func TestPipeline_OutputSatisfiesClosureInvariants(t *testing.T) {
	inputs := []string{
		"assign a = b\n",
		"case (sel)\n  2'b00: y = a;\n",
		"else\n  y <= 0;\n",
		"begin: blk0\n  buf u(out[i], in[i]);\nend\n",
	}

	for _, input := range inputs {
		repaired, _ := New(Options{}).Repair(source.SplitLines(input))
		if err := testkit.CheckClosureInvariants(repaired); err != nil {
			t.Errorf("input %q: %v\noutput:\n%s", input, err, source.JoinLines(repaired))
		}
	}
}

func TestPipeline_TimedRunRecordsAllPasses(t *testing.T) {
	timer := observ.NewTimer()
	_, _ = New(Options{}).RepairTimed(source.SplitLines("assign a = b\n"), timer)

	report := timer.Report()
	if len(report.Phases) != 6 {
		t.Fatalf("expected 6 timed passes, got %d", len(report.Phases))
	}
	wantOrder := []string{"assign", "case", "if-else", "always", "generate", "cleanup"}
	for i, phase := range report.Phases {
		if phase.Name != wantOrder[i] {
			t.Errorf("phase %d = %q, want %q", i, phase.Name, wantOrder[i])
		}
	}
}
