package patch

import (
	"regexp"
	"strings"

	"rtlpatch/internal/observ"
	"rtlpatch/internal/source"
)

const genvarLookback = 20

// Patcher coordinates the repair passes. Pass order is a contract: assign
// repair normalizes statement boundaries before the block-structure passes,
// and case/if-else repair runs before always-header inference because the
// latter inspects nearby non-blocking assignments.
type Patcher struct {
	opts Options
}

// New returns an orchestrator for the given options.
func New(opts Options) *Patcher {
	return &Patcher{opts: opts.withDefaults()}
}

// Repair runs the full pipeline on one line sequence and returns the repaired
// lines plus the per-pass report. Every pass instance is created fresh here
// so concurrent Repair calls on different inputs never share state.
func (p *Patcher) Repair(lines []source.Line) ([]source.Line, Report) {
	return p.RepairTimed(lines, nil)
}

// RepairTimed is Repair with optional per-pass timing collection.
func (p *Patcher) RepairTimed(lines []source.Line, timer *observ.Timer) ([]source.Line, Report) {
	var report Report

	run := func(name string, pass func([]source.Line) []source.Line) {
		if timer == nil {
			lines = pass(lines)
			return
		}
		idx := timer.Begin(name)
		lines = pass(lines)
		timer.End(idx, "")
	}

	assign := NewAssignPatcher()
	run("assign", assign.Repair)
	report.Assign = assign.Stats()

	caseP := NewCasePatcher()
	run("case", caseP.Repair)
	report.Case = caseP.Stats()

	ifElse := NewIfElsePatcher(p.opts.ElseLookahead)
	run("if-else", ifElse.Repair)
	report.IfElse = ifElse.Stats()

	always := NewAlwaysPatcher(p.opts)
	run("always", always.Repair)
	report.Always = always.Stats()

	gen := NewGeneratePatcher(p.opts)
	run("generate", gen.Repair)
	report.Generate = gen.Stats()

	cleanup := &cleanupPass{}
	run("cleanup", cleanup.repair)
	report.Cleanup = cleanup.stats

	return lines, report
}

// RepairText is a convenience wrapper over Repair for whole-text input.
func (p *Patcher) RepairText(text string) (string, Report) {
	lines, report := p.Repair(source.SplitLines(text))
	return source.JoinLines(lines), report
}

// cleanupPass drops operator-only lines and injects missing genvar
// declarations.
type cleanupPass struct {
	stats PassStats
}

// Lines matching any of these carry a single stray operator and nothing else.
var orphanOperatorRes = []*regexp.Regexp{
	regexp.MustCompile(`^[&|^~]$`),
	regexp.MustCompile(`^[+\-*/]$`),
	regexp.MustCompile(`^[<>=!]$`),
	regexp.MustCompile(`^[{}]$`),
	regexp.MustCompile(`^:$`),
	regexp.MustCompile(`^\?$`),
}

func isOrphanOperatorLine(trimmed string) bool {
	if trimmed == "" {
		return false
	}
	for _, re := range orphanOperatorRes {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return false
}

func (c *cleanupPass) repair(lines []source.Line) []source.Line {
	out := make([]source.Line, 0, len(lines))

	for _, line := range lines {
		t := line.Trimmed

		if isOrphanOperatorLine(t) {
			c.stats.Removed++
			continue
		}

		if needsGenvarDeclaration(t, out) {
			out = append(out, source.Make(line.Indent, "genvar i;"))
			c.stats.Inserted++
		}

		out = append(out, line)
	}

	return out
}

// needsGenvarDeclaration reports whether a line referencing genvar context
// lacks a declaration within the trailing lookback window. Declaration lines
// themselves and comments never trigger an injection.
func needsGenvarDeclaration(trimmed string, emitted []source.Line) bool {
	if !strings.Contains(trimmed, "genvar") || strings.Contains(trimmed, "generate") {
		return false
	}
	if strings.HasPrefix(trimmed, "genvar") || strings.HasPrefix(trimmed, "//") {
		return false
	}

	start := max(0, len(emitted)-genvarLookback)
	for i := start; i < len(emitted); i++ {
		if strings.Contains(emitted[i].Trimmed, "genvar") {
			return false
		}
	}
	return true
}
