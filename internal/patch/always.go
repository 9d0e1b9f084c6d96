package patch

import (
	"fmt"
	"regexp"
	"strings"

	"rtlpatch/internal/source"
)

// scan windows for clock detection and the sequential-logic probe
const (
	clockHeaderWindow = 50
	clockBodyWindow   = 100
	seqProbeRadius    = 5
)

// AlwaysPatcher completes obviously incomplete always headers. Only the header
// line changes; body lines pass through untouched. One instance per run.
type AlwaysPatcher struct {
	stats PassStats
	opts  Options
}

// NewAlwaysPatcher returns a patcher configured with the run options.
func NewAlwaysPatcher(opts Options) *AlwaysPatcher {
	return &AlwaysPatcher{opts: opts.withDefaults()}
}

// Stats returns the counters accumulated by Repair.
func (p *AlwaysPatcher) Stats() PassStats { return p.stats }

// Only these header shapes count as broken. A header with any sensitivity
// content at all is left alone.
var (
	bareAlwaysRe     = regexp.MustCompile(`\balways\s*$`)
	emptyParenRe     = regexp.MustCompile(`\balways\s*\(\s*\)$`)
	bareAtRe         = regexp.MustCompile(`\balways\s*@\s*$`)
	emptyAtParenRe   = regexp.MustCompile(`\balways\s*@\s*\(\s*\)$`)
	emptyParenSubRe  = regexp.MustCompile(`\balways\s*\(\s*\)`)
	emptyAtParenSub  = regexp.MustCompile(`\balways\s*@\s*\(\s*\)`)
	clockInputDeclRe = regexp.MustCompile(`input.*?(\w*clk\w*)`)
)

func isIncompleteAlwaysHeader(trimmed string) bool {
	return bareAlwaysRe.MatchString(trimmed) ||
		emptyParenRe.MatchString(trimmed) ||
		bareAtRe.MatchString(trimmed) ||
		emptyAtParenRe.MatchString(trimmed)
}

// Repair rewrites incomplete always headers. A header near non-blocking
// assignments gets a posedge form on the detected clock; otherwise the
// combinational @(*) form.
func (p *AlwaysPatcher) Repair(lines []source.Line) []source.Line {
	out := make([]source.Line, 0, len(lines))

	for i, line := range lines {
		t := line.Trimmed
		if !isIncompleteAlwaysHeader(t) {
			out = append(out, line)
			continue
		}

		out = append(out, source.Make(line.Indent, p.completeHeader(t, lines, i)))
		p.stats.Fixed++
	}

	return out
}

func (p *AlwaysPatcher) completeHeader(trimmed string, lines []source.Line, idx int) string {
	clock := p.detectClock(lines)
	seq := hasSequentialLogicNearby(lines, idx)

	switch {
	case bareAlwaysRe.MatchString(trimmed), bareAtRe.MatchString(trimmed):
		if seq && clock != "" {
			return fmt.Sprintf("always @(posedge %s) begin", clock)
		}
		return "always @(*) begin"

	case emptyParenRe.MatchString(trimmed):
		return emptyParenSubRe.ReplaceAllString(trimmed, "always @(*)")

	case emptyAtParenRe.MatchString(trimmed):
		return emptyAtParenSub.ReplaceAllString(trimmed, "always @(*)")
	}

	return trimmed
}

// detectClock resolves the clock signal name: reference-source hints first,
// then input declarations in the file header, then posedge/negedge edges in
// the body over the configured names, then the "clk" fallback.
func (p *AlwaysPatcher) detectClock(lines []source.Line) string {
	if p.opts.Hints != nil {
		if clock := p.opts.Hints.PreferredClock(); clock != "" {
			return clock
		}
	}

	for i := 0; i < min(clockHeaderWindow, len(lines)); i++ {
		lower := strings.ToLower(lines[i].Trimmed)
		if !strings.Contains(lower, "input") {
			continue
		}
		if !strings.Contains(lower, "clk") && !strings.Contains(lower, "clock") {
			continue
		}
		if m := clockInputDeclRe.FindStringSubmatch(lower); m != nil {
			return m[1]
		}
	}

	for _, clock := range p.opts.ClockNames {
		for i := 0; i < min(clockBodyWindow, len(lines)); i++ {
			raw := lines[i].Raw
			if strings.Contains(raw, "posedge "+clock) || strings.Contains(raw, "negedge "+clock) {
				return clock
			}
		}
	}

	return "clk"
}

// hasSequentialLogicNearby probes the surrounding lines for non-blocking
// assignments.
func hasSequentialLogicNearby(lines []source.Line, idx int) bool {
	start := max(0, idx-seqProbeRadius)
	end := min(len(lines), idx+seqProbeRadius)

	for i := start; i < end; i++ {
		if strings.Contains(lines[i].Raw, "<=") && !strings.HasPrefix(lines[i].Trimmed, "//") {
			return true
		}
	}
	return false
}
