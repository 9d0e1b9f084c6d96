package patch

import (
	"regexp"
	"sort"
	"strings"

	"rtlpatch/internal/source"
	"rtlpatch/internal/token"
)

// CasePatcher prunes structurally empty case regions and inserts missing
// endcase tokens. One instance per pipeline run.
type CasePatcher struct {
	stats PassStats
}

// NewCasePatcher returns a patcher with zeroed counters.
func NewCasePatcher() *CasePatcher { return &CasePatcher{} }

// Stats returns the counters accumulated by Repair.
func (p *CasePatcher) Stats() PassStats { return p.stats }

// Repair runs both sub-passes: empty-region pruning, then endcase completion.
// Case content lines are never reordered.
func (p *CasePatcher) Repair(lines []source.Line) []source.Line {
	cleaned := p.removeEmptyCaseRegions(lines)
	return p.completeMissingEndcase(cleaned)
}

// caseRegion is a case...endcase span, bounds inclusive.
type caseRegion struct {
	start, end int
}

// identifyCaseRegions locates case...endcase regions with first-match
// nesting: a case is closed by the next endcase scanning forward.
func identifyCaseRegions(lines []source.Line) []caseRegion {
	regions := make([]caseRegion, 0, 4)

	i := 0
	for i < len(lines) {
		if token.OpensCase(lines[i].Trimmed) {
			end := -1
			for j := i + 1; j < len(lines); j++ {
				if token.ClosesCase(lines[j].Trimmed) {
					end = j
					break
				}
			}
			if end != -1 {
				regions = append(regions, caseRegion{start: i, end: end})
				i = end
			}
		}
		i++
	}

	return regions
}

var bitPatternLabelRe = regexp.MustCompile(`^\{[^}]+\}\s*:\s*$`)

// isEmptyCaseRegion reports whether every non-blank, non-comment interior
// line is a bare label with no assignment or control-flow keyword.
func isEmptyCaseRegion(lines []source.Line, r caseRegion) bool {
	for i := r.start + 1; i < r.end && i < len(lines); i++ {
		t := lines[i].Trimmed

		if t == "" || strings.HasPrefix(t, "//") {
			continue
		}
		if strings.HasPrefix(t, "default:") || bitPatternLabelRe.MatchString(t) {
			continue
		}
		if strings.Contains(t, "=") {
			return false
		}
		for _, kw := range []string{"begin", "if", "for", "while"} {
			if strings.Contains(t, kw) {
				return false
			}
		}
	}
	return true
}

// removeEmptyCaseRegions deletes empty regions entirely, bounds included.
// Deletion runs in descending start order so indices stay valid.
func (p *CasePatcher) removeEmptyCaseRegions(lines []source.Line) []source.Line {
	regions := identifyCaseRegions(lines)

	empty := make([]caseRegion, 0, len(regions))
	for _, r := range regions {
		if isEmptyCaseRegion(lines, r) {
			empty = append(empty, r)
			p.stats.Removed++
		}
	}
	if len(empty) == 0 {
		return lines
	}

	sort.Slice(empty, func(i, j int) bool { return empty[i].start > empty[j].start })

	filtered := make([]source.Line, len(lines))
	copy(filtered, lines)
	for _, r := range empty {
		filtered = append(filtered[:r.start], filtered[r.end+1:]...)
	}
	return filtered
}

// openCase tracks one unterminated case context during the completion scan.
// The stack is a local value, rebuilt per call, so the pass is reentrant.
type openCase struct {
	indent string
}

// completeMissingEndcase inserts a synthesized endcase whenever a line that
// heuristically terminates a block appears at an indentation no deeper than
// an open case's declaration. Cases still open at end of input are closed at
// the end.
func (p *CasePatcher) completeMissingEndcase(lines []source.Line) []source.Line {
	stack := make([]openCase, 0, 4)
	out := make([]source.Line, 0, len(lines))

	for _, line := range lines {
		t := line.Trimmed

		switch {
		case token.OpensCase(t):
			out = append(out, line)
			stack = append(stack, openCase{indent: line.Indent})

		case token.ClosesCase(t):
			out = append(out, line)
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

		case len(stack) > 0 && token.IsBlockTerminator(token.Classify(t)):
			for len(stack) > 0 && len(line.Indent) <= len(stack[len(stack)-1].indent) {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				out = append(out, source.Make(top.indent, "endcase"))
				p.stats.Inserted++
			}
			out = append(out, line)

		default:
			out = append(out, line)
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, source.Make(top.indent, "endcase"))
		p.stats.Inserted++
	}

	return out
}
