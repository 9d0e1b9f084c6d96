package patch

import (
	"regexp"
	"strings"

	"rtlpatch/internal/source"
	"rtlpatch/internal/token"
)

// lookahead windows for block-end detection; fallback offset when neither a
// begin...end nor a terminator is found
const (
	beginSearchWindow = 5
	semicolonWindow   = 10
	blockEndFallback  = 3
)

// IfElsePatcher re-derives if/else pairing from indentation and block ranges,
// then repairs dangling branches. One instance per pipeline run.
type IfElsePatcher struct {
	stats     PassStats
	lookahead int
}

// NewIfElsePatcher returns a patcher using the given else-matching lookahead
// window (lines past the if block's end).
func NewIfElsePatcher(lookahead int) *IfElsePatcher {
	if lookahead <= 0 {
		lookahead = DefaultElseLookahead
	}
	return &IfElsePatcher{lookahead: lookahead}
}

// Stats returns the counters accumulated by Repair.
func (p *IfElsePatcher) Stats() PassStats { return p.stats }

// ifContext is one still-open if candidate during the pairing scan.
type ifContext struct {
	line     int
	indent   int
	blockEnd int
	hasElse  bool
}

// pairing records whether an else/else-if line found its if.
type pairing struct {
	hasMatchingIf bool
	ifLine        int
}

// Repair rewrites the sequence so that no else/else-if lacks a structurally
// justified preceding if: paired branches pass through, a dangling else-if
// becomes a standalone if, a dangling bare else is dropped.
func (p *IfElsePatcher) Repair(lines []source.Line) []source.Line {
	pairs := p.analyzePairing(lines)

	out := make([]source.Line, 0, len(lines))
	for i, line := range lines {
		t := line.Trimmed

		if token.IsBareElse(t) || token.IsElseIf(t) {
			if pr, ok := pairs[i]; ok && pr.hasMatchingIf {
				out = append(out, line)
				continue
			}
			if token.IsElseIf(t) {
				out = append(out, source.Make(line.Indent, convertElseIfToIf(t)))
				p.stats.Fixed++
				continue
			}
			// бесхозный else отбрасываем: приписать его некому
			p.stats.Removed++
			continue
		}

		out = append(out, line)
	}

	return out
}

// analyzePairing scans forward maintaining the active if contexts and maps
// each else/else-if line index to its pairing decision. An if is claimed by
// at most one else; a candidate must sit at the same indentation, strictly
// after the if block's end, and within the lookahead window past it.
func (p *IfElsePatcher) analyzePairing(lines []source.Line) map[int]pairing {
	pairs := make(map[int]pairing)
	active := make([]*ifContext, 0, 8)

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		t := line.Trimmed
		indent := line.IndentWidth()

		if t == "" || strings.HasPrefix(t, "//") {
			continue
		}

		switch {
		case token.OpensIf(t):
			active = append(active, &ifContext{
				line:     i,
				indent:   indent,
				blockEnd: findIfBlockEnd(lines, i),
			})

		case token.IsElseIf(t):
			match := p.findMatchingIf(active, indent, i)
			if match != nil {
				pairs[i] = pairing{hasMatchingIf: true, ifLine: match.line}
				match.hasElse = true
				// else-if открывает собственный контекст для следующего else
				active = append(active, &ifContext{
					line:     i,
					indent:   indent,
					blockEnd: findIfBlockEnd(lines, i),
				})
			} else {
				pairs[i] = pairing{}
			}

		case token.IsBareElse(t):
			match := p.findMatchingIf(active, indent, i)
			if match != nil {
				pairs[i] = pairing{hasMatchingIf: true, ifLine: match.line}
				match.hasElse = true
			} else {
				pairs[i] = pairing{}
			}

		default:
			// contexts whose block already ended before this line are out of scope
			kept := active[:0]
			for _, ctx := range active {
				if ctx.blockEnd >= i {
					kept = append(kept, ctx)
				}
			}
			active = kept
		}
	}

	return pairs
}

// findMatchingIf picks the most recent unclaimed context at the same
// indentation whose block ends before the else line, within the window.
func (p *IfElsePatcher) findMatchingIf(active []*ifContext, elseIndent, elseLine int) *ifContext {
	for i := len(active) - 1; i >= 0; i-- {
		ctx := active[i]
		if ctx.indent != elseIndent {
			continue
		}
		if ctx.blockEnd < elseLine && elseLine <= ctx.blockEnd+p.lookahead && !ctx.hasElse {
			return ctx
		}
	}
	return nil
}

// findIfBlockEnd computes where an if's own block (without any else part)
// ends: the depth-matched end of a begin block when one opens on the if line
// or shortly after, else the next line containing a terminator, else a small
// fixed offset.
func findIfBlockEnd(lines []source.Line, ifIdx int) int {
	hasBegin := false
	searchStart := ifIdx

	if strings.HasSuffix(lines[ifIdx].Trimmed, "begin") {
		hasBegin = true
	} else {
		for i := ifIdx + 1; i < min(ifIdx+beginSearchWindow, len(lines)); i++ {
			t := lines[i].Trimmed
			if t == "begin" || strings.HasSuffix(t, "begin") {
				hasBegin = true
				searchStart = i
				break
			}
			if t != "" && !strings.HasPrefix(t, "//") {
				break
			}
		}
	}

	if hasBegin {
		depth := 1
		for i := searchStart + 1; i < len(lines); i++ {
			t := lines[i].Trimmed
			if t == "begin" || strings.HasSuffix(t, "begin") {
				depth++
			} else if strings.HasPrefix(t, "end") {
				depth--
				if depth == 0 {
					return i
				}
			}
		}
		return len(lines) - 1
	}

	for i := ifIdx + 1; i < min(ifIdx+semicolonWindow, len(lines)); i++ {
		if strings.Contains(lines[i].Raw, ";") {
			return i
		}
	}

	return min(ifIdx+blockEndFallback, len(lines)-1)
}

var elseIfHeadRe = regexp.MustCompile(`\belse\s+if\s*\(`)

func convertElseIfToIf(trimmed string) string {
	return elseIfHeadRe.ReplaceAllString(trimmed, "if (")
}
