package patch

import (
	"fmt"
	"regexp"
	"strings"

	"rtlpatch/internal/source"
	"rtlpatch/internal/token"
)

const paramScanWindow = 100

// GeneratePatcher wraps orphaned labeled begin blocks into generate regions,
// inferring a loop bound and injecting a genvar declaration when the block
// bodies index a loop-style variable. One instance per pipeline run.
type GeneratePatcher struct {
	stats PassStats
	opts  Options
}

// NewGeneratePatcher returns a patcher configured with the run options.
func NewGeneratePatcher(opts Options) *GeneratePatcher {
	return &GeneratePatcher{opts: opts.withDefaults()}
}

// Stats returns the counters accumulated by Repair.
func (p *GeneratePatcher) Stats() PassStats { return p.stats }

// orphanBlock is one collected begin:<label> ... end span, bounds inclusive.
type orphanBlock struct {
	label      string
	start, end int
}

// orphanGroup is a run of consecutive labeled blocks plus the derived genvar
// need. end is the last consumed line index.
type orphanGroup struct {
	blocks      []orphanBlock
	start, end  int
	needsGenvar bool
}

// Repair wraps every run of consecutive orphan labeled blocks into one
// generate...endgenerate region. Blocks already lexically inside a generate
// region pass through untouched.
func (p *GeneratePatcher) Repair(lines []source.Line) []source.Line {
	out := make([]source.Line, 0, len(lines))
	genDepth := 0

	i := 0
	for i < len(lines) {
		line := lines[i]
		t := line.Trimmed

		// отслеживаем уже существующие generate-регионы
		if t == "generate" || strings.HasPrefix(t, "generate ") {
			genDepth++
		} else if t == "endgenerate" {
			genDepth--
		}

		if _, labeled := token.LabeledBeginName(t); labeled && genDepth == 0 {
			group := collectOrphanBlocks(lines, i)
			if len(group.blocks) > 0 {
				out = append(out, p.wrapWithGenerate(group, lines)...)
				p.stats.Fixed += len(group.blocks)
				i = group.end + 1
				continue
			}
		}

		out = append(out, line)
		i++
	}

	return out
}

// collectOrphanBlocks gathers consecutive labeled blocks starting at startIdx.
func collectOrphanBlocks(lines []source.Line, startIdx int) orphanGroup {
	group := orphanGroup{start: startIdx, end: startIdx}

	i := startIdx
	for i < len(lines) {
		if _, labeled := token.LabeledBeginName(lines[i].Trimmed); !labeled {
			break
		}
		block, ok := collectSingleBlock(lines, i)
		if !ok {
			break
		}
		group.blocks = append(group.blocks, block)
		i = block.end + 1

		if !group.needsGenvar && blockNeedsGenvar(lines, block) {
			group.needsGenvar = true
		}
	}

	if len(group.blocks) > 0 {
		group.end = group.blocks[len(group.blocks)-1].end
	}
	return group
}

var bareEndRe = regexp.MustCompile(`^end\s*;?\s*$`)

// collectSingleBlock collects one begin:<label> block. The block runs until
// the next labeled begin or a structural keyword; a bare end closing it is
// consumed as part of the block.
func collectSingleBlock(lines []source.Line, startIdx int) (orphanBlock, bool) {
	label, ok := token.LabeledBeginName(lines[startIdx].Trimmed)
	if !ok {
		return orphanBlock{}, false
	}

	i := startIdx + 1
	for i < len(lines) {
		t := lines[i].Trimmed

		if _, labeled := token.LabeledBeginName(t); labeled {
			break
		}
		if bareEndRe.MatchString(t) {
			i++
			break
		}
		if strings.HasPrefix(t, "endmodule") || strings.HasPrefix(t, "module ") ||
			strings.HasPrefix(t, "always") || strings.HasPrefix(t, "assign") {
			break
		}
		i++
	}

	return orphanBlock{label: label, start: startIdx, end: i - 1}, true
}

var genvarIndexRe = regexp.MustCompile(`\[[IiJjKk]\]|\[idx\]|\[index\]`)

func blockNeedsGenvar(lines []source.Line, block orphanBlock) bool {
	for i := block.start; i <= block.end && i < len(lines); i++ {
		if genvarIndexRe.MatchString(lines[i].Raw) {
			return true
		}
	}
	return false
}

// wrapWithGenerate emits the generate scaffolding around the group's block
// bodies, re-indented one level deeper, at the group's base indentation.
func (p *GeneratePatcher) wrapWithGenerate(group orphanGroup, lines []source.Line) []source.Line {
	base := lines[group.start].Indent
	out := make([]source.Line, 0, group.end-group.start+6)

	if group.needsGenvar {
		out = append(out, source.Make(base, "genvar i;"))
		p.stats.Inserted++
	}

	out = append(out, source.Make(base, "generate"))

	if group.needsGenvar {
		bound := p.inferLoopBound(lines)
		out = append(out, source.Make(base+"  ",
			fmt.Sprintf("for (i = 0; i < %s; i = i + 1) begin", bound)))
	}

	for _, block := range group.blocks {
		for i := block.start; i <= block.end && i < len(lines); i++ {
			body := lines[i]
			out = append(out, source.Make("  "+body.Indent, body.Trimmed))
		}
	}

	if group.needsGenvar {
		out = append(out, source.Make(base+"  ", "end"))
	}

	out = append(out, source.Make(base, "endgenerate"))
	return out
}

var paramDeclRe = regexp.MustCompile(`parameter\s+(\w+)\s*=\s*(\d+)`)

var loopBoundNameHints = []string{"width", "size", "num", "count"}

// inferLoopBound picks the first declared parameter whose name suggests a
// width or element count; falls back to the configured default bound.
func (p *GeneratePatcher) inferLoopBound(lines []source.Line) string {
	for i := 0; i < min(paramScanWindow, len(lines)); i++ {
		m := paramDeclRe.FindStringSubmatch(lines[i].Trimmed)
		if m == nil {
			continue
		}
		name := strings.ToLower(m[1])
		for _, hint := range loopBoundNameHints {
			if strings.Contains(name, hint) {
				return m[1]
			}
		}
	}
	return fmt.Sprintf("%d", p.opts.DefaultLoopBound)
}
