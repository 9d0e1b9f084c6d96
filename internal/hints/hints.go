package hints

import (
	"regexp"
	"strings"

	"rtlpatch/internal/source"
)

// extraction windows mirror the always-pass scan limits
const (
	beginWindow     = 5
	signatureWindow = 10
	signatureLimit  = 3
)

// AlwaysBlock is structural metadata for one always block found in a
// reference source file: its declaration line, the first body lines after
// begin, and the declaration's line number.
type AlwaysBlock struct {
	Decl      string   `msgpack:"decl"`
	Signature []string `msgpack:"signature"`
	LineNum   int      `msgpack:"line_num"`
}

// Hints is the clock and always-block metadata harvested from a reference
// source file. A nil *Hints everywhere degrades to static heuristics.
type Hints struct {
	// Path is the reference file the hints came from.
	Path string `msgpack:"path"`
	// Clocks lists clock signal names in discovery order.
	Clocks []string `msgpack:"clocks"`
	// Blocks maps module name to its always blocks.
	Blocks map[string][]AlwaysBlock `msgpack:"blocks"`
}

// PreferredClock returns the first harvested clock name, or "" when the
// reference file declared none.
func (h *Hints) PreferredClock() string {
	if h == nil || len(h.Clocks) == 0 {
		return ""
	}
	return h.Clocks[0]
}

// BlockCount returns the total number of harvested always blocks.
func (h *Hints) BlockCount() int {
	if h == nil {
		return 0
	}
	n := 0
	for _, blocks := range h.Blocks {
		n += len(blocks)
	}
	return n
}

// Load reads a reference source file and extracts hints from it. Callers are
// expected to treat an error as "no hints" rather than a failure.
func Load(path string) (*Hints, error) {
	f, err := source.Load(path)
	if err != nil {
		return nil, err
	}
	return Extract(f), nil
}

var (
	moduleDeclRe = regexp.MustCompile(`^module\s+(\w+)`)
	clockDeclRe  = regexp.MustCompile(`input.*?(\w*clk\w*)`)
	clockEdgeRe  = regexp.MustCompile(`(?:posedge|negedge)\s+(\w+)`)
)

// Extract harvests clock names and per-module always-block metadata from an
// already-loaded file.
func Extract(f *source.File) *Hints {
	h := &Hints{
		Path:   f.Path,
		Blocks: make(map[string][]AlwaysBlock),
	}

	seen := make(map[string]bool)
	addClock := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			h.Clocks = append(h.Clocks, name)
		}
	}

	currentModule := ""
	for i, line := range f.Lines {
		t := line.Trimmed

		if m := moduleDeclRe.FindStringSubmatch(t); m != nil {
			currentModule = m[1]
			h.Blocks[currentModule] = nil
		}

		lower := strings.ToLower(t)
		if strings.Contains(lower, "input") &&
			(strings.Contains(lower, "clk") || strings.Contains(lower, "clock")) {
			if m := clockDeclRe.FindStringSubmatch(lower); m != nil {
				addClock(m[1])
			}
		}
		if m := clockEdgeRe.FindStringSubmatch(t); m != nil {
			addClock(m[1])
		}

		if currentModule != "" && strings.HasPrefix(t, "always") {
			if block, ok := extractAlwaysBlock(f.Lines, i); ok {
				h.Blocks[currentModule] = append(h.Blocks[currentModule], block)
			}
		}
	}

	return h
}

// extractAlwaysBlock captures one always block's signature: the declaration
// plus the first few meaningful body lines after its begin.
func extractAlwaysBlock(lines []source.Line, declIdx int) (AlwaysBlock, bool) {
	beginIdx := -1
	for j := declIdx + 1; j < min(declIdx+beginWindow, len(lines)); j++ {
		if strings.Contains(lines[j].Raw, "begin") {
			beginIdx = j
			break
		}
	}
	if beginIdx == -1 && !strings.Contains(lines[declIdx].Raw, "begin") {
		return AlwaysBlock{}, false
	}
	if beginIdx == -1 {
		beginIdx = declIdx
	}

	var signature []string
	for k := beginIdx + 1; k < min(beginIdx+signatureWindow, len(lines)); k++ {
		t := lines[k].Trimmed
		if t == "" || strings.HasPrefix(t, "//") || t == "begin" {
			continue
		}
		signature = append(signature, t)
		if len(signature) >= signatureLimit {
			break
		}
	}

	return AlwaysBlock{
		Decl:      lines[declIdx].Trimmed,
		Signature: signature,
		LineNum:   declIdx,
	}, true
}
