package patch

import (
	"rtlpatch/internal/hints"
)

// Default heuristic tunables. The else lookahead mirrors the historical
// tolerance for how far past an if block its else may trail; it is a named
// option rather than a hard rule because real-world generated RTL varies.
const (
	// DefaultElseLookahead is how many lines past an if block's end an
	// else/else-if may appear and still be paired with it.
	DefaultElseLookahead = 5
	// DefaultLoopBound is the generate loop bound used when no plausible
	// width/size parameter is declared.
	DefaultLoopBound = 8
)

// DefaultClockNames are the clock signal names probed by the always pass when
// the module declares no recognizable clock input.
func DefaultClockNames() []string {
	return []string{"clk", "clock", "aclk", "pclk"}
}

// Options configures one pipeline run.
type Options struct {
	// ElseLookahead is the else-matching window in lines (0 means default).
	ElseLookahead int
	// DefaultLoopBound is the fallback generate loop bound (0 means default).
	DefaultLoopBound int
	// ClockNames overrides the probed clock signal names (nil means default).
	ClockNames []string
	// Hints carries optional reference-source hints for clock inference.
	// Nil degrades to the static heuristics.
	Hints *hints.Hints
}

func (o Options) withDefaults() Options {
	if o.ElseLookahead <= 0 {
		o.ElseLookahead = DefaultElseLookahead
	}
	if o.DefaultLoopBound <= 0 {
		o.DefaultLoopBound = DefaultLoopBound
	}
	if len(o.ClockNames) == 0 {
		o.ClockNames = DefaultClockNames()
	}
	return o
}
