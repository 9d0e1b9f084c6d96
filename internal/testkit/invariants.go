package testkit

import (
	"fmt"
	"strings"

	"rtlpatch/internal/source"
	"rtlpatch/internal/token"
)

// CheckClosureInvariants runs the structural closure checks expected of
// repaired output:
// 1) every assign statement line ends with a terminator
// 2) case/endcase and generate/endgenerate counts are balanced
// 3) no line is a single stray operator token
// 4) no else line survives without an if somewhere before it
func CheckClosureInvariants(lines []source.Line) error {
	caseDepth := 0
	genDepth := 0
	ifSeen := false

	for i, line := range lines {
		t := line.Trimmed
		if t == "" || strings.HasPrefix(t, "//") {
			continue
		}

		if strings.HasPrefix(t, "assign ") && !strings.HasSuffix(t, ";") {
			return fmt.Errorf("line %d: unterminated assign: %q", i+1, t)
		}

		if token.OpensCase(t) {
			caseDepth++
		}
		if token.ClosesCase(t) {
			caseDepth--
			if caseDepth < 0 {
				return fmt.Errorf("line %d: endcase without case", i+1)
			}
		}

		if t == "generate" {
			genDepth++
		}
		if t == "endgenerate" {
			genDepth--
			if genDepth < 0 {
				return fmt.Errorf("line %d: endgenerate without generate", i+1)
			}
		}

		if token.OpensIf(t) {
			ifSeen = true
		}
		if (token.IsBareElse(t) || token.IsElseIf(t)) && !ifSeen {
			return fmt.Errorf("line %d: else without any preceding if: %q", i+1, t)
		}

		if isStrayOperator(t) {
			return fmt.Errorf("line %d: stray operator line: %q", i+1, t)
		}
	}

	if caseDepth != 0 {
		return fmt.Errorf("unbalanced case/endcase: depth %d at end of input", caseDepth)
	}
	if genDepth != 0 {
		return fmt.Errorf("unbalanced generate/endgenerate: depth %d at end of input", genDepth)
	}
	return nil
}

func isStrayOperator(trimmed string) bool {
	if len(trimmed) != 1 {
		return false
	}
	return strings.ContainsAny(trimmed, "&|^~+-*/<>=!{}:?")
}

// MustClose fails the provided error func when the invariants do not hold;
// kept as a helper so tests read as one line.
func MustClose(lines []source.Line, fail func(format string, args ...any)) {
	if err := CheckClosureInvariants(lines); err != nil {
		fail("closure invariants violated: %v", err)
	}
}
