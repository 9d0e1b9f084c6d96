package token

import (
	"regexp"
	"strings"
)

// Classify returns the Kind of a trimmed line by its leading construct.
// "else if" is folded into a single KwElseIf kind since the if-else pass
// treats it as one unit.
func Classify(trimmed string) Kind {
	if trimmed == "" {
		return Blank
	}
	if strings.HasPrefix(trimmed, "//") {
		return Comment
	}
	word, rest := leadingWord(trimmed)
	k, ok := LookupKeyword(word)
	if !ok {
		return Other
	}
	if k == KwElse {
		if next, _ := leadingWord(strings.TrimLeft(rest, " \t")); next == "if" {
			return KwElseIf
		}
	}
	return k
}

// leadingWord splits off the first identifier-shaped token of a line.
func leadingWord(s string) (word, rest string) {
	i := 0
	for i < len(s) && isWordByte(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_' || b == '$'
}

// IsNewStatement reports whether a line's kind begins a new statement, i.e.
// terminates collection of a multi-line logical statement.
func IsNewStatement(k Kind) bool {
	switch k {
	case KwAssign, KwAlways, KwWire, KwReg, KwInput, KwOutput,
		KwModule, KwEndmodule, KwBegin, KwEnd, KwIf, KwCase,
		KwEndcase, KwEndgenerate:
		return true
	default:
		return false
	}
}

// IsBlockTerminator reports whether a line's kind heuristically signals that
// an enclosing case block has ended before it.
func IsBlockTerminator(k Kind) bool {
	switch k {
	case KwAlways, KwAssign, KwWire, KwReg, KwInput, KwOutput,
		KwModule, KwEndmodule, KwBegin, KwEnd, KwIf, KwElse, KwElseIf,
		KwEndgenerate:
		return true
	default:
		return false
	}
}

// continuation operators in leading position; two-byte forms checked first
var continuationPrefixes = []string{"==", "!=", "|", "&", "^", "+", "-", "?", ":"}

// IsContinuation reports whether a trimmed line continues the previous
// statement: it begins with a binary or ternary operator token.
func IsContinuation(trimmed string) bool {
	for _, op := range continuationPrefixes {
		if strings.HasPrefix(trimmed, op) {
			return true
		}
	}
	return false
}

var danglingSuffixes = []string{"|", "&", "^", "+", "-", "?", ":", "="}

// EndsWithOperator reports whether a trimmed line ends in a dangling binary,
// ternary, or assignment operator and therefore needs continuation.
func EndsWithOperator(trimmed string) bool {
	for _, op := range danglingSuffixes {
		if strings.HasSuffix(trimmed, op) {
			return true
		}
	}
	return false
}

// IsTerminated reports whether a trimmed line ends with a statement terminator.
func IsTerminated(trimmed string) bool {
	return strings.HasSuffix(trimmed, ";")
}

var (
	labeledBeginRe = regexp.MustCompile(`^begin\s*:\s*([A-Za-z_]\w*)\s*$`)
	caseOpenRe     = regexp.MustCompile(`\bcase[xz]?\s*\(`)
	ifOpenRe       = regexp.MustCompile(`\bif\s*\(`)
	elseIfRe       = regexp.MustCompile(`\belse\s+if\s*\(`)
	bareElseEndRe  = regexp.MustCompile(`\belse\s*$`)
	elseBeginRe    = regexp.MustCompile(`\belse\s+begin\b`)
)

// LabeledBeginName extracts the label from a line of the exact shape
// "begin : <identifier>".
func LabeledBeginName(trimmed string) (string, bool) {
	m := labeledBeginRe.FindStringSubmatch(trimmed)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// OpensCase reports whether a line opens a case statement.
func OpensCase(trimmed string) bool {
	return caseOpenRe.MatchString(trimmed)
}

// ClosesCase reports whether a line closes a case statement.
func ClosesCase(trimmed string) bool {
	return trimmed == "endcase" || strings.HasPrefix(trimmed, "endcase")
}

// OpensIf reports whether a line contains an if condition that is not part of
// an else-if.
func OpensIf(trimmed string) bool {
	return ifOpenRe.MatchString(trimmed) && !strings.HasPrefix(trimmed, "else")
}

// IsElseIf reports whether a line is an else-if branch.
func IsElseIf(trimmed string) bool {
	return elseIfRe.MatchString(trimmed)
}

// IsBareElse reports whether a line is a bare else branch (not else-if).
func IsBareElse(trimmed string) bool {
	if strings.Contains(trimmed, "else if") {
		return false
	}
	return bareElseEndRe.MatchString(trimmed) || elseBeginRe.MatchString(trimmed)
}
