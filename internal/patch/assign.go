package patch

import (
	"regexp"
	"strings"

	"rtlpatch/internal/source"
	"rtlpatch/internal/token"
)

// AssignPatcher merges multi-line assignments, completes ternary expressions,
// splits concatenated statements, and normalizes operators. One instance per
// pipeline run.
type AssignPatcher struct {
	stats PassStats
}

// NewAssignPatcher returns a patcher with zeroed counters.
func NewAssignPatcher() *AssignPatcher { return &AssignPatcher{} }

// Stats returns the counters accumulated by Repair.
func (p *AssignPatcher) Stats() PassStats { return p.stats }

// Repair rewrites the line sequence so that every assign statement is a
// single, terminated, ternary-balanced line. Original left-hand sides and
// operator tokens are never dropped.
func (p *AssignPatcher) Repair(lines []source.Line) []source.Line {
	out := make([]source.Line, 0, len(lines))

	i := 0
	for i < len(lines) {
		line := lines[i]
		t := line.Trimmed

		switch {
		case isAssignStart(t):
			stmt, consumed := collectAssign(lines, i)
			if consumed > 1 {
				p.stats.Merged++
			}

			parts := splitMultipleAssigns(stmt)
			if len(parts) > 1 {
				p.stats.Fixed++
				for _, part := range parts {
					fixed := fixAssignStatement(part)
					if strings.TrimSpace(fixed) != "" {
						out = append(out, source.Make(line.Indent, fixed))
					}
				}
			} else {
				fixed := fixAssignStatement(stmt)
				if fixed != stmt {
					p.stats.Fixed++
				}
				if strings.TrimSpace(fixed) != "" {
					out = append(out, source.Make(line.Indent, fixed))
				}
			}
			i += consumed

		case isOrphanOperatorPart(t):
			// строка-обрывок: приклеиваем к предыдущей, если та не закончена
			if len(out) > 0 && canMergeWithPrevious(out[len(out)-1].Trimmed, t) {
				prev := out[len(out)-1]
				out[len(out)-1] = source.Make(prev.Indent, prev.Trimmed+" "+t)
				p.stats.Fixed++
			} else {
				out = append(out, line)
			}
			i++

		case isIncompleteAssignment(t):
			fixed := completeAssignment(t)
			if fixed != t {
				p.stats.Fixed++
			}
			out = append(out, source.Make(line.Indent, fixed))
			i++

		default:
			out = append(out, line)
			i++
		}
	}

	return out
}

func isAssignStart(trimmed string) bool {
	return strings.HasPrefix(trimmed, "assign ") && strings.Contains(trimmed, "=")
}

// collectAssign gathers the smallest line range forming one logical assign
// statement starting at start, honoring the continuation rules: blank lines,
// comments, and operator-leading lines continue the statement; a recognized
// new-statement keyword ends it unless the line also looks like a
// continuation. Returns the joined trimmed statement and lines consumed.
func collectAssign(lines []source.Line, start int) (string, int) {
	consumed := 1
	parts := []string{lines[start].Trimmed}

	first := parts[0]
	needsContinuation := !token.IsTerminated(first) || token.EndsWithOperator(first)

	if needsContinuation {
		i := start + 1
		for i < len(lines) {
			next := lines[i].Trimmed

			// пустые строки и комментарии растворяются в собранном statement
			if next == "" || strings.HasPrefix(next, "//") {
				i++
				consumed++
				continue
			}

			if token.IsNewStatement(token.Classify(next)) && !token.IsContinuation(next) {
				break
			}

			parts = append(parts, next)
			consumed++

			if token.IsTerminated(next) {
				break
			}
			i++
		}
	}

	return strings.Join(parts, " "), consumed
}

var doubleAssignRe = regexp.MustCompile(`(assign\s+[^=]+=\s*[^;]+?)\s+(assign\s+.*)`)

// splitMultipleAssigns splits two assign statements concatenated on one line,
// e.g. "assign a = b assign c = d;", terminating the first.
func splitMultipleAssigns(stmt string) []string {
	m := doubleAssignRe.FindStringSubmatch(strings.TrimSpace(stmt))
	if m == nil {
		return []string{stmt}
	}
	first := strings.TrimSpace(m[1])
	if !strings.HasSuffix(first, ";") {
		first += ";"
	}
	return []string{first, strings.TrimSpace(m[2])}
}

var (
	brokenTernaryRe = regexp.MustCompile(`\?\s*else\s+if\s*\([^)]+\)\s*[^;:]+;\s*:`)
	anyWSRe         = regexp.MustCompile(`\s+`)
	eqWSRe          = regexp.MustCompile(`\s*=\s*`)
	questionWSRe    = regexp.MustCompile(`\s*\?\s*`)
	colonWSRe       = regexp.MustCompile(`\s*:\s*`)
	splitEqEqRe     = regexp.MustCompile(`=\s+=`)
	splitLtEqRe     = regexp.MustCompile(`<\s+=`)
	splitGtEqRe     = regexp.MustCompile(`>\s+=`)
	splitBangEqRe   = regexp.MustCompile(`!\s+=`)
)

// fixAssignStatement repairs a single collected assign statement: replaces
// malformed ternary fragments, balances ?/:, terminates, and canonicalizes
// whitespace around = ? : without losing any operator tokens.
func fixAssignStatement(stmt string) string {
	if strings.TrimSpace(stmt) == "" {
		return stmt
	}

	fixed := brokenTernaryRe.ReplaceAllString(stmt, " ? 1'b0 :")
	fixed = balanceTernary(fixed)

	if !strings.HasSuffix(strings.TrimSpace(fixed), ";") {
		fixed = strings.TrimRight(fixed, " \t") + ";"
	}

	fixed = anyWSRe.ReplaceAllString(fixed, " ")
	fixed = eqWSRe.ReplaceAllString(fixed, " = ")
	fixed = questionWSRe.ReplaceAllString(fixed, " ? ")
	fixed = colonWSRe.ReplaceAllString(fixed, " : ")

	// the = normalization splits compound operators apart; rejoin them
	fixed = splitEqEqRe.ReplaceAllString(fixed, "==")
	fixed = splitLtEqRe.ReplaceAllString(fixed, "<=")
	fixed = splitGtEqRe.ReplaceAllString(fixed, ">=")
	fixed = splitBangEqRe.ReplaceAllString(fixed, "!=")

	return strings.TrimSpace(fixed)
}

// balanceTernary appends a default ": 1'b0" branch for every unmatched ?.
func balanceTernary(stmt string) string {
	deficit := strings.Count(stmt, "?") - strings.Count(stmt, ":")
	for i := 0; i < deficit; i++ {
		stmt += " : 1'b0"
	}
	return stmt
}

func isOrphanOperatorPart(trimmed string) bool {
	if trimmed == "" {
		return false
	}
	switch trimmed[0] {
	case '?', ':', '|', '&', '^':
		return true
	}
	return false
}

var (
	mergeSuffixes = []string{"?", "&", "|", "^", "+", "-"}
	mergePrefixes = []string{"?", ":", "&", "|", "^", "+", "-"}
)

func canMergeWithPrevious(prev, curr string) bool {
	for _, op := range mergeSuffixes {
		if strings.HasSuffix(prev, op) {
			return true
		}
	}
	for _, op := range mergePrefixes {
		if strings.HasPrefix(curr, op) {
			return true
		}
	}
	if strings.HasPrefix(prev, "assign ") && !strings.HasSuffix(prev, ";") {
		return true
	}
	return false
}

// isIncompleteAssignment detects lines ending in a dangling assignment
// operator or ternary piece with no right-hand side.
func isIncompleteAssignment(trimmed string) bool {
	if trimmed == "" {
		return false
	}
	return strings.HasSuffix(trimmed, "=") ||
		strings.HasSuffix(trimmed, "?") ||
		strings.HasSuffix(trimmed, ":")
}

// completeAssignment closes a dangling line with a default one-bit literal.
func completeAssignment(trimmed string) string {
	switch {
	case strings.HasSuffix(trimmed, "="):
		return trimmed + " 1'b0;"
	case strings.HasSuffix(trimmed, "?"):
		return trimmed + " 1'b1 : 1'b0;"
	case strings.HasSuffix(trimmed, ":"):
		return trimmed + " 1'b0;"
	}
	return trimmed
}
