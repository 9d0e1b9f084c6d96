package source

import (
	"strings"
)

// Line is a single source line split into its recoverable indentation and
// trimmed content. Passes never mutate a Line in place: repaired output is
// built from fresh Lines so the input sequence stays intact for the caller.
type Line struct {
	// Raw is the full line text without the trailing newline.
	Raw string
	// Indent is the run of leading spaces/tabs of Raw.
	Indent string
	// Trimmed is Raw with surrounding whitespace removed.
	Trimmed string
}

// NewLine builds a Line from raw text, deriving Indent and Trimmed.
func NewLine(raw string) Line {
	raw = strings.TrimRight(raw, "\n")
	return Line{
		Raw:     raw,
		Indent:  indentOf(raw),
		Trimmed: strings.TrimSpace(raw),
	}
}

// Make builds a Line from an explicit indent prefix and trimmed content.
func Make(indent, content string) Line {
	content = strings.TrimSpace(content)
	if content == "" {
		// пустая строка не носит отступ
		return Line{}
	}
	return Line{
		Raw:     indent + content,
		Indent:  indent,
		Trimmed: content,
	}
}

// IsBlank reports whether the line has no visible content.
func (l Line) IsBlank() bool { return l.Trimmed == "" }

// IsComment reports whether the line is a // comment.
func (l Line) IsComment() bool { return strings.HasPrefix(l.Trimmed, "//") }

// IndentWidth returns the length of the indentation prefix. Tabs count as one
// column each; the repair heuristics only ever compare widths within one file,
// where indentation style is assumed consistent.
func (l Line) IndentWidth() int { return len(l.Indent) }

func indentOf(raw string) string {
	for i := 0; i < len(raw); i++ {
		if raw[i] != ' ' && raw[i] != '\t' {
			return raw[:i]
		}
	}
	return raw
}

// SplitLines converts raw text into the line sequence the passes operate on.
func SplitLines(text string) []Line {
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n")
	// завершающий \n даёт пустой хвостовой элемент — он не строка
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	lines := make([]Line, len(parts))
	for i, p := range parts {
		lines[i] = NewLine(p)
	}
	return lines
}

// JoinLines renders a line sequence back to text. Every line, including the
// last, is newline-terminated so the output is a well-formed source unit.
func JoinLines(lines []Line) string {
	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.Raw)
		b.WriteByte('\n')
	}
	return b.String()
}
