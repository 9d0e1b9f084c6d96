package token

// Kind classifies a source line by its leading construct. The repair passes
// never build a syntax tree; every structural decision starts from this
// per-line classification.
type Kind uint8

const (
	// Other is any line the classifier does not recognize.
	Other Kind = iota
	// Blank is a line without visible content.
	Blank
	// Comment is a // line comment.
	Comment

	// KwAssign starts a continuous assignment.
	KwAssign // assign
	// KwAlways starts an always block header.
	KwAlways // always
	// KwInitial starts an initial block.
	KwInitial // initial
	// KwCase starts a case statement.
	KwCase // case, casex, casez
	// KwEndcase closes a case statement.
	KwEndcase // endcase
	// KwIf starts a conditional.
	KwIf // if
	// KwElse is a bare else branch.
	KwElse // else
	// KwElseIf is an else-if branch.
	KwElseIf // else if
	// KwBegin opens a sequential block.
	KwBegin // begin
	// KwEnd closes a sequential block.
	KwEnd // end
	// KwModule starts a module declaration.
	KwModule // module
	// KwEndmodule closes a module declaration.
	KwEndmodule // endmodule
	// KwWire declares a net.
	KwWire // wire
	// KwReg declares a register.
	KwReg // reg
	// KwInput declares an input port.
	KwInput // input
	// KwOutput declares an output port.
	KwOutput // output
	// KwInout declares a bidirectional port.
	KwInout // inout
	// KwGenerate opens a generate region.
	KwGenerate // generate
	// KwEndgenerate closes a generate region.
	KwEndgenerate // endgenerate
	// KwGenvar declares a generate loop variable.
	KwGenvar // genvar
	// KwParameter declares a parameter.
	KwParameter // parameter
	// KwLocalparam declares a local parameter.
	KwLocalparam // localparam
	// KwFor starts a procedural or generate loop.
	KwFor // for
)

func (k Kind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Comment:
		return "comment"
	case KwAssign:
		return "assign"
	case KwAlways:
		return "always"
	case KwInitial:
		return "initial"
	case KwCase:
		return "case"
	case KwEndcase:
		return "endcase"
	case KwIf:
		return "if"
	case KwElse:
		return "else"
	case KwElseIf:
		return "else-if"
	case KwBegin:
		return "begin"
	case KwEnd:
		return "end"
	case KwModule:
		return "module"
	case KwEndmodule:
		return "endmodule"
	case KwWire:
		return "wire"
	case KwReg:
		return "reg"
	case KwInput:
		return "input"
	case KwOutput:
		return "output"
	case KwInout:
		return "inout"
	case KwGenerate:
		return "generate"
	case KwEndgenerate:
		return "endgenerate"
	case KwGenvar:
		return "genvar"
	case KwParameter:
		return "parameter"
	case KwLocalparam:
		return "localparam"
	case KwFor:
		return "for"
	}
	return "other"
}
