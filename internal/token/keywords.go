package token

var keywords = map[string]Kind{
	"assign":      KwAssign,
	"always":      KwAlways,
	"initial":     KwInitial,
	"case":        KwCase,
	"casex":       KwCase,
	"casez":       KwCase,
	"endcase":     KwEndcase,
	"if":          KwIf,
	"else":        KwElse,
	"begin":       KwBegin,
	"end":         KwEnd,
	"module":      KwModule,
	"endmodule":   KwEndmodule,
	"wire":        KwWire,
	"reg":         KwReg,
	"input":       KwInput,
	"output":      KwOutput,
	"inout":       KwInout,
	"generate":    KwGenerate,
	"endgenerate": KwEndgenerate,
	"genvar":      KwGenvar,
	"parameter":   KwParameter,
	"localparam":  KwLocalparam,
	"for":         KwFor,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые — Verilog использует только lowercase.
func LookupKeyword(word string) (Kind, bool) {
	k, ok := keywords[word]
	return k, ok
}
