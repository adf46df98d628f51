package assembler

// SourceLine is one raw line of the input. Code is what the passes tokenize: it is empty
// for blank lines, comments and consumed macros, and carries any labels folded in from
// label-only lines above it.
type SourceLine struct {
	Number     int    // 1-based
	Text       string // raw text as read
	Code       string
	FoldedFrom []int // line numbers of label-only lines folded into Code, in order
}

type ProcessedSource struct {
	Lines []SourceLine // one entry per raw line, Lines[i].Number == i+1
}

// Line returns the source line with the given 1-based number.
func (p *ProcessedSource) Line(number int) (SourceLine, bool) {
	if number < 1 || number > len(p.Lines) {
		return SourceLine{}, false
	}
	return p.Lines[number-1], true
}

type Token struct {
	Text   string
	Column int // 0-based byte offset into the line
}

type SymbolKind int

const (
	SymbolConstant SymbolKind = iota // #DEFINE
	SymbolLabel
)

func (k SymbolKind) String() string {
	if k == SymbolLabel {
		return "label"
	}
	return "constant"
}

type Symbol struct {
	Name  string
	Value uint32
	Kind  SymbolKind
	Line  int // line the symbol was defined on
}

type OperandKind int

const (
	OperandRegister OperandKind = iota
	OperandImmediate
	OperandAddress
	OperandPointer
)

func (k OperandKind) String() string {
	switch k {
	case OperandRegister:
		return "register"
	case OperandImmediate:
		return "immediate"
	case OperandAddress:
		return "address"
	case OperandPointer:
		return "pointer"
	}
	return "unknown"
}

type PointerRegister int

const (
	PointerX PointerRegister = iota + 1
	PointerY
	PointerZ
)

func (p PointerRegister) String() string {
	switch p {
	case PointerX:
		return "X"
	case PointerY:
		return "Y"
	case PointerZ:
		return "Z"
	}
	return "?"
}

type PointerMode int

const (
	PointerPlain PointerMode = iota
	PointerPostIncrement
	PointerPreDecrement
	PointerDisplacement
)

// ResolvedOperand is one operand token after resolution against the symbol table.
// For pointers, Value holds the displacement when Mode is PointerDisplacement.
type ResolvedOperand struct {
	Kind    OperandKind
	Value   uint32
	Pointer PointerRegister
	Mode    PointerMode
	Text    string // token as written
	Column  int
	Symbol  string // symbol name the value came from, if any
}

// EncodedLine is the object code produced for one instruction line.
type EncodedLine struct {
	Line     int
	Address  uint32 // in words
	Word     uint32 // 16-bit instructions use the low half
	Width    int    // 16 or 32
	Mnemonic string
	Operands []ResolvedOperand
}

// Words returns the instruction as 16-bit words in program memory order.
func (e EncodedLine) Words() []uint16 {
	if e.Width == 32 {
		return []uint16{uint16(e.Word >> 16), uint16(e.Word)}
	}
	return []uint16{uint16(e.Word)}
}

// AssembledResult is the best-effort output of AssembleListing, used by the language
// server and the assembly service.
type AssembledResult struct {
	Lines         []EncodedLine
	Symbols       *SymbolTable
	Diagnostics   []Diagnostic
	Errors        []*AssemblyError
	AddressToLine map[uint32]int // word address to 1-based line number
	source        *ProcessedSource
	references    map[string]bool
}

// Ok reports whether every line assembled without error.
func (a *AssembledResult) Ok() bool {
	return len(a.Errors) == 0
}

type TextPosition struct {
	Line int `json:"line"`
	Char int `json:"character"`
}

type TextRange struct {
	Start TextPosition `json:"start"`
	End   TextPosition `json:"end"`
}

type CodeDescription struct {
	URL string `json:"href"`
}

type DiagnosticSeverity int

const (
	Error       DiagnosticSeverity = 1
	Warning     DiagnosticSeverity = 2
	Information DiagnosticSeverity = 3
	Hint        DiagnosticSeverity = 4
)

type Diagnostic struct {
	Range           TextRange          `json:"range"`
	Message         string             `json:"message"`
	Source          string             `json:"source,omitempty"`
	CodeDescription *CodeDescription   `json:"codeDescription,omitempty"`
	Severity        DiagnosticSeverity `json:"severity,omitempty"`
}
