package assembler

import (
	"errors"
	"fmt"
	"strconv"
)

type ErrorKind int

const (
	MalformedLiteral ErrorKind = iota + 1
	MalformedOperand
	DuplicateSymbol
	UndefinedSymbol
	UnknownMnemonic
	RegisterOutOfRange
	NoMatchingVariant
	OperandOverflow
	MissingOperand
)

var errorKindNames = map[ErrorKind]string{
	MalformedLiteral:   "malformed literal",
	MalformedOperand:   "malformed operand",
	DuplicateSymbol:    "duplicate symbol",
	UndefinedSymbol:    "undefined symbol",
	UnknownMnemonic:    "unknown mnemonic",
	RegisterOutOfRange: "register out of range",
	NoMatchingVariant:  "no matching instruction variant",
	OperandOverflow:    "operand overflow",
	MissingOperand:     "missing operand",
}

func (k ErrorKind) Error() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return "assembly error " + strconv.Itoa(int(k))
}

// AssemblyError is a typed failure tied to one source line. Line and Text are filled in
// by the stage that owns the line; constructors leave them empty.
type AssemblyError struct {
	Line    int
	Text    string
	Column  int // 0-based offset of Subject within Text, -1 when unknown
	Kind    ErrorKind
	Subject string // offending token or symbol name
	Detail  string
}

func (e *AssemblyError) Error() string {
	msg := e.Message()
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

// Message is the error without its line prefix.
func (e *AssemblyError) Message() string {
	msg := e.Kind.Error()
	if e.Subject != "" {
		msg += " \"" + e.Subject + "\""
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *AssemblyError) Unwrap() error {
	return e.Kind
}

// at attaches the source position. column is the token column in line.Code when known.
func (e *AssemblyError) at(line SourceLine, column int) *AssemblyError {
	e.Line = line.Number
	e.Text = line.Text
	if column >= 0 && len(line.FoldedFrom) > 0 {
		// folded labels were prepended to the raw text
		column -= len(line.Code) - len(line.Text)
	}
	e.Column = column
	return e
}

// Diagnostic converts the error into the editor diagnostic shape (0-based lines).
func (e *AssemblyError) Diagnostic() Diagnostic {
	line := e.Line - 1
	if line < 0 {
		line = 0
	}
	r := TextRange{
		Start: TextPosition{Line: line, Char: 0},
		End:   TextPosition{Line: line, Char: len(e.Text)},
	}
	if e.Column >= 0 && e.Subject != "" {
		r.Start.Char = e.Column
		r.End.Char = e.Column + len(e.Subject)
	}
	return Diagnostic{
		Range:    r,
		Message:  e.Message(),
		Source:   "Assembler",
		Severity: Error,
	}
}

// AsAssemblyError unwraps err into an *AssemblyError if it is one.
func AsAssemblyError(err error) (*AssemblyError, bool) {
	var asmErr *AssemblyError
	ok := errors.As(err, &asmErr)
	return asmErr, ok
}

// Errors
type assemblyError struct{}

var Errors assemblyError

func newError(kind ErrorKind, subject, detail string) *AssemblyError {
	return &AssemblyError{Kind: kind, Subject: subject, Detail: detail, Column: -1}
}

func (assemblyError) MalformedLiteral(literal, reason string) *AssemblyError {
	return newError(MalformedLiteral, literal, reason)
}

func (assemblyError) MalformedOperand(operand, reason string) *AssemblyError {
	return newError(MalformedOperand, operand, reason)
}

func (assemblyError) InvalidSymbolName(name, reason string) *AssemblyError {
	return newError(MalformedOperand, name, reason)
}

func (assemblyError) DuplicateSymbol(name string, previousLine int) *AssemblyError {
	detail := ""
	if previousLine > 0 {
		detail = "first defined on line " + strconv.Itoa(previousLine)
	}
	return newError(DuplicateSymbol, name, detail)
}

func (assemblyError) UndefinedSymbol(name string) *AssemblyError {
	return newError(UndefinedSymbol, name, "")
}

func (assemblyError) UnknownMnemonic(mnemonic string) *AssemblyError {
	return newError(UnknownMnemonic, mnemonic, "")
}

func (assemblyError) RegisterOutOfRange(register string) *AssemblyError {
	return newError(RegisterOutOfRange, register, "registers are r0 to r31")
}

func (assemblyError) NoMatchingVariant(mnemonic, syntax string) *AssemblyError {
	return newError(NoMatchingVariant, mnemonic, "expected "+syntax)
}

func (assemblyError) OperandOverflow(operand, reason string) *AssemblyError {
	return newError(OperandOverflow, operand, reason)
}

func (assemblyError) MissingOperand(what, syntax string) *AssemblyError {
	return newError(MissingOperand, what, syntax)
}

// Warnings
type assemblyWarning struct{}

var Warnings assemblyWarning

func (assemblyWarning) UnusedLabel(label string, r TextRange) Diagnostic {
	r, label = AdjustRange(r, label)
	return Diagnostic{
		Range:    r,
		Message:  "Unused label: \"" + label + "\"",
		Source:   "Assembler",
		Severity: Warning,
	}
}

func (assemblyWarning) UnknownDirective(directive string, r TextRange) Diagnostic {
	r, directive = AdjustRange(r, directive)
	return Diagnostic{
		Range:    r,
		Message:  "Unknown directive \"" + directive + "\" is ignored",
		Source:   "Assembler",
		Severity: Warning,
	}
}

func AdjustRange(r TextRange, errorText string) (TextRange, string) {
	// Removes the leading and training whitespace from the error text, and adjusts the range accordingly
	text := errorText
	for len(text) > 0 && text[0] == ' ' {
		text = text[1:]
		r.Start.Char += 1
	}

	for len(text) > 0 && text[len(text)-1] == ' ' {
		text = text[:len(text)-1]
		r.End.Char -= 1
	}

	return r, text
}
