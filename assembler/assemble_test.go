package assembler_test

import (
	"errors"
	"reflect"
	"testing"

	"github.gatech.edu/ECEInnovation/AVR-Assembler/assembler"
)

func TestProgramRegisterOps(t *testing.T) {
	source := `
		add r1, r2
		mov r16, r17
		dec r16
		clr r16
		push r16
		pop r16
	`
	expected := []uint32{0x0C12, 0x2F01, 0x950A, 0x2700, 0x930F, 0x910F}

	lines, err := assembler.Assemble(source)
	validateResult(t, lines, err, expected)
}

func TestProgramImmediates(t *testing.T) {
	source := `
		ldi r16, 0xff
		ser r16
		cbr r16, 0x0F
		adiw r24, 1
		movw r24, r30
	`
	expected := []uint32{0xEF0F, 0xEF0F, 0x7F00, 0x9601, 0x01CF}

	lines, err := assembler.Assemble(source)
	validateResult(t, lines, err, expected)

	ops := lines[0].Operands
	if len(ops) != 2 || ops[0].Value != 16 || ops[1].Value != 255 {
		t.Errorf("Expected ldi operands [16 255], got %v", ops)
	}
	if ops[0].Kind != assembler.OperandRegister || ops[1].Kind != assembler.OperandImmediate {
		t.Errorf("Expected register and immediate operands, got %v and %v", ops[0].Kind, ops[1].Kind)
	}
}

func TestProgramMemoryAccess(t *testing.T) {
	source := `
		ld r16, X+
		st -Y, r17
		ldd r24, Y+5
		lds r16, 0x100
		sts 0x100, r16
		in r16, 0x3F
		out 0x3F, r16
		sbi 5, 3
	`
	expected := []uint32{0x910D, 0x931A, 0x818D, 0x91000100, 0x93000100, 0xB70F, 0xBF0F, 0x9A2B}

	lines, err := assembler.Assemble(source)
	validateResult(t, lines, err, expected)

	if lines[3].Address != 3 || lines[4].Address != 5 || lines[5].Address != 7 {
		t.Errorf("Expected 32-bit instructions to take two words, got addresses %d %d %d", lines[3].Address, lines[4].Address, lines[5].Address)
	}
}

func TestProgramNoOperands(t *testing.T) {
	source := `
	nop
	ret
	reti
	sei
	cli
	sec
	sleep
	wdr
	break
	ijmp
	icall
	lpm
	elpm
	spm
	`
	expected := []uint32{0x0000, 0x9508, 0x9518, 0x9478, 0x94F8, 0x9408, 0x9588, 0x95A8, 0x9598, 0x9409, 0x9509, 0x95C8, 0x95D8, 0x95E8}

	lines, err := assembler.Assemble(source)
	validateResult(t, lines, err, expected)
}

func TestProgramBranchesAndLabels(t *testing.T) {
	source := `
	ldi r16, 10
	loop: dec r16
		brne loop ; k = -2
	end: rjmp end
	`
	expected := []uint32{0xE00A, 0x950A, 0xF7F1, 0xCFFF}

	lines, err := assembler.Assemble(source)
	validateResult(t, lines, err, expected)
}

func TestProgramForwardReference(t *testing.T) {
	source := `
	rjmp end
	nop
	end: nop
	`
	expected := []uint32{0xC001, 0x0000, 0x0000}

	lines, err := assembler.Assemble(source)
	validateResult(t, lines, err, expected)
}

func TestProgramJumps(t *testing.T) {
	source := `
	loop: nop
	jmp loop
	call 0
	jmp 0x100
	`
	expected := []uint32{0x0000, 0x940C0000, 0x940E0000, 0x940C0100}

	lines, err := assembler.Assemble(source)
	validateResult(t, lines, err, expected)

	words := lines[1].Words()
	if len(words) != 2 || words[0] != 0x940C || words[1] != 0x0000 {
		t.Errorf("Expected jmp to be emitted as 940C 0000, got %04X", words)
	}
}

func TestDefine(t *testing.T) {
	source := `
#DEFINE COUNT 10
#define MASK 0b1111
#DEFINE ZERO
	ldi r16, COUNT
	andi r16, MASK
	ldi r17, ZERO
	`
	expected := []uint32{0xE00A, 0x700F, 0xE010}

	lines, err := assembler.Assemble(source)
	validateResult(t, lines, err, expected)
	if lines[0].Line != 5 {
		t.Errorf("Expected first instruction on line 5, got %d", lines[0].Line)
	}
}

func TestLabelFolding(t *testing.T) {
	source := "start:\n\n; comment\nagain:\n\tnop\n\trjmp start\n\trjmp again\n"
	expected := []uint32{0x0000, 0xCFFE, 0xCFFD}

	lines, err := assembler.Assemble(source)
	validateResult(t, lines, err, expected)
	if lines[0].Line != 5 {
		t.Errorf("Expected nop to keep line 5, got %d", lines[0].Line)
	}
}

func TestOrg(t *testing.T) {
	source := `
	nop
	.org 0x100
	here: nop
	.section text
	jmp here
	`
	expected := []uint32{0x0000, 0x0000, 0x940C0100}

	lines, err := assembler.Assemble(source)
	validateResult(t, lines, err, expected)

	if lines[0].Address != 0 || lines[1].Address != 0x100 || lines[2].Address != 0x101 {
		t.Errorf("Expected addresses 0, 0x100, 0x101, got %d, %d, %d", lines[0].Address, lines[1].Address, lines[2].Address)
	}
}

func TestLabelBeforeOrg(t *testing.T) {
	source := "vector:\n.org 0x20\n\tnop\n\trjmp vector\n"
	lines, err := assembler.Assemble(source)
	validateResult(t, lines, err, []uint32{0x0000, 0xCFFE})
	if lines[0].Address != 0x20 {
		t.Errorf("Expected label to fold past .org to 0x20, got %d", lines[0].Address)
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	source := `
	#DEFINE N 3
	top: ldi r16, N
	loop: dec r16
	brne loop
	rjmp top
	`
	first, err := assembler.Assemble(source)
	if err != nil {
		t.Fatal(err)
	}
	second, err := assembler.Assemble(source)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical results for identical input")
	}
}

func TestParallelEncoding(t *testing.T) {
	source := `
	start: ldi r16, 0xff
	loop: dec r16
	brne loop
	lds r17, 0x100
	out 0x3F, r16
	rjmp start
	`
	sequential, err := assembler.Assemble(source)
	if err != nil {
		t.Fatal(err)
	}

	defer assembler.SetConfig(assembler.GetConfig())
	config := assembler.DefaultConfig()
	config.Workers = 4
	assembler.SetConfig(config)

	parallel, err := assembler.Assemble(source)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sequential, parallel) {
		t.Errorf("Expected parallel pass 2 to match sequential output")
	}
}

func TestAssemblyErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		kind    assembler.ErrorKind
		line    int
		subject string
	}{
		{"undefined symbol", "nop\nbrne done\n", assembler.UndefinedSymbol, 2, "done"},
		{"unknown mnemonic", "foo r1\n", assembler.UnknownMnemonic, 1, "foo"},
		{"register out of range", "add r32, r1\n", assembler.RegisterOutOfRange, 1, "r32"},
		{"malformed register", "add r1x, r2\n", assembler.MalformedOperand, 1, "r1x"},
		{"malformed literal", "ldi r16, 0xZZ\n", assembler.MalformedLiteral, 1, "0xZZ"},
		{"malformed org address", ".org 0xZZ\n", assembler.MalformedLiteral, 1, "0xZZ"},
		{"semicolon inside operand", "add r1,r2;x\n", assembler.MalformedOperand, 1, "r2;x"},
		{"semicolon inside mnemonic", "nop;c\n", assembler.UnknownMnemonic, 1, "nop;c"},
		{"malformed displacement", "ldd r24, Y+-1\n", assembler.MalformedOperand, 1, "-1"},
		{"literal too wide", "ldi r16, 0x100000000\n", assembler.MalformedLiteral, 1, "0x100000000"},
		{"duplicate label", "a: nop\na: nop\n", assembler.DuplicateSymbol, 2, "a"},
		{"duplicate define", "#DEFINE A 1\n#DEFINE A 2\n", assembler.DuplicateSymbol, 2, "A"},
		{"label clashes with define", "#DEFINE A 1\nA: nop\n", assembler.DuplicateSymbol, 2, "A"},
		{"missing operand", "add r1\n", assembler.MissingOperand, 1, "add"},
		{"define without name", "#DEFINE\n", assembler.MissingOperand, 1, "#DEFINE"},
		{"org without address", ".org\n", assembler.MissingOperand, 1, ".org"},
		{"too many operands", "nop r1\n", assembler.NoMatchingVariant, 1, "nop"},
		{"wrong operand kind", "ldi 5, r16\n", assembler.NoMatchingVariant, 1, "ldi"},
		{"immediate too large", "ldi r16, 256\n", assembler.OperandOverflow, 1, "256"},
		{"lower register with immediate", "ldi r5, 1\n", assembler.OperandOverflow, 1, "r5"},
		{"odd register pair", "movw r25, r30\n", assembler.OperandOverflow, 1, "r25"},
		{"branch out of range", "brne far\n.org 0x100\nfar: nop\n", assembler.OperandOverflow, 1, "far"},
		{"register name as label", "r1: nop\n", assembler.MalformedOperand, 1, "r1"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			lines, err := assembler.Assemble(test.source)
			if err == nil {
				t.Fatalf("Expected an error, got %d lines", len(lines))
			}
			if lines != nil {
				t.Errorf("Expected no output on error, got %d lines", len(lines))
			}
			if !errors.Is(err, test.kind) {
				t.Errorf("Expected %v, got %v", test.kind, err)
			}
			asmErr, ok := assembler.AsAssemblyError(err)
			if !ok {
				t.Fatalf("Expected an *AssemblyError, got %T", err)
			}
			if asmErr.Line != test.line {
				t.Errorf("Expected error on line %d, got %d", test.line, asmErr.Line)
			}
			if asmErr.Subject != test.subject {
				t.Errorf("Expected subject \"%s\", got \"%s\"", test.subject, asmErr.Subject)
			}
		})
	}
}

func TestFirstErrorWins(t *testing.T) {
	// pass 1 runs to completion before any operand is resolved
	_, err := assembler.Assemble("brne nowhere\nfoo\n")
	if !errors.Is(err, assembler.UnknownMnemonic) {
		t.Errorf("Expected the unknown mnemonic from pass 1, got %v", err)
	}

	_, err = assembler.Assemble("brne nowhere\nldi r16, 256\n")
	if !errors.Is(err, assembler.UndefinedSymbol) {
		t.Errorf("Expected the earliest pass 2 error, got %v", err)
	}
}

func TestErrorColumnOnFoldedLine(t *testing.T) {
	_, err := assembler.Assemble("top:\n\tbrne nowhere\n")
	asmErr, ok := assembler.AsAssemblyError(err)
	if !ok {
		t.Fatalf("Expected an *AssemblyError, got %v", err)
	}
	if asmErr.Line != 2 || asmErr.Column != 6 {
		t.Errorf("Expected error at 2:6, got %d:%d", asmErr.Line, asmErr.Column)
	}
}

func TestListingDiagnostics(t *testing.T) {
	source := "\tunused: nop\n\t.foo 1\n\tbrne nowhere\n\tadd r1\n"

	result := assembler.AssembleListing(source)
	if result.Ok() {
		t.Fatal("Expected the listing to report errors")
	}
	if len(result.Errors) != 2 {
		t.Fatalf("Expected 2 errors, got %d (%v)", len(result.Errors), result.Errors)
	}
	if len(result.Lines) != 1 {
		t.Errorf("Expected the nop to still be encoded, got %d lines", len(result.Lines))
	}

	// unused label warnings are held back while there are errors
	expected := []assembler.Diagnostic{
		{Severity: assembler.Warning, Range: assembler.TextRange{Start: assembler.TextPosition{Line: 1, Char: 1}, End: assembler.TextPosition{Line: 1, Char: 5}}, Message: "Unknown directive \".foo\" is ignored"},
		{Severity: assembler.Error, Range: assembler.TextRange{Start: assembler.TextPosition{Line: 2, Char: 6}, End: assembler.TextPosition{Line: 2, Char: 13}}, Message: "undefined symbol \"nowhere\""},
		{Severity: assembler.Error, Range: assembler.TextRange{Start: assembler.TextPosition{Line: 3, Char: 1}, End: assembler.TextPosition{Line: 3, Char: 4}}, Message: "missing operand \"add\": expected add Rd, Rr"},
	}
	validateDiagnostics(t, result.Diagnostics, expected)
}

func TestListingUnusedLabel(t *testing.T) {
	result := assembler.AssembleListing("\tunused: nop\nused: rjmp used\n")
	if !result.Ok() {
		t.Fatalf("Expected no errors, got %v", result.Errors)
	}
	expected := []assembler.Diagnostic{
		{Severity: assembler.Warning, Range: assembler.TextRange{Start: assembler.TextPosition{Line: 0, Char: 1}, End: assembler.TextPosition{Line: 0, Char: 7}}, Message: "Unused label: \"unused\""},
	}
	validateDiagnostics(t, result.Diagnostics, expected)

	if result.AddressToLine[1] != 2 {
		t.Errorf("Expected address 1 to map to line 2, got %d", result.AddressToLine[1])
	}
}

func TestHover(t *testing.T) {
	source := "#DEFINE N 3\nloop: ldi r16, N\n\tld r17, Z+\n\trjmp loop\n"
	result := assembler.AssembleListing(source)
	if !result.Ok() {
		t.Fatalf("Expected no errors, got %v", result.Errors)
	}

	tests := []struct {
		line, char int
		expected   string
	}{
		{0, 8, "Definition of constant `N`.\n\nValue `3` (`0x3`)"},
		{1, 1, "Definition of label `loop`.\n\nAddress 0x0 (word)"},
		{1, 11, "Register `r16`. 8-Bit General Purpose Register, usable with immediate instructions"},
		{1, 15, "Constant `N`\n\nEvaluates to `3` (`0x3`)"},
		{2, 9, "Pointer `Z` (`r31:r30`), post-increment"},
		{3, 7, "Reference to label `loop`\n\nEvaluates to `0` (`0x0`)"},
		{1, 6, "**ldi** - Load Immediate. `Rd = K`\n\n```avr\nldi Rd, K\n```\n\nEncoded as `E003` at 0x0\n\nFields: `d=0` `K=3`"},
		{3, 2, "**rjmp** - Relative Jump. `PC = PC + k + 1`\n\n```avr\nrjmp k\n```\n\nEncoded as `CFFD` at 0x2\n\nFields: `k=4093`"},
	}
	for _, test := range tests {
		hover, ok := result.EvaluateHover(assembler.TextPosition{Line: test.line, Char: test.char})
		if !ok {
			t.Errorf("Expected a hover at %d:%d", test.line, test.char)
			continue
		}
		if hover != test.expected {
			t.Errorf("Expected hover at %d:%d to be %q, got %q", test.line, test.char, test.expected, hover)
		}
	}

	if _, ok := result.EvaluateHover(assembler.TextPosition{Line: 3, Char: 0}); ok {
		t.Errorf("Expected no hover over whitespace")
	}
}

func validateResult(t *testing.T, lines []assembler.EncodedLine, err error, expected []uint32) {
	t.Helper()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(lines) != len(expected) {
		t.Fatalf("Expected %d instructions, got %d", len(expected), len(lines))
	}
	for i, line := range lines {
		if line.Word != expected[i] {
			t.Errorf("Expected instruction %d (line %d) to be 0x%04X, got 0x%04X", i, line.Line, expected[i], line.Word)
		}
	}
}

func validateDiagnostics(t *testing.T, diagnostics []assembler.Diagnostic, expected []assembler.Diagnostic) {
	t.Helper()
	if len(diagnostics) != len(expected) {
		t.Fatalf("Expected %d diagnostics, got %d (%v)", len(expected), len(diagnostics), diagnostics)
	}

	for i, diagnostic := range diagnostics {
		if diagnostic.Severity != expected[i].Severity {
			t.Errorf("Expected diagnostic %d to have severity %d, got %d", i, expected[i].Severity, diagnostic.Severity)
		}
		if diagnostic.Range != expected[i].Range {
			t.Errorf("Expected diagnostic %d to span %v, got %v", i, expected[i].Range, diagnostic.Range)
		}
		if diagnostic.Message != expected[i].Message {
			t.Errorf("Expected diagnostic %d to be \"%s\", got \"%s\"", i, expected[i].Message, diagnostic.Message)
		}
	}
}
