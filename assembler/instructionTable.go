package assembler

// Encodings follow the AVR Instruction Set Manual. Letters in a pattern are placeholder
// fields; everything else is a fixed opcode bit.

type variantSpec struct {
	pattern  string
	operands []OperandField
}

type instructionSpec struct {
	name     string
	summary  string
	variants []variantSpec
}

func reg(letters string) OperandField {
	return OperandField{Class: ClassRegister, Letters: letters}
}

// upperReg accepts r16..r31.
func upperReg(letter string) OperandField {
	return OperandField{Class: ClassRegister, Letters: letter, rule: encodingRule{kind: ruleOffset, base: 16, step: 1}}
}

// pairReg accepts even registers, stored halved.
func pairReg(letter string) OperandField {
	return OperandField{Class: ClassRegister, Letters: letter, rule: encodingRule{kind: ruleOffset, base: 0, step: 2}}
}

// wordReg accepts r24, r26, r28 and r30.
func wordReg(letter string) OperandField {
	return OperandField{Class: ClassRegister, Letters: letter, rule: encodingRule{kind: ruleOffset, base: 24, step: 2}}
}

func imm(letter string) OperandField {
	return OperandField{Class: ClassImmediate, Letters: letter}
}

func notImm(letter string) OperandField {
	return OperandField{Class: ClassImmediate, Letters: letter, rule: encodingRule{kind: ruleComplement}}
}

func addr(letter string) OperandField {
	return OperandField{Class: ClassAddress, Letters: letter}
}

func rel(letter string) OperandField {
	return OperandField{Class: ClassAddress, Letters: letter, rule: encodingRule{kind: ruleRelative}}
}

func ptr(p PointerRegister, mode PointerMode) OperandField {
	return OperandField{Class: ClassPointer, Pointer: p, Mode: mode}
}

func disp(p PointerRegister, letter string) OperandField {
	return OperandField{Class: ClassDisplacement, Pointer: p, Letters: letter}
}

func op(pattern string, operands ...OperandField) variantSpec {
	return variantSpec{pattern: pattern, operands: operands}
}

func one(name, summary, pattern string, operands ...OperandField) instructionSpec {
	return instructionSpec{name: name, summary: summary, variants: []variantSpec{op(pattern, operands...)}}
}

func many(name, summary string, variants ...variantSpec) instructionSpec {
	return instructionSpec{name: name, summary: summary, variants: variants}
}

// branch builds a conditional branch on SREG bit s: set when onSet, clear otherwise.
func branch(name, summary string, onSet bool, s string) instructionSpec {
	prefix := "1111 01kk kkkk k"
	if onSet {
		prefix = "1111 00kk kkkk k"
	}
	return one(name, summary, prefix+s, rel("k"))
}

// flag builds the SREG set/clear aliases of bset/bclr.
func flag(name, summary string, clear bool, s string) instructionSpec {
	pattern := "1001 0100 0" + s + " 1000"
	if clear {
		pattern = "1001 0100 1" + s + " 1000"
	}
	return one(name, summary, pattern)
}

var instructionSpecs = []instructionSpec{
	// Arithmetic and logic
	one("add", "Add without Carry. `Rd = Rd + Rr`", "0000 11rd dddd rrrr", reg("d"), reg("r")),
	one("adc", "Add with Carry. `Rd = Rd + Rr + C`", "0001 11rd dddd rrrr", reg("d"), reg("r")),
	one("adiw", "Add Immediate to Word. `Rd+1:Rd = Rd+1:Rd + K`", "1001 0110 KKdd KKKK", wordReg("d"), imm("K")),
	one("sub", "Subtract without Carry. `Rd = Rd - Rr`", "0001 10rd dddd rrrr", reg("d"), reg("r")),
	one("subi", "Subtract Immediate. `Rd = Rd - K`", "0101 KKKK dddd KKKK", upperReg("d"), imm("K")),
	one("sbc", "Subtract with Carry. `Rd = Rd - Rr - C`", "0000 10rd dddd rrrr", reg("d"), reg("r")),
	one("sbci", "Subtract Immediate with Carry. `Rd = Rd - K - C`", "0100 KKKK dddd KKKK", upperReg("d"), imm("K")),
	one("sbiw", "Subtract Immediate from Word. `Rd+1:Rd = Rd+1:Rd - K`", "1001 0111 KKdd KKKK", wordReg("d"), imm("K")),
	one("and", "Logical AND. `Rd = Rd & Rr`", "0010 00rd dddd rrrr", reg("d"), reg("r")),
	one("andi", "Logical AND with Immediate. `Rd = Rd & K`", "0111 KKKK dddd KKKK", upperReg("d"), imm("K")),
	one("or", "Logical OR. `Rd = Rd | Rr`", "0010 10rd dddd rrrr", reg("d"), reg("r")),
	one("ori", "Logical OR with Immediate. `Rd = Rd | K`", "0110 KKKK dddd KKKK", upperReg("d"), imm("K")),
	one("eor", "Exclusive OR. `Rd = Rd ^ Rr`", "0010 01rd dddd rrrr", reg("d"), reg("r")),
	one("com", "One's Complement. `Rd = 0xFF - Rd`", "1001 010d dddd 0000", reg("d")),
	one("neg", "Two's Complement. `Rd = 0x00 - Rd`", "1001 010d dddd 0001", reg("d")),
	one("sbr", "Set Bits in Register. `Rd = Rd | K`", "0110 KKKK dddd KKKK", upperReg("d"), imm("K")),
	one("cbr", "Clear Bits in Register. `Rd = Rd & (0xFF - K)`", "0111 KKKK dddd KKKK", upperReg("d"), notImm("K")),
	one("inc", "Increment. `Rd = Rd + 1`", "1001 010d dddd 0011", reg("d")),
	one("dec", "Decrement. `Rd = Rd - 1`", "1001 010d dddd 1010", reg("d")),
	one("tst", "Test for Zero or Minus. `Rd = Rd & Rd`", "0010 00rd dddd rrrr", reg("dr")),
	one("clr", "Clear Register. `Rd = Rd ^ Rd`", "0010 01rd dddd rrrr", reg("dr")),
	one("ser", "Set Register. `Rd = 0xFF`", "1110 1111 dddd 1111", upperReg("d")),
	one("mul", "Multiply Unsigned. `R1:R0 = Rd * Rr`", "1001 11rd dddd rrrr", reg("d"), reg("r")),
	one("muls", "Multiply Signed. `R1:R0 = Rd * Rr`", "0000 0010 dddd rrrr", upperReg("d"), upperReg("r")),
	one("mulsu", "Multiply Signed with Unsigned. `R1:R0 = Rd * Rr`", "0000 0011 0ddd 0rrr", upperReg("d"), upperReg("r")),
	one("fmul", "Fractional Multiply Unsigned. `R1:R0 = (Rd * Rr) << 1`", "0000 0011 0ddd 1rrr", upperReg("d"), upperReg("r")),
	one("fmuls", "Fractional Multiply Signed. `R1:R0 = (Rd * Rr) << 1`", "0000 0011 1ddd 0rrr", upperReg("d"), upperReg("r")),
	one("fmulsu", "Fractional Multiply Signed with Unsigned. `R1:R0 = (Rd * Rr) << 1`", "0000 0011 1ddd 1rrr", upperReg("d"), upperReg("r")),
	one("des", "Data Encryption Standard round K", "1001 0100 KKKK 1011", imm("K")),

	// Branches
	one("rjmp", "Relative Jump. `PC = PC + k + 1`", "1100 kkkk kkkk kkkk", rel("k")),
	one("ijmp", "Indirect Jump to (Z). `PC = Z`", "1001 0100 0000 1001"),
	one("eijmp", "Extended Indirect Jump to (Z). `PC = EIND:Z`", "1001 0100 0001 1001"),
	one("jmp", "Jump. `PC = k`", "1001 010k kkkk 110k kkkk kkkk kkkk kkkk", addr("k")),
	one("rcall", "Relative Call to Subroutine. `PC = PC + k + 1`", "1101 kkkk kkkk kkkk", rel("k")),
	one("icall", "Indirect Call to (Z). `PC = Z`", "1001 0101 0000 1001"),
	one("eicall", "Extended Indirect Call to (Z). `PC = EIND:Z`", "1001 0101 0001 1001"),
	one("call", "Call Subroutine. `PC = k`", "1001 010k kkkk 111k kkkk kkkk kkkk kkkk", addr("k")),
	one("ret", "Return from Subroutine", "1001 0101 0000 1000"),
	one("reti", "Return from Interrupt", "1001 0101 0001 1000"),
	one("cpse", "Compare, Skip if Equal", "0001 00rd dddd rrrr", reg("d"), reg("r")),
	one("cp", "Compare. `Rd - Rr`", "0001 01rd dddd rrrr", reg("d"), reg("r")),
	one("cpc", "Compare with Carry. `Rd - Rr - C`", "0000 01rd dddd rrrr", reg("d"), reg("r")),
	one("cpi", "Compare with Immediate. `Rd - K`", "0011 KKKK dddd KKKK", upperReg("d"), imm("K")),
	one("sbrc", "Skip if Bit in Register is Cleared", "1111 110r rrrr 0bbb", reg("r"), imm("b")),
	one("sbrs", "Skip if Bit in Register is Set", "1111 111r rrrr 0bbb", reg("r"), imm("b")),
	one("sbic", "Skip if Bit in I/O Register is Cleared", "1001 1001 AAAA Abbb", imm("A"), imm("b")),
	one("sbis", "Skip if Bit in I/O Register is Set", "1001 1011 AAAA Abbb", imm("A"), imm("b")),
	one("brbs", "Branch if Status Flag s is Set", "1111 00kk kkkk ksss", imm("s"), rel("k")),
	one("brbc", "Branch if Status Flag s is Cleared", "1111 01kk kkkk ksss", imm("s"), rel("k")),
	branch("breq", "Branch if Equal (Z set)", true, "001"),
	branch("brne", "Branch if Not Equal (Z clear)", false, "001"),
	branch("brcs", "Branch if Carry Set", true, "000"),
	branch("brcc", "Branch if Carry Cleared", false, "000"),
	branch("brsh", "Branch if Same or Higher (C clear)", false, "000"),
	branch("brlo", "Branch if Lower (C set)", true, "000"),
	branch("brmi", "Branch if Minus (N set)", true, "010"),
	branch("brpl", "Branch if Plus (N clear)", false, "010"),
	branch("brge", "Branch if Greater or Equal, Signed (S clear)", false, "100"),
	branch("brlt", "Branch if Less Than, Signed (S set)", true, "100"),
	branch("brhs", "Branch if Half Carry Flag Set", true, "101"),
	branch("brhc", "Branch if Half Carry Flag Cleared", false, "101"),
	branch("brts", "Branch if T Flag Set", true, "110"),
	branch("brtc", "Branch if T Flag Cleared", false, "110"),
	branch("brvs", "Branch if Overflow Flag is Set", true, "011"),
	branch("brvc", "Branch if Overflow Flag is Cleared", false, "011"),
	branch("brie", "Branch if Global Interrupt is Enabled", true, "111"),
	branch("brid", "Branch if Global Interrupt is Disabled", false, "111"),

	// Data transfer
	one("mov", "Copy Register. `Rd = Rr`", "0010 11rd dddd rrrr", reg("d"), reg("r")),
	one("movw", "Copy Register Word. `Rd+1:Rd = Rr+1:Rr`", "0000 0001 dddd rrrr", pairReg("d"), pairReg("r")),
	one("ldi", "Load Immediate. `Rd = K`", "1110 KKKK dddd KKKK", upperReg("d"), imm("K")),
	one("lds", "Load Direct from Data Space. `Rd = (k)`", "1001 000d dddd 0000 kkkk kkkk kkkk kkkk", reg("d"), addr("k")),
	many("ld", "Load Indirect from Data Space. `Rd = (ptr)`",
		op("1001 000d dddd 1100", reg("d"), ptr(PointerX, PointerPlain)),
		op("1001 000d dddd 1101", reg("d"), ptr(PointerX, PointerPostIncrement)),
		op("1001 000d dddd 1110", reg("d"), ptr(PointerX, PointerPreDecrement)),
		op("1000 000d dddd 1000", reg("d"), ptr(PointerY, PointerPlain)),
		op("1001 000d dddd 1001", reg("d"), ptr(PointerY, PointerPostIncrement)),
		op("1001 000d dddd 1010", reg("d"), ptr(PointerY, PointerPreDecrement)),
		op("1000 000d dddd 0000", reg("d"), ptr(PointerZ, PointerPlain)),
		op("1001 000d dddd 0001", reg("d"), ptr(PointerZ, PointerPostIncrement)),
		op("1001 000d dddd 0010", reg("d"), ptr(PointerZ, PointerPreDecrement)),
	),
	many("ldd", "Load Indirect with Displacement. `Rd = (ptr + q)`",
		op("10q0 qq0d dddd 1qqq", reg("d"), disp(PointerY, "q")),
		op("10q0 qq0d dddd 0qqq", reg("d"), disp(PointerZ, "q")),
	),
	one("sts", "Store Direct to Data Space. `(k) = Rr`", "1001 001r rrrr 0000 kkkk kkkk kkkk kkkk", addr("k"), reg("r")),
	many("st", "Store Indirect to Data Space. `(ptr) = Rr`",
		op("1001 001r rrrr 1100", ptr(PointerX, PointerPlain), reg("r")),
		op("1001 001r rrrr 1101", ptr(PointerX, PointerPostIncrement), reg("r")),
		op("1001 001r rrrr 1110", ptr(PointerX, PointerPreDecrement), reg("r")),
		op("1000 001r rrrr 1000", ptr(PointerY, PointerPlain), reg("r")),
		op("1001 001r rrrr 1001", ptr(PointerY, PointerPostIncrement), reg("r")),
		op("1001 001r rrrr 1010", ptr(PointerY, PointerPreDecrement), reg("r")),
		op("1000 001r rrrr 0000", ptr(PointerZ, PointerPlain), reg("r")),
		op("1001 001r rrrr 0001", ptr(PointerZ, PointerPostIncrement), reg("r")),
		op("1001 001r rrrr 0010", ptr(PointerZ, PointerPreDecrement), reg("r")),
	),
	many("std", "Store Indirect with Displacement. `(ptr + q) = Rr`",
		op("10q0 qq1r rrrr 1qqq", disp(PointerY, "q"), reg("r")),
		op("10q0 qq1r rrrr 0qqq", disp(PointerZ, "q"), reg("r")),
	),
	many("lpm", "Load Program Memory. `Rd = (Z)`",
		op("1001 0101 1100 1000"),
		op("1001 000d dddd 0100", reg("d"), ptr(PointerZ, PointerPlain)),
		op("1001 000d dddd 0101", reg("d"), ptr(PointerZ, PointerPostIncrement)),
	),
	many("elpm", "Extended Load Program Memory. `Rd = (RAMPZ:Z)`",
		op("1001 0101 1101 1000"),
		op("1001 000d dddd 0110", reg("d"), ptr(PointerZ, PointerPlain)),
		op("1001 000d dddd 0111", reg("d"), ptr(PointerZ, PointerPostIncrement)),
	),
	many("spm", "Store Program Memory. `(Z) = R1:R0`",
		op("1001 0101 1110 1000"),
		op("1001 0101 1111 1000", ptr(PointerZ, PointerPostIncrement)),
	),
	one("in", "In from I/O Location. `Rd = I/O(A)`", "1011 0AAd dddd AAAA", reg("d"), imm("A")),
	one("out", "Out to I/O Location. `I/O(A) = Rr`", "1011 1AAr rrrr AAAA", imm("A"), reg("r")),
	one("push", "Push Register on Stack", "1001 001d dddd 1111", reg("d")),
	one("pop", "Pop Register from Stack", "1001 000d dddd 1111", reg("d")),
	one("xch", "Exchange. `(Z) <-> Rd`", "1001 001d dddd 0100", ptr(PointerZ, PointerPlain), reg("d")),
	one("las", "Load and Set. `(Z) = Rd | (Z)`", "1001 001d dddd 0101", ptr(PointerZ, PointerPlain), reg("d")),
	one("lac", "Load and Clear. `(Z) = (0xFF - Rd) & (Z)`", "1001 001d dddd 0110", ptr(PointerZ, PointerPlain), reg("d")),
	one("lat", "Load and Toggle. `(Z) = Rd ^ (Z)`", "1001 001d dddd 0111", ptr(PointerZ, PointerPlain), reg("d")),

	// Bit and bit-test
	one("lsl", "Logical Shift Left", "0000 11rd dddd rrrr", reg("dr")),
	one("lsr", "Logical Shift Right", "1001 010d dddd 0110", reg("d")),
	one("rol", "Rotate Left through Carry", "0001 11rd dddd rrrr", reg("dr")),
	one("ror", "Rotate Right through Carry", "1001 010d dddd 0111", reg("d")),
	one("asr", "Arithmetic Shift Right", "1001 010d dddd 0101", reg("d")),
	one("swap", "Swap Nibbles", "1001 010d dddd 0010", reg("d")),
	one("sbi", "Set Bit in I/O Register", "1001 1010 AAAA Abbb", imm("A"), imm("b")),
	one("cbi", "Clear Bit in I/O Register", "1001 1000 AAAA Abbb", imm("A"), imm("b")),
	one("bst", "Bit Store from Register to T. `T = Rd(b)`", "1111 101d dddd 0bbb", reg("d"), imm("b")),
	one("bld", "Bit Load from T to Register. `Rd(b) = T`", "1111 100d dddd 0bbb", reg("d"), imm("b")),
	one("bset", "Flag Set. `SREG(s) = 1`", "1001 0100 0sss 1000", imm("s")),
	one("bclr", "Flag Clear. `SREG(s) = 0`", "1001 0100 1sss 1000", imm("s")),
	flag("sec", "Set Carry", false, "000"),
	flag("clc", "Clear Carry", true, "000"),
	flag("sez", "Set Zero Flag", false, "001"),
	flag("clz", "Clear Zero Flag", true, "001"),
	flag("sen", "Set Negative Flag", false, "010"),
	flag("cln", "Clear Negative Flag", true, "010"),
	flag("sev", "Set Overflow Flag", false, "011"),
	flag("clv", "Clear Overflow Flag", true, "011"),
	flag("ses", "Set Signed Flag", false, "100"),
	flag("cls", "Clear Signed Flag", true, "100"),
	flag("seh", "Set Half Carry Flag", false, "101"),
	flag("clh", "Clear Half Carry Flag", true, "101"),
	flag("set", "Set T Flag", false, "110"),
	flag("clt", "Clear T Flag", true, "110"),
	flag("sei", "Global Interrupt Enable", false, "111"),
	flag("cli", "Global Interrupt Disable", true, "111"),

	// MCU control
	one("nop", "No Operation", "0000 0000 0000 0000"),
	one("sleep", "Sleep", "1001 0101 1000 1000"),
	one("wdr", "Watchdog Reset", "1001 0101 1010 1000"),
	one("break", "Break", "1001 0101 1001 1000"),
}
