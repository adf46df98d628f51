package assembler

import (
	"fmt"
	"strings"
)

type OperandClass int

const (
	ClassRegister OperandClass = iota
	ClassImmediate
	ClassAddress
	ClassPointer
	ClassDisplacement
)

type ruleKind int

const (
	rulePlain      ruleKind = iota
	ruleOffset              // (value - base) / step
	ruleRelative            // target - (address + 1), signed
	ruleComplement          // ^value within the field
)

type encodingRule struct {
	kind ruleKind
	base uint32
	step uint32
}

// BitSegment is a contiguous run of placeholder bits, Offset counted from bit 0.
type BitSegment struct {
	Offset uint
	Width  uint
}

// BitField is every run of one placeholder letter, most significant run first.
type BitField struct {
	Name     byte
	Segments []BitSegment
	Width    uint
}

// OperandField describes one operand of a variant and where its value is packed.
type OperandField struct {
	Class   OperandClass
	Letters string // placeholder letters receiving the value
	Pointer PointerRegister
	Mode    PointerMode
	Fields  []BitField
	rule    encodingRule
}

type Variant struct {
	Syntax   string
	Pattern  string
	Opcode   uint32 // template with placeholder bits cleared
	Operands []OperandField
}

// Instruction is one mnemonic of the catalog with its addressing-mode variants.
type Instruction struct {
	Mnemonic string
	Summary  string
	Width    int // 16 or 32
	Variants []*Variant
}

// Words is the instruction length in location counter units.
func (ins *Instruction) Words() uint32 {
	return uint32(ins.Width / 16)
}

// Syntax lists every accepted form.
func (ins *Instruction) Syntax() string {
	forms := make([]string, len(ins.Variants))
	for i, v := range ins.Variants {
		forms[i] = v.Syntax
	}
	return strings.Join(forms, " | ")
}

func (ins *Instruction) minOperands() int {
	min := -1
	for _, v := range ins.Variants {
		if min < 0 || len(v.Operands) < min {
			min = len(v.Operands)
		}
	}
	return min
}

// selectVariant picks the variant whose operand classes match ops. The catalog is
// checked at start-up so at most one can match.
func (ins *Instruction) selectVariant(ops []ResolvedOperand) (*Variant, error) {
	for _, v := range ins.Variants {
		if v.accepts(ops) {
			return v, nil
		}
	}
	if len(ops) < ins.minOperands() {
		return nil, Errors.MissingOperand(ins.Mnemonic, "expected "+ins.Syntax())
	}
	return nil, Errors.NoMatchingVariant(ins.Mnemonic, ins.Syntax())
}

func (v *Variant) accepts(ops []ResolvedOperand) bool {
	if len(ops) != len(v.Operands) {
		return false
	}
	for i, field := range v.Operands {
		if !field.accepts(ops[i]) {
			return false
		}
	}
	return true
}

func (f *OperandField) accepts(op ResolvedOperand) bool {
	switch f.Class {
	case ClassRegister:
		return op.Kind == OperandRegister
	case ClassImmediate, ClassAddress:
		return op.Kind == OperandImmediate || op.Kind == OperandAddress
	case ClassPointer:
		return op.Kind == OperandPointer && op.Pointer == f.Pointer && op.Mode == f.Mode
	case ClassDisplacement:
		return op.Kind == OperandPointer && op.Pointer == f.Pointer && op.Mode == PointerDisplacement
	}
	return false
}

// shape is the part of an operand field that takes part in variant selection.
func (f *OperandField) shape() string {
	switch f.Class {
	case ClassRegister:
		return "reg"
	case ClassImmediate, ClassAddress:
		return "value"
	case ClassPointer:
		return fmt.Sprintf("ptr%d/%d", f.Pointer, f.Mode)
	}
	return fmt.Sprintf("disp%d", f.Pointer)
}

func (f *OperandField) syntax() string {
	switch f.Class {
	case ClassRegister:
		return "R" + f.Letters[:1]
	case ClassPointer:
		switch f.Mode {
		case PointerPostIncrement:
			return f.Pointer.String() + "+"
		case PointerPreDecrement:
			return "-" + f.Pointer.String()
		}
		return f.Pointer.String()
	case ClassDisplacement:
		return f.Pointer.String() + "+" + f.Letters
	}
	return f.Letters
}

var instructionTable = mustBuildTable(instructionSpecs)

// LookupInstruction finds a mnemonic case-insensitively.
func LookupInstruction(mnemonic string) (*Instruction, bool) {
	ins, ok := instructionTable[strings.ToLower(mnemonic)]
	return ins, ok
}

// Mnemonics returns the number of mnemonics in the catalog.
func Mnemonics() int {
	return len(instructionTable)
}

func mustBuildTable(specs []instructionSpec) map[string]*Instruction {
	table := make(map[string]*Instruction, len(specs))
	for _, spec := range specs {
		if _, dup := table[spec.name]; dup {
			panic("assembler: mnemonic listed twice: " + spec.name)
		}
		ins := &Instruction{Mnemonic: spec.name, Summary: spec.summary}
		shapes := make(map[string]bool)
		for _, vs := range spec.variants {
			v, width, err := buildVariant(spec.name, vs)
			if err != nil {
				panic("assembler: " + err.Error())
			}
			if ins.Width == 0 {
				ins.Width = width
			} else if ins.Width != width {
				panic("assembler: variants of " + spec.name + " differ in width")
			}
			sig := make([]string, len(v.Operands))
			for i := range v.Operands {
				sig[i] = v.Operands[i].shape()
			}
			key := strings.Join(sig, ",")
			if shapes[key] {
				panic("assembler: ambiguous variants of " + spec.name + " (" + key + ")")
			}
			shapes[key] = true
			ins.Variants = append(ins.Variants, v)
		}
		table[spec.name] = ins
	}
	return table
}

func buildVariant(mnemonic string, vs variantSpec) (*Variant, int, error) {
	bits := strings.ReplaceAll(vs.pattern, " ", "")
	width := len(bits)
	if width != 16 && width != 32 {
		return nil, 0, fmt.Errorf("%s: pattern %q is %d bits", mnemonic, vs.pattern, width)
	}

	opcode := uint32(0)
	fields := make(map[byte]*BitField)
	for i := 0; i < width; i++ {
		c := bits[i]
		offset := uint(width - 1 - i)
		switch c {
		case '0':
		case '1':
			opcode |= 1 << offset
		default:
			f, ok := fields[c]
			if !ok {
				f = &BitField{Name: c}
				fields[c] = f
			}
			// extend the current run when this bit continues it
			if n := len(f.Segments); n > 0 && f.Segments[n-1].Offset == offset+1 {
				f.Segments[n-1].Offset = offset
				f.Segments[n-1].Width++
			} else {
				f.Segments = append(f.Segments, BitSegment{Offset: offset, Width: 1})
			}
			f.Width++
		}
	}

	v := &Variant{Pattern: vs.pattern, Opcode: opcode}
	used := make(map[byte]bool)
	forms := make([]string, 0, len(vs.operands))
	for _, field := range vs.operands {
		for j := 0; j < len(field.Letters); j++ {
			f, ok := fields[field.Letters[j]]
			if !ok {
				return nil, 0, fmt.Errorf("%s: pattern %q has no field %c", mnemonic, vs.pattern, field.Letters[j])
			}
			field.Fields = append(field.Fields, *f)
			used[field.Letters[j]] = true
		}
		v.Operands = append(v.Operands, field)
		forms = append(forms, field.syntax())
	}
	for c := range fields {
		if !used[c] {
			return nil, 0, fmt.Errorf("%s: field %c of %q is never filled", mnemonic, c, vs.pattern)
		}
	}

	v.Syntax = mnemonic
	if len(forms) > 0 {
		v.Syntax += " " + strings.Join(forms, ", ")
	}
	return v, width, nil
}
