package assembler

import (
	"strconv"
)

// encode packs ops into the variant's template. address is the word address of the
// instruction, needed for PC-relative fields.
func (v *Variant) encode(ops []ResolvedOperand, address uint32) (uint32, error) {
	word := v.Opcode
	for i := range v.Operands {
		field := &v.Operands[i]
		value, err := field.fieldValue(ops[i], address)
		if err != nil {
			return 0, err
		}
		for _, bf := range field.Fields {
			if bf.Width < 32 && value >= 1<<bf.Width {
				return 0, Errors.OperandOverflow(ops[i].Text, "does not fit in "+strconv.Itoa(int(bf.Width))+" bits")
			}
			word = packField(word, bf, value)
		}
	}
	return word, nil
}

// fieldValue applies the operand's encoding rule and returns the raw field value.
func (f *OperandField) fieldValue(op ResolvedOperand, address uint32) (uint32, error) {
	value := op.Value
	switch f.rule.kind {
	case ruleOffset:
		if value < f.rule.base {
			return 0, Errors.OperandOverflow(op.Text, "must be at least "+registerOrValue(f, f.rule.base))
		}
		value -= f.rule.base
		if value%f.rule.step != 0 {
			return 0, Errors.OperandOverflow(op.Text, "must be an even register")
		}
		value /= f.rule.step
	case ruleRelative:
		width := f.Fields[0].Width
		offset := int64(value) - int64(address) - 1
		limit := int64(1) << (width - 1)
		if offset < -limit || offset >= limit {
			return 0, Errors.OperandOverflow(op.Text, "branch target is "+strconv.FormatInt(offset, 10)+" words away, limit is ±"+strconv.FormatInt(limit, 10))
		}
		value = uint32(offset) & fieldMask(width)
	case ruleComplement:
		width := f.Fields[0].Width
		if value > fieldMask(width) {
			return 0, Errors.OperandOverflow(op.Text, "does not fit in "+strconv.Itoa(int(width))+" bits")
		}
		value = ^value & fieldMask(width)
	}
	return value, nil
}

func registerOrValue(f *OperandField, v uint32) string {
	if f.Class == ClassRegister {
		return "r" + strconv.Itoa(int(v))
	}
	return strconv.Itoa(int(v))
}

func fieldMask(width uint) uint32 {
	if width >= 32 {
		return 0xFFFFFFFF
	}
	return 1<<width - 1
}

// packField distributes value over the field's segments, most significant bits first.
func packField(word uint32, field BitField, value uint32) uint32 {
	remaining := field.Width
	for _, seg := range field.Segments {
		remaining -= seg.Width
		bits := (value >> remaining) & fieldMask(seg.Width)
		word |= bits << seg.Offset
	}
	return word
}

// unpackField is the inverse of packField.
func unpackField(word uint32, field BitField) uint32 {
	value := uint32(0)
	for _, seg := range field.Segments {
		value = value<<seg.Width | (word>>seg.Offset)&fieldMask(seg.Width)
	}
	return value
}

// Matches reports whether word is an encoding of this variant.
func (v *Variant) Matches(word uint32) bool {
	mask := uint32(0)
	for _, op := range v.Operands {
		for _, bf := range op.Fields {
			for _, seg := range bf.Segments {
				mask |= fieldMask(seg.Width) << seg.Offset
			}
		}
	}
	return word&^mask == v.Opcode
}

// FieldValues decodes the raw value of every placeholder field of word, keyed by letter.
func (v *Variant) FieldValues(word uint32) map[byte]uint32 {
	out := make(map[byte]uint32)
	for _, op := range v.Operands {
		for _, bf := range op.Fields {
			out[bf.Name] = unpackField(word, bf)
		}
	}
	return out
}
