package assembler

import (
	"fmt"
	"strings"
)

// EvaluateHover returns markdown describing the token under position, and false when
// there is nothing to describe. position uses 0-based lines.
func (a *AssembledResult) EvaluateHover(position TextPosition) (string, bool) {
	if a.source == nil {
		return "", false
	}
	line, ok := a.source.Line(position.Line + 1)
	if !ok {
		return "", false
	}

	tokens := Tokenize(line.Text)
	index := -1
	for i, tok := range tokens {
		if position.Char >= tok.Column && position.Char < tok.Column+len(tok.Text) {
			index = i
			break
		}
	}
	if index < 0 {
		return "", false
	}
	tok := tokens[index]

	if tokens[0].Text[0] == '#' {
		// only the name of a #DEFINE has anything to show
		if index == 1 && strings.EqualFold(tokens[0].Text, "#define") {
			if sym, ok := a.Symbols.Lookup(tok.Text); ok && sym.Kind == SymbolConstant {
				return fmt.Sprintf(hoverInfoFormats.constantDefinition, sym.Name, sym.Value, sym.Value), true
			}
		}
		return "", false
	}

	if isLabelToken(tok) {
		sym, ok := a.Symbols.Lookup(tok.Text[:len(tok.Text)-1])
		if !ok || sym.Kind != SymbolLabel {
			return "", false
		}
		return fmt.Sprintf(hoverInfoFormats.labelDefinition, sym.Name, sym.Value), true
	}

	_, rest := splitLabels(tokens)
	if len(rest) == 0 || rest[0].Text[0] == '.' {
		return "", false
	}
	if tok.Column == rest[0].Column {
		return a.instructionHover(line.Number, tok.Text)
	}
	return a.operandHover(tok.Text)
}

func (a *AssembledResult) instructionHover(lineNumber int, mnemonic string) (string, bool) {
	ins, ok := LookupInstruction(mnemonic)
	if !ok {
		return "", false
	}
	text := fmt.Sprintf(hoverInfoFormats.instruction, ins.Mnemonic, ins.Summary, strings.ReplaceAll(ins.Syntax(), " | ", "\n"))

	for _, l := range a.Lines {
		if l.Line != lineNumber {
			continue
		}
		words := make([]string, 0, 2)
		for _, w := range l.Words() {
			words = append(words, fmt.Sprintf("%04X", w))
		}
		text += fmt.Sprintf(hoverInfoFormats.encodedInstruction, strings.Join(words, " "), l.Address)
		if fields := decodeFields(ins, l.Word); fields != "" {
			text += fmt.Sprintf(hoverInfoFormats.encodedFields, fields)
		}
		break
	}
	return text, true
}

// decodeFields lists the raw placeholder values of word in operand order.
func decodeFields(ins *Instruction, word uint32) string {
	for _, v := range ins.Variants {
		if !v.Matches(word) {
			continue
		}
		values := v.FieldValues(word)
		fields := make([]string, 0, len(values))
		for _, op := range v.Operands {
			for _, bf := range op.Fields {
				fields = append(fields, fmt.Sprintf("`%c=%d`", bf.Name, values[bf.Name]))
			}
		}
		return strings.Join(fields, " ")
	}
	return ""
}

func (a *AssembledResult) operandHover(text string) (string, bool) {
	switch {
	case looksLikeRegister(text):
		n, err := ParseRegister(text)
		if err != nil {
			return "", false
		}
		return getHoverInfoForRegister(n), true
	case isDigit(text[0]):
		v, err := ParseLiteral(text)
		if err != nil {
			return "", false
		}
		return fmt.Sprintf(hoverInfoFormats.integerLiteral, v, v, FormatLiteral(v, 2)[2:]), true
	}

	if p, mode, displacement, ok := parsePointer(text); ok {
		low := 26 + 2*uint32(p-PointerX)
		suffix := ""
		switch mode {
		case PointerPostIncrement:
			suffix = ", post-increment"
		case PointerPreDecrement:
			suffix = ", pre-decrement"
		case PointerDisplacement:
			suffix = ", displacement `" + displacement + "`"
		}
		return fmt.Sprintf(hoverInfoFormats.pointerOperand, p, low+1, low, suffix), true
	}

	sym, ok := a.Symbols.Lookup(text)
	if !ok {
		return "", false
	}
	if sym.Kind == SymbolLabel {
		return fmt.Sprintf(hoverInfoFormats.labelReference, sym.Name, sym.Value, sym.Value), true
	}
	return fmt.Sprintf(hoverInfoFormats.constantReference, sym.Name, sym.Value, sym.Value), true
}

func getHoverInfoForRegister(register uint32) string {
	switch {
	case register >= 26:
		half := "low"
		if register%2 == 1 {
			half = "high"
		}
		pointer := PointerX + PointerRegister((register-26)/2)
		return fmt.Sprintf(hoverInfoFormats.pointerRegister, register, half, pointer)
	case register >= 16:
		return fmt.Sprintf(hoverInfoFormats.upperRegister, register)
	}
	return fmt.Sprintf(hoverInfoFormats.lowRegister, register)
}
