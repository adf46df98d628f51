package assembler

import (
	"strings"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// Encode runs pass 2 and returns the object code for every instruction line. It stops at
// the first failing line in source order.
func (s *Session) Encode() ([]EncodedLine, error) {
	lines, errs := s.encodeAll()
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return lines, nil
}

// EncodeListing runs pass 2 over every line and returns the lines that encoded together
// with every line error, both in source order.
func (s *Session) EncodeListing() ([]EncodedLine, []*AssemblyError) {
	return s.encodeAll()
}

func (s *Session) encodeAll() ([]EncodedLine, []*AssemblyError) {
	glog.V(1).Infof("Beginning pass %d", 2)
	n := len(s.Source.Lines)
	results := make([]EncodedLine, n)
	failures := make([]*AssemblyError, n)

	if s.config.Workers > 1 {
		// lines only read the finished symbol table, so they can be encoded in any order
		var g errgroup.Group
		g.SetLimit(s.config.Workers)
		for i := range s.Source.Lines {
			if s.layout[i].instruction == nil {
				continue
			}
			i := i
			g.Go(func() error {
				results[i], failures[i] = s.encodeLine(i)
				return nil
			})
		}
		g.Wait()
	} else {
		for i := range s.Source.Lines {
			if s.layout[i].instruction != nil {
				results[i], failures[i] = s.encodeLine(i)
			}
		}
	}

	var lines []EncodedLine
	var errs []*AssemblyError
	for i := 0; i < n; i++ {
		if s.layout[i].instruction == nil {
			continue
		}
		if failures[i] != nil {
			errs = append(errs, failures[i])
			continue
		}
		lines = append(lines, results[i])
	}
	return lines, errs
}

// encodeLine resolves and packs the instruction on line index i.
func (s *Session) encodeLine(i int) (EncodedLine, *AssemblyError) {
	line := s.Source.Lines[i]
	layout := s.layout[i]
	glog.V(2).Infof("%d: %s", line.Number, line.Text)

	_, rest := splitLabels(Tokenize(line.Code))
	mnemonic := rest[0]
	ins, ok := LookupInstruction(mnemonic.Text)
	if !ok {
		return EncodedLine{}, Errors.UnknownMnemonic(mnemonic.Text).at(line, mnemonic.Column)
	}

	ops := make([]ResolvedOperand, 0, len(rest)-1)
	for _, tok := range rest[1:] {
		op, err := s.resolveOperand(tok)
		if err != nil {
			return EncodedLine{}, err.at(line, tok.Column)
		}
		ops = append(ops, op)
	}

	variant, err := ins.selectVariant(ops)
	if err != nil {
		return EncodedLine{}, err.(*AssemblyError).at(line, mnemonic.Column)
	}
	word, err := variant.encode(ops, layout.address)
	if err != nil {
		asmErr := err.(*AssemblyError)
		column := mnemonic.Column
		for _, op := range ops {
			if op.Text == asmErr.Subject {
				column = op.Column
				break
			}
		}
		return EncodedLine{}, asmErr.at(line, column)
	}

	return EncodedLine{
		Line:     line.Number,
		Address:  layout.address,
		Word:     word,
		Width:    ins.Width,
		Mnemonic: ins.Mnemonic,
		Operands: ops,
	}, nil
}

// resolveOperand classifies one operand token and resolves it against the symbol table.
func (s *Session) resolveOperand(tok Token) (ResolvedOperand, *AssemblyError) {
	text := tok.Text
	op := ResolvedOperand{Text: text, Column: tok.Column}

	switch {
	case looksLikeRegister(text):
		n, err := ParseRegister(text)
		if err != nil {
			return op, err.(*AssemblyError)
		}
		op.Kind, op.Value = OperandRegister, n
		return op, nil
	case isDigit(text[0]):
		v, err := ParseLiteral(text)
		if err != nil {
			return op, err.(*AssemblyError)
		}
		op.Kind, op.Value = OperandImmediate, v
		return op, nil
	}

	if p, mode, displacement, ok := parsePointer(text); ok {
		op.Kind, op.Pointer, op.Mode = OperandPointer, p, mode
		if mode == PointerDisplacement {
			if displacement == "" || !isDigit(displacement[0]) {
				if ok, reason := checkValidSymbolName(displacement); !ok {
					return op, Errors.MalformedOperand(displacement, "displacement must be a literal or a symbol: "+reason)
				}
			}
			q, err := s.resolveValue(displacement)
			if err != nil {
				return op, err
			}
			op.Value, op.Symbol = q.Value, q.Symbol
		}
		return op, nil
	}

	v, err := s.resolveValue(text)
	if err != nil {
		return op, err
	}
	v.Text, v.Column = op.Text, op.Column
	return v, nil
}

// resolveValue resolves a literal or a symbol name.
func (s *Session) resolveValue(text string) (ResolvedOperand, *AssemblyError) {
	if text == "" {
		return ResolvedOperand{}, Errors.MalformedOperand(text, "empty operand")
	}
	if isDigit(text[0]) {
		v, err := ParseLiteral(text)
		if err != nil {
			return ResolvedOperand{}, err.(*AssemblyError)
		}
		return ResolvedOperand{Kind: OperandImmediate, Value: v, Text: text}, nil
	}
	sym, ok := s.Symbols.Lookup(text)
	if !ok {
		return ResolvedOperand{}, Errors.UndefinedSymbol(text)
	}
	kind := OperandImmediate
	if sym.Kind == SymbolLabel {
		kind = OperandAddress
	}
	return ResolvedOperand{Kind: kind, Value: sym.Value, Text: text, Symbol: sym.Name}, nil
}

// parsePointer recognises X, Y, Z with post-increment, pre-decrement and displacement
// forms. The displacement text is returned unresolved.
func parsePointer(text string) (PointerRegister, PointerMode, string, bool) {
	pointerOf := func(c byte) PointerRegister {
		switch c {
		case 'X', 'x':
			return PointerX
		case 'Y', 'y':
			return PointerY
		case 'Z', 'z':
			return PointerZ
		}
		return 0
	}

	switch {
	case len(text) == 1:
		if p := pointerOf(text[0]); p != 0 {
			return p, PointerPlain, "", true
		}
	case len(text) == 2 && text[0] == '-':
		if p := pointerOf(text[1]); p != 0 {
			return p, PointerPreDecrement, "", true
		}
	case len(text) == 2 && text[1] == '+':
		if p := pointerOf(text[0]); p != 0 {
			return p, PointerPostIncrement, "", true
		}
	case len(text) > 2 && text[1] == '+':
		if p := pointerOf(text[0]); p != 0 {
			return p, PointerDisplacement, strings.TrimSpace(text[2:]), true
		}
	}
	return 0, 0, "", false
}
