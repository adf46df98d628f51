package assembler

import (
	"math"

	"github.com/golang/glog"
)

// lineLayout is what pass 1 learned about one source line.
type lineLayout struct {
	address     uint32
	instruction *Instruction // nil for lines without an instruction
}

// Session is the state of assembling one compilation unit.
type Session struct {
	Symbols *SymbolTable
	Counter uint32 // location counter, in words
	Source  *ProcessedSource

	config            AssemblerConfig
	layout            []lineLayout
	unknownDirectives []Token
	unknownLines      []int
}

func NewSession(config AssemblerConfig) *Session {
	return &Session{Symbols: NewSymbolTable(), config: config}
}

// Preprocess runs the preprocessor on source and keeps the result for the passes.
func (s *Session) Preprocess(source string) error {
	processed, err := Preprocess(source, s.Symbols)
	if err != nil {
		return err
	}
	s.Source = processed
	return nil
}

// Pass1 binds every label to its address and records the address of every line.
func (s *Session) Pass1() error {
	glog.V(1).Infof("Beginning pass %d", 1)
	s.Counter = 0
	s.layout = make([]lineLayout, len(s.Source.Lines))
	s.unknownDirectives = s.unknownDirectives[:0]
	s.unknownLines = s.unknownLines[:0]

	for i, line := range s.Source.Lines {
		tokens := Tokenize(line.Code)
		glog.V(2).Infof("%3d (%4d): %s", line.Number, s.Counter, line.Text)
		s.layout[i].address = s.Counter

		if len(tokens) == 0 || tokens[0].Text[0] == '#' {
			continue
		}

		labels, rest := splitLabels(tokens)
		for j, label := range labels {
			if err := s.defineLabel(line, j, label); err != nil {
				return err
			}
		}
		if len(rest) == 0 {
			continue
		}

		if rest[0].Text[0] == '.' {
			known, err := s.applyDirective(line, rest)
			if err != nil {
				return err
			}
			if !known {
				s.unknownDirectives = append(s.unknownDirectives, rest[0])
				s.unknownLines = append(s.unknownLines, line.Number)
			}
			continue
		}

		ins, ok := LookupInstruction(rest[0].Text)
		if !ok {
			return Errors.UnknownMnemonic(rest[0].Text).at(line, rest[0].Column)
		}
		if s.Counter > math.MaxUint32-ins.Words() {
			return Errors.OperandOverflow(rest[0].Text, "location counter passes the end of the address space").at(line, rest[0].Column)
		}
		s.layout[i].instruction = ins
		s.Counter += ins.Words()
	}
	return nil
}

// defineLabel binds label, the index-th label on line. Labels folded in from label-only
// lines are reported against the line they were written on.
func (s *Session) defineLabel(line SourceLine, index int, label Token) error {
	name := label.Text[:len(label.Text)-1]
	at, column := line, label.Column
	if index < len(line.FoldedFrom) {
		at, _ = s.Source.Line(line.FoldedFrom[index])
		column = 0
		if own := Tokenize(at.Text); len(own) > 0 {
			column = own[0].Column
		}
	}

	if ok, reason := checkValidSymbolName(name); !ok {
		return Errors.InvalidSymbolName(name, reason).at(at, column)
	}
	if err := s.Symbols.Define(Symbol{Name: name, Value: s.Counter, Kind: SymbolLabel, Line: at.Number}); err != nil {
		return err.(*AssemblyError).at(at, column)
	}
	return nil
}
