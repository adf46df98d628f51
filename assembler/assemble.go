package assembler

import (
	"sort"
	"strings"
)

// Assemble runs the preprocessor and both passes over source. It returns the first error
// of the first failing stage; no object code is returned unless every line succeeded.
func Assemble(source string) ([]EncodedLine, error) {
	s := NewSession(GetConfig())
	if err := s.Preprocess(source); err != nil {
		return nil, err
	}
	if err := s.Pass1(); err != nil {
		return nil, err
	}
	return s.Encode()
}

// AssembleListing assembles source on a best-effort basis for editors and listings.
// Preprocessing and pass 1 still stop at their first error, but pass 2 keeps going so
// every bad instruction is reported.
func AssembleListing(source string) (res *AssembledResult) {
	config := GetConfig()
	s := NewSession(config)
	res = &AssembledResult{
		Symbols:       s.Symbols,
		AddressToLine: make(map[uint32]int),
		references:    make(map[string]bool),
	}

	fail := func(err error) *AssembledResult {
		if asmErr, ok := AsAssemblyError(err); ok {
			res.Errors = append(res.Errors, asmErr)
			res.Diagnostics = append(res.Diagnostics, asmErr.Diagnostic())
		}
		return res
	}

	if err := s.Preprocess(source); err != nil {
		res.source = &ProcessedSource{Lines: rawLines(source)}
		return fail(err)
	}
	res.source = s.Source
	if err := s.Pass1(); err != nil {
		return fail(err)
	}

	lines, errs := s.EncodeListing()
	res.Lines = lines
	res.Errors = errs
	for _, err := range errs {
		res.Diagnostics = append(res.Diagnostics, err.Diagnostic())
	}
	for _, l := range lines {
		res.AddressToLine[l.Address] = l.Line
		for _, op := range l.Operands {
			if op.Symbol != "" {
				res.references[op.Symbol] = true
			}
		}
	}

	if config.ReportUnknownDirectives {
		for i, tok := range s.unknownDirectives {
			line := s.unknownLines[i] - 1
			column := tok.Column
			if src, ok := s.Source.Line(s.unknownLines[i]); ok && len(src.FoldedFrom) > 0 {
				column -= len(src.Code) - len(src.Text)
			}
			res.Diagnostics = append(res.Diagnostics, Warnings.UnknownDirective(tok.Text, TextRange{
				Start: TextPosition{Line: line, Char: column},
				End:   TextPosition{Line: line, Char: column + len(tok.Text)},
			}))
		}
	}

	// a label that failed to encode may still be referenced, so only warn on clean input
	if config.ReportUnusedLabels && len(errs) == 0 {
		for _, sym := range s.Symbols.Sorted() {
			if sym.Kind != SymbolLabel || res.references[sym.Name] {
				continue
			}
			src, _ := s.Source.Line(sym.Line)
			column := strings.Index(src.Text, sym.Name+":")
			if column < 0 {
				column = 0
			}
			res.Diagnostics = append(res.Diagnostics, Warnings.UnusedLabel(sym.Name, TextRange{
				Start: TextPosition{Line: sym.Line - 1, Char: column},
				End:   TextPosition{Line: sym.Line - 1, Char: column + len(sym.Name)},
			}))
		}
	}

	sort.SliceStable(res.Diagnostics, func(i, j int) bool {
		return res.Diagnostics[i].Range.Start.Line < res.Diagnostics[j].Range.Start.Line
	})
	return res
}

func rawLines(source string) []SourceLine {
	raw := strings.Split(source, "\n")
	lines := make([]SourceLine, len(raw))
	for i, text := range raw {
		text = strings.TrimRight(text, "\r")
		lines[i] = SourceLine{Number: i + 1, Text: text, Code: text}
	}
	return lines
}
