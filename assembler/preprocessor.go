package assembler

import (
	"strings"

	"github.com/golang/glog"
)

// Preprocess splits source into lines, blanks out comments and #DEFINE lines (recording
// the constants in symbols) and folds label-only lines into the instruction that follows
// them. The result has exactly one entry per raw line so line numbers never drift.
func Preprocess(source string, symbols *SymbolTable) (*ProcessedSource, error) {
	raw := strings.Split(source, "\n")
	out := &ProcessedSource{Lines: make([]SourceLine, len(raw))}

	type pendingLabel struct {
		text string
		line int
	}
	var pending []pendingLabel

	for i, text := range raw {
		text = strings.TrimRight(text, "\r")
		line := SourceLine{Number: i + 1, Text: text}
		tokens := Tokenize(text)

		switch {
		case len(tokens) == 0:
			// blank or comment-only
		case tokens[0].Text[0] == '#':
			if strings.EqualFold(tokens[0].Text, "#define") {
				if err := defineConstant(line, tokens, symbols); err != nil {
					return nil, err
				}
			}
			// any other '#' line is a comment
		case len(tokens) == 1 && isLabelToken(tokens[0]):
			pending = append(pending, pendingLabel{text: tokens[0].Text, line: line.Number})
		case tokens[0].Text[0] == '.':
			// labels waiting for an instruction stay pending across directives
			line.Code = text
		default:
			line.Code = text
			if len(pending) > 0 {
				prefix := make([]string, len(pending))
				for j, p := range pending {
					prefix[j] = p.text
					line.FoldedFrom = append(line.FoldedFrom, p.line)
				}
				line.Code = strings.Join(prefix, " ") + " " + text
				pending = pending[:0]
			}
		}
		out.Lines[i] = line
	}

	// labels at the end of input have nothing to fold into; leave them on their own lines
	for _, p := range pending {
		out.Lines[p.line-1].Code = out.Lines[p.line-1].Text
	}

	glog.V(1).Infof("Preprocessed %d lines, %d constants defined", len(out.Lines), symbols.Len())
	return out, nil
}

func defineConstant(line SourceLine, tokens []Token, symbols *SymbolTable) error {
	if len(tokens) < 2 {
		return Errors.MissingOperand("#DEFINE", "expected #DEFINE NAME [VALUE]").at(line, tokens[0].Column)
	}
	name := tokens[1]
	if ok, reason := checkValidSymbolName(name.Text); !ok {
		return Errors.InvalidSymbolName(name.Text, reason).at(line, name.Column)
	}

	value := uint32(0)
	if len(tokens) > 2 {
		v, err := ParseLiteral(tokens[2].Text)
		if err != nil {
			return err.(*AssemblyError).at(line, tokens[2].Column)
		}
		value = v
	}

	if err := symbols.Define(Symbol{Name: name.Text, Value: value, Kind: SymbolConstant, Line: line.Number}); err != nil {
		return err.(*AssemblyError).at(line, name.Column)
	}
	return nil
}
