package assembler

import (
	"strings"
)

// applyDirective interprets an assembler directive line. tokens[0] starts with '.'.
// Directives other than .org are accepted and ignored; known reports whether the
// directive was recognised so listings can warn about it.
func (s *Session) applyDirective(line SourceLine, tokens []Token) (known bool, err error) {
	switch strings.ToLower(tokens[0].Text) {
	case ".org":
		if len(tokens) < 2 {
			return true, Errors.MissingOperand(".org", "expected .org <address>").at(line, tokens[0].Column)
		}
		value, err := ParseLiteral(tokens[1].Text)
		if err != nil {
			return true, err.(*AssemblyError).at(line, tokens[1].Column)
		}
		s.Counter = value
		return true, nil
	}
	return false, nil
}
