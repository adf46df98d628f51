package assembler

// Tokenize splits a line on whitespace and commas. A token that begins with ';' starts a
// comment, which runs to the end of the line and is dropped. The result depends only on
// line.
func Tokenize(line string) []Token {
	tokens, _ := scanLine(line)
	return tokens
}

// CommentStart returns the offset of the comment in line, or -1 when there is none.
func CommentStart(line string) int {
	_, at := scanLine(line)
	return at
}

func scanLine(line string) ([]Token, int) {
	tokens := make([]Token, 0, 4)
	start := -1
	for i := 0; i < len(line); i++ {
		if isSeparator(line[i]) {
			if start >= 0 {
				tokens = append(tokens, Token{Text: line[start:i], Column: start})
				start = -1
			}
		} else if start < 0 {
			if line[i] == ';' {
				return tokens, i
			}
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, Token{Text: line[start:], Column: start})
	}
	return tokens, -1
}

func isSeparator(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f' || c == ','
}

func tokenTexts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func isLabelToken(tok Token) bool {
	return len(tok.Text) > 0 && tok.Text[len(tok.Text)-1] == ':'
}

// splitLabels separates leading label tokens from the rest of the line.
func splitLabels(tokens []Token) (labels []Token, rest []Token) {
	i := 0
	for i < len(tokens) && isLabelToken(tokens[i]) {
		i++
	}
	return tokens[:i], tokens[i:]
}
