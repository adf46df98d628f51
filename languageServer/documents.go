package languageServer

import (
	"context"
	"strings"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"github.gatech.edu/ECEInnovation/AVR-Assembler/assembler"
	"github.gatech.edu/ECEInnovation/AVR-Assembler/util"
)

const languageID = "avr"

// documentStore holds the open documents. TCP mode serves several clients at once.
type documentStore struct {
	mu   sync.Mutex
	docs map[DocumentUri]TextDocumentItem
}

var documents = &documentStore{docs: make(map[DocumentUri]TextDocumentItem)}

func (s *documentStore) get(uri DocumentUri) (TextDocumentItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	return doc, ok
}

func (s *documentStore) put(doc TextDocumentItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.URI] = doc
}

func (s *documentStore) remove(uri DocumentUri) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// assemble re-assembles the document and caches the result for hovers.
func (s *documentStore) assemble(uri DocumentUri) []assembler.Diagnostic {
	doc, _ := s.get(uri)
	res := assembler.AssembleListing(doc.Text)
	if res.Diagnostics == nil {
		res.Diagnostics = make([]assembler.Diagnostic, 0)
	}
	doc.lastAssembledResult = res
	s.put(doc)
	return res.Diagnostics
}

func documentOpenNotification(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DidOpenTextDocumentParams{}
	if !decodeParams(ctx, conn, req, &decodedParams) {
		return
	}

	documents.put(decodedParams.TextDocument)
	diagnostics := documents.assemble(decodedParams.TextDocument.URI)
	conn.Notify(ctx, "textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         decodedParams.TextDocument.URI,
		Version:     decodedParams.TextDocument.Version,
		Diagnostics: diagnostics,
	})
}

func documentCloseNotification(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DidCloseTextDocumentParams{}
	if !decodeParams(ctx, conn, req, &decodedParams) {
		return
	}
	documents.remove(decodedParams.TextDocument.URI)
}

func documentChangeNotification(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DidChangeTextDocumentParams{}
	if !decodeParams(ctx, conn, req, &decodedParams) || len(decodedParams.ContentChanges) == 0 {
		return
	}

	doc, _ := documents.get(decodedParams.TextDocument.URI)
	doc.URI = decodedParams.TextDocument.URI
	doc.Text = decodedParams.ContentChanges[len(decodedParams.ContentChanges)-1].Text
	doc.Version = decodedParams.TextDocument.Version
	documents.put(doc)

	diagnostics := documents.assemble(doc.URI)
	conn.Notify(ctx, "textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     doc.Version,
		Diagnostics: diagnostics,
	})
}

func documentDiagnostics(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DocumentDiagnosticsParams{}
	if !decodeParams(ctx, conn, req, &decodedParams) {
		return
	}

	diagnostics := documents.assemble(decodedParams.TextDocument.URI)
	conn.Reply(ctx, req.ID, DocumentDiagnosticsReport{
		Kind:  "full",
		Items: diagnostics,
	})
}

// reformatDocument lines labels up in one column and instructions in the next, with
// operands separated by ", ". Comments, directives and # lines keep their text.
func reformatDocument(text string) string {
	res := assembler.AssembleListing(text)

	maxLabelLength := 0
	for _, sym := range res.Symbols.Sorted() {
		if sym.Kind == assembler.SymbolLabel && len(sym.Name) > maxLabelLength {
			maxLabelLength = len(sym.Name)
		}
	}
	column := maxLabelLength + 2

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		code, comment := line, ""
		if idx := assembler.CommentStart(line); idx >= 0 {
			code, comment = line[:idx], line[idx:]
		}

		tokens := assembler.Tokenize(code)
		if len(tokens) == 0 {
			lines[i] = strings.TrimSpace(line)
			continue
		}
		if tokens[0].Text[0] == '#' || tokens[0].Text[0] == '.' {
			lines[i] = strings.TrimSpace(line)
			continue
		}

		var labels []string
		j := 0
		for j < len(tokens) && strings.HasSuffix(tokens[j].Text, ":") {
			labels = append(labels, tokens[j].Text)
			j++
		}

		prefix := strings.Join(labels, " ")
		out := prefix
		if j < len(tokens) {
			if len(prefix) < column {
				out += strings.Repeat(" ", column-len(prefix))
			} else {
				out += " "
			}
			out += tokens[j].Text
			if j+1 < len(tokens) {
				operands := make([]string, 0, len(tokens)-j-1)
				for _, tok := range tokens[j+1:] {
					operands = append(operands, tok.Text)
				}
				out += " " + strings.Join(operands, ", ")
			}
		}
		if comment != "" {
			out += " " + comment
		}
		lines[i] = out
	}
	return strings.Join(lines, "\n")
}

func documentWillSaveWaitUntil(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DocumentWillSaveWaitUntilParams{}
	if !decodeParams(ctx, conn, req, &decodedParams) {
		return
	}

	doc, _ := documents.get(decodedParams.TextDocument.URI)
	lines := strings.Split(doc.Text, "\n")

	edits := []TextEdit{{
		Range: assembler.TextRange{
			Start: assembler.TextPosition{Line: 0, Char: 0},
			End:   assembler.TextPosition{Line: len(lines) - 1, Char: len(lines[len(lines)-1])},
		},
		NewText: reformatDocument(doc.Text),
	}}

	conn.Reply(ctx, req.ID, edits)
	util.LogF("AVR Language Server: reformatted %s", decodedParams.TextDocument.URI)
}
