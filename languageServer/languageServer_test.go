package languageServer

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/sourcegraph/jsonrpc2"
	"github.gatech.edu/ECEInnovation/AVR-Assembler/assembler"
)

// clientHandler records notifications from the server and accepts its requests.
type clientHandler struct {
	notifications chan *jsonrpc2.Request
}

func (h clientHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if !req.Notif {
		conn.Reply(ctx, req.ID, nil)
		return
	}
	h.notifications <- req
}

func connect(t *testing.T) (*jsonrpc2.Conn, chan *jsonrpc2.Request) {
	t.Helper()
	serverSide, clientSide := net.Pipe()
	server := NewConn(context.Background(), serverSide)

	notifications := make(chan *jsonrpc2.Request, 16)
	client := jsonrpc2.NewConn(context.Background(), jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}), clientHandler{notifications})
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, notifications
}

func waitForDiagnostics(t *testing.T, notifications chan *jsonrpc2.Request) PublishDiagnosticsParams {
	t.Helper()
	for {
		select {
		case req := <-notifications:
			if req.Method != "textDocument/publishDiagnostics" {
				continue
			}
			params := PublishDiagnosticsParams{}
			if err := json.Unmarshal(*req.Params, &params); err != nil {
				t.Fatal(err)
			}
			return params
		case <-time.After(5 * time.Second):
			t.Fatal("Timed out waiting for diagnostics")
		}
	}
}

func TestInitialize(t *testing.T) {
	client, _ := connect(t)

	result := InitializeResult{}
	if err := client.Call(context.Background(), "initialize", InitializeParams{ProcessID: 1}, &result); err != nil {
		t.Fatal(err)
	}
	if !result.Capabilities.HoverProvider || result.Capabilities.TextDocumentSync != 1 {
		t.Errorf("Unexpected capabilities %+v", result.Capabilities)
	}
}

func TestUnknownMethod(t *testing.T) {
	client, _ := connect(t)

	err := client.Call(context.Background(), "textDocument/completion", struct{}{}, nil)
	rpcErr, ok := err.(*jsonrpc2.Error)
	if !ok || rpcErr.Code != jsonrpc2.CodeMethodNotFound {
		t.Errorf("Expected method not found, got %v", err)
	}
}

func TestDiagnosticsAndHover(t *testing.T) {
	client, notifications := connect(t)
	uri := DocumentUri("file:///test/diagnostics.asm")

	err := client.Notify(context.Background(), "textDocument/didOpen", DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: uri, LanguageID: languageID, Version: 1, Text: "loop: dec r16\n\tbrne done\n"},
	})
	if err != nil {
		t.Fatal(err)
	}
	published := waitForDiagnostics(t, notifications)
	if published.URI != uri || len(published.Diagnostics) != 1 {
		t.Fatalf("Expected one diagnostic for %s, got %+v", uri, published)
	}
	d := published.Diagnostics[0]
	if d.Severity != assembler.Error || d.Range.Start.Line != 1 || d.Range.Start.Char != 6 {
		t.Errorf("Expected an error at 1:6, got %+v", d)
	}

	err = client.Notify(context.Background(), "textDocument/didChange", DidChangeTextDocumentParams{
		TextDocument:   VersionedTextDocumentIdentifier{URI: uri, Version: 2},
		ContentChanges: []TextDocumentContentChangeEvent{{Text: "loop: dec r16\n\tbrne loop\n"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	published = waitForDiagnostics(t, notifications)
	if published.Version != 2 || len(published.Diagnostics) != 0 {
		t.Fatalf("Expected no diagnostics for version 2, got %+v", published)
	}

	hover := Hover{}
	err = client.Call(context.Background(), "textDocument/hover", TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
		Position:     assembler.TextPosition{Line: 0, Char: 11},
	}, &hover)
	if err != nil {
		t.Fatal(err)
	}
	if hover.Contents.Kind != "markdown" || hover.Contents.Value == "" {
		t.Errorf("Expected a markdown hover, got %+v", hover)
	}

	report := DocumentDiagnosticsReport{}
	err = client.Call(context.Background(), "textDocument/diagnostic", DocumentDiagnosticsParams{TextDocument: TextDocumentIdentifier{URI: uri}}, &report)
	if err != nil {
		t.Fatal(err)
	}
	if report.Kind != "full" || report.Items == nil || len(report.Items) != 0 {
		t.Errorf("Expected an empty full report, got %+v", report)
	}
}

func TestWillSaveReformats(t *testing.T) {
	client, notifications := connect(t)
	uri := DocumentUri("file:///test/format.asm")

	client.Notify(context.Background(), "textDocument/didOpen", DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: uri, Text: "loop: dec   r16\n  brne loop"},
	})
	waitForDiagnostics(t, notifications)

	var edits []TextEdit
	err := client.Call(context.Background(), "textDocument/willSaveWaitUntil", DocumentWillSaveWaitUntilParams{TextDocument: TextDocumentIdentifier{URI: uri}}, &edits)
	if err != nil {
		t.Fatal(err)
	}
	if len(edits) != 1 {
		t.Fatalf("Expected one edit, got %d", len(edits))
	}
	if edits[0].NewText != "loop: dec r16\n      brne loop" {
		t.Errorf("Unexpected formatting %q", edits[0].NewText)
	}
	if edits[0].Range.End != (assembler.TextPosition{Line: 1, Char: 11}) {
		t.Errorf("Expected the edit to cover the document, got %+v", edits[0].Range)
	}
}

func TestReformatDocument(t *testing.T) {
	source := "loop:   dec r16 ;count\n  brne    loop\n.org 0x10\n  #DEFINE A 1\n\n   ; c\nstart:"
	expected := "loop:  dec r16 ;count\n       brne loop\n.org 0x10\n#DEFINE A 1\n\n; c\nstart:"
	if got := reformatDocument(source); got != expected {
		t.Errorf("Expected\n%s\ngot\n%s", expected, got)
	}
}
