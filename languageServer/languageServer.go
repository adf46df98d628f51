package languageServer

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"os"

	"github.com/golang/glog"
	"github.com/sourcegraph/jsonrpc2"
	"github.gatech.edu/ECEInnovation/AVR-Assembler/util"
)

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

// ListenAndServe serves one client over stdin and stdout until it disconnects.
func ListenAndServe() {
	<-NewConn(context.Background(), stdrwc{}).DisconnectNotify()
}

// NewConn starts serving the language server protocol over rwc.
func NewConn(ctx context.Context, rwc io.ReadWriteCloser) *jsonrpc2.Conn {
	return jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}), handler{})
}

// ListenAndServeTCP accepts language server clients on addr until accepting fails.
func ListenAndServeTCP(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer lis.Close()

	glog.Infof("AVR Language Server: listening for TCP connections on %s", addr)

	connectionCount := 0
	for {
		conn, err := lis.Accept()
		if err != nil {
			return err
		}
		connectionCount++
		connectionID := connectionCount
		glog.Infof("AVR Language Server: received incoming connection #%d", connectionID)

		rpcConn := NewConn(context.Background(), conn)
		go func() {
			<-rpcConn.DisconnectNotify()
			glog.Infof("AVR Language Server: connection #%d closed", connectionID)
		}()
	}
}

type handler struct{}

func (h handler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	util.LogF("AVR Language Server: received request: %s", req.Method)
	switch req.Method {
	case "textDocument/didOpen":
		documentOpenNotification(ctx, conn, req)
	case "textDocument/didClose":
		documentCloseNotification(ctx, conn, req)
	case "textDocument/didChange":
		documentChangeNotification(ctx, conn, req)
	case "initialize":
		handleInitialize(ctx, conn, req)
	case "textDocument/diagnostic":
		documentDiagnostics(ctx, conn, req)
	case "textDocument/willSaveWaitUntil":
		documentWillSaveWaitUntil(ctx, conn, req)
	case "textDocument/hover":
		hoverRequest(ctx, conn, req)

	// quitting
	case "shutdown":
		conn.Reply(ctx, req.ID, nil)
	case "exit":
		conn.Close()

	default:
		if !req.Notif {
			conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not supported: " + req.Method})
		}
	}
}

// decodeParams unmarshals the request parameters into v, replying with an error when
// they do not decode.
func decodeParams(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request, v interface{}) bool {
	if req.Params != nil && json.Unmarshal(*req.Params, v) == nil {
		return true
	}
	if !req.Notif {
		conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "invalid parameters"})
	}
	return false
}

func handleInitialize(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := InitializeParams{}
	if !decodeParams(ctx, conn, req, &decodedParams) {
		return
	}

	result := InitializeResult{}
	result.Capabilities.TextDocumentSync = 1
	result.Capabilities.HoverProvider = true
	result.ServerInfo.Name = "avr-assembler"
	conn.Reply(ctx, req.ID, result)

	registerRemainingCapabilities(conn)
}

func registerRemainingCapabilities(conn *jsonrpc2.Conn) {
	// willSaveWaitUntil can only be registered dynamically
	util.LogF("AVR Language Server: registering remaining capabilities")
	params := RegistrationParams{
		Registrations: []Registration{
			{
				ID:     "textDocumentSync.willSaveWaitUntil",
				Method: "textDocument/willSaveWaitUntil",
				RegisterOptions: TextDocumentRegistrationOptions{
					DocumentSelector: []DocumentFilter{
						{
							Scheme:   "file",
							Language: languageID,
						},
					},
				},
			},
		},
	}

	go conn.Call(context.Background(), "client/registerCapability", params, nil)
}
