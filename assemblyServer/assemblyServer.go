package assemblyServer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
	"github.gatech.edu/ECEInnovation/AVR-Assembler/assembler"
	"github.gatech.edu/ECEInnovation/AVR-Assembler/objectWriter"
	"github.gatech.edu/ECEInnovation/AVR-Assembler/util"
)

type clientMessage struct {
	Type   string `json:"type"`
	Source string `json:"source"`
}

type listingLine struct {
	Line    int      `json:"line"`
	Address uint32   `json:"address"`
	Words   []string `json:"words"`
	Text    string   `json:"text"`
}

type resultMessage struct {
	Type        string                 `json:"type"`
	Lines       []listingLine          `json:"lines"`
	Diagnostics []assembler.Diagnostic `json:"diagnostics"`
	Hex         string                 `json:"hex"`
}

type errorMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewHandler serves the assembler page at / and the websocket at /ws.
func NewHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handleSocket)
	mux.HandleFunc("/", handleGetPage)
	return mux
}

// RunWebserver blocks serving the assembly service on addr.
func RunWebserver(addr string) error {
	glog.Infof("Connect to the assembler at http://localhost%s", addr)
	return http.ListenAndServe(addr, NewHandler())
}

func handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.Warningf("upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			util.LogF("read: %v", err)
			return
		}

		var reply interface{}
		message := clientMessage{}
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			reply = errorMessage{Type: "error", Text: "invalid message: " + err.Error()}
		} else {
			switch message.Type {
			case "assemble":
				reply = assemble(message.Source)
			default:
				reply = errorMessage{Type: "error", Text: "unknown message type: " + message.Type}
			}
		}

		if err := conn.WriteJSON(reply); err != nil {
			glog.Warningf("write: %v", err)
			return
		}
	}
}

func assemble(source string) resultMessage {
	res := assembler.AssembleListing(source)
	reply := resultMessage{
		Type:        "result",
		Lines:       make([]listingLine, 0, len(res.Lines)),
		Diagnostics: res.Diagnostics,
	}
	if reply.Diagnostics == nil {
		reply.Diagnostics = make([]assembler.Diagnostic, 0)
	}

	for _, l := range res.Lines {
		words := make([]string, 0, 2)
		for _, w := range l.Words() {
			words = append(words, fmt.Sprintf("%04X", w))
		}
		text := l.Mnemonic
		for i, op := range l.Operands {
			if i == 0 {
				text += " "
			} else {
				text += ", "
			}
			text += op.Text
		}
		reply.Lines = append(reply.Lines, listingLine{Line: l.Line, Address: l.Address, Words: words, Text: text})
	}

	if res.Ok() {
		var buf bytes.Buffer
		if err := objectWriter.WriteIntelHex(&buf, res.Lines); err != nil {
			reply.Diagnostics = append(reply.Diagnostics, assembler.Diagnostic{Message: err.Error(), Source: "Assembler", Severity: assembler.Error})
		} else {
			reply.Hex = buf.String()
		}
	}
	util.LogF("assembled %d lines, %d diagnostics", len(reply.Lines), len(reply.Diagnostics))
	return reply
}

func handleGetPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(htmlPage))
}

var htmlPage = `<html>
<head>
	<title>AVR Assembler</title>
</head>
<body style="background-color: #1E1E1E; color: white; font-family: sans-serif;">
	<h1 style="display: inline-block;">AVR Assembler</h1>
	<button id="assembleButton" style="margin-left: 50px; height: 40px; width: 100px;">ASSEMBLE</button>
	<br/>
	<textarea id="source" spellcheck="false" style="width: 980px; height: 300px; font-family: monospace; font-size: 1.1em; background-color: black; color: white; border: 2px solid white;"></textarea>
	<h2>Listing</h2>
	<pre id="listing" style="width: 980px; padding: 10px; background-color: black; min-height: 100px; border: 2px solid white;"></pre>
	<h2>Diagnostics</h2>
	<pre id="diagnostics" style="width: 980px; padding: 10px; background-color: black; min-height: 40px; border: 2px solid white;"></pre>
	<h2>Intel HEX</h2>
	<pre id="hex" style="width: 980px; padding: 10px; background-color: black; min-height: 40px; border: 2px solid white;"></pre>

	<script>
		var socket = new WebSocket("ws://" + window.location.host + "/ws");

		socket.onmessage = function(event) {
			var data = JSON.parse(event.data);
			if (data.type == "result") {
				document.getElementById("listing").textContent = data.lines.map(function(l) {
					return l.address.toString(16).padStart(4, "0") + "  " + l.words.join(" ").padEnd(10, " ") + l.text;
				}).join("\n");
				document.getElementById("diagnostics").textContent = data.diagnostics.map(function(d) {
					return "line " + (d.range.start.line + 1) + ": " + d.message;
				}).join("\n");
				document.getElementById("hex").textContent = data.hex;
			} else if (data.type == "error") {
				document.getElementById("diagnostics").textContent = data.text;
			}
		};

		document.getElementById("assembleButton").onclick = function() {
			socket.send(JSON.stringify({type: "assemble", source: document.getElementById("source").value}));
		};
	</script>
</body>
</html>
`
