package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestRun_InitializeShutdownExit(t *testing.T) {
	var in bytes.Buffer
	writeLSPMessage(&in, map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params":  map[string]any{},
	})
	writeLSPMessage(&in, map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "shutdown",
		"params":  map[string]any{},
	})
	writeLSPMessage(&in, map[string]any{
		"jsonrpc": "2.0",
		"method":  "exit",
		"params":  map[string]any{},
	})

	var out bytes.Buffer
	s := NewServer(&in, &out, discardLogger())
	if err := s.Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	msgs := readAllLSPMessages(t, out.Bytes())
	if len(msgs) < 2 {
		t.Fatalf("expected at least 2 responses, got %d", len(msgs))
	}
	if msgs[0]["id"] == nil || msgs[0]["result"] == nil {
		t.Fatalf("initialize response missing id/result: %+v", msgs[0])
	}
	if msgs[1]["id"] == nil || msgs[1]["result"] == nil {
		t.Fatalf("shutdown response missing id/result: %+v", msgs[1])
	}
}

func TestHandle_DidOpenPublishesDiagnostics(t *testing.T) {
	var out bytes.Buffer
	s := NewServer(stringsReader(""), &out, discardLogger())

	params, err := json.Marshal(didOpenParams{
		TextDocument: textDocumentItem{
			URI:  "file:///tmp/a.go",
			Text: "package main\n\nfunc main() {\n\tx := \n}\n",
		},
	})
	if err != nil {
		t.Fatalf("marshal didOpen params: %v", err)
	}
	if err := s.handle(inboundMessage{
		JSONRPC: "2.0",
		Method:  "textDocument/didOpen",
		Params:  params,
	}); err != nil {
		t.Fatalf("handle didOpen: %v", err)
	}

	msgs := readAllLSPMessages(t, out.Bytes())
	if len(msgs) == 0 {
		t.Fatalf("expected diagnostics notification")
	}
	if msgs[0]["method"] != "textDocument/publishDiagnostics" {
		t.Fatalf("expected publishDiagnostics, got: %+v", msgs[0])
	}
	p, _ := msgs[0]["params"].(map[string]any)
	diags, _ := p["diagnostics"].([]any)
	if len(diags) != 1 {
		t.Fatalf("expected one parse diagnostic, got: %+v", p)
	}
}

func TestHandle_InvalidFormattingParamsReplyError(t *testing.T) {
	var out bytes.Buffer
	s := NewServer(stringsReader(""), &out, discardLogger())

	rawID := json.RawMessage("7")
	if err := s.handle(inboundMessage{
		JSONRPC: "2.0",
		ID:      &rawID,
		Method:  "textDocument/formatting",
		Params:  json.RawMessage(`{"oops":`), // malformed JSON
	}); err != nil {
		t.Fatalf("handle formatting should not return error: %v", err)
	}

	msgs := readAllLSPMessages(t, out.Bytes())
	if len(msgs) != 1 {
		t.Fatalf("expected one response, got %d", len(msgs))
	}
	if msgs[0]["error"] == nil {
		t.Fatalf("expected error response, got: %+v", msgs[0])
	}
}

func TestHandle_FormattingReturnsEdit(t *testing.T) {
	var out bytes.Buffer
	s := NewServer(stringsReader(""), &out, discardLogger())
	uri := "file:///tmp/c.go"
	s.docs[uri] = "package main\nfunc main(){\nprintln( 1 )\n}\n"

	params, err := json.Marshal(documentFormattingParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Options:      formattingOptions{TabSize: 4, InsertSpaces: false},
	})
	if err != nil {
		t.Fatalf("marshal formatting params: %v", err)
	}

	rawID := json.RawMessage("8")
	if err := s.handle(inboundMessage{
		JSONRPC: "2.0",
		ID:      &rawID,
		Method:  "textDocument/formatting",
		Params:  params,
	}); err != nil {
		t.Fatalf("handle formatting: %v", err)
	}

	msgs := readAllLSPMessages(t, out.Bytes())
	if len(msgs) != 1 {
		t.Fatalf("expected one formatting response, got %d", len(msgs))
	}
	if msgs[0]["error"] != nil {
		t.Fatalf("expected formatting result, got error: %+v", msgs[0]["error"])
	}
	edits, _ := msgs[0]["result"].([]any)
	if len(edits) != 1 {
		t.Fatalf("expected a single full-document edit, got: %+v", msgs[0]["result"])
	}
	edit, _ := edits[0].(map[string]any)
	newText, _ := edit["newText"].(string)
	if !strings.Contains(newText, "\tprintln(1)") {
		t.Fatalf("expected tab-indented output, got: %q", newText)
	}
	end := edit["range"].(map[string]any)["end"].(map[string]any)
	if end["line"] != float64(4) || end["character"] != float64(0) {
		t.Fatalf("expected edit to end after last line, got: %+v", end)
	}
}

func TestHandle_FormattingUnchangedReturnsNoEdits(t *testing.T) {
	var out bytes.Buffer
	s := NewServer(stringsReader(""), &out, discardLogger())
	uri := "file:///tmp/ok.go"
	s.docs[uri] = "package main\n\nfunc main() {\n\tprintln(1)\n}\n"

	params, err := json.Marshal(documentFormattingParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Options:      formattingOptions{TabSize: 8},
	})
	if err != nil {
		t.Fatalf("marshal formatting params: %v", err)
	}
	rawID := json.RawMessage("9")
	if err := s.handle(inboundMessage{JSONRPC: "2.0", ID: &rawID, Method: "textDocument/formatting", Params: params}); err != nil {
		t.Fatalf("handle formatting: %v", err)
	}

	msgs := readAllLSPMessages(t, out.Bytes())
	if len(msgs) != 1 {
		t.Fatalf("expected one response, got %d", len(msgs))
	}
	edits, ok := msgs[0]["result"].([]any)
	if !ok || len(edits) != 0 {
		t.Fatalf("expected empty edit list, got: %+v", msgs[0])
	}
}

func writeLSPMessage(w *bytes.Buffer, payload any) {
	b, _ := json.Marshal(payload)
	_, _ = w.WriteString(fmt.Sprintf("Content-Length: %d\r\n\r\n", len(b)))
	_, _ = w.Write(b)
}

func readAllLSPMessages(t *testing.T, raw []byte) []map[string]any {
	t.Helper()
	r := bufio.NewReader(bytes.NewReader(raw))
	out := make([]map[string]any, 0, 4)
	for {
		msg, err := readMessage(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("readMessage: %v", err)
		}
		var obj map[string]any
		if err := json.Unmarshal(msg, &obj); err != nil {
			t.Fatalf("unmarshal LSP message: %v", err)
		}
		out = append(out, obj)
	}
	return out
}

func stringsReader(s string) *bytes.Reader { return bytes.NewReader([]byte(s)) }
