package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"github.com/r9s-ai/gofumpt-plugin/internal/plugin"
	"github.com/r9s-ai/gofumpt-plugin/internal/userconfig"
)

// ServerVersion is reported in the initialize response.
var ServerVersion = "dev"

// JSON-RPC error codes.
const (
	codeInvalidParams  = -32602
	codeInternalError  = -32603
	codeRequestFailed  = -32803
	codeMethodNotFound = -32601
)

type Server struct {
	in      *bufio.Reader
	out     io.Writer
	logger  *slog.Logger
	handler plugin.Handler

	docs         map[string]string
	config       *userconfig.Document
	cache        *formatCache
	shuttingDown bool
}

type Option func(*Server)

// WithHandler replaces the default gofumpt handler.
func WithHandler(h plugin.Handler) Option {
	return func(s *Server) { s.handler = h }
}

// WithConfig sets the user configuration document. A document supplied
// here takes precedence over workspace discovery during initialize.
func WithConfig(doc *userconfig.Document) Option {
	return func(s *Server) { s.config = doc }
}

func NewServer(in io.Reader, out io.Writer, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cache, _ := newFormatCache(defaultCacheSize)
	s := &Server{
		in:      bufio.NewReader(in),
		out:     out,
		logger:  logger,
		handler: plugin.Gofumpt{},
		docs:    map[string]string{},
		cache:   cache,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type inboundMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type responseMessage struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	Error   *respError  `json:"error,omitempty"`
}

type respError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type publishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

type initializeParams struct {
	RootURI               string          `json:"rootUri"`
	InitializationOptions json.RawMessage `json:"initializationOptions,omitempty"`
}

type initializeResult struct {
	Capabilities serverCapabilities `json:"capabilities"`
	ServerInfo   serverInfo         `json:"serverInfo"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type serverCapabilities struct {
	TextDocumentSync           int  `json:"textDocumentSync"`
	DocumentFormattingProvider bool `json:"documentFormattingProvider"`
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type textDocumentItem struct {
	URI  string `json:"uri"`
	Text string `json:"text"`
}

type didOpenParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

type didCloseParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

type versionedTextDocumentIdentifier struct {
	URI string `json:"uri"`
}

type textDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

type didChangeParams struct {
	TextDocument   versionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []textDocumentContentChangeEvent `json:"contentChanges"`
}

type formattingOptions struct {
	TabSize      int  `json:"tabSize"`
	InsertSpaces bool `json:"insertSpaces"`
}

type documentFormattingParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Options      formattingOptions      `json:"options"`
}

type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

type Diagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity,omitempty"`
	Source   string `json:"source,omitempty"`
	Message  string `json:"message"`
}

func (s *Server) Run() error {
	for {
		raw, err := readMessage(s.in)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Warn("invalid JSON-RPC payload", "error", err)
			continue
		}

		if msg.Method == "" {
			continue
		}
		if err := s.handle(msg); err != nil {
			if err == io.EOF {
				return nil
			}
			s.logger.Error("handle failed", "method", msg.Method, "error", err)
		}
	}
}

func (s *Server) handle(msg inboundMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg.ID, msg.Params)
	case "initialized":
		return nil
	case "shutdown":
		s.shuttingDown = true
		return s.reply(msg.ID, map[string]any{})
	case "exit":
		return io.EOF
	case "textDocument/didOpen":
		var p didOpenParams
		if err := json.Unmarshal(msg.Params, &p); err != nil {
			return err
		}
		s.docs[p.TextDocument.URI] = p.TextDocument.Text
		return s.publishDiagnostics(p.TextDocument.URI)
	case "textDocument/didChange":
		var p didChangeParams
		if err := json.Unmarshal(msg.Params, &p); err != nil {
			return err
		}
		if len(p.ContentChanges) == 0 {
			return nil
		}
		s.docs[p.TextDocument.URI] = p.ContentChanges[len(p.ContentChanges)-1].Text
		return s.publishDiagnostics(p.TextDocument.URI)
	case "textDocument/didClose":
		var p didCloseParams
		if err := json.Unmarshal(msg.Params, &p); err != nil {
			return err
		}
		delete(s.docs, p.TextDocument.URI)
		return s.notify("textDocument/publishDiagnostics", publishDiagnosticsParams{
			URI:         p.TextDocument.URI,
			Diagnostics: []Diagnostic{},
		})
	case "textDocument/formatting":
		return s.handleFormatting(msg.ID, msg.Params)
	case "plugin/info":
		return s.reply(msg.ID, plugin.Describe(s.handler))
	case "plugin/license":
		return s.reply(msg.ID, s.handler.LicenseText())
	case "plugin/resolveConfig":
		return s.handleResolveConfig(msg.ID, msg.Params)
	case "plugin/formatText":
		return s.handleFormatText(msg.ID, msg.Params)
	default:
		if msg.ID != nil {
			return s.replyError(msg.ID, codeMethodNotFound, "method not found: "+msg.Method)
		}
		return nil
	}
}

func (s *Server) handleInitialize(id *json.RawMessage, params json.RawMessage) error {
	var p initializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return s.replyError(id, codeInvalidParams, "invalid params for initialize")
		}
	}
	s.loadConfig(p)

	res := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync:           1,
			DocumentFormattingProvider: true,
		},
		ServerInfo: serverInfo{
			Name:    "gofumpt-plugin",
			Version: ServerVersion,
		},
	}
	return s.reply(id, res)
}

// loadConfig picks the configuration document: one set at construction
// wins, then initializationOptions, then a file found under rootUri.
func (s *Server) loadConfig(p initializeParams) {
	switch {
	case s.config != nil:
	case len(p.InitializationOptions) > 0 && string(p.InitializationOptions) != "null":
		var m map[string]any
		if err := json.Unmarshal(p.InitializationOptions, &m); err != nil {
			s.logger.Warn("ignoring initializationOptions", "error", err)
			break
		}
		s.config = userconfig.FromMap(m)
	case strings.HasPrefix(p.RootURI, "file://"):
		u, err := url.Parse(p.RootURI)
		if err != nil {
			s.logger.Warn("invalid rootUri", "uri", p.RootURI, "error", err)
			break
		}
		path, ok, err := userconfig.Find(u.Path)
		if err != nil || !ok {
			break
		}
		doc, err := userconfig.Load(path)
		if err != nil {
			s.logger.Warn("failed to load configuration", "path", path, "error", err)
			break
		}
		s.config = doc
	}
	if s.config == nil {
		return
	}
	for _, d := range s.config.Diagnostics {
		s.logger.Warn("configuration", "property", d.PropertyName, "message", d.Message)
	}
	_, diags := s.resolve(plugin.GlobalOptions{})
	for _, d := range diags {
		s.logger.Warn("configuration", "property", d.PropertyName, "message", d.Message)
	}
}

// resolve combines the configuration document with per-request global
// options, which take precedence over the document's.
func (s *Server) resolve(global plugin.GlobalOptions) (*plugin.Configuration, []plugin.Diagnostic) {
	var base plugin.GlobalOptions
	if s.config != nil {
		base = s.config.Global
	}
	return s.handler.ResolveConfig(s.config.Section(s.handler.ConfigKey()), base.Merge(global))
}

func (s *Server) format(path, text string, cfg *plugin.Configuration) (string, error) {
	return s.cache.format(cfg, text, func() (string, error) {
		return s.handler.FormatText(path, text, cfg)
	})
}

func (s *Server) handleFormatting(id *json.RawMessage, params json.RawMessage) error {
	var p documentFormattingParams
	if err := json.Unmarshal(params, &p); err != nil {
		return s.replyError(id, codeInvalidParams, "invalid params for formatting")
	}
	text, ok := s.docs[p.TextDocument.URI]
	if !ok {
		return s.reply(id, []TextEdit{})
	}

	useTabs := !p.Options.InsertSpaces
	global := plugin.GlobalOptions{UseTabs: &useTabs}
	if w, err := safecast.Conv[uint8](p.Options.TabSize); err == nil && w > 0 {
		global.IndentWidth = &w
	}
	cfg, _ := s.resolve(global)

	formatted, err := s.format(p.TextDocument.URI, text, cfg)
	if err != nil {
		return s.replyFormatError(id, err)
	}
	if formatted == text {
		return s.reply(id, []TextEdit{})
	}
	return s.reply(id, []TextEdit{{
		Range:   Range{Start: Position{}, End: endPosition(text)},
		NewText: formatted,
	}})
}

type resolveConfigParams struct {
	Global plugin.GlobalOptions `json:"global"`
	Config plugin.RawOverrides  `json:"config"`
}

type resolveConfigResult struct {
	Config      *plugin.Configuration `json:"config"`
	Diagnostics []plugin.Diagnostic   `json:"diagnostics"`
}

func (s *Server) handleResolveConfig(id *json.RawMessage, params json.RawMessage) error {
	var p resolveConfigParams
	if err := json.Unmarshal(params, &p); err != nil {
		return s.replyError(id, codeInvalidParams, "invalid params for resolveConfig")
	}
	cfg, diags := s.handler.ResolveConfig(p.Config, p.Global)
	return s.reply(id, resolveConfigResult{Config: cfg, Diagnostics: diags})
}

type formatTextParams struct {
	FilePath string               `json:"filePath"`
	FileText string               `json:"fileText"`
	Global   plugin.GlobalOptions `json:"global"`
	Config   plugin.RawOverrides  `json:"config"`
}

type formatTextResult struct {
	Text    string `json:"text"`
	Changed bool   `json:"changed"`
}

func (s *Server) handleFormatText(id *json.RawMessage, params json.RawMessage) error {
	var p formatTextParams
	if err := json.Unmarshal(params, &p); err != nil {
		return s.replyError(id, codeInvalidParams, "invalid params for formatText")
	}
	cfg, _ := s.handler.ResolveConfig(p.Config, p.Global)
	formatted, err := s.format(p.FilePath, p.FileText, cfg)
	if err != nil {
		return s.replyFormatError(id, err)
	}
	return s.reply(id, formatTextResult{Text: formatted, Changed: formatted != p.FileText})
}

func (s *Server) replyFormatError(id *json.RawMessage, err error) error {
	var fe *plugin.FormatError
	if errors.As(err, &fe) {
		return s.replyError(id, codeRequestFailed, fe.Message)
	}
	s.logger.Error("formatting engine failure", "error", err)
	return s.replyError(id, codeInternalError, err.Error())
}

func (s *Server) publishDiagnostics(uri string) error {
	text, ok := s.docs[uri]
	if !ok {
		return nil
	}
	cfg, _ := s.resolve(plugin.GlobalOptions{})
	diags := []Diagnostic{}
	if _, err := s.format(uri, text, cfg); err != nil {
		diags = append(diags, diagnosticFromError(err))
	}
	params := publishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	}
	return s.notify("textDocument/publishDiagnostics", params)
}

func diagnosticFromError(err error) Diagnostic {
	d := Diagnostic{Severity: 1, Source: "gofumpt", Message: err.Error()}
	var fe *plugin.FormatError
	if errors.As(err, &fe) && fe.Line > 0 {
		start := Position{Line: fe.Line - 1, Character: max(fe.Column-1, 0)}
		d.Range = Range{Start: start, End: start}
	}
	return d
}

func (s *Server) reply(id *json.RawMessage, result interface{}) error {
	if id == nil {
		return nil
	}
	var idVal interface{}
	if err := json.Unmarshal(*id, &idVal); err != nil {
		idVal = string(*id)
	}
	resp := responseMessage{
		JSONRPC: "2.0",
		ID:      idVal,
		Result:  result,
	}
	return writeMessage(s.out, resp)
}

func (s *Server) replyError(id *json.RawMessage, code int, msg string) error {
	if id == nil {
		return nil
	}
	var idVal interface{}
	if err := json.Unmarshal(*id, &idVal); err != nil {
		idVal = string(*id)
	}
	resp := responseMessage{
		JSONRPC: "2.0",
		ID:      idVal,
		Error: &respError{
			Code:    code,
			Message: msg,
		},
	}
	return writeMessage(s.out, resp)
}

func (s *Server) notify(method string, params interface{}) error {
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	}
	return writeMessage(s.out, payload)
}

func readMessage(r *bufio.Reader) ([]byte, error) {
	contentLength := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if strings.HasPrefix(strings.ToLower(line), "content-length:") {
			v := strings.TrimSpace(line[len("content-length:"):])
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length %q: %w", v, err)
			}
			contentLength = n
		}
	}
	if contentLength < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}
	buf := make([]byte, contentLength)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeMessage(w io.Writer, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err = io.Copy(w, bytes.NewReader(body))
	return err
}
