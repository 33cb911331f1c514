// Package mcp implements a Model Context Protocol (MCP) server that exposes
// the PDF collection and merge pipeline as tools and resources.
//
// The server speaks JSON-RPC 2.0 over newline-delimited stdio and implements
// the tools and resources parts of the MCP 2024-11-05 revision.
//
// # Client configuration
//
//	{
//	  "mcpServers": {
//	    "pdfburger": {
//	      "command": "pdfburger-mcp"
//	    }
//	  }
//	}
package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
)

// ProtocolVersion is the MCP revision the server speaks.
const ProtocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// maxMessageSize bounds a single request line.
const maxMessageSize = 10 << 20

// Tool is an MCP tool the client can call.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	Handler     ToolHandler            `json:"-"`
}

// ToolHandler runs a tool with the decoded call arguments. A returned error
// is reported to the client as a tool result with isError set.
type ToolHandler func(args map[string]interface{}) (ToolResult, error)

// ToolResult is the outcome of a tool call.
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// ContentBlock is one item of a tool result.
type ContentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

// Resource is a readable MCP resource. It is matched on URI without the
// query string, which carries the resource's parameters.
type Resource struct {
	URI         string          `json:"uri"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	MIMEType    string          `json:"mimeType,omitempty"`
	Handler     ResourceHandler `json:"-"`
}

// ResourceHandler reads the resource addressed by the full request URI.
type ResourceHandler func(uri string) ([]ResourceContent, error)

// ResourceContent is one item of a resources/read result.
type ResourceContent struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"`
}

type request struct {
	Version string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// notification reports whether the request expects no response.
func (r request) notification() bool { return len(r.ID) == 0 }

type response struct {
	Version string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeResult struct {
	ProtocolVersion string                 `json:"protocolVersion"`
	Capabilities    map[string]interface{} `json:"capabilities"`
	ServerInfo      serverInfo             `json:"serverInfo"`
}

// Server dispatches JSON-RPC requests to registered tools and resources.
// Register everything before calling Run.
type Server struct {
	info      serverInfo
	tools     map[string]Tool
	resources map[string]Resource
	input     io.Reader
	output    io.Writer
	logger    *slog.Logger
	mu        sync.Mutex // serialises writes to output
}

// NewServer returns a server on stdin and stdout.
func NewServer() *Server {
	return NewServerWithIO(os.Stdin, os.Stdout)
}

// NewServerWithIO returns a server reading requests from in and writing
// responses to out.
func NewServerWithIO(in io.Reader, out io.Writer) *Server {
	return &Server{
		info:      serverInfo{Name: "pdfburger-mcp", Version: "1.0.0"},
		tools:     make(map[string]Tool),
		resources: make(map[string]Resource),
		input:     in,
		output:    out,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the request logger. It must not write to the output
// stream.
func (s *Server) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// SetVersion sets the version reported in serverInfo.
func (s *Server) SetVersion(v string) {
	s.info.Version = v
}

// AddTool registers t, replacing any tool of the same name.
func (s *Server) AddTool(t Tool) {
	s.tools[t.Name] = t
}

// AddResource registers r, replacing any resource with the same URI.
func (s *Server) AddResource(r Resource) {
	s.resources[r.URI] = r
}

// Run serves requests, one per line, until the input ends.
func (s *Server) Run() error {
	scanner := bufio.NewScanner(s.input)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("unparseable request", "error", err)
			s.reply(nil, nil, &rpcError{Code: codeParseError, Message: "Parse error", Data: err.Error()})
			continue
		}
		s.serve(req)
	}
	return scanner.Err()
}

func (s *Server) serve(req request) {
	s.logger.Debug("request", "method", req.Method, "notification", req.notification())

	var (
		result interface{}
		rerr   *rpcError
	)
	switch req.Method {
	case "initialize":
		result = s.initialize()
	case "initialized", "notifications/initialized":
	case "ping":
		result = struct{}{}
	case "tools/list":
		result = map[string][]Tool{"tools": sortedValues(s.tools)}
	case "tools/call":
		result, rerr = s.callTool(req.Params)
	case "resources/list":
		result = map[string][]Resource{"resources": sortedValues(s.resources)}
	case "resources/read":
		result, rerr = s.readResource(req.Params)
	default:
		rerr = &rpcError{Code: codeMethodNotFound, Message: "Method not found", Data: req.Method}
	}

	if req.notification() {
		return
	}
	if rerr != nil {
		s.logger.Debug("request failed", "method", req.Method, "error", rerr)
	}
	s.reply(req.ID, result, rerr)
}

func (s *Server) initialize() initializeResult {
	return initializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: map[string]interface{}{
			"tools":     map[string]interface{}{},
			"resources": map[string]interface{}{},
		},
		ServerInfo: s.info,
	}
}

func (s *Server) callTool(raw json.RawMessage) (interface{}, *rpcError) {
	var params struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, &rpcError{Code: codeInvalidParams, Message: "Invalid params", Data: err.Error()}
	}
	tool, ok := s.tools[params.Name]
	if !ok {
		return nil, &rpcError{Code: codeInvalidParams, Message: "Unknown tool", Data: params.Name}
	}

	res, err := tool.Handler(params.Arguments)
	if err != nil {
		s.logger.Debug("tool failed", "tool", params.Name, "error", err)
		return ToolResult{
			Content: []ContentBlock{{Type: "text", Text: "Error: " + err.Error()}},
			IsError: true,
		}, nil
	}
	return res, nil
}

func (s *Server) readResource(raw json.RawMessage) (interface{}, *rpcError) {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, &rpcError{Code: codeInvalidParams, Message: "Invalid params", Data: err.Error()}
	}
	base, _, _ := strings.Cut(params.URI, "?")
	res, ok := s.resources[base]
	if !ok {
		return nil, &rpcError{Code: codeInvalidParams, Message: "Unknown resource", Data: params.URI}
	}

	contents, err := res.Handler(params.URI)
	if err != nil {
		return nil, &rpcError{Code: codeInternalError, Message: "Resource error", Data: err.Error()}
	}
	return map[string][]ResourceContent{"contents": contents}, nil
}

func (s *Server) reply(id json.RawMessage, result interface{}, rerr *rpcError) {
	resp := response{Version: "2.0", ID: id, Error: rerr}
	if rerr == nil {
		resp.Result = result
	}
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("encoding response", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.output.Write(append(data, '\n')); err != nil {
		s.logger.Error("writing response", "error", err)
	}
}

// sortedValues returns the values of m ordered by key.
func sortedValues[V any](m map[string]V) []V {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
