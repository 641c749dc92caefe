/*-------------------------------------------------------------------------
 *
 * Schema Designer MCP Server
 *
 * Copyright (c) 2025, Schema Designer MCP contributors
 * This software is released under the MIT License
 *
 *-------------------------------------------------------------------------
 */

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "schema-designer-mcp"
	ServerVersion   = "1.0.0"
)

// ToolProvider lists the tool catalog and executes calls against it.
type ToolProvider interface {
	List() []Tool
	Execute(ctx context.Context, name string, args map[string]interface{}) (ToolResponse, error)
}

// Server drives the MCP request loop over a pair of streams.
type Server struct {
	tools ToolProvider
	in    io.Reader
	out   io.Writer
}

// NewServer creates a server bound to process stdio.
func NewServer(tools ToolProvider) *Server {
	return &Server{tools: tools, in: os.Stdin, out: os.Stdout}
}

// NewServerWithStreams creates a server bound to explicit streams, used by
// tests to drive the protocol without touching process stdio.
func NewServerWithStreams(tools ToolProvider, in io.Reader, out io.Writer) *Server {
	return &Server{tools: tools, in: in, out: out}
}

// Run reads one JSON-RPC request per input line until the stream closes.
// ctx cancellation is propagated into tool execution.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, ScannerInitialBufferSize), ScannerMaxBufferSize)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		var req JSONRPCRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			s.sendError(nil, -32700, "Parse error", err.Error())
			continue
		}

		s.dispatch(ctx, req)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("request stream: %w", err)
	}
	return nil
}

func (s *Server) dispatch(ctx context.Context, req JSONRPCRequest) {
	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "notifications/initialized":
		// Notification, nothing to send back
	case "tools/list":
		s.sendResponse(req.ID, ToolsListResult{Tools: s.tools.List()})
	case "tools/call":
		s.handleToolCall(ctx, req)
	default:
		// Unknown notifications are dropped; unknown requests get an error
		if req.ID != nil {
			s.sendError(req.ID, -32601, "Method not found", nil)
		}
	}
}

// decodeParams re-marshals the loosely typed params into a concrete shape.
func decodeParams(params interface{}, dest interface{}) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (s *Server) handleInitialize(req JSONRPCRequest) {
	var params InitializeParams
	if err := decodeParams(req.Params, &params); err != nil {
		s.sendError(req.ID, -32602, "Invalid params", err.Error())
		return
	}

	// Echo the client's protocol version when it names one
	version := params.ProtocolVersion
	if version == "" {
		version = ProtocolVersion
	}

	s.sendResponse(req.ID, InitializeResult{
		ProtocolVersion: version,
		Capabilities: map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		ServerInfo: Implementation{Name: ServerName, Version: ServerVersion},
	})
}

func (s *Server) handleToolCall(ctx context.Context, req JSONRPCRequest) {
	var params ToolCallParams
	if err := decodeParams(req.Params, &params); err != nil {
		s.sendError(req.ID, -32602, "Invalid params", err.Error())
		return
	}

	response, err := s.tools.Execute(ctx, params.Name, params.Arguments)
	if err != nil {
		s.sendError(req.ID, -32603, "Tool execution error", err.Error())
		return
	}
	s.sendResponse(req.ID, response)
}

func (s *Server) sendResponse(id, result interface{}) {
	s.write(JSONRPCResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) sendError(id interface{}, code int, message string, data interface{}) {
	s.write(JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: message, Data: data},
	})
}

func (s *Server) write(resp JSONRPCResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: failed to marshal response: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, string(data))
}
