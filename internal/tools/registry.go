/*-------------------------------------------------------------------------
 *
 * Schema Designer MCP Server
 *
 * Copyright (c) 2025, Schema Designer MCP contributors
 * This software is released under the MIT License
 *
 *-------------------------------------------------------------------------
 */

package tools

import (
	"context"
	"fmt"
	"sort"

	"schema-designer-mcp/internal/logging"
	"schema-designer-mcp/internal/mcp"
	"schema-designer-mcp/internal/status"
)

// Handler is a function that executes a tool
type Handler func(ctx context.Context, args map[string]interface{}) (mcp.ToolResponse, error)

// Tool represents a registered MCP tool
type Tool struct {
	Definition mcp.Tool
	Handler    Handler
}

// Registry manages available MCP tools
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates a new tool registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry
func (r *Registry) Register(name string, tool Tool) {
	r.tools[name] = tool
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) (Tool, bool) {
	tool, exists := r.tools[name]
	return tool, exists
}

// List returns all registered tool definitions, sorted by name
func (r *Registry) List() []mcp.Tool {
	tools := make([]mcp.Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool.Definition)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// Execute runs a tool by name with the given arguments. A handler panic is
// the only thing allowed to reach this boundary untyped; it is caught here
// and mapped to an internal_error envelope so nothing raw ever escapes to
// the transport.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) (resp mcp.ToolResponse, err error) {
	tool, exists := r.Get(name)
	if !exists {
		return mcp.NewToolError("Tool not found: " + name)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			logging.Error("tool handler panicked", "tool", name, "panic", recovered)
			message := fmt.Sprintf("%v", recovered)
			if recoveredErr, ok := recovered.(error); ok {
				message = recoveredErr.Error()
			}
			resp, err = respondFailure(Failure{
				Reason:  status.InternalError,
				Message: message,
			})
		}
	}()

	return tool.Handler(ctx, args)
}
