// Package mcpserver exposes the tool dispatcher over the model context
// protocol on stdio.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/sensioair/sensio-mcp/internal/service"
)

const Name = "sensio-air"

// Tools builds the protocol tool definitions from the catalogue.
func Tools() []mcp.Tool {
	out := make([]mcp.Tool, len(service.Catalog))
	for i, spec := range service.Catalog {
		out[i] = mcp.NewToolWithRawSchema(spec.Name, spec.Description, spec.InputSchema)
	}
	return out
}

// New registers every catalogue tool. All calls run as caller: a stdio
// server has exactly one client.
func New(d *service.Dispatcher, caller, version string) *server.MCPServer {
	s := server.NewMCPServer(Name, version, server.WithToolCapabilities(false))
	for _, tool := range Tools() {
		s.AddTool(tool, Handler(d, caller, tool.Name))
	}
	return s
}

// Handler adapts one tool to the protocol. Tool failures are results with
// IsError set, never protocol errors.
func Handler(d *service.Dispatcher, caller, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var env service.Envelope
		if args, err := json.Marshal(req.Params.Arguments); err != nil {
			log.Warn().Err(err).Str("tool", name).Msg("unreadable tool arguments")
			env = service.InvalidArguments(err)
		} else {
			env = d.Call(ctx, caller, name, args)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(string(env.Body))},
			IsError: env.IsError,
		}, nil
	}
}

// Serve blocks serving s on stdin/stdout until stdin closes or a signal
// arrives.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
