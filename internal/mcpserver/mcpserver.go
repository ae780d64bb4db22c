// Copyright 2024 Alexandre Mahdhaoui
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mcpserver runs new-version as an MCP server over stdio, so that
// agents and build orchestrators can trigger version propagation as tools.
package mcpserver

import (
	"context"
	"errors"

	"github.com/alexandremahdhaoui/newversion/pkg/flaterrors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var errServing = errors.New("serving MCP over stdio")

// Server wraps the MCP server.
type Server struct {
	server *mcp.Server
}

// New creates a new MCP server with the given name and version.
func New(name, version string) *Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	return &Server{
		server: server,
	}
}

// RegisterTool registers a tool with the MCP server.
func RegisterTool[In any](s *Server, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, any, error)) {
	mcp.AddTool(s.server, tool, handler)
}

// Run serves JSON-RPC on stdin/stdout until ctx is done or the client
// disconnects. Logs must go to stderr only.
func (s *Server) Run(ctx context.Context) error {
	if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return flaterrors.Join(err, errServing)
	}
	return nil
}

// Result builds a tool result carrying message and, as structured output,
// payload. isError flags the call as failed for the client.
func Result(message string, isError bool, payload any) (*mcp.CallToolResult, any) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: isError,
	}, payload
}
