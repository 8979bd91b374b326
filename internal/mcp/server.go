// Package mcp exposes retrieval and question answering as MCP tools over
// stdio, so agent clients can query the municipal knowledge base directly.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/cholinyo/chatbot-comparador/internal/gateway"
	"github.com/cholinyo/chatbot-comparador/internal/retrieval"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes retrieval tools.
type Server struct {
	fuser          *retrieval.Fuser
	gw             *gateway.Gateway
	defaultK       int
	defaultBackend gateway.BackendDescriptor
	mcp            *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(fuser *retrieval.Fuser, gw *gateway.Gateway, defaultK int, defaultBackend gateway.BackendDescriptor) *Server {
	if defaultK <= 0 {
		defaultK = 5
	}
	s := &Server{
		fuser:          fuser,
		gw:             gw,
		defaultK:       defaultK,
		defaultBackend: defaultBackend,
	}

	s.mcp = server.NewMCPServer(
		"comparador",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(retrieveFragmentsTool, s.handleRetrieveFragments)
	s.mcp.AddTool(askTool, s.handleAsk)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
