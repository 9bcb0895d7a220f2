package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ziadkadry99/riskdesk/internal/chat"
	"github.com/ziadkadry99/riskdesk/internal/events"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the risk event base to agents.
type Server struct {
	events *events.Store
	chat   *chat.Service
	logger *zap.Logger
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server. svc may be nil, in which case the
// update_event_status tool is not offered.
func NewServer(store *events.Store, svc *chat.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		events: store,
		chat:   svc,
		logger: logger,
	}

	s.mcp = server.NewMCPServer(
		"riskdesk",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(getEventTool, s.handleGetEvent)
	s.mcp.AddTool(searchEventsTool, s.handleSearchEvents)
	s.mcp.AddTool(eventStatisticsTool, s.handleEventStatistics)
	if s.chat != nil {
		s.mcp.AddTool(updateEventStatusTool, s.handleUpdateEventStatus)
	}
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
