package mcp

import (
	"net/http"

	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/config"
	"github.com/bobmcallan/vire-tracker/internal/interfaces"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Services are the core services exposed as MCP tools.
type Services struct {
	Market    interfaces.MarketService
	Portfolio interfaces.PortfolioService
	Recommend interfaces.RecommendationService
}

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	server     *mcpserver.MCPServer
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
}

// NewHandler creates the MCP handler and registers every tool.
func NewHandler(svc Services, logger *common.Logger) *Handler {
	mcpSrv := mcpserver.NewMCPServer(
		"vire-tracker",
		config.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)

	count := RegisterTools(mcpSrv, svc)

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	logger.Info().
		Int("tools", count).
		Msg("MCP handler initialized")

	return &Handler{
		server:     mcpSrv,
		streamable: streamable,
		logger:     logger,
	}
}

// Server returns the underlying MCP server.
func (h *Handler) Server() *mcpserver.MCPServer {
	return h.server
}

// ServeHTTP delegates to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.streamable.ServeHTTP(w, r)
}
