package mcp

import (
	"encoding/json"
	"net/http"

	"github.com/foomo/docsite-mcp/service"
	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// NewMcpHTTPServer creates a streamable HTTP MCP server listening on endpoint
func NewMcpHTTPServer(s *server.MCPServer, endpoint string) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath(endpoint),
	)
}

// McpHTTPSSEServer combines the MCP HTTP server with the SSE bridge
type McpHTTPSSEServer struct {
	router    chi.Router
	sseServer *MCPSSEServer
}

// NewMcpHTTPSSEServer mounts the MCP endpoint and the SSE routes below it
func NewMcpHTTPSSEServer(logger *zap.Logger, s *server.MCPServer, serviceInstance service.Service, endpoint string, config *SSEServerConfig) *McpHTTPSSEServer {
	sseServer := NewMCPSSEServer(logger, serviceInstance, config)

	r := chi.NewRouter()
	mcpHandler := NewMcpHTTPServer(s, endpoint)
	r.Handle(endpoint, mcpHandler)

	r.Route(endpoint+"/sse", func(r chi.Router) {
		r.Get("/", sseServer.HandleSSE)
		r.Post("/validate", sseServer.HandleValidateSSE)
		r.Post("/document", sseServer.HandleGetDocumentSSE)
		r.Get("/clients", func(w http.ResponseWriter, r *http.Request) {
			clients := sseServer.GetConnectedClients()
			writeJSON(w, map[string]interface{}{
				"connectedClients": len(clients),
				"clients":          clients,
			})
		})
		r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, sseServer.GetStats())
		})
	})

	return &McpHTTPSSEServer{
		router:    r,
		sseServer: sseServer,
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_ = json.NewEncoder(w).Encode(v)
}

// ServeHTTP implements http.Handler
func (s *McpHTTPSSEServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// GetSSEServer returns the underlying SSE server for direct access
func (s *McpHTTPSSEServer) GetSSEServer() *MCPSSEServer {
	return s.sseServer
}
