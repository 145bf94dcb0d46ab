package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/foomo/docsite-mcp/service"
	"github.com/foomo/docsite-mcp/siteconfig"
	"go.uber.org/zap"
)

// SSEEvent is one frame on the event stream
type SSEEvent struct {
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

func newSSEEvent(name string, data interface{}) SSEEvent {
	now := time.Now()
	return SSEEvent{
		ID:        fmt.Sprintf("%s_%d", name, now.UnixNano()),
		Event:     name,
		Data:      data,
		Timestamp: now,
	}
}

// SSEClient is a browser or editor listening on /sse
type SSEClient struct {
	ID       string
	Writer   http.ResponseWriter
	Flusher  http.Flusher
	Done     chan struct{}
	LastSeen time.Time
	mu       sync.Mutex
}

// MCPSSEServer streams service results and config reload notifications to browsers and editors
type MCPSSEServer struct {
	logger       *zap.Logger
	service      service.Service
	config       *SSEServerConfig
	clients      map[string]*SSEClient
	clientsMu    sync.RWMutex
	broadcast    chan SSEEvent
	nextClientID int
	done         chan struct{}
	closeOnce    sync.Once
}

// SSEServerConfig tunes keepalives and the broadcast buffer
type SSEServerConfig struct {
	KeepaliveInterval time.Duration
	BufferSize        int
	ClientTimeout     time.Duration
}

// DefaultSSEServerConfig keeps clients alive every 30s
func DefaultSSEServerConfig() *SSEServerConfig {
	return &SSEServerConfig{
		KeepaliveInterval: 30 * time.Second,
		BufferSize:        100,
		ClientTimeout:     60 * time.Second,
	}
}

// NewMCPSSEServer creates a new SSE server and starts its broadcast loop
func NewMCPSSEServer(logger *zap.Logger, serviceInstance service.Service, config *SSEServerConfig) *MCPSSEServer {
	if config == nil {
		config = DefaultSSEServerConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sseServer := &MCPSSEServer{
		logger:    logger,
		service:   serviceInstance,
		config:    config,
		clients:   make(map[string]*SSEClient),
		broadcast: make(chan SSEEvent, config.BufferSize),
		done:      make(chan struct{}),
	}

	go sseServer.broadcastLoop()

	return sseServer
}

// Close stops the broadcast loop and disconnects all clients
func (s *MCPSSEServer) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.clientsMu.Lock()
		defer s.clientsMu.Unlock()
		for id, client := range s.clients {
			close(client.Done)
			delete(s.clients, id)
		}
	})
}

func (s *MCPSSEServer) broadcastLoop() {
	for {
		var event SSEEvent
		select {
		case <-s.done:
			return
		case event = <-s.broadcast:
		}
		var failed []string
		s.clientsMu.RLock()
		for clientID, client := range s.clients {
			if err := writeEvent(client, event); err != nil {
				s.logger.Error("failed to send event to client", zap.String("clientID", clientID), zap.Error(err))
				failed = append(failed, clientID)
			}
		}
		s.clientsMu.RUnlock()
		for _, clientID := range failed {
			s.removeClient(clientID)
		}
	}
}

// writeEvent formats event as SSE and flushes it to the client
func writeEvent(client *SSEClient, event SSEEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	if _, err := fmt.Fprintf(client.Writer, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Event, eventJSON); err != nil {
		return err
	}
	client.Flusher.Flush()
	client.LastSeen = time.Now()
	return nil
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func (s *MCPSSEServer) addClient(w http.ResponseWriter) *SSEClient {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return nil
	}

	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	s.nextClientID++
	clientID := fmt.Sprintf("client_%d", s.nextClientID)
	client := &SSEClient{
		ID:       clientID,
		Writer:   w,
		Flusher:  flusher,
		Done:     make(chan struct{}),
		LastSeen: time.Now(),
	}

	connectEvent := newSSEEvent("connected", map[string]string{"clientID": clientID, "message": "Connected to docsite SSE server"})
	if err := writeEvent(client, connectEvent); err != nil {
		s.logger.Error("failed to greet sse client", zap.String("clientID", clientID), zap.Error(err))
		return nil
	}
	s.clients[clientID] = client

	s.logger.Info("sse client connected", zap.String("clientID", clientID))
	return client
}

func (s *MCPSSEServer) removeClient(clientID string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if client, exists := s.clients[clientID]; exists {
		close(client.Done)
		delete(s.clients, clientID)
		s.logger.Info("sse client disconnected", zap.String("clientID", clientID))
	}
}

func (s *MCPSSEServer) broadcastEvent(event SSEEvent) {
	select {
	case s.broadcast <- event:
	default:
		s.logger.Warn("broadcast buffer full, event dropped", zap.String("eventID", event.ID))
	}
}

// NotifyReload tells all connected clients that a new site config is active
func (s *MCPSSEServer) NotifyReload(c siteconfig.SiteConfig, findings []siteconfig.Finding) {
	s.broadcastEvent(newSSEEvent("config_reloaded", map[string]interface{}{
		"title":    c.Title,
		"findings": len(findings),
	}))
}

// HandleSSE keeps a client connected to receive broadcasts
func (s *MCPSSEServer) HandleSSE(w http.ResponseWriter, r *http.Request) {
	setSSEHeaders(w)
	w.Header().Set("Access-Control-Allow-Headers", "Cache-Control")

	client := s.addClient(w)
	if client == nil {
		return
	}

	ticker := time.NewTicker(s.config.KeepaliveInterval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			s.removeClient(client.ID)
			return
		case <-client.Done:
			return
		case <-ticker.C:
			keepaliveEvent := newSSEEvent("keepalive", map[string]interface{}{"timestamp": time.Now()})
			if err := writeEvent(client, keepaliveEvent); err != nil {
				s.removeClient(client.ID)
				return
			}
		}
	}
}

// streamResult runs fn and writes start, result or error, and completion events
func (s *MCPSSEServer) streamResult(w http.ResponseWriter, name string, start interface{}, fn func() (interface{}, error)) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	setSSEHeaders(w)
	client := &SSEClient{ID: name, Writer: w, Flusher: flusher}

	if err := writeEvent(client, newSSEEvent(name+"_start", start)); err != nil {
		s.logger.Warn("failed to write start event", zap.String("event", name), zap.Error(err))
		return
	}

	result, err := fn()
	if err != nil {
		_ = writeEvent(client, newSSEEvent(name+"_error", map[string]string{"error": err.Error()}))
		return
	}
	if err := writeEvent(client, newSSEEvent(name+"_result", result)); err != nil {
		s.logger.Warn("failed to write result event", zap.String("event", name), zap.Error(err))
		return
	}
	_ = writeEvent(client, newSSEEvent(name+"_complete", map[string]string{"status": "completed"}))
}

// HandleValidateSSE validates the current site config and streams the findings
func (s *MCPSSEServer) HandleValidateSSE(w http.ResponseWriter, r *http.Request) {
	if s.service == nil {
		http.Error(w, "site service not configured", http.StatusServiceUnavailable)
		return
	}
	ctx := r.Context()
	s.streamResult(w, "validate", map[string]string{"title": s.service.SiteConfig().Title}, func() (interface{}, error) {
		findings, err := s.service.Validate(ctx)
		if err != nil {
			return nil, err
		}
		return newValidateResponse(findings), nil
	})
}

// HandleGetDocumentSSE streams the document for the posted path
func (s *MCPSSEServer) HandleGetDocumentSSE(w http.ResponseWriter, r *http.Request) {
	if s.service == nil {
		http.Error(w, "site service not configured", http.StatusServiceUnavailable)
		return
	}

	var request struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if request.Path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	s.streamResult(w, "document", map[string]string{"path": request.Path}, func() (interface{}, error) {
		document, err := s.service.GetDocument(ctx, request.Path)
		if err != nil {
			return nil, err
		}
		return GetDocumentResponse{Document: document}, nil
	})
}

// GetConnectedClients lists clients with the time they last received a frame
func (s *MCPSSEServer) GetConnectedClients() []map[string]interface{} {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	clients := make([]map[string]interface{}, 0, len(s.clients))
	for _, client := range s.clients {
		client.mu.Lock()
		lastSeen := client.LastSeen
		client.mu.Unlock()
		clients = append(clients, map[string]interface{}{
			"id":        client.ID,
			"lastSeen":  lastSeen,
			"connected": time.Since(lastSeen) < s.config.ClientTimeout,
		})
	}
	return clients
}

// GetStats reports client count and queued broadcasts
func (s *MCPSSEServer) GetStats() map[string]interface{} {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	return map[string]interface{}{
		"connectedClients": len(s.clients),
		"bufferSize":       len(s.broadcast),
		"serverVersion":    Version,
	}
}
