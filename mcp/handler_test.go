package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/foomo/docsite-mcp/service"
	"github.com/foomo/docsite-mcp/siteconfig"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func torchConfig() siteconfig.SiteConfig {
	return siteconfig.Build("My Torch Documentation", "La documentation d'un projet d'Epitech", siteconfig.ThemeConfig{
		Nav: []siteconfig.NavItem{
			{Text: "Home", Link: "/"},
			{Text: "Examples", Link: "/markdown-examples"},
			{Text: "VitePress", Link: "https://vitepress.dev"},
		},
		Sidebar: []siteconfig.SidebarGroup{{
			Text: "Choix Technique",
			Items: []siteconfig.SidebarItem{
				{Text: "Fichier de Configuration", Link: "/choix_technique"},
			},
		}},
		SocialLinks: []siteconfig.SocialLink{
			{Icon: "github", Link: "https://github.com/vuejs/vitepress"},
		},
	})
}

func newTestService(t *testing.T, c siteconfig.SiteConfig) service.Service {
	t.Helper()
	return service.NewService(zaptest.NewLogger(t), c, service.SiteSettings{}, nil)
}

func callRequest(name string, args any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Request: mcp.Request{
			Method: "tools/call",
		},
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestNewServer(t *testing.T) {
	server := NewServer(http.DefaultClient, nil)
	if server == nil {
		t.Fatal("NewServer() returned nil")
	}
	server = NewServer(nil, newTestService(t, torchConfig()))
	if server == nil {
		t.Fatal("NewServer() returned nil")
	}
}

func TestScrapeHandler(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Torch</title></head><body><main><h1>Hello</h1></main></body></html>`))
	}))
	defer site.Close()

	args := ScrapeRequest{
		URL:      site.URL,
		Selector: "main",
	}
	result, err := getScrapeHandler(site.Client())(context.Background(), callRequest("scrape", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var response ScrapeResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Equal(t, "# Hello", response.Markdown)
	require.NotNil(t, response.Summary)
	assert.Equal(t, "Torch", response.Summary.Title)
}

func TestScrapeHandlerValidation(t *testing.T) {
	scrapeHandler := getScrapeHandler(http.DefaultClient)
	for name, args := range map[string]ScrapeRequest{
		"missing url":      {Selector: "body"},
		"missing selector": {URL: "https://example.com"},
	} {
		t.Run(name, func(t *testing.T) {
			result, err := scrapeHandler(context.Background(), callRequest("scrape", args), args)
			if err != nil {
				t.Fatalf("scrapeHandler returned error: %v", err)
			}
			if result == nil {
				t.Fatal("scrapeHandler returned nil result")
			}
			if !result.IsError {
				t.Fatal("Expected error result")
			}
		})
	}
}

func TestSiteConfigHandler(t *testing.T) {
	result, err := getSiteConfigHandler(newTestService(t, torchConfig()))(context.Background(), callRequest("getSiteConfig", NoArguments{}), NoArguments{})
	require.NoError(t, err)

	var c siteconfig.SiteConfig
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &c))
	assert.Equal(t, torchConfig(), c)
}

func TestValidateHandler(t *testing.T) {
	handler := getValidateHandler(newTestService(t, torchConfig()))
	result, err := handler(context.Background(), callRequest("validateSiteConfig", NoArguments{}), NoArguments{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"valid":true,"findings":[]}`, resultText(t, result))

	c := torchConfig()
	c.Theme.Nav[2].Link = "not a url"
	handler = getValidateHandler(newTestService(t, c))
	result, err = handler(context.Background(), callRequest("validateSiteConfig", NoArguments{}), NoArguments{})
	require.NoError(t, err)

	var response ValidateResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.False(t, response.Valid)
	require.Len(t, response.Findings, 1)
	assert.Equal(t, "themeConfig.nav[2].link", response.Findings[0].Path)
}

func TestProbeLinksHandlerWithoutBaseURL(t *testing.T) {
	handler := getProbeLinksHandler(newTestService(t, torchConfig()))
	result, err := handler(context.Background(), callRequest("probeLinks", NoArguments{}), NoArguments{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestGetDocumentHandler(t *testing.T) {
	handler := getDocumentHandler(newTestService(t, torchConfig()))

	args := GetDocumentRequest{Path: "/choix_technique"}
	result, err := handler(context.Background(), callRequest("getDocument", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var response GetDocumentResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	require.NotNil(t, response.Document)
	assert.Equal(t, "Fichier de Configuration", response.Document.DocumentSummary.Title)
	assert.Equal(t, "Choix Technique", response.Document.Section)

	for _, path := range []string{"", "/missing"} {
		args := GetDocumentRequest{Path: path}
		result, err := handler(context.Background(), callRequest("getDocument", args), args)
		require.NoError(t, err)
		assert.True(t, result.IsError, "path %q", path)
	}
}

func TestConfigResourceHandler(t *testing.T) {
	handler := getConfigResourceHandler(newTestService(t, torchConfig()))
	request := mcp.ReadResourceRequest{}
	request.Params.URI = ConfigResourceURI

	contents, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, ConfigResourceURI, text.URI)
	assert.Equal(t, "application/json", text.MIMEType)
	assert.Contains(t, text.Text, `"themeConfig"`)
	assert.Contains(t, text.Text, `"socialLinks"`)
}

func TestValidateResponseMarshal(t *testing.T) {
	data, err := json.Marshal(newValidateResponse(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"valid":true,"findings":[]}`, string(data))
}

func newTestHTTPServer(t *testing.T, svc service.Service) (*McpHTTPSSEServer, *httptest.Server) {
	t.Helper()
	l := zaptest.NewLogger(t)
	h := NewMcpHTTPSSEServer(l, NewServer(nil, svc), svc, "/mcp", &SSEServerConfig{
		KeepaliveInterval: time.Minute,
		BufferSize:        10,
		ClientTimeout:     time.Minute,
	})
	s := httptest.NewServer(h)
	t.Cleanup(s.Close)
	return h, s
}

func TestSSEStats(t *testing.T) {
	_, s := newTestHTTPServer(t, newTestService(t, torchConfig()))

	resp, err := s.Client().Get(s.URL + "/mcp/sse/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stats map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, float64(0), stats["connectedClients"])
	assert.Equal(t, Version, stats["serverVersion"])
}

func TestHandleValidateSSE(t *testing.T) {
	c := torchConfig()
	c.Theme.Sidebar[0].Items[0].Link = "choix_technique"
	_, s := newTestHTTPServer(t, newTestService(t, c))

	resp, err := s.Client().Post(s.URL+"/mcp/sse/validate", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := readEvents(t, resp, "validate_complete")
	assert.Equal(t, []string{"validate_start", "validate_result", "validate_complete"}, eventNames(events))
	assert.Contains(t, events[1].data, "themeConfig.sidebar[0].items[0].link")
}

func TestHandleGetDocumentSSE(t *testing.T) {
	_, s := newTestHTTPServer(t, newTestService(t, torchConfig()))

	resp, err := s.Client().Post(s.URL+"/mcp/sse/document", "application/json", strings.NewReader(`{"path":"/missing"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	events := readEvents(t, resp, "document_error")
	assert.Equal(t, []string{"document_start", "document_error"}, eventNames(events))

	resp, err = s.Client().Post(s.URL+"/mcp/sse/document", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNotifyReload(t *testing.T) {
	h, s := newTestHTTPServer(t, newTestService(t, torchConfig()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL+"/mcp/sse", nil)
	require.NoError(t, err)
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, waitForClients(ctx, h.GetSSEServer(), 1))
	assert.Len(t, h.GetSSEServer().GetConnectedClients(), 1)

	h.GetSSEServer().NotifyReload(siteconfig.Build("Reloaded", "d", siteconfig.ThemeConfig{}), nil)
	events := readEvents(t, resp, "config_reloaded")
	assert.Equal(t, []string{"connected", "config_reloaded"}, eventNames(events))
	assert.Contains(t, events[1].data, `"title":"Reloaded"`)
}

type sseEvent struct {
	name string
	data string
}

// readEvents reads events from resp until one named last arrives
func readEvents(t *testing.T, resp *http.Response, last string) []sseEvent {
	t.Helper()
	var (
		events  []sseEvent
		current sseEvent
	)
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			events = append(events, current)
			if current.name == last {
				return events
			}
			current = sseEvent{}
		}
	}
	t.Fatalf("stream ended before %q: %v", last, scanner.Err())
	return nil
}

func eventNames(events []sseEvent) []string {
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.name
	}
	return names
}

// waitForClients blocks until n clients are connected or ctx is done
func waitForClients(ctx context.Context, s *MCPSSEServer, n int) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		s.clientsMu.RLock()
		count := len(s.clients)
		s.clientsMu.RUnlock()
		if count >= n {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
