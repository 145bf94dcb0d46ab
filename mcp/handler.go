package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/foomo/docsite-mcp/scrape"
	"github.com/foomo/docsite-mcp/service"
	"github.com/foomo/docsite-mcp/service/vo"
	"github.com/foomo/docsite-mcp/siteconfig"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	Version = "0.1.0"

	ConfigResourceURI = "docsite://config"
)

type ScrapeRequest struct {
	URL      string `json:"url"`      // The URL to scrape
	Selector string `json:"selector"` // CSS selector to extract content
}

type ScrapeResponse struct {
	Summary  *vo.DocumentSummary `json:"summary"`  // Title, description and keywords of the page
	Markdown string              `json:"markdown"` // The extracted content in markdown format
}

type GetDocumentRequest struct {
	Path string `json:"path"` // Root-relative path of the page
}

type GetDocumentResponse struct {
	Document *vo.Document `json:"document"`
}

// NoArguments is the argument type of tools without parameters
type NoArguments struct{}

type ValidateResponse struct {
	Valid    bool                 `json:"valid"`
	Findings []siteconfig.Finding `json:"findings"`
}

// NewServer creates a new MCP server. The site tools are only registered when a service is provided.
func NewServer(client *http.Client, serviceInstance service.Service) *server.MCPServer {
	if client == nil {
		client = http.DefaultClient
	}
	s := server.NewMCPServer(
		"Docsite MCP",
		Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	scrapeTool := mcp.NewTool("scrape",
		mcp.WithDescription("Scrape content from a webpage and convert it to markdown"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the webpage to scrape"),
		),
		mcp.WithString("selector",
			mcp.Required(),
			mcp.Description("CSS selector to extract specific content (e.g., 'main', '#content', '.vp-doc')"),
		),
	)
	s.AddTool(scrapeTool, mcp.NewTypedToolHandler(getScrapeHandler(client)))

	if serviceInstance == nil {
		return s
	}

	s.AddTool(mcp.NewTool("getSiteConfig",
		mcp.WithDescription("Get the site configuration: title, description, nav, sidebar and social links"),
	), mcp.NewTypedToolHandler(getSiteConfigHandler(serviceInstance)))

	s.AddTool(mcp.NewTool("validateSiteConfig",
		mcp.WithDescription("Validate nav and sidebar links and social icons, and check internal links against the content pages"),
	), mcp.NewTypedToolHandler(getValidateHandler(serviceInstance)))

	s.AddTool(mcp.NewTool("probeLinks",
		mcp.WithDescription("Request every internal link from the rendered site and report links not answering 200"),
	), mcp.NewTypedToolHandler(getProbeLinksHandler(serviceInstance)))

	s.AddTool(mcp.NewTool("getDocument",
		mcp.WithDescription("Get a page with its place in the navigation: breadcrumb, siblings, previous and next page, children"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Root-relative path of the page, e.g. '/guide/getting-started'"),
		),
	), mcp.NewTypedToolHandler(getDocumentHandler(serviceInstance)))

	s.AddResource(mcp.NewResource(ConfigResourceURI, "Site configuration",
		mcp.WithResourceDescription("The site configuration in the shape the site generator expects"),
		mcp.WithMIMEType("application/json"),
	), getConfigResourceHandler(serviceInstance))

	return s
}

// toolResultJSON marshals v into a text result
func toolResultJSON(v any) *mcp.CallToolResult {
	responseBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err))
	}
	return mcp.NewToolResultText(string(responseBytes))
}

func getScrapeHandler(client *http.Client) func(ctx context.Context, request mcp.CallToolRequest, args ScrapeRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ScrapeRequest) (*mcp.CallToolResult, error) {
		if args.URL == "" {
			return mcp.NewToolResultError("url is required"), nil
		}
		if args.Selector == "" {
			return mcp.NewToolResultError("selector is required"), nil
		}

		summary, markdown, err := scrape.Scrape(ctx, client, args.URL, args.Selector)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to scrape content: %v", err)), nil
		}
		return toolResultJSON(ScrapeResponse{
			Summary:  summary,
			Markdown: string(markdown),
		}), nil
	}
}

func getSiteConfigHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args NoArguments) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args NoArguments) (*mcp.CallToolResult, error) {
		return toolResultJSON(serviceInstance.SiteConfig()), nil
	}
}

func getValidateHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args NoArguments) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args NoArguments) (*mcp.CallToolResult, error) {
		findings, err := serviceInstance.Validate(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to validate site config: %v", err)), nil
		}
		return toolResultJSON(newValidateResponse(findings)), nil
	}
}

func getProbeLinksHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args NoArguments) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args NoArguments) (*mcp.CallToolResult, error) {
		findings, err := serviceInstance.ProbeLinks(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to probe links: %v", err)), nil
		}
		return toolResultJSON(newValidateResponse(findings)), nil
	}
}

func getDocumentHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args GetDocumentRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args GetDocumentRequest) (*mcp.CallToolResult, error) {
		if args.Path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}

		document, err := serviceInstance.GetDocument(ctx, args.Path)
		if errors.Is(err, service.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("no document for path %q", args.Path)), nil
		} else if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get document: %v", err)), nil
		}
		return toolResultJSON(GetDocumentResponse{Document: document}), nil
	}
}

func getConfigResourceHandler(serviceInstance service.Service) server.ResourceHandlerFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		var buf bytes.Buffer
		if err := siteconfig.Encode(&buf, serviceInstance.SiteConfig()); err != nil {
			return nil, fmt.Errorf("failed to encode site config: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ConfigResourceURI,
				MIMEType: "application/json",
				Text:     buf.String(),
			},
		}, nil
	}
}

func newValidateResponse(findings []siteconfig.Finding) ValidateResponse {
	if findings == nil {
		findings = []siteconfig.Finding{}
	}
	return ValidateResponse{Valid: len(findings) == 0, Findings: findings}
}
