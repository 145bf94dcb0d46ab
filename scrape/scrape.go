package scrape

import (
	"context"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/foomo/docsite-mcp/service/vo"
)

// Scrape downloads a rendered page, extracts its summary and converts the element
// matched by selector to markdown
func Scrape(ctx context.Context, client *http.Client, url, selector string) (*vo.DocumentSummary, vo.Markdown, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download HTML: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP request failed with status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	summary := &vo.DocumentSummary{
		URL:            url,
		ContentSummary: extractContentSummary(doc),
	}

	selected := doc.Find(selector).First()
	if selected.Length() == 0 {
		return nil, "", fmt.Errorf("failed to extract node with selector '%s': no match", selector)
	}

	markdown, err := selectionToMarkdown(selected)
	if err != nil {
		return nil, "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return summary, markdown, nil
}

// Status returns the HTTP status code of url. Servers rejecting HEAD are asked with GET.
func Status(ctx context.Context, client *http.Client, url string) (int, error) {
	if client == nil {
		client = http.DefaultClient
	}
	code, err := requestStatus(ctx, client, http.MethodHead, url)
	if err != nil {
		return 0, err
	}
	if code == http.StatusMethodNotAllowed {
		return requestStatus(ctx, client, http.MethodGet, url)
	}
	return code, nil
}

func requestStatus(ctx context.Context, client *http.Client, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to request %s: %w", url, err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
