package scrape

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/foomo/docsite-mcp/service/vo"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var sanitizer = bluemonday.UGCPolicy()

// extractContentSummary reads title, meta description and meta keywords
func extractContentSummary(doc *goquery.Document) vo.ContentSummary {
	return vo.ContentSummary{
		Title:       strings.TrimSpace(doc.Find("title").First().Text()),
		Description: strings.TrimSpace(metaContent(doc, "description")),
		Keywords:    splitKeywords(metaContent(doc, "keywords")),
	}
}

func metaContent(doc *goquery.Document, name string) string {
	selector := `meta[name="` + name + `"]`
	return doc.Find(selector).First().AttrOr("content", "")
}

// splitKeywords splits a comma separated keyword list and drops empty entries
func splitKeywords(content string) []string {
	var keywords []string
	for _, keyword := range strings.Split(content, ",") {
		if trimmed := strings.TrimSpace(keyword); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}

// selectionToMarkdown sanitizes the selected fragment and converts it to markdown.
// Scripts, styles and inline handlers are dropped before conversion.
func selectionToMarkdown(sel *goquery.Selection) (vo.Markdown, error) {
	fragment, err := goquery.OuterHtml(sel)
	if err != nil {
		return "", err
	}
	node, err := html.Parse(strings.NewReader(sanitizer.Sanitize(fragment)))
	if err != nil {
		return "", err
	}
	markdownBytes, err := htmltomarkdown.ConvertNode(node)
	if err != nil {
		return "", err
	}
	return vo.Markdown(strings.TrimSpace(string(markdownBytes))), nil
}
