package vo

type Markdown string

type ContentSummary struct {
	Title       string   `json:"title"`                 // Page title
	Description string   `json:"description,omitempty"` // Front matter or meta description
	Keywords    []string `json:"keywords,omitempty"`    // Keywords
}

type DocumentSummary struct {
	URL            string `json:"url"` // Root-relative link, or absolute when scraped
	ContentSummary `json:"contentSummary"`
}

// Document places a page in the site navigation
type Document struct {
	DocumentSummary DocumentSummary `json:"summary"`
	Section         string          `json:"section,omitempty"`  // Sidebar group heading
	Markdown        Markdown        `json:"markdown,omitempty"` // Full content in markdown

	Breadcrumb   []DocumentSummary `json:"breadcrumb,omitempty"`
	Children     []DocumentSummary `json:"children,omitempty"` // Sidebar pages below this path
	PrevSiblings []DocumentSummary `json:"prevSiblings,omitempty"`
	NextSiblings []DocumentSummary `json:"nextSiblings,omitempty"`
	Prev         *DocumentSummary  `json:"prev,omitempty"` // Previous page across the whole sidebar
	Next         *DocumentSummary  `json:"next,omitempty"` // Next page across the whole sidebar
}
