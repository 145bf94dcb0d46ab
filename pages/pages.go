package pages

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrNotFound is returned when no page exists for a link
var ErrNotFound = errors.New("pages: not found")

// Page is a Markdown file of the content tree
type Page struct {
	Link        string // Normalized root-relative link, e.g. "/guide/intro"
	File        string // Path relative to the content dir
	Title       string
	Description string
	Body        string // Markdown without front matter
}

type frontMatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Index maps normalized links to the pages of a content dir
type Index struct {
	pages map[string]*Page
}

var skipDirs = map[string]bool{
	"node_modules": true,
	"public":       true,
}

// Load walks dir and indexes every Markdown file
func Load(dir string) (*Index, error) {
	idx := &Index{pages: map[string]*Page{}}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && (strings.HasPrefix(d.Name(), ".") || skipDirs[d.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", p, err)
		}
		page, err := readPage(p, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if _, ok := idx.pages[page.Link]; !ok {
			idx.pages[page.Link] = page
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index content dir %s: %w", dir, err)
	}
	return idx, nil
}

func readPage(file, rel string) (*Page, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read page %s: %w", file, err)
	}
	var fm frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		// broken front matter, keep the file as plain markdown
		body = data
		fm = frontMatter{}
	}

	link := linkFromFile(rel)
	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = firstHeading(body)
	}
	if title == "" {
		title = titleFromLink(link)
	}
	return &Page{
		Link:        link,
		File:        rel,
		Title:       title,
		Description: strings.TrimSpace(fm.Description),
		Body:        string(body),
	}, nil
}

func linkFromFile(rel string) string {
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	base := path.Base(rel)
	if strings.EqualFold(base, "index") || strings.EqualFold(base, "README") {
		rel = path.Dir(rel)
		if rel == "." {
			rel = ""
		}
	}
	return NormalizeLink("/" + rel)
}

// firstHeading returns the text of the first level-1 heading
func firstHeading(source []byte) string {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))
	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if heading.Level != 1 {
			return ast.WalkSkipChildren, nil
		}
		title = strings.TrimSpace(nodeText(heading, source))
		return ast.WalkStop, nil
	})
	return title
}

func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				sb.WriteByte(' ')
			}
			continue
		}
		sb.WriteString(nodeText(c, source))
	}
	return sb.String()
}

func titleFromLink(link string) string {
	if link == "/" {
		return "Home"
	}
	s := path.Base(link)
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return cases.Title(language.English).String(s)
}

// NormalizeLink reduces a root-relative link to the form used as index key:
// no query, no anchor, no .md/.html suffix, no trailing /index, no trailing slash.
func NormalizeLink(link string) string {
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}
	for _, ext := range []string{".md", ".html"} {
		link = strings.TrimSuffix(link, ext)
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	link = path.Clean(link)
	if link == "/index" || strings.HasSuffix(link, "/index") {
		link = path.Dir(link)
	}
	return link
}

// Has reports whether a page exists for link
func (i *Index) Has(link string) bool {
	if i == nil {
		return false
	}
	_, ok := i.pages[NormalizeLink(link)]
	return ok
}

// Get returns the page for link
func (i *Index) Get(link string) (*Page, error) {
	if i == nil {
		return nil, ErrNotFound
	}
	page, ok := i.pages[NormalizeLink(link)]
	if !ok {
		return nil, ErrNotFound
	}
	return page, nil
}

// Links returns all indexed links, sorted
func (i *Index) Links() []string {
	if i == nil {
		return nil
	}
	links := make([]string, 0, len(i.pages))
	for link := range i.pages {
		links = append(links, link)
	}
	sort.Strings(links)
	return links
}
