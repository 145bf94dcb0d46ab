package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/foomo/docsite-mcp/pages"
	"github.com/foomo/docsite-mcp/scrape"
	"github.com/foomo/docsite-mcp/service/vo"
	"github.com/foomo/docsite-mcp/siteconfig"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned for paths that are neither in the navigation nor in the content dir
	ErrNotFound = errors.New("service: document not found")
	// ErrNoBaseURL is returned by operations that need a rendered site
	ErrNoBaseURL = errors.New("service: no base url configured")
)

const defaultProbeConcurrency = 8

type Service interface {
	SiteConfig() siteconfig.SiteConfig
	Swap(c siteconfig.SiteConfig)
	Validate(ctx context.Context) ([]siteconfig.Finding, error)
	ProbeLinks(ctx context.Context) ([]siteconfig.Finding, error)
	GetDocument(ctx context.Context, path string) (*vo.Document, error)
}

type SiteSettings struct {
	BaseURL          string // Rendered site, e.g. "http://localhost:5173"
	ContentSelector  string
	ContentDir       string   // Markdown source tree
	Icons            []string // Accepted in addition to siteconfig.KnownIcons()
	ReportDuplicates bool
	ProbeConcurrency int
}

func (settings SiteSettings) pageURL(link string) string {
	return strings.TrimRight(settings.BaseURL, "/") + link
}

type service struct {
	l            *zap.Logger
	httpClient   *http.Client
	siteSettings SiteSettings
	config       atomic.Pointer[siteconfig.SiteConfig]
}

func NewService(
	l *zap.Logger,
	c siteconfig.SiteConfig,
	siteSettings SiteSettings,
	httpClient *http.Client,
) Service {
	if l == nil {
		l = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if siteSettings.ContentSelector == "" {
		siteSettings.ContentSelector = "main"
	}
	if siteSettings.ProbeConcurrency <= 0 {
		siteSettings.ProbeConcurrency = defaultProbeConcurrency
	}
	s := &service{
		l:            l,
		httpClient:   httpClient,
		siteSettings: siteSettings,
	}
	s.config.Store(&c)
	return s
}

func (s *service) SiteConfig() siteconfig.SiteConfig {
	return *s.config.Load()
}

// Swap installs a new config, readers holding the old value are unaffected
func (s *service) Swap(c siteconfig.SiteConfig) {
	s.config.Store(&c)
	s.l.Info("site config swapped",
		zap.String("title", c.Title),
		zap.Int("nav", len(c.Theme.Nav)),
		zap.Int("sidebar", len(c.Theme.Sidebar)),
	)
}

// pageIndex loads the content dir, nil when none is configured
func (s *service) pageIndex() (*pages.Index, error) {
	if s.siteSettings.ContentDir == "" {
		return nil, nil
	}
	idx, err := pages.Load(s.siteSettings.ContentDir)
	if err != nil {
		return nil, err
	}
	s.l.Debug("indexed content dir", zap.String("dir", s.siteSettings.ContentDir), zap.Strings("pages", idx.Links()))
	return idx, nil
}

func (s *service) Validate(ctx context.Context) ([]siteconfig.Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := []siteconfig.ValidateOption{siteconfig.WithIcons(s.siteSettings.Icons...)}
	if s.siteSettings.ReportDuplicates {
		opts = append(opts, siteconfig.WithDuplicateLinks())
	}
	idx, err := s.pageIndex()
	if err != nil {
		return nil, err
	}
	if idx != nil {
		opts = append(opts, siteconfig.WithPages(idx))
	}
	findings := siteconfig.Validate(s.SiteConfig(), opts...)
	s.l.Debug("validated site config", zap.Int("findings", len(findings)))
	return findings, nil
}

func (s *service) GetDocument(ctx context.Context, path string) (*vo.Document, error) {
	link := pages.NormalizeLink(path)
	c := s.SiteConfig()
	idx, err := s.pageIndex()
	if err != nil {
		return nil, err
	}

	nav := newNavigation(c)
	doc := &vo.Document{}
	home := nav.home(c, idx)

	if pos, ok := nav.find(link); ok {
		entry := nav.entries[pos]
		group := c.Theme.Sidebar[entry.group]
		doc.DocumentSummary = summarize(entry.item.Text, entry.item.Link, idx)
		doc.Section = group.Text
		for i, sibling := range group.Items {
			switch {
			case i < entry.index:
				doc.PrevSiblings = append(doc.PrevSiblings, summarize(sibling.Text, sibling.Link, idx))
			case i > entry.index:
				doc.NextSiblings = append(doc.NextSiblings, summarize(sibling.Text, sibling.Link, idx))
			}
		}
		doc.Prev, doc.Next = nav.neighbours(pos, idx)
		if link != "/" {
			doc.Breadcrumb = []vo.DocumentSummary{home, {ContentSummary: vo.ContentSummary{Title: group.Text}}}
		}
	} else if item, ok := navItem(c, link); ok {
		doc.DocumentSummary = summarize(item.Text, item.Link, idx)
		if link != "/" {
			doc.Breadcrumb = []vo.DocumentSummary{home}
		}
	} else if page, err := idx.Get(link); err == nil {
		doc.DocumentSummary = summarize(page.Title, page.Link, idx)
		if link != "/" {
			doc.Breadcrumb = []vo.DocumentSummary{home}
		}
	} else {
		return nil, ErrNotFound
	}
	doc.Children = nav.children(link, idx)

	if page, err := idx.Get(link); err == nil {
		doc.Markdown = vo.Markdown(strings.TrimSpace(page.Body))
	}
	if s.siteSettings.BaseURL != "" {
		s.loadRendered(ctx, doc, link)
	}
	return doc, nil
}

// loadRendered replaces the markdown with the rendered page and fills missing summary fields
func (s *service) loadRendered(ctx context.Context, doc *vo.Document, link string) {
	url := s.siteSettings.pageURL(link)
	summary, markdown, err := scrape.Scrape(ctx, s.httpClient, url, s.siteSettings.ContentSelector)
	if err != nil {
		s.l.Warn("failed to scrape rendered page, keeping source markdown", zap.String("url", url), zap.Error(err))
		return
	}
	doc.Markdown = markdown
	if doc.DocumentSummary.Description == "" {
		doc.DocumentSummary.Description = summary.Description
	}
	if len(doc.DocumentSummary.Keywords) == 0 {
		doc.DocumentSummary.Keywords = summary.Keywords
	}
}

func summarize(title, link string, idx *pages.Index) vo.DocumentSummary {
	summary := vo.DocumentSummary{
		URL:            link,
		ContentSummary: vo.ContentSummary{Title: title},
	}
	if !siteconfig.IsRootRelative(link) {
		return summary
	}
	if page, err := idx.Get(link); err == nil {
		summary.Description = page.Description
		if summary.Title == "" {
			summary.Title = page.Title
		}
	}
	return summary
}

func navItem(c siteconfig.SiteConfig, link string) (siteconfig.NavItem, bool) {
	for _, item := range c.Theme.Nav {
		if siteconfig.IsRootRelative(item.Link) && pages.NormalizeLink(item.Link) == link {
			return item, true
		}
	}
	return siteconfig.NavItem{}, false
}
