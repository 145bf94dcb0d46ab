package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/foomo/docsite-mcp/scrape"
	"github.com/foomo/docsite-mcp/siteconfig"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type linkRef struct {
	path string
	link string
}

// internalLinks lists the root-relative nav and sidebar links with their finding paths
func internalLinks(c siteconfig.SiteConfig) []linkRef {
	var refs []linkRef
	for i, item := range c.Theme.Nav {
		if siteconfig.IsRootRelative(item.Link) {
			refs = append(refs, linkRef{path: fmt.Sprintf("themeConfig.nav[%d].link", i), link: item.Link})
		}
	}
	for i, group := range c.Theme.Sidebar {
		for j, item := range group.Items {
			if siteconfig.IsRootRelative(item.Link) {
				refs = append(refs, linkRef{path: fmt.Sprintf("themeConfig.sidebar[%d].items[%d].link", i, j), link: item.Link})
			}
		}
	}
	return refs
}

// ProbeLinks requests every internal link from the rendered site and reports those
// not answering 200
func (s *service) ProbeLinks(ctx context.Context) ([]siteconfig.Finding, error) {
	if s.siteSettings.BaseURL == "" {
		return nil, ErrNoBaseURL
	}
	refs := internalLinks(s.SiteConfig())
	results := make([]*siteconfig.Finding, len(refs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.siteSettings.ProbeConcurrency)
	for i, ref := range refs {
		g.Go(func() error {
			url := s.siteSettings.pageURL(ref.link)
			code, err := scrape.Status(ctx, s.httpClient, url)
			switch {
			case err != nil:
				if ctx.Err() != nil {
					return ctx.Err()
				}
				results[i] = &siteconfig.Finding{Path: ref.path, Reason: fmt.Sprintf("request for %q failed: %v", ref.link, err)}
			case code != http.StatusOK:
				results[i] = &siteconfig.Finding{Path: ref.path, Reason: fmt.Sprintf("%q answered with status %d", ref.link, code)}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var findings []siteconfig.Finding
	for _, f := range results {
		if f != nil {
			findings = append(findings, *f)
		}
	}
	s.l.Info("probed links", zap.Int("links", len(refs)), zap.Int("findings", len(findings)))
	return findings, nil
}
