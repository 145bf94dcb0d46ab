package cmd

import (
	"context"
	"fmt"

	"github.com/foomo/contentserver/requests"
	"github.com/foomo/docsite-mcp/config"
	"github.com/foomo/docsite-mcp/contentsource"
	"github.com/foomo/docsite-mcp/service"
	"github.com/foomo/docsite-mcp/siteconfig"
	"go.uber.org/zap"
)

// loadSite reads the site config file and replaces the sidebar with the content
// server tree when one is configured
func loadSite(ctx context.Context, l *zap.Logger, settings config.Settings, getter contentsource.NodeGetter) (siteconfig.SiteConfig, error) {
	c, err := siteconfig.Load(settings.ConfigFile)
	if err != nil {
		return siteconfig.SiteConfig{}, err
	}
	l.Debug("loaded site config", zap.String("file", settings.ConfigFile), zap.String("title", c.Title))

	cs := settings.ContentServer
	if !cs.Enabled() {
		return c, nil
	}
	if getter == nil {
		getter = contentsource.NewClient(cs.URL, nil)
	}
	env := &requests.Env{}
	if cs.Dimension != "" {
		env.Dimensions = []string{cs.Dimension}
	}
	groups, err := contentsource.Sidebar(ctx, getter, env, cs.Root, cs.MimeTypes)
	if err != nil {
		return siteconfig.SiteConfig{}, fmt.Errorf("failed to import sidebar from %s: %w", cs.URL, err)
	}
	l.Info("imported sidebar", zap.String("root", cs.Root), zap.Int("groups", len(groups)))
	return contentsource.Apply(c, groups), nil
}

func siteSettings(settings config.Settings) service.SiteSettings {
	return service.SiteSettings{
		BaseURL:          settings.BaseURL,
		ContentSelector:  settings.Selector,
		ContentDir:       settings.ContentDir,
		Icons:            settings.Icons,
		ReportDuplicates: settings.Duplicates,
		ProbeConcurrency: settings.ProbeConcurrency,
	}
}
