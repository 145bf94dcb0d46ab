package siteconfig

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Finding is a single validation result. Path uses the JSON field names,
// e.g. "themeConfig.sidebar[0].items[2].link".
type Finding struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (f Finding) String() string {
	return f.Path + ": " + f.Reason
}

// PageSet answers whether a root-relative link points to an existing content page
type PageSet interface {
	Has(link string) bool
}

type validateOptions struct {
	pages      PageSet
	icons      map[string]struct{}
	duplicates bool
}

func (o *validateOptions) knownIcon(icon string) bool {
	if IsKnownIcon(icon) {
		return true
	}
	_, ok := o.icons[icon]
	return ok
}

type ValidateOption func(o *validateOptions)

// WithPages reports root-relative links that have no content page in pages
func WithPages(pages PageSet) ValidateOption {
	return func(o *validateOptions) {
		o.pages = pages
	}
}

// WithIcons accepts icons in addition to KnownIcons()
func WithIcons(icons ...string) ValidateOption {
	return func(o *validateOptions) {
		for _, icon := range icons {
			o.icons[icon] = struct{}{}
		}
	}
}

// WithDuplicateLinks reports links used more than once within the nav or within the sidebar
func WithDuplicateLinks() ValidateOption {
	return func(o *validateOptions) {
		o.duplicates = true
	}
}

// Validate checks c and returns its findings. An empty result means valid.
func Validate(c SiteConfig, opts ...ValidateOption) []Finding {
	o := &validateOptions{icons: map[string]struct{}{}}
	for _, opt := range opts {
		opt(o)
	}

	v := &validator{opts: o}
	if strings.TrimSpace(c.Title) == "" {
		v.add("title", "must not be empty")
	}
	if strings.TrimSpace(c.Description) == "" {
		v.add("description", "must not be empty")
	}

	navLinks := map[string]bool{}
	for i, item := range c.Theme.Nav {
		path := fmt.Sprintf("themeConfig.nav[%d]", i)
		if strings.TrimSpace(item.Text) == "" {
			v.add(path+".text", "must not be empty")
		}
		v.link(path+".link", item.Link, navLinks)
	}

	sidebarLinks := map[string]bool{}
	for i, group := range c.Theme.Sidebar {
		groupPath := fmt.Sprintf("themeConfig.sidebar[%d]", i)
		if strings.TrimSpace(group.Text) == "" {
			v.add(groupPath+".text", "must not be empty")
		}
		for j, item := range group.Items {
			path := fmt.Sprintf("%s.items[%d]", groupPath, j)
			if strings.TrimSpace(item.Text) == "" {
				v.add(path+".text", "must not be empty")
			}
			v.link(path+".link", item.Link, sidebarLinks)
		}
	}

	for i, social := range c.Theme.SocialLinks {
		if !o.knownIcon(social.Icon) {
			v.add(fmt.Sprintf("themeConfig.socialLinks[%d].icon", i), fmt.Sprintf("unknown icon %q", social.Icon))
		}
	}
	return v.findings
}

type validator struct {
	opts     *validateOptions
	findings []Finding
}

func (v *validator) add(path, reason string) {
	v.findings = append(v.findings, Finding{Path: path, Reason: reason})
}

func (v *validator) link(path, link string, seen map[string]bool) {
	switch {
	case IsExternalURL(link):
	case IsRootRelative(link):
		if v.opts.pages != nil && !v.opts.pages.Has(link) {
			v.add(path, fmt.Sprintf("no content page for %q", link))
		}
	case strings.HasPrefix(link, "//"):
		v.add(path, fmt.Sprintf("%q is protocol-relative, use a scheme or a root-relative path", link))
		return
	default:
		v.add(path, fmt.Sprintf("%q is neither an external URL nor a root-relative path", link))
		return
	}
	if v.opts.duplicates {
		key := linkKey(link)
		if seen[key] {
			v.add(path, fmt.Sprintf("duplicate link %q", link))
		}
		seen[key] = true
	}
}

// linkKey maps root-relative links to the page they open: "/guide", "/guide/" and
// "/guide/#intro" share a key. External URLs are compared as written.
func linkKey(link string) string {
	if !IsRootRelative(link) {
		return link
	}
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}
	return path.Clean(link)
}

// IsExternalURL reports whether link is an absolute URL with scheme and host
func IsExternalURL(link string) bool {
	if strings.ContainsAny(link, " \t\n") {
		return false
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// IsRootRelative reports whether link is a path resolved against the site's own content
func IsRootRelative(link string) bool {
	return strings.HasPrefix(link, "/") && !strings.HasPrefix(link, "//")
}
