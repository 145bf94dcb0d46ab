package service

import (
	"strings"

	"github.com/foomo/docsite-mcp/pages"
	"github.com/foomo/docsite-mcp/service/vo"
	"github.com/foomo/docsite-mcp/siteconfig"
)

type navEntry struct {
	group int
	index int
	item  siteconfig.SidebarItem
	link  string // normalized
}

// navigation is the sidebar flattened in reading order
type navigation struct {
	entries []navEntry
}

func newNavigation(c siteconfig.SiteConfig) *navigation {
	nav := &navigation{}
	for g, group := range c.Theme.Sidebar {
		for i, item := range group.Items {
			if !siteconfig.IsRootRelative(item.Link) {
				continue
			}
			nav.entries = append(nav.entries, navEntry{
				group: g,
				index: i,
				item:  item,
				link:  pages.NormalizeLink(item.Link),
			})
		}
	}
	return nav
}

func (n *navigation) find(link string) (int, bool) {
	for pos, entry := range n.entries {
		if entry.link == link {
			return pos, true
		}
	}
	return 0, false
}

// neighbours returns the previous and next page across group boundaries
func (n *navigation) neighbours(pos int, idx *pages.Index) (prev, next *vo.DocumentSummary) {
	if pos > 0 {
		entry := n.entries[pos-1]
		summary := summarize(entry.item.Text, entry.item.Link, idx)
		prev = &summary
	}
	if pos < len(n.entries)-1 {
		entry := n.entries[pos+1]
		summary := summarize(entry.item.Text, entry.item.Link, idx)
		next = &summary
	}
	return prev, next
}

// children returns the sidebar pages located below link
func (n *navigation) children(link string, idx *pages.Index) []vo.DocumentSummary {
	if link == "/" {
		return nil
	}
	var children []vo.DocumentSummary
	for _, entry := range n.entries {
		if strings.HasPrefix(entry.link, link+"/") {
			children = append(children, summarize(entry.item.Text, entry.item.Link, idx))
		}
	}
	return children
}

// home is the first breadcrumb entry: the nav item pointing to "/", else the site title
func (n *navigation) home(c siteconfig.SiteConfig, idx *pages.Index) vo.DocumentSummary {
	if item, ok := navItem(c, "/"); ok {
		return summarize(item.Text, item.Link, idx)
	}
	return summarize(c.Title, "/", idx)
}
