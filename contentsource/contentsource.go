package contentsource

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	contentserverclient "github.com/foomo/contentserver/client"
	"github.com/foomo/contentserver/content"
	"github.com/foomo/contentserver/requests"
	"github.com/foomo/docsite-mcp/siteconfig"
)

// ErrRootNotFound is returned when the content server does not know the root node
var ErrRootNotFound = errors.New("contentsource: root node not found")

// NodeGetter is the part of the content server client used to read node trees
type NodeGetter interface {
	GetNodes(ctx context.Context, env *requests.Env, nodes map[string]*requests.Node) (map[string]*content.Node, error)
}

// NewClient creates a content server client talking HTTP to url
func NewClient(url string, httpClient *http.Client) *contentserverclient.Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return contentserverclient.New(
		contentserverclient.NewHTTPTransport(
			url,
			contentserverclient.HTTPTransportWithHTTPClient(httpClient),
		))
}

// Sidebar builds sidebar groups from the node tree below rootID: every child of the
// root becomes a group, every grandchild an item of that group.
func Sidebar(ctx context.Context, getter NodeGetter, env *requests.Env, rootID string, mimeTypes []string) ([]siteconfig.SidebarGroup, error) {
	nodes, err := getter.GetNodes(ctx, env, map[string]*requests.Node{
		rootID: {
			ID:        rootID,
			MimeTypes: mimeTypes,
			Expand:    true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get nodes for %s: %w", rootID, err)
	}
	root, ok := nodes[rootID]
	if !ok || root == nil {
		return nil, ErrRootNotFound
	}

	groups := []siteconfig.SidebarGroup{}
	for _, id := range root.Index {
		groupNode, ok := root.Nodes[id]
		if !ok || groupNode == nil || groupNode.Item == nil {
			continue
		}
		group := siteconfig.SidebarGroup{
			Text:  groupNode.Item.Name,
			Items: []siteconfig.SidebarItem{},
		}
		for _, childID := range groupNode.Index {
			child, ok := groupNode.Nodes[childID]
			if !ok || child == nil || child.Item == nil {
				continue
			}
			group.Items = append(group.Items, siteconfig.SidebarItem{
				Text: child.Item.Name,
				Link: child.Item.URI,
			})
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// Apply returns a copy of c with its sidebar replaced by groups
func Apply(c siteconfig.SiteConfig, groups []siteconfig.SidebarGroup) siteconfig.SiteConfig {
	theme := c.Theme
	theme.Sidebar = groups
	return siteconfig.Build(c.Title, c.Description, theme)
}
