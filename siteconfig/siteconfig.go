package siteconfig

import (
	"encoding/json"
	"slices"
)

// SiteConfig is the root configuration handed to the site generator
type SiteConfig struct {
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description" yaml:"description"`
	Theme       ThemeConfig `json:"themeConfig" yaml:"themeConfig"`
}

// ThemeConfig holds the navigation settings of the default theme
type ThemeConfig struct {
	Nav         []NavItem      `json:"nav" yaml:"nav"`
	Sidebar     []SidebarGroup `json:"sidebar" yaml:"sidebar"`
	SocialLinks []SocialLink   `json:"socialLinks" yaml:"socialLinks"`
}

// NavItem is one entry of the top navigation bar
type NavItem struct {
	Text string `json:"text" yaml:"text"` // Display label
	Link string `json:"link" yaml:"link"` // Root-relative path or external URL
}

// SidebarGroup is a labeled, collapsible section of the sidebar
type SidebarGroup struct {
	Text      string        `json:"text" yaml:"text"`
	Items     []SidebarItem `json:"items" yaml:"items"`
	Collapsed bool          `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
}

// SidebarItem is one page entry of a sidebar group
type SidebarItem struct {
	Text string `json:"text" yaml:"text"`
	Link string `json:"link" yaml:"link"`
}

// SocialLink is an icon linking to an external profile
type SocialLink struct {
	Icon string `json:"icon" yaml:"icon"`
	Link string `json:"link" yaml:"link"`
}

// Build assembles a SiteConfig. The sequences are cloned, so the caller may reuse
// its slices without affecting the returned value.
func Build(title, description string, theme ThemeConfig) SiteConfig {
	return SiteConfig{
		Title:       title,
		Description: description,
		Theme:       theme.clone(),
	}
}

func (t ThemeConfig) clone() ThemeConfig {
	sidebar := slices.Clone(t.Sidebar)
	for i := range sidebar {
		sidebar[i].Items = slices.Clone(sidebar[i].Items)
	}
	return ThemeConfig{
		Nav:         slices.Clone(t.Nav),
		Sidebar:     sidebar,
		SocialLinks: slices.Clone(t.SocialLinks),
	}
}

// MarshalJSON emits empty sequences as arrays, the generator does not accept null
func (t ThemeConfig) MarshalJSON() ([]byte, error) {
	type themeConfig ThemeConfig
	out := themeConfig(t)
	if out.Nav == nil {
		out.Nav = []NavItem{}
	}
	if out.Sidebar == nil {
		out.Sidebar = []SidebarGroup{}
	}
	if out.SocialLinks == nil {
		out.SocialLinks = []SocialLink{}
	}
	return json.Marshal(out)
}

// MarshalJSON emits an empty items list as an array
func (g SidebarGroup) MarshalJSON() ([]byte, error) {
	type sidebarGroup SidebarGroup
	out := sidebarGroup(g)
	if out.Items == nil {
		out.Items = []SidebarItem{}
	}
	return json.Marshal(out)
}
