package siteconfig

import (
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageSet map[string]bool

func (p pageSet) Has(link string) bool { return p[link] }

func TestValidateTorchExample(t *testing.T) {
	findings := Validate(torchConfig())
	assert.Empty(t, findings, spew.Sdump(findings))
}

func TestValidateInvalidNavLink(t *testing.T) {
	theme := torchTheme()
	theme.Nav = append(theme.Nav, NavItem{Text: "Broken", Link: "not a url"})

	findings := Validate(Build("t", "d", theme))
	require.Len(t, findings, 1, spew.Sdump(findings))
	assert.Equal(t, "themeConfig.nav[2].link", findings[0].Path)
}

func TestValidateIsIdempotent(t *testing.T) {
	theme := torchTheme()
	theme.Nav[1].Link = "relative/path"
	theme.SocialLinks = append(theme.SocialLinks, SocialLink{Icon: "myspace", Link: "https://myspace.com"})
	c := Build("", "d", theme)

	first := Validate(c)
	second := Validate(c)
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestValidateEmptySidebarGroup(t *testing.T) {
	theme := torchTheme()
	theme.Sidebar = append(theme.Sidebar, SidebarGroup{Text: "Coming soon", Items: []SidebarItem{}})
	assert.Empty(t, Validate(Build("t", "d", theme)))
}

func TestValidateEmptyConfig(t *testing.T) {
	findings := Validate(Build("", " ", ThemeConfig{}))
	assert.Equal(t, []Finding{
		{Path: "title", Reason: "must not be empty"},
		{Path: "description", Reason: "must not be empty"},
	}, findings)
}

func TestValidateLinks(t *testing.T) {
	tests := []struct {
		name  string
		link  string
		valid bool
	}{
		{name: "root", link: "/", valid: true},
		{name: "root-relative", link: "/choix_technique", valid: true},
		{name: "with anchor", link: "/guide/intro#setup", valid: true},
		{name: "https", link: "https://vitepress.dev/reference/site-config", valid: true},
		{name: "http", link: "http://localhost:5173/", valid: true},
		{name: "relative", link: "guide/intro", valid: false},
		{name: "empty", link: "", valid: false},
		{name: "spaces", link: "not a url", valid: false},
		{name: "scheme without host", link: "mailto:docs@example.com", valid: false},
		{name: "protocol-relative", link: "//cdn.example.com/x", valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Build("t", "d", ThemeConfig{
				Sidebar: []SidebarGroup{{Text: "g", Items: []SidebarItem{{Text: "i", Link: tt.link}}}},
			})
			findings := Validate(c)
			if tt.valid {
				assert.Empty(t, findings)
				return
			}
			require.Len(t, findings, 1)
			assert.Equal(t, "themeConfig.sidebar[0].items[0].link", findings[0].Path)
		})
	}
}

func TestValidateIcons(t *testing.T) {
	theme := ThemeConfig{SocialLinks: []SocialLink{
		{Icon: "github", Link: "https://github.com/foomo"},
		{Icon: "gitlab", Link: "https://gitlab.com/foomo"},
		{Icon: "x", Link: "/about"},
	}}
	c := Build("t", "d", theme)

	findings := Validate(c)
	require.Len(t, findings, 1, spew.Sdump(findings))
	assert.Equal(t, "themeConfig.socialLinks[1].icon", findings[0].Path)

	assert.Empty(t, Validate(c, WithIcons("gitlab")))
}

func TestValidateRootRelativeSocialLink(t *testing.T) {
	theme := torchTheme()
	theme.SocialLinks = []SocialLink{{Icon: "github", Link: "/choix_technique"}}
	findings := Validate(Build("My Torch Documentation", "La documentation d'un projet d'Epitech", theme))
	assert.Empty(t, findings, spew.Sdump(findings))
}

func TestKnownIconsIsACopy(t *testing.T) {
	icons := KnownIcons()
	require.Contains(t, icons, "github")
	icons[0] = "myspace"

	assert.NotContains(t, KnownIcons(), "myspace")
	assert.False(t, IsKnownIcon("myspace"))

	c := Build("t", "d", ThemeConfig{SocialLinks: []SocialLink{{Icon: "myspace", Link: "https://myspace.com"}}})
	findings := Validate(c)
	require.Len(t, findings, 1)
	assert.Equal(t, "themeConfig.socialLinks[0].icon", findings[0].Path)
}

func TestValidateWithPages(t *testing.T) {
	theme := torchTheme()
	theme.Sidebar[0].Items = append(theme.Sidebar[0].Items, SidebarItem{Text: "Ghost", Link: "/ghost"})
	theme.Nav = append(theme.Nav, NavItem{Text: "VitePress", Link: "https://vitepress.dev"})
	c := Build("t", "d", theme)

	pages := pageSet{"/": true, "/markdown-examples": true, "/choix_technique": true}
	findings := Validate(c, WithPages(pages))
	require.Len(t, findings, 1, spew.Sdump(findings))
	assert.Equal(t, "themeConfig.sidebar[0].items[1].link", findings[0].Path)
	assert.Contains(t, findings[0].Reason, "no content page")
}

func TestValidateDuplicateLinks(t *testing.T) {
	theme := torchTheme()
	theme.Nav = append(theme.Nav, NavItem{Text: "Home again", Link: "/"})
	theme.Sidebar[0].Items = append(theme.Sidebar[0].Items, SidebarItem{Text: "Home", Link: "/"})
	c := Build("t", "d", theme)

	assert.Empty(t, Validate(c))

	findings := Validate(c, WithDuplicateLinks())
	require.Len(t, findings, 1, spew.Sdump(findings))
	assert.Equal(t, "themeConfig.nav[2].link", findings[0].Path)
}

func TestValidateDuplicateLinksNormalized(t *testing.T) {
	c := Build("t", "d", ThemeConfig{
		Nav: []NavItem{
			{Text: "Guide", Link: "/guide"},
			{Text: "Guide again", Link: "/guide/"},
			{Text: "Intro", Link: "/guide#intro"},
			{Text: "VitePress", Link: "https://vitepress.dev"},
			{Text: "VitePress again", Link: "https://vitepress.dev/"},
		},
	})

	findings := Validate(c, WithDuplicateLinks())
	require.Len(t, findings, 2, spew.Sdump(findings))
	assert.Equal(t, "themeConfig.nav[1].link", findings[0].Path)
	assert.Equal(t, "themeConfig.nav[2].link", findings[1].Path)
}

func TestValidateEmptyTexts(t *testing.T) {
	c := Build("t", "d", ThemeConfig{
		Nav:     []NavItem{{Link: "/"}},
		Sidebar: []SidebarGroup{{Items: []SidebarItem{{Link: "/a"}}}},
	})
	findings := Validate(c)
	paths := make([]string, len(findings))
	for i, f := range findings {
		paths[i] = f.Path
	}
	assert.Equal(t, []string{
		"themeConfig.nav[0].text",
		"themeConfig.sidebar[0].text",
		"themeConfig.sidebar[0].items[0].text",
	}, paths)
}

func TestErr(t *testing.T) {
	require.NoError(t, Err(nil))

	findings := []Finding{{Path: "title", Reason: "must not be empty"}}
	err := Err(findings)
	require.Error(t, err)

	var fe *FindingsError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, findings, fe.Findings())
	assert.Contains(t, err.Error(), "title")
}
